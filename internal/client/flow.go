package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"kost-service/internal/models"
	"kost-service/internal/pricing"
	"kost-service/internal/services"
)

// FlowState is a step of the booking wizard.
type FlowState string

const (
	StateEditingDates    FlowState = "editing-dates"
	StateSubmitting      FlowState = "submitting"
	StateAwaitingPayment FlowState = "awaiting-payment"
)

var (
	ErrDateTooEarly    = errors.New("date is before the earliest allowed day")
	ErrDatesIncomplete = errors.New("check-in and check-out are required")
	ErrFlowLocked      = errors.New("booking flow is not editable")
)

// BookingSubmitter creates bookings.
type BookingSubmitter interface {
	CreateBooking(ctx context.Context, req services.CreateBookingRequest) (models.BookingWithPayment, error)
}

// BookingFlow walks a tenant from choosing dates to the payment placeholder of one room.
// A failed submit returns to editing with the error kept for display.
type BookingFlow struct {
	api  BookingSubmitter
	room models.Room
	now  func() time.Time

	mu       sync.Mutex
	state    FlowState
	checkIn  models.Date
	checkOut models.Date
	err      error
	result   models.BookingWithPayment
}

func NewBookingFlow(api BookingSubmitter, room models.Room) *BookingFlow {
	return &BookingFlow{api: api, room: room, now: time.Now, state: StateEditingDates}
}

func (f *BookingFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// MinCheckIn is today.
func (f *BookingFlow) MinCheckIn() models.Date {
	return models.NewDate(f.now())
}

// MinCheckOut is the chosen check-in, or today while none is chosen.
func (f *BookingFlow) MinCheckOut() models.Date {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minCheckOut()
}

func (f *BookingFlow) minCheckOut() models.Date {
	if f.checkIn.IsZero() {
		return models.NewDate(f.now())
	}
	return f.checkIn
}

// SetCheckIn chooses the first night. A check-out that would now precede it is cleared.
func (f *BookingFlow) SetCheckIn(d models.Date) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEditingDates {
		return ErrFlowLocked
	}
	if d.Before(models.NewDate(f.now()).Time) {
		return ErrDateTooEarly
	}
	f.checkIn = d
	if !f.checkOut.IsZero() && f.checkOut.Before(d.Time) {
		f.checkOut = models.Date{}
	}
	return nil
}

func (f *BookingFlow) SetCheckOut(d models.Date) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEditingDates {
		return ErrFlowLocked
	}
	if d.Before(f.minCheckOut().Time) {
		return ErrDateTooEarly
	}
	f.checkOut = d
	return nil
}

// Total previews the price with the same rule the service applies.
func (f *BookingFlow) Total() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pricing.Total(f.checkIn, f.checkOut, f.room.Price)
}

// Err is the error of the last failed submit.
func (f *BookingFlow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Result is the created booking and payment once the flow reached awaiting-payment.
func (f *BookingFlow) Result() (models.BookingWithPayment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.state == StateAwaitingPayment
}

// Submit creates the booking. Only one submit runs at a time.
func (f *BookingFlow) Submit(ctx context.Context) (models.BookingWithPayment, error) {
	f.mu.Lock()
	if f.state != StateEditingDates {
		f.mu.Unlock()
		return models.BookingWithPayment{}, ErrFlowLocked
	}
	if f.checkIn.IsZero() || f.checkOut.IsZero() {
		f.err = ErrDatesIncomplete
		f.mu.Unlock()
		return models.BookingWithPayment{}, ErrDatesIncomplete
	}
	f.state = StateSubmitting
	f.err = nil
	req := services.CreateBookingRequest{RoomID: f.room.ID, CheckIn: f.checkIn, CheckOut: f.checkOut}
	f.mu.Unlock()

	res, err := f.api.CreateBooking(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateEditingDates
		f.err = err
		return models.BookingWithPayment{}, err
	}
	f.state = StateAwaitingPayment
	f.result = res
	return res, nil
}
