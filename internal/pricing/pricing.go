// Package pricing implements the rent calculation shared by the API and the client.
package pricing

import "kost-service/internal/models"

// PeriodDays is the length of one rental period. Partial periods are billed in full.
const PeriodDays = 30

// Periods returns how many billing periods a stay of the given length spans.
func Periods(days int) int64 {
	if days <= 0 {
		return 0
	}
	return int64((days + PeriodDays - 1) / PeriodDays)
}

// Total returns the price of a stay between checkIn and checkOut for a room priced per period.
// Empty or inverted ranges cost nothing.
func Total(checkIn, checkOut models.Date, pricePerPeriod int64) int64 {
	if checkIn.IsZero() || checkOut.IsZero() || pricePerPeriod <= 0 {
		return 0
	}
	return Periods(checkIn.DaysUntil(checkOut)) * pricePerPeriod
}
