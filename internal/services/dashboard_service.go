package services

import (
	"context"

	"kost-service/internal/models"
	"kost-service/internal/repositories"
)

// DashboardService aggregates the owner overview.
type DashboardService struct {
	rooms       repositories.RoomRepository
	bookings    repositories.BookingRepository
	recentLimit int
}

func NewDashboardService(rooms repositories.RoomRepository, bookings repositories.BookingRepository, recentLimit int) *DashboardService {
	return &DashboardService{rooms: rooms, bookings: bookings, recentLimit: recentLimit}
}

// Dashboard counts rooms and sums revenue over the most recent bookings only.
func (s *DashboardService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}
	recent, err := s.bookings.ListBookings(ctx, "", s.recentLimit)
	if err != nil {
		return models.Dashboard{}, err
	}

	stats := models.DashboardStats{
		TotalRooms:    len(rooms),
		TotalBookings: len(recent),
		RecentLimit:   s.recentLimit,
	}
	for _, room := range rooms {
		if room.IsAvailable {
			stats.AvailableRooms++
		}
	}
	for _, b := range recent {
		stats.Revenue += b.TotalPrice
	}
	return models.Dashboard{Stats: stats, Rooms: rooms, RecentBookings: recent}, nil
}

// RoomCounts returns the catalog size and how many rooms are available.
func (s *DashboardService) RoomCounts(ctx context.Context) (total, available int, err error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, room := range rooms {
		if room.IsAvailable {
			available++
		}
	}
	return len(rooms), available, nil
}
