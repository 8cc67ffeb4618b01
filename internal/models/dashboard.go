package models

// DashboardStats summarises inventory and recent bookings for owners.
// Revenue only covers the recent bookings window, not a calendar month.
type DashboardStats struct {
	TotalRooms     int   `json:"total_rooms"`
	AvailableRooms int   `json:"available_rooms"`
	TotalBookings  int   `json:"total_bookings"`
	Revenue        int64 `json:"revenue"`
	RecentLimit    int   `json:"recent_limit"`
}

// Dashboard is the owner overview payload.
type Dashboard struct {
	Stats          DashboardStats  `json:"stats"`
	Rooms          []Room          `json:"rooms"`
	RecentBookings []BookingDetail `json:"recent_bookings"`
}
