package models

import (
	"time"

	"github.com/lib/pq"
)

// Room is a rentable unit priced per 30-day period.
type Room struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	Price       int64          `db:"price" json:"price"`
	Facilities  pq.StringArray `db:"facilities" json:"facilities"`
	ImageURL    string         `db:"image_url" json:"image_url"`
	IsAvailable bool           `db:"is_available" json:"is_available"`
	Size        string         `db:"size" json:"size"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// NewRoom holds the fields an owner supplies when listing a room.
type NewRoom struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       int64    `json:"price" binding:"required,gt=0"`
	Facilities  []string `json:"facilities"`
	ImageURL    string   `json:"image_url"`
	Size        string   `json:"size"`
	IsAvailable *bool    `json:"is_available"`
}
