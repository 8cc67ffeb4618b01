package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"kost-service/internal/models"
)

const roomColumns = `id, name, description, price, facilities, image_url, is_available, size, created_at`

// RoomRepository abstracts room persistence.
type RoomRepository interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, id string) (models.Room, error)
	CreateRoom(ctx context.Context, room models.Room) (models.Room, error)
	ToggleAvailability(ctx context.Context, id string) (models.Room, error)
	SetAvailability(ctx context.Context, id string, available bool) (models.Room, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// ListRooms returns the whole catalog ordered by name.
func (r *RoomRepo) ListRooms(ctx context.Context) ([]models.Room, error) {
	rooms := []models.Room{}
	err := r.db.SelectContext(ctx, &rooms, `SELECT `+roomColumns+` FROM rooms ORDER BY name ASC`)
	return rooms, err
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, id string) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// CreateRoom inserts a room; facilities are de-duplicated.
func (r *RoomRepo) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	var created models.Room
	err := r.db.QueryRowxContext(ctx, `INSERT INTO rooms (id, name, description, price, facilities, image_url, is_available, size)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+roomColumns,
		room.ID, room.Name, room.Description, room.Price, pq.Array(uniqueStrings(room.Facilities)), room.ImageURL, room.IsAvailable, room.Size).
		StructScan(&created)
	return created, err
}

// ToggleAvailability flips the availability flag atomically and returns the updated room.
func (r *RoomRepo) ToggleAvailability(ctx context.Context, id string) (models.Room, error) {
	var room models.Room
	err := r.db.QueryRowxContext(ctx, `UPDATE rooms SET is_available = NOT is_available WHERE id=$1 RETURNING `+roomColumns, id).StructScan(&room)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// SetAvailability stores an explicit availability value.
func (r *RoomRepo) SetAvailability(ctx context.Context, id string, available bool) (models.Room, error) {
	var room models.Room
	err := r.db.QueryRowxContext(ctx, `UPDATE rooms SET is_available = $2 WHERE id=$1 RETURNING `+roomColumns, id, available).StructScan(&room)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
