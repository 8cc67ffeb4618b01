package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"kost-service/internal/models"
	"kost-service/internal/observability"
)

// RoomCatalogKey holds the cached room list.
const RoomCatalogKey = "kost:rooms:catalog"

// CachedRoomRepo serves the room catalog from Redis. Every write through it deletes the cached
// catalog after the database write succeeds, so the next list reflects the change. Cache errors
// fall back to the wrapped repository.
type CachedRoomRepo struct {
	RoomRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRoomRepo wraps repo with a Redis-backed catalog cache.
func NewCachedRoomRepo(repo RoomRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRoomRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRoomRepo{RoomRepository: repo, client: client, ttl: ttl, logger: logger}
}

// ListRooms returns the cached catalog or loads and caches it.
func (r *CachedRoomRepo) ListRooms(ctx context.Context) ([]models.Room, error) {
	raw, err := r.client.Get(ctx, RoomCatalogKey).Bytes()
	switch {
	case err == nil:
		var rooms []models.Room
		if jsonErr := json.Unmarshal(raw, &rooms); jsonErr == nil {
			observability.IncRoomCache("hit")
			return rooms, nil
		}
		r.logger.Warn("discarding corrupt room cache entry")
	case err == redis.Nil:
		observability.IncRoomCache("miss")
	default:
		observability.IncRoomCache("error")
		r.logger.Warn("room cache read failed", zap.Error(err))
	}

	rooms, err := r.RoomRepository.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(rooms); err == nil {
		if err := r.client.Set(ctx, RoomCatalogKey, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("room cache write failed", zap.Error(err))
		}
	}
	return rooms, nil
}

func (r *CachedRoomRepo) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	created, err := r.RoomRepository.CreateRoom(ctx, room)
	if err != nil {
		return models.Room{}, err
	}
	r.invalidate(ctx)
	return created, nil
}

func (r *CachedRoomRepo) ToggleAvailability(ctx context.Context, id string) (models.Room, error) {
	room, err := r.RoomRepository.ToggleAvailability(ctx, id)
	if err != nil {
		return models.Room{}, err
	}
	r.invalidate(ctx)
	return room, nil
}

func (r *CachedRoomRepo) SetAvailability(ctx context.Context, id string, available bool) (models.Room, error) {
	room, err := r.RoomRepository.SetAvailability(ctx, id, available)
	if err != nil {
		return models.Room{}, err
	}
	r.invalidate(ctx)
	return room, nil
}

func (r *CachedRoomRepo) invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, RoomCatalogKey).Err(); err != nil {
		r.logger.Warn("room cache invalidation failed", zap.Error(err))
	}
}
