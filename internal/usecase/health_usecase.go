package usecase

import (
	"context"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool and *redis.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	db    Pinger
	cache Pinger
}

// NewHealthUsecase reports database and cache reachability. A nil cache is
// reported as disabled.
func NewHealthUsecase(db, cache Pinger) HealthUsecase {
	return &healthUsecase{db: db, cache: cache}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := map[string]string{
		"status":   "ok",
		"database": "up",
		"redis":    "disabled",
	}

	if u.db == nil || u.db.Ping(ctx) != nil {
		result["database"] = "down"
		result["status"] = "degraded"
	}

	if u.cache != nil {
		if err := u.cache.Ping(ctx); err != nil {
			result["redis"] = "down"
		} else {
			result["redis"] = "up"
		}
	}

	return result
}
