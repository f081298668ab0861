package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-tutoring-backend/pkg/redis"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	db *pgxpool.Pool
}

func NewHealthUsecase(db *pgxpool.Pool) HealthUsecase {
	return &healthUsecase{db: db}
}

// Check pings the backing services with a short deadline so the health
// endpoint stays fast even when a dependency hangs.
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":   "ok",
		"database": "ok",
		"redis":    "ok",
	}

	if u.db == nil {
		status["database"] = "not configured"
	} else if err := u.db.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
	}

	if err := redis.HealthCheck(ctx); err != nil {
		// Redis is optional; the rate limiter falls back to memory
		status["redis"] = "unavailable"
	}

	return status
}
