package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/fraudshield/backend/internal/models"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 30 * time.Second
)

// AdminService serves the read-only administrative surface: aggregate
// dashboard counts and the user directory. The redis client may be nil;
// the service then always hits Postgres.
type AdminService struct {
	db     *sql.DB
	redis  *redis.Client
	logger *zap.Logger
}

func NewAdminService(db *sql.DB, redisClient *redis.Client, logger *zap.Logger) *AdminService {
	return &AdminService{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// DashboardStats returns total users, total journal entries and the
// pending fraud flag count, cached briefly in Redis. Cache failures are
// logged and ignored; the counts themselves always come from the store
// on a miss.
func (s *AdminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var stats models.DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	var stats models.DashboardStats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, storeErr(err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&stats.TotalTransactions); err != nil {
		return nil, storeErr(err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fraud_logs WHERE status = 'pending'`).Scan(&stats.FraudIncidents); err != nil {
		return nil, storeErr(err)
	}

	if s.redis != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := s.redis.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return &stats, nil
}

// ListUsers returns the user directory for the admin dashboard.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, username, email, role
		FROM users
		ORDER BY user_id`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role); err != nil {
			return nil, storeErr(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}
