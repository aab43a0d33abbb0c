package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/db"
	"github.com/yigit/admission/internal/pkg/logger"
)

// StatsRepository runs the read-side aggregations for the admin dashboard
type StatsRepository struct {
	db db.Querier
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(q db.Querier) *StatsRepository {
	return &StatsRepository{db: q}
}

func (r *StatsRepository) groupCount(ctx context.Context, column string) ([]models.GroupCount, error) {
	sql, args, err := psql.Select(column, "COUNT(*)").
		From("applications").
		GroupBy(column).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build group count query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("column", column).Msg("Error running group count")
		return nil, fmt.Errorf("error counting by %s: %w", column, err)
	}
	defer rows.Close()

	out := []models.GroupCount{}
	for rows.Next() {
		var gc models.GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, fmt.Errorf("error scanning group count: %w", err)
		}
		out = append(out, gc)
	}
	return out, rows.Err()
}

// CountByStatus groups applications by status
func (r *StatsRepository) CountByStatus(ctx context.Context) ([]models.GroupCount, error) {
	return r.groupCount(ctx, "status")
}

// CountByCourse groups applications by course
func (r *StatsRepository) CountByCourse(ctx context.Context) ([]models.GroupCount, error) {
	return r.groupCount(ctx, "course")
}

// Count returns the number of applications, optionally limited to one status
func (r *StatsRepository) Count(ctx context.Context, status *models.ApplicationStatus) (int64, error) {
	b := psql.Select("COUNT(*)").From("applications")
	if status != nil {
		b = b.Where(squirrel.Eq{"status": *status})
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting applications: %w", err)
	}
	return n, nil
}

// DailyCounts returns per-day creation counts since the given instant, ascending by day.
// Days without applications are absent.
func (r *StatsRepository) DailyCounts(ctx context.Context, since time.Time) ([]models.DayCount, error) {
	const day = "to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	sql, args, err := psql.Select(day+" AS day", "COUNT(*)").
		From("applications").
		Where(squirrel.GtOrEq{"created_at": since}).
		GroupBy("day").
		OrderBy("day ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build daily count query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error running daily count")
		return nil, fmt.Errorf("error counting daily applications: %w", err)
	}
	defer rows.Close()

	out := []models.DayCount{}
	for rows.Next() {
		var dc models.DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("error scanning daily count: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// Recent returns the newest applications; the owner's name fills in when the form has none yet
func (r *StatsRepository) Recent(ctx context.Context, limit uint64) ([]models.ApplicationSummary, error) {
	sql, args, err := psql.Select(
		"a.id",
		"COALESCE(NULLIF(a.name, ''), u.name, 'Unknown')",
		"COALESCE(NULLIF(a.email, ''), u.email, 'Unknown')",
		"a.course", "a.status", "a.created_at",
	).
		From("applications a").
		LeftJoin("users u ON u.id = a.user_id").
		OrderBy("a.created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing recent applications")
		return nil, fmt.Errorf("error listing recent applications: %w", err)
	}
	defer rows.Close()

	out := []models.ApplicationSummary{}
	for rows.Next() {
		var s models.ApplicationSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Course, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning recent application: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
