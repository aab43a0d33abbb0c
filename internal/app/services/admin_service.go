package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/helpers"
)

// Dashboard windows
const (
	DashboardDays   = 7
	DashboardRecent = 5
)

// AdminService serves the administrator's read side
type AdminService struct {
	appRepo ApplicationRepository
	stats   StatsRepository
	fee     int64
	now     func() time.Time
	logger  zerolog.Logger
}

// NewAdminService creates a new AdminService; fee is the per-application amount used for the revenue estimate
func NewAdminService(appRepo ApplicationRepository, stats StatsRepository, fee int64, logger zerolog.Logger) *AdminService {
	return &AdminService{
		appRepo: appRepo,
		stats:   stats,
		fee:     fee,
		now:     time.Now,
		logger:  logger,
	}
}

func toCountResults(groups []models.GroupCount) []dto.CountResult {
	out := make([]dto.CountResult, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.CountResult{Key: g.Key, Count: g.Count})
	}
	return out
}

// CountByStatus groups applications by status
func (s *AdminService) CountByStatus(ctx context.Context) ([]dto.CountResult, error) {
	groups, err := s.stats.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return toCountResults(groups), nil
}

// CountByCourse groups applications by course
func (s *AdminService) CountByCourse(ctx context.Context) ([]dto.CountResult, error) {
	groups, err := s.stats.CountByCourse(ctx)
	if err != nil {
		return nil, err
	}
	return toCountResults(groups), nil
}

// DashboardStats assembles the dashboard payload.
// The four counts are separate queries and may not form one snapshot.
func (s *AdminService) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	var (
		out dto.DashboardStats
		err error
	)

	if out.Total, err = s.stats.Count(ctx, nil); err != nil {
		return nil, err
	}
	counts := map[models.ApplicationStatus]*int64{
		models.StatusPending:  &out.Pending,
		models.StatusApproved: &out.Approved,
		models.StatusRejected: &out.Rejected,
	}
	for _, status := range models.ApplicationStatuses {
		st := status
		if *counts[st], err = s.stats.Count(ctx, &st); err != nil {
			return nil, err
		}
	}

	daily, err := s.stats.DailyCounts(ctx, helpers.TrailingDaysStart(s.now(), DashboardDays))
	if err != nil {
		return nil, err
	}
	out.DailyApplications = make([]dto.DailyCount, 0, len(daily))
	for _, d := range daily {
		out.DailyApplications = append(out.DailyApplications, dto.DailyCount{Date: d.Day, Count: d.Count})
	}

	recent, err := s.stats.Recent(ctx, DashboardRecent)
	if err != nil {
		return nil, err
	}
	out.RecentApplications = make([]dto.RecentApplication, 0, len(recent))
	for _, r := range recent {
		out.RecentApplications = append(out.RecentApplications, dto.RecentApplication{
			ID:     r.ID,
			Name:   r.Name,
			Email:  r.Email,
			Course: r.Course,
			Status: helpers.Capitalize(string(r.Status)),
			Date:   helpers.FormatDisplayDate(r.CreatedAt),
		})
	}

	// estimate only: approved applications times the configured fee
	out.Revenue = helpers.FormatINR(out.Approved * s.fee)

	return &out, nil
}

// ListApplications pages applications, newest first, optionally filtered by status
func (s *AdminService) ListApplications(ctx context.Context, filter dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)

	params := repositories.ApplicationListParams{Limit: limit, Offset: offset}
	if filter.Status != "" {
		status, ok := models.ParseApplicationStatus(filter.Status)
		if ok {
			params.Status = &status
		}
	}

	apps, total, err := s.appRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &dto.ApplicationListResponse{
		Applications: apps,
		Pagination:   helpers.NewPaginationInfo(total, filter.Page, int(limit)),
	}, nil
}

// GetApplication returns one application for the detail view
func (s *AdminService) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	return s.appRepo.GetByID(ctx, id)
}
