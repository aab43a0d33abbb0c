package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/pkg/apperrors"
)

// fakeStats answers the aggregation queries from fixed data
type fakeStats struct {
	counts map[string]int64
	since  time.Time
	limit  uint64
	err    error
}

func (f *fakeStats) CountByStatus(context.Context) ([]models.GroupCount, error) {
	return []models.GroupCount{{Key: "pending", Count: f.counts["pending"]}, {Key: "approved", Count: f.counts["approved"]}}, f.err
}

func (f *fakeStats) CountByCourse(context.Context) ([]models.GroupCount, error) {
	return []models.GroupCount{{Key: "CSE", Count: 3}}, f.err
}

func (f *fakeStats) Count(_ context.Context, status *models.ApplicationStatus) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if status == nil {
		return f.counts["total"], nil
	}
	return f.counts[string(*status)], nil
}

func (f *fakeStats) DailyCounts(_ context.Context, since time.Time) ([]models.DayCount, error) {
	f.since = since
	return []models.DayCount{{Day: "2025-06-01", Count: 4}}, f.err
}

func (f *fakeStats) Recent(_ context.Context, limit uint64) ([]models.ApplicationSummary, error) {
	f.limit = limit
	return []models.ApplicationSummary{{
		ID: 9, Name: "Asha", Email: "asha@college.edu", Course: "CSE",
		Status: models.StatusApproved, CreatedAt: time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC),
	}}, f.err
}

func TestAdminService_DashboardStats(t *testing.T) {
	stats := &fakeStats{counts: map[string]int64{"total": 4000, "pending": 1000, "approved": 2469, "rejected": 531}}
	svc := NewAdminService(newFakeAppRepo(), stats, 500, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 6, 7, 15, 0, 0, 0, time.UTC) }

	out, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4000), out.Total)
	assert.Equal(t, int64(1000), out.Pending)
	assert.Equal(t, int64(2469), out.Approved)
	assert.Equal(t, int64(531), out.Rejected)
	assert.Equal(t, "₹12,34,500", out.Revenue)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), stats.since)
	assert.Equal(t, []dto.DailyCount{{Date: "2025-06-01", Count: 4}}, out.DailyApplications)

	assert.Equal(t, uint64(DashboardRecent), stats.limit)
	require.Len(t, out.RecentApplications, 1)
	assert.Equal(t, "Approved", out.RecentApplications[0].Status)
	assert.Equal(t, "04 Mar 2024", out.RecentApplications[0].Date)
}

func TestAdminService_DashboardStats_Error(t *testing.T) {
	svc := NewAdminService(newFakeAppRepo(), &fakeStats{err: errBoom}, 500, zerolog.Nop())
	_, err := svc.DashboardStats(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestAdminService_Counts(t *testing.T) {
	svc := NewAdminService(newFakeAppRepo(), &fakeStats{counts: map[string]int64{"pending": 2, "approved": 1}}, 0, zerolog.Nop())

	byStatus, err := svc.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dto.CountResult{{Key: "pending", Count: 2}, {Key: "approved", Count: 1}}, byStatus)

	byCourse, err := svc.CountByCourse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dto.CountResult{{Key: "CSE", Count: 3}}, byCourse)
}

func TestAdminService_ListApplications(t *testing.T) {
	apps := newFakeAppRepo()
	for i := int64(1); i <= 12; i++ {
		status := models.StatusPending
		if i%4 == 0 {
			status = models.StatusApproved
		}
		apps.put(&models.Application{UserID: i, Status: status})
	}
	svc := NewAdminService(apps, &fakeStats{}, 0, zerolog.Nop())
	ctx := context.Background()

	page, err := svc.ListApplications(ctx, dto.ApplicationFilterRequest{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Applications, 2)
	assert.Equal(t, int64(12), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 2, page.Pagination.CurrentPage)

	approved, err := svc.ListApplications(ctx, dto.ApplicationFilterRequest{Status: "approved", PageSize: 50})
	require.NoError(t, err)
	assert.Len(t, approved.Applications, 3)
	for _, a := range approved.Applications {
		assert.Equal(t, models.StatusApproved, a.Status)
	}

	_, err = svc.GetApplication(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}
