package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blitzit/internal/model"
	"blitzit/internal/report"
)

type ReportRepository struct {
	db *gorm.DB
}

type ReportRepositoryInterface interface {
	Counts(ctx context.Context, ownerID uuid.UUID, now time.Time) (report.Counts, error)
	CompletionTrend(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]report.DayCount, error)
}

var _ ReportRepositoryInterface = (*ReportRepository)(nil)

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Counts returns the owner's task counts in a single pass
func (r *ReportRepository) Counts(ctx context.Context, ownerID uuid.UUID, now time.Time) (report.Counts, error) {
	var c report.Counts
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE board_column = ?) AS done,
			COUNT(*) FILTER (WHERE board_column <> ? AND due_date < ?) AS overdue,
			COUNT(*) FILTER (WHERE board_column = ?) AS today,
			COUNT(*) FILTER (WHERE board_column = ?) AS this_week`,
			model.ColumnDone, model.ColumnDone, now, model.ColumnToday, model.ColumnThisWeek).
		Where("owner_id = ?", ownerID).
		Scan(&c).Error
	return c, err
}

// CompletionTrend counts completions per calendar day since the given time
func (r *ReportRepository) CompletionTrend(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]report.DayCount, error) {
	var rows []report.DayCount
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("to_char(date(completed_at), 'YYYY-MM-DD') AS day, COUNT(*) AS count").
		Where("owner_id = ? AND completed_at >= ?", ownerID, since).
		Group("day").
		Order("day").
		Scan(&rows).Error
	return rows, err
}
