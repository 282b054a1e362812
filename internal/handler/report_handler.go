package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blitzit/internal/report"
	"blitzit/internal/repository"
)

type ReportHandler struct {
	reports   repository.ReportRepositoryInterface
	users     repository.UserRepositoryInterface
	generator *report.Generator
	now       func() time.Time
}

func NewReportHandler(
	reports repository.ReportRepositoryInterface,
	users repository.UserRepositoryInterface,
	generator *report.Generator,
) *ReportHandler {
	return &ReportHandler{
		reports:   reports,
		users:     users,
		generator: generator,
		now:       time.Now,
	}
}

// Stats возвращает счетчики для дашборда
func (h *ReportHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	counts, err := h.reports.Counts(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.NewStats(counts))
}

// Summary возвращает итог и тренд завершений за последние дни
func (h *ReportHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	_, summary, err := h.collect(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Export отдает отчет о продуктивности в PDF
func (h *ReportHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	counts, summary, err := h.collect(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	err = h.generator.Render(&buf, report.Document{
		Owner:       user.Name,
		GeneratedAt: now,
		Stats:       report.NewStats(counts),
		Summary:     summary,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("productivity-report-%s.pdf", now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *ReportHandler) collect(c *gin.Context, userID uuid.UUID) (report.Counts, report.Summary, error) {
	ctx := c.Request.Context()
	now := h.now()

	counts, err := h.reports.Counts(ctx, userID, now)
	if err != nil {
		return report.Counts{}, report.Summary{}, err
	}
	trend, err := h.reports.CompletionTrend(ctx, userID, report.TrendStart(now))
	if err != nil {
		return report.Counts{}, report.Summary{}, err
	}
	if trend == nil {
		trend = []report.DayCount{}
	}
	return counts, report.NewSummary(counts, trend), nil
}
