package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reminder_notifier/internal/app"
	"reminder_notifier/internal/domain/notification"
)

const (
	pingTimeout     = 2 * time.Second
	checkNowTimeout = 30 * time.Minute
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// HandleCheckNow runs a review cycle synchronously and returns its aggregate.
// The cycle outlives the request: a client that disconnects does not abort it.
func HandleCheckNow(cycle app.CycleRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), checkNowTimeout)
		defer cancel()

		report, err := cycle.Run(ctx)
		if err != nil {
			if errors.Is(err, app.ErrCycleInProgress) {
				fail(c, http.StatusConflict, err)
				return
			}
			fail(c, http.StatusInternalServerError, err)
			return
		}
		ok(c, report)
	}
}

type logsQuery struct {
	PersonID int64  `form:"personId" binding:"omitempty,min=1"`
	Kind     string `form:"kind" binding:"omitempty,oneof=BIRTHDAY PAYABLE_REMINDER RECEIVABLE_REMINDER"`
	Channel  string `form:"channel" binding:"omitempty,oneof=EMAIL CHAT"`
	Outcome  string `form:"outcome" binding:"omitempty,oneof=SUCCESS FAILED"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

type recordView struct {
	ID           string               `json:"id"`
	PersonID     int64                `json:"personId"`
	Kind         notification.Kind    `json:"kind"`
	Channel      notification.Channel `json:"channel"`
	Outcome      notification.Outcome `json:"outcome"`
	Message      string               `json:"message"`
	ErrorMessage *string              `json:"errorMessage,omitempty"`
	ObligationID *int64               `json:"obligationId,omitempty"`
	SentAt       time.Time            `json:"sentAt"`
}

func viewOf(rec *notification.DeliveryRecord) recordView {
	v := recordView{
		ID:       rec.ID.String(),
		PersonID: rec.PersonID,
		Kind:     rec.Kind,
		Channel:  rec.Channel,
		Outcome:  rec.Outcome,
		Message:  rec.Message,
		SentAt:   rec.SentAt,
	}
	if rec.ErrorMessage.Valid {
		v.ErrorMessage = &rec.ErrorMessage.String
	}
	if rec.ObligationID.Valid {
		v.ObligationID = &rec.ObligationID.Int64
	}
	return v
}

// HandleLogs lists delivery records, newest first.
func HandleLogs(records notification.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q logsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}

		list, err := records.List(c.Request.Context(), notification.Filter{
			PersonID: q.PersonID,
			Kind:     notification.Kind(q.Kind),
			Channel:  notification.Channel(q.Channel),
			Outcome:  notification.Outcome(q.Outcome),
			Limit:    q.Limit,
		})
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}

		views := make([]recordView, 0, len(list))
		for _, rec := range list {
			views = append(views, viewOf(rec))
		}
		ok(c, views)
	}
}

// HandleStats aggregates the ledger; the recent window is the last 24 hours.
func HandleStats(records notification.Repository, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := records.Stats(c.Request.Context(), now().Add(-24*time.Hour))
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		ok(c, stats)
	}
}

type healthView struct {
	Status   string                        `json:"status"`
	Database string                        `json:"database"`
	Channels map[notification.Channel]bool `json:"channels"`
	Webhook  bool                          `json:"webhook"`
	Time     time.Time                     `json:"timestamp"`
}

// HandleHealth reports store connectivity and channel readiness. An unreachable
// store answers 503.
func HandleHealth(db Pinger, status app.StatusReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := healthView{
			Status:   "ok",
			Database: "up",
			Channels: status.Ready(),
			Webhook:  status.SinkEnabled(),
			Time:     time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			h.Status = "degraded"
			h.Database = "down"
			c.JSON(http.StatusServiceUnavailable, h)
			return
		}
		c.JSON(http.StatusOK, h)
	}
}
