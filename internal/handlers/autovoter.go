package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ankeapp/anke-backend/internal/autovoter"
	"github.com/ankeapp/anke-backend/internal/metrics"
	"github.com/ankeapp/anke-backend/internal/models"
)

// AutoVoterHandler exposes the engagement simulator: the batch trigger,
// the admin manual trigger and the cron entrypoint.
type AutoVoterHandler struct {
	engine     *autovoter.Engine
	store      autovoter.Store
	cronSecret string
	log        *zap.Logger
}

func NewAutoVoterHandler(engine *autovoter.Engine, store autovoter.Store, cronSecret string, log *zap.Logger) *AutoVoterHandler {
	return &AutoVoterHandler{engine: engine, store: store, cronSecret: cronSecret, log: log}
}

// ExecuteAuto runs one full simulation batch.
// @Summary Run the engagement simulator once
// @Tags auto-voter
// @Produce json
// @Success 200 {object} autovoter.RunResult
// @Failure 500 {object} map[string]interface{}
// @Router /api/auto-voter/execute-auto [post]
func (h *AutoVoterHandler) ExecuteAuto(c *gin.Context) {
	res, err := h.engine.Run(c.Request.Context())
	if err != nil {
		h.log.Error("auto voter run failed", zap.Error(err))
		metrics.RunsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "実行中にエラーが発生しました",
			"error":   err.Error(),
		})
		return
	}

	metrics.RecordRun(res)
	c.JSON(http.StatusOK, res)
}

// ExecuteManual runs a batch on behalf of the admin UI button. The
// engine is invoked in-process rather than through the execute-auto
// route.
func (h *AutoVoterHandler) ExecuteManual(c *gin.Context) {
	raw, err := h.store.Settings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "実行中にエラーが発生しました",
			"error":   err.Error(),
		})
		return
	}

	h.log.Info("manual auto voter run requested",
		zap.String("enabled", raw["enabled"]),
		zap.String("posts_per_run", raw["posts_per_run"]),
		zap.String("votes_per_run", raw["votes_per_run"]),
		zap.String("ai_member_probability", raw["ai_member_probability"]),
		zap.String("prioritize_recent_posts", raw["prioritize_recent_posts"]))

	res, err := h.engine.Run(c.Request.Context())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "実行に失敗しました",
			"error":   err.Error(),
		})
		return
	}

	metrics.RecordRun(res)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ 実行完了: " + res.Message,
		"details": res.Details,
		"settings": gin.H{
			"posts_per_run":         raw["posts_per_run"],
			"votes_per_run":         raw["votes_per_run"],
			"votes_variance":        raw["votes_variance"],
			"ai_member_probability": raw["ai_member_probability"],
			"comment_settings": gin.H{
				"reply_probability":        raw["reply_probability"],
				"like_probability":         raw["like_probability"],
				"author_reply_probability": raw["author_reply_probability"],
				"min_length":               raw["comment_min_length"],
				"max_length":               raw["comment_max_length"],
				"max_comments":             raw["max_comments_per_post"],
				"variance":                 raw["max_comments_variance"],
			},
			"priority_settings": gin.H{
				"enabled": raw["prioritize_recent_posts"] == "1",
				"days":    raw["priority_days"],
				"weight":  raw["priority_weight"],
			},
		},
	})
}

// Cron is the scheduled entrypoint. It gates on the shared secret, the
// enabled flag, the minimum interval since the last execution, and the
// blackout window, then runs the batch and records an execution log.
func (h *AutoVoterHandler) Cron(c *gin.Context) {
	if h.cronSecret != "" {
		auth := c.GetHeader("Authorization")
		if auth != "Bearer "+h.cronSecret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return
		}
	}

	ctx := c.Request.Context()
	raw, err := h.store.Settings(ctx)
	if err != nil {
		h.writeLog(c, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	s := autovoter.ParseSettings(raw)

	if !s.Enabled {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "AI自動コメントが無効化されています",
			"skipped": true,
		})
		return
	}

	// Minimum interval with variance: a run less than
	// interval - interval_variance minutes after the previous one is
	// skipped so execution times don't look metronomic.
	if s.LastExecution != "" {
		if last, perr := time.Parse(time.RFC3339, s.LastExecution); perr == nil {
			elapsed := time.Since(last).Minutes()
			minInterval := float64(s.Interval - s.IntervalVariance)
			if elapsed < minInterval {
				c.JSON(http.StatusOK, gin.H{
					"success": true,
					"message": "実行間隔が短すぎます（前回実行から" + strconv.Itoa(int(elapsed)) + "分、最小間隔" + strconv.Itoa(int(minInterval)) + "分）",
					"skipped": true,
				})
				return
			}
		}
	}

	// The cron path guards against inverted windows before comparing;
	// a window crossing midnight therefore never skips here either.
	now := time.Now().Format("15:04")
	if s.NoRunStart != "" && s.NoRunEnd != "" && strings.Compare(s.NoRunStart, s.NoRunEnd) <= 0 {
		if now >= s.NoRunStart && now < s.NoRunEnd {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "実行禁止時間帯です（" + s.NoRunStart + " - " + s.NoRunEnd + "）",
				"skipped": true,
			})
			return
		}
	}

	res, err := h.engine.Run(ctx)

	executedAt := time.Now().UTC()
	if uerr := h.store.UpdateSetting(ctx, "last_execution", executedAt.Format(time.RFC3339)); uerr != nil {
		h.log.Warn("failed to update last_execution", zap.Error(uerr))
	}

	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		h.writeLog(c, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	metrics.RecordRun(res)
	h.writeLog(c, "success", res.Message)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "AI自動コメントを実行しました",
		"result":  res,
	})
}

func (h *AutoVoterHandler) writeLog(c *gin.Context, status, message string) {
	entry := &models.AutoVoterLog{
		RunID:         uuid.New().String(),
		ExecutionType: "cron",
		Status:        status,
		Message:       message,
		ExecutedAt:    time.Now().UTC(),
	}
	if err := h.store.InsertLog(c.Request.Context(), entry); err != nil {
		h.log.Warn("failed to write execution log", zap.Error(err))
	}
}
