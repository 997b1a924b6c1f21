package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/sitelens/crawler"
	"github.com/use-agent/sitelens/models"
	"github.com/use-agent/sitelens/webhook"
)

// crawlJob tracks one in-flight or finished crawl session. All fields
// behind mu; GetCrawl reads while the session goroutine writes.
type crawlJob struct {
	mu        sync.Mutex
	id        string
	status    string // "processing", "completed", "failed"
	completed int
	total     int
	session   *models.CrawlSession
	errDetail *models.ErrorDetail
	createdAt int64
}

func (j *crawlJob) snapshot() models.CrawlStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	return models.CrawlStatusResponse{
		ID:        j.id,
		Status:    j.status,
		Completed: j.completed,
		Total:     j.total,
		Session:   j.session,
		Error:     j.errDetail,
	}
}

// crawlStore holds all in-flight and completed crawl jobs.
var crawlStore sync.Map

func init() {
	// Background goroutine to expire crawl jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			crawlStore.Range(func(key, value any) bool {
				job := value.(*crawlJob)
				job.mu.Lock()
				expired := job.createdAt < cutoff
				job.mu.Unlock()
				if expired {
					crawlStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostCrawl returns a handler for POST /api/v1/crawl.
//
// The crawl runs in the background; the response carries a job ID to
// poll via GET /api/v1/crawl/:id. When the request names a webhook
// URL, a completion event is also delivered there.
func PostCrawl(orc *crawler.Orchestrator, auditAvailable bool, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.CrawlResponse{
				Status: "failed",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "invalid request body: " + err.Error(),
				},
			})
			return
		}
		req.Defaults()

		if req.Audit && !auditAvailable {
			c.JSON(http.StatusBadRequest, models.CrawlResponse{
				Status: "failed",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "audits are disabled on this instance",
				},
			})
			return
		}

		jobID := "crawl-" + uuid.NewString()[:8]
		job := &crawlJob{
			id:        jobID,
			status:    "processing",
			total:     req.MaxPages,
			createdAt: time.Now().Unix(),
		}
		crawlStore.Store(jobID, job)

		go runCrawl(orc, job, req, webhookSecret)

		c.JSON(http.StatusOK, models.CrawlResponse{
			ID:     jobID,
			Status: "processing",
		})
	}
}

// GetCrawl returns a handler for GET /api/v1/crawl/:id.
func GetCrawl() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := crawlStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "crawl job not found",
				},
			})
			return
		}

		c.JSON(http.StatusOK, val.(*crawlJob).snapshot())
	}
}

// runCrawl drives one crawl session to completion and finalizes the job.
func runCrawl(orc *crawler.Orchestrator, job *crawlJob, req models.CrawlRequest, webhookSecret string) {
	opts := crawler.Options{
		MaxPages:    req.MaxPages,
		Screenshots: *req.Screenshots,
		Audit:       req.Audit,
		Progress: func(completed int) {
			job.mu.Lock()
			job.completed = completed
			job.mu.Unlock()
		},
	}

	session, err := orc.Run(context.Background(), req.URL, opts)

	job.mu.Lock()
	if err != nil {
		job.status = "failed"
		var ce *models.CrawlError
		if errors.As(err, &ce) {
			job.errDetail = ce.ToDetail()
		} else {
			job.errDetail = &models.ErrorDetail{
				Code:    models.ErrCodeInternal,
				Message: err.Error(),
			}
		}
		job.mu.Unlock()
		slog.Error("crawl job failed", "id", job.id, "error", err)
		notify(req, job, "crawl.failed", webhookSecret)
		return
	}

	job.status = "completed"
	job.completed = session.PagesCrawled
	job.total = session.PagesCrawled
	job.session = session
	job.mu.Unlock()

	slog.Info("crawl job finished",
		"id", job.id,
		"pages", session.PagesCrawled,
	)
	notify(req, job, "crawl.completed", webhookSecret)
}

// notify fires the completion webhook when the request asked for one.
func notify(req models.CrawlRequest, job *crawlJob, eventType, secret string) {
	if req.WebhookURL == "" {
		return
	}
	snap := job.snapshot()
	webhook.DeliverAsync(req.WebhookURL, secret, &webhook.Event{
		Type:      eventType,
		JobID:     snap.ID,
		Timestamp: time.Now().Unix(),
		Data:      snap,
	})
}
