package models

// CrawlRequest is the body of POST /api/v1/crawl.
type CrawlRequest struct {
	URL         string `json:"url" binding:"required"`
	MaxPages    int    `json:"maxPages"`    // default: 10
	Screenshots *bool  `json:"screenshots"` // default: true
	Audit       bool   `json:"audit"`       // default: false
	WebhookURL  string `json:"webhookUrl"`  // optional completion callback
}

// Defaults fills zero-valued optional fields.
func (r *CrawlRequest) Defaults() {
	if r.MaxPages <= 0 {
		r.MaxPages = 10
	}
	if r.Screenshots == nil {
		t := true
		r.Screenshots = &t
	}
}

// CrawlResponse acknowledges an accepted crawl job.
type CrawlResponse struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// CrawlStatusResponse reports the state of a crawl job.
type CrawlStatusResponse struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"` // "processing", "completed", "failed"
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Session   *CrawlSession `json:"session,omitempty"`
	Error     *ErrorDetail  `json:"error,omitempty"`
}

// BrowserStats is a snapshot of the browser's context usage.
type BrowserStats struct {
	ActiveContexts int  `json:"activeContexts"`
	Connected      bool `json:"connected"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string       `json:"status"`
	Uptime  string       `json:"uptime"`
	Browser BrowserStats `json:"browser"`
	Version string       `json:"version"`
}
