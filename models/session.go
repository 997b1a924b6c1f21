package models

import "time"

// ViewportProfile is a named rendering size the sequencer captures at.
type ViewportProfile struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Viewports is the fixed capture order: mobile, tablet, desktop.
var Viewports = []ViewportProfile{
	{Name: "mobile", Width: 375, Height: 667},
	{Name: "tablet", Width: 768, Height: 1024},
	{Name: "desktop", Width: 1440, Height: 900},
}

// ScreenshotRecord describes one captured full-page image.
type ScreenshotRecord struct {
	Viewport string `json:"viewport"`
	Path     string `json:"path"` // relative to the output directory
	Filename string `json:"filename"`
	// Fallback is set when the first capture attempt failed and the
	// retry succeeded, so downstream tooling can treat the image
	// with suspicion.
	Fallback bool `json:"fallback,omitempty"`
}

// AuditResult holds the category scores (0-100) returned by the
// out-of-process audit collaborator, plus where its reports landed.
type AuditResult struct {
	Performance   int    `json:"performance"`
	Accessibility int    `json:"accessibility"`
	BestPractices int    `json:"bestPractices"`
	SEO           int    `json:"seo"`
	ReportJSON    string `json:"reportJson,omitempty"`
	ReportHTML    string `json:"reportHtml,omitempty"`
}

// PageRecord is the per-URL outcome of a crawl session. It is created
// when the orchestrator begins processing a URL and finalized before
// the next frontier pop; a page is never retried.
type PageRecord struct {
	Seq         int                `json:"seq"`
	URL         string             `json:"url"` // canonical form
	Title       string             `json:"title,omitempty"`
	Screenshots []ScreenshotRecord `json:"screenshots"` // 0-3, one slot per viewport
	Audit       *AuditResult       `json:"audit,omitempty"`
	LinksFound  int                `json:"linksFound"`
}

// CrawlSession is the full result of one crawl run.
// Invariant: len(Pages) <= the configured page budget.
type CrawlSession struct {
	StartURL     string       `json:"startUrl"`
	MaxPages     int          `json:"maxPages"`
	PagesCrawled int          `json:"pagesCrawled"`
	Pages        []PageRecord `json:"pages"`
	StartedAt    time.Time    `json:"startedAt"`
	FinishedAt   time.Time    `json:"finishedAt"`
}
