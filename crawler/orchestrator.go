// Package crawler holds the BFS crawl orchestrator: the per-session
// state machine that drives navigation, capture, auditing, and link
// discovery, bounded by a page budget.
package crawler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/sitelens/capture"
	"github.com/use-agent/sitelens/config"
	"github.com/use-agent/sitelens/frontier"
	"github.com/use-agent/sitelens/models"
)

// PageContext is one isolated browsing context holding one page. It is
// the unit of isolation between pages (separate cookie/storage scope),
// not a unit of concurrency.
type PageContext interface {
	capture.Surface

	// Navigate loads the URL, bounded by timeout, and returns the HTTP
	// status of the main document (0 when it could not be determined).
	Navigate(ctx context.Context, url string, timeout time.Duration) (int, error)

	// HTML returns the rendered DOM.
	HTML(ctx context.Context) (string, error)

	// Close tears the context down.
	Close() error
}

// Browser opens isolated browsing contexts against one long-lived
// browser process.
type Browser interface {
	OpenContext(ctx context.Context) (PageContext, error)
}

// Screenshotter captures a page across the viewport profiles.
type Screenshotter interface {
	CapturePage(ctx context.Context, surf capture.Surface, seq int, url string) []models.ScreenshotRecord
}

// Auditor is the out-of-process audit collaborator. A nil result with
// a non-nil error simply leaves the page's audit field absent.
type Auditor interface {
	Audit(ctx context.Context, url string, seq int) (*models.AuditResult, error)
}

// Options are the per-session knobs.
type Options struct {
	MaxPages    int
	Screenshots bool
	Audit       bool

	// Progress, when set, is called after each finalized page record.
	Progress func(completed int)
}

// Orchestrator runs crawl sessions. Execution is single-threaded and
// sequential: one URL at a time, one viewport at a time within a page.
type Orchestrator struct {
	browser Browser
	shots   Screenshotter
	auditor Auditor
	cfg     config.CrawlConfig
	limiter *rate.Limiter
}

// New creates an Orchestrator. shots and auditor may be nil when the
// corresponding feature is never enabled.
func New(browser Browser, shots Screenshotter, auditor Auditor, cfg config.CrawlConfig) *Orchestrator {
	limit := rate.Inf
	if cfg.NavPerSecond > 0 {
		limit = rate.Limit(cfg.NavPerSecond)
	}
	return &Orchestrator{
		browser: browser,
		shots:   shots,
		auditor: auditor,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Run executes one crawl session: BFS from startURL until the frontier
// is exhausted or the page budget is reached. Per-page failures are
// logged and never abort the session.
func (o *Orchestrator) Run(ctx context.Context, startURL string, opts Options) (*models.CrawlSession, error) {
	start, err := frontier.Normalize(startURL)
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeInvalidInput, "invalid start URL", err)
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = o.cfg.MaxPages
	}

	f := frontier.New()
	f.Enqueue(start)

	session := &models.CrawlSession{
		StartURL:  start,
		MaxPages:  opts.MaxPages,
		Pages:     []models.PageRecord{},
		StartedAt: time.Now(),
	}

	slog.Info("crawl session starting",
		"startUrl", start,
		"maxPages", opts.MaxPages,
		"screenshots", opts.Screenshots,
		"audit", opts.Audit,
	)

	for session.PagesCrawled < opts.MaxPages {
		u, ok := f.Pop()
		if !ok {
			break
		}
		if f.Visited(u) {
			continue
		}

		// Downloadable resources are never navigated and never count
		// against the page budget.
		if frontier.IsDownloadable(u) {
			f.MarkVisited(u)
			slog.Debug("skipping downloadable resource", "url", u)
			continue
		}

		if err := o.limiter.Wait(ctx); err != nil {
			return o.finish(session), err
		}

		rec, links, ok := o.processPage(ctx, u, session.PagesCrawled+1, opts)
		if !ok {
			// Abandoned page: not visited, so the URL stays eligible
			// for re-discovery.
			continue
		}

		rec.LinksFound = len(links)
		for _, link := range links {
			canonical, err := frontier.Normalize(link)
			if err != nil {
				continue
			}
			if frontier.IsDownloadable(canonical) {
				f.MarkVisited(canonical)
				continue
			}
			f.Enqueue(canonical)
		}

		f.MarkVisited(u)
		session.Pages = append(session.Pages, rec)
		session.PagesCrawled++

		slog.Info("page finalized",
			"seq", rec.Seq,
			"url", u,
			"screenshots", len(rec.Screenshots),
			"links", rec.LinksFound,
			"pending", f.Pending(),
		)
		if opts.Progress != nil {
			opts.Progress(session.PagesCrawled)
		}
	}

	return o.finish(session), nil
}

func (o *Orchestrator) finish(session *models.CrawlSession) *models.CrawlSession {
	session.FinishedAt = time.Now()
	slog.Info("crawl session complete",
		"startUrl", session.StartURL,
		"pagesCrawled", session.PagesCrawled,
		"took", session.FinishedAt.Sub(session.StartedAt).Round(time.Millisecond),
	)
	return session
}

// processPage runs the per-URL pipeline: open context → navigate →
// settle → capture → audit → extract links → close context. The third
// return value is false when the page was abandoned (navigation
// failure); the context is closed on every exit path.
func (o *Orchestrator) processPage(ctx context.Context, canonical string, seq int, opts Options) (models.PageRecord, []string, bool) {
	rec := models.PageRecord{Seq: seq, URL: canonical, Screenshots: []models.ScreenshotRecord{}}

	pc, err := o.browser.OpenContext(ctx)
	if err != nil {
		slog.Error("failed to open browsing context", "url", canonical, "error", err)
		return rec, nil, false
	}
	defer func() {
		if err := pc.Close(); err != nil {
			slog.Warn("failed to close browsing context", "url", canonical, "error", err)
		}
	}()

	status, err := pc.Navigate(ctx, canonical, o.cfg.NavTimeout)
	if err != nil || status >= 400 {
		slog.Warn("navigation failed, abandoning page",
			"url", canonical, "status", status, "error", err)
		return rec, nil, false
	}

	sleepCtx(ctx, o.cfg.PostLoadSettle)

	if opts.Screenshots && o.shots != nil {
		rec.Screenshots = o.shots.CapturePage(ctx, pc, seq, canonical)
	}

	if opts.Audit && o.auditor != nil {
		result, err := o.auditor.Audit(ctx, canonical, seq)
		if err != nil {
			slog.Warn("audit failed, recording absent result", "url", canonical, "error", err)
		} else {
			rec.Audit = result
		}
	}

	var links []string
	rawHTML, err := pc.HTML(ctx)
	if err != nil {
		slog.Warn("failed to read rendered DOM, no links extracted", "url", canonical, "error", err)
	} else {
		rec.Title = pageTitle(rawHTML)
		links = extractLinks(rawHTML, canonical)
	}

	return rec, links, true
}

// sleepCtx blocks for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
