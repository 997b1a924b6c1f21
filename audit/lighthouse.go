package audit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ysmood/gson"

	"github.com/use-agent/sitelens/capture"
	"github.com/use-agent/sitelens/config"
	"github.com/use-agent/sitelens/models"
)

// Runner executes the Lighthouse CLI against a URL and collects the
// category scores plus the raw reports. Each run launches its own
// Chrome instance; the audit never shares the crawl's browser.
type Runner struct {
	cfg       config.AuditConfig
	outputDir string
}

// NewRunner creates a Lighthouse runner writing reports under
// outputDir/lighthouse/.
func NewRunner(cfg config.AuditConfig, outputDir string) *Runner {
	return &Runner{cfg: cfg, outputDir: outputDir}
}

// Audit runs Lighthouse against the URL and returns the four category
// scores on the 0-100 scale. Report files are named with the same
// sequence-and-URL scheme as screenshots so artifacts for a page sort
// together.
func (r *Runner) Audit(ctx context.Context, url string, seq int) (*models.AuditResult, error) {
	dir := filepath.Join(r.outputDir, "lighthouse")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, models.NewCrawlError(models.ErrCodeAudit, "creating lighthouse output directory failed", err)
	}

	base := strings.TrimSuffix(capture.Filename(seq, url), ".png")
	outPath := filepath.Join(dir, base)
	jsonPath := outPath + ".report.json"
	htmlPath := outPath + ".report.html"

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	args := []string{
		url,
		"--output=json,html",
		"--output-path=" + outPath,
		"--chrome-flags=--headless --no-sandbox --disable-gpu",
		"--only-categories=performance,accessibility,best-practices,seo",
		"--quiet",
	}

	cmd := exec.CommandContext(runCtx, r.cfg.Bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, models.NewCrawlError(models.ErrCodeAudit, "lighthouse run timed out", runCtx.Err())
		}
		slog.Debug("lighthouse exited with error", "url", url, "stderr", stderr.String())
		return nil, models.NewCrawlError(models.ErrCodeAudit,
			fmt.Sprintf("lighthouse run failed: %s", firstLine(stderr.String())), err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeAudit, "reading lighthouse report failed", err)
	}

	result, err := parseScores(data)
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeAudit, "parsing lighthouse report failed", err)
	}
	result.ReportJSON = jsonPath
	result.ReportHTML = htmlPath
	return result, nil
}

// parseScores extracts the four category scores from a Lighthouse JSON
// report. Lighthouse reports scores on a 0-1 scale; we expose 0-100.
// A category missing from the report scores zero.
func parseScores(data []byte) (*models.AuditResult, error) {
	doc := gson.NewFrom(string(data))
	categories := doc.Get("categories")
	if categories.Nil() {
		return nil, fmt.Errorf("report has no categories section")
	}
	score := func(name string) int {
		s := categories.Get(name).Get("score")
		if s.Nil() {
			return 0
		}
		return int(s.Num()*100 + 0.5)
	}
	return &models.AuditResult{
		Performance:   score("performance"),
		Accessibility: score("accessibility"),
		BestPractices: score("best-practices"),
		SEO:           score("seo"),
	}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
