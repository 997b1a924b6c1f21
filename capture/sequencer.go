// Package capture drives the readiness verifier once per viewport
// profile and records the resulting screenshots.
package capture

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/use-agent/sitelens/models"
	"github.com/use-agent/sitelens/readiness"
)

// Surface is a readiness surface whose rendering viewport can be
// resized between captures.
type Surface interface {
	readiness.Surface
	SetViewport(ctx context.Context, width, height int) error
}

// Verifier runs one readiness pass culminating in a capture to path.
type Verifier interface {
	Verify(ctx context.Context, s readiness.Surface, path string) (*readiness.Report, error)
}

// Sequencer captures a page at each fixed viewport profile in order.
type Sequencer struct {
	verifier  Verifier
	outputDir string
}

// NewSequencer creates a Sequencer writing under outputDir/screenshots.
func NewSequencer(verifier Verifier, outputDir string) *Sequencer {
	return &Sequencer{verifier: verifier, outputDir: outputDir}
}

// CapturePage resizes the surface to each viewport profile and runs the
// readiness verifier against it. A failed viewport yields no record and
// never prevents the remaining viewports from being attempted.
func (s *Sequencer) CapturePage(ctx context.Context, surf Surface, seq int, canonicalURL string) []models.ScreenshotRecord {
	name := Filename(seq, canonicalURL)
	records := make([]models.ScreenshotRecord, 0, len(models.Viewports))

	for _, vp := range models.Viewports {
		if err := surf.SetViewport(ctx, vp.Width, vp.Height); err != nil {
			slog.Warn("viewport resize failed, skipping profile",
				"viewport", vp.Name, "url", canonicalURL, "error", err)
			continue
		}

		rel := filepath.Join("screenshots", vp.Name, name)
		abs := filepath.Join(s.outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			slog.Warn("screenshot directory unavailable, skipping profile",
				"viewport", vp.Name, "error", err)
			continue
		}

		rep, err := s.verifier.Verify(ctx, surf, abs)
		if err != nil {
			slog.Warn("viewport capture failed",
				"viewport", vp.Name, "url", canonicalURL, "error", err)
			continue
		}

		slog.Debug("viewport captured",
			"viewport", vp.Name,
			"url", canonicalURL,
			"regions", rep.RegionsFound,
			"stillEmpty", rep.StillEmpty,
			"fallback", rep.Fallback,
		)
		records = append(records, models.ScreenshotRecord{
			Viewport: vp.Name,
			Path:     rel,
			Filename: name,
			Fallback: rep.Fallback,
		})
	}
	return records
}
