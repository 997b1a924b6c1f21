package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/sitelens/readiness"
)

// stubSurface satisfies Surface with no-ops and records viewport sizes.
type stubSurface struct {
	viewports [][2]int
	resizeErr error
}

func (s *stubSurface) SetViewport(ctx context.Context, w, h int) error {
	if s.resizeErr != nil {
		return s.resizeErr
	}
	s.viewports = append(s.viewports, [2]int{w, h})
	return nil
}

func (s *stubSurface) WaitDOMReady(context.Context, time.Duration) error    { return nil }
func (s *stubSurface) WaitNetworkIdle(context.Context, time.Duration) error { return nil }
func (s *stubSurface) Metrics(context.Context) (readiness.Metrics, error) {
	return readiness.Metrics{}, nil
}
func (s *stubSurface) DetectRegions(context.Context) ([]readiness.Region, error) { return nil, nil }
func (s *stubSurface) MeasureRegions(context.Context, []string) ([]readiness.Measure, error) {
	return nil, nil
}
func (s *stubSurface) ScrollTo(context.Context, float64) error        { return nil }
func (s *stubSurface) ScrollBy(context.Context, float64) error        { return nil }
func (s *stubSurface) ScrollIntoView(context.Context, string) error   { return nil }
func (s *stubSurface) Hover(context.Context, string) error            { return nil }
func (s *stubSurface) MoveMouse(context.Context, float64, float64) error { return nil }
func (s *stubSurface) AnimationMarkers(context.Context) (readiness.AnimationMarkers, error) {
	return readiness.AnimationMarkers{}, nil
}
func (s *stubSurface) LoadingIndicatorsVisible(context.Context) (bool, error) { return false, nil }
func (s *stubSurface) CaptureFullPage(context.Context, string) error          { return nil }

// stubVerifier fails any capture whose path contains a marker string.
type stubVerifier struct {
	failOn   string
	fallback bool
	paths    []string
}

func (v *stubVerifier) Verify(ctx context.Context, s readiness.Surface, path string) (*readiness.Report, error) {
	if v.failOn != "" && strings.Contains(path, v.failOn) {
		return &readiness.Report{}, errors.New("capture failed")
	}
	v.paths = append(v.paths, path)
	return &readiness.Report{Fallback: v.fallback}, nil
}

func TestCapturePage_AllViewports(t *testing.T) {
	surf := &stubSurface{}
	ver := &stubVerifier{}
	seq := NewSequencer(ver, t.TempDir())

	records := seq.CapturePage(context.Background(), surf, 1, "https://example.com/about")
	if len(records) != 3 {
		t.Fatalf("expected 3 screenshot records, got %d", len(records))
	}

	wantSizes := [][2]int{{375, 667}, {768, 1024}, {1440, 900}}
	for i, want := range wantSizes {
		if surf.viewports[i] != want {
			t.Errorf("viewport %d resized to %v, want %v", i, surf.viewports[i], want)
		}
	}
	for i, name := range []string{"mobile", "tablet", "desktop"} {
		if records[i].Viewport != name {
			t.Errorf("record %d viewport = %q, want %q", i, records[i].Viewport, name)
		}
		if !strings.Contains(records[i].Path, "screenshots/"+name+"/") {
			t.Errorf("record %d path %q not under screenshots/%s", i, records[i].Path, name)
		}
	}
}

func TestCapturePage_MobileFailureDoesNotBlockOthers(t *testing.T) {
	surf := &stubSurface{}
	ver := &stubVerifier{failOn: "mobile"}
	seq := NewSequencer(ver, t.TempDir())

	records := seq.CapturePage(context.Background(), surf, 2, "https://example.com/")
	if len(records) != 2 {
		t.Fatalf("expected tablet and desktop records, got %d", len(records))
	}
	if records[0].Viewport != "tablet" || records[1].Viewport != "desktop" {
		t.Errorf("unexpected surviving viewports: %v", records)
	}
	// All three viewports were still attempted.
	if len(surf.viewports) != 3 {
		t.Errorf("resize attempted %d times, want 3", len(surf.viewports))
	}
}

func TestCapturePage_SharedFilenameAcrossViewports(t *testing.T) {
	surf := &stubSurface{}
	ver := &stubVerifier{}
	seq := NewSequencer(ver, t.TempDir())

	records := seq.CapturePage(context.Background(), surf, 5, "https://example.com/pricing")
	for _, r := range records[1:] {
		if r.Filename != records[0].Filename {
			t.Errorf("viewports should share one filename: %q vs %q", r.Filename, records[0].Filename)
		}
	}
}

func TestCapturePage_FallbackFlagPropagates(t *testing.T) {
	surf := &stubSurface{}
	ver := &stubVerifier{fallback: true}
	seq := NewSequencer(ver, t.TempDir())

	records := seq.CapturePage(context.Background(), surf, 1, "https://example.com/")
	for _, r := range records {
		if !r.Fallback {
			t.Errorf("fallback flag lost for viewport %s", r.Viewport)
		}
	}
}
