// Package readiness decides, heuristically, when a dynamically rendered
// page has finished populating visible content so a full-page capture is
// not taken of a half-loaded state. The verdict is best-effort: every
// step is bounded by its own timeout and a failed step never blocks the
// attempted capture.
package readiness

import (
	"context"
	"time"
)

// Box is a viewport-relative bounding box.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Region is a detected DOM subtree candidate for holding meaningful
// content. Regions are created fresh per verification pass and
// discarded once the page is captured.
type Region struct {
	Selector  string `json:"selector"`
	Box       Box    `json:"box"`
	TextLen   int    `json:"textLen"`
	HasImages bool   `json:"hasImages"`

	// LooksEmpty is the initial emptiness classification, set at
	// detection time from the baseline text length.
	LooksEmpty bool `json:"-"`
}

// Measure is the re-measured state of a previously detected region.
type Measure struct {
	Selector     string `json:"selector"`
	TextLen      int    `json:"textLen"`
	ImagesLoaded bool   `json:"imagesLoaded"` // all descendant images complete
}

// Metrics is the current geometry of the rendering surface.
type Metrics struct {
	ViewportWidth  float64 `json:"viewportWidth"`
	ViewportHeight float64 `json:"viewportHeight"`
	PageHeight     float64 `json:"pageHeight"`
}

// AnimationMarkers reports which animation frameworks the page appears
// to use. Script-driven libraries get a longer settle than CSS-only
// transitions.
type AnimationMarkers struct {
	CSSClasses      bool `json:"cssClasses"`
	ScriptLibraries bool `json:"scriptLibraries"`
}

// Surface is the capability contract the verifier drives. It is a thin
// slice of what a browser page can do; the rod-backed implementation
// lives in the browser package, and tests substitute fakes. Region
// detection is part of the contract so alternate detection strategies
// can be swapped in without touching the verifier.
type Surface interface {
	// WaitDOMReady blocks until the DOM content has loaded, or the
	// timeout elapses.
	WaitDOMReady(ctx context.Context, timeout time.Duration) error

	// WaitNetworkIdle blocks until network activity has quieted, or
	// the timeout elapses.
	WaitNetworkIdle(ctx context.Context, timeout time.Duration) error

	// Metrics returns the current viewport and page geometry.
	Metrics(ctx context.Context) (Metrics, error)

	// DetectRegions scans the rendered DOM for content-region
	// candidates: visible elements of meaningful size matching the
	// curated structural patterns.
	DetectRegions(ctx context.Context) ([]Region, error)

	// MeasureRegions re-measures text length and image completion for
	// the given selectors. Selectors that no longer resolve are
	// reported with a zero measure.
	MeasureRegions(ctx context.Context, selectors []string) ([]Measure, error)

	// ScrollTo smooth-scrolls the page to the vertical offset.
	ScrollTo(ctx context.Context, y float64) error

	// ScrollBy nudges the page by a vertical delta.
	ScrollBy(ctx context.Context, dy float64) error

	// ScrollIntoView centers the first element matching the selector.
	ScrollIntoView(ctx context.Context, selector string) error

	// Hover moves the pointer over the first element matching the
	// selector.
	Hover(ctx context.Context, selector string) error

	// MoveMouse moves the virtual pointer to viewport coordinates.
	MoveMouse(ctx context.Context, x, y float64) error

	// AnimationMarkers inspects the page for animation-framework
	// fingerprints.
	AnimationMarkers(ctx context.Context) (AnimationMarkers, error)

	// LoadingIndicatorsVisible reports whether spinner/loader style
	// elements are still visible.
	LoadingIndicatorsVisible(ctx context.Context) (bool, error)

	// CaptureFullPage writes a full-page screenshot to the path.
	CaptureFullPage(ctx context.Context, path string) error
}
