package readiness

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/use-agent/sitelens/config"
	"github.com/use-agent/sitelens/models"
)

// Waits applied by step 6 when animation markers are found. Script
// libraries (GSAP, AOS and friends) keep mutating the DOM well past the
// point CSS transitions have settled.
const (
	animationScriptWait = 3 * time.Second
	animationCSSWait    = 1500 * time.Millisecond
)

// heightRecheckEvery controls how often the scroll sweep re-measures
// total page height to pick up infinite-scroll growth.
const heightRecheckEvery = 4

// StepResult records the outcome of one verification step. A non-nil
// Err means the step was skipped over, not that the pass aborted.
type StepResult struct {
	Name string
	Err  error
	Took time.Duration
}

// Report summarises one verification pass over a single viewport.
type Report struct {
	Steps        []StepResult
	RegionsFound int
	StillEmpty   int
	RepairPasses int
	Fallback     bool // capture needed the fallback retry
}

// Failed returns the number of steps that reported an error.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Verifier runs the ordered readiness sequence against a Surface.
// Delay and jitter sources are injected at construction so tests can
// substitute deterministic ones.
type Verifier struct {
	cfg config.ReadinessConfig

	// sleep blocks for the duration or until the context is done.
	sleep func(context.Context, time.Duration)

	// rng drives the randomized settle delay and pointer jitter.
	rng *rand.Rand
}

// New creates a Verifier with real time and randomness sources.
func New(cfg config.ReadinessConfig) *Verifier {
	return &Verifier{
		cfg:   cfg,
		sleep: sleepCtx,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Verify runs the full readiness sequence and captures a full-page
// screenshot to outPath. Steps 1-9 are best-effort: each failure is
// logged, recorded in the report, and never escalates. Only a capture
// failure that survives its single fallback retry returns an error.
func (v *Verifier) Verify(ctx context.Context, s Surface, outPath string) (*Report, error) {
	rep := &Report{}

	// ── 1. Load-state signals ────────────────────────────────────────
	v.step(rep, "dom-ready", func() error {
		return s.WaitDOMReady(ctx, v.cfg.DOMReadyCeiling)
	})
	v.step(rep, "network-idle", func() error {
		return s.WaitNetworkIdle(ctx, v.cfg.NetworkIdleCeiling)
	})

	// ── 2. Region scan ───────────────────────────────────────────────
	var regions []Region
	v.step(rep, "detect-regions", func() error {
		detected, err := s.DetectRegions(ctx)
		if err != nil {
			return err
		}
		for i := range detected {
			detected[i].LooksEmpty = looksEmpty(detected[i].TextLen, detected[i].HasImages, v.cfg)
		}
		regions = detected
		rep.RegionsFound = len(regions)
		return nil
	})

	// ── 3. Content-focused scroll sweep ──────────────────────────────
	var metrics Metrics
	v.step(rep, "scroll-sweep", func() error {
		var err error
		metrics, err = s.Metrics(ctx)
		if err != nil {
			return err
		}
		return v.scrollSweep(ctx, s, metrics, regions)
	})

	// ── 4+5. Fill-state measurement and repair loop ──────────────────
	empty := regions
	v.step(rep, "measure-regions", func() error {
		var err error
		empty, err = v.remeasure(ctx, s, regions)
		return err
	})
	v.step(rep, "repair-empty", func() error {
		var err error
		empty, err = v.repairLoop(ctx, s, metrics, regions, empty, rep)
		return err
	})
	rep.StillEmpty = len(empty)

	// ── 6. Animation-framework settle ────────────────────────────────
	v.step(rep, "animation-settle", func() error {
		markers, err := s.AnimationMarkers(ctx)
		if err != nil {
			return err
		}
		switch {
		case markers.ScriptLibraries:
			v.sleep(ctx, animationScriptWait)
		case markers.CSSClasses:
			v.sleep(ctx, animationCSSWait)
		}
		return nil
	})

	// ── 7. Randomized settle ─────────────────────────────────────────
	// Uniform in [SettleMin, SettleMax]; deliberately variable so the
	// capture moment does not resonate with periodic content rotation.
	v.step(rep, "jitter-settle", func() error {
		v.sleep(ctx, v.jitter(v.cfg.SettleMin, v.cfg.SettleMax))
		return nil
	})

	// ── 8. Final micro-interaction ───────────────────────────────────
	v.step(rep, "micro-interaction", func() error {
		return v.microInteraction(ctx, s, metrics)
	})

	// ── 9. Loading-indicator recheck ─────────────────────────────────
	v.step(rep, "loading-indicators", func() error {
		visible, err := s.LoadingIndicatorsVisible(ctx)
		if err != nil {
			return err
		}
		if visible {
			slog.Debug("loading indicators still visible, waiting once more",
				"wait", v.cfg.IndicatorWait)
			v.sleep(ctx, v.cfg.IndicatorWait)
		}
		return nil
	})

	// ── 10. Capture, with one fallback retry ─────────────────────────
	if err := s.CaptureFullPage(ctx, outPath); err != nil {
		slog.Warn("full-page capture failed, retrying once",
			"path", outPath, "error", err)
		v.sleep(ctx, v.cfg.CaptureRetryWait)
		if err := s.CaptureFullPage(ctx, outPath); err != nil {
			return rep, models.NewCrawlError(models.ErrCodeCapture,
				fmt.Sprintf("capture failed after fallback retry for %s", outPath), err)
		}
		rep.Fallback = true
	}

	return rep, nil
}

// step runs one best-effort stage, recording its outcome. Failures are
// logged and swallowed: the pass always proceeds to an attempted
// capture.
func (v *Verifier) step(rep *Report, name string, fn func() error) {
	start := time.Now()
	err := fn()
	rep.Steps = append(rep.Steps, StepResult{Name: name, Err: err, Took: time.Since(start)})
	if err != nil {
		slog.Warn("readiness step failed, continuing", "step", name, "error", err)
	}
}

// scrollSweep walks the scroll plan, dwelling at each stop so lazy
// loaders fire, and periodically re-measures page height to extend the
// plan when the page grows under it. It finishes at the bottom and
// returns to the top.
func (v *Verifier) scrollSweep(ctx context.Context, s Surface, m Metrics, regions []Region) error {
	plan := buildScrollPlan(m, regions, v.cfg.DwellBase)

	for i := 0; i < len(plan); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ScrollTo(ctx, plan[i].offset); err != nil {
			return fmt.Errorf("scroll to %.0f: %w", plan[i].offset, err)
		}
		v.sleep(ctx, plan[i].dwell)

		if (i+1)%heightRecheckEvery == 0 {
			fresh, err := s.Metrics(ctx)
			if err == nil && fresh.PageHeight > m.PageHeight {
				m = fresh
				plan = extendScrollPlan(plan, m, v.cfg.DwellBase)
			}
		}
	}

	// Bottom, then back to the top for capture.
	bottom := m.PageHeight - m.ViewportHeight
	if bottom < 0 {
		bottom = 0
	}
	if err := s.ScrollTo(ctx, bottom); err != nil {
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	v.sleep(ctx, v.cfg.DwellBase)
	if err := s.ScrollTo(ctx, 0); err != nil {
		return fmt.Errorf("scroll to top: %w", err)
	}
	return nil
}

// remeasure re-classifies the full baseline set and returns the regions
// still empty.
func (v *Verifier) remeasure(ctx context.Context, s Surface, baseline []Region) ([]Region, error) {
	if len(baseline) == 0 {
		return nil, nil
	}
	measures, err := s.MeasureRegions(ctx, selectors(baseline))
	if err != nil {
		return baseline, err
	}
	return emptySet(baseline, measures, v.cfg), nil
}

// repairLoop tries to coax empty regions into rendering: each is
// scrolled into centered view, hovered, and orbited by the pointer to
// trip hover and visibility triggers. After every pass the FULL region
// set is re-measured, not just the previously empty subset.
func (v *Verifier) repairLoop(ctx context.Context, s Surface, m Metrics, baseline, empty []Region, rep *Report) ([]Region, error) {
	for attempt := 0; attempt < v.cfg.RetryBudget && len(empty) > 0; attempt++ {
		rep.RepairPasses++
		slog.Debug("repair pass over empty regions",
			"attempt", attempt+1, "empty", len(empty))

		for _, r := range empty {
			if err := ctx.Err(); err != nil {
				return empty, err
			}
			if err := s.ScrollIntoView(ctx, r.Selector); err != nil {
				continue
			}
			if err := s.Hover(ctx, r.Selector); err != nil {
				continue
			}
			v.orbit(ctx, s, m)
		}

		v.sleep(ctx, v.cfg.RetrySettle)

		var err error
		empty, err = v.remeasure(ctx, s, baseline)
		if err != nil {
			return empty, err
		}
	}
	return empty, nil
}

// orbit traces a small circle with the pointer around the viewport
// center, where the region sits after ScrollIntoView centered it.
func (v *Verifier) orbit(ctx context.Context, s Surface, m Metrics) {
	cx, cy := m.ViewportWidth/2, m.ViewportHeight/2
	const radius = 30.0
	for i := 0; i < 8; i++ {
		angle := 2 * math.Pi * float64(i) / 8
		if err := s.MoveMouse(ctx, cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)); err != nil {
			return
		}
		v.sleep(ctx, 30*time.Millisecond)
	}
	_ = s.MoveMouse(ctx, cx, cy)
}

// microInteraction is the final nudge before capture: pointer to
// center, a few jittered points nearby, back to center, then a few
// pixels of scroll and back.
func (v *Verifier) microInteraction(ctx context.Context, s Surface, m Metrics) error {
	cx, cy := m.ViewportWidth/2, m.ViewportHeight/2
	if cx == 0 && cy == 0 {
		fresh, err := s.Metrics(ctx)
		if err != nil {
			return err
		}
		cx, cy = fresh.ViewportWidth/2, fresh.ViewportHeight/2
	}

	if err := s.MoveMouse(ctx, cx, cy); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		dx := (v.rng.Float64() - 0.5) * 48
		dy := (v.rng.Float64() - 0.5) * 48
		if err := s.MoveMouse(ctx, cx+dx, cy+dy); err != nil {
			return err
		}
		v.sleep(ctx, 40*time.Millisecond)
	}
	if err := s.MoveMouse(ctx, cx, cy); err != nil {
		return err
	}

	if err := s.ScrollBy(ctx, 6); err != nil {
		return err
	}
	v.sleep(ctx, 60*time.Millisecond)
	return s.ScrollBy(ctx, -6)
}

// jitter draws a duration uniformly from [min, max].
func (v *Verifier) jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(v.rng.Int63n(int64(max-min)))
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
