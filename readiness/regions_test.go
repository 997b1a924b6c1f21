package readiness

import (
	"testing"

	"github.com/use-agent/sitelens/config"
)

func testCfg() config.ReadinessConfig {
	return config.ReadinessConfig{
		GrowthThreshold: 20,
		ModerateText:    100,
		HighText:        200,
		RetryBudget:     3,
	}
}

func TestLooksEmpty(t *testing.T) {
	cfg := testCfg()
	tests := []struct {
		name      string
		textLen   int
		hasImages bool
		want      bool
	}{
		{"tiny text", 5, true, true},
		{"little text no image", 50, false, true},
		{"little text with image", 50, true, false},
		{"moderate text no image", 150, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksEmpty(tt.textLen, tt.hasImages, cfg); got != tt.want {
				t.Errorf("looksEmpty(%d, %v) = %v, want %v", tt.textLen, tt.hasImages, got, tt.want)
			}
		})
	}
}

func TestFilled(t *testing.T) {
	cfg := testCfg()
	tests := []struct {
		name     string
		baseline Region
		measure  Measure
		want     bool
	}{
		{
			"growth over threshold",
			Region{Selector: ".card", TextLen: 10, LooksEmpty: true},
			Measure{Selector: ".card", TextLen: 30},
			true,
		},
		{
			// Classification ignores the initial emptiness flag.
			"growth with looks-empty set",
			Region{Selector: ".card", TextLen: 0, LooksEmpty: true},
			Measure{Selector: ".card", TextLen: 25},
			true,
		},
		{
			"images loaded with moderate text",
			Region{Selector: ".hero", TextLen: 110},
			Measure{Selector: ".hero", TextLen: 115, ImagesLoaded: true},
			true,
		},
		{
			"absolute high text",
			Region{Selector: ".article", TextLen: 195},
			Measure{Selector: ".article", TextLen: 210},
			true,
		},
		{
			"no growth, no images, low text",
			Region{Selector: ".grid", TextLen: 40},
			Measure{Selector: ".grid", TextLen: 50},
			false,
		},
		{
			"images loaded but too little text",
			Region{Selector: ".thumb", TextLen: 10},
			Measure{Selector: ".thumb", TextLen: 15, ImagesLoaded: true},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filled(tt.baseline, tt.measure, cfg); got != tt.want {
				t.Errorf("filled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmptySet(t *testing.T) {
	cfg := testCfg()
	baseline := []Region{
		{Selector: ".a", TextLen: 10},
		{Selector: ".b", TextLen: 10},
		{Selector: ".c", TextLen: 10},
	}
	measures := []Measure{
		{Selector: ".a", TextLen: 40}, // grew: filled
		{Selector: ".b", TextLen: 12}, // still empty
		// .c has no measure: stays empty
	}

	empty := emptySet(baseline, measures, cfg)
	if len(empty) != 2 {
		t.Fatalf("expected 2 empty regions, got %d", len(empty))
	}
	if empty[0].Selector != ".b" || empty[1].Selector != ".c" {
		t.Errorf("unexpected empty set: %v", empty)
	}
}
