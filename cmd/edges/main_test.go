package main

import (
	"testing"
	"time"
)

// stashParamFlags snapshots the parameter flags and restores them when the
// test finishes, since the flag pointers are package globals.
func stashParamFlags(t *testing.T) {
	t.Helper()
	origSigma, origLow, origHigh := *sigma, *lowQuantile, *highQuantile
	origThresh, origLen, origGap := *threshold, *lineLength, *lineGap
	origWin, origMerge, origCfg := *windowSize, *mergeLength, *configFile
	t.Cleanup(func() {
		*sigma, *lowQuantile, *highQuantile = origSigma, origLow, origHigh
		*threshold, *lineLength, *lineGap = origThresh, origLen, origGap
		*windowSize, *mergeLength, *configFile = origWin, origMerge, origCfg
	})
}

func TestFlagDefaults(t *testing.T) {
	if *timeout != 5*time.Minute {
		t.Errorf("timeout default = %v, want 5m", *timeout)
	}
	if *input != "" || *overlay != "" || *quicklook != "" {
		t.Error("input, overlay, and quicklook must default to empty")
	}
	if *lineGap != -1 || *windowSize != -1 || *mergeLength != -1 {
		t.Error("line-gap, window, and merge must default to the -1 sentinel")
	}
}

func TestBuildParamsDefaults(t *testing.T) {
	stashParamFlags(t)

	p, err := buildParams()
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if p.Sigma != 10 || p.LowQuantile != 0.1 || p.HighQuantile != 0.2 {
		t.Errorf("defaults = %+v, want sigma 10 and quantiles 0.1/0.2", p)
	}
	if p.Threshold != 1 || p.LineLength != 1 || p.LineGap != 1 {
		t.Errorf("defaults = %+v, want threshold 1, line length 1, line gap 1", p)
	}
	if p.WindowSize != 0 || p.MergeLength != 0 {
		t.Errorf("defaults = %+v, want window 0 and merge 0", p)
	}
}

func TestBuildParamsOverrides(t *testing.T) {
	stashParamFlags(t)
	*sigma = 4
	*lowQuantile = 0.05
	*highQuantile = 0.3
	*threshold = 8
	*lineLength = 12
	*lineGap = 3
	*windowSize = 64
	*mergeLength = 2.5

	p, err := buildParams()
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if p.Sigma != 4 || p.LowQuantile != 0.05 || p.HighQuantile != 0.3 {
		t.Errorf("overrides = %+v, want sigma 4 and quantiles 0.05/0.3", p)
	}
	if p.Threshold != 8 || p.LineLength != 12 || p.LineGap != 3 {
		t.Errorf("overrides = %+v, want threshold 8, line length 12, line gap 3", p)
	}
	if p.WindowSize != 64 || p.MergeLength != 2.5 {
		t.Errorf("overrides = %+v, want window 64 and merge 2.5", p)
	}
}

// A flag value of zero is legitimate for the gap, window, and merge knobs,
// which is why those flags use -1 rather than 0 as the unset sentinel.
func TestBuildParamsExplicitZero(t *testing.T) {
	stashParamFlags(t)
	*lineGap = 0
	*windowSize = 0
	*mergeLength = 0

	p, err := buildParams()
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if p.LineGap != 0 {
		t.Errorf("LineGap = %d, want an explicit 0 to override the default", p.LineGap)
	}
	if p.WindowSize != 0 || p.MergeLength != 0 {
		t.Errorf("params = %+v, want window 0 and merge 0", p)
	}
}

func TestBuildParamsQuantileOrder(t *testing.T) {
	stashParamFlags(t)
	*lowQuantile = 0.5

	if _, err := buildParams(); err == nil {
		t.Fatal("expected a validation error when the low quantile exceeds the high")
	}
}

func TestBuildParamsMissingConfig(t *testing.T) {
	stashParamFlags(t)
	*configFile = "no-such-config.json"

	if _, err := buildParams(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
