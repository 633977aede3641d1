package edges

import "fmt"

// Params controls the full raster pipeline. The zero value is not valid;
// start from DefaultParams.
type Params struct {
	// Sigma is the standard deviation, in cells, of the Gaussian blur
	// applied before gradient computation.
	Sigma float64 `json:"sigma"`

	// LowQuantile and HighQuantile set the hysteresis thresholds as
	// quantiles of the gradient magnitude over valid cells. A cell above
	// the high threshold seeds an edge; cells above the low threshold
	// extend one.
	LowQuantile  float64 `json:"low_quantile"`
	HighQuantile float64 `json:"high_quantile"`

	// Threshold is the minimum Hough accumulator vote count for a line.
	Threshold int `json:"threshold"`

	// LineLength is the minimum accepted line length in cells.
	LineLength int `json:"line_length"`

	// LineGap is the largest run of off cells tolerated while walking
	// along a detected line.
	LineGap int `json:"line_gap"`

	// WindowSize is the tile width in cells for the Hough transform.
	// Zero means one tile spanning the shorter grid dimension.
	WindowSize int `json:"window_size,omitempty"`

	// MergeLength is the world-coordinate distance under which segment
	// endpoints are snapped together. Zero disables merging.
	MergeLength float64 `json:"merge_length,omitempty"`
}

// DefaultParams returns the parameter set used when a caller has no
// tuning of its own.
func DefaultParams() Params {
	return Params{
		Sigma:        10,
		LowQuantile:  0.1,
		HighQuantile: 0.2,
		Threshold:    1,
		LineLength:   1,
		LineGap:      1,
	}
}

// Validate reports the first problem with the parameter set.
func (p Params) Validate() error {
	if p.Sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %v", p.Sigma)
	}
	if p.LowQuantile < 0 || p.LowQuantile > 1 {
		return fmt.Errorf("low quantile must be in [0, 1], got %v", p.LowQuantile)
	}
	if p.HighQuantile < 0 || p.HighQuantile > 1 {
		return fmt.Errorf("high quantile must be in [0, 1], got %v", p.HighQuantile)
	}
	if p.LowQuantile > p.HighQuantile {
		return fmt.Errorf("low quantile %v exceeds high quantile %v", p.LowQuantile, p.HighQuantile)
	}
	if p.Threshold < 1 {
		return fmt.Errorf("threshold must be at least 1, got %d", p.Threshold)
	}
	if p.LineLength < 1 {
		return fmt.Errorf("line length must be at least 1, got %d", p.LineLength)
	}
	if p.LineGap < 0 {
		return fmt.Errorf("line gap must not be negative, got %d", p.LineGap)
	}
	if p.WindowSize < 0 {
		return fmt.Errorf("window size must not be negative, got %d", p.WindowSize)
	}
	if p.MergeLength < 0 {
		return fmt.Errorf("merge length must not be negative, got %v", p.MergeLength)
	}
	return nil
}
