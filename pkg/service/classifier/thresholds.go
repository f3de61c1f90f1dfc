package classifier

import "github.com/m-mizutani/goerr/v2"

// Thresholds holds the detector cut-offs. Latency values are milliseconds.
type Thresholds struct {
	// LatencyMs: an issue is raised only when responseTime is strictly greater
	LatencyMs float64
	// LatencyHighMs: above this the issue is high, otherwise medium
	LatencyHighMs float64
	// ContrastMin: ratios strictly below are an issue
	ContrastMin float64
	// ContrastHighBelow: ratios strictly below are high
	ContrastHighBelow float64
}

// DefaultThresholds returns the standard cut-offs (WCAG AA contrast, 3s latency)
func DefaultThresholds() Thresholds {
	return Thresholds{
		LatencyMs:         3000,
		LatencyHighMs:     5000,
		ContrastMin:       4.5,
		ContrastHighBelow: 3.0,
	}
}

// Validate checks that the thresholds are positive and ordered
func (t Thresholds) Validate() error {
	if t.LatencyMs <= 0 {
		return goerr.Wrap(ErrInvalidThresholds, "latency threshold must be positive", goerr.V("latency_ms", t.LatencyMs))
	}
	if t.LatencyHighMs < t.LatencyMs {
		return goerr.Wrap(ErrInvalidThresholds, "latency high threshold must not be below latency threshold",
			goerr.V("latency_ms", t.LatencyMs), goerr.V("latency_high_ms", t.LatencyHighMs))
	}
	if t.ContrastHighBelow <= 0 {
		return goerr.Wrap(ErrInvalidThresholds, "contrast high threshold must be positive",
			goerr.V("contrast_high_below", t.ContrastHighBelow))
	}
	if t.ContrastMin < t.ContrastHighBelow {
		return goerr.Wrap(ErrInvalidThresholds, "contrast minimum must not be below contrast high threshold",
			goerr.V("contrast_min", t.ContrastMin), goerr.V("contrast_high_below", t.ContrastHighBelow))
	}
	return nil
}

var ErrInvalidThresholds = goerr.New("invalid classifier thresholds")
