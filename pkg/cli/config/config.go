package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/uxlens/pkg/service/classifier"
	"github.com/urfave/cli/v3"
)

// RulesFile is the TOML document that overrides detector thresholds.
// Omitted keys keep their defaults.
type RulesFile struct {
	Latency  *LatencyRules  `toml:"latency"`
	Contrast *ContrastRules `toml:"contrast"`
}

type LatencyRules struct {
	ThresholdMs *float64 `toml:"threshold_ms"`
	HighMs      *float64 `toml:"high_ms"`
}

type ContrastRules struct {
	MinRatio  *float64 `toml:"min_ratio"`
	HighBelow *float64 `toml:"high_below"`
}

// Thresholds applies the file on top of the default thresholds and validates
// the result
func (x *RulesFile) Thresholds() (classifier.Thresholds, error) {
	t := classifier.DefaultThresholds()

	if l := x.Latency; l != nil {
		if l.ThresholdMs != nil {
			t.LatencyMs = *l.ThresholdMs
		}
		if l.HighMs != nil {
			t.LatencyHighMs = *l.HighMs
		}
	}
	if c := x.Contrast; c != nil {
		if c.MinRatio != nil {
			t.ContrastMin = *c.MinRatio
		}
		if c.HighBelow != nil {
			t.ContrastHighBelow = *c.HighBelow
		}
	}

	if err := t.Validate(); err != nil {
		return classifier.Thresholds{}, goerr.Wrap(ErrInvalidRules, err.Error())
	}
	return t, nil
}

// LoadRules reads a rules file. Unknown keys are rejected.
func LoadRules(path string) (classifier.Thresholds, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return classifier.Thresholds{}, goerr.Wrap(ErrRulesNotFound, "rules file does not exist", goerr.V(RulesPathKey, path))
		}
		return classifier.Thresholds{}, goerr.Wrap(err, "failed to read rules file", goerr.V(RulesPathKey, path))
	}
	var rules RulesFile
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&rules); err != nil {
		return classifier.Thresholds{}, goerr.Wrap(ErrInvalidRules, "failed to parse TOML rules",
			goerr.V(RulesPathKey, path), goerr.V("error", err.Error()))
	}

	t, err := rules.Thresholds()
	if err != nil {
		return classifier.Thresholds{}, goerr.Wrap(err, "rules validation failed", goerr.V(RulesPathKey, path))
	}
	return t, nil
}

// Rules holds the --rules flag
type Rules struct {
	path string
}

func (x *Rules) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "rules",
			Usage:       "TOML file overriding detector thresholds",
			Category:    "Classifier",
			Sources:     cli.EnvVars("UXLENS_RULES"),
			Destination: &x.path,
		},
	}
}

// Configure returns the thresholds from the rules file, or the defaults when
// no file is given
func (x *Rules) Configure() (classifier.Thresholds, error) {
	if x.path == "" {
		return classifier.DefaultThresholds(), nil
	}
	return LoadRules(x.path)
}

// Classifier builds a classifier with the configured thresholds
func (x *Rules) Classifier(opts ...classifier.Option) (*classifier.Classifier, error) {
	t, err := x.Configure()
	if err != nil {
		return nil, err
	}
	return classifier.New(append([]classifier.Option{classifier.WithThresholds(t)}, opts...)...), nil
}
