package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskheart/pkg/log"
)

const DefaultPolicyVersion = "emotional-intelligence-v1"

// PolicyConfig holds every threshold the emotional context engine applies.
// Version is stamped on each audit event so a change in behavior can be
// traced to a policy revision.
type PolicyConfig struct {
	Version string `env:"EMOCTX_POLICY_VERSION" envDefault:"emotional-intelligence-v1"`

	// Mood trajectory
	TrajectoryLookback   time.Duration `env:"EMOCTX_TRAJECTORY_LOOKBACK" envDefault:"336h"`
	TrajectoryMinRatings int           `env:"EMOCTX_TRAJECTORY_MIN_RATINGS" envDefault:"3"`
	TrajectoryThreshold  float64       `env:"EMOCTX_TRAJECTORY_THRESHOLD" envDefault:"0.5"`

	// Absence
	AbsenceThreshold time.Duration `env:"EMOCTX_ABSENCE_THRESHOLD" envDefault:"48h"`

	// Checkbacks
	CheckbackMaxAge   time.Duration `env:"EMOCTX_CHECKBACK_MAX_AGE" envDefault:"168h"`
	CheckbackMaxCount int           `env:"EMOCTX_CHECKBACK_MAX_COUNT" envDefault:"3"`

	// Execution
	AnalyzerTimeout time.Duration `env:"EMOCTX_ANALYZER_TIMEOUT" envDefault:"2s"`
	Sequential      bool          `env:"EMOCTX_SEQUENTIAL" envDefault:"false"`
}

func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		Version:              DefaultPolicyVersion,
		TrajectoryLookback:   14 * 24 * time.Hour,
		TrajectoryMinRatings: 3,
		TrajectoryThreshold:  0.5,
		AbsenceThreshold:     48 * time.Hour,
		CheckbackMaxAge:      7 * 24 * time.Hour,
		CheckbackMaxCount:    3,
		AnalyzerTimeout:      2 * time.Second,
	}
}

func NewPolicyConfig(ctx context.Context) *PolicyConfig {
	c, err := LoadPolicyConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Policy config")
	}
	return c
}

func LoadPolicyConfig() (*PolicyConfig, error) {
	c := &PolicyConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c PolicyConfig) Validate() error {
	var errs []error
	if c.Version == "" {
		errs = append(errs, errors.New("policy version is empty"))
	}
	if c.TrajectoryLookback <= 0 {
		errs = append(errs, fmt.Errorf("trajectory lookback must be positive, got %s", c.TrajectoryLookback))
	}
	if c.TrajectoryMinRatings < 2 {
		errs = append(errs, fmt.Errorf("trajectory needs at least 2 ratings to split, got %d", c.TrajectoryMinRatings))
	}
	if c.TrajectoryThreshold <= 0 {
		errs = append(errs, fmt.Errorf("trajectory threshold must be positive, got %v", c.TrajectoryThreshold))
	}
	if c.AbsenceThreshold <= 0 {
		errs = append(errs, fmt.Errorf("absence threshold must be positive, got %s", c.AbsenceThreshold))
	}
	if c.CheckbackMaxAge <= 0 {
		errs = append(errs, fmt.Errorf("checkback max age must be positive, got %s", c.CheckbackMaxAge))
	}
	if c.CheckbackMaxCount <= 0 {
		errs = append(errs, fmt.Errorf("checkback max count must be positive, got %d", c.CheckbackMaxCount))
	}
	if c.AnalyzerTimeout <= 0 {
		errs = append(errs, fmt.Errorf("analyzer timeout must be positive, got %s", c.AnalyzerTimeout))
	}
	return errors.Join(errs...)
}
