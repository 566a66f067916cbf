package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds are the fill-percentage cutoffs for stock classification,
// evaluated lowest first with first match winning.
type Thresholds struct {
	OutOfStock float64 `yaml:"outOfStock"`
	Critical   float64 `yaml:"critical"`
	Medium     float64 `yaml:"medium"`
	Low        float64 `yaml:"low"`
}

// Policy bundles the tunable knobs of the alert engine.
type Policy struct {
	Thresholds        Thresholds `yaml:"thresholds"`
	DisorderThreshold float64    `yaml:"disorderThreshold"`
	NotifyOnUpdate    bool       `yaml:"notifyOnUpdate"`
}

// DefaultPolicy returns the standard store policy: fill ≤0 out of stock,
// ≤10 critical, ≤25 medium, ≤50 low, disorder above 20% flags misplacement,
// notifications fire on creation only.
func DefaultPolicy() Policy {
	return Policy{
		Thresholds: Thresholds{
			OutOfStock: 0,
			Critical:   10,
			Medium:     25,
			Low:        50,
		},
		DisorderThreshold: 20,
		NotifyOnUpdate:    false,
	}
}

// LoadPolicy reads a policy override file in YAML. A missing path returns
// the default policy; a present but unreadable or malformed file is an error
// so a typo never silently reverts thresholds.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return policy, nil
}

// Validate checks threshold ordering. Cutoffs must be strictly increasing
// or classification would have unreachable tiers.
func (p Policy) Validate() error {
	t := p.Thresholds
	if !(t.OutOfStock < t.Critical && t.Critical < t.Medium && t.Medium < t.Low) {
		return fmt.Errorf("thresholds must be strictly increasing: %+v", t)
	}
	if p.DisorderThreshold < 0 || p.DisorderThreshold > 100 {
		return fmt.Errorf("disorder threshold out of range: %v", p.DisorderThreshold)
	}
	return nil
}
