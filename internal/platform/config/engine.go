package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"casetriage/internal/jurisdiction"
	"casetriage/internal/triage"
)

// EnvPrefix scopes environment overrides of the engine file, e.g.
// CASETRIAGE_POLICY_TOP_ALERTS overrides policy.top_alerts.
const EnvPrefix = "CASETRIAGE"

// Engine is the scoring policy and the jurisdiction cascade. Keys missing
// from the file keep their defaults.
type Engine struct {
	Policy       triage.Policy
	Jurisdiction jurisdiction.Config
}

// DefaultEngine returns the built-in policy and cascade.
func DefaultEngine() Engine {
	return Engine{
		Policy:       triage.DefaultPolicy(),
		Jurisdiction: jurisdiction.DefaultConfig(),
	}
}

// LoadEngine reads a YAML engine file. An empty path yields the defaults with
// environment overrides applied.
func LoadEngine(path string) (Engine, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Engine{}, fmt.Errorf("read engine config %s: %w", path, err)
		}
	}
	return EngineFrom(v)
}

// EngineFrom overlays the keys set in v onto DefaultEngine and validates the
// result.
func EngineFrom(v *viper.Viper) (Engine, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	e := DefaultEngine()
	p := &e.Policy
	overlays := []error{
		overlay(v, "policy.age_bands", &p.AgeBands),
		overlay(v, "policy.unknown_age_weight", &p.UnknownAgeWeight),
		overlay(v, "policy.elapsed_bands", &p.ElapsedBands),
		overlay(v, "policy.beyond_weight", &p.BeyondWeight),
		overlay(v, "policy.location_bonus", &p.LocationBonus),
		overlay(v, "policy.location_keywords", &p.LocationKeywords),
		overlay(v, "policy.thresholds.critical", &p.Thresholds.Critical),
		overlay(v, "policy.thresholds.urgent", &p.Thresholds.Urgent),
		overlay(v, "policy.top_alerts", &p.TopAlerts),
		overlay(v, "jurisdiction.cascade", &e.Jurisdiction.Cascade),
		overlay(v, "jurisdiction.regions", &e.Jurisdiction.Regions),
	}
	for _, err := range overlays {
		if err != nil {
			return Engine{}, err
		}
	}

	if err := e.Policy.Validate(); err != nil {
		return Engine{}, err
	}
	if err := e.Jurisdiction.Validate(); err != nil {
		return Engine{}, err
	}
	return e, nil
}

// overlay replaces *dst with the value at key when the key is set. Slices are
// replaced whole, never merged element by element.
func overlay[T any](v *viper.Viper, key string, dst *T) error {
	if !v.IsSet(key) {
		return nil
	}
	var val T
	if err := v.UnmarshalKey(key, &val); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	*dst = val
	return nil
}
