package triage

import (
	"fmt"
	"slices"
	"time"

	dErrors "casetriage/pkg/domain-errors"
	"casetriage/pkg/platform/strings"
)

// AgeBand assigns Weight to every age from MinAge up to the next band's MinAge.
type AgeBand struct {
	MinAge int     `mapstructure:"min_age" json:"min_age" yaml:"min_age"`
	Weight float64 `mapstructure:"weight" json:"weight" yaml:"weight"`
}

// ElapsedBand assigns Weight to reports at most Within old.
type ElapsedBand struct {
	Within time.Duration `mapstructure:"within" json:"within" yaml:"within"`
	Weight float64       `mapstructure:"weight" json:"weight" yaml:"weight"`
}

// Thresholds are inclusive lower bounds on the summed score.
type Thresholds struct {
	Critical float64 `mapstructure:"critical" json:"critical" yaml:"critical"`
	Urgent   float64 `mapstructure:"urgent" json:"urgent" yaml:"urgent"`
}

// Policy is the weight and threshold table behind urgency scoring and the
// dashboard alert list. It is data: loaded once, validated, never mutated.
type Policy struct {
	AgeBands         []AgeBand     `mapstructure:"age_bands" json:"age_bands" yaml:"age_bands"`
	UnknownAgeWeight float64       `mapstructure:"unknown_age_weight" json:"unknown_age_weight" yaml:"unknown_age_weight"`
	ElapsedBands     []ElapsedBand `mapstructure:"elapsed_bands" json:"elapsed_bands" yaml:"elapsed_bands"`
	BeyondWeight     float64       `mapstructure:"beyond_weight" json:"beyond_weight" yaml:"beyond_weight"`
	LocationBonus    float64       `mapstructure:"location_bonus" json:"location_bonus" yaml:"location_bonus"`
	LocationKeywords []string      `mapstructure:"location_keywords" json:"location_keywords" yaml:"location_keywords"`
	Thresholds       Thresholds    `mapstructure:"thresholds" json:"thresholds" yaml:"thresholds"`
	TopAlerts        int           `mapstructure:"top_alerts" json:"top_alerts" yaml:"top_alerts"`
}

// DefaultTopAlerts bounds the dashboard alert list in DefaultPolicy.
const DefaultTopAlerts = 3

// DefaultPolicy favours the very young and the elderly, and the first hours
// after a report.
func DefaultPolicy() Policy {
	return Policy{
		AgeBands: []AgeBand{
			{MinAge: 0, Weight: 40},
			{MinAge: 6, Weight: 30},
			{MinAge: 13, Weight: 20},
			{MinAge: 18, Weight: 5},
			{MinAge: 60, Weight: 25},
		},
		UnknownAgeWeight: 5,
		ElapsedBands: []ElapsedBand{
			{Within: 6 * time.Hour, Weight: 40},
			{Within: 24 * time.Hour, Weight: 30},
			{Within: 72 * time.Hour, Weight: 20},
			{Within: 7 * 24 * time.Hour, Weight: 10},
		},
		BeyondWeight:  5,
		LocationBonus: 20,
		LocationKeywords: []string{
			"terminal", "station", "estacion", "bus", "metro", "airport", "aeropuerto",
			"market", "mercado", "mall", "nightclub", "discoteca", "disco", "plaza",
		},
		Thresholds: Thresholds{Critical: 70, Urgent: 40},
		TopAlerts:  DefaultTopAlerts,
	}
}

// Validate checks the policy is internally consistent.
func (p Policy) Validate() error {
	if len(p.AgeBands) == 0 {
		return invalidPolicy("at least one age band is required")
	}
	if p.AgeBands[0].MinAge != 0 {
		return invalidPolicy("the first age band must start at age 0")
	}
	for i, b := range p.AgeBands {
		if b.Weight <= 0 {
			return invalidPolicy(fmt.Sprintf("age band %d must have a positive weight", i))
		}
		if i > 0 && b.MinAge <= p.AgeBands[i-1].MinAge {
			return invalidPolicy("age bands must be strictly ascending by min_age")
		}
	}
	if p.UnknownAgeWeight <= 0 {
		return invalidPolicy("unknown_age_weight must be positive")
	}
	for i, b := range p.ElapsedBands {
		if b.Within <= 0 {
			return invalidPolicy(fmt.Sprintf("elapsed band %d must have a positive window", i))
		}
		if b.Weight < 0 {
			return invalidPolicy(fmt.Sprintf("elapsed band %d cannot have a negative weight", i))
		}
		if i > 0 && b.Within <= p.ElapsedBands[i-1].Within {
			return invalidPolicy("elapsed bands must be strictly ascending by window")
		}
	}
	if p.BeyondWeight < 0 || p.LocationBonus < 0 {
		return invalidPolicy("weights cannot be negative")
	}
	if p.Thresholds.Urgent < 0 || p.Thresholds.Critical <= p.Thresholds.Urgent {
		return invalidPolicy("thresholds must satisfy 0 <= urgent < critical")
	}
	if p.TopAlerts < 1 {
		return invalidPolicy("top_alerts must be at least 1")
	}
	return nil
}

// normalized returns a private copy with keywords canonicalised.
func (p Policy) normalized() Policy {
	cp := p
	cp.AgeBands = slices.Clone(p.AgeBands)
	cp.ElapsedBands = slices.Clone(p.ElapsedBands)
	cp.LocationKeywords = strings.NormalizeKeywords(slices.Clone(p.LocationKeywords))
	return cp
}

func invalidPolicy(msg string) error {
	return dErrors.New(dErrors.CodeValidation, "invalid triage policy: "+msg)
}
