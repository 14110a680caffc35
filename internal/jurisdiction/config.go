package jurisdiction

import (
	"fmt"

	dErrors "casetriage/pkg/domain-errors"
	"casetriage/pkg/platform/strings"
)

// Level is one step of the fallback cascade.
type Level string

const (
	// LevelExact fetches cases whose jurisdiction equals the requested label.
	LevelExact Level = "exact"
	// LevelRegion fetches cases from the region containing the label and its member labels.
	LevelRegion Level = "region"
	// LevelAll fetches every case, unscoped.
	LevelAll Level = "all"
)

func (l Level) valid() bool {
	switch l {
	case LevelExact, LevelRegion, LevelAll:
		return true
	}
	return false
}

// Config describes the cascade order and the region map.
type Config struct {
	Cascade []Level             `mapstructure:"cascade" json:"cascade" yaml:"cascade"`
	Regions map[string][]string `mapstructure:"regions" json:"regions" yaml:"regions"`
}

// DefaultConfig cascades exact -> region -> all with no regions configured.
func DefaultConfig() Config {
	return Config{
		Cascade: []Level{LevelExact, LevelRegion, LevelAll},
		Regions: map[string][]string{},
	}
}

// Validate rejects empty, unknown or repeated cascade levels and members
// claimed by more than one region.
func (c Config) Validate() error {
	if len(c.Cascade) == 0 {
		return invalidConfig("cascade must name at least one level")
	}
	seen := make(map[Level]struct{}, len(c.Cascade))
	for _, l := range c.Cascade {
		if !l.valid() {
			return invalidConfig(fmt.Sprintf("unknown cascade level %q", l))
		}
		if _, dup := seen[l]; dup {
			return invalidConfig(fmt.Sprintf("cascade level %q listed twice", l))
		}
		seen[l] = struct{}{}
	}

	owner := map[string]string{}
	for region, members := range c.Regions {
		r := strings.NormalizeLabel(region)
		if r == "" {
			return invalidConfig("region name cannot be blank")
		}
		for _, m := range members {
			label := strings.NormalizeLabel(m)
			if label == "" {
				continue
			}
			if prev, ok := owner[label]; ok && prev != r {
				return invalidConfig(fmt.Sprintf("label %q belongs to regions %q and %q", label, prev, r))
			}
			owner[label] = r
		}
	}
	return nil
}

func invalidConfig(msg string) error {
	return dErrors.New(dErrors.CodeValidation, "invalid jurisdiction config: "+msg)
}

// regionIndex is the normalised form of Config.Regions.
type regionIndex struct {
	members  map[string][]string // region -> member labels
	regionOf map[string]string   // member label -> region
}

func buildRegionIndex(regions map[string][]string) regionIndex {
	idx := regionIndex{
		members:  make(map[string][]string, len(regions)),
		regionOf: map[string]string{},
	}
	for region, members := range regions {
		r := strings.NormalizeLabel(region)
		labels := make([]string, 0, len(members))
		for _, m := range members {
			label := strings.NormalizeLabel(m)
			if label == "" || label == r {
				continue
			}
			labels = append(labels, label)
			idx.regionOf[label] = r
		}
		idx.members[r] = append(idx.members[r], labels...)
	}
	return idx
}

// labelsFor returns the labels the region level queries for label, region
// first. A label that is itself a region expands to its members.
func (idx regionIndex) labelsFor(label string) []string {
	region, ok := idx.regionOf[label]
	if !ok {
		if _, isRegion := idx.members[label]; !isRegion {
			return nil
		}
		region = label
	}
	out := make([]string, 0, len(idx.members[region])+1)
	out = append(out, region)
	out = append(out, idx.members[region]...)
	return out
}
