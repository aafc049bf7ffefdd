package model

import (
	"fmt"
	"sort"
	"strings"
)

// DeliveryMode is the in-person/remote modality forced on a (section, room)
// pairing by capacity. It is a property of the pairing, never of a section
// or room alone.
type DeliveryMode string

const (
	ResidentialSpread DeliveryMode = "residential_spread"
	HybridSplit       DeliveryMode = "hybrid_split"
	HybridTouchpoint  DeliveryMode = "hybrid_touchpoint"
	Remote            DeliveryMode = "remote"
)

// ModeSet is a set of permitted delivery modes.
type ModeSet map[DeliveryMode]struct{}

// AllModes returns the full permitted set, used when a section states no
// preference.
func AllModes() ModeSet {
	return ModeSet{
		ResidentialSpread: {},
		HybridSplit:       {},
		HybridTouchpoint:  {},
		Remote:            {},
	}
}

// ParseModeSet parses a comma-separated preference string ("hybrid_split,
// remote"). An empty string means no stated preference and yields the full
// set. Unknown mode names are rejected.
func ParseModeSet(raw string) (ModeSet, error) {
	if strings.TrimSpace(raw) == "" {
		return AllModes(), nil
	}
	set := make(ModeSet)
	for _, part := range strings.Split(raw, ",") {
		mode := DeliveryMode(strings.TrimSpace(part))
		switch mode {
		case ResidentialSpread, HybridSplit, HybridTouchpoint, Remote:
			set[mode] = struct{}{}
		default:
			return nil, fmt.Errorf("unknown delivery mode %q", part)
		}
	}
	return set, nil
}

// Contains reports set membership.
func (s ModeSet) Contains(m DeliveryMode) bool {
	_, ok := s[m]
	return ok
}

// Only reports whether m is the single permitted mode.
func (s ModeSet) Only(m DeliveryMode) bool {
	return len(s) == 1 && s.Contains(m)
}

func (s ModeSet) String() string {
	names := make([]string, 0, len(s))
	for m := range s {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
