package scoring

import (
	"go-match/internal/config"
)

// Best is the best known result for a tier.
type Best struct {
	Time  int `json:"time"`
	Moves int `json:"moves"`
}

// Table holds one record slot per tier. A nil slot means no round of that
// tier has been completed yet. It serializes as {"easy": null, ...}.
type Table map[config.Tier]*Best

// NewTable returns a table with an empty slot for every tier.
func NewTable() Table {
	t := make(Table, len(config.Tiers))
	for _, tier := range config.Tiers {
		t[tier] = nil
	}
	return t
}

// Get returns the record for tier, if any.
func (t Table) Get(tier config.Tier) (Best, bool) {
	b := t[tier]
	if b == nil {
		return Best{}, false
	}
	return *b, true
}

// Beats reports whether a round finished in time seconds would replace the
// record for tier. Moves never break ties.
func (t Table) Beats(tier config.Tier, time int) bool {
	b := t[tier]
	return b == nil || time < b.Time
}

// Clone returns a deep copy with every tier slot present.
func (t Table) Clone() Table {
	c := NewTable()
	for tier, b := range t {
		if b == nil {
			continue
		}
		cp := *b
		c[tier] = &cp
	}
	return c
}
