package entity

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Domains maps each feature to its finite set of admissible values.
type Domains map[string][]Value

// NewDomains de-duplicates each value list, keeping first-seen order.
func NewDomains(m map[string][]Value) Domains {
	d := make(Domains, len(m))
	for f, vals := range m {
		d[f] = lo.Uniq(vals)
	}
	return d
}

// Of returns the domain of a feature. A missing or empty domain is an
// error rather than a silent singleton.
func (d Domains) Of(feature string) ([]Value, error) {
	vals, ok := d[feature]
	if !ok || len(vals) == 0 {
		return nil, fmt.Errorf("%w: feature %q", ErrDomainExhaustion, feature)
	}
	return vals, nil
}

// Validate checks that every schema feature has a non-empty domain.
func (d Domains) Validate(schema Schema) error {
	for _, f := range schema {
		if _, err := d.Of(f); err != nil {
			return err
		}
	}
	return nil
}

// Sorted returns a copy with every value list in Value order.
func (d Domains) Sorted() Domains {
	out := make(Domains, len(d))
	for f, vals := range d {
		cp := append([]Value(nil), vals...)
		sort.Slice(cp, func(i, j int) bool { return cp[i].Less(cp[j]) })
		out[f] = cp
	}
	return out
}
