package entity

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Canonical returns the de-duplicated, sorted form of a feature collection.
// Feature order never carries meaning, so every set-valued argument goes
// through here before it is used as part of a cache key.
func Canonical(features []string) []string {
	out := lo.Uniq(features)
	sort.Strings(out)
	return out
}

// SetKey is the cache key of a feature collection.
func SetKey(features []string) string {
	return strings.Join(Canonical(features), "\x1f")
}

// Complement returns the schema features that are not in features, in
// schema order.
func (s Schema) Complement(features []string) []string {
	return lo.Without(s, features...)
}
