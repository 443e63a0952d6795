package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/Florian-Lackner/score-based-explanations/entity"
)

var errAssignmentSyntax = errors.New("expected feature=value")

// ParseEntity builds an entity from "feature=value" assignments. Every
// schema feature must be assigned exactly once.
func ParseEntity(schema entity.Schema, assignments []string) (entity.Entity, error) {
	m := make(map[string]entity.Value, len(assignments))
	for _, a := range assignments {
		name, val, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return entity.Entity{}, fmt.Errorf("%w: %q", errAssignmentSyntax, a)
		}
		if _, dup := m[name]; dup {
			return entity.Entity{}, fmt.Errorf("%w: %q assigned twice", entity.ErrSchemaMismatch, name)
		}
		m[name] = entity.ParseValue(val)
	}
	if err := schema.CheckFeatures(lo.Keys(m)); err != nil {
		return entity.Entity{}, err
	}
	return entity.FromMap(schema, m)
}

// ParseFeatures splits comma- or space-separated feature lists.
func ParseFeatures(fields []string) []string {
	var out []string
	for _, f := range fields {
		for _, p := range strings.Split(f, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
