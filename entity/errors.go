package entity

import "errors"

var (
	// ErrSchemaMismatch is returned when an entity's feature set differs
	// from the declared feature set of the problem.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnknownFeature is returned when a feature name is not part of the
	// schema. It is always wrapped together with ErrSchemaMismatch.
	ErrUnknownFeature = errors.New("unknown feature")
	// ErrDomainExhaustion is returned when a feature has to be enumerated
	// but has no admissible values.
	ErrDomainExhaustion = errors.New("empty domain")
)
