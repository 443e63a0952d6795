// Package classifier provides the concrete classifiers and preprocessing
// transforms an oracle can wrap.
package classifier

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/Florian-Lackner/score-based-explanations/entity"
	"github.com/Florian-Lackner/score-based-explanations/oracle"
)

var ErrCategoricalValue = errors.New("categorical value needs one-hot encoding")

// Numeric passes numeric features through unchanged, in schema order.
type Numeric struct {
	Schema entity.Schema
}

func (p Numeric) Preprocess(rows []entity.Entity) (oracle.Matrix, error) {
	m := oracle.Matrix{
		Columns: append([]string(nil), p.Schema...),
		Rows:    len(rows),
		Data:    make([]float32, 0, len(rows)*len(p.Schema)),
	}
	for _, r := range rows {
		for _, f := range p.Schema {
			v, ok := r.Get(f)
			if !ok {
				return oracle.Matrix{}, fmt.Errorf("%w: row has no %q", entity.ErrSchemaMismatch, f)
			}
			x, ok := v.Float()
			if !ok {
				return oracle.Matrix{}, fmt.Errorf("%w: %s=%s", ErrCategoricalValue, f, v)
			}
			m.Data = append(m.Data, float32(x))
		}
	}
	return m, nil
}

// OneHot expands the listed features into one indicator column per domain
// value, named "feature=value". Other features pass through as numbers.
type OneHot struct {
	schema  entity.Schema
	encoded map[string][]entity.Value
	columns []string
}

// NewOneHot builds the encoder. An empty encode list one-hot encodes every
// feature.
func NewOneHot(schema entity.Schema, domains entity.Domains, encode []string) (*OneHot, error) {
	if len(encode) == 0 {
		encode = schema
	}
	if err := schema.CheckFeatures(encode); err != nil {
		return nil, err
	}
	p := &OneHot{schema: schema, encoded: map[string][]entity.Value{}}
	for _, f := range schema {
		if !lo.Contains(encode, f) {
			p.columns = append(p.columns, f)
			continue
		}
		vals, err := domains.Of(f)
		if err != nil {
			return nil, err
		}
		p.encoded[f] = vals
		for _, v := range vals {
			p.columns = append(p.columns, f+"="+v.String())
		}
	}
	return p, nil
}

func (p *OneHot) Columns() []string {
	return append([]string(nil), p.columns...)
}

func (p *OneHot) Preprocess(rows []entity.Entity) (oracle.Matrix, error) {
	m := oracle.Matrix{
		Columns: p.Columns(),
		Rows:    len(rows),
		Data:    make([]float32, 0, len(rows)*len(p.columns)),
	}
	for _, r := range rows {
		for _, f := range p.schema {
			v, ok := r.Get(f)
			if !ok {
				return oracle.Matrix{}, fmt.Errorf("%w: row has no %q", entity.ErrSchemaMismatch, f)
			}
			if vals, ok := p.encoded[f]; ok {
				// values outside the domain encode as all zeros
				for _, dv := range vals {
					if dv == v {
						m.Data = append(m.Data, 1)
					} else {
						m.Data = append(m.Data, 0)
					}
				}
				continue
			}
			x, ok := v.Float()
			if !ok {
				return oracle.Matrix{}, fmt.Errorf("%w: %s=%s", ErrCategoricalValue, f, v)
			}
			m.Data = append(m.Data, float32(x))
		}
	}
	return m, nil
}
