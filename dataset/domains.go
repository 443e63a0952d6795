package dataset

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Florian-Lackner/score-based-explanations/entity"
)

// ReadDomains reads explicit per-feature domains from YAML:
//
//	A: [0, 1, 2, 3]
//	Sex: [female, male]
//
// Scalars that parse as numbers become numeric values.
func ReadDomains(r io.Reader) (entity.Domains, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding domains: %w", err)
	}
	m := make(map[string][]entity.Value, len(raw))
	for f, vals := range raw {
		m[f] = make([]entity.Value, len(vals))
		for i, v := range vals {
			m[f][i] = entity.ParseValue(v)
		}
	}
	return entity.NewDomains(m), nil
}

func ReadDomainsFile(path string) (entity.Domains, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDomains(f)
}

// WriteDomains writes domains in the format ReadDomains accepts.
func WriteDomains(w io.Writer, schema entity.Schema, d entity.Domains) error {
	doc := yaml.Node{Kind: yaml.MappingNode}
	for _, f := range schema {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, v := range d[f] {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()})
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: f}, seq)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&doc)
}
