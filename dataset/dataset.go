// Package dataset reads reference datasets and explicit domain files. A
// reference dataset feeds the distribution models and, when no explicit
// domains are given, domain inference.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/Florian-Lackner/score-based-explanations/entity"
)

// Table is a reference dataset. Every row has exactly the table's schema.
type Table struct {
	Schema entity.Schema
	Rows   []entity.Entity
}

// CSVOptions control how a reference CSV is read.
type CSVOptions struct {
	// Drop lists columns to discard, e.g. identifiers.
	Drop []string
	// Target is the label column; it is discarded too.
	Target string
	// Encoding is "", "utf-8", "latin1" or "windows-1252".
	Encoding string
	Comma    rune
}

func decoder(enc string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(enc) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("unsupported csv encoding %q", enc)
}

// ReadCSV reads a table with a header row. Cells that parse as numbers
// become numeric values; everything else is categorical.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	dr, err := decoder(opts.Encoding, r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dr)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv has no header row")
		}
		return nil, err
	}
	drop := append(append([]string{}, opts.Drop...), opts.Target)
	keep := []int{}
	schema := entity.Schema{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if lo.Contains(drop, h) {
			continue
		}
		keep = append(keep, i)
		schema = append(schema, h)
	}

	t := &Table{Schema: schema}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		vals := make([]entity.Value, len(keep))
		for j, i := range keep {
			vals[j] = entity.ParseValue(rec[i])
		}
		e, err := entity.New(schema, vals)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t.Rows = append(t.Rows, e)
	}
	log.Debug().Int("rows", len(t.Rows)).Strs("features", schema).Msg("read-reference-csv")
	return t, nil
}

func ReadCSVFile(path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Domains infers each feature's domain as the sorted set of values observed
// for it.
func (t *Table) Domains() entity.Domains {
	m := make(map[string][]entity.Value, len(t.Schema))
	for _, f := range t.Schema {
		m[f] = []entity.Value{}
	}
	for _, row := range t.Rows {
		for i := 0; i < row.Len(); i++ {
			m[row.Name(i)] = append(m[row.Name(i)], row.At(i))
		}
	}
	return entity.NewDomains(m).Sorted()
}
