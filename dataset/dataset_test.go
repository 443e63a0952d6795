package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/Florian-Lackner/score-based-explanations/entity"
)

func TestReadCSVDropsTargetAndParsesValues(t *testing.T) {
	is := is.New(t)
	tbl, err := ReadCSVFile("../testdata/blood.csv", CSVOptions{Target: "Donated"})
	is.NoErr(err)
	is.Equal(tbl.Schema, entity.Schema{"Recency", "Frequency", "Monetary", "Time"})
	is.Equal(tbl.Len(), 12)
	v, ok := tbl.Rows[0].Get("Recency")
	is.True(ok)
	is.Equal(v, entity.Cat("<3"))
}

func TestReadCSVNumeric(t *testing.T) {
	is := is.New(t)
	in := "ID,A,B\n1,0,x\n2,3,y\n3,0,y\n"
	tbl, err := ReadCSV(strings.NewReader(in), CSVOptions{Drop: []string{"ID"}})
	is.NoErr(err)
	is.Equal(tbl.Schema, entity.Schema{"A", "B"})
	d := tbl.Domains()
	is.Equal(d["A"], []entity.Value{entity.Num(0), entity.Num(3)})
	is.Equal(d["B"], []entity.Value{entity.Cat("x"), entity.Cat("y")})
}

func TestReadCSVLatin1(t *testing.T) {
	is := is.New(t)
	// "Größe" encoded as ISO-8859-1
	in := []byte("Gr\xf6\xdfe\nklein\n")
	tbl, err := ReadCSV(bytes.NewReader(in), CSVOptions{Encoding: "latin1"})
	is.NoErr(err)
	is.Equal(tbl.Schema, entity.Schema{"Größe"})

	_, err = ReadCSV(bytes.NewReader(in), CSVOptions{Encoding: "ebcdic"})
	is.True(err != nil)
}

func TestReadCSVEmpty(t *testing.T) {
	is := is.New(t)
	_, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	is.True(err != nil)
}

func TestDomainsRoundTrip(t *testing.T) {
	is := is.New(t)
	d, err := ReadDomainsFile("../testdata/sample_domains.yaml")
	is.NoErr(err)
	want := []entity.Value{entity.Num(0), entity.Num(1), entity.Num(2), entity.Num(3)}
	is.Equal(d["A"], want)
	is.Equal(d["B"], want)

	var buf bytes.Buffer
	is.NoErr(WriteDomains(&buf, entity.Schema{"A", "B"}, d))
	back, err := ReadDomains(&buf)
	is.NoErr(err)
	is.Equal(back, d)
}
