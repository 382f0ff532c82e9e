// Public domain.

package phot_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/proxcent/sedmc/phot"
)

var dedupCases = []struct {
	name string
	in   phot.Table
	want []float64 // wavelengths after dedup
}{
	{"empty", phot.Table{}, []float64{}},
	{"sorted unique", phot.Table{
		{WL: 0.55, Flux: 10},
		{WL: 1.25, Flux: 8},
	}, []float64{0.55, 1.25}},
	{"unsorted", phot.Table{
		{WL: 1.25, Flux: 8},
		{WL: 0.55, Flux: 10},
	}, []float64{0.55, 1.25}},
	{"dup keeps lowest error", phot.Table{
		{WL: 0.55, Flux: 10, Err: 2},
		{WL: 0.55, Flux: 11, Err: 1},
	}, []float64{0.55}},
	{"rounding collapses", phot.Table{
		{WL: 0.5500000004, Flux: 10, Err: 1},
		{WL: 0.55, Flux: 11, Err: 2},
	}, []float64{0.55}},
}

func TestDedup(t *testing.T) {
	for _, c := range dedupCases {
		got := c.in.Dedup()
		if len(got) != len(c.want) {
			t.Fatalf("%s: %d points, want %d", c.name, len(got), len(c.want))
		}
		for i, w := range c.want {
			if got[i].WL != w {
				t.Fatalf("%s: wl[%d] = %g, want %g", c.name, i, got[i].WL, w)
			}
		}
	}
}

func TestDedupKeepsLowestError(t *testing.T) {
	in := phot.Table{
		{WL: 0.55, Flux: 10, Err: 2, Src: "a"},
		{WL: 0.55, Flux: 11, Err: 1, Src: "b"},
		{WL: 0.55, Flux: 12, Err: 3, Src: "c"},
	}
	got := in.Dedup()
	if len(got) != 1 || got[0].Src != "b" {
		t.Fatalf("got %+v, want single point from src b", got)
	}
}

func TestWindow(t *testing.T) {
	in := phot.Table{
		{WL: 0.2}, {WL: 0.4}, {WL: 3.5}, {WL: 8}, {WL: 11.6},
	}
	got := in.Window(0.4, 8)
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}
	if got[0].WL != 0.4 || got[2].WL != 8 {
		t.Fatalf("window endpoints not inclusive: %+v", got)
	}
}

func TestDropBands(t *testing.T) {
	in := phot.Table{
		{WL: 1.25, Band: "2massJ.dat"},
		{WL: 1.65, Band: "2massH.dat"},
		{WL: 2.17, Band: "2massK.dat"},
		{WL: 0.55, Band: "GAIA3:G"},
	}
	got := in.DropBands(phot.Blacklist)
	if len(got) != 1 || got[0].Band != "GAIA3:G" {
		t.Fatalf("got %+v", got)
	}
}

func TestCleanErrors(t *testing.T) {
	in := phot.Table{
		{WL: 0.55, Flux: 10, Err: 0},
		{WL: 1.25, Flux: 8, Err: math.NaN()},
		{WL: 2.2, Flux: 4, Err: 0.3},
	}
	got := in.CleanErrors(0.1)
	if got[0].Err != 1 {
		t.Errorf("zero error: got %g, want 1", got[0].Err)
	}
	if got[1].Err != 0.8 {
		t.Errorf("NaN error: got %g, want 0.8", got[1].Err)
	}
	if got[2].Err != 0.3 {
		t.Errorf("good error modified: got %g", got[2].Err)
	}
	if in[0].Err != 0 {
		t.Error("CleanErrors mutated its receiver")
	}
}

func TestReadCSV(t *testing.T) {
	const in = `wl,fl,efl,src,band
0.55,10.2,0.3,I/355/gaiadr3,GAIA3:G
1.25,8.1,,II/246/out,2massJ.dat
`
	tbl, err := phot.ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl) != 2 {
		t.Fatalf("got %d points, want 2", len(tbl))
	}
	if tbl[0].WL != 0.55 || tbl[0].Flux != 10.2 || tbl[0].Err != 0.3 {
		t.Fatalf("first point: %+v", tbl[0])
	}
	if tbl[1].Err != 0 {
		t.Fatalf("missing efl should read as 0, got %g", tbl[1].Err)
	}
	if tbl[1].Band != "2massJ.dat" {
		t.Fatalf("band: %q", tbl[1].Band)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	in := phot.Table{
		{WL: 0.55, Flux: 10.2, Err: 0.3, Src: "cat", Band: "V"},
		{WL: 2.19, Flux: 3.4, Err: 0.1, Src: "cat2", Band: "K"},
	}
	var buf bytes.Buffer
	if err := in.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	out, err := phot.ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d points, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("point %d: got %+v, want %+v", i, out[i], in[i])
		}
	}
}
