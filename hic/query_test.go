package hic

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// seekOnly hides io.ReaderAt so blocks go through the shared cursor.
type seekOnly struct {
	io.ReadSeeker
}

func TestQueryObserved(t *testing.T) {
	want := []Position{
		{0, 0, 10}, {100, 200, 4}, {300, 400, 2},
		{500, 200, 6},
		{500, 500, 8}, {600, 600, 3},
	}
	for _, version := range []int32{6, 7, 8, 9} {
		h := openFixture(t, version)
		got, err := h.Query(Request{Chr1Loc: "chr1", Chr2Loc: "chr1", Unit: "BP", Resolution: 100, Norm: "NONE"})
		require.NoError(t, err, "version %d", version)
		require.Equal(t, want, got, "version %d", version)
	}
}

func TestQuerySharedCursor(t *testing.T) {
	h, err := Open(seekOnly{bytes.NewReader(newFixture(t, 8).bytes())}, Options{Workers: 2})
	require.NoError(t, err)
	got, err := h.Query(Request{Chr1Loc: "1", Chr2Loc: "2", Unit: "BP", Resolution: 100, Norm: "NONE"})
	require.NoError(t, err)
	require.Equal(t, []Position{{0, 0, 1}, {200, 300, 5}, {700, 100, 2}}, got)
}

func TestQueryRegion(t *testing.T) {
	h := openFixture(t, 8)
	tests := []struct {
		name       string
		loc1, loc2 string
		want       []Position
	}{
		// (500,200) is only inside the transposed rectangle
		{"intra transposed", "chr1:100:300", "chr1:200:500", []Position{{100, 200, 4}, {300, 400, 2}, {500, 200, 6}}},
		{"inter", "chr1", "chr2", []Position{{0, 0, 1}, {200, 300, 5}, {700, 100, 2}}},
		{"inter swapped", "chr2", "chr1", []Position{{0, 0, 1}, {300, 200, 5}, {100, 700, 2}}},
		{"inter clipped", "chr1:0:300", "chr2:0:500", []Position{{0, 0, 1}, {200, 300, 5}}},
		{"empty", "chr1:900:1000", "chr1:0:50", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Query(Request{Chr1Loc: tt.loc1, Chr2Loc: tt.loc2, Unit: "BP", Resolution: 100, Norm: "NONE"})
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestQueryNormalized(t *testing.T) {
	h := openFixture(t, 8)
	got, err := h.Query(Request{Chr1Loc: "chr1", Chr2Loc: "chr1", Unit: "BP", Resolution: 100, Norm: "KR"})
	require.NoError(t, err)
	require.Equal(t, []Position{
		{0, 0, 2.5}, {100, 200, 4}, {300, 400, 2},
		{500, 200, 6},
		{500, 500, 8}, {600, 600, math.Inf(1)},
	}, got)

	got, err = h.Query(Request{Chr1Loc: "chr2", Chr2Loc: "chr1", Unit: "BP", Resolution: 100, Norm: "KR"})
	require.NoError(t, err)
	require.Equal(t, []Position{{0, 0, 1}, {300, 200, 10}, {100, 700, 4}}, got)
}

func TestQueryMatrixTypes(t *testing.T) {
	h := openFixture(t, 8)
	values := func(p []Position) []float64 {
		v := make([]float64, len(p))
		for i := range p {
			v[i] = p[i].Value
		}
		return v
	}

	got, err := h.Query(Request{Chr1Loc: "chr1", Chr2Loc: "chr1", Unit: "BP", Resolution: 100, Norm: "NONE", MatrixType: "oe"})
	require.NoError(t, err)
	require.Equal(t, []float64{5, 4, 2, 12, 4, 1.5}, values(got))

	got, err = h.Query(Request{Chr1Loc: "chr1", Chr2Loc: "chr1", Unit: "BP", Resolution: 100, Norm: "NONE", MatrixType: "expected"})
	require.NoError(t, err)
	require.Equal(t, []float64{2, 1, 1, 0.5, 2, 2}, values(got))

	got, err = h.Query(Request{Chr1Loc: "chr1", Chr2Loc: "chr1", Unit: "BP", Resolution: 100, Norm: "KR", MatrixType: "oe"})
	require.NoError(t, err)
	require.Equal(t, []float64{2.5, 8, 4, 12, 8, math.Inf(1)}, values(got))

	// inter-chromosomal: sumCounts / numBins1 / numBins2 = 8 / 10 / 5
	got, err = h.Query(Request{Chr1Loc: "chr1", Chr2Loc: "chr2", Unit: "BP", Resolution: 100, Norm: "NONE", MatrixType: "oe"})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{6.25, 31.25, 12.5}, values(got), 1e-9)

	got, err = h.Query(Request{Chr1Loc: "chr1", Chr2Loc: "chr2", Unit: "BP", Resolution: 100, Norm: "NONE", MatrixType: "expected"})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.16, 0.16, 0.16}, values(got), 1e-9)
}

func TestQueryErrors(t *testing.T) {
	h := openFixture(t, 8)
	base := Request{Chr1Loc: "chr1", Chr2Loc: "chr2", Unit: "BP", Resolution: 100, Norm: "KR"}
	tests := []struct {
		name   string
		modify func(*Request)
		want   error
	}{
		{"norm", func(r *Request) { r.Norm = "SCALE" }, ErrInvalidParameter},
		{"unit", func(r *Request) { r.Unit = "bp" }, ErrInvalidParameter},
		{"matrix type", func(r *Request) { r.MatrixType = "pearson" }, ErrInvalidParameter},
		{"resolution", func(r *Request) { r.Resolution = 0 }, ErrInvalidParameter},
		{"locus", func(r *Request) { r.Chr1Loc = "chr1:100" }, ErrInvalidParameter},
		{"chromosome", func(r *Request) { r.Chr2Loc = "chrX" }, ErrChromosomeNotFound},
		{"pair", func(r *Request) { r.Chr1Loc = "All" }, ErrPairNotFound},
		{"norm vector", func(r *Request) { r.Norm = "VC" }, ErrNormVectorNotFound},
		{"zoom level", func(r *Request) { r.Norm = "NONE"; r.Resolution = 50 }, ErrZoomLevelNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.modify(&req)
			_, err := h.Query(req)
			require.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestQueryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := Open(bytes.NewReader(newFixture(t, 8).bytes()), Options{Registerer: reg})
	require.NoError(t, err)

	req := Request{Chr1Loc: "chr1", Chr2Loc: "chr1", Unit: "BP", Resolution: 100, Norm: "KR"}
	for i := 0; i < 2; i++ {
		_, err = h.Query(req)
		require.NoError(t, err)
	}
	_, err = h.Query(Request{Chr1Loc: "chrX", Chr2Loc: "chr1", Unit: "BP", Resolution: 100, Norm: "NONE"})
	require.Error(t, err)

	require.Equal(t, 2.0, testutil.ToFloat64(h.metrics.queries.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(h.metrics.queries.WithLabelValues(CodeChromosomeNotFound)))
	require.Equal(t, 12.0, testutil.ToFloat64(h.metrics.records))
	require.Equal(t, 6.0, testutil.ToFloat64(h.metrics.blocks))
	// zoom level and norm vector are read once per session
	require.Equal(t, 1.0, testutil.ToFloat64(h.metrics.zoomLevels))
	require.Equal(t, 1.0, testutil.ToFloat64(h.metrics.normVectors))

	// a second session on the same registry shares the counters
	h2, err := Open(bytes.NewReader(newFixture(t, 8).bytes()), Options{Registerer: reg})
	require.NoError(t, err)
	_, err = h2.Query(req)
	require.NoError(t, err)
	require.Equal(t, 3.0, testutil.ToFloat64(h.metrics.queries.WithLabelValues("ok")))
}

func TestNormalize(t *testing.T) {
	rec := ContactRecord{BinX: 1, BinY: 0, Counts: 6}
	v, err := normalize(6, rec, []float64{1, 2}, []float64{3})
	require.NoError(t, err)
	require.Equal(t, 1.0, v)

	v, err = normalize(6, rec, []float64{1, 0}, []float64{3})
	require.NoError(t, err)
	require.True(t, math.IsInf(v, 1))

	_, err = normalize(6, ContactRecord{BinX: 2}, []float64{1, 2}, []float64{3})
	require.True(t, errors.Is(err, ErrNormVectorNotFound))
}

func TestExpectedAt(t *testing.T) {
	e := []float64{4, 2, 1}
	require.Equal(t, 4.0, expectedAt(e, ContactRecord{BinX: 3, BinY: 3}))
	require.Equal(t, 2.0, expectedAt(e, ContactRecord{BinX: 4, BinY: 3}))
	require.Equal(t, 1.0, expectedAt(e, ContactRecord{BinX: 0, BinY: 9}))
	require.True(t, math.IsNaN(expectedAt(nil, ContactRecord{})))
}

func TestHiCAccessors(t *testing.T) {
	h := openFixture(t, 8)
	entries, err := h.Entrys()
	require.NoError(t, err)
	require.Equal(t, []string{"1_1", "1_2"}, entries)
	f, err := h.Footer()
	require.NoError(t, err)
	f2, err := h.Footer()
	require.NoError(t, err)
	require.Same(t, f, f2)
	require.Contains(t, h.String(), "Genome: hg19")
	require.Equal(t, "hg19", h.Genome())
	require.Len(t, h.Chromosomes(), 3)
	require.Equal(t, []int32{100}, h.BpResolutions())
	require.Empty(t, h.FragResolutions())
	norms, err := h.NormTypes()
	require.NoError(t, err)
	require.Equal(t, []string{"KR"}, norms)
	units, err := h.Units()
	require.NoError(t, err)
	require.Equal(t, []string{"BP"}, units)
	require.NoError(t, h.Close())
}
