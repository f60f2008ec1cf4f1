package hic

import (
	"math"

	"github.com/aidenlab/straw/hic/matrixtype"
	"github.com/aidenlab/straw/hic/normtype"
	"github.com/aidenlab/straw/hic/unit"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Request is one region query. Chr1Loc and Chr2Loc are "name" or
// "name:start:end"; results are ordered (Chr1Loc, Chr2Loc).
type Request struct {
	Chr1Loc    string
	Chr2Loc    string
	Unit       string // BP or FRAG
	Resolution int32
	Norm       string // NONE, VC, VC_SQRT or KR
	MatrixType string // observed (default), oe or expected
}

// region is a query ordered by chromosome index, in file coordinates.
type region struct {
	c1, c2  int32
	x1, x2  int64 // range on c1
	y1, y2  int64 // range on c2
	swapped bool
}

func (r region) intra() bool {
	return r.c1 == r.c2
}

func (r region) contains(x, y int64) bool {
	if x >= r.x1 && x <= r.x2 && y >= r.y1 && y <= r.y2 {
		return true
	}
	return r.intra() && y >= r.x1 && y <= r.x2 && x >= r.y1 && x <= r.y2
}

func (e *HiC) resolve(req Request) (region, error) {
	var r region
	if !normtype.Queryable(req.Norm) {
		return r, ErrInvalidParameter.WithMessage("norm must be one of NONE, VC, VC_SQRT, KR").WithDetail("norm", req.Norm)
	}
	if !unit.Valid(req.Unit) {
		return r, ErrInvalidParameter.WithMessage("unit must be one of BP, FRAG").WithDetail("unit", req.Unit)
	}
	if matrixtype.StringToIdx(req.MatrixType) == -1 {
		return r, ErrInvalidParameter.WithMessage("matrix type must be one of observed, oe, expected").WithDetail("matrixType", req.MatrixType)
	}
	if req.Resolution <= 0 {
		return r, ErrInvalidParameter.WithMessage("resolution must be positive").WithDetail("resolution", req.Resolution)
	}
	l1, err := parseLocus(req.Chr1Loc)
	if err != nil {
		return r, err
	}
	l2, err := parseLocus(req.Chr2Loc)
	if err != nil {
		return r, err
	}
	i1 := e.Header.ChrIdx(l1.chr)
	if i1 == -1 {
		return r, ErrChromosomeNotFound.WithDetail("chr", l1.chr)
	}
	i2 := e.Header.ChrIdx(l2.chr)
	if i2 == -1 {
		return r, ErrChromosomeNotFound.WithDetail("chr", l2.chr)
	}
	if !l1.hasRange {
		l1.start, l1.end = 0, e.Header.Chr[i1].Length
	}
	if !l2.hasRange {
		l2.start, l2.end = 0, e.Header.Chr[i2].Length
	}
	if i1 > i2 {
		i1, i2 = i2, i1
		l1, l2 = l2, l1
		r.swapped = true
	}
	r.c1, r.c2 = int32(i1), int32(i2)
	r.x1, r.x2 = l1.start, l1.end
	r.y1, r.y2 = l2.start, l2.end
	return r, nil
}

// Query returns the contacts of a region, normalized and clipped to the
// requested rectangle, in base pair (or fragment) coordinates.
func (e *HiC) Query(req Request) ([]Position, error) {
	p, err := e.query(req)
	if err != nil {
		e.metrics.queries.WithLabelValues(ErrorCode(err)).Inc()
		return nil, err
	}
	e.metrics.queries.WithLabelValues("ok").Inc()
	e.metrics.records.Add(float64(len(p)))
	return p, nil
}

func (e *HiC) query(req Request) ([]Position, error) {
	r, err := e.resolve(req)
	if err != nil {
		return nil, err
	}
	mt := matrixtype.StringToIdx(req.MatrixType)
	res := int64(req.Resolution)
	version := e.Header.Version

	footer, err := e.readFooter(FooterQuery{
		Version:    version,
		Master:     e.Header.MasterIndexPos,
		C1:         r.c1,
		C2:         r.c2,
		Norm:       req.Norm,
		Unit:       req.Unit,
		Resolution: req.Resolution,
		MatrixType: mt,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "reading footer at %d", e.Header.MasterIndexPos)
	}

	var n1, n2 []float64
	if req.Norm != "NONE" {
		if n1, err = e.normVector(NormVectorKey{req.Norm, r.c1, req.Unit, req.Resolution}, *footer.C1Norm); err != nil {
			return nil, err
		}
		if r.intra() {
			n2 = n1
		} else if n2, err = e.normVector(NormVectorKey{req.Norm, r.c2, req.Unit, req.Resolution}, *footer.C2Norm); err != nil {
			return nil, err
		}
	}

	z, err := e.loadZoomLevel(zoomKey{r.c1, r.c2, req.Unit, req.Resolution}, footer.MatrixPos)
	if err != nil {
		return nil, errors.Wrapf(err, "reading matrix %s", pairKey(r.c1, r.c2))
	}

	b1 := BinRange{r.x1 / res, r.x2 / res}
	b2 := BinRange{r.y1 / res, r.y2 / res}
	var blocks []int32
	if version > 8 && r.intra() {
		blocks = BlocksForRegionV9Intra(b1, b2, z.BlockBinCount, z.BlockColumnCount)
	} else {
		blocks = BlocksForRegion(b1, b2, z.BlockBinCount, z.BlockColumnCount, r.intra())
	}
	e.log.Debugf("query %s: bins %v x %v, %d candidate blocks", pairKey(r.c1, r.c2), b1, b2, len(blocks))

	decoded, err := e.readBlocks(z, blocks)
	if err != nil {
		return nil, err
	}

	avgCount := 0.0
	if !r.intra() {
		numBins1 := e.Header.Chr[r.c1].Length / res
		numBins2 := e.Header.Chr[r.c2].Length / res
		if numBins1 < 1 {
			numBins1 = 1
		}
		if numBins2 < 1 {
			numBins2 = 1
		}
		avgCount = float64(z.SumCounts) / float64(numBins1) / float64(numBins2)
	}

	var positions []Position
	for _, records := range decoded {
		for _, rec := range records {
			x := int64(rec.BinX) * res
			y := int64(rec.BinY) * res
			if !r.contains(x, y) {
				continue
			}
			v := float64(rec.Counts)
			if req.Norm != "NONE" {
				if v, err = normalize(v, rec, n1, n2); err != nil {
					return nil, err
				}
			}
			switch mt {
			case matrixtype.OE:
				if r.intra() {
					v = v / expectedAt(footer.Expected, rec)
				} else {
					v = v / avgCount
				}
			case matrixtype.EXPECTED:
				if r.intra() {
					v = expectedAt(footer.Expected, rec)
				} else {
					v = avgCount
				}
			}
			if r.swapped {
				positions = append(positions, Position{y, x, v})
			} else {
				positions = append(positions, Position{x, y, v})
			}
		}
	}
	return positions, nil
}

// readBlocks decodes the blocks concurrently; the result keeps block order.
func (e *HiC) readBlocks(z *ZoomLevel, blocks []int32) ([][]ContactRecord, error) {
	decoded := make([][]ContactRecord, len(blocks))
	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i, n := range blocks {
		i, n := i, n
		g.Go(func() error {
			records, err := e.readBlock(z, n)
			if err != nil {
				return err
			}
			decoded[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return decoded, nil
}

// normalize divides a count by the product of the two vectors at its bins.
// A zero product yields +Inf.
func normalize(count float64, rec ContactRecord, n1, n2 []float64) (float64, error) {
	if rec.BinX < 0 || int(rec.BinX) >= len(n1) || rec.BinY < 0 || int(rec.BinY) >= len(n2) {
		return 0, ErrNormVectorNotFound.WithMessage("normalization vector does not cover bin").
			WithDetail("binX", rec.BinX).WithDetail("binY", rec.BinY)
	}
	divisor := n1[rec.BinX] * n2[rec.BinY]
	if divisor == 0.0 {
		return math.Inf(1), nil
	}
	return count / divisor, nil
}

func expectedAt(expected []float64, rec ContactRecord) float64 {
	if len(expected) == 0 {
		return math.NaN()
	}
	d := int64(rec.BinY) - int64(rec.BinX)
	if d < 0 {
		d = -d
	}
	if d >= int64(len(expected)) {
		d = int64(len(expected)) - 1
	}
	return expected[d]
}
