package hic

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Options configures a HiC session.
type Options struct {
	// Workers bounds concurrent block decoding. Zero means GOMAXPROCS.
	Workers int
	// Logger receives debug and warning output. Nil means the logrus standard logger.
	Logger *log.Logger
	// Registerer, when set, receives the session's prometheus counters.
	Registerer prometheus.Registerer
}

// HiC is an open .hic file. All cursor access is serialized by the session
// mutex; when the source implements io.ReaderAt, block payloads bypass the
// cursor and are read concurrently.
type HiC struct {
	Header   *Header
	Reader   io.ReadSeeker
	readerAt io.ReaderAt
	cursor   *Cursor
	mutex    *sync.Mutex

	bufferMux  sync.Mutex
	footer     *Footer
	zoomBuffer map[zoomKey]*ZoomLevel
	normBuffer map[NormVectorKey][]float64

	workers int
	log     *log.Logger
	metrics *metrics
}

type zoomKey struct {
	c1, c2     int32
	unit       string
	resolution int32
}

// DataReader opens a HiC session with default options.
func DataReader(buf io.ReadSeeker) (*HiC, error) {
	return Open(buf, Options{})
}

// Open reads the header of r and returns a session over it.
func Open(r io.ReadSeeker, opts Options) (*HiC, error) {
	e := &HiC{
		Reader:     r,
		cursor:     NewCursor(r),
		mutex:      &sync.Mutex{},
		zoomBuffer: make(map[zoomKey]*ZoomLevel),
		normBuffer: make(map[NormVectorKey][]float64),
		workers:    opts.Workers,
		log:        opts.Logger,
		metrics:    newMetrics(opts.Registerer),
	}
	if ra, ok := r.(io.ReaderAt); ok {
		e.readerAt = ra
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.log == nil {
		e.log = log.StandardLogger()
	}
	h, err := ReadHeader(e.cursor)
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	e.Header = h
	if h.Version > MaxVersion {
		e.log.Warnf("hic version %d is newer than %d, reading it with the version %d layout", h.Version, MaxVersion, MaxVersion)
	}
	e.log.Debugf("hic version %d, genome %s, %d chromosomes", h.Version, h.Genome, len(h.Chr))
	return e, nil
}

func (e *HiC) Genome() string {
	return e.Header.Genome
}

func (e *HiC) Chromosomes() []Chr {
	return e.Header.Chr
}

func (e *HiC) BpResolutions() []int32 {
	return e.Header.BpRes
}

func (e *HiC) FragResolutions() []int32 {
	return e.Header.FragRes
}

func (e *HiC) Lock() {
	e.mutex.Lock()
}
func (e *HiC) Unlock() {
	e.mutex.Unlock()
}

// Close closes the underlying reader if it can be closed.
func (e *HiC) Close() error {
	if c, ok := e.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Footer returns the complete footer, parsed on first use.
func (e *HiC) Footer() (*Footer, error) {
	e.bufferMux.Lock()
	f := e.footer
	e.bufferMux.Unlock()
	if f != nil {
		return f, nil
	}
	e.Lock()
	f, err := ReadFooterIndex(e.cursor, e.Header.Version, e.Header.MasterIndexPos)
	e.Unlock()
	if err != nil {
		return nil, errors.Wrapf(err, "reading footer at %d", e.Header.MasterIndexPos)
	}
	e.bufferMux.Lock()
	e.footer = f
	e.bufferMux.Unlock()
	return f, nil
}

// Entrys list of chr_chr entrys in hic file
func (e *HiC) Entrys() ([]string, error) {
	f, err := e.Footer()
	if err != nil {
		return nil, err
	}
	var keys []string
	for k := range f.Entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// NormTypes lists the normalizations that have vectors in the file.
func (e *HiC) NormTypes() ([]string, error) {
	f, err := e.Footer()
	if err != nil {
		return nil, err
	}
	return f.NormTypeStrs(), nil
}

// Units lists the units of the expected value and normalization vectors.
func (e *HiC) Units() ([]string, error) {
	f, err := e.Footer()
	if err != nil {
		return nil, err
	}
	var units []string
	for _, u := range []string{"BP", "FRAG"} {
		if f.Units[u] {
			units = append(units, u)
		}
	}
	return units, nil
}

func (e *HiC) String() string {
	h := e.Header
	var s bytes.Buffer
	s.WriteString(fmt.Sprintf("Version: %d\n", h.Version))
	s.WriteString(fmt.Sprintf("Genome: %s\n", h.Genome))
	s.WriteString(fmt.Sprintf("Chromosome Number: %d\n", len(h.Chr)))
	for _, c := range h.Chr {
		s.WriteString(fmt.Sprintf("\t%s\t%d\n", c.Name, c.Length))
	}
	s.WriteString(fmt.Sprintf("Basepair Resolutions Number : %d\n", len(h.BpRes)))
	s.WriteString(fmt.Sprintln(h.BpRes))
	s.WriteString(fmt.Sprintf("Fragment Resolutions Number : %d\n", len(h.FragRes)))
	s.WriteString(fmt.Sprintln(h.FragRes))
	return s.String()
}

func (e *HiC) readFooter(q FooterQuery) (*FooterResult, error) {
	e.Lock()
	defer e.Unlock()
	return ReadFooter(e.cursor, q)
}

// loadZoomLevel returns the block index of one matrix zoom level, read once per session.
func (e *HiC) loadZoomLevel(k zoomKey, matrixPos int64) (*ZoomLevel, error) {
	e.bufferMux.Lock()
	z, ok := e.zoomBuffer[k]
	e.bufferMux.Unlock()
	if ok {
		return z, nil
	}
	e.Lock()
	z, err := ReadMatrix(e.cursor, matrixPos, k.unit, k.resolution)
	e.Unlock()
	if err != nil {
		return nil, err
	}
	e.metrics.zoomLevels.Inc()
	e.log.Debugf("zoom level %s %d for %d_%d: %d blocks", k.unit, k.resolution, k.c1, k.c2, len(z.BlockIndexes))
	e.bufferMux.Lock()
	e.zoomBuffer[k] = z
	e.bufferMux.Unlock()
	return z, nil
}

// normVector returns a normalization vector, read once per session.
func (e *HiC) normVector(k NormVectorKey, idx Index) ([]float64, error) {
	e.bufferMux.Lock()
	v, ok := e.normBuffer[k]
	e.bufferMux.Unlock()
	if ok {
		return v, nil
	}
	e.Lock()
	v, err := ReadNormVector(e.cursor, idx, e.Header.Version)
	e.Unlock()
	if err != nil {
		return nil, errors.Wrapf(err, "reading normalization vector %s", k)
	}
	e.metrics.normVectors.Inc()
	e.log.Debugf("loaded normalization vector %s: %d values", k, len(v))
	e.bufferMux.Lock()
	e.normBuffer[k] = v
	e.bufferMux.Unlock()
	return v, nil
}

// fetch reads the compressed payload of a block.
func (e *HiC) fetch(b BlockIndex) ([]byte, error) {
	e.metrics.blockBytes.Add(float64(b.Size))
	if e.readerAt != nil {
		p := make([]byte, b.Size)
		n, err := e.readerAt.ReadAt(p, b.Position)
		if n == len(p) {
			return p, nil
		}
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, wrapReadErr(err, b.Position+int64(n))
	}
	e.Lock()
	defer e.Unlock()
	return fetchBlock(e.cursor, b)
}

// readBlock fetches and decodes one block of the zoom level.
func (e *HiC) readBlock(z *ZoomLevel, n int32) ([]ContactRecord, error) {
	b := z.Block(n)
	if err := checkBlockSize(b); err != nil {
		return nil, err
	}
	if b.Size == 0 {
		return nil, nil
	}
	p, err := e.fetch(b)
	if err != nil {
		return nil, err
	}
	records, err := decodeBlockBytes(p, e.Header.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "block %d at %d", n, b.Position)
	}
	e.metrics.blocks.Inc()
	return records, nil
}
