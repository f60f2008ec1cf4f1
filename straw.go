// Package straw reads contact records out of .hic files, local or remote.
package straw

import (
	"io"

	"github.com/aidenlab/straw/hic"
	"github.com/pkg/errors"
)

// OpenURI opens a local path or an http(s) URL as a HiC session.
// The caller closes the session.
func OpenURI(uri string, opts hic.Options) (*hic.HiC, error) {
	f, err := openSource(uri)
	if err != nil {
		return nil, err
	}
	h, err := hic.Open(f, opts)
	if err != nil {
		if c, ok := f.(io.Closer); ok {
			c.Close()
		}
		return nil, errors.Wrapf(err, "reading %s", uri)
	}
	return h, nil
}

// ReadHeader returns only the header of uri: genome, chromosomes, resolutions.
func ReadHeader(uri string) (*hic.Header, error) {
	h, err := OpenURI(uri, hic.Options{})
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return h.Header, nil
}

// Straw runs one query against uri, e.g.
//
//	Straw("observed", "KR", "file.hic", "1:1000000:7400000", "1:1000000:7400000", "BP", 25000)
func Straw(matrixType, norm, uri, chr1loc, chr2loc, unit string, binSize int32) ([]hic.Position, error) {
	h, err := OpenURI(uri, hic.Options{})
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return h.Query(hic.Request{
		Chr1Loc:    chr1loc,
		Chr2Loc:    chr2loc,
		Unit:       unit,
		Resolution: binSize,
		Norm:       norm,
		MatrixType: matrixType,
	})
}
