package straw

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// openSource opens a local path or an http(s) URL as a seekable byte source.
// Both implement io.ReaderAt, so block reads can run concurrently.
func openSource(uri string) (io.ReadSeeker, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return newHTTPSource(http.DefaultClient, uri)
	}
	f, err := os.Open(uri)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", uri)
	}
	return f, nil
}

// httpSource reads a remote file with ranged GET requests.
type httpSource struct {
	client *http.Client
	url    string
	size   int64
	pos    int64
}

func newHTTPSource(client *http.Client, url string) (*httpSource, error) {
	resp, err := client.Head(url)
	if err != nil {
		return nil, errors.Wrapf(err, "HEAD %s", url)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("HEAD %s: unexpected status %d", url, resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return nil, errors.Errorf("HEAD %s: no content length", url)
	}
	return &httpSource{client: client, url: url, size: resp.ContentLength}, nil
}

func (s *httpSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.Errorf("negative offset %d", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := off + int64(len(p)) - 1
	if end >= s.size {
		end = s.size - 1
	}
	req, err := http.NewRequest("GET", s.url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, end))
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "GET %s", s.url)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		// range ignored by the server
		if _, err := io.CopyN(io.Discard, resp.Body, off); err != nil {
			return 0, errors.Wrapf(err, "GET %s", s.url)
		}
	default:
		return 0, errors.Errorf("GET %s: unexpected status %d", s.url, resp.StatusCode)
	}
	n, err := io.ReadFull(resp.Body, p[:end-off+1])
	if err != nil {
		return n, errors.Wrapf(err, "GET %s", s.url)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *httpSource) Read(p []byte) (int, error) {
	n, err := s.ReadAt(p, s.pos)
	s.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

func (s *httpSource) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += s.pos
	case io.SeekEnd:
		offset += s.size
	default:
		return 0, errors.Errorf("invalid whence %d", whence)
	}
	if offset < 0 {
		return 0, errors.Errorf("negative position %d", offset)
	}
	s.pos = offset
	return offset, nil
}

func (s *httpSource) Size() int64 {
	return s.size
}
