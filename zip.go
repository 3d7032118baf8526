package arcfind

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression method ids the stdlib reader does not handle out of the box.
const (
	zipMethodBzip2 = 12
	zipMethodZstd  = 93
	zipMethodXz    = 95
)

type zipReader struct {
	zr      *zip.Reader
	closer  io.Closer // set for path-backed archives
	members []Member
}

func newZipReader(data []byte) (Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return wrapZip(zr, nil), nil
}

func openZipFile(path string) (Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", path, err)
	}
	return wrapZip(&rc.Reader, rc), nil
}

func wrapZip(zr *zip.Reader, closer io.Closer) *zipReader {
	registerZipDecompressors(zr)
	members := make([]Member, 0, len(zr.File))
	for i, f := range zr.File {
		members = append(members, Member{
			Name:    f.Name,
			Size:    int64(f.UncompressedSize64),
			ModTime: f.Modified,
			IsDir:   f.FileInfo().IsDir(),
			index:   i,
		})
	}
	return &zipReader{zr: zr, closer: closer, members: members}
}

func (z *zipReader) Members() []Member { return z.members }

func (z *zipReader) ReadMember(m Member) ([]byte, error) {
	if m.index < 0 || m.index >= len(z.zr.File) {
		return nil, fmt.Errorf("member %q does not belong to this archive", m.Name)
	}
	f := z.zr.File[m.index]
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip member %s: %w", f.Name, err)
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read zip member %s: %w", f.Name, err)
	}
	return data, nil
}

func (z *zipReader) Close() error {
	if z.closer != nil {
		return z.closer.Close()
	}
	return nil
}

func registerZipDecompressors(zr *zip.Reader) {
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
	zr.RegisterDecompressor(zipMethodBzip2, func(r io.Reader) io.ReadCloser {
		br, err := bzip2.NewReader(r, nil)
		if err != nil {
			return errReadCloser{err}
		}
		return br
	})
	zr.RegisterDecompressor(zipMethodZstd, func(r io.Reader) io.ReadCloser {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return errReadCloser{err}
		}
		return dec.IOReadCloser()
	})
	zr.RegisterDecompressor(zipMethodXz, func(r io.Reader) io.ReadCloser {
		xr, err := xz.NewReader(r)
		if err != nil {
			return errReadCloser{err}
		}
		return io.NopCloser(xr)
	})
}

// errReadCloser defers a decompressor construction error to the first
// Read, since zip.Decompressor cannot return one.
type errReadCloser struct{ err error }

func (e errReadCloser) Read([]byte) (int, error) { return 0, e.err }
func (e errReadCloser) Close() error             { return nil }
