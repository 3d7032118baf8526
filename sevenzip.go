package arcfind

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

type sevenZipReader struct {
	r       *sevenzip.Reader
	closer  io.Closer // set for path-backed archives
	members []Member
}

func newSevenZipReader(data []byte) (Reader, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open 7z: %w", err)
	}
	return wrapSevenZip(r, nil), nil
}

func openSevenZipFile(path string) (Reader, error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open 7z %s: %w", path, err)
	}
	return wrapSevenZip(&rc.Reader, rc), nil
}

func wrapSevenZip(r *sevenzip.Reader, closer io.Closer) *sevenZipReader {
	members := make([]Member, 0, len(r.File))
	for i, f := range r.File {
		members = append(members, Member{
			Name:    f.Name,
			Size:    int64(f.UncompressedSize),
			ModTime: f.Modified,
			IsDir:   f.FileInfo().IsDir(),
			index:   i,
		})
	}
	return &sevenZipReader{r: r, closer: closer, members: members}
}

func (s *sevenZipReader) Members() []Member { return s.members }

// ReadMember decompresses the member's solid stream from its start on
// every call, so reads are independent of each other and of order.
func (s *sevenZipReader) ReadMember(m Member) ([]byte, error) {
	if m.index < 0 || m.index >= len(s.r.File) {
		return nil, fmt.Errorf("member %q does not belong to this archive", m.Name)
	}
	f := s.r.File[m.index]
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open 7z member %s: %w", f.Name, err)
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read 7z member %s: %w", f.Name, err)
	}
	return data, nil
}

func (s *sevenZipReader) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
