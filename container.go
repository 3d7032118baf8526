package arcfind

import (
	"os"
	"time"
)

// Member is one entry of an open container, in the container's native
// listing order. Directory entries are listed but never carry content.
type Member struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool

	index int
}

// Reader is the capability every supported container format implements.
// ReadMember calls are independent of each other: formats whose decoder
// keeps a single read position restore it internally.
type Reader interface {
	Members() []Member
	ReadMember(m Member) ([]byte, error)
	Close() error
}

// openBytes dispatches an in-memory source to the matching container
// reader, unwrapping compression stream layers first.
func openBytes(data []byte) (Reader, error) {
	payload, format, err := unwrapStream(data)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatZip:
		return newZipReader(payload)
	case FormatSevenZip:
		return newSevenZipReader(payload)
	default:
		return nil, &UnknownFormatError{Magic: leadingBytes(data)}
	}
}

// openFile dispatches a path-backed source. Container formats are opened
// directly from the file; stream-wrapped sources are decompressed in
// memory and re-dispatched.
func openFile(path string) (Reader, error) {
	format, header, err := detectFile(path)
	if err != nil {
		return nil, err
	}
	switch {
	case format == FormatZip:
		return openZipFile(path)
	case format == FormatSevenZip:
		return openSevenZipFile(path)
	case format.IsStream():
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		r, err := openBytes(data)
		if uerr, ok := asUnknownFormat(err); ok {
			uerr.Source = path
		}
		return r, err
	default:
		return nil, &UnknownFormatError{Source: path, Magic: header}
	}
}
