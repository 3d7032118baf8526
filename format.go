package arcfind

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Format classifies a byte source by its leading magic bytes. Media-type
// hints are never consulted; only the bytes decide.
type Format int

const (
	FormatUnknown Format = iota
	FormatZip
	FormatSevenZip
	FormatGzip
	FormatBzip2
	FormatXz
	FormatZstd
	FormatLz4
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatSevenZip:
		return "7z"
	case FormatGzip:
		return "gzip"
	case FormatBzip2:
		return "bzip2"
	case FormatXz:
		return "xz"
	case FormatZstd:
		return "zstd"
	case FormatLz4:
		return "lz4"
	default:
		return "unknown"
	}
}

// IsContainer reports whether the format holds an enumerable member list.
func (f Format) IsContainer() bool {
	return f == FormatZip || f == FormatSevenZip
}

// IsStream reports whether the format is a single-payload compression
// wrapper that must be unwrapped before the payload can be classified.
func (f Format) IsStream() bool {
	switch f {
	case FormatGzip, FormatBzip2, FormatXz, FormatZstd, FormatLz4:
		return true
	default:
		return false
	}
}

const maxMagicLen = 8

// Longer signatures first so the xz magic is never shadowed by a shorter
// prefix match.
var signatures = []struct {
	format Format
	magic  []byte
}{
	{FormatSevenZip, []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}},
	{FormatXz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{FormatZip, []byte{'P', 'K', 0x03, 0x04}},
	{FormatZip, []byte{'P', 'K', 0x05, 0x06}},
	{FormatZip, []byte{'P', 'K', 0x07, 0x08}},
	{FormatZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{FormatLz4, []byte{0x04, 0x22, 0x4d, 0x18}},
	{FormatBzip2, []byte{'B', 'Z', 'h'}},
	{FormatGzip, []byte{0x1f, 0x8b}},
}

// Detect classifies data by signature. It returns FormatUnknown when no
// signature matches; callers must treat that as a hard stop, not a guess.
func Detect(data []byte) Format {
	for _, s := range signatures {
		if len(data) >= len(s.magic) && bytes.Equal(data[:len(s.magic)], s.magic) {
			return s.format
		}
	}
	return FormatUnknown
}

// DetectFile reads just enough of the file at path to classify it.
func DetectFile(path string) (Format, error) {
	format, _, err := detectFile(path)
	return format, err
}

func detectFile(path string) (Format, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, nil, err
	}
	defer f.Close() //nolint:errcheck

	buf := make([]byte, maxMagicLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	return Detect(buf[:n]), buf[:n], nil
}

// UnknownFormatError reports a source whose leading bytes match no
// supported container or stream signature.
type UnknownFormatError struct {
	Source string
	Magic  []byte
}

func (e *UnknownFormatError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s is not a supported archive type (magic % x)", e.Source, e.Magic)
	}
	return fmt.Sprintf("not a supported archive type (magic % x)", e.Magic)
}

func asUnknownFormat(err error) (*UnknownFormatError, bool) {
	var uerr *UnknownFormatError
	if errors.As(err, &uerr) {
		return uerr, true
	}
	return nil, false
}

func leadingBytes(data []byte) []byte {
	if len(data) > maxMagicLen {
		data = data[:maxMagicLen]
	}
	return bytes.Clone(data)
}
