package arcfind

import (
	"bytes"
	"context"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close error = %v", err)
	}
	return buf.Bytes()
}

func compressBytes(t *testing.T, format Format, data []byte) []byte {
	t.Helper()
	switch format {
	case FormatGzip:
		return gzipBytes(t, data)
	case FormatBzip2:
		var buf bytes.Buffer
		zw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.BestSpeed})
		if err != nil {
			t.Fatalf("bzip2 writer error = %v", err)
		}
		if _, err := zw.Write(data); err != nil {
			t.Fatalf("bzip2 write error = %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("bzip2 close error = %v", err)
		}
		return buf.Bytes()
	case FormatXz:
		var buf bytes.Buffer
		zw, err := xz.NewWriter(&buf)
		if err != nil {
			t.Fatalf("xz writer error = %v", err)
		}
		if _, err := zw.Write(data); err != nil {
			t.Fatalf("xz write error = %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("xz close error = %v", err)
		}
		return buf.Bytes()
	case FormatZstd:
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("zstd writer error = %v", err)
		}
		if _, err := zw.Write(data); err != nil {
			t.Fatalf("zstd write error = %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("zstd close error = %v", err)
		}
		return buf.Bytes()
	case FormatLz4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			t.Fatalf("lz4 write error = %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("lz4 close error = %v", err)
		}
		return buf.Bytes()
	default:
		t.Fatalf("no writer for format %s", format)
		return nil
	}
}

func TestSearchWrappedArchive(t *testing.T) {
	inner := buildZip(t, []zipEntry{{"needle.bin", []byte("payload")}})
	for _, format := range []Format{FormatGzip, FormatBzip2, FormatXz, FormatZstd, FormatLz4} {
		t.Run(format.String(), func(t *testing.T) {
			wrapped := compressBytes(t, format, inner)
			if got := Detect(wrapped); got != format {
				t.Fatalf("Detect() = %s, want %s", got, format)
			}
			res, err := Search(context.Background(), wrapped, Query{Names: []string{"needle.bin"}})
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(res.Names["needle.bin"]) != 1 {
				t.Fatalf("matches = %d, want 1", len(res.Names["needle.bin"]))
			}
			if string(res.Names["needle.bin"][0].Data) != "payload" {
				t.Fatalf("unexpected payload %q", res.Names["needle.bin"][0].Data)
			}
		})
	}
}

func TestUnwrapStreamLayerLimit(t *testing.T) {
	data := buildZip(t, []zipEntry{{"x", []byte("x")}})
	for range maxStreamLayers + 1 {
		data = gzipBytes(t, data)
	}
	if _, _, err := unwrapStream(data); err == nil {
		t.Fatalf("expected layer limit error")
	}
}

func TestTopLevelStreamWithoutContainer(t *testing.T) {
	wrapped := gzipBytes(t, []byte("just text"))
	_, err := Search(context.Background(), wrapped, Query{Names: []string{"a"}})
	if _, ok := asUnknownFormat(err); !ok {
		t.Fatalf("error = %v, want UnknownFormatError", err)
	}
}

func TestRecursiveIntoWrappedMember(t *testing.T) {
	inner := buildZip(t, []zipEntry{{"needle.bin", []byte("deep")}})
	outer := buildZip(t, []zipEntry{{"inner.zip.gz", gzipBytes(t, inner)}})

	res, err := Search(context.Background(), outer, Query{Names: []string{"needle.bin"}, Recursive: true})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(res.Names["needle.bin"]) != 1 {
		t.Fatalf("matches = %d, want 1", len(res.Names["needle.bin"]))
	}
}
