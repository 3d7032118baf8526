package arcfind

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Sink persists matched members. Implementations must tolerate colliding
// base names from different directories or nesting levels.
type Sink interface {
	Store(ctx context.Context, rec MatchRecord) error
}

// DirSink flattens matched members into one directory. Colliding base
// names get an incrementing numeric suffix before the extension, so no
// earlier extraction is ever overwritten.
type DirSink struct {
	Dir string
}

func NewDirSink(dir string) *DirSink { return &DirSink{Dir: dir} }

func (s *DirSink) Store(_ context.Context, rec MatchRecord) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	target, err := uniquePath(s.Dir, path.Base(rec.Name))
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, rec.Data, 0o644); err != nil {
		return err
	}
	if !rec.ModTime.IsZero() {
		_ = os.Chtimes(target, rec.ModTime, rec.ModTime)
	}
	return nil
}

func uniquePath(dir, base string) (string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	candidate := filepath.Join(dir, base)
	for n := 1; ; n++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}
