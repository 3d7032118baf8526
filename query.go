package arcfind

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxDepth bounds recursive descent into nested archives when the
// query does not set its own limit.
const DefaultMaxDepth = 16

// ErrNoCriteria is returned before any I/O when a query carries neither
// name targets nor predicates.
var ErrNoCriteria = errors.New("query needs at least one name or predicate")

// Logger is the subset of log/slog used by the search engine. A nil
// Query.Logger falls back to slog.Default().
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Predicate is a content matcher with a caller-supplied identity. Match
// reports whether data matches and may return a value to record alongside
// the hit; the value of the latest hit wins.
type Predicate struct {
	Key   string
	Match func(data []byte) (any, bool)
}

// Query configures one search. At least one of Names or Predicates must
// be non-empty; when both are present, predicates take precedence per
// member.
type Query struct {
	// Names are path suffixes to match against member names.
	Names []string
	// Predicates are tried in order; the first hit wins the member.
	Predicates []Predicate
	// IgnoreCase makes suffix comparison case-insensitive.
	IgnoreCase bool
	// FirstOnly records only the first hit per name and allows the
	// traversal to stop once every name has been seen.
	FirstOnly bool
	// IncludeEmpty keeps a result key for names that never matched.
	IncludeEmpty bool
	// Recursive descends into members that are themselves archives.
	Recursive bool
	// MaxDepth caps recursion depth; zero means DefaultMaxDepth.
	MaxDepth int
	// Exclude holds doublestar patterns; matching members are skipped
	// entirely (no matching, no recursion).
	Exclude []string
	// Extract receives predicate-matched members. Name matches are
	// never extracted.
	Extract Sink
	Logger  Logger
}

func (q Query) validate() error {
	if len(q.Names) == 0 && len(q.Predicates) == 0 {
		return ErrNoCriteria
	}
	seen := make(map[string]struct{}, len(q.Predicates))
	for _, p := range q.Predicates {
		if p.Key == "" || p.Match == nil {
			return fmt.Errorf("predicate needs a key and a match function")
		}
		if _, dup := seen[p.Key]; dup {
			return fmt.Errorf("duplicate predicate key %q", p.Key)
		}
		seen[p.Key] = struct{}{}
	}
	return nil
}

func (q Query) logger() Logger {
	if q.Logger != nil {
		return q.Logger
	}
	return slog.Default()
}

func (q Query) maxDepth() int {
	if q.MaxDepth > 0 {
		return q.MaxDepth
	}
	return DefaultMaxDepth
}

// MatchRecord is one matched member with its decoded bytes.
type MatchRecord struct {
	Name    string
	Size    int64
	ModTime time.Time
	Data    []byte
}

func newRecord(m Member, data []byte) MatchRecord {
	return MatchRecord{Name: m.Name, Size: m.Size, ModTime: m.ModTime, Data: data}
}

// PredicateResult groups the hits of one predicate key together with the
// value returned by its latest hit.
type PredicateResult struct {
	Records   []MatchRecord
	LastValue any
}

// Results is the outcome of one top-level search. Names maps requested
// suffix to its hits in traversal order; Predicates maps predicate key to
// its hits. ExtractErrors collects per-member sink failures, which do not
// abort the search.
type Results struct {
	Names         map[string][]MatchRecord
	Predicates    map[string]PredicateResult
	ExtractErrors []error
}
