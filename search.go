package arcfind

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Search enumerates the members of the in-memory archive data and matches
// them against q. The whole result set belongs to this one invocation:
// recursive descent into nested archives feeds the same accumulator.
func Search(ctx context.Context, data []byte, q Query) (*Results, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	r, err := openBytes(data)
	if err != nil {
		return nil, err
	}
	s := &searcher{q: q, log: q.logger(), acc: newAccumulator(q)}
	s.acc.markVisited(data)
	return s.run(ctx, r)
}

// SearchFile is Search for a path-backed archive.
func SearchFile(ctx context.Context, path string, q Query) (*Results, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	r, err := openFile(path)
	if err != nil {
		return nil, err
	}
	s := &searcher{q: q, log: q.logger(), acc: newAccumulator(q)}
	return s.run(ctx, r)
}

type searcher struct {
	q   Query
	log Logger
	acc *accumulator
}

func (s *searcher) run(ctx context.Context, r Reader) (*Results, error) {
	err := s.walk(ctx, r, 0)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return s.acc.results(s.q), nil
}

func (s *searcher) walk(ctx context.Context, r Reader, depth int) error {
	for _, m := range r.Members() {
		if s.acc.complete() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if m.IsDir {
			continue
		}
		if s.excluded(m.Name) {
			s.log.Debug("exclude", "name", m.Name)
			continue
		}

		data, err := r.ReadMember(m)
		if err != nil {
			return err
		}
		if len(s.q.Predicates) > 0 && s.matchPredicates(ctx, m, data) {
			continue
		}
		if s.q.Recursive {
			if err := s.descend(ctx, m, data, depth); err != nil {
				return err
			}
		}
		s.matchNames(m, data)
	}
	return nil
}

// matchPredicates records the first predicate hit for the member and hands
// it to the extraction sink. A sink failure is scoped to this member.
func (s *searcher) matchPredicates(ctx context.Context, m Member, data []byte) bool {
	p, value, ok := evalPredicates(s.q.Predicates, data)
	if !ok {
		return false
	}
	rec := newRecord(m, data)
	pr := s.acc.byPred[p.Key]
	if pr == nil {
		pr = &PredicateResult{}
		s.acc.byPred[p.Key] = pr
	}
	pr.Records = append(pr.Records, rec)
	pr.LastValue = value
	s.log.Debug("match", "predicate", p.Key, "name", m.Name)

	if s.q.Extract != nil {
		if err := s.q.Extract.Store(ctx, rec); err != nil {
			s.log.Warn("extract failed", "name", m.Name, "error", err)
			s.acc.extractErrors = append(s.acc.extractErrors, fmt.Errorf("extract %s: %w", m.Name, err))
		}
	}
	return true
}

func (s *searcher) matchNames(m Member, data []byte) {
	for _, target := range s.q.Names {
		if _, done := s.acc.found[target]; done {
			continue
		}
		if !matchesSuffix(m.Name, target, s.q.IgnoreCase) {
			continue
		}
		s.acc.byName[target] = append(s.acc.byName[target], newRecord(m, data))
		s.log.Debug("match", "target", target, "name", m.Name)
		if s.q.FirstOnly {
			s.acc.found[target] = struct{}{}
		}
	}
}

// descend re-runs the search against a member whose bytes classify as a
// supported archive. Members that merely look like one but do not open
// are treated as plain files, not as a failure of the whole search.
func (s *searcher) descend(ctx context.Context, m Member, data []byte, depth int) error {
	if Detect(data) == FormatUnknown {
		return nil
	}
	if depth+1 >= s.q.maxDepth() {
		s.log.Debug("max depth reached", "name", m.Name, "depth", depth+1)
		return nil
	}
	if !s.acc.markVisited(data) {
		s.log.Debug("skip visited archive", "name", m.Name)
		return nil
	}
	nested, err := openBytes(data)
	if err != nil {
		if _, ok := asUnknownFormat(err); ok {
			s.log.Debug("not a container", "name", m.Name)
		} else {
			s.log.Debug("skip unreadable nested archive", "name", m.Name, "error", err)
		}
		return nil
	}
	werr := s.walk(ctx, nested, depth+1)
	if cerr := nested.Close(); werr == nil {
		werr = cerr
	}
	return werr
}

func (s *searcher) excluded(name string) bool {
	for _, pattern := range s.q.Exclude {
		if doublestar.MatchUnvalidated(pattern, name) {
			return true
		}
	}
	return false
}

// accumulator is the single shared traversal state of one top-level
// search. Recursive calls mutate the same instance; results are built
// from it exactly once, after the outermost walk returns.
type accumulator struct {
	names         []string
	byName        map[string][]MatchRecord
	byPred        map[string]*PredicateResult
	found         map[string]struct{}
	visited       map[[sha256.Size]byte]struct{}
	extractErrors []error
}

func newAccumulator(q Query) *accumulator {
	return &accumulator{
		names:   q.Names,
		byName:  make(map[string][]MatchRecord),
		byPred:  make(map[string]*PredicateResult),
		found:   make(map[string]struct{}),
		visited: make(map[[sha256.Size]byte]struct{}),
	}
}

// complete reports whether every requested name has been satisfied. Only
// name targets drive early exit; predicate queries always run to the end.
func (a *accumulator) complete() bool {
	return len(a.names) > 0 && len(a.found) == len(a.names)
}

// markVisited returns false when an identical archive body has already
// been traversed, which keeps self-referential chains finite.
func (a *accumulator) markVisited(data []byte) bool {
	sum := sha256.Sum256(data)
	if _, ok := a.visited[sum]; ok {
		return false
	}
	a.visited[sum] = struct{}{}
	return true
}

func (a *accumulator) results(q Query) *Results {
	res := &Results{
		Names:         make(map[string][]MatchRecord, len(a.byName)),
		Predicates:    make(map[string]PredicateResult, len(a.byPred)),
		ExtractErrors: a.extractErrors,
	}
	for key, recs := range a.byName {
		res.Names[key] = recs
	}
	if q.IncludeEmpty {
		for _, name := range q.Names {
			if _, ok := res.Names[name]; !ok {
				res.Names[name] = []MatchRecord{}
			}
		}
	}
	for key, pr := range a.byPred {
		res.Predicates[key] = *pr
	}
	return res
}
