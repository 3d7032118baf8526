package arcfind

import "testing"

func TestMatchesSuffix(t *testing.T) {
	cases := []struct {
		name       string
		member     string
		target     string
		ignoreCase bool
		want       bool
	}{
		{"exact", "file.txt", "file.txt", false, true},
		{"nested path", "dir/sub/report.txt", "report.txt", false, true},
		{"partial suffix", "dir/myreport.txt", "report.txt", false, true},
		{"case mismatch", "dir/REPORT.TXT", "report.txt", false, false},
		{"case folded", "dir/REPORT.TXT", "report.txt", true, true},
		{"different file", "dir/other.txt", "report.txt", false, false},
		{"target longer than name", "a.txt", "dir/a.txt", false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := matchesSuffix(c.member, c.target, c.ignoreCase); got != c.want {
				t.Fatalf("matchesSuffix(%q, %q, %v) = %v, want %v", c.member, c.target, c.ignoreCase, got, c.want)
			}
		})
	}
}

func TestEvalPredicatesOrder(t *testing.T) {
	var secondCalled bool
	preds := []Predicate{
		{Key: "first", Match: func([]byte) (any, bool) { return "one", true }},
		{Key: "second", Match: func([]byte) (any, bool) { secondCalled = true; return "two", true }},
	}
	p, value, ok := evalPredicates(preds, []byte("data"))
	if !ok || p.Key != "first" || value != "one" {
		t.Fatalf("evalPredicates() = (%q, %v, %v), want first hit", p.Key, value, ok)
	}
	if secondCalled {
		t.Fatalf("second predicate must not run after the first hit")
	}
}

func TestEvalPredicatesNoHit(t *testing.T) {
	preds := []Predicate{
		{Key: "never", Match: func([]byte) (any, bool) { return nil, false }},
	}
	if _, _, ok := evalPredicates(preds, []byte("data")); ok {
		t.Fatalf("expected no hit")
	}
}
