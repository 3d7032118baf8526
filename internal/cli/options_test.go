package cli

import (
	"strings"
	"testing"
)

func TestParseNamesAndFlags(t *testing.T) {
	opts, err := Parse([]string{"-r1i", "--exclude", "vendor/**", "--max-depth=4", "a.zip", "report.txt", "cert.pem"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if opts.Archive != "a.zip" {
		t.Fatalf("Archive = %q", opts.Archive)
	}
	if strings.Join(opts.Names, ",") != "report.txt,cert.pem" {
		t.Fatalf("Names = %v", opts.Names)
	}
	if !opts.Recursive || !opts.FirstOnly || !opts.IgnoreCase {
		t.Fatalf("bundled short flags not parsed: %+v", opts)
	}
	if opts.MaxDepth != 4 {
		t.Fatalf("MaxDepth = %d, want 4", opts.MaxDepth)
	}
	if len(opts.Exclude) != 1 || opts.Exclude[0] != "vendor/**" {
		t.Fatalf("Exclude = %v", opts.Exclude)
	}
}

func TestParseContainsWithoutNames(t *testing.T) {
	opts, err := Parse([]string{"--contains", "BEGIN CERTIFICATE", "--extract-to", "out", "bundle.7z"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(opts.Contains) != 1 || opts.Contains[0] != "BEGIN CERTIFICATE" {
		t.Fatalf("Contains = %v", opts.Contains)
	}
	if opts.ExtractTo != "out" {
		t.Fatalf("ExtractTo = %q", opts.ExtractTo)
	}
	if len(opts.Names) != 0 {
		t.Fatalf("Names = %v, want none", opts.Names)
	}
}

func TestParseStdinArchive(t *testing.T) {
	opts, err := Parse([]string{"-", "x.txt"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if opts.Archive != "-" {
		t.Fatalf("Archive = %q, want -", opts.Archive)
	}
}

func TestParseDoubleDash(t *testing.T) {
	opts, err := Parse([]string{"a.zip", "--", "-weird-name.txt"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(opts.Names) != 1 || opts.Names[0] != "-weird-name.txt" {
		t.Fatalf("Names = %v", opts.Names)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"no archive", nil},
		{"no criteria", []string{"a.zip"}},
		{"zero max depth", []string{"--max-depth", "0", "a.zip", "x"}},
		{"unknown long option", []string{"--bogus", "a.zip", "x"}},
		{"unknown short option", []string{"-q", "a.zip", "x"}},
		{"missing option value", []string{"a.zip", "x", "--contains"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Parse(c.args); err == nil {
				t.Fatalf("Parse(%v) expected error", c.args)
			}
		})
	}
}

func TestParseHelpShortCircuits(t *testing.T) {
	opts, err := Parse([]string{"-h"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !opts.Help {
		t.Fatalf("Help should be set")
	}
}
