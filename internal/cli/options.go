package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// Options is the parsed command line. The first positional argument is
// the archive (path, "-", s3:// URI or S3 ARN); the rest are name
// suffixes to search for.
type Options struct {
	Archive      string
	Names        []string
	Contains     []string
	Exclude      []string
	ExtractTo    string
	MaxDepth     int
	IgnoreCase   bool
	FirstOnly    bool
	IncludeEmpty bool
	Recursive    bool
	Long         bool
	Verbose      bool
	Help         bool
}

func Parse(args []string) (Options, error) {
	var opts Options
	positional := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		if strings.HasPrefix(a, "--") {
			name, value, hasValue := strings.Cut(a[2:], "=")
			switch name {
			case "contains":
				v, nextI, err := resolveValue(name, value, hasValue, args, i)
				if err != nil {
					return opts, err
				}
				i = nextI
				opts.Contains = append(opts.Contains, v)
			case "exclude":
				v, nextI, err := resolveValue(name, value, hasValue, args, i)
				if err != nil {
					return opts, err
				}
				i = nextI
				opts.Exclude = append(opts.Exclude, v)
			case "extract-to":
				v, nextI, err := resolveValue(name, value, hasValue, args, i)
				if err != nil {
					return opts, err
				}
				i = nextI
				opts.ExtractTo = v
			case "max-depth":
				v, nextI, err := resolveValue(name, value, hasValue, args, i)
				if err != nil {
					return opts, err
				}
				i = nextI
				n, err := strconv.Atoi(v)
				if err != nil || n < 1 {
					return opts, fmt.Errorf("option --max-depth requires a positive integer")
				}
				opts.MaxDepth = n
			case "ignore-case":
				opts.IgnoreCase = true
			case "first":
				opts.FirstOnly = true
			case "include-empty":
				opts.IncludeEmpty = true
			case "recursive":
				opts.Recursive = true
			case "long":
				opts.Long = true
			case "verbose":
				opts.Verbose = true
			case "help":
				opts.Help = true
			default:
				return opts, fmt.Errorf("unsupported option --%s", name)
			}
			continue
		}

		for _, s := range a[1:] {
			switch s {
			case 'i':
				opts.IgnoreCase = true
			case '1':
				opts.FirstOnly = true
			case 'r':
				opts.Recursive = true
			case 'l':
				opts.Long = true
			case 'v':
				opts.Verbose = true
			case 'h':
				opts.Help = true
			default:
				return opts, fmt.Errorf("unsupported option -%c", s)
			}
		}
	}

	if opts.Help {
		return opts, nil
	}
	if len(positional) == 0 {
		return opts, fmt.Errorf("an archive argument is required")
	}
	opts.Archive = positional[0]
	opts.Names = positional[1:]
	if len(opts.Names) == 0 && len(opts.Contains) == 0 {
		return opts, fmt.Errorf("nothing to search for: give name suffixes or --contains")
	}
	return opts, nil
}

func resolveValue(name, inline string, hasInline bool, args []string, i int) (string, int, error) {
	if hasInline {
		return inline, i, nil
	}
	i++
	if i >= len(args) {
		return "", i, fmt.Errorf("option --%s requires a value", name)
	}
	return args[i], i, nil
}
