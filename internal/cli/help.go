package cli

import "fmt"

func HelpText(program string) string {
	if program == "" {
		program = "arcfind"
	}
	return fmt.Sprintf(`%s - find members inside zip and 7z archives, including nested ones

Usage:
  %s [options] <archive> [suffix...]
  %s -r archive.zip report.txt
  %s --contains "BEGIN CERTIFICATE" --extract-to certs bundle.7z

Archive:
  Local file, - for stdin, s3://bucket/key, or an S3 object ARN.
  gzip/bzip2/xz/zstd/lz4 wrapped archives are unwrapped automatically.

Matching:
  [suffix...]            Member path suffixes to search for
  --contains <text>      Match members whose content contains <text>;
                         repeatable, tried in order, first hit wins
  -i, --ignore-case      Case-insensitive suffix comparison
  -1, --first            Record only the first hit per suffix and stop
                         once every suffix has been found
  --include-empty        Keep a result line for suffixes without hits

Traversal:
  -r, --recursive        Descend into members that are archives themselves
  --max-depth <n>        Nesting limit for -r (default 16)
  --exclude <pattern>    Skip members matching the doublestar pattern;
                         repeatable

Output & Extraction:
  -l, --long             Print size and modification time per hit
  --extract-to <dir|s3://...>
                         Write content-matched members there; colliding
                         names get a numeric suffix
  -v, --verbose          Debug logging to stderr
  -h, --help             Show this help message
`, program, program, program, program)
}
