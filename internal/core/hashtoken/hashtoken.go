// Package hashtoken extracts file hash tokens from uploaded text feeds
package hashtoken

import (
	"bufio"
	"io"
	"strings"
)

// MinTokenLen is the shortest token kept by Extract
// MD5 hex digests are 32 chars; anything shorter is feed noise
const MinTokenLen = 32

// Extract reads newline separated tokens from r, trims whitespace, drops
// blanks and short tokens, and keeps only the first occurrence of each token.
// Order of first occurrence is preserved
func Extract(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	// feeds can carry long lines; give the scanner headroom
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []string
	seen := make(map[string]struct{})
	for sc.Scan() {
		tok := strings.TrimSpace(sc.Text())
		if len(tok) < MinTokenLen {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Partition splits tokens into consecutive batches of at most size.
// A size <= 0 yields a single batch with everything
func Partition(tokens []string, size int) [][]string {
	if len(tokens) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]string{tokens}
	}
	batches := make([][]string, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		batches = append(batches, tokens[start:end])
	}
	return batches
}
