package rewriter

import "bytes"

// Substituter performs a global literal substring replacement.
// The replacement is a single left-to-right pass: replaced output is never
// rescanned, so rewriting "http://" to "https://" cannot produce "httpss://".
type Substituter struct {
	from []byte
	to   []byte
}

// NewSubstituter creates a Substituter replacing every from with to.
func NewSubstituter(from, to string) Substituter {
	return Substituter{from: []byte(from), to: []byte(to)}
}

// Apply returns the substituted content and the number of replacements made.
// When nothing matches, content is returned as is.
func (s Substituter) Apply(content []byte) ([]byte, int) {
	if len(s.from) == 0 {
		return content, 0
	}
	n := bytes.Count(content, s.from)
	if n == 0 {
		return content, 0
	}
	return bytes.ReplaceAll(content, s.from, s.to), n
}
