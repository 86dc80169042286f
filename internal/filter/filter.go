// internal/filter/filter.go
package filter

import (
	"strings"

	"commit-watcher/internal/model"
)

// KeywordFilter decides whether a commit message is worth notifying about.
// A nil or empty filter passes everything.
type KeywordFilter struct {
	keywords []string
}

// New builds a filter from raw keywords. Keywords are trimmed, lower-cased
// and de-duplicated; blank entries are dropped.
func New(keywords []string) *KeywordFilter {
	seen := make(map[string]struct{}, len(keywords))
	f := &KeywordFilter{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		f.keywords = append(f.keywords, k)
	}
	return f
}

// Passes reports whether the lower-cased message contains any keyword.
func (f *KeywordFilter) Passes(c model.Commit) bool {
	if f == nil || len(f.keywords) == 0 {
		return true
	}
	msg := strings.ToLower(c.Message)
	for _, k := range f.keywords {
		if strings.Contains(msg, k) {
			return true
		}
	}
	return false
}

// Keywords returns the normalized keyword set.
func (f *KeywordFilter) Keywords() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.keywords...)
}

// Enabled reports whether the filter will ever reject a commit.
func (f *KeywordFilter) Enabled() bool {
	return f != nil && len(f.keywords) > 0
}
