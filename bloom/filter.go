// Package bloom provides a probabilistic seen-set for article URLs.
package bloom

import (
	"net/url"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// DefaultFalsePositiveRate keeps the chance of wrongly dropping a new
// article URL negligible for blog-sized inputs.
const DefaultFalsePositiveRate = 1e-6

// URLSet remembers article URLs in a Bloom filter. URLs are normalized so
// that scheme, host case, a "www." prefix, query, fragment and a trailing
// slash do not make the same article look new.
type URLSet struct {
	f *bloom.BloomFilter
}

// NewURLSet sizes the set for n expected URLs at DefaultFalsePositiveRate.
func NewURLSet(n uint) *URLSet {
	return NewURLSetWithRate(n, DefaultFalsePositiveRate)
}

// NewURLSetWithRate sizes the set for n expected URLs at false positive
// rate fp.
func NewURLSetWithRate(n uint, fp float64) *URLSet {
	if n == 0 {
		n = 1
	}
	return &URLSet{f: bloom.NewWithEstimates(n, fp)}
}

// Add records rawURL.
func (s *URLSet) Add(rawURL string) {
	s.f.AddString(Normalize(rawURL))
}

// Contains reports whether rawURL may have been added. False positives are
// possible; false negatives are not.
func (s *URLSet) Contains(rawURL string) bool {
	return s.f.TestString(Normalize(rawURL))
}

// AddNew records rawURL and reports whether it was absent before.
func (s *URLSet) AddNew(rawURL string) bool {
	return !s.f.TestAndAddString(Normalize(rawURL))
}

// Dedupe returns urls in order with repeats of the same normalized URL
// removed, keeping the first form seen. A miss in the filter is taken as
// new; a hit is confirmed against the URLs kept so far, so a false
// positive never drops a distinct URL.
func (s *URLSet) Dedupe(urls []string) []string {
	kept := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		key := Normalize(u)
		if s.f.TestAndAddString(key) {
			if _, dup := kept[key]; dup {
				continue
			}
		}
		kept[key] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Len returns the approximate number of distinct URLs added.
func (s *URLSet) Len() uint {
	return uint(s.f.ApproximatedSize())
}

// Normalize returns the key under which rawURL is stored.
func Normalize(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(rawURL)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host + strings.TrimSuffix(u.EscapedPath(), "/")
}
