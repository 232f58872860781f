// Package catalog defines the link and record types for the WebBook catalog
// and the extractors that produce them from page markup.
package catalog

import "sort"

// Link is a relative catalog path such as "/cgi/formula/C6H6". Links are
// compared by exact string equality; no normalization is applied beyond what
// the extractors already do.
type Link string

// LinkSet is an unordered set of links.
type LinkSet map[Link]struct{}

// NewLinkSet builds a set from the given links.
func NewLinkSet(links ...Link) LinkSet {
	s := make(LinkSet, len(links))
	for _, l := range links {
		s[l] = struct{}{}
	}
	return s
}

// Add inserts a link into the set.
func (s LinkSet) Add(l Link) {
	s[l] = struct{}{}
}

// Has reports whether the link is in the set.
func (s LinkSet) Has(l Link) bool {
	_, ok := s[l]
	return ok
}

// Len returns the number of links in the set.
func (s LinkSet) Len() int {
	return len(s)
}

// Union inserts every link of other into s.
func (s LinkSet) Union(other LinkSet) {
	for l := range other {
		s[l] = struct{}{}
	}
}

// Diff returns a new set holding the links of s that are not in other.
func (s LinkSet) Diff(other LinkSet) LinkSet {
	out := make(LinkSet)
	for l := range s {
		if !other.Has(l) {
			out[l] = struct{}{}
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s LinkSet) Clone() LinkSet {
	out := make(LinkSet, len(s))
	for l := range s {
		out[l] = struct{}{}
	}
	return out
}

// Slice returns the links in sorted order, for deterministic logging and
// output.
func (s LinkSet) Slice() []Link {
	out := make([]Link, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Classification is the result of scanning one index page. The three sets are
// mutually exclusive; Failed is non-empty only when the page itself could not
// be fetched or scanned, and then contains exactly that page's own link.
type Classification struct {
	Leaves LinkSet
	Groups LinkSet
	Failed LinkSet
}

// Record holds the fields extracted from one chemical detail page. Every
// field except Href may be absent when the page omits or mangles the
// corresponding markup. Records are not mutated after extraction.
type Record struct {
	Href     Link     `json:"href"`
	Name     string   `json:"name,omitempty"`
	Formula  string   `json:"formula,omitempty"`
	Weight   *float64 `json:"weight,omitempty"`
	InChI    string   `json:"inchi,omitempty"`
	InChIKey string   `json:"inchi_key,omitempty"`
	CAS      string   `json:"cas,omitempty"`
	Spectra  []Link   `json:"spectra,omitempty"`
}
