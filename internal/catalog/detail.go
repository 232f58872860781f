package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Markup markers on a chemical detail page. Scalar fields are keyed by a
// fixed marker line; the value sits either on the same line or on the line
// immediately after it.
const (
	titlePrefix    = "<title>"
	titleSuffix    = "</title>"
	formulaMarker  = ` title="IUPAC definition of empirical formula"`
	weightMarker   = ` title="IUPAC definition of relative molecular mass (molecular weight)"`
	inchiMarker    = "<strong>IUPAC Standard InChI:</strong>"
	inchiKeyMarker = "<strong>IUPAC Standard InChIKey:</strong>"
	casMarker      = "CAS Registry Number"
	spectrumMarker = "Index="
)

// ParseError reports a hard field-level parse failure that invalidates the
// whole record.
type ParseError struct {
	Href  Link
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s of %s: %v", e.Field, e.Href, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// fieldRule maps one marker to the field it populates. When lookahead is set
// the value is read from the line after the marker, otherwise from the marker
// line itself. Rules whose value or assignment cannot be applied leave the
// field absent; only assign may veto the whole record by returning an error.
type fieldRule struct {
	match     func(line string) bool
	lookahead bool
	value     func(line string) (string, bool)
	assign    func(r *Record, raw string) error
}

func exactLine(marker string) func(string) bool {
	return func(line string) bool { return line == marker }
}

var fieldRules = []fieldRule{
	{
		match: func(line string) bool { return strings.HasPrefix(line, titlePrefix) },
		value: func(line string) (string, bool) {
			return strings.TrimSuffix(strings.TrimPrefix(line, titlePrefix), titleSuffix), true
		},
		assign: func(r *Record, raw string) error { r.Name = raw; return nil },
	},
	{
		match:     exactLine(formulaMarker),
		lookahead: true,
		value:     strongValue,
		assign:    func(r *Record, raw string) error { r.Formula = raw; return nil },
	},
	{
		match:     exactLine(weightMarker),
		lookahead: true,
		value:     strongValue,
		assign: func(r *Record, raw string) error {
			w, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("molecular weight %q: %w", raw, err)
			}
			r.Weight = &w
			return nil
		},
	},
	{
		match:     exactLine(inchiMarker),
		lookahead: true,
		value:     inchiValue,
		assign:    func(r *Record, raw string) error { r.InChI = raw; return nil },
	},
	{
		match:     exactLine(inchiKeyMarker),
		lookahead: true,
		value:     inchiValue,
		assign:    func(r *Record, raw string) error { r.InChIKey = raw; return nil },
	},
	{
		match:  func(line string) bool { return strings.Contains(line, casMarker) },
		value:  strongValue,
		assign: func(r *Record, raw string) error { r.CAS = raw; return nil },
	},
}

// strongValue pulls the text after a closing </strong> tag and strips the
// list-item terminator.
func strongValue(line string) (string, bool) {
	_, rest, ok := strings.Cut(line, "</strong> ")
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(rest, "</li>"), true
}

// inchiValue pulls the text of an inchi-text span.
func inchiValue(line string) (string, bool) {
	_, rest, ok := strings.Cut(line, `"inchi-text">`)
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(rest, "</span>"), true
}

// spectrumRewrites canonicalizes a spectral-data href: alternate parameter
// spellings become JCAMP=, and spectrum-type suffixes are stripped before the
// canonical one is appended. Order matters: Type=IR-SPEC must go before
// Type=IR. New spellings are added here, not in the scan loop.
var spectrumRewrites = [][2]string{
	{"Spec=", "JCAMP="},
	{"ID=", "JCAMP="},
	{"&amp;Type=IR-SPEC", ""},
	{"&amp;Type=IR", ""},
	{"#IR-SPEC", ""},
}

const spectrumTypeSuffix = "&amp;Type=IR"

// normalizeSpectrumHref applies the rewrite table and tags the href with the
// canonical spectrum type.
func normalizeSpectrumHref(href string) Link {
	href, _, _ = strings.Cut(href, "&amp;Large=on")
	for _, rw := range spectrumRewrites {
		href = strings.ReplaceAll(href, rw[0], rw[1])
	}
	return Link(href + spectrumTypeSuffix)
}

// quotedHref returns the value between the first pair of quote characters on
// the line, trying single quotes before double quotes.
func quotedHref(line string) (string, bool) {
	for _, quote := range []string{"'", `"`} {
		if !strings.Contains(line, quote) {
			continue
		}
		parts := strings.Split(line, quote)
		if len(parts) < 2 {
			return "", false
		}
		return parts[1], true
	}
	return "", false
}

// ExtractRecord scans one detail page into a Record. Scalar fields degrade to
// absent when their markup is missing or mangled; a molecular weight that
// fails numeric parsing invalidates the whole record and returns a
// *ParseError. Spectral references are deduplicated in first-seen order.
func ExtractRecord(content string, href Link) (*Record, error) {
	rec := &Record{Href: href}
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	seen := make(map[Link]struct{})
	for i, line := range lines {
		if matched, err := applyFieldRules(rec, lines, i); err != nil {
			return nil, &ParseError{Href: href, Field: "weight", Err: err}
		} else if matched {
			continue
		}
		if !strings.Contains(line, spectrumMarker) {
			continue
		}
		raw, ok := quotedHref(line)
		if !ok {
			continue
		}
		ref := normalizeSpectrumHref(raw)
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		rec.Spectra = append(rec.Spectra, ref)
	}
	return rec, nil
}

func applyFieldRules(rec *Record, lines []string, i int) (bool, error) {
	line := lines[i]
	for _, rule := range fieldRules {
		if !rule.match(line) {
			continue
		}
		src := line
		if rule.lookahead {
			if i+1 >= len(lines) {
				return true, nil
			}
			src = lines[i+1]
		}
		raw, ok := rule.value(src)
		if !ok {
			return true, nil
		}
		return true, rule.assign(rec, raw)
	}
	return false, nil
}

// ExtractLabeledHref returns the target of the first anchor on the page whose
// text equals label, e.g. the "IR Spectrum" cross-reference link.
func ExtractLabeledHref(content, label string) (Link, bool) {
	re, err := regexp.Compile(`<a href="([^"]+)">` + regexp.QuoteMeta(label) + `</a>`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return Link(m[1]), true
}
