package catalog

import "strings"

// Catalog index pages list their children as one anchor per line. Only
// anchors under the catalog CGI prefix are considered; a line that also
// mentions a species index points at another index page (a group), everything
// else is a formula detail page (a leaf).
const (
	indexAnchorPrefix = `<li><a href="/cgi/`
	speciesMarker     = "species"
)

// ClassifyIndex scans one index page and splits its catalog anchors into leaf
// and group links. The scan is line-oriented and never fails: content that
// matches nothing yields an empty classification.
func ClassifyIndex(content string) Classification {
	cls := Classification{
		Leaves: NewLinkSet(),
		Groups: NewLinkSet(),
		Failed: NewLinkSet(),
	}
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, indexAnchorPrefix) {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) < 2 {
			continue
		}
		href := Link(parts[1])
		if strings.Contains(line, speciesMarker) {
			cls.Groups.Add(href)
		} else {
			cls.Leaves.Add(href)
		}
	}
	return cls
}
