package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestClassifyIndexSplitsLeavesAndGroups checks that catalog anchors are
// split by the species marker and everything else is ignored.
func TestClassifyIndexSplitsLeavesAndGroups(t *testing.T) {
	t.Parallel()

	content := `<html>
<li><a href="/cgi/formula/C6H6">Benzene</a></li>
<li><a href="/cgi/inchi/xyz">Some leaf</a></li>
<li><a href="/cgi/species/C6*">C6 species index</a></li>
<li><a href="/other/path">Not a catalog anchor</a></li>
<p>plain text with /cgi/ inside</p>
</html>`

	cls := ClassifyIndex(content)
	require.Equal(t, NewLinkSet("/cgi/formula/C6H6", "/cgi/inchi/xyz"), cls.Leaves)
	require.Equal(t, NewLinkSet("/cgi/species/C6*"), cls.Groups)
	require.Zero(t, cls.Failed.Len())
}

// TestClassifyIndexEmptyContent ensures content without anchors yields an
// empty, non-nil classification.
func TestClassifyIndexEmptyContent(t *testing.T) {
	t.Parallel()

	cls := ClassifyIndex("")
	require.Zero(t, cls.Leaves.Len())
	require.Zero(t, cls.Groups.Len())
	require.Zero(t, cls.Failed.Len())
}

// TestClassifyIndexMalformedAnchorLine ensures a marker line without a quoted
// href is skipped rather than misclassified.
func TestClassifyIndexMalformedAnchorLine(t *testing.T) {
	t.Parallel()

	cls := ClassifyIndex(`<li><a href="/cgi/`)
	require.Zero(t, cls.Leaves.Len())
	require.Zero(t, cls.Groups.Len())
}

// TestLinkSetOperations covers the set helpers the frontier loop relies on.
func TestLinkSetOperations(t *testing.T) {
	t.Parallel()

	s := NewLinkSet("/a", "/b")
	s.Add("/c")
	require.True(t, s.Has("/c"))
	require.Equal(t, 3, s.Len())

	s.Union(NewLinkSet("/c", "/d"))
	require.Equal(t, 4, s.Len())

	diff := s.Diff(NewLinkSet("/a", "/d"))
	require.Equal(t, NewLinkSet("/b", "/c"), diff)

	clone := s.Clone()
	clone.Add("/e")
	require.False(t, s.Has("/e"))

	require.Equal(t, []Link{"/a", "/b", "/c", "/d"}, s.Slice())
}
