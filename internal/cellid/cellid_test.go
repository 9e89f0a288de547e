package cellid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	assert.Equal(t, "AAAC-1", Identity{}.Normalize(" AAAC-1 ", ATAC))
}

func TestAffixRuleOnlyTouchesItsKind(t *testing.T) {
	r := AffixRule{Kind: ATAC, TrimSuffix: "-1"}
	assert.Equal(t, "AAAC", r.Normalize("AAAC-1", ATAC))
	assert.Equal(t, "AAAC-1", r.Normalize("AAAC-1", RNA))
}

func TestAffixRuleTrimAndAdd(t *testing.T) {
	r := AffixRule{TrimPrefix: "atac_", AddSuffix: "-1"}
	assert.Equal(t, "AAAC-1", r.Normalize("atac_AAAC", ATAC))
	// absent prefix is not an error
	assert.Equal(t, "GGTT-1", r.Normalize("GGTT", RNA))
}

func TestChainAppliesInOrder(t *testing.T) {
	c := Chain{
		AffixRule{Kind: ATAC, TrimSuffix: "-1"},
		AffixRule{AddPrefix: "s1_"},
	}
	assert.Equal(t, "s1_AAAC", c.Normalize("AAAC-1", ATAC))
	assert.Equal(t, "s1_AAAC-1", c.Normalize("AAAC-1", RNA))
}

func TestForKindFallsBack(t *testing.T) {
	f := ForKind{ByKind: map[SourceKind]Normalizer{
		ATAC: AffixRule{TrimPrefix: "x"},
	}}
	assert.Equal(t, "A", f.Normalize("xA", ATAC))
	assert.Equal(t, "xA", f.Normalize("xA", RNA))
}

func TestFromRules(t *testing.T) {
	assert.Equal(t, Identity{}, FromRules(nil))
	n := FromRules([]AffixRule{{Kind: ATAC, TrimSuffix: "-1"}, {Kind: ATAC, AddPrefix: "s1_"}})
	assert.Equal(t, "s1_AC", n.Normalize("AC-1", ATAC))
	assert.Equal(t, "AC-1", n.Normalize(" AC-1", RNA))
}

func TestFromRulesRoutesByKind(t *testing.T) {
	n := FromRules([]AffixRule{
		{TrimPrefix: "lib1_"},
		{Kind: ATAC, TrimSuffix: "-1"},
		{Kind: RNA, AddSuffix: "-r"},
		{Kind: ATAC, AddPrefix: "x"},
	})
	f, ok := n.(ForKind)
	require.True(t, ok)
	assert.Len(t, f.ByKind, 2)

	assert.Equal(t, "xAAAC", n.Normalize("lib1_AAAC-1", ATAC))
	assert.Equal(t, "AAAC-r", n.Normalize("lib1_AAAC", RNA))
	// kinds without rules of their own get the shared rules only
	assert.Equal(t, "AAAC-1", n.Normalize("lib1_AAAC-1", "adt"))
}
