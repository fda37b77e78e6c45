package nexus_test

import (
	"testing"

	"github.com/odense-rpa/grant-reminder/internal/nexus"
)

// sampleTree mirrors the shape of a real pathway: grant references sit under
// service/effort branches, some of which are inactive, and stray references
// outside any branch do not count.
func sampleTree() *nexus.PathwayNode {
	return &nexus.PathwayNode{
		ID:   1,
		Type: "citizenPathway",
		Children: []*nexus.PathwayNode{
			{
				ID:     2,
				Type:   nexus.NodeTypePathwayReference,
				Name:   "Sundhedsfagligt grundforløb",
				Active: true,
				Children: []*nexus.PathwayNode{
					{ID: 3, Type: nexus.NodeTypeBasketGrant, GrantID: 42, Active: true},
					{
						ID:   4,
						Type: "documentReference",
						Children: []*nexus.PathwayNode{
							{ID: 5, Type: nexus.NodeTypeBasketGrant, GrantID: 43, Active: true},
						},
					},
				},
			},
			{
				ID:     6,
				Type:   nexus.NodeTypePathwayReference,
				Name:   "Afsluttet forløb",
				Active: false,
				Children: []*nexus.PathwayNode{
					{ID: 7, Type: nexus.NodeTypeBasketGrant, GrantID: 44, Active: false},
				},
			},
			// A grant reference outside any service/effort branch is not a
			// structural match.
			{ID: 8, Type: nexus.NodeTypeBasketGrant, GrantID: 45, Active: true},
		},
	}
}

func TestFindGrantReferences(t *testing.T) {
	refs := nexus.FindGrantReferences(sampleTree())

	if len(refs) != 3 {
		t.Fatalf("expected 3 references, got %d", len(refs))
	}

	ids := map[int64]bool{}
	for _, ref := range refs {
		ids[ref.GrantID] = true
	}
	for _, want := range []int64{42, 43, 44} {
		if !ids[want] {
			t.Fatalf("expected grant %d among references, got %v", want, ids)
		}
	}
	if ids[45] {
		t.Fatal("reference outside a service/effort branch must not match")
	}
}

func TestFindGrantReferences_IncludesInactiveBranches(t *testing.T) {
	refs := nexus.FindGrantReferences(sampleTree())

	if ref := nexus.MatchGrantID(refs, 44); ref == nil {
		t.Fatal("expected the inactive branch's grant reference to be found")
	}
}

func TestFindGrantReferences_NilRoot(t *testing.T) {
	if refs := nexus.FindGrantReferences(nil); len(refs) != 0 {
		t.Fatalf("expected no references for a nil tree, got %d", len(refs))
	}
}

func TestMatchGrantID(t *testing.T) {
	refs := nexus.FindGrantReferences(sampleTree())

	ref := nexus.MatchGrantID(refs, 42)
	if ref == nil || ref.GrantID != 42 {
		t.Fatalf("expected reference for grant 42, got %+v", ref)
	}

	if ref := nexus.MatchGrantID(refs, 999); ref != nil {
		t.Fatalf("expected nil for an unknown grant id, got %+v", ref)
	}
}
