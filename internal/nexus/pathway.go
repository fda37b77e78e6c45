package nexus

// Pathway node types this process distinguishes. The remote tree carries
// more types; anything else is treated as plain structure to descend into.
const (
	NodeTypePathwayReference = "pathwayReference"     // service/effort branch
	NodeTypeBasketGrant      = "basketGrantReference" // grant reference leaf
)

// PathwayNode is one element of a citizen's case-pathway tree.
// GrantID is only meaningful on basketGrantReference nodes.
type PathwayNode struct {
	ID       int64          `json:"id"`
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Active   bool           `json:"active"`
	GrantID  int64          `json:"grantId,omitempty"`
	Children []*PathwayNode `json:"children,omitempty"`
}

// FindGrantReferences walks the tree and collects every basket-grant
// reference that sits under a service/effort branch, across active and
// inactive pathways. This is the structural stage of the two-stage filter;
// use MatchGrantID for the predicate stage.
func FindGrantReferences(root *PathwayNode) []*PathwayNode {
	var refs []*PathwayNode
	walk(root, false, &refs)
	return refs
}

func walk(node *PathwayNode, underBranch bool, refs *[]*PathwayNode) {
	if node == nil {
		return
	}
	if node.Type == NodeTypeBasketGrant && underBranch {
		*refs = append(*refs, node)
	}
	if node.Type == NodeTypePathwayReference {
		underBranch = true
	}
	for _, child := range node.Children {
		walk(child, underBranch, refs)
	}
}

// MatchGrantID returns the single reference whose grant identifier equals
// id, or nil when no reference matches.
func MatchGrantID(refs []*PathwayNode, id int64) *PathwayNode {
	for _, ref := range refs {
		if ref.GrantID == id {
			return ref
		}
	}
	return nil
}
