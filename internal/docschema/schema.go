// Package docschema walks a valid relgraph.Graph forest into a concrete
// document-schema plan: embedded collections and children, plus deferred
// cross-document references, per spec.md §4.7.
package docschema

import (
	"sort"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
)

// ChildKind distinguishes the two embedding shapes a non-reference edge
// can produce.
type ChildKind int

const (
	// OneToManyChild embeds a forward edge's rows as a list under label
	// "<fk_col>_<child_table>".
	OneToManyChild ChildKind = iota
	// ManyToOneChild embeds a reversed edge's single row under label
	// "<fk_col>".
	ManyToOneChild
)

// Child is one embedded position under a Collection or another Child.
type Child struct {
	Kind ChildKind

	Table    string
	Key      string // child's primary key column
	FKColumn string

	Label string // field name this child is embedded under

	Node relgraph.NodeID // source node this child was built from

	Children []*Child
}

// Collection is a top-level target collection, rooted at a node whose
// incoming edges are all references (or none).
type Collection struct {
	Table string
	Key   string

	Node relgraph.NodeID

	Children []*Child
}

// RefKind distinguishes the two reference shapes §4.7's second pass emits.
type RefKind int

const (
	// OneToManyRef: a forward edge turned into a reference. The parent
	// field gets a list of child ids.
	OneToManyRef RefKind = iota
	// ManyToOneRef: a reversed edge turned into a reference. The parent
	// field gets a single child id.
	ManyToOneRef
)

// Ref is a deferred cross-document reference, resolved by the Data
// Mapper's phase 2.
type Ref struct {
	Kind RefKind

	ChildCollection string
	ChildKey        string // child's primary key column

	ParentPath []string // full path to the parent field hosting the reference
	ParentKey  string    // parent's primary key column
	FKColumn   string
}

// Schema is the complete document-schema plan for one candidate graph.
type Schema struct {
	Collections []*Collection
	Refs        []*Ref
}

// Build walks every root of g into a Collection, embedding each
// non-reference outgoing edge as a Child and recording g.Node(...).Path
// along the way, then makes a second pass over every node to emit a Ref
// per reference edge.
func Build(g *relgraph.Graph) *Schema {
	s := &Schema{}

	for _, rootID := range relgraph.Roots(g) {
		root := g.Node(rootID)
		root.Path = []string{root.Table}
		coll := &Collection{Table: root.Table, Key: root.PKCol, Node: rootID}
		coll.Children = embedChildren(g, rootID, root.Path)
		s.Collections = append(s.Collections, coll)
	}

	for _, id := range g.Nodes() {
		n := g.Node(id)
		incoming := make([]relgraph.EdgeID, 0, len(n.Incoming))
		for eid := range n.Incoming {
			incoming = append(incoming, eid)
		}
		sort.Slice(incoming, func(i, j int) bool { return incoming[i] < incoming[j] })
		for _, eid := range incoming {
			e := g.Edge(eid)
			if !e.Reference {
				continue
			}
			parent := g.Node(e.From)
			if len(parent.Path) == 0 {
				// A reference edge's source node was never reached by the
				// embedding walk (possible only when g is not a valid
				// forest, since every forest node lies under some root);
				// its path is just its own table name, matching how Build
				// seeds root paths.
				parent.Path = []string{parent.Table}
			}
			if e.Reversed {
				s.Refs = append(s.Refs, &Ref{
					Kind:            ManyToOneRef,
					ChildCollection: n.Table,
					ChildKey:        n.PKCol,
					ParentPath:      append([]string(nil), parent.Path...),
					ParentKey:       parent.PKCol,
					FKColumn:        e.FKColumn,
				})
			} else {
				s.Refs = append(s.Refs, &Ref{
					Kind:            OneToManyRef,
					ChildCollection: n.Table,
					ChildKey:        n.PKCol,
					ParentPath:      append([]string(nil), parent.Path...),
					ParentKey:       parent.PKCol,
					FKColumn:        e.FKColumn,
				})
			}
		}
	}

	return s
}

// embedChildren attaches one Child per outgoing non-reference edge of
// node, sets the child node's Path to parentPath+label, and recurses.
func embedChildren(g *relgraph.Graph, nodeID relgraph.NodeID, parentPath []string) []*Child {
	node := g.Node(nodeID)
	var children []*Child

	outgoing := make([]relgraph.EdgeID, 0, len(node.Outgoing))
	for eid := range node.Outgoing {
		outgoing = append(outgoing, eid)
	}
	sort.Slice(outgoing, func(i, j int) bool { return outgoing[i] < outgoing[j] })

	for _, eid := range outgoing {
		e := g.Edge(eid)
		if e.Reference {
			continue
		}
		childNode := g.Node(e.To)

		var kind ChildKind
		var label string
		if e.Reversed {
			kind = ManyToOneChild
			label = e.FKColumn
		} else {
			kind = OneToManyChild
			label = e.FKColumn + "_" + childNode.Table
		}

		path := append(append([]string(nil), parentPath...), label)
		childNode.Path = path

		c := &Child{
			Kind:     kind,
			Table:    childNode.Table,
			Key:      childNode.PKCol,
			FKColumn: e.FKColumn,
			Label:    label,
			Node:     e.To,
		}
		c.Children = embedChildren(g, e.To, path)
		children = append(children, c)
	}

	return children
}
