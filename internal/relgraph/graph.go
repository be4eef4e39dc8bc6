// Package relgraph models the relational catalog as a directed graph of
// tables and foreign keys, and provides the mutation operations the
// search driver uses to walk that graph toward a document forest.
//
// Node and Edge are arena-stored by stable integer id rather than linked
// by pointer: Node<->Edge back-references would otherwise form reference
// cycles, and ids must stay stable across deep copies so that a node in
// one candidate graph can be compared against its counterpart in
// another. Node and Edge hold only ids; all traversal resolves through
// the owning Graph.
package relgraph

import (
	"fmt"
	"sort"
)

// NodeID and EdgeID are stable across Graph.Clone.
type NodeID int
type EdgeID int

// Node represents one source table, or (after Duplicate) one embedded
// document position descended from a table.
type Node struct {
	ID NodeID

	Table  string // source table name
	PKCol  string // primary key column

	RowSize float64 // bytes per row (data_length / row_count, or 32 fallback)

	N0 float64 // original row count
	N  float64 // current row count, mutated by the size propagator
	D  float64 // current distinct-row count, D <= N

	NoDuplicate bool // suppresses the Duplicate transform

	Path []string // labels from root collection to this node; set by the schema builder

	Incoming map[EdgeID]struct{}
	Outgoing map[EdgeID]struct{}
}

func newNode(id NodeID, table, pk string, rowSize, rowCount float64) *Node {
	return &Node{
		ID:       id,
		Table:    table,
		PKCol:    pk,
		RowSize:  rowSize,
		N0:       rowCount,
		N:        rowCount,
		D:        rowCount,
		Incoming: make(map[EdgeID]struct{}),
		Outgoing: make(map[EdgeID]struct{}),
	}
}

// Edge represents one foreign-key relationship, or after a mutation, one
// embedding/reference link in the target document schema.
type Edge struct {
	ID EdgeID

	From NodeID
	To   NodeID

	FKColumn string // FK column name
	FKTable  string // FK-bearing table name (== To's table until the edge is reversed, then From's)

	DistinctFKCount float64
	NullFKCount     float64

	Reversed  bool
	Reference bool
}

// IsSelfLoop reports whether the edge's endpoints are the same node.
func (e *Edge) IsSelfLoop() bool { return e.From == e.To }

// Graph owns a set of Nodes and Edges keyed by stable id, plus a
// monotonically increasing id counter and an append-only mutation log.
// A Graph exclusively owns its Nodes/Edges; Node/Edge hold only ids, so
// they carry no back-reference to the Graph that owns them.
type Graph struct {
	Source Source // originating catalog, shared read-only across copies

	nodes map[NodeID]*Node
	edges map[EdgeID]*Edge

	nextNodeID NodeID
	nextEdgeID EdgeID

	// Steps is shared by reference across Clone: every mutation appends
	// a step to the slice the clone was given, so the log is append-only
	// and common ancestry is visible across a search branch's copies.
	Steps *[]string
}

// Source is the subset of the catalog reader's output a Graph needs to
// remember across copies (db name, for telemetry and error messages).
type Source struct {
	SchemaName string
}

// New creates an empty graph.
func New(src Source) *Graph {
	steps := make([]string, 0, 8)
	return &Graph{
		Source: src,
		nodes:  make(map[NodeID]*Node),
		edges:  make(map[EdgeID]*Edge),
		Steps:  &steps,
	}
}

// AddNode creates a new node with a fresh id and inserts it into the graph.
func (g *Graph) AddNode(table, pk string, rowSize, rowCount float64) *Node {
	id := g.nextNodeID
	g.nextNodeID++
	n := newNode(id, table, pk, rowSize, rowCount)
	g.nodes[id] = n
	return n
}

// AddEdge creates a new edge with a fresh id between existing nodes and
// wires it into both endpoints' adjacency sets.
func (g *Graph) AddEdge(from, to NodeID, fkCol, fkTable string, distinctFK, nullFK float64) *Edge {
	if _, ok := g.nodes[from]; !ok {
		panic(fmt.Sprintf("relgraph: AddEdge: unknown from-node %d", from))
	}
	if _, ok := g.nodes[to]; !ok {
		panic(fmt.Sprintf("relgraph: AddEdge: unknown to-node %d", to))
	}
	id := g.nextEdgeID
	g.nextEdgeID++
	e := &Edge{
		ID:              id,
		From:            from,
		To:              to,
		FKColumn:        fkCol,
		FKTable:         fkTable,
		DistinctFKCount: distinctFK,
		NullFKCount:     nullFK,
	}
	g.edges[id] = e
	g.nodes[from].Outgoing[id] = struct{}{}
	g.nodes[to].Incoming[id] = struct{}{}
	return e
}

// Node resolves a NodeID to its Node, panicking if it does not exist in
// this graph (invariant 1: edge endpoints always resolve within the
// same graph; a miss here is a programmer error, not recoverable input).
func (g *Graph) Node(id NodeID) *Node {
	n, ok := g.nodes[id]
	if !ok {
		panic(fmt.Sprintf("relgraph: node %d not in graph", id))
	}
	return n
}

// Edge resolves an EdgeID to its Edge.
func (g *Graph) Edge(id EdgeID) *Edge {
	e, ok := g.edges[id]
	if !ok {
		panic(fmt.Sprintf("relgraph: edge %d not in graph", id))
	}
	return e
}

// Nodes returns all node ids in ascending order, for deterministic iteration.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sortNodeIDs(ids)
	return ids
}

// Edges returns all edge ids in ascending order.
func (g *Graph) Edges() []EdgeID {
	ids := make([]EdgeID, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}
	sortEdgeIDs(ids)
	return ids
}

func (g *Graph) NumNodes() int { return len(g.nodes) }
func (g *Graph) NumEdges() int { return len(g.edges) }

// removeNode removes a node and every edge still attached to it, on
// either side. Callers that need an edge's fields afterward (Duplicate)
// must snapshot them first: this deletes the edges outright, it does
// not repoint them.
func (g *Graph) removeNode(id NodeID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for eid := range n.Outgoing {
		g.removeEdge(eid)
	}
	for eid := range n.Incoming {
		g.removeEdge(eid)
	}
	delete(g.nodes, id)
}

func (g *Graph) removeEdge(id EdgeID) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	if from, ok := g.nodes[e.From]; ok {
		delete(from.Outgoing, id)
	}
	if to, ok := g.nodes[e.To]; ok {
		delete(to.Incoming, id)
	}
	delete(g.edges, id)
}

// logStep appends a human-readable mutation description to the shared
// step log.
func (g *Graph) logStep(step string) {
	*g.Steps = append(*g.Steps, step)
}

// StepCount returns the length of the shared step log: every mutation
// applied to this graph or to any graph cloned from the same original,
// sibling clones included. The search driver's (2/3)*|E0| budget check
// compares against it.
func (g *Graph) StepCount() int { return len(*g.Steps) }

func sortNodeIDs(ids []NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func sortEdgeIDs(ids []EdgeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
