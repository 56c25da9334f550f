package hotel

import "sort"

// =============================================================================
// CONNECTIVITY GRAPH - Undirected walkable adjacency over element ids
// =============================================================================

// Edge is an undirected edge, normalized so that A < B.
type Edge struct {
	A ElementID
	B ElementID
}

// Graph is an adjacency map id -> set<id>. It lives beside the entities,
// never inside them.
type Graph struct {
	adj map[ElementID]map[ElementID]struct{}
}

func NewGraph() *Graph {
	return &Graph{adj: make(map[ElementID]map[ElementID]struct{})}
}

func (g *Graph) AddNode(id ElementID) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[ElementID]struct{})
	}
}

func (g *Graph) HasNode(id ElementID) bool {
	_, ok := g.adj[id]
	return ok
}

// RemoveNode detaches every edge of id, then drops the node.
func (g *Graph) RemoveNode(id ElementID) {
	g.Detach(id)
	delete(g.adj, id)
}

// AddEdge links a and b. Both nodes must exist; self-loops are ignored.
func (g *Graph) AddEdge(a, b ElementID) {
	if a == b || !g.HasNode(a) || !g.HasNode(b) {
		return
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
}

func (g *Graph) HasEdge(a, b ElementID) bool {
	_, ok := g.adj[a][b]
	return ok
}

// Detach removes every edge incident on id and keeps the node.
func (g *Graph) Detach(id ElementID) {
	for n := range g.adj[id] {
		delete(g.adj[n], id)
	}
	if _, ok := g.adj[id]; ok {
		g.adj[id] = make(map[ElementID]struct{})
	}
}

func (g *Graph) Degree(id ElementID) int { return len(g.adj[id]) }

// Neighbours returns the adjacent ids in ascending order.
func (g *Graph) Neighbours(id ElementID) []ElementID {
	out := make([]ElementID, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges returns every edge once, sorted.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for a, ns := range g.adj {
		for b := range ns {
			if a < b {
				out = append(out, Edge{A: a, B: b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Path returns a shortest walk from -> to (both included), or nil.
func (g *Graph) Path(from, to ElementID) []ElementID {
	if !g.HasNode(from) || !g.HasNode(to) {
		return nil
	}
	if from == to {
		return []ElementID{from}
	}
	prev := map[ElementID]ElementID{from: from}
	queue := []ElementID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbours(cur) {
			if _, seen := prev[n]; seen {
				continue
			}
			prev[n] = cur
			if n == to {
				path := []ElementID{to}
				for at := cur; at != from; at = prev[at] {
					path = append(path, at)
				}
				path = append(path, from)
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, n)
		}
	}
	return nil
}
