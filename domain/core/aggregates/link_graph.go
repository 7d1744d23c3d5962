package aggregates

import (
	"sort"
	"sync"

	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
)

// nodeKind tracks why a node is present in the graph
type nodeKind uint8

const (
	nodeDocument    nodeKind = iota // a real, existing document
	nodePlaceholder                 // referenced by title, not yet created
	nodeRemoved                     // deleted document still targeted by links
)

// NodeView is a read-model row for graph rendering
type NodeView struct {
	ID          valueobjects.DocumentID `json:"id"`
	Title       string                  `json:"title"`
	Placeholder bool                    `json:"placeholder"`
	Removed     bool                    `json:"removed"`
	InDegree    int                     `json:"in_degree"`
	OutDegree   int                     `json:"out_degree"`
}

type node struct {
	id    valueobjects.DocumentID
	title string
	kind  nodeKind
}

// LinkGraph is the aggregate root for the document reference graph. It is
// an adjacency structure keyed by stable document ids; reference cycles
// are ordinary data here, never pointer cycles.
//
// The edge set for a document always equals the latest extraction result
// of that document's content. Every mutation is scoped to the one document
// whose content changed, so the graph never needs a full rebuild.
//
// The aggregate is shared process-wide: a single lock guards the maps, and
// per-document ordering of extraction passes is the caller's business (the
// coordinator serializes them behind edit settlement).
type LinkGraph struct {
	mu       sync.RWMutex
	nodes    map[string]*node
	outgoing map[string][]entities.Link
	incoming map[string][]entities.Link
}

// NewLinkGraph creates an empty graph
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{
		nodes:    make(map[string]*node),
		outgoing: make(map[string][]entities.Link),
		incoming: make(map[string][]entities.Link),
	}
}

// RegisterDocument ensures a node for an existing document. A placeholder
// or tombstone node for the same id is promoted to a real document node,
// and any placeholder standing in for the document's title hands its
// inbound links over, so backlinks resolve the moment the document exists.
// The adopted links are returned for the caller to report as a delta.
func (g *LinkGraph) RegisterDocument(id valueobjects.DocumentID, title string) []entities.Link {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n, ok := g.nodes[id.String()]; ok {
		n.kind = nodeDocument
		n.title = title
	} else {
		g.nodes[id.String()] = &node{id: id, title: title, kind: nodeDocument}
	}
	return g.adoptPlaceholderLocked(id, title)
}

// adoptPlaceholderLocked re-points every link aimed at the placeholder for
// a title onto the document that now carries it. The sources' outgoing
// edges are rewritten in place; re-extracting a source afterwards resolves
// the same target and produces an empty delta. Callers hold the lock.
func (g *LinkGraph) adoptPlaceholderLocked(id valueobjects.DocumentID, title string) []entities.Link {
	phKey := valueobjects.NewPlaceholderID(title).String()
	if phKey == id.String() {
		return nil
	}
	inbound := g.incoming[phKey]
	if len(inbound) == 0 {
		return nil
	}

	adopted := make([]entities.Link, 0, len(inbound))
	for _, l := range inbound {
		moved := entities.NewLink(l.From, id, l.Anchor)
		out := g.outgoing[l.From.String()]
		for i, cand := range out {
			if cand.Key() == l.Key() {
				out[i] = moved
			}
		}
		g.incoming[id.String()] = append(g.incoming[id.String()], moved)
		adopted = append(adopted, moved)
	}
	delete(g.incoming, phKey)
	delete(g.nodes, phKey)
	return adopted
}

// UpsertEdges atomically replaces all outgoing edges of from with the given
// extraction result, creating placeholder nodes for unseen targets. It
// returns the exact delta, which the caller forwards on GraphChanged.
func (g *LinkGraph) UpsertEdges(from valueobjects.DocumentID, edges []entities.Link) (added, removed []entities.Link) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := from.String()
	old := g.outgoing[key]

	oldSet := make(map[string]entities.Link, len(old))
	for _, l := range old {
		oldSet[l.Key()] = l
	}
	newSet := make(map[string]entities.Link, len(edges))
	deduped := make([]entities.Link, 0, len(edges))
	for _, l := range edges {
		if _, seen := newSet[l.Key()]; seen {
			continue
		}
		newSet[l.Key()] = l
		deduped = append(deduped, l)
	}

	for k, l := range newSet {
		if _, ok := oldSet[k]; !ok {
			added = append(added, l)
		}
	}
	for k, l := range oldSet {
		if _, ok := newSet[k]; !ok {
			removed = append(removed, l)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return nil, nil
	}

	// Drop the old edges from the incoming indexes.
	for _, l := range old {
		g.dropIncoming(l)
	}

	if len(deduped) == 0 {
		delete(g.outgoing, key)
	} else {
		g.outgoing[key] = deduped
	}
	g.ensureNode(from)
	for _, l := range deduped {
		g.ensureNode(l.To)
		g.incoming[l.To.String()] = append(g.incoming[l.To.String()], l)
	}
	g.pruneIfOrphaned(from)
	return added, removed
}

// Backlinks returns the inbound edges of a document in O(in-degree). Links
// into a removed or not-yet-created document are flagged broken so the UI
// can surface them instead of hiding them.
func (g *LinkGraph) Backlinks(id valueobjects.DocumentID) []entities.Backlink {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.nodes[id.String()]
	broken := n == nil || n.kind != nodeDocument

	in := g.incoming[id.String()]
	result := make([]entities.Backlink, 0, len(in))
	for _, l := range in {
		result = append(result, entities.Backlink{
			From:   l.From,
			Anchor: l.Anchor,
			Broken: broken,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].From.String() != result[j].From.String() {
			return result[i].From.String() < result[j].From.String()
		}
		return result[i].Anchor < result[j].Anchor
	})
	return result
}

// Outgoing returns a copy of a document's current outgoing edges
func (g *LinkGraph) Outgoing(id valueobjects.DocumentID) []entities.Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]entities.Link(nil), g.outgoing[id.String()]...)
}

// RemoveDocument removes the node and all its outgoing edges. Incoming
// edges from other documents are kept: until their sources are re-saved,
// the deleted document stays visible as a broken-link tombstone.
func (g *LinkGraph) RemoveDocument(id valueobjects.DocumentID) (removed []entities.Link) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := id.String()
	removed = g.outgoing[key]
	for _, l := range removed {
		g.dropIncoming(l)
	}
	delete(g.outgoing, key)

	if n, ok := g.nodes[key]; ok {
		if len(g.incoming[key]) > 0 {
			n.kind = nodeRemoved
		} else {
			delete(g.nodes, key)
			delete(g.incoming, key)
		}
	}
	return removed
}

// Node returns the view of a single node
func (g *LinkGraph) Node(id valueobjects.DocumentID) (NodeView, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	key := id.String()
	n, ok := g.nodes[key]
	if !ok {
		return NodeView{}, false
	}
	return NodeView{
		ID:          n.id,
		Title:       n.title,
		Placeholder: n.kind == nodePlaceholder,
		Removed:     n.kind == nodeRemoved,
		InDegree:    len(g.incoming[key]),
		OutDegree:   len(g.outgoing[key]),
	}, true
}

// Nodes returns a sorted snapshot of every node for graph rendering
func (g *LinkGraph) Nodes() []NodeView {
	g.mu.RLock()
	defer g.mu.RUnlock()

	views := make([]NodeView, 0, len(g.nodes))
	for key, n := range g.nodes {
		views = append(views, NodeView{
			ID:          n.id,
			Title:       n.title,
			Placeholder: n.kind == nodePlaceholder,
			Removed:     n.kind == nodeRemoved,
			InDegree:    len(g.incoming[key]),
			OutDegree:   len(g.outgoing[key]),
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID.String() < views[j].ID.String() })
	return views
}

// Edges returns a snapshot of every edge
func (g *LinkGraph) Edges() []entities.Link {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var all []entities.Link
	for _, out := range g.outgoing {
		all = append(all, out...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key() < all[j].Key() })
	return all
}

// EdgeCount returns the current number of edges
func (g *LinkGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, out := range g.outgoing {
		n += len(out)
	}
	return n
}

// ShortestPath finds a minimal-hop path between two documents, following
// links in either direction the way the graph view renders them. The
// second result is false when the nodes are not connected.
func (g *LinkGraph) ShortestPath(from, to valueobjects.DocumentID) ([]valueobjects.DocumentID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[from.String()]; !ok {
		return nil, false
	}
	if _, ok := g.nodes[to.String()]; !ok {
		return nil, false
	}
	if from.Equals(to) {
		return []valueobjects.DocumentID{from}, true
	}

	prev := map[string]string{from.String(): ""}
	queue := []string{from.String()}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.neighbors(cur) {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == to.String() {
				return g.walkBack(prev, to.String()), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

// ConnectedComponent returns every node reachable from id, ignoring edge
// direction, sorted by id
func (g *LinkGraph) ConnectedComponent(id valueobjects.DocumentID) []valueobjects.DocumentID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[id.String()]; !ok {
		return nil
	}
	seen := map[string]bool{id.String(): true}
	queue := []string{id.String()}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.neighbors(cur) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]valueobjects.DocumentID, 0, len(keys))
	for _, k := range keys {
		result = append(result, g.nodes[k].id)
	}
	return result
}

// neighbors yields adjacent node keys in both directions. Callers hold the lock.
func (g *LinkGraph) neighbors(key string) []string {
	var out []string
	for _, l := range g.outgoing[key] {
		out = append(out, l.To.String())
	}
	for _, l := range g.incoming[key] {
		out = append(out, l.From.String())
	}
	return out
}

func (g *LinkGraph) walkBack(prev map[string]string, end string) []valueobjects.DocumentID {
	var keys []string
	for cur := end; cur != ""; cur = prev[cur] {
		keys = append(keys, cur)
	}
	path := make([]valueobjects.DocumentID, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		path = append(path, g.nodes[keys[i]].id)
	}
	return path
}

// ensureNode creates a placeholder node if the id is unknown. Callers hold the lock.
func (g *LinkGraph) ensureNode(id valueobjects.DocumentID) {
	key := id.String()
	if _, ok := g.nodes[key]; ok {
		return
	}
	g.nodes[key] = &node{id: id, kind: nodePlaceholder}
}

// dropIncoming removes one edge from its target's incoming index and prunes
// targets that no longer matter. Callers hold the lock.
func (g *LinkGraph) dropIncoming(l entities.Link) {
	key := l.To.String()
	in := g.incoming[key]
	for i, cand := range in {
		if cand.Key() == l.Key() {
			g.incoming[key] = append(in[:i], in[i+1:]...)
			break
		}
	}
	if len(g.incoming[key]) == 0 {
		delete(g.incoming, key)
		g.pruneIfOrphaned(l.To)
	}
}

// pruneIfOrphaned drops placeholder and tombstone nodes once nothing
// references them. Callers hold the lock.
func (g *LinkGraph) pruneIfOrphaned(id valueobjects.DocumentID) {
	key := id.String()
	n, ok := g.nodes[key]
	if !ok || n.kind == nodeDocument {
		return
	}
	if len(g.incoming[key]) == 0 && len(g.outgoing[key]) == 0 {
		delete(g.nodes, key)
	}
}
