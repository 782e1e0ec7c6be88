package scenegraph

import (
	"github.com/cespare/xxhash/v2"
	"github.com/webforge/scenecore/internal/scene"
)

// Node is the read-only projection of one entity for the hierarchy panel.
type Node struct {
	ID       string   `json:"entityId"`
	Name     string   `json:"name"`
	Type     string   `json:"entityType"`
	Visible  bool     `json:"visible"`
	ParentID string   `json:"parentId,omitempty"`
	Children []string `json:"children"`
}

// Graph is the scene-graph-update payload.
type Graph struct {
	Nodes   []Node   `json:"nodes"`
	RootIDs []string `json:"rootIds"`
}

// Cache rebuilds the projection only when the scene reports a structural
// change, and only reports a change when the projection actually differs.
type Cache struct {
	graph       Graph
	fingerprint uint64
	built       bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Graph returns the last built projection.
func (c *Cache) Graph() Graph { return c.graph }

// Fingerprint is the xxhash digest of the last built projection.
func (c *Cache) Fingerprint() uint64 { return c.fingerprint }

// Invalidate forces the next Refresh to rebuild and report.
func (c *Cache) Invalidate() { c.built = false }

// Refresh rebuilds from sc when dirty. It reports true when the new graph
// differs from the previous one.
func (c *Cache) Refresh(sc *scene.Scene) (Graph, bool) {
	if c.built && !sc.GraphDirty() {
		return c.graph, false
	}
	g := Build(sc)
	fp := digest(g)
	sc.ClearGraphDirty()
	changed := !c.built || fp != c.fingerprint
	c.graph, c.fingerprint, c.built = g, fp, true
	return g, changed
}

// Build projects the scene hierarchy. Nodes follow creation order.
func Build(sc *scene.Scene) Graph {
	ids := sc.Entities()
	g := Graph{Nodes: make([]Node, 0, len(ids)), RootIDs: []string{}}
	children := make(map[string][]string, len(ids))
	for _, id := range ids {
		if p := sc.ParentOf(id); p != "" && sc.Exists(p) {
			children[p] = append(children[p], id)
		}
	}
	for _, id := range ids {
		ident, _ := sc.Identity(id)
		n := Node{
			ID:       id,
			Name:     ident.Name,
			Type:     ident.Type,
			Visible:  ident.Visible,
			ParentID: sc.ParentOf(id),
			Children: children[id],
		}
		if n.Children == nil {
			n.Children = []string{}
		}
		if n.ParentID == "" || !sc.Exists(n.ParentID) {
			n.ParentID = ""
			g.RootIDs = append(g.RootIDs, id)
		}
		g.Nodes = append(g.Nodes, n)
	}
	return g
}

func digest(g Graph) uint64 {
	d := xxhash.New()
	for _, n := range g.Nodes {
		_, _ = d.WriteString(n.ID)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(n.Name)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(n.Type)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(n.ParentID)
		if n.Visible {
			_, _ = d.WriteString("\x01")
		} else {
			_, _ = d.WriteString("\x02")
		}
	}
	return d.Sum64()
}
