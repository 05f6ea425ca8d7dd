package projection

import (
	"strconv"

	"github.com/voodooEntity/gits"
	"github.com/voodooEntity/gits/src/query"
	"github.com/voodooEntity/gits/src/storage"
	"github.com/voodooEntity/gits/src/transport"
	"github.com/voodooEntity/regrow/src/system/archivist"
	"github.com/voodooEntity/regrow/src/system/dirtygraph"
	"github.com/voodooEntity/regrow/src/system/rgg"
)

// Projection mirrors an rgg.Graph into a gits storage instance so that
// consumers (layout, rendering, diagnostics) can read growth state through
// gits queries instead of holding a reference to the mutable graph. Node
// names become entity types, attribute values become properties, the
// ancestor/children overlay becomes the entity tree and every non-hierarchy
// edge becomes an explicit link.
//
// Sync rebuilds the projection from scratch into a fresh, version-suffixed
// instance; graphs are small enough that diffing is not worth the
// bookkeeping.
type Projection struct {
	ident    string
	version  int
	instance *gits.Gits
	log      *archivist.Archivist
}

// UnnamedType is the entity type used for nodes with an empty name.
const UnnamedType = "Unnamed"

func New(ident string, logger *archivist.Archivist) *Projection {
	logger.Info("Creating projection", ident)
	return &Projection{
		ident: ident,
		log:   logger,
	}
}

// Sync rebuilds the projection from the graph's current state.
func (p *Projection) Sync(g *rgg.Graph) {
	p.version++
	p.instance = gits.NewInstance(p.ident + "-" + strconv.Itoa(p.version))
	p.log.Debug(archivist.DEBUG_LEVEL_TRACE, "projection sync", p.ident, p.version)

	// map every overlay tree from its root; nodes outside any hierarchy are
	// roots of their own
	mapped := make(map[dirtygraph.ID]bool)
	for _, id := range g.Dirty.Nodes() {
		if _, hasParent := g.Dirty.GetAncestor(id); hasParent {
			continue
		}
		p.instance.MapData(p.buildTree(g, id, mapped))
	}
	// overlay cycles would keep their members unmapped above
	for _, id := range g.Dirty.Nodes() {
		if !mapped[id] {
			p.instance.MapData(p.buildTree(g, id, mapped))
		}
	}

	// link the symmetric edges the hierarchy does not already represent
	for _, edge := range g.Dirty.Edges() {
		if p.coveredByHierarchy(g, edge) {
			continue
		}
		qry := query.New().Link(p.entityType(g, edge.A)).Match("Value", "==", strconv.Itoa(int(edge.A))).To(
			query.New().Find(p.entityType(g, edge.B)).Match("Value", "==", strconv.Itoa(int(edge.B))),
		)
		p.instance.Query().Execute(qry)
	}
}

func (p *Projection) buildTree(g *rgg.Graph, id dirtygraph.ID, mapped map[dirtygraph.ID]bool) transport.TransportEntity {
	mapped[id] = true
	entity := transport.TransportEntity{
		ID:         storage.MAP_FORCE_CREATE,
		Type:       p.entityType(g, id),
		Value:      strconv.Itoa(int(id)),
		Context:    p.ident,
		Properties: p.properties(g, id),
	}
	for _, child := range g.Dirty.GetChildren(id) {
		if mapped[child] {
			continue
		}
		entity.ChildRelations = append(entity.ChildRelations, transport.TransportRelation{
			Target: p.buildTree(g, child, mapped),
		})
	}
	return entity
}

func (p *Projection) entityType(g *rgg.Graph, id dirtygraph.ID) string {
	node, ok := g.Values[id]
	if !ok || node.Name == "" {
		return UnnamedType
	}
	return node.Name
}

func (p *Projection) properties(g *rgg.Graph, id dirtygraph.ID) map[string]string {
	properties := make(map[string]string)
	if node, ok := g.Values[id]; ok {
		for attribute, value := range node.Values {
			properties[attribute] = value.String()
		}
	}
	return properties
}

func (p *Projection) coveredByHierarchy(g *rgg.Graph, edge dirtygraph.Edge) bool {
	if parent, ok := g.Dirty.GetAncestor(edge.A); ok && parent == edge.B {
		return true
	}
	if parent, ok := g.Dirty.GetAncestor(edge.B); ok && parent == edge.A {
		return true
	}
	return false
}

// Instance exposes the underlying gits instance for free-form queries.
// Only valid after the first Sync.
func (p *Projection) Instance() *gits.Gits {
	return p.instance
}

// NodesByName reads all projected entities for the given node name.
func (p *Projection) NodesByName(name string) []transport.TransportEntity {
	if p.instance == nil {
		return nil
	}
	if name == "" {
		name = UnnamedType
	}
	result := p.instance.Query().Execute(query.New().Read(name))
	return result.Entities
}

// CountByName returns how many nodes of the given name are projected.
func (p *Projection) CountByName(name string) int {
	return len(p.NodesByName(name))
}
