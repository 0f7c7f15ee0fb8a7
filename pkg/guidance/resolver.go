package guidance

import (
	"context"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// offsetBatch is the set of objects one database has to load, split by object type.
type offsetBatch struct {
	ways  map[datastructure.FileOffset]struct{}
	areas map[datastructure.FileOffset]struct{}
	nodes map[datastructure.FileOffset]struct{}
}

func newOffsetBatch() *offsetBatch {
	return &offsetBatch{
		ways:  make(map[datastructure.FileOffset]struct{}),
		areas: make(map[datastructure.FileOffset]struct{}),
		nodes: make(map[datastructure.FileOffset]struct{}),
	}
}

func (b *offsetBatch) add(ref datastructure.ObjectFileRef) {
	switch ref.Type {
	case datastructure.RefWay:
		b.ways[ref.Offset] = struct{}{}
	case datastructure.RefArea:
		b.areas[ref.Offset] = struct{}{}
	case datastructure.RefNode:
		b.nodes[ref.Offset] = struct{}{}
	}
}

func sortedOffsets(set map[datastructure.FileOffset]struct{}) []datastructure.FileOffset {
	offsets := maps.Keys(set)
	slices.Sort(offsets)
	return offsets
}

type resolvedBatch struct {
	ways  []*datastructure.Way
	areas []*datastructure.Area
	nodes []*datastructure.MapNode
}

// resolve loads every path object and every object touching a route node, one goroutine
// per database, then checks that all node indices point inside their path object.
func (c *resolutionContext) resolve(ctx context.Context, description *RouteDescription) error {
	batches := make(map[datastructure.DatabaseID]*offsetBatch)
	for i := range description.Nodes() {
		node := description.Node(i)
		if !node.HasPathObject() && len(node.Objects) == 0 {
			continue
		}
		if _, ok := c.bundles[node.DatabaseID]; !ok {
			return domain.WrapErrorf(nil, domain.ErrResolution, "node %d refers to unknown database %d", i, node.DatabaseID)
		}
		batch, ok := batches[node.DatabaseID]
		if !ok {
			batch = newOffsetBatch()
			batches[node.DatabaseID] = batch
		}
		if node.HasPathObject() {
			if node.PathObject.IsNode() {
				return domain.WrapErrorf(nil, domain.ErrInternal, "node %d uses %s as path object", i, node.PathObject)
			}
			batch.add(node.PathObject)
		}
		for _, obj := range node.Objects {
			batch.add(obj)
		}
	}

	dbIDs := maps.Keys(batches)
	slices.Sort(dbIDs)
	results := make([]resolvedBatch, len(dbIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, dbID := range dbIDs {
		i, dbID := i, dbID
		g.Go(func() error {
			db := c.bundles[dbID].Database
			batch := batches[dbID]
			var err error
			if results[i].ways, err = db.GetWaysByOffset(gctx, sortedOffsets(batch.ways)); err != nil {
				return domain.WrapErrorf(err, domain.ErrResolution, "cannot retrieve ways of database %d", dbID)
			}
			if results[i].areas, err = db.GetAreasByOffset(gctx, sortedOffsets(batch.areas)); err != nil {
				return domain.WrapErrorf(err, domain.ErrResolution, "cannot retrieve areas of database %d", dbID)
			}
			if results[i].nodes, err = db.GetNodesByOffset(gctx, sortedOffsets(batch.nodes)); err != nil {
				return domain.WrapErrorf(err, domain.ErrResolution, "cannot retrieve nodes of database %d", dbID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, dbID := range dbIDs {
		for _, way := range results[i].ways {
			c.ways[datastructure.NewDBFileOffset(dbID, way.FileOffset)] = way
		}
		for _, area := range results[i].areas {
			c.areas[datastructure.NewDBFileOffset(dbID, area.FileOffset)] = area
		}
		for _, node := range results[i].nodes {
			c.nodes[datastructure.NewDBFileOffset(dbID, node.FileOffset)] = node
		}
	}

	return c.validate(description)
}

func (c *resolutionContext) validate(description *RouteDescription) error {
	for i := range description.Nodes() {
		node := description.Node(i)
		if !node.HasPathObject() {
			continue
		}
		geometry := c.pathGeometry(node)
		if geometry == nil {
			return domain.WrapErrorf(nil, domain.ErrInternal, "path object %s of node %d has no geometry", node.PathObject, i)
		}
		if node.CurrentNodeIndex < 0 || node.CurrentNodeIndex >= len(geometry) {
			return domain.WrapErrorf(nil, domain.ErrInternal, "node %d: current index %d outside of %s with %d nodes",
				i, node.CurrentNodeIndex, node.PathObject, len(geometry))
		}
		if node.TargetNodeIndex < 0 || node.TargetNodeIndex >= len(geometry) {
			return domain.WrapErrorf(nil, domain.ErrInternal, "node %d: target index %d outside of %s with %d nodes",
				i, node.TargetNodeIndex, node.PathObject, len(geometry))
		}
	}
	return nil
}
