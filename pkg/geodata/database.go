package geodata

import (
	"context"
	"sync"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"

	"github.com/paulmach/orb"
)

// Database is the read side of one map database. Offsets are the keys route nodes refer to.
// The Get*ByOffset methods return the objects in the order of offsets and fail with
// domain.ErrNotFound when any of them is missing.
type Database interface {
	TypeConfig() *datastructure.TypeConfig
	GetWaysByOffset(ctx context.Context, offsets []datastructure.FileOffset) ([]*datastructure.Way, error)
	GetAreasByOffset(ctx context.Context, offsets []datastructure.FileOffset) ([]*datastructure.Area, error)
	GetNodesByOffset(ctx context.Context, offsets []datastructure.FileOffset) ([]*datastructure.MapNode, error)
	// GetNodesInBox returns the nodes of the given types inside box, ordered by file offset.
	GetNodesInBox(ctx context.Context, box orb.Bound, types datastructure.TypeInfoSet) ([]*datastructure.MapNode, error)
}

type MemoryDatabase struct {
	mu         sync.RWMutex
	typeConfig *datastructure.TypeConfig
	ways       map[datastructure.FileOffset]*datastructure.Way
	areas      map[datastructure.FileOffset]*datastructure.Area
	nodes      map[datastructure.FileOffset]*datastructure.MapNode
	nodeIndex  *NodeIndex
}

func NewMemoryDatabase(typeConfig *datastructure.TypeConfig) *MemoryDatabase {
	return &MemoryDatabase{
		typeConfig: typeConfig,
		ways:       make(map[datastructure.FileOffset]*datastructure.Way),
		areas:      make(map[datastructure.FileOffset]*datastructure.Area),
		nodes:      make(map[datastructure.FileOffset]*datastructure.MapNode),
		nodeIndex:  NewNodeIndex(),
	}
}

func (db *MemoryDatabase) TypeConfig() *datastructure.TypeConfig {
	return db.typeConfig
}

func (db *MemoryDatabase) AddWay(way *datastructure.Way) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.ways[way.FileOffset] = way
}

func (db *MemoryDatabase) AddArea(area *datastructure.Area) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.areas[area.FileOffset] = area
}

func (db *MemoryDatabase) AddNode(node *datastructure.MapNode) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nodes[node.FileOffset] = node
	db.nodeIndex.Insert(node)
}

func (db *MemoryDatabase) GetWaysByOffset(ctx context.Context, offsets []datastructure.FileOffset) ([]*datastructure.Way, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return getByOffset(ctx, db.ways, offsets, "way")
}

func (db *MemoryDatabase) GetAreasByOffset(ctx context.Context, offsets []datastructure.FileOffset) ([]*datastructure.Area, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return getByOffset(ctx, db.areas, offsets, "area")
}

func (db *MemoryDatabase) GetNodesByOffset(ctx context.Context, offsets []datastructure.FileOffset) ([]*datastructure.MapNode, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return getByOffset(ctx, db.nodes, offsets, "node")
}

func (db *MemoryDatabase) GetNodesInBox(ctx context.Context, box orb.Bound, types datastructure.TypeInfoSet) ([]*datastructure.MapNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.nodeIndex.Search(box, types)
}

func getByOffset[T any](ctx context.Context, objects map[datastructure.FileOffset]*T, offsets []datastructure.FileOffset,
	kind string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := make([]*T, 0, len(offsets))
	for _, offset := range offsets {
		obj, ok := objects[offset]
		if !ok {
			return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "%s at offset %d not found", kind, offset)
		}
		res = append(res, obj)
	}
	return res, nil
}
