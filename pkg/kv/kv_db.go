package kv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/concurrent"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geo"

	"github.com/cockroachdb/pebble"
	"github.com/k0kubun/go-ansi"
	"github.com/paulmach/orb"
	"github.com/schollz/progressbar/v3"
	"github.com/uber/h3-go/v4"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const (
	H3_RESOLUTION = 9

	typeConfigKey = "cfg/types"
	wayPrefix     = "w/"
	areaPrefix    = "a/"
	nodePrefix    = "n/"
	cellPrefix    = "h/"
)

/*
KVDB is the pebble backed map database.

	cfg/types                 -> type config
	w/<offset>                -> way
	a/<offset>                -> area
	n/<offset>                -> node
	h/<h3 cell>/<offset>      -> kosong, bucket node per h3 cell buat GetNodesInBox

offset big endian 8 byte, value di encode pakai kelindar/binary lalu di compress zstd.
*/
type KVDB struct {
	db     *pebble.DB
	log    *zap.Logger
	mu     sync.RWMutex
	tc     *datastructure.TypeConfig
	out    io.Writer
	worker int
}

type Option func(*KVDB)

func WithLogger(log *zap.Logger) Option {
	return func(k *KVDB) {
		k.log = log
	}
}

// WithProgressWriter sets where import progress bars are drawn, stdout by default.
func WithProgressWriter(w io.Writer) Option {
	return func(k *KVDB) {
		k.out = w
	}
}

func WithWorkers(n int) Option {
	return func(k *KVDB) {
		k.worker = n
	}
}

// NewKVDB wraps an open pebble db. The type config is loaded when one was imported before.
func NewKVDB(db *pebble.DB, opts ...Option) (*KVDB, error) {
	k := &KVDB{
		db:     db,
		log:    zap.NewNop(),
		out:    ansi.NewAnsiStdout(),
		worker: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(k)
	}

	val, closer, err := db.Get([]byte(typeConfigKey))
	if errors.Is(err, pebble.ErrNotFound) {
		k.tc = datastructure.NewTypeConfig()
		return k, nil
	}
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "read type config")
	}
	defer closer.Close()
	tc, err := DecodeTypeConfig(val)
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "decode type config")
	}
	k.tc = tc
	return k, nil
}

func (k *KVDB) TypeConfig() *datastructure.TypeConfig {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.tc
}

func offsetKey(prefix string, offset datastructure.FileOffset) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], uint64(offset))
	return key
}

func cellKey(cell h3.Cell, offset datastructure.FileOffset) []byte {
	return offsetKey(cellPrefixOf(cell), offset)
}

func cellPrefixOf(cell h3.Cell) string {
	return cellPrefix + cell.String() + "/"
}

func cellOf(coord datastructure.Coordinate) h3.Cell {
	return h3.LatLngToCell(h3.NewLatLng(coord.Lat, coord.Lon), H3_RESOLUTION)
}

func (k *KVDB) get(ctx context.Context, key []byte, kind string, offset datastructure.FileOffset) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, closer, err := k.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, domain.WrapErrorf(nil, domain.ErrNotFound, "%s at offset %d not found", kind, offset)
	}
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "read %s at offset %d", kind, offset)
	}
	defer closer.Close()
	return slices.Clone(val), nil
}

func (k *KVDB) GetWaysByOffset(ctx context.Context, offsets []datastructure.FileOffset) ([]*datastructure.Way, error) {
	tc := k.TypeConfig()
	ways := make([]*datastructure.Way, 0, len(offsets))
	for _, offset := range offsets {
		val, err := k.get(ctx, offsetKey(wayPrefix, offset), "way", offset)
		if err != nil {
			return nil, err
		}
		way, err := DecodeWay(tc, offset, val)
		if err != nil {
			return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "decode way at offset %d", offset)
		}
		ways = append(ways, way)
	}
	return ways, nil
}

func (k *KVDB) GetAreasByOffset(ctx context.Context, offsets []datastructure.FileOffset) ([]*datastructure.Area, error) {
	tc := k.TypeConfig()
	areas := make([]*datastructure.Area, 0, len(offsets))
	for _, offset := range offsets {
		val, err := k.get(ctx, offsetKey(areaPrefix, offset), "area", offset)
		if err != nil {
			return nil, err
		}
		area, err := DecodeArea(tc, offset, val)
		if err != nil {
			return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "decode area at offset %d", offset)
		}
		areas = append(areas, area)
	}
	return areas, nil
}

func (k *KVDB) GetNodesByOffset(ctx context.Context, offsets []datastructure.FileOffset) ([]*datastructure.MapNode, error) {
	tc := k.TypeConfig()
	nodes := make([]*datastructure.MapNode, 0, len(offsets))
	for _, offset := range offsets {
		val, err := k.get(ctx, offsetKey(nodePrefix, offset), "node", offset)
		if err != nil {
			return nil, err
		}
		node, err := DecodeNode(tc, offset, val)
		if err != nil {
			return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "decode node at offset %d", offset)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// GetNodesInBox scans the h3 buckets around the box center and keeps the nodes of the given
// types inside box. An empty type set matches every node.
func (k *KVDB) GetNodesInBox(ctx context.Context, box orb.Bound, types datastructure.TypeInfoSet) ([]*datastructure.MapNode, error) {
	center := box.Center()
	centerCoord := datastructure.NewCoordinate(center[1], center[0])
	corner := datastructure.NewCoordinate(box.Max[1], box.Max[0])
	radiusKm := geo.EllipsoidalDistance(centerCoord, corner).AsKilometers()

	seen := make(map[datastructure.FileOffset]struct{})
	var offsets []datastructure.FileOffset
	for _, cell := range kRingIndexesArea(centerCoord.Lat, centerCoord.Lon, radiusKm) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prefix := []byte(cellPrefixOf(cell))
		iter, err := k.db.NewIter(&pebble.IterOptions{
			LowerBound: prefix,
			UpperBound: prefixUpperBound(prefix),
		})
		if err != nil {
			return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "scan cell %s", cell)
		}
		for iter.First(); iter.Valid(); iter.Next() {
			key := iter.Key()
			offset := datastructure.FileOffset(binary.BigEndian.Uint64(key[len(key)-8:]))
			if _, ok := seen[offset]; ok {
				continue
			}
			seen[offset] = struct{}{}
			offsets = append(offsets, offset)
		}
		if err := iter.Close(); err != nil {
			return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "scan cell %s", cell)
		}
	}
	slices.Sort(offsets)

	nodes, err := k.GetNodesByOffset(ctx, offsets)
	if err != nil {
		return nil, err
	}
	res := nodes[:0]
	for _, n := range nodes {
		if !types.Empty() && !types.IsSet(n.Type()) {
			continue
		}
		if !box.Contains(orb.Point{n.Coord.Lon, n.Coord.Lat}) {
			continue
		}
		res = append(res, n)
	}
	return res, nil
}

func prefixUpperBound(prefix []byte) []byte {
	upper := slices.Clone(prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}
	return nil
}

/*
*
  - https://observablehq.com/@nrabinowitz/h3-radius-lookup?collection=@nrabinowitz/h3
    search cell neighbor dari cell dari lat,lon  yang radius nya = searchRadiusKm.
    Ditambah satu ring supaya box yang nempel di pinggir cell tetap ke-cover.
*/
func kRingIndexesArea(lat, lon, searchRadiusKm float64) []h3.Cell {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), H3_RESOLUTION)
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea

	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}

	return h3.GridDisk(origin, radius+1)
}

// ImportMap writes the type config and all objects. Encoding runs on a worker pool, the
// encoded values are written in one pebble batch.
func (k *KVDB) ImportMap(ctx context.Context, tc *datastructure.TypeConfig, ways []*datastructure.Way,
	areas []*datastructure.Area, nodes []*datastructure.MapNode) error {
	tcVal, err := EncodeTypeConfig(tc)
	if err != nil {
		return domain.WrapErrorf(err, domain.ErrInternalServerError, "encode type config")
	}

	total := len(ways) + len(areas) + len(nodes)
	bar := k.newProgressBar(total, "[cyan][2/2][reset] saving map objects to pebble db...")

	workers := concurrent.NewWorkerPool[concurrent.SaveObjectJobItem, concurrent.KeyValue](k.worker, total)
	for _, w := range ways {
		workers.AddJob(concurrent.SaveObjectJobItem{Key: offsetKey(wayPrefix, w.FileOffset), Way: w})
	}
	for _, a := range areas {
		workers.AddJob(concurrent.SaveObjectJobItem{Key: offsetKey(areaPrefix, a.FileOffset), Area: a})
	}
	for _, n := range nodes {
		workers.AddJob(concurrent.SaveObjectJobItem{Key: offsetKey(nodePrefix, n.FileOffset), Node: n})
	}
	workers.Close()

	workers.Start(encodeObject)
	workers.Wait()

	batch := k.db.NewBatch()
	defer batch.Close()

	if err := batch.Set([]byte(typeConfigKey), tcVal, nil); err != nil {
		return domain.WrapErrorf(err, domain.ErrInternalServerError, "write type config")
	}
	for res := range workers.CollectResults() {
		if res.Err != nil {
			return domain.WrapErrorf(res.Err, domain.ErrInternalServerError, "encode object %x", res.Key)
		}
		if err := batch.Set(res.Key, res.Value, nil); err != nil {
			return domain.WrapErrorf(err, domain.ErrInternalServerError, "write object %x", res.Key)
		}
		bar.Add(1)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, n := range nodes {
		if err := batch.Set(cellKey(cellOf(n.Coord), n.FileOffset), nil, nil); err != nil {
			return domain.WrapErrorf(err, domain.ErrInternalServerError, "write node cell")
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return domain.WrapErrorf(err, domain.ErrInternalServerError, "commit import")
	}
	fmt.Fprintln(k.out, "")

	k.mu.Lock()
	k.tc = tc
	k.mu.Unlock()

	k.log.Info("map imported",
		zap.Int("ways", len(ways)),
		zap.Int("areas", len(areas)),
		zap.Int("nodes", len(nodes)),
		zap.Int("types", len(tc.Types())))
	return nil
}

func encodeObject(job concurrent.SaveObjectJobItem) concurrent.KeyValue {
	var (
		val []byte
		err error
	)
	switch {
	case job.Way != nil:
		val, err = EncodeWay(job.Way)
	case job.Area != nil:
		val, err = EncodeArea(job.Area)
	case job.Node != nil:
		val, err = EncodeNode(job.Node)
	default:
		err = fmt.Errorf("empty job item")
	}
	return concurrent.KeyValue{Key: job.Key, Value: val, Err: err}
}

func (k *KVDB) newProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(k.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func (k *KVDB) Close() error {
	return k.db.Close()
}
