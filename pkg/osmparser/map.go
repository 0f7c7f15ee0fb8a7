package osmparser

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"

	"github.com/k0kubun/go-ansi"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Map is everything one import writes into a database.
type Map struct {
	TypeConfig *datastructure.TypeConfig
	Ways       []*datastructure.Way
	Areas      []*datastructure.Area
	Nodes      []*datastructure.MapNode
}

type OsmParser struct {
	tc  *datastructure.TypeConfig
	log *zap.Logger
	out io.Writer
}

type Option func(*OsmParser)

func WithLogger(log *zap.Logger) Option {
	return func(p *OsmParser) {
		p.log = log
	}
}

func WithProgressWriter(w io.Writer) Option {
	return func(p *OsmParser) {
		p.out = w
	}
}

func NewOSMParser(tc *datastructure.TypeConfig, opts ...Option) *OsmParser {
	p := &OsmParser{
		tc:  tc,
		log: zap.NewNop(),
		out: ansi.NewAnsiStdout(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

/*
Parse reads an osm.pbf in two passes:

 1. ways yang dipakai mobil + closed way yang jadi area, catat node id nya
 2. koordinat node yang dicatat + node junction / mini roundabout
*/
func (p *OsmParser) Parse(ctx context.Context, f io.ReadSeeker) (*Map, error) {
	bar := p.newProgressBar("[cyan][1/2][reset] memproses openstreetmap way & node...")

	scanner := osmpbf.New(ctx, f, runtime.GOMAXPROCS(-1))
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	ways := []*osm.Way{}
	wayNodes := make(map[osm.NodeID]struct{})
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		tagMap := way.TagMap()
		if !isOsmWayUsedByCars(tagMap) && !(isClosed(way) && areaTypeName(tagMap) != "") {
			continue
		}
		ways = append(ways, way)
		for _, n := range way.Nodes {
			wayNodes[n.ID] = struct{}{}
		}
		bar.Add(1)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, domain.WrapErrorf(err, domain.ErrBadParamInput, "scan osm ways")
	}
	scanner.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "seek osm file")
	}

	scanner = osmpbf.New(ctx, f, runtime.GOMAXPROCS(-1))
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	nodes := make(map[osm.NodeID]*osm.Node)
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, used := wayNodes[node.ID]; used || nodeTypeName(node.Tags) != "" {
			nodes[node.ID] = node
			bar.Add(1)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrBadParamInput, "scan osm nodes")
	}
	fmt.Fprintln(p.out, "")

	return p.BuildMap(ways, nodes), nil
}

// BuildMap turns osm ways and nodes into map objects. Ways referencing a node that is not in
// nodes are skipped. Objects are ordered by osm id, the osm id is also the file offset.
func (p *OsmParser) BuildMap(ways []*osm.Way, nodes map[osm.NodeID]*osm.Node) *Map {
	m := &Map{TypeConfig: p.tc}
	points := newPointBuilder(nodes)

	sorted := slices.Clone(ways)
	slices.SortFunc(sorted, func(a, b *osm.Way) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	skipped := 0
	for _, way := range sorted {
		wayPoints, ok := points.wayPoints(way)
		if !ok || len(wayPoints) < 2 {
			skipped++
			continue
		}
		tagMap := way.TagMap()

		if isClosed(way) {
			if name := areaTypeName(tagMap); name != "" {
				if t, ok := p.tc.GetTypeInfo(name); ok {
					m.Areas = append(m.Areas, &datastructure.Area{
						FileOffset: datastructure.FileOffset(way.ID),
						Rings: []datastructure.Ring{{
							Features: wayFeatures(t, tagMap),
							Nodes:    wayPoints,
						}},
					})
					continue
				}
			}
		}

		if !isOsmWayUsedByCars(tagMap) {
			continue
		}
		t, ok := p.tc.GetTypeInfo(WayTypeName(tagMap["highway"]))
		if !ok {
			continue
		}
		m.Ways = append(m.Ways, &datastructure.Way{
			FileOffset: datastructure.FileOffset(way.ID),
			Features:   wayFeatures(t, tagMap),
			Nodes:      wayPoints,
		})
	}

	nodeIDs := make([]osm.NodeID, 0, len(nodes))
	for id, n := range nodes {
		if nodeTypeName(n.Tags) != "" {
			nodeIDs = append(nodeIDs, id)
		}
	}
	slices.Sort(nodeIDs)
	for _, id := range nodeIDs {
		n := nodes[id]
		t, ok := p.tc.GetTypeInfo(nodeTypeName(n.Tags))
		if !ok {
			continue
		}
		m.Nodes = append(m.Nodes, &datastructure.MapNode{
			FileOffset: datastructure.FileOffset(id),
			Features:   nodeFeatures(t, n.Tags),
			Coord:      datastructure.NewCoordinate(n.Lat, n.Lon),
		})
	}

	p.log.Info("osm map built",
		zap.Int("ways", len(m.Ways)),
		zap.Int("areas", len(m.Areas)),
		zap.Int("nodes", len(m.Nodes)),
		zap.Int("skipped_ways", skipped))
	return m
}

func isClosed(way *osm.Way) bool {
	return len(way.Nodes) >= 4 && way.Nodes[0].ID == way.Nodes[len(way.Nodes)-1].ID
}

// pointBuilder gives every osm node a point. Different osm nodes on the same coordinate get
// different serials so their ids stay apart.
type pointBuilder struct {
	nodes   map[osm.NodeID]*osm.Node
	serials map[osm.NodeID]uint8
	perHash map[uint64]uint8
}

func newPointBuilder(nodes map[osm.NodeID]*osm.Node) *pointBuilder {
	return &pointBuilder{
		nodes:   nodes,
		serials: make(map[osm.NodeID]uint8),
		perHash: make(map[uint64]uint8),
	}
}

func (b *pointBuilder) point(id osm.NodeID) (datastructure.Point, bool) {
	n, ok := b.nodes[id]
	if !ok {
		return datastructure.Point{}, false
	}
	coord := datastructure.NewCoordinate(n.Lat, n.Lon)
	serial, ok := b.serials[id]
	if !ok {
		hash := coord.Hash()
		serial = b.perHash[hash]
		b.perHash[hash] = serial + 1
		b.serials[id] = serial
	}
	return datastructure.NewPoint(serial, coord), true
}

func (b *pointBuilder) wayPoints(way *osm.Way) ([]datastructure.Point, bool) {
	res := make([]datastructure.Point, 0, len(way.Nodes))
	for _, wn := range way.Nodes {
		p, ok := b.point(wn.ID)
		if !ok {
			return nil, false
		}
		res = append(res, p)
	}
	return res, true
}

func (p *OsmParser) newProgressBar(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(p.out),
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
