package guidance

import (
	"context"

	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geo"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"golang.org/x/exp/slices"
)

// points further away from the route are not reported
const POI_MAX_DISTANCE_METERS = 30.0

// POIsPostprocessor reports the named points of interest next to the route. Every point is
// attached once, to the node whose leaving segment passes closest to it.
type POIsPostprocessor struct{}

func (p *POIsPostprocessor) Name() string { return "POIs" }

type poiHit struct {
	nodeIndex int
	poi       POIAtRoute
}

func (p *POIsPostprocessor) Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error {
	nearest := make(map[datastructure.DBFileOffset]poiHit)
	maxDistance := datastructure.Meters(POI_MAX_DISTANCE_METERS)

	for i := 0; i+1 < description.Len(); i++ {
		node := description.Node(i)
		if !node.HasPathObject() {
			continue
		}
		from := pc.GetCoordinates(node, node.CurrentNodeIndex)
		to := pc.GetCoordinates(node, node.TargetNodeIndex)

		box := orb.Bound{Min: orb.Point{from.Lon, from.Lat}, Max: orb.Point{from.Lon, from.Lat}}.
			Extend(orb.Point{to.Lon, to.Lat})
		candidates, err := pc.GetPOIsInBox(ctx, node.DatabaseID, orbgeo.BoundPad(box, POI_MAX_DISTANCE_METERS))
		if err != nil {
			return err
		}

		for _, candidate := range candidates {
			name := pc.GetMapNodeNameDescription(node.DatabaseID, candidate)
			if !name.HasName() {
				continue
			}
			distance, _ := geo.DistanceToSegment(candidate.Coord, from, to)
			if !distance.Less(maxDistance) {
				continue
			}
			key := datastructure.NewDBFileOffset(node.DatabaseID, candidate.FileOffset)
			if hit, ok := nearest[key]; ok && hit.poi.Meters < distance.AsMeters() {
				continue
			}
			nearest[key] = poiHit{
				nodeIndex: i,
				poi: POIAtRoute{
					DatabaseID: node.DatabaseID,
					Object:     datastructure.NodeRef(candidate.FileOffset),
					Name:       name,
					Meters:     distance.AsMeters(),
				},
			}
		}
	}

	hits := make([]poiHit, 0, len(nearest))
	for _, hit := range nearest {
		hits = append(hits, hit)
	}
	slices.SortFunc(hits, func(a, b poiHit) int {
		switch {
		case a.nodeIndex != b.nodeIndex:
			return a.nodeIndex - b.nodeIndex
		case a.poi.Meters < b.poi.Meters:
			return -1
		case a.poi.Meters > b.poi.Meters:
			return 1
		case a.poi.DatabaseID != b.poi.DatabaseID:
			return int(a.poi.DatabaseID) - int(b.poi.DatabaseID)
		case a.poi.Object.Offset < b.poi.Object.Offset:
			return -1
		case a.poi.Object.Offset > b.poi.Object.Offset:
			return 1
		}
		return 0
	})

	for start := 0; start < len(hits); {
		end := start
		var pois []POIAtRoute
		for end < len(hits) && hits[end].nodeIndex == hits[start].nodeIndex {
			pois = append(pois, hits[end].poi)
			end++
		}
		description.Node(hits[start].nodeIndex).AddDescription(POIAtRouteDescription{POIs: pois})
		start = end
	}
	return nil
}
