package geodata_test

import (
	"context"
	"testing"
	"time"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geodata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTypeConfig() (*datastructure.TypeConfig, *datastructure.TypeInfo, *datastructure.TypeInfo) {
	tc := datastructure.NewTypeConfig()
	primary := datastructure.NewTypeInfo("highway_primary").
		AddFeature(datastructure.FEATURE_ACCESS).
		AddFeature(datastructure.FEATURE_MAX_SPEED)
	primary.CanBeWay = true
	primary.CanRouteCar = true
	tc.RegisterType(primary)

	junction := datastructure.NewTypeInfo("highway_motorway_junction").AddFeature(datastructure.FEATURE_REF)
	junction.CanBeNode = true
	tc.RegisterType(junction)
	return tc, primary, junction
}

func TestMemoryDatabase(t *testing.T) {
	tc, primary, junction := testTypeConfig()
	db := geodata.NewMemoryDatabase(tc)

	way := &datastructure.Way{
		FileOffset: 10,
		Features:   datastructure.NewFeatureValueBuffer(primary),
		Nodes: []datastructure.Point{
			datastructure.NewPoint(0, datastructure.NewCoordinate(50.0, 14.0)),
			datastructure.NewPoint(0, datastructure.NewCoordinate(50.1, 14.0)),
		},
	}
	db.AddWay(way)

	near := &datastructure.MapNode{FileOffset: 2, Features: datastructure.NewFeatureValueBuffer(junction),
		Coord: datastructure.NewCoordinate(50.0, 14.0)}
	far := &datastructure.MapNode{FileOffset: 1, Features: datastructure.NewFeatureValueBuffer(junction),
		Coord: datastructure.NewCoordinate(51.0, 14.0)}
	db.AddNode(near)
	db.AddNode(far)

	ctx := context.Background()

	t.Run("ways by offset", func(t *testing.T) {
		ways, err := db.GetWaysByOffset(ctx, []datastructure.FileOffset{10})
		require.NoError(t, err)
		require.Len(t, ways, 1)
		assert.Same(t, way, ways[0])
	})

	t.Run("missing offset", func(t *testing.T) {
		_, err := db.GetWaysByOffset(ctx, []datastructure.FileOffset{10, 11})
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.ErrNotFound))
	})

	t.Run("nodes in box", func(t *testing.T) {
		types := datastructure.NewTypeInfoSet()
		types.Set(junction)
		nodes, err := db.GetNodesInBox(ctx, geodata.BoxAround(datastructure.NewCoordinate(50.0, 14.0), 1e-7), types)
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, datastructure.FileOffset(2), nodes[0].FileOffset)
	})

	t.Run("nodes in box ordered by offset", func(t *testing.T) {
		nodes, err := db.GetNodesInBox(ctx, geodata.BoxAround(datastructure.NewCoordinate(50.5, 14.0), 1), datastructure.NewTypeInfoSet())
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		assert.Equal(t, datastructure.FileOffset(1), nodes[0].FileOffset)
		assert.Equal(t, datastructure.FileOffset(2), nodes[1].FileOffset)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := db.GetNodesByOffset(canceled, []datastructure.FileOffset{1})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCarProfile(t *testing.T) {
	tc, primary, _ := testTypeConfig()
	profile := geodata.NewCarProfile(tc, map[string]float64{"highway_primary": 60})

	oneway := &datastructure.Way{Features: datastructure.NewFeatureValueBuffer(primary)}
	oneway.Features.Set(datastructure.AccessFeatureValue{Access: datastructure.ACCESS_CAR_FORWARD | datastructure.ACCESS_ONEWAY_FORWARD})
	assert.True(t, profile.CanUseForward(oneway))
	assert.False(t, profile.CanUseBackward(oneway))

	plain := &datastructure.Way{Features: datastructure.NewFeatureValueBuffer(primary)}
	assert.True(t, profile.CanUseForward(plain))
	assert.True(t, profile.CanUseBackward(plain))

	t.Run("type speed", func(t *testing.T) {
		assert.InDelta(t, time.Minute.Seconds(), profile.GetWayTime(plain, datastructure.Kilometers(1)).Seconds(), 1e-6)
	})

	t.Run("max speed feature wins", func(t *testing.T) {
		limited := &datastructure.Way{Features: datastructure.NewFeatureValueBuffer(primary)}
		limited.Features.Set(datastructure.MaxSpeedFeatureValue{MaxSpeed: 30})
		assert.InDelta(t, (2 * time.Minute).Seconds(), profile.GetWayTime(limited, datastructure.Kilometers(1)).Seconds(), 1e-6)
	})
}
