package guidance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geodata"
	"lintang/routedescription/pkg/guidance"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingObserver struct {
	stages   []string
	failed   []string
	routeErr error
	routes   int
}

func (o *recordingObserver) StageDone(name string, elapsed time.Duration, err error) {
	o.stages = append(o.stages, name)
	if err != nil {
		o.failed = append(o.failed, name)
	}
}

func (o *recordingObserver) RouteDone(description *guidance.RouteDescription, err error) {
	o.routes++
	o.routeErr = err
}

type failingPostprocessor struct {
	err error
}

func (p failingPostprocessor) Name() string { return "Failing" }

func (p failingPostprocessor) Process(ctx context.Context, pc guidance.PostprocessorContext, description *guidance.RouteDescription) error {
	return p.err
}

func simpleRoute(m *testMap) *guidance.RouteDescription {
	w := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.0, 14.0), c(50.001, 14.0)}, named("Main"), withAccess(carBothWays))
	return route(
		routeNode{0, refs(w), w, 1},
		routeNode{1, refs(w), noPath, 0},
	)
}

func TestPostprocessRouteDescriptionErrors(t *testing.T) {
	t.Run("missing object", func(t *testing.T) {
		m := newTestMap()
		missing := datastructure.WayRef(999)
		d := route(
			routeNode{0, refs(missing), missing, 1},
			routeNode{1, refs(missing), noPath, 0},
		)
		err := m.run(d, guidance.DefaultPostprocessors("start", "target"))
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.ErrResolution))
		assert.True(t, domain.IsCode(err, domain.ErrNotFound))
	})

	t.Run("unknown database", func(t *testing.T) {
		m := newTestMap()
		w := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.0, 14.0), c(50.001, 14.0)}, withAccess(carBothWays))
		d := guidance.NewRouteDescription()
		d.AddNode(7, 0, refs(w), w, 1)
		err := m.run(d, nil)
		assert.True(t, domain.IsCode(err, domain.ErrResolution))
	})

	t.Run("missing profile", func(t *testing.T) {
		m := newTestMap()
		d := simpleRoute(m)
		err := guidance.PostprocessRouteDescription(context.Background(), d,
			map[datastructure.DatabaseID]geodata.RoutingProfile{},
			map[datastructure.DatabaseID]geodata.Database{0: m.db},
			nil, nil, nil, nil)
		assert.True(t, domain.IsCode(err, domain.ErrResolution))
	})

	t.Run("node index outside the path object", func(t *testing.T) {
		m := newTestMap()
		w := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.0, 14.0), c(50.001, 14.0)}, withAccess(carBothWays))
		d := route(
			routeNode{0, refs(w), w, 5},
			routeNode{1, refs(w), noPath, 0},
		)
		err := m.run(d, nil)
		assert.True(t, domain.IsCode(err, domain.ErrInternal))
	})

	t.Run("map node as path object", func(t *testing.T) {
		m := newTestMap()
		n := m.addNode(JUNCTION_TYPE, c(50.0, 14.0))
		d := route(
			routeNode{0, refs(n), n, 0},
		)
		err := m.run(d, nil)
		assert.True(t, domain.IsCode(err, domain.ErrInternal))
	})

	t.Run("failing stage", func(t *testing.T) {
		m := newTestMap()
		d := simpleRoute(m)
		boom := errors.New("boom")
		observer := &recordingObserver{}
		err := m.run(d, []guidance.Postprocessor{
			guidance.NewStartPostprocessor("start"),
			failingPostprocessor{err: boom},
			guidance.NewTargetPostprocessor("target"),
		}, guidance.WithStageObserver(observer))

		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.ErrPostprocessor))
		assert.ErrorIs(t, err, boom)

		var stageErr *guidance.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, 2, stageErr.Index)
		assert.Equal(t, "Failing", stageErr.Name)

		assert.Equal(t, []string{"Start", "Failing"}, observer.stages)
		assert.Equal(t, []string{"Failing"}, observer.failed)
		assert.Equal(t, 1, observer.routes)
		assert.ErrorIs(t, observer.routeErr, boom)
		// output of the stages before the failure is rolled back
		assert.False(t, d.Node(0).HasDescription(guidance.START_DESC))
		assert.False(t, d.Node(1).HasDescription(guidance.TARGET_DESC))
	})

	t.Run("failed run keeps earlier output", func(t *testing.T) {
		m := newTestMap()
		d := simpleRoute(m)
		m.mustRun(t, d, "Start")
		before := snapshot(d)

		err := m.run(d, []guidance.Postprocessor{
			&guidance.DistanceAndTimePostprocessor{},
			&guidance.WayNamePostprocessor{},
			guidance.NewTargetPostprocessor("target"),
			failingPostprocessor{err: errors.New("boom")},
		})
		require.Error(t, err)

		if diff := cmp.Diff(before, snapshot(d)); diff != "" {
			t.Errorf("description changed by failed run (-before +after):\n%s", diff)
		}
		assert.True(t, d.Node(0).HasDescription(guidance.START_DESC))
		assert.False(t, d.Node(0).HasDescription(guidance.WAY_NAME_DESC))
		assert.Equal(t, datastructure.Coordinate{}, d.Node(1).Location)
	})

	t.Run("canceled", func(t *testing.T) {
		m := newTestMap()
		d := simpleRoute(m)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := guidance.PostprocessRouteDescription(ctx, d,
			map[datastructure.DatabaseID]geodata.RoutingProfile{0: geodata.NewCarProfile(m.tc, nil)},
			map[datastructure.DatabaseID]geodata.Database{0: m.db},
			guidance.DefaultPostprocessors("start", "target"), nil, nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPostprocessRouteDescriptionObserver(t *testing.T) {
	m := newTestMap()
	d := simpleRoute(m)
	observer := &recordingObserver{}
	err := m.run(d, guidance.DefaultPostprocessors("start", "target"),
		guidance.WithStageObserver(observer), guidance.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, guidance.DEFAULT_POSTPROCESSORS, observer.stages)
	assert.Empty(t, observer.failed)
	assert.Equal(t, 1, observer.routes)
	assert.NoError(t, observer.routeErr)
}

type nodeSnapshot struct {
	Meters       float64
	Time         time.Duration
	Descriptions []guidance.Description
}

func snapshot(d *guidance.RouteDescription) []nodeSnapshot {
	res := make([]nodeSnapshot, 0, d.Len())
	for i := range d.Nodes() {
		node := d.Node(i)
		res = append(res, nodeSnapshot{
			Meters:       node.Distance.AsMeters(),
			Time:         node.Time,
			Descriptions: node.Descriptions(),
		})
	}
	return res
}

// junctionRoute drives along Main, crosses East and ends on a motorway through a link.
func junctionRoute(m *testMap) *guidance.RouteDescription {
	j := c(50.0, 14.0)
	south := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(49.999, 14.0), j}, named("Main"), withAccess(carBothWays),
		withLanes(2, 1, nil, nil))
	north := m.addWay(STREET_TYPE, []datastructure.Coordinate{j, c(50.001, 14.0)}, named("Main"), withAccess(carBothWays))
	east := m.addWay(STREET_TYPE, []datastructure.Coordinate{j, c(50.0, 14.001)}, named("East"), withAccess(carBothWays))
	link := m.addWay(LINK_TYPE, []datastructure.Coordinate{c(50.001, 14.0), c(50.002, 14.0005)}, withAccess(carOneway))
	motorway := m.addWay(MOTORWAY_TYPE, []datastructure.Coordinate{c(50.002, 14.0005), c(50.003, 14.001)}, withRef("D1"),
		withAccess(carOneway))

	return route(
		routeNode{0, refs(south), south, 1},
		routeNode{0, refs(south, north, east), north, 1},
		routeNode{0, refs(north, link), link, 1},
		routeNode{0, refs(link, motorway), motorway, 1},
		routeNode{1, refs(motorway), noPath, 0},
	)
}

func TestPostprocessRouteDescriptionDeterministic(t *testing.T) {
	m := newTestMap()
	first := junctionRoute(m)
	second := junctionRoute(m)

	require.NoError(t, m.run(first, guidance.DefaultPostprocessors("start", "target")))
	require.NoError(t, m.run(second, guidance.DefaultPostprocessors("start", "target")))

	if diff := cmp.Diff(snapshot(first), snapshot(second)); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}

	for i := 1; i < first.Len(); i++ {
		assert.False(t, first.Node(i).Distance.Less(first.Node(i-1).Distance))
	}
	assert.True(t, first.Node(0).HasDescription(guidance.START_DESC))
	assert.True(t, first.Node(first.Len()-1).HasDescription(guidance.TARGET_DESC))
	assert.True(t, first.Node(2).HasDescription(guidance.MOTORWAY_ENTER_DESC))

	// running again on a cleared description gives the same result
	before := snapshot(first)
	first.Clear()
	assert.Empty(t, first.Node(0).Descriptions())
	require.NoError(t, m.run(first, guidance.DefaultPostprocessors("start", "target")))
	if diff := cmp.Diff(before, snapshot(first)); diff != "" {
		t.Errorf("rerun differs (-before +after):\n%s", diff)
	}
}

func TestRegistry(t *testing.T) {
	_, err := guidance.NewPostprocessors([]string{"WayName", "Teleport"}, "", "")
	assert.True(t, domain.IsCode(err, domain.ErrBadParamInput))

	postprocessors := guidance.DefaultPostprocessors("start", "target")
	require.Len(t, postprocessors, len(guidance.DEFAULT_POSTPROCESSORS))
	for i, p := range postprocessors {
		assert.Equal(t, guidance.DEFAULT_POSTPROCESSORS[i], p.Name())
	}
}

func TestDescriptionKinds(t *testing.T) {
	kinds := guidance.AllDescriptionKinds()
	require.Len(t, kinds, 20)
	assert.Equal(t, guidance.START_DESC, kinds[0])
	assert.Equal(t, guidance.LANES_DESC, kinds[17])
	assert.Equal(t, guidance.POI_AT_ROUTE_DESC, kinds[len(kinds)-1])

	for _, k := range kinds {
		parsed, ok := guidance.ParseDescriptionKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}
	_, ok := guidance.ParseDescriptionKind("Teleport")
	assert.False(t, ok)
	assert.Equal(t, "DescriptionKind(200)", guidance.DescriptionKind(200).String())
}
