package guidance_test

import (
	"testing"

	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/guidance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var instructionPipeline = []string{"WayName", "CrossingWays", "Direction", "Instruction"}

func countKind(d *guidance.RouteDescription, kind guidance.DescriptionKind) int {
	n := 0
	for i := range d.Nodes() {
		if d.Node(i).HasDescription(kind) {
			n++
		}
	}
	return n
}

func TestMotorwayEnterAndLeave(t *testing.T) {
	m := newTestMap()
	street := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.0, 14.000), c(50.0, 14.001)}, named("Main"), withAccess(carBothWays))
	motorway := m.addWay(MOTORWAY_TYPE, []datastructure.Coordinate{c(50.0, 14.001), c(50.0, 14.002)}, withRef("D1"), withAccess(carOneway))
	street2 := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.0, 14.002), c(50.0, 14.003)}, named("Side"), withAccess(carBothWays))
	street3 := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.0, 14.003), c(50.0, 14.004)}, named("Side"), withAccess(carBothWays))

	t.Run("enter", func(t *testing.T) {
		d := route(
			routeNode{0, refs(street), street, 1},
			routeNode{0, refs(street, motorway), motorway, 1},
			routeNode{1, refs(motorway), noPath, 0},
		)
		m.mustRun(t, d, instructionPipeline...)

		enter, ok := guidance.DescriptionOf[guidance.MotorwayEnterDescription](d.Node(1))
		require.True(t, ok)
		require.NotNil(t, enter.To)
		assert.Equal(t, "D1", enter.To.Ref)
		assert.Equal(t, 1, countKind(d, guidance.MOTORWAY_ENTER_DESC))
	})

	t.Run("leave exactly once", func(t *testing.T) {
		d := route(
			routeNode{0, refs(motorway), motorway, 1},
			routeNode{0, refs(motorway, street2), street2, 1},
			routeNode{0, refs(street2, street3), street3, 1},
			routeNode{1, refs(street3), noPath, 0},
		)
		m.mustRun(t, d, instructionPipeline...)

		leave, ok := guidance.DescriptionOf[guidance.MotorwayLeaveDescription](d.Node(1))
		require.True(t, ok)
		require.NotNil(t, leave.From)
		assert.Equal(t, "D1", leave.From.Ref)
		assert.Equal(t, 1, countKind(d, guidance.MOTORWAY_LEAVE_DESC))
		assert.Equal(t, 0, countKind(d, guidance.WAY_NAME_CHANGED_DESC))
	})
}

func TestMotorwayChangeViaLink(t *testing.T) {
	m := newTestMap()
	a := m.addWay(MOTORWAY_TYPE, []datastructure.Coordinate{c(50.0, 14.000), c(50.0, 14.001)}, withRef("D1"), withAccess(carOneway))
	link := m.addWay(LINK_TYPE, []datastructure.Coordinate{c(50.0, 14.001), c(50.0005, 14.002), c(50.001, 14.003)}, withAccess(carOneway))
	b := m.addWay(MOTORWAY_TYPE, []datastructure.Coordinate{c(50.001, 14.003), c(50.002, 14.003)}, withRef("D0"), withAccess(carOneway))

	d := route(
		routeNode{0, refs(a), a, 1},
		routeNode{0, refs(a, link), link, 1},
		routeNode{1, refs(link), link, 2},
		routeNode{0, refs(link, b), b, 1},
		routeNode{1, refs(b), noPath, 0},
	)
	m.mustRun(t, d, instructionPipeline...)

	change, ok := guidance.DescriptionOf[guidance.MotorwayChangeDescription](d.Node(1))
	require.True(t, ok)
	require.NotNil(t, change.From)
	require.NotNil(t, change.To)
	assert.Equal(t, "D1", change.From.Ref)
	assert.Equal(t, "D0", change.To.Ref)

	assert.Equal(t, 1, countKind(d, guidance.MOTORWAY_CHANGE_DESC))
	assert.Equal(t, 0, countKind(d, guidance.MOTORWAY_ENTER_DESC))
	assert.Equal(t, 0, countKind(d, guidance.MOTORWAY_LEAVE_DESC))
}

func TestMotorwayEnterViaLink(t *testing.T) {
	m := newTestMap()
	street := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.0, 14.000), c(50.0, 14.001)}, named("Main"), withAccess(carBothWays))
	link := m.addWay(LINK_TYPE, []datastructure.Coordinate{c(50.0, 14.001), c(50.001, 14.002)}, withAccess(carOneway))
	motorway := m.addWay(MOTORWAY_TYPE, []datastructure.Coordinate{c(50.001, 14.002), c(50.002, 14.002)}, withRef("D1"), withAccess(carOneway))

	d := route(
		routeNode{0, refs(street), street, 1},
		routeNode{0, refs(street, link), link, 1},
		routeNode{0, refs(link, motorway), motorway, 1},
		routeNode{1, refs(motorway), noPath, 0},
	)
	m.mustRun(t, d, instructionPipeline...)

	enter, ok := guidance.DescriptionOf[guidance.MotorwayEnterDescription](d.Node(1))
	require.True(t, ok)
	require.NotNil(t, enter.To)
	assert.Equal(t, "D1", enter.To.Ref)
	assert.Equal(t, 1, countKind(d, guidance.MOTORWAY_ENTER_DESC))
}

func TestRoundabout(t *testing.T) {
	m := newTestMap()
	r0, r1, r2, r3 := c(50.0000, 14.0000), c(50.0002, 14.0003), c(50.0004, 14.0000), c(50.0002, 13.9997)
	ring := m.addWay(STREET_TYPE, []datastructure.Coordinate{r0, r1, r2, r3, r0},
		withAccess(carOneway), withFlag(datastructure.RoundaboutFeatureValue{}))
	entry := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(49.9990, 14.0000), r0}, named("South"), withAccess(carBothWays))
	side := m.addWay(STREET_TYPE, []datastructure.Coordinate{r1, c(50.0002, 14.0013)}, named("East"), withAccess(carBothWays))
	exit := m.addWay(STREET_TYPE, []datastructure.Coordinate{r2, c(50.0014, 14.0000)}, named("North"), withAccess(carBothWays))

	d := route(
		routeNode{0, refs(entry), entry, 1},
		routeNode{0, refs(entry, ring), ring, 1},
		routeNode{1, refs(ring, side), ring, 2},
		routeNode{2, refs(ring, exit), exit, 1},
		routeNode{1, refs(exit), noPath, 0},
	)
	m.mustRun(t, d, instructionPipeline...)

	enter, ok := guidance.DescriptionOf[guidance.RoundaboutEnterDescription](d.Node(1))
	require.True(t, ok)
	assert.False(t, enter.Clockwise)

	// every roundabout node adds its exits minus the roundabout itself
	expected := 0
	for _, i := range []int{2, 3} {
		crossing, ok := d.Node(i).CrossingWays()
		require.True(t, ok)
		assert.Equal(t, 2, crossing.ExitCount)
		expected += crossing.ExitCount - 1
	}

	leave, ok := guidance.DescriptionOf[guidance.RoundaboutLeaveDescription](d.Node(3))
	require.True(t, ok)
	assert.Equal(t, expected, leave.ExitCount)
	assert.False(t, leave.Clockwise)

	assert.Equal(t, 1, countKind(d, guidance.ROUNDABOUT_ENTER_DESC))
	assert.Equal(t, 1, countKind(d, guidance.ROUNDABOUT_LEAVE_DESC))
	assert.Equal(t, 0, countKind(d, guidance.TURN_DESC))
}

func TestMiniRoundabout(t *testing.T) {
	m := newTestMap()
	j := c(50.0, 14.0)
	south := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(49.999, 14.0), j}, named("South"), withAccess(carBothWays))
	north := m.addWay(STREET_TYPE, []datastructure.Coordinate{j, c(50.001, 14.0)}, named("North"), withAccess(carBothWays))
	east := m.addWay(STREET_TYPE, []datastructure.Coordinate{j, c(50.0, 14.001)}, named("East"), withAccess(carBothWays))
	west := m.addWay(STREET_TYPE, []datastructure.Coordinate{j, c(50.0, 13.999)}, named("West"), withAccess(carBothWays))
	mini := m.addNode(MINI_ROUNDABOUT_TYPE, j)
	miniClockwise := m.addNode(MINI_ROUNDABOUT_TYPE, j, datastructure.ClockwiseDirectionFeatureValue{})

	cases := []struct {
		name      string
		node      datastructure.ObjectFileRef
		exit      datastructure.ObjectFileRef
		clockwise bool
		exitCount int
	}{
		{"first exit", mini, east, false, 1},
		{"straight across", mini, north, false, 2},
		{"third exit clockwise", miniClockwise, east, true, 3},
		{"first exit clockwise", miniClockwise, west, true, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := route(
				routeNode{0, refs(south), south, 1},
				routeNode{0, refs(south, north, east, west, tc.node), tc.exit, 1},
				routeNode{1, refs(tc.exit), noPath, 0},
			)
			m.mustRun(t, d, instructionPipeline...)

			enter, ok := guidance.DescriptionOf[guidance.RoundaboutEnterDescription](d.Node(1))
			require.True(t, ok)
			assert.Equal(t, tc.clockwise, enter.Clockwise)

			leave, ok := guidance.DescriptionOf[guidance.RoundaboutLeaveDescription](d.Node(1))
			require.True(t, ok)
			assert.Equal(t, tc.exitCount, leave.ExitCount)
			assert.Equal(t, tc.clockwise, leave.Clockwise)
			assert.False(t, d.Node(1).HasDescription(guidance.TURN_DESC))
		})
	}
}

// a mini-roundabout node sitting where the route turns onto a roundabout way
func TestMiniRoundaboutOnRoundaboutWay(t *testing.T) {
	m := newTestMap()
	r0, r1, r2, r3 := c(50.0000, 14.0000), c(50.0002, 14.0003), c(50.0004, 14.0000), c(50.0002, 13.9997)
	ring := m.addWay(STREET_TYPE, []datastructure.Coordinate{r0, r1, r2, r3, r0},
		withAccess(carOneway), withFlag(datastructure.RoundaboutFeatureValue{}))
	entry := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(49.9990, 14.0000), r0}, named("South"), withAccess(carBothWays))
	exit := m.addWay(STREET_TYPE, []datastructure.Coordinate{r2, c(50.0014, 14.0000)}, named("North"), withAccess(carBothWays))
	mini := m.addNode(MINI_ROUNDABOUT_TYPE, r0)

	d := route(
		routeNode{0, refs(entry), entry, 1},
		routeNode{0, refs(entry, ring, mini), ring, 1},
		routeNode{1, refs(ring), ring, 2},
		routeNode{2, refs(ring, exit), exit, 1},
		routeNode{1, refs(exit), noPath, 0},
	)
	m.mustRun(t, d, instructionPipeline...)

	assert.True(t, d.Node(1).HasDescription(guidance.ROUNDABOUT_ENTER_DESC))
	assert.False(t, d.Node(2).HasDescription(guidance.ROUNDABOUT_ENTER_DESC))
	assert.Equal(t, 1, countKind(d, guidance.ROUNDABOUT_ENTER_DESC))
	assert.True(t, d.Node(3).HasDescription(guidance.ROUNDABOUT_LEAVE_DESC))
}

func TestNameChange(t *testing.T) {
	cases := []struct {
		name     string
		from, to guidance.NameDescription
		changed  bool
	}{
		{"same road", guidance.NewNameDescription("Main", "7"), guidance.NewNameDescription("Main", "7"), false},
		{"name appears", guidance.NewNameDescription("", "7"), guidance.NewNameDescription("Main", "7"), false},
		{"name disappears", guidance.NewNameDescription("Main", "7"), guidance.NewNameDescription("", "7"), false},
		{"ref changes", guidance.NewNameDescription("Main", "7"), guidance.NewNameDescription("Main", "8"), false},
		{"different road", guidance.NewNameDescription("Main", ""), guidance.NewNameDescription("Park", ""), true},
		{"different ref", guidance.NewNameDescription("", "7"), guidance.NewNameDescription("", "8"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMap()
			first := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.0, 14.000), c(50.0, 14.001)},
				named(tc.from.Name), withRef(tc.from.Ref), withAccess(carBothWays))
			second := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.0, 14.001), c(50.0, 14.002)},
				named(tc.to.Name), withRef(tc.to.Ref), withAccess(carBothWays))
			d := route(
				routeNode{0, refs(first), first, 1},
				routeNode{0, refs(first, second), second, 1},
				routeNode{1, refs(second), noPath, 0},
			)
			m.mustRun(t, d, instructionPipeline...)

			changed, ok := guidance.DescriptionOf[guidance.NameChangedDescription](d.Node(1))
			assert.Equal(t, tc.changed, ok)
			if ok {
				assert.Equal(t, tc.from, changed.Origin)
				assert.Equal(t, tc.to, changed.Target)
			}
		})
	}
}

func TestTurnAtCrossing(t *testing.T) {
	m := newTestMap()
	j := c(50.0, 14.0)
	south := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(49.999, 14.0), j}, named("Main"), withAccess(carBothWays))
	north := m.addWay(STREET_TYPE, []datastructure.Coordinate{j, c(50.001, 14.0)}, named("Main"), withAccess(carBothWays))
	east := m.addWay(STREET_TYPE, []datastructure.Coordinate{j, c(50.0, 14.001)}, named("East"), withAccess(carBothWays))

	t.Run("turn off the road", func(t *testing.T) {
		d := route(
			routeNode{0, refs(south), south, 1},
			routeNode{0, refs(south, north, east), east, 1},
			routeNode{1, refs(east), noPath, 0},
		)
		m.mustRun(t, d, instructionPipeline...)

		direction, ok := d.Node(1).Direction()
		require.True(t, ok)
		assert.Equal(t, guidance.RIGHT, direction.Turn)
		assert.True(t, d.Node(1).HasDescription(guidance.TURN_DESC))
		assert.False(t, d.Node(1).HasDescription(guidance.WAY_NAME_CHANGED_DESC))
	})

	t.Run("straight on", func(t *testing.T) {
		d := route(
			routeNode{0, refs(south), south, 1},
			routeNode{0, refs(south, north, east), north, 1},
			routeNode{1, refs(north), noPath, 0},
		)
		m.mustRun(t, d, instructionPipeline...)
		assert.False(t, d.Node(1).HasDescription(guidance.TURN_DESC))
		assert.False(t, d.Node(1).HasDescription(guidance.WAY_NAME_CHANGED_DESC))
	})
}
