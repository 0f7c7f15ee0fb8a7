package osmparser

import (
	"testing"

	"lintang/routedescription/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

func TestParseMaxSpeed(t *testing.T) {
	cases := map[string]uint8{
		"50":       50,
		"50 km/h":  50,
		"30 mph":   48,
		"none":     0,
		"":         0,
		"-10":      0,
		"1000":     255,
		"RO:urban": 0,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseMaxSpeed(in), in)
	}
}

func TestLanesOf(t *testing.T) {
	t.Run("no lane tags", func(t *testing.T) {
		_, ok := lanesOf(map[string]string{"highway": "primary"}, onewayNo)
		assert.False(t, ok)
	})

	t.Run("explicit directions", func(t *testing.T) {
		lanes, ok := lanesOf(map[string]string{
			"lanes":               "5",
			"lanes:forward":       "3",
			"lanes:backward":      "2",
			"turn:lanes:forward":  "left|through|right",
			"turn:lanes:backward": "through|through",
		}, onewayNo)
		assert.True(t, ok)
		assert.Equal(t, uint8(3), lanes.Forward)
		assert.Equal(t, uint8(2), lanes.Backward)
		assert.Equal(t, []datastructure.LaneTurn{
			datastructure.LaneTurnLeft, datastructure.LaneTurnThrough, datastructure.LaneTurnRight,
		}, lanes.TurnForward)
		assert.Len(t, lanes.TurnBackward, 2)
	})

	t.Run("turn lanes without count", func(t *testing.T) {
		lanes, ok := lanesOf(map[string]string{"turn:lanes": "left|through;right"}, onewayForward)
		assert.True(t, ok)
		assert.Equal(t, uint8(2), lanes.Forward)
		assert.Equal(t, datastructure.LaneTurnThroughRight, lanes.TurnForward[1])
	})

	t.Run("reverse oneway", func(t *testing.T) {
		lanes, ok := lanesOf(map[string]string{"lanes": "2"}, onewayBackward)
		assert.True(t, ok)
		assert.Equal(t, uint8(0), lanes.Forward)
		assert.Equal(t, uint8(2), lanes.Backward)
	})
}

func TestParseOneway(t *testing.T) {
	cases := []struct {
		tags map[string]string
		want onewayKind
	}{
		{map[string]string{"highway": "primary"}, onewayNo},
		{map[string]string{"highway": "primary", "oneway": "yes"}, onewayForward},
		{map[string]string{"highway": "primary", "oneway": "-1"}, onewayBackward},
		{map[string]string{"highway": "primary", "junction": "roundabout"}, onewayForward},
		{map[string]string{"highway": "motorway"}, onewayForward},
		{map[string]string{"highway": "motorway", "oneway": "no"}, onewayNo},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseOneway(tc.tags), "%v", tc.tags)
	}
}
