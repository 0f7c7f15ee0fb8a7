package guidance_test

import (
	"errors"
	"testing"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/guidance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poiNames(d guidance.POIAtRouteDescription) []string {
	names := make([]string, 0, len(d.POIs))
	for _, poi := range d.POIs {
		names = append(names, poi.Name.Name)
	}
	return names
}

func TestPOIs(t *testing.T) {
	m := newTestMap()
	first := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.000, 14.0), c(50.001, 14.0)}, named("Main"), withAccess(carBothWays))
	second := m.addWay(STREET_TYPE, []datastructure.Coordinate{c(50.001, 14.0), c(50.002, 14.0)}, named("Main"), withAccess(carBothWays))

	benzina := m.addNode(FUEL_TYPE, c(50.0005, 14.0001), datastructure.NameFeatureValue{Name: "Benzina"})
	m.addNode(FUEL_TYPE, c(50.0009, 14.00005), datastructure.NameFeatureValue{Name: "Near"})
	m.addNode(FUEL_TYPE, c(50.0015, 14.0002), datastructure.NameFeatureValue{Name: "Shell"})
	m.addNode(FUEL_TYPE, c(50.0003, 14.0))
	m.addNode(FUEL_TYPE, c(50.0005, 14.001), datastructure.NameFeatureValue{Name: "Far"})
	m.addNode(JUNCTION_TYPE, c(50.0005, 14.00005), datastructure.NameFeatureValue{Name: "Exit"})

	d := route(
		routeNode{0, refs(first), first, 1},
		routeNode{0, refs(first, second), second, 1},
		routeNode{1, refs(second), noPath, 0},
	)
	m.mustRun(t, d, "POIs")

	atStart, ok := guidance.DescriptionOf[guidance.POIAtRouteDescription](d.Node(0))
	require.True(t, ok)
	assert.Equal(t, []string{"Near", "Benzina"}, poiNames(atStart))
	assert.Equal(t, benzina, atStart.POIs[1].Object)
	assert.InDelta(t, 7.17, atStart.POIs[1].Meters, 0.05)

	atSecond, ok := guidance.DescriptionOf[guidance.POIAtRouteDescription](d.Node(1))
	require.True(t, ok)
	assert.Equal(t, []string{"Shell"}, poiNames(atSecond))

	assert.False(t, d.Node(2).HasDescription(guidance.POI_AT_ROUTE_DESC))
}

func TestPOIsWithoutTypes(t *testing.T) {
	m := newTestMap()
	d := simpleRoute(m)
	m.addNode(FUEL_TYPE, c(50.0005, 14.0001), datastructure.NameFeatureValue{Name: "Benzina"})

	err := m.run(d, []guidance.Postprocessor{&guidance.POIsPostprocessor{}}, guidance.WithPOITypeNames())
	require.NoError(t, err)
	assert.False(t, d.Node(0).HasDescription(guidance.POI_AT_ROUTE_DESC))
}

func TestSections(t *testing.T) {
	t.Run("via points", func(t *testing.T) {
		m := newTestMap()
		d := junctionRoute(m)
		require.NoError(t, m.run(d, []guidance.Postprocessor{guidance.NewSectionsPostprocessor([]int{2, 3})}))

		via, ok := guidance.DescriptionOf[guidance.ViaDescription](d.Node(0))
		require.True(t, ok)
		assert.Equal(t, guidance.ViaDescription{Section: 1, NodeCount: 2}, via)

		via, ok = guidance.DescriptionOf[guidance.ViaDescription](d.Node(2))
		require.True(t, ok)
		assert.Equal(t, guidance.ViaDescription{Section: 2, NodeCount: 3}, via)
		assert.Equal(t, 2, countKind(d, guidance.VIA_DESC))
	})

	t.Run("single section", func(t *testing.T) {
		m := newTestMap()
		d := junctionRoute(m)
		require.NoError(t, m.run(d, []guidance.Postprocessor{guidance.NewSectionsPostprocessor([]int{5})}))
		assert.Equal(t, 0, countKind(d, guidance.VIA_DESC))
	})

	t.Run("empty section", func(t *testing.T) {
		m := newTestMap()
		d := junctionRoute(m)
		err := m.run(d, []guidance.Postprocessor{guidance.NewSectionsPostprocessor([]int{2, 0, 3})})
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.ErrBadParamInput))

		var stageErr *guidance.StageError
		require.True(t, errors.As(err, &stageErr))
		assert.Equal(t, "Sections", stageErr.Name)
		assert.Equal(t, 0, countKind(d, guidance.VIA_DESC))
	})
}
