package rest_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lintang/routedescription/pkg/config"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geodata"
	"lintang/routedescription/pkg/osmparser"
	"lintang/routedescription/pkg/server/rest"
	"lintang/routedescription/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func tags(kv ...string) osm.Tags {
	res := make(osm.Tags, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		res = append(res, osm.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return res
}

// street 10 (1 -> 2) lalu motorway 20 (2 -> 3), node 2 motorway junction, node 4 pom bensin di samping street 10
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	nodes := map[osm.NodeID]*osm.Node{
		1: {ID: 1, Lat: 50.000, Lon: 14.000},
		2: {ID: 2, Lat: 50.001, Lon: 14.000, Tags: tags("highway", "motorway_junction", "ref", "12", "name", "Exit")},
		3: {ID: 3, Lat: 50.002, Lon: 14.000},
		4: {ID: 4, Lat: 50.0005, Lon: 14.0001, Tags: tags("amenity", "fuel", "name", "Benzina")},
	}
	ways := []*osm.Way{
		{ID: 10, Nodes: osm.WayNodes{{ID: 1}, {ID: 2}}, Tags: tags("highway", "primary", "name", "Main")},
		{ID: 20, Nodes: osm.WayNodes{{ID: 2}, {ID: 3}}, Tags: tags("highway", "motorway", "ref", "D1")},
	}
	tc := osmparser.DefaultTypeConfig()
	m := osmparser.NewOSMParser(tc, osmparser.WithProgressWriter(io.Discard)).BuildMap(ways, nodes)

	db := geodata.NewMemoryDatabase(tc)
	for _, w := range m.Ways {
		db.AddWay(w)
	}
	for _, n := range m.Nodes {
		db.AddNode(n)
	}

	svc, err := service.NewDescriptionService(config.Default(),
		map[datastructure.DatabaseID]geodata.Database{0: db}, zaptest.NewLogger(t))
	require.NoError(t, err)

	r := chi.NewRouter()
	rest.DescriptionRouter(r, svc)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

const validRoute = `{"nodes": [
	{"database_id": 0, "current_node_index": 0, "target_node_index": 1,
	 "objects": [{"type": "way", "offset": 10}], "path_object": {"type": "way", "offset": 10}},
	{"database_id": 0, "current_node_index": 0, "target_node_index": 1,
	 "objects": [{"type": "way", "offset": 10}, {"type": "way", "offset": 20}], "path_object": {"type": "way", "offset": 20}},
	{"database_id": 0, "current_node_index": 1, "target_node_index": 0,
	 "objects": [{"type": "way", "offset": 20}]}
]}`

type postprocessResponse struct {
	Path     string  `json:"path"`
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
	Nodes    []struct {
		Index        int                        `json:"index"`
		Distance     float64                    `json:"distance"`
		Descriptions map[string]json.RawMessage `json:"descriptions"`
	} `json:"nodes"`
	GeoJSON struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	} `json:"geojson"`
}

type errResponse struct {
	Status     string   `json:"status"`
	Error      string   `json:"error"`
	Validation []string `json:"validation"`
}

func post(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/descriptions/postprocess", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPostprocessRoute(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, validRoute)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body postprocessResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Nodes, 3)

	assert.NotEmpty(t, body.Path)
	assert.InDelta(t, 0.222, body.Distance, 0.01)
	assert.Greater(t, body.Time, 0.0)
	assert.Equal(t, 0.0, body.Nodes[0].Distance)
	assert.Greater(t, body.Nodes[2].Distance, body.Nodes[1].Distance)

	assert.Contains(t, body.Nodes[0].Descriptions, "Start")
	assert.Contains(t, body.Nodes[2].Descriptions, "Target")
	assert.NotContains(t, body.Nodes[1].Descriptions, "Start")

	var name struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(body.Nodes[0].Descriptions["WayName"], &name))
	assert.Equal(t, "Main", name.Name)

	require.Contains(t, body.Nodes[1].Descriptions, "MotorwayEnter")
	var enter struct {
		To struct {
			Ref string `json:"ref"`
		} `json:"to"`
	}
	require.NoError(t, json.Unmarshal(body.Nodes[1].Descriptions["MotorwayEnter"], &enter))
	assert.Equal(t, "D1", enter.To.Ref)

	var pois struct {
		POIs []struct {
			Name struct {
				Name string `json:"name"`
			} `json:"name"`
		} `json:"pois"`
	}
	require.Contains(t, body.Nodes[0].Descriptions, "POIAtRoute")
	require.NoError(t, json.Unmarshal(body.Nodes[0].Descriptions["POIAtRoute"], &pois))
	require.Len(t, pois.POIs, 1)
	assert.Equal(t, "Benzina", pois.POIs[0].Name.Name)
	assert.NotContains(t, body.Nodes[0].Descriptions, "Via")

	assert.Equal(t, "FeatureCollection", body.GeoJSON.Type)
	require.NotEmpty(t, body.GeoJSON.Features)
	last := body.GeoJSON.Features[len(body.GeoJSON.Features)-1]
	assert.Equal(t, "LineString", last.Geometry.Type)
}

func withSections(route, sections string) string {
	return strings.TrimSuffix(route, "}") + `, "sections": ` + sections + `}`
}

func TestPostprocessRouteSections(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, withSections(validRoute, "[1, 2]"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body postprocessResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Nodes, 3)

	type via struct {
		Section   int `json:"section"`
		NodeCount int `json:"node_count"`
	}
	var first, second via
	require.NoError(t, json.Unmarshal(body.Nodes[0].Descriptions["Via"], &first))
	require.NoError(t, json.Unmarshal(body.Nodes[1].Descriptions["Via"], &second))
	assert.Equal(t, via{Section: 1, NodeCount: 1}, first)
	assert.Equal(t, via{Section: 2, NodeCount: 2}, second)
	assert.NotContains(t, body.Nodes[2].Descriptions, "Via")
}

func TestPostprocessRouteErrors(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name       string
		body       string
		status     int
		validation bool
	}{
		{"not json", `{"nodes": [`, http.StatusBadRequest, false},
		{"no nodes", `{"nodes": []}`, http.StatusBadRequest, false},
		{"unknown object type", `{"nodes": [{"current_node_index": 0, "path_object": {"type": "road", "offset": 10}}]}`,
			http.StatusBadRequest, true},
		{"negative index", `{"nodes": [{"current_node_index": -1, "objects": [{"type": "way", "offset": 10}]}]}`,
			http.StatusBadRequest, true},
		{"missing way", `{"nodes": [
			{"current_node_index": 0, "target_node_index": 1, "path_object": {"type": "way", "offset": 999}},
			{"current_node_index": 1}]}`, http.StatusUnprocessableEntity, false},
		{"unknown database", `{"nodes": [
			{"database_id": 3, "current_node_index": 0, "target_node_index": 1, "path_object": {"type": "way", "offset": 10}},
			{"current_node_index": 1}]}`, http.StatusUnprocessableEntity, false},
		{"sections do not cover the route", withSections(validRoute, "[1, 1]"), http.StatusBadRequest, false},
		{"empty section", withSections(validRoute, "[0, 3]"), http.StatusBadRequest, true},
		{"index outside way", `{"nodes": [
			{"current_node_index": 5, "target_node_index": 1, "path_object": {"type": "way", "offset": 10}},
			{"current_node_index": 1}]}`, http.StatusUnprocessableEntity, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := post(t, srv, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body errResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
			if tc.validation {
				assert.NotEmpty(t, body.Validation)
			}
		})
	}
}

func TestDescriptionKinds(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/descriptions/kinds")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var kinds []rest.DescriptionKindResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&kinds))
	require.Len(t, kinds, 20)
	assert.Equal(t, rest.DescriptionKindResponse{Key: 0, Name: "Start"}, kinds[0])
	assert.Equal(t, rest.DescriptionKindResponse{Key: 17, Name: "Lanes"}, kinds[17])
	assert.Equal(t, rest.DescriptionKindResponse{Key: 18, Name: "Via"}, kinds[18])
	assert.Equal(t, rest.DescriptionKindResponse{Key: 19, Name: "POIAtRoute"}, kinds[19])
	for i, k := range kinds {
		assert.Equal(t, uint8(i), k.Key)
	}
}
