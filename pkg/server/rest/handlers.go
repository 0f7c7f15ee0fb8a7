package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/guidance"
	"lintang/routedescription/pkg/server/rest/service"
	"lintang/routedescription/pkg/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type DescriptionService interface {
	Postprocess(ctx context.Context, nodes []service.RouteNode, sectionLengths []int) (*guidance.RouteDescription, error)
	Kinds() []guidance.DescriptionKind
}

type DescriptionHandler struct {
	svc DescriptionService
}

func DescriptionRouter(r *chi.Mux, svc DescriptionService) {
	handler := &DescriptionHandler{svc}

	r.Group(func(r chi.Router) {
		r.Route("/api/descriptions", func(r chi.Router) {
			r.Post("/postprocess", handler.postprocessRoute)
			r.Get("/kinds", handler.descriptionKinds)
		})
	})
}

// ObjectRequest model info
//
//	@Description	referensi ke way, area atau node di satu database
type ObjectRequest struct {
	Type   string `json:"type" validate:"required,oneof=way area node"`
	Offset uint64 `json:"offset"`
}

var refTypes = map[string]datastructure.RefType{
	"way":  datastructure.RefWay,
	"area": datastructure.RefArea,
	"node": datastructure.RefNode,
}

func (o ObjectRequest) toRef() datastructure.ObjectFileRef {
	return datastructure.NewObjectFileRef(datastructure.FileOffset(o.Offset), refTypes[o.Type])
}

// RouteNodeRequest model info
//
//	@Description	satu node dari rute. path_object kosong untuk node terakhir
type RouteNodeRequest struct {
	DatabaseID       uint32          `json:"database_id"`
	CurrentNodeIndex int             `json:"current_node_index" validate:"gte=0"`
	TargetNodeIndex  int             `json:"target_node_index" validate:"gte=0"`
	Objects          []ObjectRequest `json:"objects,omitempty" validate:"dive"`
	PathObject       *ObjectRequest  `json:"path_object,omitempty"`
}

// PostprocessRequest model info
//
//	@Description	request body untuk postprocessing route description. sections opsional, jumlah node per section kalau rute lewat via point
type PostprocessRequest struct {
	Nodes    []RouteNodeRequest `json:"nodes" validate:"required,min=1,dive"`
	Sections []int              `json:"sections,omitempty" validate:"omitempty,dive,gt=0"`
}

func (s *PostprocessRequest) Bind(r *http.Request) error {
	if len(s.Nodes) == 0 {
		return errors.New("invalid request")
	}
	return nil
}

func (s *PostprocessRequest) toRouteNodes() []service.RouteNode {
	nodes := make([]service.RouteNode, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		node := service.RouteNode{
			DatabaseID:       datastructure.DatabaseID(n.DatabaseID),
			CurrentNodeIndex: n.CurrentNodeIndex,
			TargetNodeIndex:  n.TargetNodeIndex,
		}
		for _, obj := range n.Objects {
			node.Objects = append(node.Objects, obj.toRef())
		}
		if n.PathObject != nil {
			node.PathObject = n.PathObject.toRef()
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// DescriptionNodeResponse model info
//
//	@Description	descriptions satu node, distance dalam meter dan time dalam detik sejak start
type DescriptionNodeResponse struct {
	Index        int                             `json:"index"`
	DatabaseID   datastructure.DatabaseID        `json:"database_id"`
	Location     datastructure.Coordinate        `json:"location"`
	Distance     float64                         `json:"distance"`
	Time         float64                         `json:"time"`
	Descriptions map[string]guidance.Description `json:"descriptions"`
}

// PostprocessResponse model info
//
//	@Description	response body postprocessing route description. distance dalam km, time dalam detik
type PostprocessResponse struct {
	Path     string                     `json:"path"`
	Distance float64                    `json:"distance"`
	Time     float64                    `json:"time"`
	Nodes    []DescriptionNodeResponse  `json:"nodes"`
	GeoJSON  *geojson.FeatureCollection `json:"geojson" swaggertype:"object"`
}

func NewPostprocessResponse(description *guidance.RouteDescription) *PostprocessResponse {
	resp := &PostprocessResponse{
		Nodes:   make([]DescriptionNodeResponse, 0, description.Len()),
		GeoJSON: geojson.NewFeatureCollection(),
	}

	path := make([]datastructure.Coordinate, 0, description.Len())
	line := make(orb.LineString, 0, description.Len())
	for i := range description.Nodes() {
		node := description.Node(i)
		descs := make(map[string]guidance.Description)
		kinds := []string{}
		for _, d := range node.Descriptions() {
			descs[d.Kind().String()] = d
			kinds = append(kinds, d.Kind().String())
		}
		resp.Nodes = append(resp.Nodes, DescriptionNodeResponse{
			Index:        i,
			DatabaseID:   node.DatabaseID,
			Location:     node.Location,
			Distance:     util.RoundFloat(node.Distance.AsMeters(), 2),
			Time:         util.RoundSeconds(node.Time),
			Descriptions: descs,
		})

		path = append(path, node.Location)
		point := orb.Point{node.Location.Lon, node.Location.Lat}
		line = append(line, point)
		if len(kinds) > 0 {
			f := geojson.NewFeature(point)
			f.Properties["index"] = i
			f.Properties["descriptions"] = kinds
			resp.GeoJSON.Append(f)
		}
	}

	if !description.Empty() {
		last := description.Node(description.Len() - 1)
		resp.Distance = util.RoundFloat(last.Distance.AsKilometers(), 3)
		resp.Time = util.RoundSeconds(last.Time)
	}
	resp.Path = datastructure.RenderPath(path)
	if len(line) >= 2 {
		route := geojson.NewFeature(line)
		route.Properties["distance"] = resp.Distance
		route.Properties["time"] = resp.Time
		resp.GeoJSON.Append(route)
	}
	return resp
}

// postprocessRoute
//
//	@Summary		postprocessing route description dari rute yang sudah dihitung router.
//	@Description	resolve semua way/area/node yang dirujuk rute lalu jalankan postprocessor (distance, way name, crossing ways, direction, instruction, lanes, ...) secara berurutan.
//	@Tags			descriptions
//	@Param			body	body	PostprocessRequest	true	"request body node-node rute"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/descriptions/postprocess [post]
//	@Success		200	{object}	PostprocessResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		422	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *DescriptionHandler) postprocessRoute(w http.ResponseWriter, r *http.Request) {
	data := &PostprocessRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	description, err := h.svc.Postprocess(r.Context(), data.toRouteNodes(), data.Sections)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewPostprocessResponse(description))
}

// DescriptionKindResponse model info
//
//	@Description	satu kind description, key nya stabil
type DescriptionKindResponse struct {
	Key  uint8  `json:"key"`
	Name string `json:"name"`
}

// descriptionKinds
//
//	@Summary		daftar kind description.
//	@Description	daftar kind description yang bisa muncul di response postprocess, urutan dan key nya stabil.
//	@Tags			descriptions
//	@Produce		application/json
//	@Router			/descriptions/kinds [get]
//	@Success		200	{array}	DescriptionKindResponse
func (h *DescriptionHandler) descriptionKinds(w http.ResponseWriter, r *http.Request) {
	kinds := h.svc.Kinds()
	resp := make([]DescriptionKindResponse, 0, len(kinds))
	for _, k := range kinds {
		resp = append(resp, DescriptionKindResponse{Key: uint8(k), Name: k.String()})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// ErrResponse model info
//
//	@Description	model untuk error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	statusText := ""
	switch getStatusCode(err) {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusConflict:
		statusText = "Resource conflict."
	case http.StatusBadRequest:
		statusText = "Bad request."
	case http.StatusUnprocessableEntity:
		statusText = "Route does not match the map."
	case http.StatusGatewayTimeout:
		statusText = "Request timed out."
	default:
		statusText = "Error."
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: getStatusCode(err),
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

// getStatusCode checks the pipeline codes before the generic ones, a resolution error usually
// wraps a database ErrNotFound.
func getStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case domain.IsCode(err, domain.ErrBadParamInput):
		return http.StatusBadRequest
	case domain.IsCode(err, domain.ErrResolution), domain.IsCode(err, domain.ErrInternal):
		return http.StatusUnprocessableEntity
	case domain.IsCode(err, domain.ErrPostprocessor), domain.IsCode(err, domain.ErrInternalServerError):
		return http.StatusInternalServerError
	case domain.IsCode(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsCode(err, domain.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf("%s", e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}
