package guidance

import (
	"context"
	"fmt"
	"time"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geodata"

	"go.uber.org/zap"
)

// Postprocessor annotates the nodes of a route description. Postprocessors run in order
// against the same description, later ones may read what earlier ones attached.
type Postprocessor interface {
	Name() string
	Process(ctx context.Context, pc PostprocessorContext, description *RouteDescription) error
}

// StageObserver is told about every finished stage and every finished run.
type StageObserver interface {
	StageDone(name string, elapsed time.Duration, err error)
	RouteDone(description *RouteDescription, err error)
}

// StageError names the postprocessor that failed, Index counts from 1.
type StageError struct {
	Index int
	Name  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("postprocessor %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// junction nodes are matched within this many degrees of the way node
const DEFAULT_JUNCTION_RADIUS = 1e-7

type options struct {
	logger             *zap.Logger
	observer           StageObserver
	miniRoundaboutType string
	poiTypes           []string
	junctionRadius     float64
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithStageObserver(observer StageObserver) Option {
	return func(o *options) {
		o.observer = observer
	}
}

func WithMiniRoundaboutTypeName(name string) Option {
	return func(o *options) {
		o.miniRoundaboutType = name
	}
}

// WithPOITypeNames sets the node types the POIs postprocessor reports.
func WithPOITypeNames(names ...string) Option {
	return func(o *options) {
		o.poiTypes = names
	}
}

func WithJunctionRadius(degrees float64) Option {
	return func(o *options) {
		o.junctionRadius = degrees
	}
}

/*
PostprocessRouteDescription resolves every object the route refers to and runs the postprocessors in order.

	databases ──► CollaboratorBundle per database ──► resolutionContext.resolve (satu batch per database)
	                                                        │
	postprocessors[0] ─► postprocessors[1] ─► ... ◄─────────┘ (satu context untuk semua stage)

The first failing stage stops the run, its error is a *StageError wrapped with domain.ErrPostprocessor.
A failed run leaves description exactly as it was passed in.
*/
func PostprocessRouteDescription(ctx context.Context, description *RouteDescription,
	profiles map[datastructure.DatabaseID]geodata.RoutingProfile,
	databases map[datastructure.DatabaseID]geodata.Database,
	postprocessors []Postprocessor,
	motorwayTypeNames, motorwayLinkTypeNames, junctionTypeNames []string,
	opts ...Option) (err error) {

	o := options{
		logger:         zap.NewNop(),
		junctionRadius: DEFAULT_JUNCTION_RADIUS,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer != nil {
		defer func() {
			o.observer.RouteDone(description, err)
		}()
	}

	saved := description.checkpoint()
	defer func() {
		if err != nil {
			description.rollback(saved)
		}
	}()

	typeNames := TypeNames{
		Motorway:       motorwayTypeNames,
		MotorwayLink:   motorwayLinkTypeNames,
		Junction:       junctionTypeNames,
		POI:            o.poiTypes,
		MiniRoundabout: o.miniRoundaboutType,
	}
	bundles := make(map[datastructure.DatabaseID]*CollaboratorBundle, len(databases))
	for dbID, db := range databases {
		profile, ok := profiles[dbID]
		if !ok {
			return domain.WrapErrorf(nil, domain.ErrResolution, "no routing profile for database %d", dbID)
		}
		bundles[dbID] = NewCollaboratorBundle(db, profile, typeNames)
	}

	pc := newResolutionContext(bundles, o.junctionRadius)
	start := time.Now()
	if err := pc.resolve(ctx, description); err != nil {
		return err
	}
	o.logger.Debug("route objects resolved",
		zap.Int("nodes", description.Len()),
		zap.Int("ways", len(pc.ways)),
		zap.Int("areas", len(pc.areas)),
		zap.Int("map_nodes", len(pc.nodes)),
		zap.Duration("elapsed", time.Since(start)))

	for i, p := range postprocessors {
		if err := ctx.Err(); err != nil {
			return err
		}
		stageStart := time.Now()
		stageErr := p.Process(ctx, pc, description)
		elapsed := time.Since(stageStart)
		if o.observer != nil {
			o.observer.StageDone(p.Name(), elapsed, stageErr)
		}
		if stageErr != nil {
			return domain.WrapErrorf(&StageError{Index: i + 1, Name: p.Name(), Err: stageErr}, domain.ErrPostprocessor,
				"route postprocessing failed")
		}
		o.logger.Debug("postprocessor done", zap.Int("stage", i+1), zap.String("name", p.Name()),
			zap.Duration("elapsed", elapsed))
	}
	return nil
}
