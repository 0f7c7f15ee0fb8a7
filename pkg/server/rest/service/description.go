package service

import (
	"context"
	"time"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/config"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/geodata"
	"lintang/routedescription/pkg/guidance"

	"go.uber.org/zap"
)

// RouteNode is one node of a route as the router hands it over.
type RouteNode struct {
	DatabaseID       datastructure.DatabaseID
	CurrentNodeIndex int
	TargetNodeIndex  int
	Objects          []datastructure.ObjectFileRef
	PathObject       datastructure.ObjectFileRef
}

type DescriptionService struct {
	cfg       config.Config
	databases map[datastructure.DatabaseID]geodata.Database
	profiles  map[datastructure.DatabaseID]geodata.RoutingProfile
	log       *zap.Logger
	opts      []guidance.Option
}

// NewDescriptionService builds a car profile per database. opts are appended to the pipeline
// options of cfg on every run.
func NewDescriptionService(cfg config.Config, databases map[datastructure.DatabaseID]geodata.Database,
	log *zap.Logger, opts ...guidance.Option) (*DescriptionService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(databases) == 0 {
		return nil, domain.WrapErrorf(nil, domain.ErrBadParamInput, "no database opened")
	}
	profiles := make(map[datastructure.DatabaseID]geodata.RoutingProfile, len(databases))
	for id, db := range databases {
		profiles[id] = geodata.NewCarProfile(db.TypeConfig(), cfg.CarSpeeds)
	}

	pipelineOpts := append(cfg.PipelineOptions(), guidance.WithLogger(log))
	pipelineOpts = append(pipelineOpts, opts...)
	return &DescriptionService{
		cfg:       cfg,
		databases: databases,
		profiles:  profiles,
		log:       log,
		opts:      pipelineOpts,
	}, nil
}

// Postprocess runs the configured pipeline over the route. Each call gets its own postprocessor
// instances so concurrent requests never share stage state. sectionLengths are the node counts of
// the route sections between via points, they have to add up to the node count. With two or more
// sections the Sections postprocessor runs last.
func (s *DescriptionService) Postprocess(ctx context.Context, nodes []RouteNode, sectionLengths []int) (*guidance.RouteDescription, error) {
	if len(nodes) == 0 {
		return nil, domain.WrapErrorf(nil, domain.ErrBadParamInput, "route has no nodes")
	}
	if len(sectionLengths) > 0 {
		total := 0
		for _, l := range sectionLengths {
			total += l
		}
		if total != len(nodes) {
			return nil, domain.WrapErrorf(nil, domain.ErrBadParamInput, "sections cover %d nodes, route has %d", total, len(nodes))
		}
	}
	postprocessors, err := guidance.NewPostprocessors(s.cfg.Postprocessors, s.cfg.StartDescription, s.cfg.TargetDescription)
	if err != nil {
		return nil, err
	}
	if len(sectionLengths) > 1 {
		postprocessors = append(postprocessors, guidance.NewSectionsPostprocessor(sectionLengths))
	}

	description := guidance.NewRouteDescription()
	for _, n := range nodes {
		description.AddNode(n.DatabaseID, n.CurrentNodeIndex, n.Objects, n.PathObject, n.TargetNodeIndex)
	}

	start := time.Now()
	err = guidance.PostprocessRouteDescription(ctx, description, s.profiles, s.databases, postprocessors,
		s.cfg.MotorwayTypes, s.cfg.MotorwayLinkTypes, s.cfg.JunctionTypes, s.opts...)
	if err != nil {
		s.log.Warn("route postprocessing failed", zap.Int("nodes", len(nodes)), zap.Error(err))
		return nil, err
	}
	s.log.Debug("route postprocessed", zap.Int("nodes", len(nodes)), zap.Duration("elapsed", time.Since(start)))
	return description, nil
}

func (s *DescriptionService) Kinds() []guidance.DescriptionKind {
	return guidance.AllDescriptionKinds()
}
