package config

import (
	"os"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"
	"lintang/routedescription/pkg/guidance"
	"lintang/routedescription/pkg/osmparser"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	ID   datastructure.DatabaseID `yaml:"id"`
	Path string                   `yaml:"path"`
}

// Config of the postprocessing pipeline and the databases it reads. Fields missing from the
// yaml file keep their Default value.
type Config struct {
	Debug              bool               `yaml:"debug"`
	Postprocessors     []string           `yaml:"postprocessors"`
	StartDescription   string             `yaml:"start_description"`
	TargetDescription  string             `yaml:"target_description"`
	MotorwayTypes      []string           `yaml:"motorway_types"`
	MotorwayLinkTypes  []string           `yaml:"motorway_link_types"`
	JunctionTypes      []string           `yaml:"junction_types"`
	POITypes           []string           `yaml:"poi_types"`
	MiniRoundaboutType string             `yaml:"mini_roundabout_type"`
	JunctionRadius     float64            `yaml:"junction_radius"`
	CarSpeeds          map[string]float64 `yaml:"car_speeds"`
	Databases          []DatabaseConfig   `yaml:"databases"`
}

func Default() Config {
	return Config{
		Postprocessors:     append([]string(nil), guidance.DEFAULT_POSTPROCESSORS...),
		StartDescription:   "Start",
		TargetDescription:  "Target",
		MotorwayTypes:      append([]string(nil), osmparser.MotorwayTypeNames...),
		MotorwayLinkTypes:  append([]string(nil), osmparser.MotorwayLinkTypeNames...),
		JunctionTypes:      append([]string(nil), osmparser.JunctionTypeNames...),
		POITypes:           append([]string(nil), osmparser.POITypeNames...),
		MiniRoundaboutType: osmparser.MINI_ROUNDABOUT_TYPE,
		JunctionRadius:     guidance.DEFAULT_JUNCTION_RADIUS,
		Databases:          []DatabaseConfig{{ID: 0, Path: "routedescriptionDB"}},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()
	bb, err := os.ReadFile(path)
	if err != nil {
		return Config{}, domain.WrapErrorf(err, domain.ErrBadParamInput, "read config %s", path)
	}
	if err := yaml.Unmarshal(bb, &cfg); err != nil {
		return Config{}, domain.WrapErrorf(err, domain.ErrBadParamInput, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := guidance.NewPostprocessors(c.Postprocessors, c.StartDescription, c.TargetDescription); err != nil {
		return err
	}
	if c.JunctionRadius <= 0 {
		return domain.WrapErrorf(nil, domain.ErrBadParamInput, "junction_radius must be positive, got %v", c.JunctionRadius)
	}
	if len(c.Databases) == 0 {
		return domain.WrapErrorf(nil, domain.ErrBadParamInput, "no database configured")
	}
	seen := make(map[datastructure.DatabaseID]bool, len(c.Databases))
	for _, db := range c.Databases {
		if db.Path == "" {
			return domain.WrapErrorf(nil, domain.ErrBadParamInput, "database %d has no path", db.ID)
		}
		if seen[db.ID] {
			return domain.WrapErrorf(nil, domain.ErrBadParamInput, "database %d configured twice", db.ID)
		}
		seen[db.ID] = true
	}
	return nil
}

func (c Config) PipelineOptions() []guidance.Option {
	return []guidance.Option{
		guidance.WithMiniRoundaboutTypeName(c.MiniRoundaboutType),
		guidance.WithJunctionRadius(c.JunctionRadius),
		guidance.WithPOITypeNames(c.POITypes...),
	}
}
