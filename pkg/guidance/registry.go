package guidance

import (
	"lintang/routedescription/domain"
)

// DEFAULT_POSTPROCESSORS is the usual stage order. CrossingWays, Direction and WayName have
// to run before Instruction, Lanes before SuggestedLanes.
var DEFAULT_POSTPROCESSORS = []string{
	"DistanceAndTime",
	"Start",
	"Target",
	"WayName",
	"WayType",
	"CrossingWays",
	"Direction",
	"MotorwayJunction",
	"Destination",
	"MaxSpeed",
	"Instruction",
	"Lanes",
	"SuggestedLanes",
	"POIs",
}

// NewPostprocessor builds a postprocessor by name. start and target are the texts of the
// Start and Target descriptions.
func NewPostprocessor(name, start, target string) (Postprocessor, error) {
	switch name {
	case "DistanceAndTime":
		return &DistanceAndTimePostprocessor{}, nil
	case "Start":
		return NewStartPostprocessor(start), nil
	case "Target":
		return NewTargetPostprocessor(target), nil
	case "WayName":
		return &WayNamePostprocessor{}, nil
	case "WayType":
		return &WayTypePostprocessor{}, nil
	case "CrossingWays":
		return &CrossingWaysPostprocessor{}, nil
	case "Direction":
		return &DirectionPostprocessor{}, nil
	case "MotorwayJunction":
		return &MotorwayJunctionPostprocessor{}, nil
	case "Destination":
		return &DestinationPostprocessor{}, nil
	case "MaxSpeed":
		return &MaxSpeedPostprocessor{}, nil
	case "Instruction":
		return &InstructionPostprocessor{}, nil
	case "Lanes":
		return &LanesPostprocessor{}, nil
	case "SuggestedLanes":
		return &SuggestedLanesPostprocessor{}, nil
	case "POIs":
		return &POIsPostprocessor{}, nil
	}
	return nil, domain.WrapErrorf(nil, domain.ErrBadParamInput, "unknown postprocessor %q", name)
}

func NewPostprocessors(names []string, start, target string) ([]Postprocessor, error) {
	res := make([]Postprocessor, 0, len(names))
	for _, name := range names {
		p, err := NewPostprocessor(name, start, target)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

func DefaultPostprocessors(start, target string) []Postprocessor {
	res, _ := NewPostprocessors(DEFAULT_POSTPROCESSORS, start, target)
	return res
}
