package datastructure

import "strings"

type LaneTurn uint8

const (
	LaneTurnNull LaneTurn = iota
	LaneTurnNone
	LaneTurnLeft
	LaneTurnMergeToLeft
	LaneTurnSlightLeft
	LaneTurnSharpLeft
	LaneTurnThroughLeft
	LaneTurnThroughSlightLeft
	LaneTurnThroughSharpLeft
	LaneTurnThrough
	LaneTurnThroughRight
	LaneTurnThroughSlightRight
	LaneTurnThroughSharpRight
	LaneTurnRight
	LaneTurnMergeToRight
	LaneTurnSlightRight
	LaneTurnSharpRight
	LaneTurnUnknown
)

var laneTurnNames = map[LaneTurn]string{
	LaneTurnNull:               "",
	LaneTurnNone:               "none",
	LaneTurnLeft:               "left",
	LaneTurnMergeToLeft:        "merge_to_left",
	LaneTurnSlightLeft:         "slight_left",
	LaneTurnSharpLeft:          "sharp_left",
	LaneTurnThroughLeft:        "through;left",
	LaneTurnThroughSlightLeft:  "through;slight_left",
	LaneTurnThroughSharpLeft:   "through;sharp_left",
	LaneTurnThrough:            "through",
	LaneTurnThroughRight:       "through;right",
	LaneTurnThroughSlightRight: "through;slight_right",
	LaneTurnThroughSharpRight:  "through;sharp_right",
	LaneTurnRight:              "right",
	LaneTurnMergeToRight:       "merge_to_right",
	LaneTurnSlightRight:        "slight_right",
	LaneTurnSharpRight:         "sharp_right",
	LaneTurnUnknown:            "unknown",
}

func (t LaneTurn) String() string {
	if name, ok := laneTurnNames[t]; ok {
		return name
	}
	return "unknown"
}

func (t LaneTurn) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseLaneTurn maps one lane of an osm turn:lanes value ("left", "through;right", ...).
// Combinations we don't model collapse to LaneTurnUnknown.
func ParseLaneTurn(value string) LaneTurn {
	v := strings.TrimSpace(value)
	if v == "" {
		return LaneTurnNone
	}
	parts := strings.Split(v, ";")
	hasThrough := false
	side := ""
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "through" {
			hasThrough = true
			continue
		}
		if side != "" {
			return LaneTurnUnknown
		}
		side = p
	}
	if hasThrough {
		switch side {
		case "":
			return LaneTurnThrough
		case "left":
			return LaneTurnThroughLeft
		case "slight_left":
			return LaneTurnThroughSlightLeft
		case "sharp_left":
			return LaneTurnThroughSharpLeft
		case "right":
			return LaneTurnThroughRight
		case "slight_right":
			return LaneTurnThroughSlightRight
		case "sharp_right":
			return LaneTurnThroughSharpRight
		}
		return LaneTurnUnknown
	}
	switch side {
	case "none":
		return LaneTurnNone
	case "left":
		return LaneTurnLeft
	case "merge_to_left":
		return LaneTurnMergeToLeft
	case "slight_left":
		return LaneTurnSlightLeft
	case "sharp_left":
		return LaneTurnSharpLeft
	case "right":
		return LaneTurnRight
	case "merge_to_right":
		return LaneTurnMergeToRight
	case "slight_right":
		return LaneTurnSlightRight
	case "sharp_right":
		return LaneTurnSharpRight
	}
	return LaneTurnUnknown
}

// ParseTurnLanes splits a full turn:lanes value ("left|through|through;right").
func ParseTurnLanes(value string) []LaneTurn {
	if value == "" {
		return nil
	}
	lanes := strings.Split(value, "|")
	turns := make([]LaneTurn, len(lanes))
	for i, lane := range lanes {
		turns[i] = ParseLaneTurn(lane)
	}
	return turns
}
