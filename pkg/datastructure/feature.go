package datastructure

// feature names, also used as keys in the stored feature buffer
const (
	FEATURE_NAME                = "Name"
	FEATURE_REF                 = "Ref"
	FEATURE_BRIDGE              = "Bridge"
	FEATURE_ROUNDABOUT          = "Roundabout"
	FEATURE_CLOCKWISE_DIRECTION = "ClockwiseDirection"
	FEATURE_DESTINATION         = "Destination"
	FEATURE_MAX_SPEED           = "MaxSpeed"
	FEATURE_LANES               = "Lanes"
	FEATURE_ACCESS              = "Access"
)

type FeatureValue interface {
	FeatureName() string
}

type NameFeatureValue struct {
	Name string
}

func (NameFeatureValue) FeatureName() string { return FEATURE_NAME }

type RefFeatureValue struct {
	Ref string
}

func (RefFeatureValue) FeatureName() string { return FEATURE_REF }

type BridgeFeatureValue struct{}

func (BridgeFeatureValue) FeatureName() string { return FEATURE_BRIDGE }

type RoundaboutFeatureValue struct{}

func (RoundaboutFeatureValue) FeatureName() string { return FEATURE_ROUNDABOUT }

type ClockwiseDirectionFeatureValue struct{}

func (ClockwiseDirectionFeatureValue) FeatureName() string { return FEATURE_CLOCKWISE_DIRECTION }

type DestinationFeatureValue struct {
	Destination string
}

func (DestinationFeatureValue) FeatureName() string { return FEATURE_DESTINATION }

// MaxSpeedFeatureValue in km/h
type MaxSpeedFeatureValue struct {
	MaxSpeed uint8
}

func (MaxSpeedFeatureValue) FeatureName() string { return FEATURE_MAX_SPEED }

type LanesFeatureValue struct {
	Forward             uint8
	Backward            uint8
	TurnForward         []LaneTurn
	TurnBackward        []LaneTurn
	DestinationForward  string
	DestinationBackward string
}

func (LanesFeatureValue) FeatureName() string { return FEATURE_LANES }

func (l LanesFeatureValue) Lanes() uint8 {
	return l.Forward + l.Backward
}

const (
	ACCESS_FOOT_FORWARD uint8 = 1 << iota
	ACCESS_FOOT_BACKWARD
	ACCESS_BICYCLE_FORWARD
	ACCESS_BICYCLE_BACKWARD
	ACCESS_CAR_FORWARD
	ACCESS_CAR_BACKWARD
	ACCESS_ONEWAY_FORWARD
	ACCESS_ONEWAY_BACKWARD
)

type AccessFeatureValue struct {
	Access uint8
}

func (AccessFeatureValue) FeatureName() string { return FEATURE_ACCESS }

func (a AccessFeatureValue) CanRouteCarForward() bool {
	return a.Access&ACCESS_CAR_FORWARD != 0
}

func (a AccessFeatureValue) CanRouteCarBackward() bool {
	return a.Access&ACCESS_CAR_BACKWARD != 0
}

func (a AccessFeatureValue) CanRouteCar() bool {
	return a.CanRouteCarForward() || a.CanRouteCarBackward()
}

func (a AccessFeatureValue) IsOneway() bool {
	return a.Access&(ACCESS_ONEWAY_FORWARD|ACCESS_ONEWAY_BACKWARD) != 0
}

// FeatureValueBuffer holds the type of an object and the feature values set on it.
type FeatureValueBuffer struct {
	Type   *TypeInfo
	values map[string]FeatureValue
}

func NewFeatureValueBuffer(t *TypeInfo) FeatureValueBuffer {
	return FeatureValueBuffer{Type: t, values: make(map[string]FeatureValue)}
}

func (b *FeatureValueBuffer) Set(v FeatureValue) {
	if b.values == nil {
		b.values = make(map[string]FeatureValue)
	}
	b.values[v.FeatureName()] = v
}

func (b FeatureValueBuffer) Get(name string) (FeatureValue, bool) {
	v, ok := b.values[name]
	return v, ok
}

func (b FeatureValueBuffer) Values() []FeatureValue {
	vals := make([]FeatureValue, 0, len(b.values))
	for _, name := range allFeatureNames {
		if v, ok := b.values[name]; ok {
			vals = append(vals, v)
		}
	}
	return vals
}

var allFeatureNames = []string{
	FEATURE_NAME, FEATURE_REF, FEATURE_BRIDGE, FEATURE_ROUNDABOUT, FEATURE_CLOCKWISE_DIRECTION,
	FEATURE_DESTINATION, FEATURE_MAX_SPEED, FEATURE_LANES, FEATURE_ACCESS,
}

// FeatureValueReader reads one feature from buffers of the types that declare it.
// A reader is built once per TypeConfig.
type FeatureValueReader[T FeatureValue] struct {
	name    string
	enabled TypeInfoSet
}

func NewFeatureValueReader[T FeatureValue](typeConfig *TypeConfig) *FeatureValueReader[T] {
	var zero T
	name := zero.FeatureName()
	enabled := NewTypeInfoSet()
	for _, t := range typeConfig.Types() {
		if t.HasFeature(name) {
			enabled.Set(t)
		}
	}
	return &FeatureValueReader[T]{name: name, enabled: enabled}
}

func (r *FeatureValueReader[T]) GetValue(buf FeatureValueBuffer) (T, bool) {
	var zero T
	if buf.Type == nil || !r.enabled.IsSet(buf.Type) {
		return zero, false
	}
	v, ok := buf.values[r.name]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// IsSet is the flag form of GetValue, for features without payload.
func (r *FeatureValueReader[T]) IsSet(buf FeatureValueBuffer) bool {
	_, ok := r.GetValue(buf)
	return ok
}

type NameFeatureValueReader = FeatureValueReader[NameFeatureValue]
type RefFeatureValueReader = FeatureValueReader[RefFeatureValue]
type BridgeFeatureReader = FeatureValueReader[BridgeFeatureValue]
type RoundaboutFeatureReader = FeatureValueReader[RoundaboutFeatureValue]
type ClockwiseDirectionFeatureReader = FeatureValueReader[ClockwiseDirectionFeatureValue]
type DestinationFeatureValueReader = FeatureValueReader[DestinationFeatureValue]
type MaxSpeedFeatureValueReader = FeatureValueReader[MaxSpeedFeatureValue]
type LanesFeatureValueReader = FeatureValueReader[LanesFeatureValue]
type AccessFeatureValueReader = FeatureValueReader[AccessFeatureValue]
