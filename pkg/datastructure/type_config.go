package datastructure

type TypeID uint16

const TYPE_IGNORE TypeID = 0

type TypeInfo struct {
	ID          TypeID          `json:"id"`
	Name        string          `json:"name"`
	CanBeWay    bool            `json:"can_be_way"`
	CanBeArea   bool            `json:"can_be_area"`
	CanBeNode   bool            `json:"can_be_node"`
	CanRouteCar bool            `json:"can_route_car"`
	Lanes       uint8           `json:"lanes"`
	OnewayLanes uint8           `json:"oneway_lanes"`
	Features    map[string]bool `json:"features"`
}

func NewTypeInfo(name string) *TypeInfo {
	return &TypeInfo{
		Name:        name,
		Lanes:       1,
		OnewayLanes: 1,
		Features:    make(map[string]bool),
	}
}

func (t *TypeInfo) AddFeature(name string) *TypeInfo {
	t.Features[name] = true
	return t
}

func (t *TypeInfo) HasFeature(name string) bool {
	return t.Features[name]
}

type TypeConfig struct {
	types  []*TypeInfo
	byName map[string]*TypeInfo
}

func NewTypeConfig() *TypeConfig {
	tc := &TypeConfig{
		byName: make(map[string]*TypeInfo),
	}
	// id 0 stays reserved for ignored objects
	tc.types = append(tc.types, &TypeInfo{Name: "", Features: map[string]bool{}})
	return tc
}

// RegisterType assigns the next id to t. Registering a name twice returns the existing type.
func (tc *TypeConfig) RegisterType(t *TypeInfo) *TypeInfo {
	if existing, ok := tc.byName[t.Name]; ok {
		return existing
	}
	t.ID = TypeID(len(tc.types))
	tc.types = append(tc.types, t)
	tc.byName[t.Name] = t
	return t
}

func (tc *TypeConfig) GetTypeInfo(name string) (*TypeInfo, bool) {
	t, ok := tc.byName[name]
	return t, ok
}

func (tc *TypeConfig) GetTypeInfoByID(id TypeID) (*TypeInfo, bool) {
	if int(id) >= len(tc.types) || id == TYPE_IGNORE {
		return nil, false
	}
	return tc.types[id], true
}

// Types returns the registered types, the reserved ignore type excluded.
func (tc *TypeConfig) Types() []*TypeInfo {
	return tc.types[1:]
}

type TypeInfoSet struct {
	ids map[TypeID]struct{}
}

func NewTypeInfoSet() TypeInfoSet {
	return TypeInfoSet{ids: make(map[TypeID]struct{})}
}

// NewTypeInfoSetFromNames collects the registered types among names, unknown names are skipped.
func NewTypeInfoSetFromNames(tc *TypeConfig, names []string) TypeInfoSet {
	set := NewTypeInfoSet()
	for _, name := range names {
		if t, ok := tc.GetTypeInfo(name); ok {
			set.Set(t)
		}
	}
	return set
}

func (s *TypeInfoSet) Set(t *TypeInfo) {
	if s.ids == nil {
		s.ids = make(map[TypeID]struct{})
	}
	s.ids[t.ID] = struct{}{}
}

func (s TypeInfoSet) IsSet(t *TypeInfo) bool {
	if t == nil {
		return false
	}
	_, ok := s.ids[t.ID]
	return ok
}

func (s TypeInfoSet) Empty() bool {
	return len(s.ids) == 0
}

func (s TypeInfoSet) Size() int {
	return len(s.ids)
}
