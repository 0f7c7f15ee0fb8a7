package kv

import (
	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/datastructure"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

// bit per feature yang ada di storedFeatures.Present
const (
	presentName uint16 = 1 << iota
	presentRef
	presentBridge
	presentRoundabout
	presentClockwise
	presentDestination
	presentMaxSpeed
	presentLanes
	presentAccess
)

// storedFeatures is the flat form of a FeatureValueBuffer, kelindar/binary cannot encode
// the interface values of the buffer itself.
type storedFeatures struct {
	TypeID              uint16
	Present             uint16
	Name                string
	Ref                 string
	Destination         string
	MaxSpeed            uint8
	LanesForward        uint8
	LanesBackward       uint8
	TurnForward         []uint8
	TurnBackward        []uint8
	DestinationForward  string
	DestinationBackward string
	Access              uint8
}

type storedPoint struct {
	Serial uint8
	Lat    float64
	Lon    float64
}

type storedWay struct {
	Features storedFeatures
	Points   []storedPoint
}

type storedRing struct {
	Ring     uint8
	Features storedFeatures
	Points   []storedPoint
}

type storedArea struct {
	Rings []storedRing
}

type storedNode struct {
	Features storedFeatures
	Lat      float64
	Lon      float64
}

type storedTypeInfo struct {
	ID          uint16
	Name        string
	CanBeWay    bool
	CanBeArea   bool
	CanBeNode   bool
	CanRouteCar bool
	Lanes       uint8
	OnewayLanes uint8
	Features    []string
}

func toStoredFeatures(buf datastructure.FeatureValueBuffer) storedFeatures {
	var sf storedFeatures
	if buf.Type != nil {
		sf.TypeID = uint16(buf.Type.ID)
	}
	for _, v := range buf.Values() {
		switch fv := v.(type) {
		case datastructure.NameFeatureValue:
			sf.Present |= presentName
			sf.Name = fv.Name
		case datastructure.RefFeatureValue:
			sf.Present |= presentRef
			sf.Ref = fv.Ref
		case datastructure.BridgeFeatureValue:
			sf.Present |= presentBridge
		case datastructure.RoundaboutFeatureValue:
			sf.Present |= presentRoundabout
		case datastructure.ClockwiseDirectionFeatureValue:
			sf.Present |= presentClockwise
		case datastructure.DestinationFeatureValue:
			sf.Present |= presentDestination
			sf.Destination = fv.Destination
		case datastructure.MaxSpeedFeatureValue:
			sf.Present |= presentMaxSpeed
			sf.MaxSpeed = fv.MaxSpeed
		case datastructure.LanesFeatureValue:
			sf.Present |= presentLanes
			sf.LanesForward = fv.Forward
			sf.LanesBackward = fv.Backward
			sf.TurnForward = laneTurnsToBytes(fv.TurnForward)
			sf.TurnBackward = laneTurnsToBytes(fv.TurnBackward)
			sf.DestinationForward = fv.DestinationForward
			sf.DestinationBackward = fv.DestinationBackward
		case datastructure.AccessFeatureValue:
			sf.Present |= presentAccess
			sf.Access = fv.Access
		}
	}
	return sf
}

func fromStoredFeatures(tc *datastructure.TypeConfig, sf storedFeatures) (datastructure.FeatureValueBuffer, error) {
	t, ok := tc.GetTypeInfoByID(datastructure.TypeID(sf.TypeID))
	if !ok {
		return datastructure.FeatureValueBuffer{}, domain.WrapErrorf(nil, domain.ErrInternal, "unknown type id %d", sf.TypeID)
	}
	buf := datastructure.NewFeatureValueBuffer(t)
	if sf.Present&presentName != 0 {
		buf.Set(datastructure.NameFeatureValue{Name: sf.Name})
	}
	if sf.Present&presentRef != 0 {
		buf.Set(datastructure.RefFeatureValue{Ref: sf.Ref})
	}
	if sf.Present&presentBridge != 0 {
		buf.Set(datastructure.BridgeFeatureValue{})
	}
	if sf.Present&presentRoundabout != 0 {
		buf.Set(datastructure.RoundaboutFeatureValue{})
	}
	if sf.Present&presentClockwise != 0 {
		buf.Set(datastructure.ClockwiseDirectionFeatureValue{})
	}
	if sf.Present&presentDestination != 0 {
		buf.Set(datastructure.DestinationFeatureValue{Destination: sf.Destination})
	}
	if sf.Present&presentMaxSpeed != 0 {
		buf.Set(datastructure.MaxSpeedFeatureValue{MaxSpeed: sf.MaxSpeed})
	}
	if sf.Present&presentLanes != 0 {
		buf.Set(datastructure.LanesFeatureValue{
			Forward:             sf.LanesForward,
			Backward:            sf.LanesBackward,
			TurnForward:         bytesToLaneTurns(sf.TurnForward),
			TurnBackward:        bytesToLaneTurns(sf.TurnBackward),
			DestinationForward:  sf.DestinationForward,
			DestinationBackward: sf.DestinationBackward,
		})
	}
	if sf.Present&presentAccess != 0 {
		buf.Set(datastructure.AccessFeatureValue{Access: sf.Access})
	}
	return buf, nil
}

func laneTurnsToBytes(turns []datastructure.LaneTurn) []uint8 {
	if len(turns) == 0 {
		return nil
	}
	res := make([]uint8, len(turns))
	for i, t := range turns {
		res[i] = uint8(t)
	}
	return res
}

func bytesToLaneTurns(bb []uint8) []datastructure.LaneTurn {
	if len(bb) == 0 {
		return nil
	}
	res := make([]datastructure.LaneTurn, len(bb))
	for i, b := range bb {
		res[i] = datastructure.LaneTurn(b)
	}
	return res
}

func toStoredPoints(points []datastructure.Point) []storedPoint {
	res := make([]storedPoint, len(points))
	for i, p := range points {
		res[i] = storedPoint{Serial: p.Serial, Lat: p.Coord.Lat, Lon: p.Coord.Lon}
	}
	return res
}

func fromStoredPoints(points []storedPoint) []datastructure.Point {
	res := make([]datastructure.Point, len(points))
	for i, p := range points {
		res[i] = datastructure.NewPoint(p.Serial, datastructure.NewCoordinate(p.Lat, p.Lon))
	}
	return res
}

// EncodeWay serializes way with kelindar/binary and compresses it with zstd.
func EncodeWay(way *datastructure.Way) ([]byte, error) {
	return encode(storedWay{
		Features: toStoredFeatures(way.Features),
		Points:   toStoredPoints(way.Nodes),
	})
}

func DecodeWay(tc *datastructure.TypeConfig, offset datastructure.FileOffset, bb []byte) (*datastructure.Way, error) {
	var sw storedWay
	if err := decode(bb, &sw); err != nil {
		return nil, err
	}
	features, err := fromStoredFeatures(tc, sw.Features)
	if err != nil {
		return nil, err
	}
	return &datastructure.Way{
		FileOffset: offset,
		Features:   features,
		Nodes:      fromStoredPoints(sw.Points),
	}, nil
}

func EncodeArea(area *datastructure.Area) ([]byte, error) {
	sa := storedArea{Rings: make([]storedRing, len(area.Rings))}
	for i, r := range area.Rings {
		sa.Rings[i] = storedRing{
			Ring:     r.Ring,
			Features: toStoredFeatures(r.Features),
			Points:   toStoredPoints(r.Nodes),
		}
	}
	return encode(sa)
}

func DecodeArea(tc *datastructure.TypeConfig, offset datastructure.FileOffset, bb []byte) (*datastructure.Area, error) {
	var sa storedArea
	if err := decode(bb, &sa); err != nil {
		return nil, err
	}
	area := &datastructure.Area{FileOffset: offset, Rings: make([]datastructure.Ring, len(sa.Rings))}
	for i, r := range sa.Rings {
		features, err := fromStoredFeatures(tc, r.Features)
		if err != nil {
			return nil, err
		}
		area.Rings[i] = datastructure.Ring{
			Ring:     r.Ring,
			Features: features,
			Nodes:    fromStoredPoints(r.Points),
		}
	}
	return area, nil
}

func EncodeNode(node *datastructure.MapNode) ([]byte, error) {
	return encode(storedNode{
		Features: toStoredFeatures(node.Features),
		Lat:      node.Coord.Lat,
		Lon:      node.Coord.Lon,
	})
}

func DecodeNode(tc *datastructure.TypeConfig, offset datastructure.FileOffset, bb []byte) (*datastructure.MapNode, error) {
	var sn storedNode
	if err := decode(bb, &sn); err != nil {
		return nil, err
	}
	features, err := fromStoredFeatures(tc, sn.Features)
	if err != nil {
		return nil, err
	}
	return &datastructure.MapNode{
		FileOffset: offset,
		Features:   features,
		Coord:      datastructure.NewCoordinate(sn.Lat, sn.Lon),
	}, nil
}

func EncodeTypeConfig(tc *datastructure.TypeConfig) ([]byte, error) {
	types := tc.Types()
	stored := make([]storedTypeInfo, len(types))
	for i, t := range types {
		st := storedTypeInfo{
			ID:          uint16(t.ID),
			Name:        t.Name,
			CanBeWay:    t.CanBeWay,
			CanBeArea:   t.CanBeArea,
			CanBeNode:   t.CanBeNode,
			CanRouteCar: t.CanRouteCar,
			Lanes:       t.Lanes,
			OnewayLanes: t.OnewayLanes,
		}
		for name, ok := range t.Features {
			if ok {
				st.Features = append(st.Features, name)
			}
		}
		stored[i] = st
	}
	return encode(stored)
}

// DecodeTypeConfig registers the stored types in id order, so ids survive the round trip.
func DecodeTypeConfig(bb []byte) (*datastructure.TypeConfig, error) {
	var stored []storedTypeInfo
	if err := decode(bb, &stored); err != nil {
		return nil, err
	}
	tc := datastructure.NewTypeConfig()
	for i, st := range stored {
		t := datastructure.NewTypeInfo(st.Name)
		t.CanBeWay = st.CanBeWay
		t.CanBeArea = st.CanBeArea
		t.CanBeNode = st.CanBeNode
		t.CanRouteCar = st.CanRouteCar
		t.Lanes = st.Lanes
		t.OnewayLanes = st.OnewayLanes
		for _, f := range st.Features {
			t.AddFeature(f)
		}
		if registered := tc.RegisterType(t); uint16(registered.ID) != st.ID {
			return nil, domain.WrapErrorf(nil, domain.ErrInternal, "type %q stored at position %d has id %d", st.Name, i, st.ID)
		}
	}
	return tc, nil
}

func encode(v interface{}) ([]byte, error) {
	bb, err := binary.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Compress(bb)
}

func decode(bbCompressed []byte, v interface{}) error {
	bb, err := Decompress(bbCompressed)
	if err != nil {
		return err
	}
	return binary.Unmarshal(bb, v)
}

func Compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func Decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
