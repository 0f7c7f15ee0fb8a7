package datastructure

import "fmt"

type DatabaseID uint32

type FileOffset uint64

type RefType uint8

const (
	RefNone RefType = iota
	RefNode
	RefArea
	RefWay
)

func (t RefType) String() string {
	switch t {
	case RefNode:
		return "Node"
	case RefArea:
		return "Area"
	case RefWay:
		return "Way"
	default:
		return "None"
	}
}

// ObjectFileRef points to a stored object of one database.
type ObjectFileRef struct {
	Offset FileOffset `json:"offset"`
	Type   RefType    `json:"type"`
}

func NewObjectFileRef(offset FileOffset, refType RefType) ObjectFileRef {
	return ObjectFileRef{Offset: offset, Type: refType}
}

func WayRef(offset FileOffset) ObjectFileRef {
	return ObjectFileRef{Offset: offset, Type: RefWay}
}

func AreaRef(offset FileOffset) ObjectFileRef {
	return ObjectFileRef{Offset: offset, Type: RefArea}
}

func NodeRef(offset FileOffset) ObjectFileRef {
	return ObjectFileRef{Offset: offset, Type: RefNode}
}

func (o ObjectFileRef) Valid() bool {
	return o.Type != RefNone
}

func (o ObjectFileRef) IsWay() bool {
	return o.Type == RefWay
}

func (o ObjectFileRef) IsArea() bool {
	return o.Type == RefArea
}

func (o ObjectFileRef) IsNode() bool {
	return o.Type == RefNode
}

func (o ObjectFileRef) String() string {
	return fmt.Sprintf("%s %d", o.Type, o.Offset)
}

// DBFileOffset is the compound key of an object when routing over more than one database.
type DBFileOffset struct {
	Database DatabaseID
	Offset   FileOffset
}

func NewDBFileOffset(db DatabaseID, offset FileOffset) DBFileOffset {
	return DBFileOffset{Database: db, Offset: offset}
}

func (d DBFileOffset) String() string {
	return fmt.Sprintf("%d:%d", d.Database, d.Offset)
}
