package concurrent

import (
	"lintang/routedescription/pkg/datastructure"
)

// SaveObjectJobItem satu object map yang mau di encode lalu disimpan ke pebble.
// Cuma salah satu dari Way, Area, Node yang diisi.
type SaveObjectJobItem struct {
	Key  []byte
	Way  *datastructure.Way
	Area *datastructure.Area
	Node *datastructure.MapNode
}

type KeyValue struct {
	Key   []byte
	Value []byte
	Err   error
}

type JobI interface {
	[]int32 | SaveObjectJobItem
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}

type JobFunc[T JobI, G any] func(job T) G
