package bvh

import "errors"

var (
	ErrOverlappingRanges = errors.New("bvh: concurrent build tasks were assigned overlapping ranges")
	ErrSlotOverflow      = errors.New("bvh: subtree exceeded its reserved node slots")
	ErrInvalidTree       = errors.New("bvh: tree validation failed")
)
