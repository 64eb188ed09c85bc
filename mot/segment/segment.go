/*
NAME
  segment.go

DESCRIPTION
  segment.go implements the segmentation strategies used to split a
  header or body byte stream into data-group-sized segments, and the
  routine that applies a strategy and prepends each segment's 2-byte
  segment header.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package segment splits a byte stream into MOT carriage segments
// under a pluggable sizing policy, and prepends the 2-byte segment
// header (repetition count, segment size) that precedes each segment's
// payload inside its datagroup.
package segment

import "github.com/ausocean/dabmsc/mot/wire"

// DefaultMaxSegmentSize is the maximum segment payload size in bytes,
// bounded by the 13-bit SegmentSize field in the segment header.
const DefaultMaxSegmentSize = 8189

// maxSegmentSize13Bit is the largest value the 13-bit SegmentSize field
// can hold.
const maxSegmentSize13Bit = (1 << 13) - 1

// Strategy decides the size of the next segment to cut from data,
// given the position already reached and the segments emitted so far.
// Implementations are not required to be safe for concurrent use; the
// segmentation core is single-threaded.
type Strategy interface {
	// NextSize returns the suggested maximum size, in bytes, of the
	// next segment to be cut from data at position. segments holds
	// the segments already emitted by this call to Segment.
	NextSize(data []byte, position int, segments [][]byte) int
}

// ConstantSegmentSize yields equally sized segments, apart from a
// possibly smaller final one.
type ConstantSegmentSize struct {
	// MaxSegmentSize is the size returned for every segment. Zero
	// selects DefaultMaxSegmentSize.
	MaxSegmentSize int
}

// NewConstantSegmentSize returns a ConstantSegmentSize using
// DefaultMaxSegmentSize.
func NewConstantSegmentSize() *ConstantSegmentSize {
	return &ConstantSegmentSize{MaxSegmentSize: DefaultMaxSegmentSize}
}

// NextSize implements Strategy.
func (s *ConstantSegmentSize) NextSize(data []byte, position int, segments [][]byte) int {
	if s.MaxSegmentSize <= 0 {
		return DefaultMaxSegmentSize
	}
	return s.MaxSegmentSize
}

// CompletionTrigger chooses segment sizes so that the final segment is
// no larger than TargetFinalSegmentSize, while every earlier segment
// shares one uniform size no larger than MaxSegmentSize. This lets a
// receiver treat completion of the final, small segment as a trigger
// for synchronised playout (e.g. of a slide).
type CompletionTrigger struct {
	TargetFinalSegmentSize int
	MaxSegmentSize         int

	x, y    int
	planned bool
}

// NewCompletionTrigger validates and returns a CompletionTrigger. If
// maxSegmentSize is zero, DefaultMaxSegmentSize is used.
func NewCompletionTrigger(targetFinalSegmentSize, maxSegmentSize int) (*CompletionTrigger, error) {
	if maxSegmentSize <= 0 {
		maxSegmentSize = DefaultMaxSegmentSize
	}
	if targetFinalSegmentSize <= 0 {
		return nil, &wire.InvalidArgumentError{Field: "targetFinalSegmentSize", Reason: "must be greater than zero"}
	}
	if targetFinalSegmentSize > maxSegmentSize {
		return nil, &wire.InvalidArgumentError{Field: "targetFinalSegmentSize", Reason: "must not exceed maxSegmentSize"}
	}
	return &CompletionTrigger{TargetFinalSegmentSize: targetFinalSegmentSize, MaxSegmentSize: maxSegmentSize}, nil
}

// NextSize implements Strategy. The (X, Y) pair described in the
// component design is computed once, on the first call of a Segment
// invocation (identified by position == 0), and cached for every
// subsequent call — the dead-code re-derivation present in the
// original implementation is not reproduced.
func (c *CompletionTrigger) NextSize(data []byte, position int, segments [][]byte) int {
	if position == 0 || !c.planned {
		c.x, c.y = calculateSizes(len(data), c.TargetFinalSegmentSize, c.MaxSegmentSize)
		c.planned = true
	}
	if len(data)-position > c.y {
		return c.x
	}
	return c.y
}

// calculateSizes finds the largest X <= max and Y <= target, Y > 0,
// such that (length - Y + 2) mod X == 0, scanning Y downward from
// target and, for each Y, X downward from max. X == 1 always divides,
// so the search always terminates on the first Y tried (Y == target)
// unless length <= target, in which case the data fits in a single
// final segment and X is never consulted.
func calculateSizes(length, target, max int) (x, y int) {
	if length <= target {
		return max, target
	}
	for y = target; y > 0; y-- {
		for x = max; x > 0; x-- {
			if (length-y+2)%x == 0 {
				return x, y
			}
		}
	}
	return 1, target
}

// Segment splits data into segments under strategy, returning each
// segment as 2-byte segment header || payload. An empty or nil data
// yields a nil slice of segments.
func Segment(data []byte, strategy Strategy) ([][]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var segments [][]byte
	for i := 0; i < len(data); {
		size := strategy.NextSize(data, i, segments)
		if size <= 0 {
			return nil, &wire.InvalidArgumentError{Field: "strategy", Reason: "returned a non-positive segment size"}
		}
		end := i + size
		if end > len(data) {
			end = len(data)
		}
		payload := data[i:end]
		seg, err := header(len(payload))
		if err != nil {
			return nil, err
		}
		seg = append(seg, payload...)
		segments = append(segments, seg)
		i = end
	}
	return segments, nil
}

// header builds the 2-byte segment header: 3-bit RepetitionCount
// (always 0, as segment repetition carousel scheduling is out of
// scope) followed by the 13-bit SegmentSize.
func header(size int) ([]byte, error) {
	if size < 0 || size > maxSegmentSize13Bit {
		return nil, &wire.InvalidArgumentError{Field: "segmentSize", Reason: "does not fit in 13 bits"}
	}
	word := uint16(size) & 0x1FFF // top 3 bits (repetition) are zero
	return []byte{byte(word >> 8), byte(word)}, nil
}

// SegmentSize reads the 13-bit SegmentSize field out of a 2-byte
// segment header, as found at the start of a datagroup's data field.
func SegmentSize(header []byte) int {
	return int(header[0]&0x1F)<<8 | int(header[1])
}
