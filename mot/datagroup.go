/*
NAME
  datagroup.go

DESCRIPTION
  datagroup.go implements the MSC data group codec: the inner framing
  unit that carries one segment of a header or body stream, protected
  by a 16-bit CRC and tagged with a transport identifier.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mot

import (
	"github.com/ausocean/dabmsc/mot/crc"
	"github.com/ausocean/dabmsc/mot/segment"
	"github.com/ausocean/dabmsc/mot/wire"
)

// DatagroupType identifies the content of a datagroup.
type DatagroupType uint8

// Datagroup types defined by MOT carriage. Extension-field decoding
// and the compressed directory's compression step are both external
// to this module; DirectoryCompressed is carried as a type value only.
const (
	Header                DatagroupType = 3
	Body                  DatagroupType = 4
	DirectoryUncompressed DatagroupType = 6
	DirectoryCompressed   DatagroupType = 7
)

func (t DatagroupType) valid() bool {
	switch t {
	case Header, Body, DirectoryUncompressed, DirectoryCompressed:
		return true
	default:
		return false
	}
}

// datagroupHeaderSize is the fixed 7-byte header preceding a
// datagroup's segment payload.
const datagroupHeaderSize = 7

// datagroupCRCSize is the trailing CRC.
const datagroupCRCSize = 2

// Datagroup is one MSC data group: a transport-tagged, CRC-protected,
// segment-carrying frame.
type Datagroup struct {
	TransportID uint16
	Type        DatagroupType

	// Data is the segment payload, including its own 2-byte segment
	// header, as produced by package segment.
	Data []byte

	// SegmentIndex is a 15-bit unsigned segment number.
	SegmentIndex uint16

	// Continuity is a 4-bit counter the caller maintains; out-of-range
	// values are masked defensively on encode rather than rejected.
	Continuity uint8

	// Repetition is a 4-bit repetition count; this module always
	// constructs datagroups with Repetition 0 (segment repetition
	// carousel scheduling is out of scope), but a decoded value is
	// preserved verbatim.
	Repetition uint8

	// Last marks the final segment of the logical stream this
	// datagroup belongs to.
	Last bool
}

// Equal reports whether d and other identify the same logical
// datagroup: matching TransportID, Type and SegmentIndex. This is the
// equality used to track carousel membership; it does not compare
// Data, Continuity, Repetition or Last.
func (d Datagroup) Equal(other Datagroup) bool {
	return d.TransportID == other.TransportID && d.Type == other.Type && d.SegmentIndex == other.SegmentIndex
}

// SizeOnWire is the total number of bytes this datagroup occupies on
// the wire once encoded.
func (d Datagroup) SizeOnWire() int {
	return datagroupHeaderSize + len(d.Data) + datagroupCRCSize
}

// Bytes encodes d to its on-wire representation.
func (d Datagroup) Bytes() ([]byte, error) {
	if !d.Type.valid() {
		return nil, &wire.InvalidArgumentError{Field: "Type", Reason: "not a recognised datagroup type"}
	}
	if d.SegmentIndex > 0x7FFF {
		return nil, &wire.InvalidArgumentError{Field: "SegmentIndex", Reason: "does not fit in 15 bits"}
	}

	buf := make([]byte, datagroupHeaderSize, datagroupHeaderSize+len(d.Data)+datagroupCRCSize)

	buf[0] = 0x70 | byte(d.Type)&0x0F // ExtFlag=0, CrcFlag=1, SegFlag=1, UAFlag=1
	buf[1] = (d.Continuity&0x0F)<<4 | d.Repetition&0x0F

	segIndex := d.SegmentIndex & 0x7FFF
	buf[2] = byte(segIndex >> 8 & 0x7F)
	if d.Last {
		buf[2] |= 0x80
	}
	buf[3] = byte(segIndex)

	buf[4] = 0x12 // RFA=000, TransportIdFlag=1, LengthIndicator=2
	buf[5] = byte(d.TransportID >> 8)
	buf[6] = byte(d.TransportID)

	buf = append(buf, d.Data...)

	sum := crc.Checksum(buf)
	buf = append(buf, byte(sum>>8), byte(sum))
	return buf, nil
}

// DatagroupFromBytes decodes one datagroup from the front of data,
// which may contain trailing bytes belonging to a subsequent frame.
func DatagroupFromBytes(data []byte) (Datagroup, error) {
	if len(data) < datagroupHeaderSize+2 {
		return Datagroup{}, &wire.IncompleteError{Have: len(data)}
	}

	b0 := data[0]
	if b0&0x80 != 0 {
		return Datagroup{}, &wire.UnsupportedFeatureError{Field: "extension flag"}
	}
	if b0&0x40 == 0 {
		return Datagroup{}, &wire.UnsupportedFeatureError{Field: "crc flag"}
	}
	if b0&0x20 == 0 {
		return Datagroup{}, &wire.UnsupportedFeatureError{Field: "segment flag"}
	}
	if b0&0x10 == 0 {
		return Datagroup{}, &wire.UnsupportedFeatureError{Field: "user access flag"}
	}
	dgType := DatagroupType(b0 & 0x0F)
	if !dgType.valid() {
		return Datagroup{}, &wire.UnsupportedFeatureError{Field: "datagroup type"}
	}

	continuity := data[1] >> 4 & 0x0F
	repetition := data[1] & 0x0F

	last := data[2]&0x80 != 0
	segIndex := uint16(data[2]&0x7F)<<8 | uint16(data[3])

	b4 := data[4]
	if b4&0x10 == 0 {
		return Datagroup{}, &wire.UnsupportedFeatureError{Field: "transport id flag"}
	}
	if b4&0x0F != 2 {
		return Datagroup{}, &wire.UnsupportedFeatureError{Field: "length indicator"}
	}

	transportID := uint16(data[5])<<8 | uint16(data[6])

	segmentSize := segment.SegmentSize(data[datagroupHeaderSize : datagroupHeaderSize+2])
	total := datagroupHeaderSize + 2 + segmentSize + datagroupCRCSize
	if len(data) < total {
		return Datagroup{}, &wire.IncompleteError{Need: total, Have: len(data)}
	}

	calculated := crc.Checksum(data[:total-datagroupCRCSize])
	signalled := uint16(data[total-2])<<8 | uint16(data[total-1])
	if calculated != signalled {
		return Datagroup{}, &wire.InvalidCRCError{Calculated: calculated, Signalled: signalled}
	}

	payload := make([]byte, 2+segmentSize)
	copy(payload, data[datagroupHeaderSize:datagroupHeaderSize+2+segmentSize])

	return Datagroup{
		TransportID:  transportID,
		Type:         dgType,
		Data:         payload,
		SegmentIndex: segIndex,
		Continuity:   continuity,
		Repetition:   repetition,
		Last:         last,
	}, nil
}

// DatagroupSize reads just enough of data's header to report the total
// on-wire size of the frame at its front, without verifying the CRC.
// Streaming decoders use this to skip a declared-size frame after a
// CRC mismatch when resync is disabled.
func DatagroupSize(data []byte) (int, error) {
	if len(data) < datagroupHeaderSize+2 {
		return 0, &wire.IncompleteError{Have: len(data)}
	}
	segmentSize := segment.SegmentSize(data[datagroupHeaderSize : datagroupHeaderSize+2])
	return datagroupHeaderSize + 2 + segmentSize + datagroupCRCSize, nil
}
