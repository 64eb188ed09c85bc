/*
NAME
  encoder.go

DESCRIPTION
  encoder.go implements the two MOT carriage mode encoders: header mode,
  which emits an interleaved header and body datagroup sequence per
  object, and directory mode, which emits one aggregated directory
  datagroup ahead of every object's body datagroups.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mot

import (
	"github.com/ausocean/dabmsc/mot/segment"
	"github.com/ausocean/dabmsc/mot/transport"
	"github.com/ausocean/dabmsc/mot/wire"
)

// coreHeaderSize is the fixed portion of a MOT object header, before
// any extension parameters.
const coreHeaderSize = 7

// buildCoreHeader packs the 7-byte core MOT header: BodySize (28-bit),
// HeaderSize (13-bit, the total header size including extensions),
// ContentType (6-bit) and ContentSubType (9-bit).
func buildCoreHeader(bodySize, headerSize int, ct ContentType) ([]byte, error) {
	if bodySize < 0 || bodySize > 1<<28-1 {
		return nil, &wire.InvalidArgumentError{Field: "bodySize", Reason: "does not fit in 28 bits"}
	}
	if headerSize < 0 || headerSize > 1<<13-1 {
		return nil, &wire.InvalidArgumentError{Field: "headerSize", Reason: "does not fit in 13 bits"}
	}
	if ct.Type > 0x3F {
		return nil, &wire.InvalidArgumentError{Field: "ContentType.Type", Reason: "does not fit in 6 bits"}
	}
	if ct.SubType > 0x1FF {
		return nil, &wire.InvalidArgumentError{Field: "ContentType.SubType", Reason: "does not fit in 9 bits"}
	}

	acc := uint64(bodySize&0x0FFFFFFF)<<28 |
		uint64(headerSize&0x1FFF)<<15 |
		uint64(ct.Type&0x3F)<<9 |
		uint64(ct.SubType & 0x1FF)

	buf := make([]byte, coreHeaderSize)
	for i := range buf {
		buf[i] = byte(acc >> (48 - 8*i))
	}
	return buf, nil
}

// concatParameters returns the concatenated, already-encoded bytes of
// a header/directory parameter list.
func concatParameters(params []HeaderParameter) []byte {
	var out []byte
	for _, p := range params {
		out = append(out, p.Encode()...)
	}
	return out
}

func concatDirectoryParameters(params []DirectoryParameter) []byte {
	var out []byte
	for _, p := range params {
		out = append(out, p.Encode()...)
	}
	return out
}

// objectDatagroups builds the segmented header and body datagroups for
// a single object, sharing the object's own TransportID.
func objectDatagroups(obj Object, strategy segment.Strategy) ([]Datagroup, error) {
	ext := concatParameters(obj.Parameters())
	core, err := buildCoreHeader(len(obj.Body()), coreHeaderSize+len(ext), obj.ContentType())
	if err != nil {
		return nil, err
	}
	headerBytes := append(core, ext...)

	headerSegments, err := segment.Segment(headerBytes, strategy)
	if err != nil {
		return nil, err
	}
	bodySegments, err := segment.Segment(obj.Body(), strategy)
	if err != nil {
		return nil, err
	}

	var out []Datagroup
	for i, seg := range headerSegments {
		out = append(out, Datagroup{
			TransportID:  obj.TransportID(),
			Type:         Header,
			Data:         seg,
			SegmentIndex: uint16(i),
			Continuity:   uint8(i % 16),
			Last:         i == len(headerSegments)-1,
		})
	}
	for i, seg := range bodySegments {
		out = append(out, Datagroup{
			TransportID:  obj.TransportID(),
			Type:         Body,
			Data:         seg,
			SegmentIndex: uint16(i),
			Continuity:   uint8(i % 16),
			Last:         i == len(bodySegments)-1,
		})
	}
	return out, nil
}

// EncodeHeaderMode implements header-mode MOT carriage: for every
// object, a header datagroup series followed by a body datagroup
// series, both under the object's own TransportID. Every object is
// encoded; an early-return after the first object would silently drop
// the rest of the carousel and is not reproduced here.
func EncodeHeaderMode(objects []Object, strategy segment.Strategy) ([]Datagroup, error) {
	var out []Datagroup
	for _, obj := range objects {
		datagroups, err := objectDatagroups(obj, strategy)
		if err != nil {
			return nil, err
		}
		out = append(out, datagroups...)
	}
	return out, nil
}

// directoryHeaderSize is the fixed 13-byte directory header.
const directoryHeaderSize = 13

// writeBits ORs the low width bits of value into buf starting at
// bitOffset, most-significant-bit first, without disturbing bits
// outside [bitOffset, bitOffset+width).
func writeBits(buf []byte, bitOffset, width int, value uint64) {
	for i := 0; i < width; i++ {
		bit := (value >> uint(width-1-i)) & 1
		if bit == 0 {
			continue
		}
		pos := bitOffset + i
		buf[pos/8] |= 1 << uint(7-pos%8)
	}
}

// buildDirectoryHeader packs the 13-byte MOT directory header.
func buildDirectoryHeader(directorySize, numberOfObjects, extensionLength int) ([]byte, error) {
	if directorySize < 0 || directorySize > 1<<30-1 {
		return nil, &wire.InvalidArgumentError{Field: "directorySize", Reason: "does not fit in 30 bits"}
	}
	if numberOfObjects < 0 || numberOfObjects > 0xFFFF {
		return nil, &wire.InvalidArgumentError{Field: "numberOfObjects", Reason: "does not fit in 16 bits"}
	}
	if extensionLength < 0 || extensionLength > 0xFFFF {
		return nil, &wire.InvalidArgumentError{Field: "extensionLength", Reason: "does not fit in 16 bits"}
	}

	buf := make([]byte, directoryHeaderSize)
	writeBits(buf, 0, 1, 0)                          // CompressionFlag
	writeBits(buf, 1, 1, 0)                          // RFU
	writeBits(buf, 2, 30, uint64(directorySize))     // DirectorySize
	writeBits(buf, 32, 16, uint64(numberOfObjects))  // NumberOfObjects
	writeBits(buf, 48, 24, 0)                        // DataCarouselPeriod, undefined
	writeBits(buf, 72, 3, 0)                          // RFU
	writeBits(buf, 75, 13, 0)                          // SegmentSize, variable
	writeBits(buf, 88, 16, uint64(extensionLength)) // DirectoryExtensionLength
	return buf, nil
}

// EncodeDirectoryMode implements directory-mode MOT carriage: one
// aggregated directory datagroup series, carrying a transport ID drawn
// from allocator that differs from every object's TransportID, followed
// by every object's body datagroup series under the object's own
// TransportID.
func EncodeDirectoryMode(objects []Object, params []DirectoryParameter, strategy segment.Strategy, allocator transport.Allocator) ([]Datagroup, error) {
	var entries []byte
	for _, obj := range objects {
		ext := concatParameters(obj.Parameters())
		core, err := buildCoreHeader(len(obj.Body()), coreHeaderSize+len(ext), obj.ContentType())
		if err != nil {
			return nil, err
		}
		entries = append(entries, byte(obj.TransportID()>>8), byte(obj.TransportID()))
		entries = append(entries, core...)
		entries = append(entries, ext...)
	}

	paramBytes := concatDirectoryParameters(params)
	directorySize := directoryHeaderSize + len(paramBytes) + len(entries)

	header, err := buildDirectoryHeader(directorySize, len(objects), len(paramBytes))
	if err != nil {
		return nil, err
	}

	directoryBytes := append(header, paramBytes...)
	directoryBytes = append(directoryBytes, entries...)

	directorySegments, err := segment.Segment(directoryBytes, strategy)
	if err != nil {
		return nil, err
	}

	objectIDs := make(map[uint16]bool, len(objects))
	for _, obj := range objects {
		objectIDs[obj.TransportID()] = true
	}
	directoryTransportID := allocator.Next()
	for objectIDs[directoryTransportID] {
		directoryTransportID = allocator.Next()
	}

	var out []Datagroup
	for i, seg := range directorySegments {
		out = append(out, Datagroup{
			TransportID:  directoryTransportID,
			Type:         DirectoryUncompressed,
			Data:         seg,
			SegmentIndex: uint16(i),
			Continuity:   uint8(i % 16),
			Last:         i == len(directorySegments)-1,
		})
	}

	for _, obj := range objects {
		bodySegments, err := segment.Segment(obj.Body(), strategy)
		if err != nil {
			return nil, err
		}
		for i, seg := range bodySegments {
			out = append(out, Datagroup{
				TransportID:  obj.TransportID(),
				Type:         Body,
				Data:         seg,
				SegmentIndex: uint16(i),
				Continuity:   uint8(i % 16),
				Last:         i == len(bodySegments)-1,
			})
		}
	}
	return out, nil
}
