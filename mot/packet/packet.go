/*
NAME
  packet.go

DESCRIPTION
  packet.go implements the MSC packet codec, the fixed-size outer
  framing layer that carries datagroup bytes in 24/48/72/96-byte
  packets addressed to a 10-bit subchannel, and the chunking routine
  that splits a sequence of already-encoded datagroups into packets.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package packet implements the MSC packet framing layer: fixed-size,
// CRC-protected, address-routed packets that carry MSC datagroup bytes
// across the MSC transport mechanism.
package packet

import (
	"github.com/ausocean/dabmsc/mot/crc"
	"github.com/ausocean/dabmsc/mot/wire"
)

// headerSize is the fixed 3-byte packet header.
const headerSize = 3

// crcSize is the trailing CRC.
const crcSize = 2

// validSizes enumerates the only packet sizes MSC packetisation
// allows.
var validSizes = map[int]bool{24: true, 48: true, 72: true, 96: true}

// Packet is one MSC packet.
type Packet struct {
	// Size is the total on-wire length: one of 24, 48, 72, 96.
	Size int

	// Address is the 10-bit packet address, 1..1023.
	Address int

	// Data is the useful payload, at most Size-5 bytes.
	Data []byte

	// First and Last mark the beginning and end of the datagroup
	// series this packet belongs to.
	First, Last bool

	// Index is the 2-bit continuity counter.
	Index uint8
}

func sizeCode(size int) (int, error) {
	if !validSizes[size] {
		return 0, &wire.InvalidArgumentError{Field: "Size", Reason: "must be one of 24, 48, 72, 96"}
	}
	return size/24 - 1, nil
}

// Bytes encodes p to its on-wire representation.
func (p Packet) Bytes() ([]byte, error) {
	code, err := sizeCode(p.Size)
	if err != nil {
		return nil, err
	}
	if p.Address < 1 || p.Address > 1023 {
		return nil, &wire.InvalidArgumentError{Field: "Address", Reason: "must be in [1, 1023]"}
	}
	maxData := p.Size - headerSize - crcSize
	if len(p.Data) > maxData {
		return nil, &wire.InvalidArgumentError{Field: "Data", Reason: "exceeds Size-5 bytes"}
	}

	buf := make([]byte, p.Size-crcSize)
	buf[0] = byte(code&0x3)<<6 | (p.Index&0x3)<<4 | boolBit(p.First, 3) | boolBit(p.Last, 2) | byte(p.Address>>8)&0x03
	buf[1] = byte(p.Address)
	buf[2] = byte(len(p.Data) & 0x7F) // CommandFlag = 0 (data)

	copy(buf[headerSize:], p.Data)
	// remaining bytes of buf are already zero (padding).

	sum := crc.Checksum(buf)
	buf = append(buf, byte(sum>>8), byte(sum))
	return buf, nil
}

func boolBit(b bool, shift uint) byte {
	if b {
		return 1 << shift
	}
	return 0
}

// FromBytes decodes one packet from the front of data, which may
// contain trailing bytes belonging to a subsequent packet.
func FromBytes(data []byte) (Packet, error) {
	if len(data) < headerSize {
		return Packet{}, &wire.IncompleteError{Have: len(data)}
	}

	b0 := data[0]
	code := int(b0 >> 6 & 0x3)
	size := (code + 1) * 24

	if len(data) < size {
		return Packet{}, &wire.IncompleteError{Need: size, Have: len(data)}
	}

	b2 := data[2]
	if b2&0x80 != 0 {
		return Packet{}, &wire.UnsupportedFeatureError{Field: "command flag"}
	}

	calculated := crc.Checksum(data[:size-crcSize])
	signalled := uint16(data[size-2])<<8 | uint16(data[size-1])
	if calculated != signalled {
		return Packet{}, &wire.InvalidCRCError{Calculated: calculated, Signalled: signalled}
	}

	address := int(b0&0x03)<<8 | int(data[1])
	usefulLen := int(b2 & 0x7F)

	out := make([]byte, usefulLen)
	copy(out, data[headerSize:headerSize+usefulLen])

	return Packet{
		Size:    size,
		Address: address,
		Data:    out,
		First:   b0&0x08 != 0,
		Last:    b0&0x04 != 0,
		Index:   b0 >> 4 & 0x3,
	}, nil
}

// FrameSize reads the packet length code from the front of data and
// reports the total on-wire size of the packet there, without
// verifying its CRC.
func FrameSize(data []byte) (int, error) {
	if len(data) < 1 {
		return 0, &wire.IncompleteError{Have: len(data)}
	}
	code := int(data[0] >> 6 & 0x3)
	return (code + 1) * 24, nil
}

// EncodePackets splits the already-encoded bytes of each datagroup in
// datagroups into packets of the given size, addressed to address.
// Packets are cut per datagroup — a new datagroup always starts a
// fresh First packet — while the continuity index rolls, modulo 4,
// across the whole call, matching a single subchannel's packet stream.
func EncodePackets(datagroups [][]byte, address, size int) ([]Packet, error) {
	if !validSizes[size] {
		return nil, &wire.InvalidArgumentError{Field: "size", Reason: "must be one of 24, 48, 72, 96"}
	}
	chunkSize := size - headerSize - crcSize

	var out []Packet
	var index uint8
	for _, dg := range datagroups {
		if len(dg) == 0 {
			continue
		}
		for i := 0; i < len(dg); i += chunkSize {
			end := i + chunkSize
			if end > len(dg) {
				end = len(dg)
			}
			out = append(out, Packet{
				Size:    size,
				Address: address,
				Data:    dg[i:end],
				First:   i == 0,
				Last:    end == len(dg),
				Index:   index,
			})
			index = (index + 1) % 4
		}
	}
	return out, nil
}
