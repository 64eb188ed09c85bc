/*
NAME
  wire.go

DESCRIPTION
  wire.go defines the error taxonomy shared by the datagroup and packet
  framing layers of DAB MOT/MSC carriage. Both layers fail the same
  four ways, so the error types live in one place rather than being
  duplicated per codec.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package wire holds the error types shared by every codec in the MOT
// carriage module: datagroups and packets fail the same four ways, and
// segmentation reports its argument errors with InvalidArgumentError.
package wire

import "fmt"

// InvalidCRCError is returned when a decoded frame's signalled CRC does
// not match the CRC calculated over its preceding bytes.
type InvalidCRCError struct {
	Calculated uint16
	Signalled  uint16
}

func (e *InvalidCRCError) Error() string {
	return fmt.Sprintf("mot: invalid crc: calculated 0x%04x, signalled 0x%04x", e.Calculated, e.Signalled)
}

// IncompleteError is returned when a buffer ends before a full frame
// could be parsed from it.
type IncompleteError struct {
	// Need is the number of bytes required to complete the frame, if
	// known. Zero means only the header could not be read yet.
	Need int
	Have int
}

func (e *IncompleteError) Error() string {
	if e.Need > 0 {
		return fmt.Sprintf("mot: incomplete frame: have %d bytes, need %d", e.Have, e.Need)
	}
	return fmt.Sprintf("mot: incomplete frame: have %d bytes, header not yet available", e.Have)
}

// UnsupportedFeatureError is returned by a decoder when it encounters a
// flag or field value this module does not implement.
type UnsupportedFeatureError struct {
	Field string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("mot: unsupported feature: %s", e.Field)
}

// InvalidArgumentError is returned for caller-side misuse: out of range
// arguments supplied to an encoder.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("mot: invalid argument %s: %s", e.Field, e.Reason)
}
