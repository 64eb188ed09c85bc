/*
NAME
  object.go

DESCRIPTION
  object.go declares the MOT object collaborator contracts this module
  reads from but does not own, plus a minimal in-memory Object used by
  tests and as a convenience for simple callers.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mot implements the MOT (Multimedia Object Transfer) carriage
// layer of DAB: encoding and decoding of MSC data groups, and the
// header-mode/directory-mode encoders that turn a sequence of objects
// into a datagroup stream. It does not interpret object content, carry
// objects over a transport, or choose transport identifiers — those
// are the embedding application's concern.
package mot

// ContentType names a MOT object's type and subtype pair, as carried
// in a header datagroup's core header.
type ContentType struct {
	// Type is the 6-bit MOT ContentType.
	Type uint8
	// SubType is the 9-bit MOT ContentSubType.
	SubType uint16
}

// HeaderParameter is a MOT header extension parameter whose encoded
// bit form is already known to the object providing it; this module
// only concatenates the already-encoded bytes, it does not interpret
// them.
type HeaderParameter interface {
	// Encode returns this parameter's already bit-packed wire form.
	Encode() []byte
}

// DirectoryParameter is a directory-level extension parameter, encoded
// the same way as HeaderParameter. SortedHeaderInformation is one such
// parameter required by directory mode; this module does not implement
// it, as its value is a sort order over the MOT collaborator's own
// objects.
type DirectoryParameter interface {
	Encode() []byte
}

// Object is the collaborator contract for one logical MOT object: its
// body bytes, its transport identifier, its content type, and any
// header extension parameters. Callers supply their own implementation
// wrapping whatever carries the object's real content; NewObject
// returns a ready-made implementation for simple cases and for this
// module's own tests.
type Object interface {
	Body() []byte
	TransportID() uint16
	ContentType() ContentType
	Parameters() []HeaderParameter
}

// simpleObject is the concrete Object used by NewObject.
type simpleObject struct {
	body        []byte
	transportID uint16
	contentType ContentType
	parameters  []HeaderParameter
}

// NewObject returns an Object with no header extension parameters.
// Use WithParameters to attach some.
func NewObject(body []byte, transportID uint16, contentType ContentType) Object {
	return &simpleObject{body: body, transportID: transportID, contentType: contentType}
}

// WithParameters returns a copy of o carrying the given header
// extension parameters.
func WithParameters(o Object, parameters ...HeaderParameter) Object {
	return &simpleObject{
		body:        o.Body(),
		transportID: o.TransportID(),
		contentType: o.ContentType(),
		parameters:  parameters,
	}
}

func (o *simpleObject) Body() []byte               { return o.body }
func (o *simpleObject) TransportID() uint16         { return o.transportID }
func (o *simpleObject) ContentType() ContentType    { return o.contentType }
func (o *simpleObject) Parameters() []HeaderParameter { return o.parameters }
