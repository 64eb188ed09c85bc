/*
NAME
  datagroup.go

DESCRIPTION
  datagroup.go implements the three datagroup stream decoders: from a
  byte slice, from an io.Reader, and from an upstream sequence of
  already-decoded packets.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stream

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ausocean/dabmsc/mot"
	"github.com/ausocean/dabmsc/mot/packet"
	"github.com/ausocean/dabmsc/mot/wire"
)

// minDatagroupHeader is the fewest bytes that must be present before a
// datagroup's declared frame size can even be read.
const minDatagroupHeader = 9

// DatagroupDecoder is a pull iterator over a sequence of datagroups.
// Call Next repeatedly until it reports false; dropping the decoder
// (simply ceasing to call Next) is how a consumer cancels.
type DatagroupDecoder struct {
	cfg  *config
	next func() (mot.Datagroup, bool)
}

// Next advances the decoder and returns the next datagroup, or false
// once the underlying source is exhausted.
func (d *DatagroupDecoder) Next() (mot.Datagroup, bool) {
	return d.next()
}

// NewDatagroupDecoderBytes decodes datagroups from a fixed byte slice.
func NewDatagroupDecoderBytes(data []byte, opts ...Option) *DatagroupDecoder {
	cfg := newConfig(opts)
	pos := 0

	next := func() (mot.Datagroup, bool) {
		for pos < len(data) {
			dg, err := mot.DatagroupFromBytes(data[pos:])
			if err == nil {
				cfg.logger.Debug("decoded datagroup", "pos", pos, "transportID", dg.TransportID)
				pos += dg.SizeOnWire()
				return dg, true
			}

			switch e := err.(type) {
			case *wire.InvalidCRCError:
				cfg.onError(errors.Wrap(e, "decoding datagroup from byte slice"))
				if cfg.resync {
					cfg.logger.Debug("resyncing after crc mismatch", "pos", pos)
					pos++
					continue
				}
				if size, sizeErr := mot.DatagroupSize(data[pos:]); sizeErr == nil {
					cfg.logger.Debug("skipping frame after crc mismatch", "pos", pos, "size", size)
					pos += size
				} else {
					pos = len(data)
				}
			case *wire.IncompleteError:
				return mot.Datagroup{}, false
			default:
				cfg.onError(errors.Wrap(e, "decoding datagroup from byte slice"))
				if cfg.resync {
					cfg.logger.Debug("resyncing after rejected header", "pos", pos)
					pos++
					continue
				}
				return mot.Datagroup{}, false
			}
		}
		return mot.Datagroup{}, false
	}

	return &DatagroupDecoder{cfg: cfg, next: next}
}

// NewDatagroupDecoderReader decodes datagroups from a streaming
// io.Reader, growing an internal accumulator only as far as needed to
// parse each frame.
func NewDatagroupDecoderReader(r io.Reader, opts ...Option) *DatagroupDecoder {
	cfg := newConfig(opts)
	var buf []byte
	eof := false

	fill := func(n int) bool {
		chunk := make([]byte, 4096)
		for !eof && len(buf) < n {
			read, err := r.Read(chunk)
			if read > 0 {
				buf = append(buf, chunk[:read]...)
			}
			if err != nil {
				eof = true
			}
		}
		return len(buf) >= n
	}

	next := func() (mot.Datagroup, bool) {
		for {
			if !fill(minDatagroupHeader) && len(buf) == 0 {
				return mot.Datagroup{}, false
			}

			dg, err := mot.DatagroupFromBytes(buf)
			if err == nil {
				cfg.logger.Debug("decoded datagroup", "transportID", dg.TransportID)
				buf = buf[dg.SizeOnWire():]
				return dg, true
			}

			switch e := err.(type) {
			case *wire.InvalidCRCError:
				cfg.onError(errors.Wrap(e, "decoding datagroup from reader"))
				if cfg.resync {
					cfg.logger.Debug("resyncing after crc mismatch", "buffered", len(buf))
					buf = buf[1:]
					continue
				}
				if size, sizeErr := mot.DatagroupSize(buf); sizeErr == nil && size <= len(buf) {
					cfg.logger.Debug("skipping frame after crc mismatch", "size", size)
					buf = buf[size:]
				} else {
					buf = nil
				}
			case *wire.IncompleteError:
				if eof {
					return mot.Datagroup{}, false
				}
				cfg.logger.Debug("filling buffer for incomplete frame", "need", e.Need, "have", e.Have)
				if !fill(e.Need) {
					return mot.Datagroup{}, false
				}
			default:
				cfg.onError(errors.Wrap(e, "decoding datagroup from reader"))
				if cfg.resync {
					cfg.logger.Debug("resyncing after rejected header", "buffered", len(buf))
					buf = buf[1:]
					continue
				}
				return mot.Datagroup{}, false
			}
		}
	}

	return &DatagroupDecoder{cfg: cfg, next: next}
}

// PacketSource yields already-decoded packets, one at a time, in the
// order they were received; it returns ok=false once exhausted.
type PacketSource func() (packet.Packet, bool)

// NewDatagroupDecoderPackets reassembles datagroups from an upstream
// sequence of packets, grouping by Address between a First packet
// (inclusive) and the next Last packet for that address (inclusive).
// A decode error on one reassembled datagroup is forwarded to the
// error callback; the decoder keeps consuming packets afterwards.
func NewDatagroupDecoderPackets(src PacketSource, opts ...Option) *DatagroupDecoder {
	cfg := newConfig(opts)
	buffers := make(map[int][]byte)

	next := func() (mot.Datagroup, bool) {
		for {
			pkt, ok := src()
			if !ok {
				return mot.Datagroup{}, false
			}

			if pkt.First {
				cfg.logger.Debug("starting datagroup reassembly", "address", pkt.Address)
				buffers[pkt.Address] = append([]byte(nil), pkt.Data...)
			} else if buf, started := buffers[pkt.Address]; started {
				buffers[pkt.Address] = append(buf, pkt.Data...)
			} else {
				continue // data for an address with no observed First packet
			}

			if !pkt.Last {
				continue
			}

			data := buffers[pkt.Address]
			delete(buffers, pkt.Address)

			dg, err := mot.DatagroupFromBytes(data)
			if err != nil {
				cfg.onError(errors.Wrap(err, "reassembling datagroup from packets"))
				continue
			}
			cfg.logger.Debug("reassembled datagroup from packets", "address", pkt.Address, "transportID", dg.TransportID)
			return dg, true
		}
	}

	return &DatagroupDecoder{cfg: cfg, next: next}
}
