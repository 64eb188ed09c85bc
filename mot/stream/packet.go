/*
NAME
  packet.go

DESCRIPTION
  packet.go implements the packet stream decoders: from a byte slice
  and from an io.Reader.

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

	"github.com/ausocean/dabmsc/mot/packet"
	"github.com/ausocean/dabmsc/mot/wire"
)

// minPacketHeader is the fewest bytes needed to read a packet's
// declared size.
const minPacketHeader = 3

// PacketDecoder is a pull iterator over a sequence of packets.
type PacketDecoder struct {
	cfg  *config
	next func() (packet.Packet, bool)
}

// Next advances the decoder and returns the next packet, or false once
// the underlying source is exhausted.
func (d *PacketDecoder) Next() (packet.Packet, bool) {
	return d.next()
}

// NewPacketDecoderBytes decodes packets from a fixed byte slice.
func NewPacketDecoderBytes(data []byte, opts ...Option) *PacketDecoder {
	cfg := newConfig(opts)
	pos := 0

	next := func() (packet.Packet, bool) {
		for pos < len(data) {
			pkt, err := packet.FromBytes(data[pos:])
			if err == nil {
				cfg.logger.Debug("decoded packet", "pos", pos, "address", pkt.Address)
				pos += pkt.Size
				return pkt, true
			}

			switch e := err.(type) {
			case *wire.InvalidCRCError:
				cfg.onError(errors.Wrap(e, "decoding packet from byte slice"))
				if cfg.resync {
					cfg.logger.Debug("resyncing after crc mismatch", "pos", pos)
					pos++
					continue
				}
				if size, sizeErr := packet.FrameSize(data[pos:]); sizeErr == nil {
					cfg.logger.Debug("skipping frame after crc mismatch", "pos", pos, "size", size)
					pos += size
				} else {
					pos = len(data)
				}
			case *wire.IncompleteError:
				return packet.Packet{}, false
			default:
				cfg.onError(errors.Wrap(e, "decoding packet from byte slice"))
				return packet.Packet{}, false
			}
		}
		return packet.Packet{}, false
	}

	return &PacketDecoder{cfg: cfg, next: next}
}

// NewPacketDecoderReader decodes packets from a streaming io.Reader.
func NewPacketDecoderReader(r io.Reader, opts ...Option) *PacketDecoder {
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

	next := func() (packet.Packet, bool) {
		for {
			if !fill(minPacketHeader) && len(buf) == 0 {
				return packet.Packet{}, false
			}

			pkt, err := packet.FromBytes(buf)
			if err == nil {
				cfg.logger.Debug("decoded packet", "address", pkt.Address)
				buf = buf[pkt.Size:]
				return pkt, true
			}

			switch e := err.(type) {
			case *wire.InvalidCRCError:
				cfg.onError(errors.Wrap(e, "decoding packet from reader"))
				if cfg.resync {
					cfg.logger.Debug("resyncing after crc mismatch", "buffered", len(buf))
					buf = buf[1:]
					continue
				}
				if size, sizeErr := packet.FrameSize(buf); sizeErr == nil && size <= len(buf) {
					cfg.logger.Debug("skipping frame after crc mismatch", "size", size)
					buf = buf[size:]
				} else {
					buf = nil
				}
			case *wire.IncompleteError:
				if eof {
					return packet.Packet{}, false
				}
				cfg.logger.Debug("filling buffer for incomplete frame", "need", e.Need, "have", e.Have)
				if !fill(e.Need) {
					return packet.Packet{}, false
				}
			default:
				cfg.onError(errors.Wrap(e, "decoding packet from reader"))
				return packet.Packet{}, false
			}
		}
	}

	return &PacketDecoder{cfg: cfg, next: next}
}
