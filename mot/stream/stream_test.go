/*
NAME
  stream_test.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stream

import (
	"bytes"
	"testing"

	"github.com/ausocean/dabmsc/mot"
	"github.com/ausocean/dabmsc/mot/packet"
	"github.com/ausocean/dabmsc/mot/segment"
	"github.com/stretchr/testify/require"
)

func encodeDatagroup(t *testing.T, transportID uint16, segmentIndex uint16, last bool) []byte {
	t.Helper()
	dg := mot.Datagroup{
		TransportID:  transportID,
		Type:         mot.Body,
		Data:         append([]byte{0x00, 0x04}, 1, 2, 3, 4),
		SegmentIndex: segmentIndex,
		Last:         last,
	}
	b, err := dg.Bytes()
	require.NoError(t, err)
	return b
}

func TestDatagroupDecoderBytes(t *testing.T) {
	a := encodeDatagroup(t, 10, 0, true)
	b := encodeDatagroup(t, 20, 0, true)

	dec := NewDatagroupDecoderBytes(append(append([]byte{}, a...), b...))

	first, ok := dec.Next()
	require.True(t, ok)
	require.Equal(t, uint16(10), first.TransportID)

	second, ok := dec.Next()
	require.True(t, ok)
	require.Equal(t, uint16(20), second.TransportID)

	_, ok = dec.Next()
	require.False(t, ok)
}

// TestDatagroupDecoderBytesResync reproduces the resync property: two
// valid datagroups with one spurious byte inserted between them yield
// both datagroups with resync enabled, firing exactly one error
// callback (the header starting at the spurious byte is rejected).
func TestDatagroupDecoderBytesResync(t *testing.T) {
	a := encodeDatagroup(t, 10, 0, true)
	b := encodeDatagroup(t, 20, 0, true)

	stream := append(append([]byte{}, a...), 0xFF)
	stream = append(stream, b...)

	var errCount int
	dec := NewDatagroupDecoderBytes(stream,
		WithResync(true),
		WithErrorCallback(func(error) { errCount++ }),
	)

	var got []uint16
	for {
		dg, ok := dec.Next()
		if !ok {
			break
		}
		got = append(got, dg.TransportID)
	}

	require.Equal(t, []uint16{10, 20}, got)
	require.Equal(t, 1, errCount)
}

func TestDatagroupDecoderReader(t *testing.T) {
	a := encodeDatagroup(t, 1, 0, true)
	b := encodeDatagroup(t, 2, 0, true)

	r := bytes.NewReader(append(append([]byte{}, a...), b...))
	dec := NewDatagroupDecoderReader(r)

	var ids []uint16
	for {
		dg, ok := dec.Next()
		if !ok {
			break
		}
		ids = append(ids, dg.TransportID)
	}
	require.Equal(t, []uint16{1, 2}, ids)
}

func TestDatagroupDecoderPackets(t *testing.T) {
	strategy := segment.NewConstantSegmentSize()
	obj := mot.NewObject(make([]byte, 200), 5, mot.ContentType{})
	datagroups, err := mot.EncodeHeaderMode([]mot.Object{obj}, strategy)
	require.NoError(t, err)

	var encoded [][]byte
	for _, dg := range datagroups {
		b, err := dg.Bytes()
		require.NoError(t, err)
		encoded = append(encoded, b)
	}

	packets, err := packet.EncodePackets(encoded, 1, 96)
	require.NoError(t, err)

	i := 0
	src := func() (packet.Packet, bool) {
		if i >= len(packets) {
			return packet.Packet{}, false
		}
		p := packets[i]
		i++
		return p, true
	}

	dec := NewDatagroupDecoderPackets(src)
	var got []mot.Datagroup
	for {
		dg, ok := dec.Next()
		if !ok {
			break
		}
		got = append(got, dg)
	}

	require.Equal(t, len(datagroups), len(got))
	for i, dg := range got {
		require.Equal(t, datagroups[i], dg)
	}
}

func TestPacketDecoderBytes(t *testing.T) {
	p1 := packet.Packet{Size: 24, Address: 1, Data: []byte{1, 2}, First: true, Last: false, Index: 0}
	p2 := packet.Packet{Size: 24, Address: 1, Data: []byte{3, 4}, First: false, Last: true, Index: 1}

	b1, err := p1.Bytes()
	require.NoError(t, err)
	b2, err := p2.Bytes()
	require.NoError(t, err)

	dec := NewPacketDecoderBytes(append(b1, b2...))

	got1, ok := dec.Next()
	require.True(t, ok)
	require.Equal(t, p1, got1)

	got2, ok := dec.Next()
	require.True(t, ok)
	require.Equal(t, p2, got2)

	_, ok = dec.Next()
	require.False(t, ok)
}
