/*
NAME
  packet_test.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package packet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"pgregory.net/rapid"
)

func TestPacketRoundTrip(t *testing.T) {
	want := Packet{
		Size:    96,
		Address: 1,
		Data:    []byte{1, 2, 3, 4, 5},
		First:   true,
		Last:    false,
		Index:   2,
	}
	encoded, err := want.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(encoded) != 96 {
		t.Fatalf("encoded length = %d, want 96", len(encoded))
	}
	got, err := FromBytes(encoded)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPacketBytesRejectsBadAddress(t *testing.T) {
	p := Packet{Size: 24, Address: 0}
	if _, err := p.Bytes(); err == nil {
		t.Fatal("expected an error for address 0")
	}
	p.Address = 1024
	if _, err := p.Bytes(); err == nil {
		t.Fatal("expected an error for address 1024")
	}
}

func TestPacketBytesRejectsBadSize(t *testing.T) {
	p := Packet{Size: 32, Address: 1}
	if _, err := p.Bytes(); err == nil {
		t.Fatal("expected an error for a non-standard packet size")
	}
}

// TestEncodePacketsPerDatagramChunking reproduces the tuple shape of
// the packet-round-trip scenario: a small, self-contained first
// datagroup (one packet, first and last both set) followed by a
// larger datagroup that spans two packets of the configured chunk
// size, with the continuity index rolling across both datagroups.
func TestEncodePacketsPerDatagramChunking(t *testing.T) {
	const size = 96
	chunkSize := size - headerSize - crcSize // 91

	first := make([]byte, 31)
	second := make([]byte, 139) // 91 + 48

	packets, err := EncodePackets([][]byte{first, second}, 1, size)
	if err != nil {
		t.Fatalf("EncodePackets: %v", err)
	}

	type tuple struct {
		size, address       int
		first, last         bool
		index, usefulLength int
	}
	want := []tuple{
		{size, 1, true, true, 0, 31},
		{size, 1, true, false, 1, chunkSize},
		{size, 1, false, true, 2, 48},
	}

	if len(packets) != len(want) {
		t.Fatalf("got %d packets, want %d", len(packets), len(want))
	}
	for i, p := range packets {
		got := tuple{p.Size, p.Address, p.First, p.Last, int(p.Index), len(p.Data)}
		if got != want[i] {
			t.Errorf("packet %d = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestPacketRoundTripProperty(t *testing.T) {
	sizes := []int{24, 48, 72, 96}
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.SampledFrom(sizes).Draw(rt, "size")
		maxData := size - headerSize - crcSize
		want := Packet{
			Size:    size,
			Address: rapid.IntRange(1, 1023).Draw(rt, "address"),
			Data:    rapid.SliceOfN(rapid.Byte(), 0, maxData).Draw(rt, "data"),
			First:   rapid.Bool().Draw(rt, "first"),
			Last:    rapid.Bool().Draw(rt, "last"),
			Index:   uint8(rapid.IntRange(0, 3).Draw(rt, "index")),
		}

		encoded, err := want.Bytes()
		if err != nil {
			rt.Fatalf("Bytes: %v", err)
		}
		got, err := FromBytes(encoded)
		if err != nil {
			rt.Fatalf("FromBytes: %v", err)
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			rt.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}
