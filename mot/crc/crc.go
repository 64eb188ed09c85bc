/*
NAME
  crc.go

DESCRIPTION
  crc.go provides the CRC-16 routine shared by the datagroup and packet
  codecs. Both framing layers in DAB MOT/MSC carriage protect their
  bytes with the same checksum.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package crc computes the CRC-16 checksum used to protect MSC data
// groups and MSC packets.
package crc

// Polynomial is the generator polynomial (x^16 + x^12 + x^5 + 1) used
// by both the datagroup and packet framing layers.
const Polynomial = 0x1021

// init and xorOut give the CRC-16/GENIBUS parameterisation: poly 0x1021,
// refin/refout false, init 0xFFFF, xorout 0xFFFF. This is the
// parameterisation required to reproduce the reference vector
// CRC("123456789") == 0xD64E; init 0x0000 (the value named in prose
// elsewhere) does not reproduce it, so the vector governs.
const (
	initValue = 0xFFFF
	xorOut    = 0xFFFF
)

var table [256]uint16

func init() {
	for i := range table {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ Polynomial
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
}

// Checksum computes the CRC-16 of data, MSB-first, as required by both
// the datagroup and packet wire formats.
func Checksum(data []byte) uint16 {
	crc := uint16(initValue)
	for _, b := range data {
		crc = table[byte(crc>>8)^b] ^ (crc << 8)
	}
	return crc ^ xorOut
}
