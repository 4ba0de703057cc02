/*
Copyright 2023 Alexander Bartolomey (github@alexanderbartolomey.de)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package netflow

import (
	"net"
	"time"
)

// V5Record is a fixed-layout NetFlow v5 flow record (24+48*count bytes
// total per packet).
type V5Record struct {
	SrcAddr    net.IP
	DstAddr    net.IP
	NextHop    net.IP
	Input      uint16
	Output     uint16
	Packets    uint32
	Octets     uint32
	First      time.Time
	Last       time.Time
	SrcPort    uint16
	DstPort    uint16
	TCPFlags   uint8
	Protocol   ProtocolType
	Tos        uint8
	SrcAS      uint16
	DstAS      uint16
	SrcMask    uint8
	DstMask    uint8
}

func decodeV5Record(buf []byte, boot time.Time) (V5Record, error) {
	if len(buf) < v5RecordLen {
		return V5Record{}, wrapTruncatedHeader(v5RecordLen, len(buf))
	}
	return V5Record{
		SrcAddr:  ipv4(buf, 0),
		DstAddr:  ipv4(buf, 4),
		NextHop:  ipv4(buf, 8),
		Input:    be16(buf, 12),
		Output:   be16(buf, 14),
		Packets:  be32(buf, 16),
		Octets:   be32(buf, 20),
		First:    boot.Add(time.Duration(be32(buf, 24)) * time.Millisecond),
		Last:     boot.Add(time.Duration(be32(buf, 28)) * time.Millisecond),
		SrcPort:  be16(buf, 32),
		DstPort:  be16(buf, 34),
		TCPFlags: buf[37],
		Protocol: ProtocolType(buf[38]),
		Tos:      buf[39],
		SrcAS:    be16(buf, 40),
		DstAS:    be16(buf, 42),
		SrcMask:  buf[44],
		DstMask:  buf[45],
	}, nil
}

func decodeV5Records(buf []byte, count int, boot time.Time) ([]V5Record, error) {
	if len(buf) < count*v5RecordLen {
		return nil, wrapLengthOverrun(count*v5RecordLen, len(buf))
	}
	records := make([]V5Record, 0, count)
	for i := 0; i < count; i++ {
		rec, err := decodeV5Record(buf[i*v5RecordLen:], boot)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// V7Record is a fixed-layout NetFlow v7 flow record. v7 keeps v5's layout,
// carries a "flags fields valid/invalid" pair in v5's two pad positions
// (offsets 36 and 46), and appends the bypassed router's address
// (Cisco Catalyst 5000 switching path), per
// static_versions/v7.rs in the reference implementation.
type V7Record struct {
	V5Record
	FlagsFieldsValid   uint8
	FlagsFieldsInvalid uint16
	RouterSrc          net.IP
}

func decodeV7Record(buf []byte, boot time.Time) (V7Record, error) {
	if len(buf) < v7RecordLen {
		return V7Record{}, wrapTruncatedHeader(v7RecordLen, len(buf))
	}
	return V7Record{
		V5Record: V5Record{
			SrcAddr:  ipv4(buf, 0),
			DstAddr:  ipv4(buf, 4),
			NextHop:  ipv4(buf, 8),
			Input:    be16(buf, 12),
			Output:   be16(buf, 14),
			Packets:  be32(buf, 16),
			Octets:   be32(buf, 20),
			First:    boot.Add(time.Duration(be32(buf, 24)) * time.Millisecond),
			Last:     boot.Add(time.Duration(be32(buf, 28)) * time.Millisecond),
			SrcPort:  be16(buf, 32),
			DstPort:  be16(buf, 34),
			TCPFlags: buf[37],
			Protocol: ProtocolType(buf[38]),
			Tos:      buf[39],
			SrcAS:    be16(buf, 40),
			DstAS:    be16(buf, 42),
			SrcMask:  buf[44],
			DstMask:  buf[45],
		},
		FlagsFieldsValid:   buf[36],
		FlagsFieldsInvalid: be16(buf, 46),
		RouterSrc:          ipv4(buf, 48),
	}, nil
}

func decodeV7Records(buf []byte, count int, boot time.Time) ([]V7Record, error) {
	if len(buf) < count*v7RecordLen {
		return nil, wrapLengthOverrun(count*v7RecordLen, len(buf))
	}
	records := make([]V7Record, 0, count)
	for i := 0; i < count; i++ {
		rec, err := decodeV7Record(buf[i*v7RecordLen:], boot)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func ipv4(buf []byte, off int) net.IP {
	ip := make(net.IP, 4)
	copy(ip, buf[off:off+4])
	return ip
}
