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

import "time"

// V5Header is the fixed 24-byte NetFlow v5 packet header.
type V5Header struct {
	Version          uint16
	Count            uint16
	SysUptime        time.Duration
	UnixSeconds      uint32
	UnixNanoseconds  uint32
	FlowSequence     uint32
	EngineType       uint8
	EngineID         uint8
	SamplingInterval uint16
}

const v5HeaderLen = 24
const v5RecordLen = 48

func decodeV5Header(buf []byte) (V5Header, error) {
	if len(buf) < v5HeaderLen {
		return V5Header{}, wrapTruncatedHeader(v5HeaderLen, len(buf))
	}
	return V5Header{
		Version:          be16(buf, 0),
		Count:            be16(buf, 2),
		SysUptime:        time.Duration(be32(buf, 4)) * time.Millisecond,
		UnixSeconds:      be32(buf, 8),
		UnixNanoseconds:  be32(buf, 12),
		FlowSequence:     be32(buf, 16),
		EngineType:       buf[20],
		EngineID:         buf[21],
		SamplingInterval: be16(buf, 22),
	}, nil
}

// bootTime derives the exporter's boot time from the header's unix
// timestamp and system uptime, the same relative-time reconstruction
// common NetFlow collectors use to convert record-local uptimes into
// absolute timestamps.
func (h V5Header) bootTime() time.Time {
	return time.Unix(int64(h.UnixSeconds), int64(h.UnixNanoseconds)).Add(-h.SysUptime)
}

// V7Header mirrors V5Header; v7 keeps the same header layout and adds a
// router-specific "flags" byte to each record instead of the header.
type V7Header = V5Header

const v7HeaderLen = v5HeaderLen
const v7RecordLen = 52

func decodeV7Header(buf []byte) (V7Header, error) {
	return decodeV5Header(buf)
}

// V9Header is the fixed 20-byte NetFlow v9 packet header (RFC 3954 §5.1).
// Count is the number of records (template + option + data records)
// contained in the following flowsets, not the number of flowsets.
type V9Header struct {
	Version      uint16
	Count        uint16
	SysUptime    time.Duration
	UnixSeconds  uint32
	SequenceNum  uint32
	SourceID     uint32
}

const v9HeaderLen = 20

func decodeV9Header(buf []byte) (V9Header, error) {
	if len(buf) < v9HeaderLen {
		return V9Header{}, wrapTruncatedHeader(v9HeaderLen, len(buf))
	}
	return V9Header{
		Version:     be16(buf, 0),
		Count:       be16(buf, 2),
		SysUptime:   time.Duration(be32(buf, 4)) * time.Millisecond,
		UnixSeconds: be32(buf, 8),
		SequenceNum: be32(buf, 12),
		SourceID:    be32(buf, 16),
	}, nil
}

func (h V9Header) bootTime() time.Time {
	return time.Unix(int64(h.UnixSeconds), 0).Add(-h.SysUptime)
}

// IPFIXHeader is the fixed 16-byte IPFIX message header (RFC 7011 §3.1).
// Length is the total message length in bytes, including this header.
type IPFIXHeader struct {
	Version             uint16
	Length              uint16
	ExportTime          time.Time
	SequenceNumber      uint32
	ObservationDomainID uint32
}

const ipfixHeaderLen = 16

func decodeIPFIXHeader(buf []byte) (IPFIXHeader, error) {
	if len(buf) < ipfixHeaderLen {
		return IPFIXHeader{}, wrapTruncatedHeader(ipfixHeaderLen, len(buf))
	}
	return IPFIXHeader{
		Version:             be16(buf, 0),
		Length:              be16(buf, 2),
		ExportTime:          time.Unix(int64(be32(buf, 4)), 0),
		SequenceNumber:      be32(buf, 8),
		ObservationDomainID: be32(buf, 12),
	}, nil
}

// SetHeader is the 4-byte header shared by every v9/IPFIX flowset/set.
// ID 0 is a v9 template set, 1 a v9 options-template set, 2 an IPFIX
// template set, 3 an IPFIX options-template set; any id >= 256 is a data
// set keyed to a previously learned template.
type SetHeader struct {
	ID     uint16
	Length uint16
}

const setHeaderLen = 4

const (
	SetIDV9Template        uint16 = 0
	SetIDV9OptionsTemplate uint16 = 1
	SetIDIPFIXTemplate     uint16 = 2
	SetIDIPFIXOptions      uint16 = 3
	setIDDataSetMin        uint16 = 256
)

func decodeSetHeader(buf []byte) (SetHeader, error) {
	if len(buf) < setHeaderLen {
		return SetHeader{}, wrapTruncatedHeader(setHeaderLen, len(buf))
	}
	return SetHeader{ID: be16(buf, 0), Length: be16(buf, 2)}, nil
}
