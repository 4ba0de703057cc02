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

// FlowsetKind tags what a decoded Flowset/Set actually contains.
type FlowsetKind int

const (
	FlowsetKindTemplate FlowsetKind = iota
	FlowsetKindOptionsTemplate
	FlowsetKindData
	// FlowsetKindNoTemplate marks a data set whose template_id was not
	// found in the cache (absent, evicted, or expired). The raw set body
	// is preserved in Body along with the known template ids at the time
	// of lookup, so a caller can re-decode once the template arrives.
	// This is not an error: a MissingTemplate hook fires and the cache's
	// miss counter is incremented, but decoding the rest of the datagram
	// continues.
	FlowsetKindNoTemplate
	// FlowsetKindMalformed marks a set this library could not parse (an
	// unrecognized set id, or a malformed template/options-template
	// record). The raw set body is preserved in Body. Decoding the rest
	// of the datagram continues.
	FlowsetKindMalformed
)

// Flowset is one decoded v9/IPFIX set: either a batch of (options)
// templates learned from this datagram, a batch of data records decoded
// against a previously (or just-now) learned template, or a set that
// could not be decoded (FlowsetKindNoTemplate / FlowsetKindMalformed).
type Flowset struct {
	Header     SetHeader
	Kind       FlowsetKind
	Templates  []*Template // FlowsetKindTemplate / FlowsetKindOptionsTemplate
	Records    []Record    // FlowsetKindData
	Body       []byte      // FlowsetKindNoTemplate / FlowsetKindMalformed: the raw set body
	TemplateID uint16      // FlowsetKindNoTemplate: the referenced, uncached template id
	KnownIDs   []uint16    // FlowsetKindNoTemplate: template ids currently cached for this scope
	Err        error       // FlowsetKindMalformed: why this set could not be parsed
}

// V9Packet is a fully decoded NetFlow v9 datagram.
type V9Packet struct {
	Header   V9Header
	Flowsets []Flowset
}

// IPFIXPacket is a fully decoded IPFIX message.
type IPFIXPacket struct {
	Header IPFIXHeader
	Sets   []Flowset
}

// V5Packet is a fully decoded NetFlow v5 datagram.
type V5Packet struct {
	Header  V5Header
	Records []V5Record
}

// V7Packet is a fully decoded NetFlow v7 datagram.
type V7Packet struct {
	Header  V7Header
	Records []V7Record
}

// Packet is the discriminated union of every supported datagram shape.
// Exactly one of the typed members is populated, selected by Version.
type Packet struct {
	Version Version
	V5      *V5Packet
	V7      *V7Packet
	V9      *V9Packet
	IPFIX   *IPFIXPacket
}

// ExportTime returns the datagram's export timestamp across all four
// versions, for callers that don't need to branch on Version themselves.
func (p Packet) ExportTime() time.Time {
	switch p.Version {
	case V5:
		return p.V5.Header.bootTime().Add(p.V5.Header.SysUptime)
	case V7:
		return p.V7.Header.bootTime().Add(p.V7.Header.SysUptime)
	case V9:
		return p.V9.Header.bootTime().Add(p.V9.Header.SysUptime)
	case IPFIX:
		return p.IPFIX.Header.ExportTime
	default:
		return time.Time{}
	}
}
