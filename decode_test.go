package netflow

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func u16(v uint16) []byte { b := make([]byte, 2); binary.BigEndian.PutUint16(b, v); return b }
func u32(v uint32) []byte { b := make([]byte, 4); binary.BigEndian.PutUint32(b, v); return b }

func buildV5Packet(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(u16(5))           // version
	buf.Write(u16(1))           // count
	buf.Write(u32(0))           // sys uptime
	buf.Write(u32(1000))        // unix secs
	buf.Write(u32(0))           // unix nsecs
	buf.Write(u32(0))           // flow sequence
	buf.WriteByte(0)            // engine type
	buf.WriteByte(0)            // engine id
	buf.Write(u16(0))           // sampling interval

	buf.Write([]byte{10, 0, 0, 1}) // src addr
	buf.Write([]byte{10, 0, 0, 2}) // dst addr
	buf.Write([]byte{0, 0, 0, 0})  // next hop
	buf.Write(u16(0))              // input
	buf.Write(u16(0))              // output
	buf.Write(u32(10))             // packets
	buf.Write(u32(1000))           // octets
	buf.Write(u32(0))              // first
	buf.Write(u32(100))            // last
	buf.Write(u16(80))             // src port
	buf.Write(u16(443))            // dst port
	buf.WriteByte(0)                // pad1
	buf.WriteByte(0x10)             // tcp flags
	buf.WriteByte(6)                // protocol (TCP)
	buf.WriteByte(0)                // tos
	buf.Write(u16(0))               // src as
	buf.Write(u16(0))               // dst as
	buf.WriteByte(0)                // src mask
	buf.WriteByte(0)                // dst mask
	buf.Write(u16(0))               // pad2

	return buf.Bytes()
}

func TestDecodeV5Packet(t *testing.T) {
	b, err := NewBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}
	pkt, err := b.Decode(buildV5Packet(t))
	if err != nil {
		t.Fatal(err)
	}
	if pkt.Version != V5 {
		t.Fatalf("expected V5, got %v", pkt.Version)
	}
	if len(pkt.V5.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(pkt.V5.Records))
	}
	rec := pkt.V5.Records[0]
	if rec.SrcPort != 80 || rec.DstPort != 443 || rec.Protocol != 6 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func buildV9Packet(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(u16(9))    // version
	buf.Write(u16(2))    // count (1 template record + 1 data record)
	buf.Write(u32(0))    // sys uptime
	buf.Write(u32(1000)) // unix secs
	buf.Write(u32(1))    // sequence number
	buf.Write(u32(1))    // source id

	// template set: id=0, one template (256) with 2 fields
	var tmplBody bytes.Buffer
	tmplBody.Write(u16(256)) // template id
	tmplBody.Write(u16(2))   // field count
	tmplBody.Write(u16(8))   // field: sourceIPv4Address
	tmplBody.Write(u16(4))   // length 4
	tmplBody.Write(u16(7))   // field: sourceTransportPort
	tmplBody.Write(u16(2))   // length 2

	buf.Write(u16(SetIDV9Template))
	buf.Write(u16(uint16(4 + tmplBody.Len())))
	buf.Write(tmplBody.Bytes())

	// data set: id=256, one record (ip + port)
	var dataBody bytes.Buffer
	dataBody.Write([]byte{192, 168, 1, 1})
	dataBody.Write(u16(9001))

	buf.Write(u16(256))
	buf.Write(u16(uint16(4 + dataBody.Len())))
	buf.Write(dataBody.Bytes())

	return buf.Bytes()
}

func TestDecodeV9TemplateThenData(t *testing.T) {
	b, err := NewBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}
	pkt, err := b.Decode(buildV9Packet(t))
	if err != nil {
		t.Fatal(err)
	}
	if pkt.Version != V9 {
		t.Fatalf("expected V9, got %v", pkt.Version)
	}
	if len(pkt.V9.Flowsets) != 2 {
		t.Fatalf("expected 2 flowsets, got %d", len(pkt.V9.Flowsets))
	}

	tmplSet := pkt.V9.Flowsets[0]
	if tmplSet.Kind != FlowsetKindTemplate || len(tmplSet.Templates) != 1 {
		t.Fatalf("expected a template flowset, got %+v", tmplSet)
	}

	dataSet := pkt.V9.Flowsets[1]
	if dataSet.Kind != FlowsetKindData || len(dataSet.Records) != 1 {
		t.Fatalf("expected a data flowset with 1 record, got %+v", dataSet)
	}
	rec := dataSet.Records[0]
	if len(rec.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(rec.Fields))
	}
	if rec.Fields[0].Value.IP.String() != "192.168.1.1" {
		t.Fatalf("unexpected src ip: %v", rec.Fields[0].Value.IP)
	}
	if rec.Fields[1].Value.Uint != 9001 {
		t.Fatalf("unexpected src port: %v", rec.Fields[1].Value.Uint)
	}
}

func TestDecodeV9DataSetWithoutTemplateIsMissing(t *testing.T) {
	var events []TemplateEvent
	b, err := NewBuilder().OnTemplateEvent(func(e TemplateEvent) {
		events = append(events, e)
	}).Build()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.Write(u16(9))
	buf.Write(u16(1))
	buf.Write(u32(0))
	buf.Write(u32(1000))
	buf.Write(u32(1))
	buf.Write(u32(1))

	buf.Write(u16(999)) // unseen template id
	buf.Write(u16(8))
	buf.Write([]byte{1, 2, 3, 4})

	pkt, err := b.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("a missing template must not fail the datagram, got: %v", err)
	}
	if len(pkt.V9.Flowsets) != 1 {
		t.Fatalf("expected 1 flowset, got %d", len(pkt.V9.Flowsets))
	}
	fs := pkt.V9.Flowsets[0]
	if fs.Kind != FlowsetKindNoTemplate {
		t.Fatalf("expected FlowsetKindNoTemplate, got %v", fs.Kind)
	}
	if fs.TemplateID != 999 {
		t.Fatalf("expected template id 999, got %d", fs.TemplateID)
	}
	if len(fs.Body) != 4 {
		t.Fatalf("expected the raw 4-byte body preserved, got %d bytes", len(fs.Body))
	}

	snap := b.v9Cache.Metrics()
	if snap.Misses != 1 {
		t.Fatalf("expected 1 miss recorded, got %d", snap.Misses)
	}

	var sawMissing bool
	for _, e := range events {
		if e.Kind == TemplateMissing && e.TemplateID == 999 {
			sawMissing = true
		}
	}
	if !sawMissing {
		t.Fatalf("expected a MissingTemplate event for template 999, got %+v", events)
	}
}

func buildIPFIXPacketWithVariableLengthField(t *testing.T) []byte {
	t.Helper()
	// template set: id=2, one template (300) with a string field of
	// variable length (0xFFFF) plus a fixed ipv4 field.
	var tmplBody bytes.Buffer
	tmplBody.Write(u16(300)) // template id
	tmplBody.Write(u16(2))   // field count
	tmplBody.Write(u16(82))  // interfaceName (string)
	tmplBody.Write(u16(0xFFFF))
	tmplBody.Write(u16(8)) // sourceIPv4Address
	tmplBody.Write(u16(4))

	var tmplSet bytes.Buffer
	tmplSet.Write(u16(SetIDIPFIXTemplate))
	tmplSet.Write(u16(uint16(4 + tmplBody.Len())))
	tmplSet.Write(tmplBody.Bytes())

	var dataBody bytes.Buffer
	dataBody.WriteByte(3) // short-form length prefix
	dataBody.Write([]byte("eth"))
	dataBody.Write([]byte{10, 1, 1, 1})

	var dataSet bytes.Buffer
	dataSet.Write(u16(300))
	dataSet.Write(u16(uint16(4 + dataBody.Len())))
	dataSet.Write(dataBody.Bytes())

	totalLen := ipfixHeaderLen + tmplSet.Len() + dataSet.Len()

	var buf bytes.Buffer
	buf.Write(u16(10))                  // version
	buf.Write(u16(uint16(totalLen)))    // length
	buf.Write(u32(1000))                // export time
	buf.Write(u32(1))                   // sequence number
	buf.Write(u32(42))                  // observation domain id
	buf.Write(tmplSet.Bytes())
	buf.Write(dataSet.Bytes())

	return buf.Bytes()
}

func TestDecodeSkipsUnknownSetIDAndContinues(t *testing.T) {
	b, err := NewBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.Write(u16(9))    // version
	buf.Write(u16(2))    // count: 1 template record + 1 data record
	buf.Write(u32(0))    // sys uptime
	buf.Write(u32(1000)) // unix secs
	buf.Write(u32(1))    // sequence number
	buf.Write(u32(1))    // source id

	var tmplBody bytes.Buffer
	tmplBody.Write(u16(256))
	tmplBody.Write(u16(1))
	tmplBody.Write(u16(8)) // sourceIPv4Address
	tmplBody.Write(u16(4))
	buf.Write(u16(SetIDV9Template))
	buf.Write(u16(uint16(4 + tmplBody.Len())))
	buf.Write(tmplBody.Bytes())

	// a reserved/unrecognized set id between the template and data sets
	buf.Write(u16(50))
	buf.Write(u16(8))
	buf.Write([]byte{0xde, 0xad, 0xbe, 0xef})

	var dataBody bytes.Buffer
	dataBody.Write([]byte{10, 0, 0, 1})
	buf.Write(u16(256))
	buf.Write(u16(uint16(4 + dataBody.Len())))
	buf.Write(dataBody.Bytes())

	pkt, err := b.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("an unrecognized set id must not fail the whole datagram, got: %v", err)
	}
	if len(pkt.V9.Flowsets) != 3 {
		t.Fatalf("expected 3 flowsets (template, malformed, data), got %d", len(pkt.V9.Flowsets))
	}
	if pkt.V9.Flowsets[0].Kind != FlowsetKindTemplate {
		t.Fatalf("expected flowset 0 to be a template set, got %v", pkt.V9.Flowsets[0].Kind)
	}
	mal := pkt.V9.Flowsets[1]
	if mal.Kind != FlowsetKindMalformed || mal.Err == nil || len(mal.Body) != 4 {
		t.Fatalf("expected a malformed placeholder for the reserved set id, got %+v", mal)
	}
	data := pkt.V9.Flowsets[2]
	if data.Kind != FlowsetKindData || len(data.Records) != 1 {
		t.Fatalf("expected the data set after the bad set to still decode, got %+v", data)
	}
}

func buildIPFIXPacketWithOneBadRecord(t *testing.T) []byte {
	t.Helper()
	// template id=400: a single variable-length applicationId field.
	// applicationId requires at least 2 bytes; the first record supplies
	// only 1, the second supplies a valid 3.
	var tmplBody bytes.Buffer
	tmplBody.Write(u16(400))
	tmplBody.Write(u16(1))
	tmplBody.Write(u16(95)) // applicationId
	tmplBody.Write(u16(0xFFFF))

	var tmplSet bytes.Buffer
	tmplSet.Write(u16(SetIDIPFIXTemplate))
	tmplSet.Write(u16(uint16(4 + tmplBody.Len())))
	tmplSet.Write(tmplBody.Bytes())

	var dataBody bytes.Buffer
	dataBody.WriteByte(1) // record 1: length-prefix 1, too short to decode
	dataBody.WriteByte(0xff)
	dataBody.WriteByte(3) // record 2: length-prefix 3, valid
	dataBody.Write([]byte{7, 0, 9})

	var dataSet bytes.Buffer
	dataSet.Write(u16(400))
	dataSet.Write(u16(uint16(4 + dataBody.Len())))
	dataSet.Write(dataBody.Bytes())

	totalLen := ipfixHeaderLen + tmplSet.Len() + dataSet.Len()

	var buf bytes.Buffer
	buf.Write(u16(10))
	buf.Write(u16(uint16(totalLen)))
	buf.Write(u32(1000))
	buf.Write(u32(1))
	buf.Write(u32(7))
	buf.Write(tmplSet.Bytes())
	buf.Write(dataSet.Bytes())

	return buf.Bytes()
}

func TestDecodeSkipsBadRecordAndContinuesNext(t *testing.T) {
	b, err := NewBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}
	pkt, err := b.Decode(buildIPFIXPacketWithOneBadRecord(t))
	if err != nil {
		t.Fatalf("a single bad record must not fail the whole set, got: %v", err)
	}
	dataSet := pkt.IPFIX.Sets[1]
	if dataSet.Kind != FlowsetKindData {
		t.Fatalf("expected a data flowset, got %v", dataSet.Kind)
	}
	if len(dataSet.Records) != 1 {
		t.Fatalf("expected only the second, valid record to survive, got %d records", len(dataSet.Records))
	}
	rec := dataSet.Records[0]
	if rec.Fields[0].Value.AppID.Engine != 7 || rec.Fields[0].Value.AppID.Selector != 9 {
		t.Fatalf("unexpected applicationId on surviving record: %+v", rec.Fields[0].Value.AppID)
	}
}

func TestDecodeIPFIXVariableLengthField(t *testing.T) {
	b, err := NewBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}
	pkt, err := b.Decode(buildIPFIXPacketWithVariableLengthField(t))
	if err != nil {
		t.Fatal(err)
	}
	if pkt.Version != IPFIX {
		t.Fatalf("expected IPFIX, got %v", pkt.Version)
	}
	dataSet := pkt.IPFIX.Sets[1]
	if len(dataSet.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(dataSet.Records))
	}
	rec := dataSet.Records[0]
	if rec.Fields[0].Value.Str != "eth" {
		t.Fatalf("expected interfaceName 'eth', got %q", rec.Fields[0].Value.Str)
	}
	if rec.Fields[1].Value.IP.String() != "10.1.1.1" {
		t.Fatalf("unexpected src ip: %v", rec.Fields[1].Value.IP)
	}
}
