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

// FieldEntry is one decoded field inside a data record, carrying both its
// resolved definition and value so callers can render it without a second
// registry lookup.
type FieldEntry struct {
	Key   FieldKey
	Def   FieldDef
	Value FieldValue
}

// Record is one template-driven data record: an ordered, possibly
// duplicate-keyed list of fields, decoded in the order the template
// declared them.
type Record struct {
	TemplateID uint16
	Fields     []FieldEntry
}

// decodeCtx bundles everything decodeDataRecords needs besides the bytes
// themselves and the template to decode against.
type decodeCtx struct {
	registry  *Registry
	codec     CodecOptions
	unknown   UnknownFieldPolicy
	maxSample int
	version   string // for DroppedRecords metric labeling
}

// decodeDataRecords decodes every record in body against tmpl. Templates
// with only fixed-length fields are divided by the template's fixed
// record length (the v9 case, and the common IPFIX case); templates with
// any 0xFFFF variable-length field are walked sequentially, since a fixed
// stride cannot describe them (RFC 7011 §7).
func decodeDataRecords(body []byte, tmpl *Template, ctx decodeCtx) ([]Record, error) {
	if tmpl.HasVariableLengthFields() {
		return decodeVariableStrideRecords(body, tmpl, ctx)
	}
	return decodeFixedStrideRecords(body, tmpl, ctx)
}

// decodeFixedStrideRecords divides body into tmpl's fixed stride and
// decodes each record independently. A field-decode failure in one record
// (a value that doesn't fit its declared type) discards only that record;
// since the stride is fixed, the next record's offset never depends on
// whether the previous one decoded cleanly.
func decodeFixedStrideRecords(body []byte, tmpl *Template, ctx decodeCtx) ([]Record, error) {
	recordLen, ok := tmpl.FixedRecordLength()
	if !ok || recordLen == 0 {
		return nil, wrapMalformedTemplate("template has zero fixed record length")
	}
	n := len(body) / recordLen
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		offset := i * recordLen
		rec, err := decodeOneRecord(body[offset:offset+recordLen], tmpl, ctx)
		if err != nil {
			DroppedRecords.WithLabelValues(ctx.version, "field_decode").Inc()
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeVariableStrideRecords walks body sequentially. A field's length is
// always known before it is decoded (either from the template or from the
// wire's own length prefix), so a field-decode failure only discards the
// enclosing record; the remaining fields are still walked (without being
// decoded) to find the next record's start. A failure to even determine a
// field's length (a bad length prefix, or a declared length that overruns
// the set) is structural: position is lost, so the rest of the set is
// returned as an error for the caller to discard wholesale.
func decodeVariableStrideRecords(body []byte, tmpl *Template, ctx decodeCtx) ([]Record, error) {
	var records []Record
	pos := 0
	for pos < len(body) {
		start := pos
		fields := make([]FieldEntry, 0, len(tmpl.Fields))
		recordFailed := false
		for idx, spec := range tmpl.Fields {
			length := int(spec.Length)
			if spec.IsVariableLength() {
				l, consumed, err := decodeVariableLengthPrefix(body, pos)
				if err != nil {
					return records, err
				}
				length = l
				pos += consumed
			}
			if pos+length > len(body) {
				return records, wrapLengthOverrun(length, len(body)-pos)
			}
			raw := body[pos : pos+length]
			pos += length
			if recordFailed {
				continue
			}
			entry, err := resolveAndDecodeField(spec, raw, idx, ctx)
			if err != nil {
				recordFailed = true
				continue
			}
			fields = append(fields, entry)
		}
		if pos == start {
			// no progress: malformed template with zero total length
			break
		}
		if recordFailed {
			DroppedRecords.WithLabelValues(ctx.version, "field_decode").Inc()
			continue
		}
		records = append(records, Record{TemplateID: tmpl.TemplateID, Fields: fields})
	}
	return records, nil
}

func decodeOneRecord(buf []byte, tmpl *Template, ctx decodeCtx) (Record, error) {
	fields := make([]FieldEntry, 0, len(tmpl.Fields))
	pos := 0
	for idx, spec := range tmpl.Fields {
		length := int(spec.Length)
		if pos+length > len(buf) {
			return Record{}, wrapLengthOverrun(length, len(buf)-pos)
		}
		entry, err := resolveAndDecodeField(spec, buf[pos:pos+length], idx, ctx)
		if err != nil {
			return Record{}, err
		}
		fields = append(fields, entry)
		pos += length
	}
	return Record{TemplateID: tmpl.TemplateID, Fields: fields}, nil
}

// decodeVariableLengthPrefix reads an IPFIX variable-length field's
// length prefix (RFC 7011 §7): a single byte 0..254 is the length itself;
// byte value 255 means the real length follows as a big-endian uint16.
func decodeVariableLengthPrefix(buf []byte, pos int) (length int, consumed int, err error) {
	if pos >= len(buf) {
		return 0, 0, wrapLengthOverrun(1, len(buf)-pos)
	}
	first := buf[pos]
	if first < 255 {
		return int(first), 1, nil
	}
	if pos+3 > len(buf) {
		return 0, 0, wrapLengthOverrun(3, len(buf)-pos)
	}
	return int(be16(buf, pos+1)), 3, nil
}

func resolveAndDecodeField(spec TemplateFieldSpec, raw []byte, idx int, ctx decodeCtx) (FieldEntry, error) {
	key := spec.key()
	def, ok := ctx.registry.Lookup(key)
	if !ok {
		if ctx.unknown == UnknownFieldReject {
			return FieldEntry{}, wrapFieldDecode(idx, key.Enterprise, key.ID, ErrFieldDecode)
		}
		def = FieldDef{Name: "", Type: DataTypeOpaque}
	}
	val, err := decodeField(def.Type, def.DurationUnit, raw, ctx.codec)
	if err != nil {
		return FieldEntry{}, wrapFieldDecode(idx, key.Enterprise, key.ID, err)
	}
	return FieldEntry{Key: key, Def: def, Value: val}, nil
}
