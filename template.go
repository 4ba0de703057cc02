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

const enterpriseBit = 0x8000

// TemplateFieldSpec is one (id, length[, enterprise]) entry inside a
// template or options-template record, as read off the wire. It does not
// yet carry a resolved DataType; that lookup happens lazily against a
// Registry at data-record decode time, so that registering a field
// definition after a template was learned still takes effect.
type TemplateFieldSpec struct {
	FieldID    uint16
	Enterprise uint32 // 0 for standard IANA elements
	Length     uint16 // 0xFFFF marks an IPFIX variable-length field
}

func (f TemplateFieldSpec) IsVariableLength() bool {
	return f.Length == 0xFFFF
}

func (f TemplateFieldSpec) key() FieldKey {
	return FieldKey{Enterprise: f.Enterprise, ID: f.FieldID}
}

// Template is a learned template record: the field schema that subsequent
// data records carrying this TemplateID will be decoded against.
//
// OptionsScopeFieldCount is non-zero only for options templates (RFC 3954
// §6.2 / RFC 7011 §3.4.2.2), in which case the first OptionsScopeFieldCount
// entries of Fields are "scope" fields. This library does not itself
// interpret options scope semantics; it parses and exposes them as plain
// fields.
type Template struct {
	TemplateID             uint16              `yaml:"templateId" json:"template_id"`
	Fields                 []TemplateFieldSpec `yaml:"fields" json:"fields"`
	IsOptionsTemplate      bool                `yaml:"isOptionsTemplate" json:"is_options_template"`
	OptionsScopeFieldCount int                 `yaml:"optionsScopeFieldCount,omitempty" json:"options_scope_field_count,omitempty"`
}

// HasVariableLengthFields reports whether any field uses the IPFIX
// 0xFFFF variable-length sentinel, which forces data records to be walked
// sequentially rather than sliced at a fixed stride.
func (t *Template) HasVariableLengthFields() bool {
	for _, f := range t.Fields {
		if f.IsVariableLength() {
			return true
		}
	}
	return false
}

// FixedRecordLength returns the sum of all field lengths and true, or
// (0, false) if the template has any variable-length field.
func (t *Template) FixedRecordLength() (int, bool) {
	total := 0
	for _, f := range t.Fields {
		if f.IsVariableLength() {
			return 0, false
		}
		total += int(f.Length)
	}
	return total, true
}

// decodeTemplateFieldSpecs reads count (field id, length[, enterprise])
// triples from buf starting at offset, honoring the IPFIX enterprise bit
// (RFC 7011 §3.2: high bit of the field id set means a 4-byte PEN follows).
// v9 templates never set the enterprise bit. This function applies no cap
// of its own: each caller checks count against the configured field-count
// cap before calling it, so that cap is the only bound on count.
func decodeTemplateFieldSpecs(buf []byte, offset int, count int, allowEnterprise bool) ([]TemplateFieldSpec, int, error) {
	specs := make([]TemplateFieldSpec, 0, count)
	pos := offset
	for i := 0; i < count; i++ {
		if pos+4 > len(buf) {
			return nil, pos, wrapTruncatedHeader(pos+4, len(buf))
		}
		fieldID := be16(buf, pos)
		length := be16(buf, pos+2)
		pos += 4
		var enterprise uint32
		if allowEnterprise && fieldID&enterpriseBit != 0 {
			fieldID &^= enterpriseBit
			if pos+4 > len(buf) {
				return nil, pos, wrapTruncatedHeader(pos+4, len(buf))
			}
			enterprise = be32(buf, pos)
			pos += 4
		}
		specs = append(specs, TemplateFieldSpec{FieldID: fieldID, Enterprise: enterprise, Length: length})
	}
	return specs, pos, nil
}

func be16(buf []byte, off int) uint16 {
	return uint16(buf[off])<<8 | uint16(buf[off+1])
}

func be32(buf []byte, off int) uint32 {
	return uint32(buf[off])<<24 | uint32(buf[off+1])<<16 | uint32(buf[off+2])<<8 | uint32(buf[off+3])
}
