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

// decodeTemplateSet parses a v9 or IPFIX template set body: a sequence of
// (template_id, field_count, fields...) records packed back to back until
// fewer than 4 bytes remain (the remainder is set padding, RFC 3954 §5.3 /
// RFC 7011 §3.4.1 both allow trailing padding to a 4-byte boundary).
func decodeTemplateSet(body []byte, allowEnterprise bool, maxFieldCount int) ([]*Template, error) {
	var templates []*Template
	pos := 0
	for pos+4 <= len(body) {
		templateID := be16(body, pos)
		fieldCount := int(be16(body, pos+2))
		pos += 4
		if fieldCount == 0 {
			// withdrawal record (RFC 7011 §8.1): no fields follow.
			templates = append(templates, &Template{TemplateID: templateID})
			continue
		}
		if fieldCount > maxFieldCount {
			return templates, wrapMalformedTemplate("field_count exceeds configured maximum")
		}
		specs, next, err := decodeTemplateFieldSpecs(body, pos, fieldCount, allowEnterprise)
		if err != nil {
			return templates, err
		}
		pos = next
		templates = append(templates, &Template{TemplateID: templateID, Fields: specs})
	}
	return templates, nil
}

// decodeV9OptionsTemplate parses a single v9 options-template record
// (RFC 3954 §6.2): template_id, then byte lengths (not counts) of the
// scope and option field lists, each a flat (field_id, field_length)
// sequence. v9 has no enterprise bit.
func decodeV9OptionsTemplate(body []byte, maxFieldCount int) (*Template, error) {
	if len(body) < 6 {
		return nil, wrapTruncatedHeader(6, len(body))
	}
	templateID := be16(body, 0)
	scopeLen := int(be16(body, 2))
	optionLen := int(be16(body, 4))
	pos := 6

	scopeCount := scopeLen / 4
	optionCount := optionLen / 4
	if scopeCount+optionCount > maxFieldCount {
		return nil, wrapMalformedTemplate("options template field count exceeds configured maximum")
	}

	scopeFields, pos, err := decodeTemplateFieldSpecs(body, pos, scopeCount, false)
	if err != nil {
		return nil, err
	}
	optionFields, pos, err := decodeTemplateFieldSpecs(body, pos, optionCount, false)
	if err != nil {
		return nil, err
	}
	_ = pos

	return &Template{
		TemplateID:             templateID,
		Fields:                 append(scopeFields, optionFields...),
		IsOptionsTemplate:      true,
		OptionsScopeFieldCount: len(scopeFields),
	}, nil
}

// decodeIPFIXOptionsTemplate parses a single IPFIX options-template record
// (RFC 7011 §3.4.2.2): template_id, total field_count, scope_field_count,
// then field_count fields of which the first scope_field_count are scope
// fields. IPFIX options templates do carry the enterprise bit.
func decodeIPFIXOptionsTemplate(body []byte, maxFieldCount int) (*Template, error) {
	if len(body) < 6 {
		return nil, wrapTruncatedHeader(6, len(body))
	}
	templateID := be16(body, 0)
	fieldCount := int(be16(body, 2))
	scopeFieldCount := int(be16(body, 4))
	if fieldCount > maxFieldCount {
		return nil, wrapMalformedTemplate("options template field_count exceeds configured maximum")
	}
	if scopeFieldCount > fieldCount {
		return nil, wrapMalformedTemplate("scope_field_count exceeds field_count")
	}
	specs, _, err := decodeTemplateFieldSpecs(body, 6, fieldCount, true)
	if err != nil {
		return nil, err
	}
	return &Template{
		TemplateID:             templateID,
		Fields:                 specs,
		IsOptionsTemplate:      true,
		OptionsScopeFieldCount: scopeFieldCount,
	}, nil
}
