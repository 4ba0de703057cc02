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

// Version identifies the on-wire protocol version of a datagram.
type Version uint16

const (
	V5    Version = 5
	V7    Version = 7
	V9    Version = 9
	IPFIX Version = 10
)

func (v Version) String() string {
	switch v {
	case V5:
		return "NetFlowV5"
	case V7:
		return "NetFlowV7"
	case V9:
		return "NetFlowV9"
	case IPFIX:
		return "IPFIX"
	default:
		return "Unknown"
	}
}

// IsTemplateDriven reports whether records of this version are decoded via
// a cached template rather than a fixed layout.
func (v Version) IsTemplateDriven() bool {
	return v == V9 || v == IPFIX
}

// AllowedVersions is a builder-configurable acceptance set. The zero value
// accepts all four supported versions.
type AllowedVersions struct {
	set map[Version]bool
}

// NewAllowedVersions restricts the decoder to exactly the given versions.
func NewAllowedVersions(versions ...Version) AllowedVersions {
	set := make(map[Version]bool, len(versions))
	for _, v := range versions {
		set[v] = true
	}
	return AllowedVersions{set: set}
}

func (a AllowedVersions) Allows(v Version) bool {
	if a.set == nil {
		return v == V5 || v == V7 || v == V9 || v == IPFIX
	}
	return a.set[v]
}

// TemplateProtocol distinguishes the two template-driven protocols for the
// purpose of scoping caches and tagging events; it deliberately excludes
// V5/V7 since those never carry templates.
type TemplateProtocol uint8

const (
	TemplateProtocolV9 TemplateProtocol = iota
	TemplateProtocolIPFIX
)

func (p TemplateProtocol) String() string {
	if p == TemplateProtocolIPFIX {
		return "IPFIX"
	}
	return "V9"
}
