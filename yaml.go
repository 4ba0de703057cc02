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
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// TemplateDump is a YAML-serializable snapshot of a cache's learned
// templates, for dumping exporter schema state to disk or logs — the
// same dual JSON/YAML template export the teacher offers for information
// elements, repurposed here for dumping learned templates instead of the
// static IANA table.
type TemplateDump struct {
	Name       string       `yaml:"name"`
	ExportedAt time.Time    `yaml:"exportedAt"`
	Templates  []*Template  `yaml:"templates"`
}

// DumpTemplatesYAML writes every template currently cached (expiring any
// that have aged out first) to w as YAML.
func DumpTemplatesYAML(w io.Writer, name string, cache TemplateCache) error {
	all := cache.GetAll()
	templates := make([]*Template, 0, len(all))
	for _, t := range all {
		templates = append(templates, t)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(TemplateDump{
		Name:       name,
		ExportedAt: time.Now(),
		Templates:  templates,
	})
}

// ReadTemplatesYAML reads a TemplateDump previously written by
// DumpTemplatesYAML, keyed by template id for direct cache seeding.
func ReadTemplatesYAML(r io.Reader) (map[uint16]*Template, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	dump := TemplateDump{}
	if err := dec.Decode(&dump); err != nil {
		return nil, err
	}

	out := make(map[uint16]*Template, len(dump.Templates))
	for _, t := range dump.Templates {
		out[t.TemplateID] = t
	}
	return out, nil
}
