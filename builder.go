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

// Options is the fully-resolved configuration a Decoder is built from.
// Use Builder to construct one; the zero value is not valid (cache sizes
// and field-count caps would be zero, rejecting every template).
type Options struct {
	V9CacheSize    int
	IPFIXCacheSize int
	V9TTL          *TtlConfig
	IPFIXTTL       *TtlConfig

	AllowedVersions AllowedVersions
	MaxFieldCount   int
	MaxErrorSampleSize int

	Registry           *Registry
	Hooks              *TemplateHooks
	Codec              CodecOptions
	UnknownFieldPolicy UnknownFieldPolicy
}

// defaultMaxFieldCount bounds template field_count before any per-field
// allocation, matching the DoS-hardening property exercised by the
// original implementation's fuzz/dos test suite: caps are checked before
// anything sized by an attacker-controlled count is allocated.
const defaultMaxFieldCount = 10000
const defaultMaxErrorSampleSize = 64

// Builder assembles Options via a fluent chain, following the teacher's
// DecoderOptions.Merge pattern generalized to every knob this decoder
// exposes.
type Builder struct {
	opts Options
	errs []error
}

// NewBuilder returns a Builder seeded with the library's defaults:
// 1000-entry LRU caches for both v9 and IPFIX, no TTL, every version
// allowed, a 10,000 max field count, a 64-byte error sample cap, an empty
// user registry, no hooks, and unknown fields captured as opaque bytes.
func NewBuilder() *Builder {
	return &Builder{
		opts: Options{
			V9CacheSize:        DefaultTemplateCacheSize,
			IPFIXCacheSize:     DefaultTemplateCacheSize,
			AllowedVersions:    AllowedVersions{},
			MaxFieldCount:      defaultMaxFieldCount,
			MaxErrorSampleSize: defaultMaxErrorSampleSize,
			Registry:           NewRegistry(),
			UnknownFieldPolicy: UnknownFieldCaptureOpaque,
		},
	}
}

func (b *Builder) WithCacheSize(size int) *Builder {
	b.opts.V9CacheSize = size
	b.opts.IPFIXCacheSize = size
	return b
}

func (b *Builder) WithV9CacheSize(size int) *Builder {
	b.opts.V9CacheSize = size
	return b
}

func (b *Builder) WithIPFIXCacheSize(size int) *Builder {
	b.opts.IPFIXCacheSize = size
	return b
}

func (b *Builder) WithTTL(cfg *TtlConfig) *Builder {
	b.opts.V9TTL = cfg
	b.opts.IPFIXTTL = cfg
	return b
}

func (b *Builder) WithV9TTL(cfg *TtlConfig) *Builder {
	b.opts.V9TTL = cfg
	return b
}

func (b *Builder) WithIPFIXTTL(cfg *TtlConfig) *Builder {
	b.opts.IPFIXTTL = cfg
	return b
}

func (b *Builder) WithAllowedVersions(versions ...Version) *Builder {
	b.opts.AllowedVersions = NewAllowedVersions(versions...)
	return b
}

func (b *Builder) WithMaxFieldCount(n int) *Builder {
	if n <= 0 {
		b.errs = append(b.errs, wrapConfigError("max field count must be positive"))
		return b
	}
	b.opts.MaxFieldCount = n
	return b
}

func (b *Builder) WithMaxErrorSampleSize(n int) *Builder {
	if n < 0 {
		b.errs = append(b.errs, wrapConfigError("max error sample size must not be negative"))
		return b
	}
	b.opts.MaxErrorSampleSize = n
	return b
}

func (b *Builder) WithRegistry(r *Registry) *Builder {
	b.opts.Registry = r
	return b
}

func (b *Builder) WithEnterpriseField(key FieldKey, def FieldDef) *Builder {
	if b.opts.Registry == nil {
		b.opts.Registry = NewRegistry()
	}
	b.opts.Registry.Register(key, def)
	return b
}

func (b *Builder) OnTemplateEvent(hook TemplateHook) *Builder {
	if b.opts.Hooks == nil {
		b.opts.Hooks = NewTemplateHooks()
	}
	b.opts.Hooks.Register(hook)
	return b
}

func (b *Builder) WithStripP4Prefix(strip bool) *Builder {
	b.opts.Codec.StripP4Prefix = strip
	return b
}

func (b *Builder) WithUnknownFieldPolicy(policy UnknownFieldPolicy) *Builder {
	b.opts.UnknownFieldPolicy = policy
	return b
}

// Build validates the accumulated options and, if valid, constructs a
// Decoder. Any error recorded by a With* call is returned here rather than
// at the call site, so chains can be built fluently without checking every
// step.
func (b *Builder) Build() (*Decoder, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.opts.V9CacheSize <= 0 || b.opts.IPFIXCacheSize <= 0 {
		return nil, wrapConfigError("cache sizes must be positive")
	}
	if b.opts.MaxFieldCount <= 0 {
		return nil, wrapConfigError("max field count must be positive")
	}
	if b.opts.Registry == nil {
		b.opts.Registry = NewRegistry()
	}
	return newDecoder(b.opts), nil
}

// clone returns a shallow copy of the builder's Options so
// RouterScopedParser can construct one Decoder per exporter from a single
// shared builder. Each Decoder gets its own template caches; the Registry
// and TemplateHooks pointers are copied, so every exporter shares them.
func (b *Builder) clone() *Builder {
	cp := *b
	cp.errs = append([]error(nil), b.errs...)
	return &cp
}
