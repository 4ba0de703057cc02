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

import "sync"

// UnscopedParser decodes datagrams from every exporter against a single
// shared template cache. Suitable only when the caller guarantees a
// single exporter, or accepts that two exporters reusing a template id
// will corrupt each other's schema.
type UnscopedParser struct {
	decoder *Decoder
}

func NewUnscopedParser(b *Builder) (*UnscopedParser, error) {
	if b == nil {
		b = NewBuilder()
	}
	d, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &UnscopedParser{decoder: d}, nil
}

func (p *UnscopedParser) Parse(buf []byte) (*Packet, error) {
	return p.decoder.Decode(buf)
}

func (p *UnscopedParser) Stats() (v9, ipfix CacheMetricsSnapshot) {
	return p.decoder.v9Cache.Metrics(), p.decoder.ipfixCache.Metrics()
}

// ScopeKey is the RFC-correct auto-derived scope for a v9/IPFIX exporter:
// its source address plus the observation-domain id (IPFIX) or source id
// (v9) carried in the datagram header. v5/v7 carry neither id, so
// HasDomain is false and Addr alone is the scope.
type ScopeKey struct {
	Addr      string
	Domain    uint32
	HasDomain bool
}

// SourceStats is a snapshot of one scope's two template caches.
type SourceStats struct {
	V9    CacheMetricsSnapshot
	IPFIX CacheMetricsSnapshot
}

// RouterScopedParser maintains one Decoder (and therefore one pair of
// template caches) per caller-supplied key, so that two exporters using
// conflicting template ids never interfere with one another. K is
// typically a net.IP, a string address, or a ScopeKey for RFC-correct
// auto-scoping; see AutoScopedParser.
type RouterScopedParser[K comparable] struct {
	mu      sync.Mutex
	parsers map[K]*Decoder
	builder *Builder
}

// NewRouterScopedParser constructs a scoped parser using library defaults
// for every new source.
func NewRouterScopedParser[K comparable]() *RouterScopedParser[K] {
	return NewRouterScopedParserWithBuilder[K](NewBuilder())
}

// NewRouterScopedParserWithBuilder constructs a scoped parser where every
// new source's Decoder is built from a clone of b, so source-specific
// state (caches, sequence counters) never leaks between exporters while
// configuration (cache sizes, TTL, hooks, registry) stays consistent.
func NewRouterScopedParserWithBuilder[K comparable](b *Builder) *RouterScopedParser[K] {
	if b == nil {
		b = NewBuilder()
	}
	return &RouterScopedParser[K]{parsers: make(map[K]*Decoder), builder: b}
}

func (p *RouterScopedParser[K]) getOrCreate(key K) (*Decoder, error) {
	if d, ok := p.parsers[key]; ok {
		return d, nil
	}
	d, err := p.builder.clone().Build()
	if err != nil {
		return nil, err
	}
	p.parsers[key] = d
	return d, nil
}

// ParseFromSource decodes buf using (creating, if needed) the Decoder
// scoped to key.
func (p *RouterScopedParser[K]) ParseFromSource(key K, buf []byte) (*Packet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, err := p.getOrCreate(key)
	if err != nil {
		return nil, err
	}
	return d.Decode(buf)
}

// SourceCount returns the number of distinct sources currently tracked.
func (p *RouterScopedParser[K]) SourceCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.parsers)
}

// Sources returns every key currently tracked, in no particular order.
func (p *RouterScopedParser[K]) Sources() []K {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]K, 0, len(p.parsers))
	for k := range p.parsers {
		out = append(out, k)
	}
	return out
}

// RemoveSource drops a source entirely, discarding its template caches.
func (p *RouterScopedParser[K]) RemoveSource(key K) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.parsers, key)
}

// ClearSourceTemplates empties a source's template caches without
// forgetting the source (its sequence counters and registry are kept).
func (p *RouterScopedParser[K]) ClearSourceTemplates(key K) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.parsers[key]; ok {
		d.v9Cache.Clear()
		d.ipfixCache.Clear()
	}
}

// ClearAllTemplates empties every tracked source's template caches.
func (p *RouterScopedParser[K]) ClearAllTemplates() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range p.parsers {
		d.v9Cache.Clear()
		d.ipfixCache.Clear()
	}
}

// GetSourceStats returns key's cache metrics, or ok=false if key is not
// tracked.
func (p *RouterScopedParser[K]) GetSourceStats(key K) (stats SourceStats, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.parsers[key]
	if !ok {
		return SourceStats{}, false
	}
	return SourceStats{V9: d.v9Cache.Metrics(), IPFIX: d.ipfixCache.Metrics()}, true
}

// AllStats returns every tracked source's cache metrics.
func (p *RouterScopedParser[K]) AllStats() map[K]SourceStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[K]SourceStats, len(p.parsers))
	for k, d := range p.parsers {
		out[k] = SourceStats{V9: d.v9Cache.Metrics(), IPFIX: d.ipfixCache.Metrics()}
	}
	return out
}

// AutoScopedParser derives a ScopeKey from each datagram's own header
// instead of requiring the caller to track source ids: (addr,
// observation_domain_id) for IPFIX (RFC 7011 §3.4.2) and (addr, source_id)
// for v9 (RFC 3954 §5.1). v5/v7 datagrams carry no such id and are scoped
// on addr alone, which is safe since they never carry templates.
type AutoScopedParser struct {
	inner *RouterScopedParser[ScopeKey]
}

func NewAutoScopedParser(b *Builder) *AutoScopedParser {
	return &AutoScopedParser{inner: NewRouterScopedParserWithBuilder[ScopeKey](b)}
}

// Parse decodes buf received from addr, routing it to the scope its
// header identifies.
func (p *AutoScopedParser) Parse(addr string, buf []byte) (*Packet, error) {
	key, err := deriveScopeKey(addr, buf)
	if err != nil {
		return nil, err
	}
	return p.inner.ParseFromSource(key, buf)
}

func (p *AutoScopedParser) SourceCount() int                      { return p.inner.SourceCount() }
func (p *AutoScopedParser) Sources() []ScopeKey                    { return p.inner.Sources() }
func (p *AutoScopedParser) RemoveSource(key ScopeKey)              { p.inner.RemoveSource(key) }
func (p *AutoScopedParser) ClearSourceTemplates(key ScopeKey)      { p.inner.ClearSourceTemplates(key) }
func (p *AutoScopedParser) ClearAllTemplates()                     { p.inner.ClearAllTemplates() }
func (p *AutoScopedParser) AllStats() map[ScopeKey]SourceStats     { return p.inner.AllStats() }
func (p *AutoScopedParser) GetSourceStats(key ScopeKey) (SourceStats, bool) {
	return p.inner.GetSourceStats(key)
}

// deriveScopeKey peeks the version and, for v9/IPFIX, the domain/source id
// straight out of the header bytes without fully decoding the datagram.
func deriveScopeKey(addr string, buf []byte) (ScopeKey, error) {
	if len(buf) < 2 {
		return ScopeKey{}, wrapTruncatedHeader(2, len(buf))
	}
	version := Version(be16(buf, 0))
	switch version {
	case V9:
		if len(buf) < v9HeaderLen {
			return ScopeKey{}, wrapTruncatedHeader(v9HeaderLen, len(buf))
		}
		return ScopeKey{Addr: addr, Domain: be32(buf, 16), HasDomain: true}, nil
	case IPFIX:
		if len(buf) < ipfixHeaderLen {
			return ScopeKey{}, wrapTruncatedHeader(ipfixHeaderLen, len(buf))
		}
		return ScopeKey{Addr: addr, Domain: be32(buf, 12), HasDomain: true}, nil
	default:
		return ScopeKey{Addr: addr}, nil
	}
}
