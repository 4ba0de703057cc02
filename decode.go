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
	"sort"
	"time"

	"github.com/go-logr/logr"
)

// Decoder holds all per-exporter state needed to decode a sequence of
// NetFlow/IPFIX datagrams: the template caches for v9 and IPFIX (templates
// never cross the v9/IPFIX boundary, RFC 3954 vs RFC 7011 id spaces are
// independent), the field registry, and a count of v9/IPFIX datagrams
// decoded. Packet-based TTL does not read that count; each template cache
// keeps its own packet counter, advanced by tick.
//
// A Decoder is not safe for concurrent use; see the concurrency model. Use
// RouterScopedParser or AutoScopedParser to manage one Decoder per
// exporter.
type Decoder struct {
	opts     Options
	registry *Registry
	hooks    *TemplateHooks
	log      logr.Logger

	v9Cache    *templateCache
	ipfixCache *templateCache

	packetCount uint64
}

func newDecoder(opts Options) *Decoder {
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	d := &Decoder{
		opts:     opts,
		registry: registry,
		hooks:    opts.Hooks,
		log:      Log.WithName("decoder"),
	}
	d.v9Cache = newTemplateCache(TemplateProtocolV9, opts.V9CacheSize, opts.V9TTL, d.hooks)
	d.ipfixCache = newTemplateCache(TemplateProtocolIPFIX, opts.IPFIXCacheSize, opts.IPFIXTTL, d.hooks)
	return d
}

// Decode parses a single datagram. The version field is read from the
// first two bytes and dispatches to the matching fixed or template-driven
// decode path.
func (d *Decoder) Decode(buf []byte) (*Packet, error) {
	start := time.Now()
	pkt, err := d.decode(buf)
	DurationMicroseconds.Observe(float64(time.Since(start).Microseconds()))
	PacketsTotal.Inc()
	if err != nil {
		ErrorsTotal.Inc()
		return pkt, newParseError(0, buf, d.opts.MaxErrorSampleSize, err)
	}
	return pkt, nil
}

func (d *Decoder) decode(buf []byte) (*Packet, error) {
	if len(buf) < 2 {
		return nil, wrapTruncatedHeader(2, len(buf))
	}
	version := Version(be16(buf, 0))
	if !d.opts.AllowedVersions.Allows(version) {
		return nil, wrapUnsupportedVersion(uint16(version))
	}

	switch version {
	case V5:
		return d.decodeV5(buf)
	case V7:
		return d.decodeV7(buf)
	case V9:
		d.packetCount++
		d.v9Cache.tick()
		return d.decodeV9(buf)
	case IPFIX:
		d.packetCount++
		d.ipfixCache.tick()
		return d.decodeIPFIX(buf)
	default:
		return nil, wrapUnsupportedVersion(uint16(version))
	}
}

func (d *Decoder) decodeV5(buf []byte) (*Packet, error) {
	h, err := decodeV5Header(buf)
	if err != nil {
		return nil, err
	}
	records, err := decodeV5Records(buf[v5HeaderLen:], int(h.Count), h.bootTime())
	if err != nil {
		return nil, err
	}
	DecodedRecords.WithLabelValues(V5.String()).Add(float64(len(records)))
	return &Packet{Version: V5, V5: &V5Packet{Header: h, Records: records}}, nil
}

func (d *Decoder) decodeV7(buf []byte) (*Packet, error) {
	h, err := decodeV7Header(buf)
	if err != nil {
		return nil, err
	}
	records, err := decodeV7Records(buf[v7HeaderLen:], int(h.Count), h.bootTime())
	if err != nil {
		return nil, err
	}
	DecodedRecords.WithLabelValues(V7.String()).Add(float64(len(records)))
	return &Packet{Version: V7, V7: &V7Packet{Header: h, Records: records}}, nil
}

func (d *Decoder) decodeV9(buf []byte) (*Packet, error) {
	h, err := decodeV9Header(buf)
	if err != nil {
		return nil, err
	}
	flowsets, err := d.decodeFlowsets(buf[v9HeaderLen:], V9, d.v9Cache, int(h.Count))
	return &Packet{Version: V9, V9: &V9Packet{Header: h, Flowsets: flowsets}}, err
}

func (d *Decoder) decodeIPFIX(buf []byte) (*Packet, error) {
	h, err := decodeIPFIXHeader(buf)
	if err != nil {
		return nil, err
	}
	if int(h.Length) < ipfixHeaderLen {
		return nil, wrapTruncatedHeader(ipfixHeaderLen, int(h.Length))
	}
	if int(h.Length) > len(buf) {
		return nil, wrapLengthOverrun(int(h.Length), len(buf))
	}
	flowsets, err := d.decodeFlowsets(buf[ipfixHeaderLen:h.Length], IPFIX, d.ipfixCache, -1)
	return &Packet{Version: IPFIX, IPFIX: &IPFIXPacket{Header: h, Sets: flowsets}}, err
}

// decodeFlowsets walks consecutive sets until the buffer is exhausted or,
// for v9, until wantRecords records have been produced across all sets
// (RFC 3954 §5.1: header count is a record count, not a set count).
// wantRecords < 0 disables that stop condition (IPFIX has no analogous
// header field).
//
// A set header (id, length) is always 4 bytes and its length is always
// self-describing, so once it's been read the position of the next set is
// known regardless of whether this set's body parses cleanly. A failure
// decoding a set's body (an unrecognized set id, a malformed template, or
// a structural data-set decode error) therefore discards only that set,
// recorded as FlowsetKindMalformed, and decoding continues with the next
// one. Only a failure to read the set header itself, or a declared length
// that doesn't fit in the remaining buffer, aborts the datagram: in both
// cases the position of the next set can no longer be determined.
func (d *Decoder) decodeFlowsets(buf []byte, version Version, cache *templateCache, wantRecords int) ([]Flowset, error) {
	var sets []Flowset
	pos := 0
	produced := 0
	for pos+setHeaderLen <= len(buf) {
		if wantRecords >= 0 && produced >= wantRecords {
			break
		}
		sh, err := decodeSetHeader(buf[pos:])
		if err != nil {
			return sets, err
		}
		if int(sh.Length) < setHeaderLen || pos+int(sh.Length) > len(buf) {
			return sets, wrapLengthOverrun(int(sh.Length), len(buf)-pos)
		}
		body := buf[pos+setHeaderLen : pos+int(sh.Length)]
		fs, n, err := d.decodeOneFlowset(sh, body, version, cache)
		if err != nil {
			d.log.Error(err, "discarding malformed set", "setId", sh.ID, "version", version.String())
			fs = Flowset{Header: sh, Kind: FlowsetKindMalformed, Body: append([]byte(nil), body...), Err: err}
			n = 0
		}
		produced += n
		sets = append(sets, fs)
		pos += int(sh.Length)
	}
	return sets, nil
}

func (d *Decoder) decodeOneFlowset(sh SetHeader, body []byte, version Version, cache *templateCache) (Flowset, int, error) {
	switch {
	case sh.ID == SetIDV9Template || sh.ID == SetIDIPFIXTemplate:
		templates, err := decodeTemplateSet(body, version == IPFIX, d.opts.MaxFieldCount)
		if err != nil {
			return Flowset{}, 0, err
		}
		for _, t := range templates {
			cache.Add(t.TemplateID, t)
			DecodedSets.WithLabelValues("template").Inc()
		}
		return Flowset{Header: sh, Kind: FlowsetKindTemplate, Templates: templates}, len(templates), nil

	case sh.ID == SetIDV9OptionsTemplate || sh.ID == SetIDIPFIXOptions:
		var opt *Template
		var err error
		if version == IPFIX {
			opt, err = decodeIPFIXOptionsTemplate(body, d.opts.MaxFieldCount)
		} else {
			opt, err = decodeV9OptionsTemplate(body, d.opts.MaxFieldCount)
		}
		if err != nil {
			return Flowset{}, 0, err
		}
		cache.Add(opt.TemplateID, opt)
		DecodedSets.WithLabelValues("optionsTemplate").Inc()
		return Flowset{Header: sh, Kind: FlowsetKindOptionsTemplate, Templates: []*Template{opt}}, 1, nil

	case sh.ID >= setIDDataSetMin:
		tmpl, ok := cache.Get(sh.ID)
		if !ok {
			// Not an error: the exporter may simply not have (re)sent the
			// template yet. The cache's Get already recorded the miss and
			// fired a MissingTemplate hook; surface a placeholder flowset
			// carrying the raw body so a caller can hold onto it and
			// re-decode once the template shows up.
			knownIDs := make([]uint16, 0, cache.Len())
			for id := range cache.GetAll() {
				knownIDs = append(knownIDs, id)
			}
			sort.Slice(knownIDs, func(i, j int) bool { return knownIDs[i] < knownIDs[j] })
			return Flowset{
				Header:     sh,
				Kind:       FlowsetKindNoTemplate,
				Body:       append([]byte(nil), body...),
				TemplateID: sh.ID,
				KnownIDs:   knownIDs,
			}, 0, nil
		}
		ctx := decodeCtx{registry: d.registry, codec: d.opts.Codec, unknown: d.opts.UnknownFieldPolicy, maxSample: d.opts.MaxErrorSampleSize, version: version.String()}
		records, err := decodeDataRecords(body, tmpl, ctx)
		if err != nil {
			DroppedRecords.WithLabelValues(version.String(), "decode_error").Inc()
			return Flowset{}, 0, err
		}
		DecodedSets.WithLabelValues("data").Inc()
		DecodedRecords.WithLabelValues(version.String()).Add(float64(len(records)))
		return Flowset{Header: sh, Kind: FlowsetKindData, Records: records}, len(records), nil

	default:
		return Flowset{}, 0, wrapMalformedTemplate("unknown set id")
	}
}
