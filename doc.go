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

// Package netflow decodes NetFlow v5, v7, v9 and IPFIX (v10) UDP datagrams
// into structured records.
//
// The package is a pure decoder: it consumes byte slices handed to it by a
// caller (typically read off a UDP socket) and returns parsed packets or
// recoverable errors. It performs no I/O of its own.
//
// v5 and v7 have a fixed record layout and are decoded directly. v9 and
// IPFIX describe their record schema at runtime via template sets that
// arrive interleaved with the data they describe; the bulk of this package
// is the template cache and template-driven field decoder that makes that
// possible.
//
// Template state is scoped per exporter (see ScopeKey, RouterScopedParser and
// AutoScopedParser) so that two exporters reusing the same template ID do
// not corrupt one another's schema, as required by RFC 3954 §5.1 and
// RFC 7011 §3.4.2.
package netflow
