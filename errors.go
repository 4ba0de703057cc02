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
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is against these, not string comparison.
var (
	ErrUnsupportedVersion = errors.New("unsupported netflow/ipfix version")
	ErrTruncatedHeader    = errors.New("truncated header")
	ErrLengthOverrun      = errors.New("declared length overruns buffer")
	ErrMalformedTemplate  = errors.New("malformed template")
	ErrFieldDecode        = errors.New("field decode failed")
	ErrConfigError        = errors.New("invalid decoder configuration")
)

func wrapUnsupportedVersion(version uint16) error {
	return fmt.Errorf("%w: %#04x", ErrUnsupportedVersion, version)
}

func wrapTruncatedHeader(want, got int) error {
	return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedHeader, want, got)
}

func wrapLengthOverrun(declared, remaining int) error {
	return fmt.Errorf("%w: declared %d bytes, %d remaining", ErrLengthOverrun, declared, remaining)
}

func wrapMalformedTemplate(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedTemplate, reason)
}

func wrapFieldDecode(fieldIdx int, enterprise uint32, fieldID uint16, cause error) error {
	return fmt.Errorf("%w: field %d (pen=%d, id=%d): %v", ErrFieldDecode, fieldIdx, enterprise, fieldID, cause)
}

func wrapConfigError(reason string) error {
	return fmt.Errorf("%w: %s", ErrConfigError, reason)
}

// ParseError carries a bounded sample of the offending bytes alongside the
// wrapped sentinel, so callers building their own telemetry don't need to
// re-slice the original datagram.
type ParseError struct {
	Offset int
	Sample []byte
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %v (sample=% x)", e.Offset, e.Cause, e.Sample)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func newParseError(offset int, buf []byte, maxSample int, cause error) *ParseError {
	end := offset + maxSample
	if end > len(buf) {
		end = len(buf)
	}
	start := offset
	if start > len(buf) {
		start = len(buf)
	}
	sample := make([]byte, end-start)
	copy(sample, buf[start:end])
	return &ParseError{Offset: offset, Sample: sample, Cause: cause}
}
