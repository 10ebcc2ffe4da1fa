// Package codec converts session envelopes and typed payloads to and from
// their serialized form.
//
// Two codecs are provided:
//   - JSON, the encoding used by the Debug Adapter Protocol, backed by
//     github.com/segmentio/encoding/json
//   - CBOR, a compact binary alternative for in-house peers, backed by
//     github.com/fxamacker/cbor/v2 with Core Deterministic Encoding
//
// Payloads stay encoded inside a message.Message until the session knows
// which typed value they belong to, so each codec also exposes Marshal and
// Unmarshal for the payload step.
package codec
