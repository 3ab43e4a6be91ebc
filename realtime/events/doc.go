// Package events defines the wire event envelope exchanged with the
// realtime API and the identifiers stamped onto outbound events.
//
// An envelope is a JSON object with a required "type" discriminator (a
// namespaced string such as "session.update" or "response.audio.delta")
// and an optional "event_id" assigned by the sender. The remaining fields
// are defined per event type by the API's schema; this package treats them
// as opaque.
//
// Encoding and decoding go through the [Codec] seam so a generated schema
// package can be swapped in for the default JSON codec.
package events
