// Package nmea decodes NMEA 0183 sentences.
//
// A line goes through three stages:
//   - ParseFrame checks the start marker, the XOR checksum and the
//     identifier, and splits the body into fields.
//   - A per-sentence parser maps each positional field through a field
//     decoder (coordinates, time, date, numbers, code letters).
//   - The Parser dispatches on the 3-character sentence code, restricted to
//     the Capabilities it was built with.
//
// Fields that the sender left empty decode to an invalid Opt, never to a zero
// value. All intermediate containers are fixed size; overflowing one is a
// *CapacityError.
package nmea
