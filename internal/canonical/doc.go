// Package canonical serializes benchmark descriptions to canonical JSON and
// derives content-addressed fingerprints from them.
//
// The encoding follows RFC 8785 for the subset of values it accepts:
// strings (NFC-normalized), integers, booleans, arrays and objects. Object
// keys are ordered by UTF-16 code units. Floats and null are rejected:
// callers format floating-point values as strings first, so two runs that
// print the same digits hash identically on every platform.
//
// Fingerprints are SHA-256 over a domain prefix, a zero byte and the
// canonical bytes.
package canonical
