// Package varint implements the base-128 variable-length integer encoding used
// for degree records in the binary graph format.
//
// Each byte carries 7 payload bits, least significant group first. The high bit
// of a byte is set when another byte follows. A uint64 needs at most
// [MaxLen64] bytes; on the last of those only the lowest bit may be set.
package varint
