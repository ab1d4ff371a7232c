// Package stream turns an ordered list of locators into a sequence of
// forward-only byte sources.
//
// [ByteSource] is the capability the graph decoder needs: single-byte reads for
// varints, exact reads for fixed-width ids and an end-of-data peek. [Cursor] is
// the state machine that walks the locator list, keeping at most one source
// open at a time:
//
//	NoSourceOpen --Advance--> SourceOpen(i) --Advance--> SourceOpen(i+1) ... --Advance--> Exhausted
//
// Wrappers in this package add transparent decompression (selected by locator
// suffix), IO throttling and byte accounting to the raw streams.
package stream
