// Package mmap provides read-only memory-mapped access to local graph files.
//
// # Usage
//
//	m, err := mmap.Open("graph-00.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// Close is idempotent. Callers must not touch the slice returned by Bytes
// after Close returns.
package mmap
