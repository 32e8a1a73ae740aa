// Package snapshot implements the Snapshot writer/reader (spec §4.8
// C9): the full-file binary format, the lakehouse directory of
// per-table JSON metadata, and the manifest that linearizes readers
// against writers.
package snapshot

import "encoding/binary"

// Magic is the snapshot file's 4-byte identifier, "GRIZ".
var Magic = [4]byte{0x47, 0x52, 0x49, 0x5A}

// Version is the current snapshot format version.
const Version uint16 = 4

func putUint16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func putUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func putUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func putString(buf []byte, s string) []byte {
	buf = putUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
