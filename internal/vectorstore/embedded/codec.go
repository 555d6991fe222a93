package embedded

import (
	"encoding/binary"
	"math"
)

// encodeVector packs a []float32 as little-endian bytes for SQLite BLOB
// storage; coder/hnsw's own on-disk format isn't reused here since the
// graph is kept in memory only (see New's doc comment).
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
