// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package quad builds the packed vertex records uploaded for each sprite.
package quad

import (
	"encoding/binary"
	"math"
)

// VertexSize is the byte stride per vertex.
// Layout per vertex:
//
//	position (vec2<f32>)      = 8 bytes  (location 0)
//	uv       (unorm16x2)      = 4 bytes  (location 1)
//	color    (unorm8x4)       = 4 bytes  (location 2)
//	depth    (f32)            = 4 bytes  (location 3)
//
// Total = 20 bytes per vertex.
const VertexSize = 20

// VerticesPerQuad is the number of vertex records in one quad.
const VerticesPerQuad = 4

// IndicesPerQuad is the number of indices drawn per quad (two triangles).
const IndicesPerQuad = 6

// Size is the byte size of one encoded quad.
const Size = VertexSize * VerticesPerQuad

// UVMax is the normalized texture coordinate for 1.0.
const UVMax = math.MaxUint16

// Vertex is a single packed vertex record.
type Vertex struct {
	X, Y       float32
	U, V       uint16
	R, G, B, A uint8
	Depth      float32
}

// Put writes v into buf in the GPU layout. buf must hold VertexSize bytes.
func (v *Vertex) Put(buf []byte) {
	_ = buf[VertexSize-1]
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint16(buf[8:10], v.U)
	binary.LittleEndian.PutUint16(buf[10:12], v.V)
	buf[12] = v.R
	buf[13] = v.G
	buf[14] = v.B
	buf[15] = v.A
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Depth))
}

// Decode reads a vertex from buf.
func Decode(buf []byte) Vertex {
	_ = buf[VertexSize-1]
	return Vertex{
		X:     math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
		Y:     math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		U:     binary.LittleEndian.Uint16(buf[8:10]),
		V:     binary.LittleEndian.Uint16(buf[10:12]),
		R:     buf[12],
		G:     buf[13],
		B:     buf[14],
		A:     buf[15],
		Depth: math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])),
	}
}

// Quad is four vertex records in the order top-left, top-right,
// bottom-right, bottom-left.
type Quad [VerticesPerQuad]Vertex

// Put encodes the quad into buf, which must hold Size bytes.
func (q *Quad) Put(buf []byte) {
	for i := range q {
		q[i].Put(buf[i*VertexSize:])
	}
}

// AppendIndices appends the triangle-list indices for n quads to dst.
// Uses the pattern 0,1,2, 2,3,0 per quad.
func AppendIndices(dst []uint32, n int) []uint32 {
	for i := 0; i < n; i++ {
		v := uint32(i * VerticesPerQuad) //nolint:gosec // n is bounded by batch capacity
		dst = append(dst, v, v+1, v+2, v+2, v+3, v)
	}
	return dst
}

// IndexBytes serializes the indices for n quads into little-endian bytes.
func IndexBytes(n int) []byte {
	indices := AppendIndices(make([]uint32, 0, n*IndicesPerQuad), n)
	data := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(data[i*4:], idx)
	}
	return data
}
