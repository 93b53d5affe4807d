// Package render defines the buffer-upload contract between the geometry
// engine and a rendering backend, plus an in-memory backend for tests and
// offline tools. GPU implementations live outside this module; the engine
// only hands over typed arrays and holds opaque handles.
package render

// Handle identifies one backend buffer. The zero handle is invalid.
type Handle uint32

// Backend creates buffers from typed arrays. The engine calls each
// creation method exactly once per generated artifact and never inspects
// the returned handles.
type Backend interface {
	// CreateVertexBuffer uploads a per-vertex attribute stream such as
	// []math.Vec3, []float32 or []int32.
	CreateVertexBuffer(name string, data any) Handle

	// CreateIndexBuffer uploads a triangle or line index list.
	CreateIndexBuffer(name string, data []uint32) Handle

	// CreateStructuredBuffer uploads an array of structs or scalars that
	// shaders read as a storage buffer.
	CreateStructuredBuffer(name string, data any) Handle

	// Release frees the buffer behind a handle. Releasing the zero
	// handle is a no-op.
	Release(handle Handle)
}
