package render

// BufferKind distinguishes the three upload paths.
type BufferKind int

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
	StructuredBuffer
)

// Buffer is one stored upload of the in-memory backend.
type Buffer struct {
	Name string
	Kind BufferKind
	Data any
}

// MemoryBackend retains uploaded arrays in maps, standing in for a GPU
// backend in tests and offline tooling.
type MemoryBackend struct {
	buffers map[Handle]Buffer
	next    Handle
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{buffers: make(map[Handle]Buffer)}
}

func (b *MemoryBackend) create(name string, kind BufferKind, data any) Handle {
	b.next++
	b.buffers[b.next] = Buffer{Name: name, Kind: kind, Data: data}
	return b.next
}

// CreateVertexBuffer stores a vertex attribute stream.
func (b *MemoryBackend) CreateVertexBuffer(name string, data any) Handle {
	return b.create(name, VertexBuffer, data)
}

// CreateIndexBuffer stores an index list.
func (b *MemoryBackend) CreateIndexBuffer(name string, data []uint32) Handle {
	return b.create(name, IndexBuffer, data)
}

// CreateStructuredBuffer stores a storage-buffer array.
func (b *MemoryBackend) CreateStructuredBuffer(name string, data any) Handle {
	return b.create(name, StructuredBuffer, data)
}

// Release drops a stored buffer.
func (b *MemoryBackend) Release(handle Handle) {
	delete(b.buffers, handle)
}

// Get returns the buffer behind a handle, if it is still live.
func (b *MemoryBackend) Get(handle Handle) (Buffer, bool) {
	buf, ok := b.buffers[handle]
	return buf, ok
}

// Live returns the number of live buffers.
func (b *MemoryBackend) Live() int {
	return len(b.buffers)
}
