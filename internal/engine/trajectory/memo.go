package trajectory

// Guard gates an expensive recomputation on a value-compared request key.
// Changed reports whether the key differs from the last accepted one and,
// if so, records it; Invalidate forces the next Changed to report true.
// The zero value is ready to use.
type Guard[K comparable] struct {
	key   K
	valid bool
}

// Changed records key and reports whether a recomputation is needed.
func (g *Guard[K]) Changed(key K) bool {
	if g.valid && g.key == key {
		return false
	}
	g.key = key
	g.valid = true
	return true
}

// Invalidate discards the recorded key.
func (g *Guard[K]) Invalidate() {
	g.valid = false
}
