package vm

// Heap is an arena of cell arrays. Objects live until Reset, whichever
// frame allocated them; Reset bumps the generation so that references from
// an earlier run fault instead of aliasing new objects.
type Heap struct {
	objects [][]Value
	gen     uint32
	cells   int
}

func newHeap() *Heap {
	return &Heap{gen: 1}
}

// Alloc returns a reference to the first cell of a new zeroed array.
func (h *Heap) Alloc(n int) Reference {
	h.objects = append(h.objects, make([]Value, n))
	h.cells += n
	return Reference{space: heapSpace, object: len(h.objects) - 1, gen: h.gen}
}

// Reset frees every object.
func (h *Heap) Reset() {
	h.objects = nil
	h.cells = 0
	h.gen++
}

// Len returns the number of live objects.
func (h *Heap) Len() int { return len(h.objects) }

// Cells returns the total number of cells in live objects.
func (h *Heap) Cells() int { return h.cells }

// Array returns a copy of the object r points into.
func (h *Heap) Array(r Reference) ([]Value, bool) {
	cells, err := h.object(r)
	if err != nil {
		return nil, false
	}
	out := make([]Value, len(cells))
	copy(out, cells)
	return out, true
}

func (h *Heap) object(r Reference) ([]Value, error) {
	if !r.IsHeap() || r.gen != h.gen || r.object < 0 || r.object >= len(h.objects) {
		return nil, faultf(DanglingReference, "%s is not a live heap object", r)
	}
	return h.objects[r.object], nil
}

// cell returns a pointer to the cell r designates.
func (h *Heap) cell(r Reference) (*Value, error) {
	cells, err := h.object(r)
	if err != nil {
		return nil, err
	}
	if r.index < 0 || r.index >= len(cells) {
		return nil, faultf(ArrayIndex, "index %d out of range for array of length %d", r.index, len(cells))
	}
	return &cells[r.index], nil
}
