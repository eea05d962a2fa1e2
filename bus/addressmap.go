package bus

import (
	"fmt"
	"sort"
)

// Region is one named address window. Base and Size are in bytes of the
// bus the region is registered on.
type Region struct {
	Name string
	Base uint64
	Size uint64
}

// End returns the first address past the window.
func (r Region) End() uint64 { return r.Base + r.Size }

// Contains reports whether addr falls inside the window.
func (r Region) Contains(addr uint64) bool {
	return addr >= r.Base && addr < r.End()
}

// overlaps reports whether two windows share any address. Windows that
// merely touch (End of one == Base of the other) are adjacent, not
// overlapping.
func (r Region) overlaps(o Region) bool {
	return r.Base < o.End() && o.Base < r.End()
}

func (r Region) String() string {
	return fmt.Sprintf("%s [0x%08X, 0x%08X)", r.Name, r.Base, r.End())
}

// OverlapError is returned when a registration would intersect an existing
// window. It is a configuration fault: the map is left unchanged and the
// composition should abort.
type OverlapError struct {
	New      Region
	Existing Region
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("region %v overlaps %v", e.New, e.Existing)
}

type mapEntry[T any] struct {
	region Region
	target T
}

// AddressMap is a static table of disjoint address windows, each owned by
// one target. Entries are kept sorted by base address so routing is a
// binary search. The map is built once at composition time; it performs no
// locking and must not be mutated while transactions are in flight.
type AddressMap[T any] struct {
	entries []mapEntry[T]
}

// Add registers target under the window [base, base+size). It fails for
// zero-size windows and for any intersection with a previously registered
// window.
func (m *AddressMap[T]) Add(target T, name string, base, size uint64) error {
	r := Region{Name: name, Base: base, Size: size}
	if size == 0 {
		return fmt.Errorf("region %s: zero-size window at 0x%08X", name, base)
	}
	if r.End() < r.Base {
		return fmt.Errorf("region %v wraps the address space", r)
	}

	for _, e := range m.entries {
		if r.overlaps(e.region) {
			return &OverlapError{New: r, Existing: e.region}
		}
	}

	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].region.Base > base
	})
	m.entries = append(m.entries, mapEntry[T]{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = mapEntry[T]{region: r, target: target}

	return nil
}

// Route returns the target whose window contains addr, along with the
// window-local offset of addr. ok is false when no window matches.
func (m *AddressMap[T]) Route(addr uint64) (target T, local uint64, ok bool) {
	// First entry whose window could still contain addr.
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].region.End() > addr
	})
	if i == len(m.entries) || !m.entries[i].region.Contains(addr) {
		var zero T
		return zero, 0, false
	}

	return m.entries[i].target, addr - m.entries[i].region.Base, true
}

// Lookup returns the region containing addr, if any.
func (m *AddressMap[T]) Lookup(addr uint64) (Region, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].region.End() > addr
	})
	if i == len(m.entries) || !m.entries[i].region.Contains(addr) {
		return Region{}, false
	}

	return m.entries[i].region, true
}

// Regions returns the registered windows in ascending base order.
func (m *AddressMap[T]) Regions() []Region {
	regions := make([]Region, len(m.entries))
	for i, e := range m.entries {
		regions[i] = e.region
	}
	return regions
}

// Len returns the number of registered windows.
func (m *AddressMap[T]) Len() int { return len(m.entries) }
