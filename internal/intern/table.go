package intern

import (
	"bytes"
	"hash/fnv"
)

// Table interns byte strings into stable, dense uint32 IDs. ID 0 is always
// reserved for the empty string.
//
// Table uses FNV-1a as its bucket key but chains IDs within a bucket and
// compares bytes before returning a hit, so two distinct strings sharing
// a hash never alias to the same ID.
type Table struct {
	arena   *arena
	strings [][]byte
	buckets map[uint32][]uint32
}

// NewTable creates an intern table with the empty string already present
// as ID 0.
func NewTable() *Table {
	t := &Table{
		arena:   newArena(),
		strings: make([][]byte, 0, 64),
		buckets: make(map[uint32][]uint32),
	}
	t.strings = append(t.strings, nil)
	t.buckets[fnv32a(nil)] = []uint32{0}
	return t
}

// Intern returns the stable ID for data, allocating a new entry only if an
// identical byte sequence hasn't been seen yet in this table.
func (t *Table) Intern(data []byte) uint32 {
	h := fnv32a(data)
	for _, id := range t.buckets[h] {
		if bytes.Equal(t.strings[id], data) {
			return id
		}
	}

	var stored []byte
	if len(data) > 0 {
		stored = t.arena.alloc(len(data))
		copy(stored, data)
	}

	id := uint32(len(t.strings))
	t.strings = append(t.strings, stored)
	t.buckets[h] = append(t.buckets[h], id)
	return id
}

// Get returns the bytes for a previously interned ID.
func (t *Table) Get(id uint32) []byte {
	return t.strings[id]
}

// Len returns the number of distinct interned strings, including the
// empty string at ID 0.
func (t *Table) Len() int {
	return len(t.strings)
}

// All returns every interned string in ID order. Used by the NX writer.
func (t *Table) All() [][]byte {
	return t.strings
}

func fnv32a(data []byte) uint32 {
	h := fnv.New32a()
	h.Write(data)
	return h.Sum32()
}
