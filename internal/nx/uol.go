package nx

import (
	"bytes"

	"github.com/nolifestory/wz2nx/internal/intern"
)

// ResolveUOLs walks the tree depth-first from the root, rewriting every UOL
// node to the target it points at. Unresolvable links collapse to KindNone,
// so no node has kind uol once this returns.
//
// A UOL resolves with a single copy from whatever is currently stored at
// the target index; it never recurses into the target even if the target
// is itself an unresolved UOL. Because this performs no recursive target
// lookup, it cannot run away on a cycle the way a recurse-into-target
// design could. Any node still of kind uol after the traversal (a link that
// copied a still-unresolved UOL target, or a UOL node not reachable by child
// pointers from the root) is collapsed to KindNone by a final sweep.
func ResolveUOLs(t *Table, strings *intern.Table) {
	resolveNode(t, strings, Root, nil)
	for i := range t.Nodes {
		if t.Nodes[i].Kind == KindUOL {
			t.Nodes[i].Kind = KindNone
			t.Nodes[i].FirstChild = 0
			t.Nodes[i].ChildCount = 0
		}
	}
}

func resolveNode(t *Table, strings *intern.Table, idx uint32, path [][]byte) {
	n := &t.Nodes[idx]
	if n.Kind == KindUOL {
		resolveUOL(t, strings, idx, path)
		return
	}

	if idx != Root {
		path = append(path, strings.Get(n.NameID))
	}

	first, count := n.FirstChild, uint32(n.ChildCount)
	for i := uint32(0); i < count; i++ {
		resolveNode(t, strings, first+i, path)
	}
}

func resolveUOL(t *Table, strings *intern.Table, idx uint32, path [][]byte) {
	n := &t.Nodes[idx]
	link := strings.Get(n.StringID())

	target := make([][]byte, len(path))
	copy(target, path)
	for _, seg := range splitUOLPath(link) {
		if bytes.Equal(seg, []byte("..")) {
			if len(target) > 0 {
				target = target[:len(target)-1]
			}
		} else {
			target = append(target, seg)
		}
	}

	cur := Root
	for _, seg := range target {
		cn := t.Nodes[cur]
		found := false
		for i := uint32(0); i < uint32(cn.ChildCount); i++ {
			ci := cn.FirstChild + i
			if bytes.Equal(strings.Get(t.Nodes[ci].NameID), seg) {
				cur = ci
				found = true
				break
			}
		}
		if !found {
			// Damnit Nexon
			n.Kind = KindNone
			n.FirstChild = 0
			n.ChildCount = 0
			return
		}
	}

	tgt := t.Nodes[cur]
	n.Kind = tgt.Kind
	n.FirstChild = tgt.FirstChild
	n.ChildCount = tgt.ChildCount
	n.Payload = tgt.Payload
	// Name is deliberately not copied.
}

// splitUOLPath splits a UOL link on '/', always emitting a final trailing
// segment, even if empty, after the last '/'.
func splitUOLPath(s []byte) [][]byte {
	var segs [][]byte
	start := 0
	for i, b := range s {
		if b == '/' {
			segs = append(segs, s[start:i])
			start = i + 1
		}
	}
	segs = append(segs, s[start:])
	return segs
}
