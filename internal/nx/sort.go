package nx

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/nolifestory/wz2nx/internal/intern"
)

// SortSiblings sorts every sibling range registered on t so a reader can
// binary-search children by name: byte-wise compare, then shorter-first,
// with identical names being a hard error.
func SortSiblings(t *Table, strings *intern.Table) error {
	for _, r := range t.ranges {
		first, count := r[0], r[1]
		if err := sortRange(t, strings, first, count); err != nil {
			return err
		}
	}
	return nil
}

func sortRange(t *Table, strings *intern.Table, first, count uint32) error {
	slice := t.Nodes[first : first+count]

	sort.SliceStable(slice, func(i, j int) bool {
		return compareNames(strings, slice[i].NameID, slice[j].NameID) < 0
	})

	for i := 1; i < len(slice); i++ {
		if compareNames(strings, slice[i-1].NameID, slice[i].NameID) == 0 {
			return fmt.Errorf("nx: identical sibling names %q: this is baaaaaaaaaaaaaad", strings.Get(slice[i].NameID))
		}
	}
	return nil
}

// compareNames orders two names byte-wise up to the shorter length, then
// shorter-first.
func compareNames(strings *intern.Table, a, b uint32) int {
	sa, sb := strings.Get(a), strings.Get(b)
	n := len(sa)
	if len(sb) < n {
		n = len(sb)
	}
	if c := bytes.Compare(sa[:n], sb[:n]); c != 0 {
		return c
	}
	switch {
	case len(sa) < len(sb):
		return -1
	case len(sa) > len(sb):
		return 1
	default:
		return 0
	}
}
