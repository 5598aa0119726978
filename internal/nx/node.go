package nx

import (
	"encoding/binary"
	"math"
)

// Kind tags the variant stored in a Node's Payload.
type Kind uint16

const (
	KindNone Kind = iota
	KindInteger
	KindReal
	KindString
	KindVector
	KindBitmap
	KindAudio
	KindUOL
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindVector:
		return "vector"
	case KindBitmap:
		return "bitmap"
	case KindAudio:
		return "audio"
	case KindUOL:
		return "uol"
	default:
		return "unknown"
	}
}

// Node is the Go-side view of the 20-byte on-disk node record. The 8-byte
// Payload is a flat union discriminated by Kind; the Set*/Get accessors
// are a view/serialization shim so the rest of the codebase works with a
// real sum type instead of raw bytes.
type Node struct {
	NameID     uint32
	FirstChild uint32
	ChildCount uint16
	Kind       Kind
	Payload    [8]byte
}

func (n *Node) SetInteger(v int64) {
	binary.LittleEndian.PutUint64(n.Payload[:], uint64(v))
	n.Kind = KindInteger
}

func (n *Node) Integer() int64 {
	return int64(binary.LittleEndian.Uint64(n.Payload[:]))
}

func (n *Node) SetReal(v float64) {
	binary.LittleEndian.PutUint64(n.Payload[:], math.Float64bits(v))
	n.Kind = KindReal
}

func (n *Node) Real() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(n.Payload[:]))
}

func (n *Node) SetStringID(id uint32) {
	binary.LittleEndian.PutUint32(n.Payload[0:4], id)
	binary.LittleEndian.PutUint32(n.Payload[4:8], 0)
	n.Kind = KindString
}

func (n *Node) StringID() uint32 {
	return binary.LittleEndian.Uint32(n.Payload[0:4])
}

func (n *Node) SetVector(x, y int32) {
	binary.LittleEndian.PutUint32(n.Payload[0:4], uint32(x))
	binary.LittleEndian.PutUint32(n.Payload[4:8], uint32(y))
	n.Kind = KindVector
}

func (n *Node) Vector() (int32, int32) {
	return int32(binary.LittleEndian.Uint32(n.Payload[0:4])), int32(binary.LittleEndian.Uint32(n.Payload[4:8]))
}

func (n *Node) SetBitmap(id uint32, w, h uint16) {
	binary.LittleEndian.PutUint32(n.Payload[0:4], id)
	binary.LittleEndian.PutUint16(n.Payload[4:6], w)
	binary.LittleEndian.PutUint16(n.Payload[6:8], h)
	n.Kind = KindBitmap
}

func (n *Node) SetAudio(id uint32, lengthMs uint32) {
	binary.LittleEndian.PutUint32(n.Payload[0:4], id)
	binary.LittleEndian.PutUint32(n.Payload[4:8], lengthMs)
	n.Kind = KindAudio
}

// SetUOL stores the transient link-path string ID. Resolved away by
// ResolveUOLs before the node table is written.
func (n *Node) SetUOL(stringID uint32) {
	binary.LittleEndian.PutUint32(n.Payload[0:4], stringID)
	binary.LittleEndian.PutUint32(n.Payload[4:8], 0)
	n.Kind = KindUOL
}

// Encode writes the node's 20-byte on-disk record into dst.
func (n *Node) Encode(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], n.NameID)
	binary.LittleEndian.PutUint32(dst[4:8], n.FirstChild)
	binary.LittleEndian.PutUint16(dst[8:10], n.ChildCount)
	binary.LittleEndian.PutUint16(dst[10:12], uint16(n.Kind))
	copy(dst[12:20], n.Payload[:])
}

// Size is the fixed on-disk width of a node record.
const Size = 20

// Table is the growable node table: an append-only vector of fixed-size
// records plus the list of sibling ranges still awaiting the sort pass.
type Table struct {
	Nodes  []Node
	ranges [][2]uint32
}

// NewTable creates a table with a single root node at index 0, name ID 0.
func NewTable() *Table {
	return &Table{Nodes: []Node{{}}}
}

// Root is always index 0.
const Root uint32 = 0

// Len returns the number of nodes currently in the table.
func (t *Table) Len() uint32 {
	return uint32(len(t.Nodes))
}

// AppendChildren appends count zero-valued nodes and registers the new
// contiguous range for later sibling sorting, without wiring any parent's
// FirstChild/ChildCount to it. Most callers want AddChildren; this exists
// for the one case (Convex2D, see internal/parser/property.go) where the
// source registers a range for sorting without ever linking it from the
// node that produced it.
func (t *Table) AppendChildren(count int) uint32 {
	first := uint32(len(t.Nodes))
	t.Nodes = append(t.Nodes, make([]Node, count)...)
	t.registerRange(first, count)
	return first
}

// AddChildren appends count zero-valued nodes, wires parent's FirstChild
// and ChildCount to the new contiguous range, and registers that range for
// later sibling sorting. It returns the index of the first new child.
func (t *Table) AddChildren(parent uint32, count int) uint32 {
	first := t.AppendChildren(count)
	t.Nodes[parent].FirstChild = first
	t.Nodes[parent].ChildCount = uint16(count)
	return first
}

func (t *Table) registerRange(first uint32, count int) {
	if count > 0 {
		t.ranges = append(t.ranges, [2]uint32{first, uint32(count)})
	}
}

// Ranges returns every sibling range registered for sorting, in the order
// they were recorded.
func (t *Table) Ranges() [][2]uint32 {
	return t.ranges
}
