package nx

import (
	"bufio"
	"encoding/binary"
	"io"
	"log/slog"

	"github.com/nolifestory/wz2nx/internal/intern"
)

// Magic identifies a valid NX file ("PKG4").
const Magic uint32 = 0x34474B50

// pad16 rounds x up to the next multiple of 16.
func pad16(x uint64) uint64 {
	return x + ((16 - (x & 15)) & 15)
}

// Layout is the fixed-offset plan for an NX file, computed once so header
// fields and section positions agree.
type Layout struct {
	NodeOffset        uint64
	StringTableOffset uint64
	StringBlobOffset  uint64
	FileSize          uint64
	NodeCount         uint32
	StringCount       uint32
}

// ComputeLayout derives every section offset from the final node and
// string counts.
func ComputeLayout(nodeCount int, strings *intern.Table) Layout {
	nodeOffset := pad16(52)
	stringTableOffset := pad16(nodeOffset + uint64(nodeCount)*Size)
	stringBlobOffset := pad16(stringTableOffset + uint64(strings.Len())*8)

	blobSize := uint64(0)
	for _, s := range strings.All() {
		blobSize += 2 + uint64(len(s))
	}

	return Layout{
		NodeOffset:        nodeOffset,
		StringTableOffset: stringTableOffset,
		StringBlobOffset:  stringBlobOffset,
		FileSize:          pad16(stringBlobOffset + blobSize),
		NodeCount:         uint32(nodeCount),
		StringCount:       uint32(strings.Len()),
	}
}

// Write serializes the header, node array, string offset table, and string
// blob to w, in that order, padding between sections as Layout dictates.
// Bitmap and audio tables are declared absent (count and offset zero) —
// this core never parses pixel or sample payloads. logger may be nil.
func Write(w io.Writer, t *Table, strings *intern.Table, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	bw := bufio.NewWriterSize(w, 1<<20)

	layout := ComputeLayout(len(t.Nodes), strings)

	if err := writeHeader(bw, layout); err != nil {
		return err
	}
	if err := padTo(bw, 52, layout.NodeOffset); err != nil {
		return err
	}
	if err := writeNodes(bw, t); err != nil {
		return err
	}
	logger.Info("Wrote nodes")
	if err := padTo(bw, layout.NodeOffset+uint64(len(t.Nodes))*Size, layout.StringTableOffset); err != nil {
		return err
	}
	if err := writeStringTable(bw, layout, strings); err != nil {
		return err
	}
	if err := padTo(bw, layout.StringTableOffset+uint64(strings.Len())*8, layout.StringBlobOffset); err != nil {
		return err
	}
	blobSize, err := writeStringBlob(bw, strings)
	if err != nil {
		return err
	}
	logger.Info("Wrote strings")
	if err := padTo(bw, layout.StringBlobOffset+blobSize, layout.FileSize); err != nil {
		return err
	}

	return bw.Flush()
}

func padTo(w *bufio.Writer, cur, target uint64) error {
	if target <= cur {
		return nil
	}
	_, err := w.Write(make([]byte, target-cur))
	return err
}

func writeHeader(w io.Writer, l Layout) error {
	var hdr [52]byte
	binary.LittleEndian.PutUint32(hdr[0:4], Magic)
	binary.LittleEndian.PutUint32(hdr[4:8], l.NodeCount)
	binary.LittleEndian.PutUint64(hdr[8:16], l.NodeOffset)
	binary.LittleEndian.PutUint32(hdr[16:20], l.StringCount)
	binary.LittleEndian.PutUint64(hdr[20:28], l.StringTableOffset)
	// bitmap_count, bitmap_offset, audio_count, audio_offset: zero.
	_, err := w.Write(hdr[:])
	return err
}

func writeNodes(w io.Writer, t *Table) error {
	var buf [Size]byte
	for i := range t.Nodes {
		t.Nodes[i].Encode(buf[:])
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func writeStringTable(w io.Writer, l Layout, strings *intern.Table) error {
	next := l.StringBlobOffset
	var buf [8]byte
	for _, s := range strings.All() {
		binary.LittleEndian.PutUint64(buf[:], next)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
		next += 2 + uint64(len(s))
	}
	return nil
}

func writeStringBlob(w io.Writer, strings *intern.Table) (uint64, error) {
	var lenBuf [2]byte
	var total uint64
	for _, s := range strings.All() {
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(s)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return total, err
		}
		if len(s) > 0 {
			if _, err := w.Write(s); err != nil {
				return total, err
			}
		}
		total += 2 + uint64(len(s))
	}
	return total, nil
}
