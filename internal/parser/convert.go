// Package parser implements the WZ-to-NX transcoder: the directory
// walker, image parser, and the Converter that drives them end to end.
package parser

import (
	"fmt"
	"log/slog"

	"github.com/nolifestory/wz2nx/internal/intern"
	"github.com/nolifestory/wz2nx/internal/nx"
	"github.com/nolifestory/wz2nx/internal/wz"
)

type imgWork struct {
	node uint32
	size int32
}

// Converter holds every mutable component the transcode needs: the input
// cursor, the key oracle, the string and node tables, and the directory/
// image work queues. Bundling this into one value instead of file-scope
// globals lets a caller run multiple conversions without any shared
// process state.
type Converter struct {
	cursor *wz.Cursor
	keys   *wz.KeySet
	logger *slog.Logger

	Strings *intern.Table
	Nodes   *nx.Table

	fileStart int

	imageOracleDone bool

	dirQueue []uint32
	imgQueue []imgWork
}

// NewConverter creates a converter over an in-memory copy of a WZ file.
// forceRegion, if non-empty, bypasses the key oracle entirely.
func NewConverter(data []byte, forceRegion string, logger *slog.Logger) (*Converter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Converter{
		cursor:  wz.NewCursor(data),
		keys:    wz.NewKeySet(),
		logger:  logger,
		Strings: intern.NewTable(),
		Nodes:   nx.NewTable(),
	}

	if forceRegion != "" {
		if err := c.keys.ForceRegion(forceRegion); err != nil {
			return nil, err
		}
		c.imageOracleDone = true
	}

	return c, nil
}

// Run performs the entire transcode: header parsing, key selection,
// breadth-first directory traversal, depth-first image parsing, UOL
// resolution, and sibling sorting. It leaves c.Nodes and c.Strings ready
// for nx.Write.
func (c *Converter) Run() error {
	if err := c.readHeader(); err != nil {
		return err
	}
	c.logger.Info("Opened file")

	c.dirQueue = append(c.dirQueue, nx.Root)
	for len(c.dirQueue) > 0 {
		dirNode := c.dirQueue[0]
		c.dirQueue = c.dirQueue[1:]
		if err := c.walkDirectory(dirNode); err != nil {
			return fmt.Errorf("parser: walking directory node %d: %w", dirNode, err)
		}
	}
	c.logger.Info("Parsed directories")

	for len(c.imgQueue) > 0 {
		w := c.imgQueue[0]
		c.imgQueue = c.imgQueue[1:]
		if err := c.walkImage(w.node, w.size); err != nil {
			return fmt.Errorf("parser: walking image node %d: %w", w.node, err)
		}
	}
	c.logger.Info("Parsed images")

	nx.ResolveUOLs(c.Nodes, c.Strings)
	if err := nx.SortSiblings(c.Nodes, c.Strings); err != nil {
		return err
	}
	c.logger.Info("Node cleanup finished")

	return nil
}

// readHeader reads the WZ magic, locates the directory section, and runs
// the key oracle against the archive's first encrypted string. The cint
// and byte it reads and discards here are the same bytes the real
// directory walk below will re-read as the root entry count and the
// first entry's type tag, so the cursor is rewound to fileStart+2 once
// the oracle has a key.
func (c *Converter) readHeader() error {
	magic, err := c.cursor.ReadU32()
	if err != nil {
		return fmt.Errorf("parser: reading magic: %w", err)
	}
	if magic != wz.Magic {
		return fmt.Errorf("parser: not a valid WZ file (magic 0x%08X)", magic)
	}

	if err := c.cursor.Skip(8); err != nil {
		return err
	}

	fileStart, err := c.cursor.ReadU32()
	if err != nil {
		return fmt.Errorf("parser: reading file_start: %w", err)
	}
	c.fileStart = int(fileStart)

	if err := c.cursor.Seek(c.fileStart + 2); err != nil {
		return err
	}
	if _, err := c.cursor.ReadCint(); err != nil {
		return err
	}
	if err := c.cursor.Skip(1); err != nil {
		return err
	}

	if c.keys.Active() == nil {
		if err := c.runBootstrapOracle(); err != nil {
			return err
		}
	}

	return c.cursor.Seek(c.fileStart + 2)
}

// runBootstrapOracle trial-decrypts the encrypted string at the cursor's
// current position against every candidate key stream and activates the
// one that decodes to printable ASCII.
func (c *Converter) runBootstrapOracle() error {
	lead, err := c.cursor.ReadI8()
	if err != nil {
		return err
	}
	if lead >= 0 {
		return fmt.Errorf("parser: key oracle expected a negative (ASCII) length prefix, got %d", lead)
	}

	n := int(-lead)
	if lead == -128 {
		v, err := c.cursor.ReadI32()
		if err != nil {
			return err
		}
		n = int(v)
	}

	encrypted, err := c.cursor.ReadBytes(n)
	if err != nil {
		return err
	}
	return c.keys.Select(encrypted)
}
