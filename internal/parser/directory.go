package parser

import (
	"fmt"

	"github.com/nolifestory/wz2nx/internal/wz"
)

const (
	dirEntryIgnore   = 1
	dirEntryIndirect = 2
	dirEntrySubdir   = 3
	dirEntryImage    = 4
)

// walkDirectory reads one directory's entry count and every child entry,
// enqueueing subdirectories and images for later processing: every
// directory is read breadth-first before any image is parsed.
func (c *Converter) walkDirectory(dirNode uint32) error {
	count, err := c.cursor.ReadCint()
	if err != nil {
		return err
	}

	first := c.Nodes.AddChildren(dirNode, int(count))

	for i := uint32(0); i < uint32(count); i++ {
		idx := first + i

		entryType, err := c.cursor.ReadU8()
		if err != nil {
			return err
		}

		switch entryType {
		case dirEntryIgnore:
			return fmt.Errorf("parser: found the elusive type-1 directory entry")

		case dirEntryIndirect:
			offset, err := c.cursor.ReadI32()
			if err != nil {
				return err
			}
			resume := c.cursor.Tell()

			if err := c.cursor.Seek(c.fileStart + int(offset)); err != nil {
				return err
			}
			entryType, err = c.cursor.ReadU8()
			if err != nil {
				return err
			}
			name, err := wz.DecodeEncryptedString(c.cursor, c.keys.Active())
			if err != nil {
				return err
			}
			c.Nodes.Nodes[idx].NameID = c.Strings.Intern(name)

			if err := c.cursor.Seek(resume); err != nil {
				return err
			}

		case dirEntrySubdir, dirEntryImage:
			name, err := wz.DecodeEncryptedString(c.cursor, c.keys.Active())
			if err != nil {
				return err
			}
			c.Nodes.Nodes[idx].NameID = c.Strings.Intern(name)

		default:
			return fmt.Errorf("parser: unknown directory entry type %d", entryType)
		}

		size, err := c.cursor.ReadCint()
		if err != nil {
			return err
		}
		if size <= 0 {
			return fmt.Errorf("parser: directory/image entry has non-positive size %d", size)
		}
		if _, err := c.cursor.ReadCint(); err != nil { // checksum, discarded
			return err
		}
		if err := c.cursor.Skip(4); err != nil { // reserved
			return err
		}

		switch entryType {
		case dirEntrySubdir:
			c.dirQueue = append(c.dirQueue, idx)
		case dirEntryImage:
			c.imgQueue = append(c.imgQueue, imgWork{node: idx, size: size})
		default:
			return fmt.Errorf("parser: unknown type-2 indirect target type %d", entryType)
		}
	}

	return nil
}
