package parser

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/nolifestory/wz2nx/internal/wz"
)

const (
	propTypeNullOrIndex = 0x00
	propTypeShortA      = 0x02
	propTypeInt         = 0x03
	propTypeFloat       = 0x04
	propTypeDouble      = 0x05
	propTypeString      = 0x08
	propTypeExtended    = 0x09
	propTypeShortB      = 0x0B
)

// subProperty reads a property list: a count, then for each entry a name
// and a tag byte that selects how its value is decoded.
func (c *Converter) subProperty(parent uint32, imageBase int) error {
	count, err := c.cursor.ReadCint()
	if err != nil {
		return err
	}

	first := c.Nodes.AddChildren(parent, int(count))

	for i := uint32(0); i < uint32(count); i++ {
		idx := first + i

		name, err := wz.ReadPropertyString(c.cursor, c.keys.Active(), imageBase)
		if err != nil {
			return err
		}
		c.Nodes.Nodes[idx].NameID = c.Strings.Intern(name)

		tag, err := c.cursor.ReadU8()
		if err != nil {
			return err
		}

		n := &c.Nodes.Nodes[idx]
		switch tag {
		case propTypeNullOrIndex:
			n.SetInteger(int64(i))

		case propTypeShortA, propTypeShortB:
			v, err := c.cursor.ReadU16()
			if err != nil {
				return err
			}
			n.SetInteger(int64(v))

		case propTypeInt:
			v, err := c.cursor.ReadCint()
			if err != nil {
				return err
			}
			n.SetInteger(int64(v))

		case propTypeFloat:
			flag, err := c.cursor.ReadU8()
			if err != nil {
				return err
			}
			if flag == 0x80 {
				f, err := c.cursor.ReadF32()
				if err != nil {
					return err
				}
				n.SetReal(float64(f))
			} else {
				n.SetReal(0)
			}

		case propTypeDouble:
			v, err := c.cursor.ReadF64()
			if err != nil {
				return err
			}
			n.SetReal(v)

		case propTypeString:
			s, err := wz.ReadPropertyString(c.cursor, c.keys.Active(), imageBase)
			if err != nil {
				return err
			}
			n.SetStringID(c.Strings.Intern(s))

		case propTypeExtended:
			blockLen, err := c.cursor.ReadI32()
			if err != nil {
				return err
			}
			resume := c.cursor.Tell() + int(blockLen)
			if err := c.extendedProperty(idx, imageBase); err != nil {
				return err
			}
			if err := c.cursor.Seek(resume); err != nil {
				return err
			}

		default:
			return fmt.Errorf("parser: unknown sub-property tag 0x%02X", tag)
		}
	}

	return nil
}

// extendedProperty reads a property string naming the extended type and
// dispatches on it by byte equality.
func (c *Converter) extendedProperty(propNode uint32, imageBase int) error {
	typeName, err := wz.ReadPropertyString(c.cursor, c.keys.Active(), imageBase)
	if err != nil {
		return err
	}

	switch {
	case bytes.Equal(typeName, []byte("Property")):
		if err := c.cursor.Skip(2); err != nil {
			return err
		}
		return c.subProperty(propNode, imageBase)

	case bytes.Equal(typeName, []byte("Canvas")):
		if err := c.cursor.Skip(1); err != nil {
			return err
		}
		hasChildren, err := c.cursor.ReadU8()
		if err != nil {
			return err
		}
		if hasChildren == 1 {
			if err := c.cursor.Skip(2); err != nil {
				return err
			}
			return c.subProperty(propNode, imageBase)
		}
		return nil

	case bytes.Equal(typeName, []byte("Shape2D#Vector2D")):
		x, err := c.cursor.ReadCint()
		if err != nil {
			return err
		}
		y, err := c.cursor.ReadCint()
		if err != nil {
			return err
		}
		c.Nodes.Nodes[propNode].SetVector(x, y)
		return nil

	case bytes.Equal(typeName, []byte("Shape2D#Convex2D")):
		return c.convex2D(propNode, imageBase)

	case bytes.Equal(typeName, []byte("Sound_DX8")):
		return nil

	case bytes.Equal(typeName, []byte("UOL")):
		if err := c.cursor.Skip(1); err != nil {
			return err
		}
		link, err := wz.ReadPropertyString(c.cursor, c.keys.Active(), imageBase)
		if err != nil {
			return err
		}
		c.Nodes.Nodes[propNode].SetUOL(c.Strings.Intern(link))
		return nil

	default:
		return fmt.Errorf("parser: unknown extended property type %q", typeName)
	}
}

// convex2D builds a synthetic sequence of numerically-named children.
//
// Two quirks are reproduced here, deliberately:
// first, it registers the new range with
// AppendChildren rather than AddChildren, so rangeNode's own FirstChild/
// ChildCount are never pointed at the children it just built — the range
// still gets sorted and written, but nothing in the tree can reach it by
// walking child pointers from rangeNode. Second, every iteration recurses
// with extended_property(first, ...) — the range's *first* index, not the
// index of the element currently being read. Each element's type name is
// still read from its own position in the stream (so the cursor advances
// correctly overall), but only nodes[first] ever receives decoded Kind/
// Payload, overwritten by each element in turn so that it ends up holding
// the last one's; later siblings keep their assigned numeric name but are
// left KindNone. Real WZ files are parsed assuming this exact layout downstream,
// so neither is "fixed" here.
func (c *Converter) convex2D(rangeNode uint32, imageBase int) error {
	count, err := c.cursor.ReadCint()
	if err != nil {
		return err
	}

	first := c.Nodes.AppendChildren(int(count))

	for i := uint32(0); i < uint32(count); i++ {
		childIdx := first + i
		name := strconv.FormatUint(uint64(i), 10)
		c.Nodes.Nodes[childIdx].NameID = c.Strings.Intern([]byte(name))

		if err := c.extendedProperty(first, imageBase); err != nil {
			return err
		}
	}

	return nil
}
