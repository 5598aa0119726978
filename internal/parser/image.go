package parser

import "github.com/nolifestory/wz2nx/internal/wz"

// walkImage parses one image's property tree, then seeks past it
// regardless of how much of its declared size the tree actually
// consumed (canvas/sound payloads are skipped in this core).
func (c *Converter) walkImage(imgNode uint32, size int32) error {
	imageBase := c.cursor.Tell()

	if err := c.cursor.Skip(1); err != nil {
		return err
	}

	if err := c.runImageOracle(); err != nil {
		return err
	}

	if err := c.cursor.Skip(2); err != nil {
		return err
	}

	if err := c.subProperty(imgNode, imageBase); err != nil {
		return err
	}

	return c.cursor.Seek(imageBase + int(size))
}

// runImageOracle runs the key oracle again the first time an image is
// reached, and merely consumes the equivalently-shaped encrypted string on
// every later image without re-selecting a key.
func (c *Converter) runImageOracle() error {
	if !c.imageOracleDone {
		if err := c.runBootstrapOracle(); err != nil {
			return err
		}
		c.imageOracleDone = true
		return nil
	}

	_, err := wz.DecodeEncryptedString(c.cursor, c.keys.Active())
	return err
}
