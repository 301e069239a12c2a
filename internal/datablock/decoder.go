// Package datablock splits a byte stream of concatenated ASTERIX data
// blocks into complete blocks using the length in each block header.
package datablock

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"asterix034/internal/cat034"
)

// Block is one complete data block as it appeared on the wire
type Block struct {
	Category uint8
	Data     []byte
}

// IsCAT034 reports whether b carries category 034
func (b Block) IsCAT034() bool {
	return b.Category == cat034.Category
}

// Decoder frames data blocks from data that may arrive in arbitrary pieces
type Decoder struct {
	logger     *logrus.Logger
	buffer     []byte
	categories map[uint8]bool
	skipped    uint64
}

// NewDecoder creates a decoder. When categories is non-empty only blocks
// of those categories are returned; others are framed and dropped.
func NewDecoder(logger *logrus.Logger, categories ...uint8) *Decoder {
	d := &Decoder{
		logger: logger,
		buffer: make([]byte, 0, 4096),
	}
	if len(categories) > 0 {
		d.categories = make(map[uint8]bool, len(categories))
		for _, c := range categories {
			d.categories[c] = true
		}
	}
	return d
}

// Decode appends data to the internal buffer and returns every block that
// is now complete. Incomplete trailing bytes are kept for the next call;
// since a header never declares more than 65535 bytes the buffer stays
// bounded.
func (d *Decoder) Decode(data []byte) []Block {
	d.buffer = append(d.buffer, data...)

	var blocks []Block

	for len(d.buffer) >= cat034.HeaderLength {
		category := d.buffer[0]
		length := int(binary.BigEndian.Uint16(d.buffer[1:3]))

		if length < cat034.HeaderLength {
			// Impossible length, resync one byte further on
			d.logger.WithFields(logrus.Fields{
				"category": category,
				"length":   length,
			}).Debug("Invalid data block length, skipping byte")
			d.buffer = d.buffer[1:]
			d.skipped++
			continue
		}

		if len(d.buffer) < length {
			break
		}

		blockData := make([]byte, length)
		copy(blockData, d.buffer[:length])
		d.buffer = d.buffer[length:]

		if d.categories != nil && !d.categories[category] {
			d.logger.WithFields(logrus.Fields{
				"category": category,
				"length":   length,
			}).Debug("Dropping data block of unwanted category")
			continue
		}

		d.logger.WithFields(logrus.Fields{
			"category": category,
			"length":   length,
		}).Debug("Found data block")

		blocks = append(blocks, Block{Category: category, Data: blockData})
	}

	return blocks
}

// Buffered returns the number of bytes waiting for a complete block
func (d *Decoder) Buffered() int {
	return len(d.buffer)
}

// Skipped returns the number of bytes dropped while resynchronising
func (d *Decoder) Skipped() uint64 {
	return d.skipped
}

// Reset discards any partial block
func (d *Decoder) Reset() {
	d.buffer = d.buffer[:0]
}
