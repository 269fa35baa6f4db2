// Package ber decodes BER/DER encoded ASN.1 into a tree of containers.
package ber

import (
	"fmt"
	"math"

	"github.com/thirukguru/receipt-parser/shared/bits"
)

const (
	maxDepth         = 64
	maxLengthOctets  = 8
	highTagNumber    = 31
	maxTagOctets     = 4
	endOfContentsLen = 2
)

// Build decodes the container at the start of payload. Trailing bytes are ignored.
func Build(payload []byte) (*Container, error) {
	return build(payload, 0)
}

// TotalLength is the number of payload bytes the container occupies, header included.
func (c *Container) TotalLength() int {
	n := c.IdentifierLength + c.Length.BytesUsed + len(c.Payload)
	if c.Length.Form == Indefinite {
		n += endOfContentsLen
	}
	return n
}

// IsUniversal reports whether c is a universal container with the given tag.
func (c *Container) IsUniversal(tag Tag) bool {
	return c.Class == ClassUniversal && c.Tag == tag
}

// Bytes returns the value octets. Constructed string types are reassembled from their chunks.
func (c *Container) Bytes() []byte {
	if c.Encoding == Primitive {
		return c.Payload
	}
	var out []byte
	for _, child := range c.Children {
		out = append(out, child.Bytes()...)
	}
	return out
}

func build(data []byte, depth int) (*Container, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	c, err := readIdentifier(data)
	if err != nil {
		return nil, err
	}
	if len(data) <= c.IdentifierLength {
		return nil, fmt.Errorf("%w: missing length", ErrTruncated)
	}
	length, err := readLength(data[c.IdentifierLength:])
	if err != nil {
		return nil, err
	}
	c.Length = length
	header := c.IdentifierLength + length.BytesUsed

	if length.Form == Indefinite {
		if c.Encoding != Constructed {
			return nil, ErrInvalidIndefiniteLength
		}
		return buildIndefinite(c, data, header, depth)
	}

	end := header + length.Value
	if end > len(data) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrLengthExceedsPayload, end, len(data))
	}
	c.Payload = data[header:end]

	if c.Encoding == Constructed {
		children, err := buildChildren(c.Payload, depth+1)
		if err != nil {
			return nil, err
		}
		c.Children = children
	}
	return c, nil
}

func buildChildren(payload []byte, depth int) ([]*Container, error) {
	var children []*Container
	for offset := 0; offset < len(payload); {
		child, err := build(payload[offset:], depth)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		offset += child.TotalLength()
	}
	return children, nil
}

func buildIndefinite(c *Container, data []byte, header, depth int) (*Container, error) {
	offset := header
	for {
		if offset+endOfContentsLen > len(data) {
			return nil, ErrMissingEndOfContents
		}
		if data[offset] == 0 && data[offset+1] == 0 {
			break
		}
		child, err := build(data[offset:], depth+1)
		if err != nil {
			return nil, err
		}
		c.Children = append(c.Children, child)
		offset += child.TotalLength()
	}
	c.Payload = data[header:offset]
	c.Length.Value = offset - header
	return c, nil
}

func readIdentifier(data []byte) (*Container, error) {
	first := data[0]

	class, err := bits.ValueInRange(first, 0, 1)
	if err != nil {
		return nil, err
	}
	encoding, err := bits.BitAtIndex(first, 2)
	if err != nil {
		return nil, err
	}
	tag, err := bits.ValueInRange(first, 3, 7)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Class:            Class(class),
		Encoding:         Encoding(encoding),
		Tag:              Tag(tag),
		IdentifierLength: 1,
	}
	if tag != highTagNumber {
		return c, nil
	}

	var value Tag
	for i := 1; ; i++ {
		if i >= len(data) {
			return nil, fmt.Errorf("%w: tag number", ErrTruncated)
		}
		if i > maxTagOctets {
			return nil, fmt.Errorf("%w: tag number too large", ErrUnexpectedContainer)
		}
		b := data[i]
		low, _ := bits.ValueInRange(b, 1, 7)
		value = value<<7 | Tag(low)
		if more, _ := bits.BitAtIndex(b, 0); more == 0 {
			c.Tag = value
			c.IdentifierLength = i + 1
			return c, nil
		}
	}
}

func readLength(data []byte) (Length, error) {
	first := data[0]
	longForm, err := bits.BitAtIndex(first, 0)
	if err != nil {
		return Length{}, err
	}
	value, err := bits.ValueInRange(first, 1, 7)
	if err != nil {
		return Length{}, err
	}

	if longForm == 0 {
		return Length{Value: int(value), BytesUsed: 1, Form: Definite}, nil
	}
	if value == 0 {
		return Length{BytesUsed: 1, Form: Indefinite}, nil
	}

	octets := int(value)
	if octets > maxLengthOctets {
		return Length{}, fmt.Errorf("%w: %d length octets", ErrUnsupportedLength, octets)
	}
	if len(data) < 1+octets {
		return Length{}, fmt.Errorf("%w: length octets", ErrTruncated)
	}

	var n uint64
	for _, b := range data[1 : 1+octets] {
		n = n<<8 | uint64(b)
	}
	if n > math.MaxInt32 {
		return Length{}, fmt.Errorf("%w: length %d", ErrUnsupportedLength, n)
	}
	return Length{Value: int(n), BytesUsed: 1 + octets, Form: Definite}, nil
}
