package ber

import (
	"encoding/asn1"
	"fmt"
	"math"

	"github.com/thirukguru/receipt-parser/shared/bits"
)

// ObjectIdentifier decodes the contents octets of an OBJECT IDENTIFIER.
func ObjectIdentifier(payload []byte) (asn1.ObjectIdentifier, error) {
	if len(payload) == 0 {
		return nil, ErrInvalidObjectIdentifier
	}

	var (
		oid   asn1.ObjectIdentifier
		value int
	)
	for i, b := range payload {
		if value > math.MaxInt32>>7 {
			return nil, fmt.Errorf("%w: component overflows", ErrInvalidObjectIdentifier)
		}
		low, _ := bits.ValueInRange(b, 1, 7)
		value = value<<7 | int(low)

		more, _ := bits.BitAtIndex(b, 0)
		if more == 1 {
			if i == len(payload)-1 {
				return nil, fmt.Errorf("%w: unterminated component", ErrInvalidObjectIdentifier)
			}
			continue
		}

		if len(oid) == 0 {
			// the first component packs the first two arcs
			switch {
			case value < 40:
				oid = append(oid, 0, value)
			case value < 80:
				oid = append(oid, 1, value-40)
			default:
				oid = append(oid, 2, value-80)
			}
		} else {
			oid = append(oid, value)
		}
		value = 0
	}
	return oid, nil
}

// Int decodes a two's complement big-endian INTEGER of at most 8 bytes.
func Int(payload []byte) (int64, error) {
	if len(payload) == 0 || len(payload) > 8 {
		return 0, fmt.Errorf("%w: %d bytes", ErrInvalidInteger, len(payload))
	}
	var n int64
	if payload[0]&0x80 != 0 {
		n = -1
	}
	for _, b := range payload {
		n = n<<8 | int64(b)
	}
	return n, nil
}

// Bool decodes an INTEGER or BOOLEAN payload as a flag.
func Bool(payload []byte) (bool, error) {
	n, err := Int(payload)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// String decodes the value of a character string container.
func String(c *Container) (string, error) {
	if c.Class != ClassUniversal {
		return "", fmt.Errorf("%w: class %d is not a string", ErrUnexpectedContainer, c.Class)
	}
	switch c.Tag {
	case TagUTF8String, TagIA5String, TagPrintableString, TagOctetString:
		return string(c.Bytes()), nil
	default:
		return "", fmt.Errorf("%w: tag %d is not a string", ErrUnexpectedContainer, c.Tag)
	}
}

// FindContainer walks root depth-first and returns the container that follows an
// OBJECT IDENTIFIER equal to oid, or nil when there is none.
func FindContainer(root *Container, oid asn1.ObjectIdentifier) (*Container, error) {
	if root == nil || root.Encoding != Constructed {
		return nil, nil
	}
	for i, child := range root.Children {
		if child.IsUniversal(TagObjectIdentifier) {
			id, err := ObjectIdentifier(child.Payload)
			if err != nil {
				return nil, err
			}
			if id.Equal(oid) && i < len(root.Children)-1 {
				return root.Children[i+1], nil
			}
			continue
		}
		found, err := FindContainer(child, oid)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}
