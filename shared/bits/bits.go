// Package bits reads bit fields out of single bytes, most significant bit first.
package bits

import "fmt"

// ShiftErrorKind classifies a ShiftError.
type ShiftErrorKind int

const (
	InvalidIndex ShiftErrorKind = iota
	RangeFlipped
	RangeLargerThanByte
	UnhandledRange
)

// ShiftError is returned when a bit index or range cannot be read from a byte.
type ShiftError struct {
	Kind  ShiftErrorKind
	Index uint8
	From  uint8
	To    uint8
}

func (e *ShiftError) Error() string {
	switch e.Kind {
	case InvalidIndex:
		return fmt.Sprintf("invalid index: %d", e.Index)
	case RangeFlipped:
		return fmt.Sprintf("from: %d can't be greater than to: %d", e.From, e.To)
	case RangeLargerThanByte:
		return "range must be between 1 and 8"
	default:
		return "unhandled range"
	}
}

// BitAtIndex returns the bit at index, where 0 is the most significant bit.
func BitAtIndex(b byte, index uint8) (byte, error) {
	if index > 7 {
		return 0, &ShiftError{Kind: InvalidIndex, Index: index}
	}
	return (b >> (7 - index)) & 0b1, nil
}

// ValueInRange returns the value of bits from..to inclusive, MSB-indexed.
func ValueInRange(b byte, from, to uint8) (byte, error) {
	if to > 7 {
		return 0, &ShiftError{Kind: InvalidIndex, Index: to}
	}
	if from > to {
		return 0, &ShiftError{Kind: RangeFlipped, From: from, To: to}
	}

	mask, err := maskForRange(to - from + 1)
	if err != nil {
		return 0, err
	}
	return (b >> (7 - to)) & mask, nil
}

func maskForRange(width uint8) (byte, error) {
	if width > 8 {
		return 0, &ShiftError{Kind: RangeLargerThanByte}
	}
	if width == 0 {
		return 0, &ShiftError{Kind: UnhandledRange}
	}
	return byte(0xff >> (8 - width)), nil
}
