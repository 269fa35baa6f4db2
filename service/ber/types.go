package ber

import (
	"encoding/asn1"
	"errors"
)

// Class is the ASN.1 tag class.
type Class uint8

const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// Encoding tells whether a container holds a value or nested containers.
type Encoding uint8

const (
	Primitive Encoding = iota
	Constructed
)

// Tag is the universal tag number of a container.
type Tag uint32

const (
	TagEndOfContents    Tag = 0
	TagBoolean          Tag = 1
	TagInteger          Tag = 2
	TagBitString        Tag = 3
	TagOctetString      Tag = 4
	TagNull             Tag = 5
	TagObjectIdentifier Tag = 6
	TagUTF8String       Tag = 12
	TagSequence         Tag = 16
	TagSet              Tag = 17
	TagPrintableString  Tag = 19
	TagIA5String        Tag = 22
	TagUTCTime          Tag = 23
	TagGeneralizedTime  Tag = 24
)

// LengthForm distinguishes definite from indefinite lengths.
type LengthForm uint8

const (
	Definite LengthForm = iota
	Indefinite
)

// Length is a decoded length field.
type Length struct {
	Value     int
	BytesUsed int
	Form      LengthForm
}

// Container is one decoded TLV and, when constructed, its children.
type Container struct {
	Class            Class
	Encoding         Encoding
	Tag              Tag
	IdentifierLength int
	Length           Length
	Payload          []byte
	Children         []*Container
}

// PKCS#7 content type identifiers.
var (
	OIDData                   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	OIDSignedData             = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	OIDEnvelopedData          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 3}
	OIDSignedAndEnvelopedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 4}
	OIDDigestedData           = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 5}
	OIDEncryptedData          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 6}
)

var (
	ErrEmptyPayload            = errors.New("ber: empty payload")
	ErrTruncated               = errors.New("ber: payload truncated")
	ErrLengthExceedsPayload    = errors.New("ber: length exceeds payload")
	ErrUnsupportedLength       = errors.New("ber: unsupported length encoding")
	ErrInvalidIndefiniteLength = errors.New("ber: indefinite length on primitive container")
	ErrMissingEndOfContents    = errors.New("ber: missing end-of-contents marker")
	ErrTooDeep                 = errors.New("ber: nesting too deep")
	ErrInvalidObjectIdentifier = errors.New("ber: invalid object identifier")
	ErrInvalidInteger          = errors.New("ber: invalid integer")
	ErrUnexpectedContainer     = errors.New("ber: unexpected container")
)
