// Package receipttest builds PKCS#7 encoded App Store receipts for tests.
package receipttest

import (
	"bytes"
	"encoding/asn1"
)

const (
	tagInteger                = 0x02
	tagOctetString            = 0x04
	tagConstructedOctetString = 0x24
	tagSequence               = 0x30
	tagSet                    = 0x31
	tagContext0               = 0xa0
)

var (
	oidData       = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	oidSignedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	oidSHA1       = asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}
)

// Purchase describes an in-app purchase attribute set. Empty fields are omitted.
type Purchase struct {
	Quantity              int
	ProductID             string
	TransactionID         string
	OriginalTransactionID string
	ProductType           *int
	PurchaseDate          string
	OriginalPurchaseDate  string
	ExpiresDate           string
	CancellationDate      string
	IsInTrialPeriod       *bool
	IsInIntroOfferPeriod  *bool
	WebOrderLineItemID    int64
	PromotionalOfferID    string
}

// Receipt describes a receipt payload. Empty fields are omitted.
type Receipt struct {
	BundleID                   string
	ApplicationVersion         string
	OriginalApplicationVersion string
	OpaqueValue                []byte
	SHA1Hash                   []byte
	CreationDate               string
	ExpirationDate             string
	Purchases                  []Purchase
}

// Sample returns a receipt with one subscription and one consumable.
func Sample() Receipt {
	sub := 3
	consumable := 1
	trial := true
	return Receipt{
		BundleID:                   "com.example.app",
		ApplicationVersion:         "42",
		OriginalApplicationVersion: "1.0",
		OpaqueValue:                []byte{0xde, 0xad, 0xbe, 0xef},
		SHA1Hash:                   bytes.Repeat([]byte{0x11}, 20),
		CreationDate:               "2025-03-01T10:00:00Z",
		Purchases: []Purchase{
			{
				Quantity:              1,
				ProductID:             "pro.monthly",
				TransactionID:         "1000000001",
				OriginalTransactionID: "1000000000",
				ProductType:           &sub,
				PurchaseDate:          "2025-02-01T10:00:00Z",
				OriginalPurchaseDate:  "2025-01-01T10:00:00Z",
				ExpiresDate:           "2099-03-01T10:00:00Z",
				IsInTrialPeriod:       &trial,
				WebOrderLineItemID:    230000000000001,
			},
			{
				Quantity:      5,
				ProductID:     "coins.100",
				TransactionID: "1000000002",
				ProductType:   &consumable,
				PurchaseDate:  "2025-02-15T08:30:00.250Z",
			},
		},
	}
}

// Marshal encodes r as a PKCS#7 signed-data receipt.
func (r Receipt) Marshal() []byte {
	return Wrap(r.Payload())
}

// MarshalIndefinite encodes r the way the App Store does: indefinite lengths and the
// payload split into OCTET STRING chunks of chunkSize bytes.
func (r Receipt) MarshalIndefinite(chunkSize int) []byte {
	return WrapIndefinite(r.Payload(), chunkSize)
}

// Payload encodes the receipt attribute SET.
func (r Receipt) Payload() []byte {
	var attrs [][]byte
	if r.BundleID != "" {
		attrs = append(attrs, Attribute(2, UTF8(r.BundleID)))
	}
	if r.ApplicationVersion != "" {
		attrs = append(attrs, Attribute(3, UTF8(r.ApplicationVersion)))
	}
	if r.OpaqueValue != nil {
		attrs = append(attrs, Attribute(4, r.OpaqueValue))
	}
	if r.SHA1Hash != nil {
		attrs = append(attrs, Attribute(5, r.SHA1Hash))
	}
	if r.CreationDate != "" {
		attrs = append(attrs, Attribute(12, IA5(r.CreationDate)))
	}
	for _, p := range r.Purchases {
		attrs = append(attrs, Attribute(17, p.Marshal()))
	}
	if r.OriginalApplicationVersion != "" {
		attrs = append(attrs, Attribute(19, UTF8(r.OriginalApplicationVersion)))
	}
	if r.ExpirationDate != "" {
		attrs = append(attrs, Attribute(21, IA5(r.ExpirationDate)))
	}
	// an attribute type the parser does not know about
	attrs = append(attrs, Attribute(0, UTF8("ProductionSandbox")))
	return Set(attrs...)
}

// Marshal encodes p as the SET carried by a type 17 attribute.
func (p Purchase) Marshal() []byte {
	var attrs [][]byte
	if p.Quantity != 0 {
		attrs = append(attrs, Attribute(1701, Int(int64(p.Quantity))))
	}
	if p.ProductID != "" {
		attrs = append(attrs, Attribute(1702, UTF8(p.ProductID)))
	}
	if p.TransactionID != "" {
		attrs = append(attrs, Attribute(1703, UTF8(p.TransactionID)))
	}
	if p.PurchaseDate != "" {
		attrs = append(attrs, Attribute(1704, IA5(p.PurchaseDate)))
	}
	if p.OriginalTransactionID != "" {
		attrs = append(attrs, Attribute(1705, UTF8(p.OriginalTransactionID)))
	}
	if p.OriginalPurchaseDate != "" {
		attrs = append(attrs, Attribute(1706, IA5(p.OriginalPurchaseDate)))
	}
	if p.ProductType != nil {
		attrs = append(attrs, Attribute(1707, Int(int64(*p.ProductType))))
	}
	if p.ExpiresDate != "" {
		attrs = append(attrs, Attribute(1708, IA5(p.ExpiresDate)))
	}
	if p.WebOrderLineItemID != 0 {
		attrs = append(attrs, Attribute(1711, Int(p.WebOrderLineItemID)))
	}
	if p.CancellationDate != "" {
		attrs = append(attrs, Attribute(1712, IA5(p.CancellationDate)))
	}
	if p.IsInTrialPeriod != nil {
		attrs = append(attrs, Attribute(1713, Int(boolInt(*p.IsInTrialPeriod))))
	}
	if p.IsInIntroOfferPeriod != nil {
		attrs = append(attrs, Attribute(1719, Int(boolInt(*p.IsInIntroOfferPeriod))))
	}
	if p.PromotionalOfferID != "" {
		attrs = append(attrs, Attribute(1721, UTF8(p.PromotionalOfferID)))
	}
	return Set(attrs...)
}

// Wrap places payload in a PKCS#7 signed-data envelope as the data content.
func Wrap(payload []byte) []byte {
	digestAlgorithms := Set(TLV(tagSequence, mustMarshal(oidSHA1), []byte{0x05, 0x00}))
	content := TLV(tagSequence, mustMarshal(oidData), TLV(tagContext0, TLV(tagOctetString, payload)))
	signedData := TLV(tagSequence, Int(1), digestAlgorithms, content, Set())
	return TLV(tagSequence, mustMarshal(oidSignedData), TLV(tagContext0, signedData))
}

// WrapIndefinite is Wrap with indefinite lengths on every envelope container and the
// payload carried in a constructed OCTET STRING of chunkSize pieces.
func WrapIndefinite(payload []byte, chunkSize int) []byte {
	if chunkSize <= 0 {
		chunkSize = len(payload)
	}
	var chunks [][]byte
	for len(payload) > chunkSize {
		chunks = append(chunks, TLV(tagOctetString, payload[:chunkSize]))
		payload = payload[chunkSize:]
	}
	chunks = append(chunks, TLV(tagOctetString, payload))

	digestAlgorithms := Set(TLV(tagSequence, mustMarshal(oidSHA1), []byte{0x05, 0x00}))
	content := Indefinite(tagSequence, mustMarshal(oidData),
		Indefinite(tagContext0, Indefinite(tagConstructedOctetString, chunks...)))
	signedData := Indefinite(tagSequence, Int(1), digestAlgorithms, content, Set())
	return Indefinite(tagSequence, mustMarshal(oidSignedData), Indefinite(tagContext0, signedData))
}

// Indefinite encodes a constructed container with an indefinite length and an
// end-of-contents marker.
func Indefinite(tag byte, content ...[]byte) []byte {
	out := []byte{tag, 0x80}
	out = append(out, bytes.Join(content, nil)...)
	return append(out, 0x00, 0x00)
}

// Attribute encodes SEQUENCE { type, version 1, OCTET STRING value }.
func Attribute(typ int64, value []byte) []byte {
	return TLV(tagSequence, Int(typ), Int(1), TLV(tagOctetString, value))
}

// Set encodes a SET of already encoded elements.
func Set(elems ...[]byte) []byte {
	return TLV(tagSet, elems...)
}

// TLV encodes a definite-length container.
func TLV(tag byte, content ...[]byte) []byte {
	body := bytes.Join(content, nil)
	out := append([]byte{tag}, encodeLength(len(body))...)
	return append(out, body...)
}

// UTF8 encodes a UTF8String.
func UTF8(s string) []byte {
	b, err := asn1.MarshalWithParams(s, "utf8")
	if err != nil {
		panic(err)
	}
	return b
}

// IA5 encodes an IA5String.
func IA5(s string) []byte {
	b, err := asn1.MarshalWithParams(s, "ia5")
	if err != nil {
		panic(err)
	}
	return b
}

// Int encodes an INTEGER.
func Int(n int64) []byte {
	return mustMarshal(n)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func mustMarshal(v any) []byte {
	b, err := asn1.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func encodeLength(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}
	var out []byte
	for ; n > 0; n >>= 8 {
		out = append([]byte{byte(n)}, out...)
	}
	return append([]byte{0x80 | byte(len(out))}, out...)
}
