package receiptparser

import (
	"bytes"
	"encoding/base64"
)

const derSequence = 0x30

// DecodeReceiptData returns raw DER receipt bytes. Base64 text, as stored by apps and
// backends, is decoded; anything else is returned unchanged. The bool reports decoding.
func DecodeReceiptData(data []byte) ([]byte, bool) {
	if len(data) == 0 || data[0] == derSequence {
		return data, false
	}

	text := bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, data)

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		decoded, err := enc.DecodeString(string(text))
		if err == nil && len(decoded) > 0 && decoded[0] == derSequence {
			return decoded, true
		}
	}
	return data, false
}
