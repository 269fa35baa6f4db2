package receiptparser

import "fmt"

// ErrorKind classifies parsing failures.
type ErrorKind int

const (
	DataObjectIdentifierMissing ErrorKind = iota
	ASN1ParsingFailed
	ReceiptParsingFailed
	InAppPurchaseParsingFailed
	MalformedAttribute
	InvalidDate
)

func (k ErrorKind) String() string {
	switch k {
	case DataObjectIdentifierMissing:
		return "data object identifier missing"
	case ASN1ParsingFailed:
		return "asn1 parsing failed"
	case ReceiptParsingFailed:
		return "receipt parsing failed"
	case InAppPurchaseParsingFailed:
		return "in-app purchase parsing failed"
	case MalformedAttribute:
		return "malformed attribute"
	case InvalidDate:
		return "invalid date"
	default:
		return "unknown receipt error"
	}
}

// Error is returned by Parse.
type Error struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

// Sentinels for errors.Is checks; they match any Error of the same kind.
var (
	ErrDataObjectIdentifierMissing = &Error{Kind: DataObjectIdentifierMissing}
	ErrASN1ParsingFailed           = &Error{Kind: ASN1ParsingFailed}
	ErrReceiptParsingFailed        = &Error{Kind: ReceiptParsingFailed}
	ErrInAppPurchaseParsingFailed  = &Error{Kind: InAppPurchaseParsingFailed}
	ErrMalformedAttribute          = &Error{Kind: MalformedAttribute}
	ErrInvalidDate                 = &Error{Kind: InvalidDate}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Reason == "" && t.Err == nil
}

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), Err: err}
}
