// Package receiptparser decodes App Store receipts into model.AppleReceipt.
//
// Parsing follows Apple's receipt field documentation:
// https://developer.apple.com/library/archive/releasenotes/General/ValidateAppStoreReceipt/Chapters/ReceiptFields.html
package receiptparser

import (
	"sync"

	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/ber"
	"github.com/thirukguru/receipt-parser/shared/logger"
	"go.uber.org/zap"
)

// Option configures a parser.
type Option func(*service)

// WithLogger sets the logger used while parsing.
func WithLogger(l *logger.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a receipt parser.
func NewService(opts ...Option) Service {
	s := &service{logger: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultService = sync.OnceValue(func() Service {
	return NewService()
})

// Default returns the shared parser.
func Default() Service {
	return defaultService()
}

// Parse decodes receiptData, raw DER or base64 text, into an AppleReceipt.
func (s *service) Parse(receiptData []byte) (*model.AppleReceipt, error) {
	s.logger.Info(msgParsingReceipt)

	data, decoded := DecodeReceiptData(receiptData)
	if decoded {
		s.logger.Debug(msgDecodedBase64Receipt)
	}

	root, err := ber.Build(data)
	if err != nil {
		return nil, newError(ASN1ParsingFailed, err, "")
	}

	container, err := ber.FindContainer(root, ber.OIDData)
	if err != nil {
		return nil, newError(ASN1ParsingFailed, err, "")
	}
	if container == nil {
		s.logger.Error(msgDataObjectIDNotFound)
		return nil, ErrDataObjectIdentifierMissing
	}

	receipt, err := s.buildReceipt(container)
	if err != nil {
		return nil, err
	}

	s.logger.Info(msgParsingReceiptSuccess,
		zap.String("bundle_id", receipt.BundleID),
		zap.Int("in_app_purchases", len(receipt.InAppPurchases)))
	return receipt, nil
}

// ReceiptHasTransactions reports whether the receipt holds any in-app purchase.
// Unparseable receipts conservatively report true.
func (s *service) ReceiptHasTransactions(receiptData []byte) bool {
	receipt, err := s.Parse(receiptData)
	if err == nil {
		return len(receipt.InAppPurchases) > 0
	}

	s.logger.Warn(msgParsingReceiptFailed("receiptparser/service.go", "ReceiptHasTransactions"), zap.Error(err))
	return true
}
