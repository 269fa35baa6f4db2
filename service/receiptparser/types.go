package receiptparser

import (
	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/shared/logger"
)

type receiptAttributeType int64

const (
	attrBundleID                   receiptAttributeType = 2
	attrApplicationVersion         receiptAttributeType = 3
	attrOpaqueValue                receiptAttributeType = 4
	attrSHA1Hash                   receiptAttributeType = 5
	attrCreationDate               receiptAttributeType = 12
	attrInAppPurchase              receiptAttributeType = 17
	attrOriginalApplicationVersion receiptAttributeType = 19
	attrExpirationDate             receiptAttributeType = 21
)

type inAppPurchaseAttributeType int64

const (
	iapQuantity                   inAppPurchaseAttributeType = 1701
	iapProductID                  inAppPurchaseAttributeType = 1702
	iapTransactionID              inAppPurchaseAttributeType = 1703
	iapPurchaseDate               inAppPurchaseAttributeType = 1704
	iapOriginalTransactionID      inAppPurchaseAttributeType = 1705
	iapOriginalPurchaseDate       inAppPurchaseAttributeType = 1706
	iapProductType                inAppPurchaseAttributeType = 1707
	iapExpiresDate                inAppPurchaseAttributeType = 1708
	iapWebOrderLineItemID         inAppPurchaseAttributeType = 1711
	iapCancellationDate           inAppPurchaseAttributeType = 1712
	iapIsInTrialPeriod            inAppPurchaseAttributeType = 1713
	iapIsInIntroOfferPeriod       inAppPurchaseAttributeType = 1719
	iapPromotionalOfferIdentifier inAppPurchaseAttributeType = 1721
)

type service struct {
	logger *logger.Logger
}

// Service parses App Store receipts.
type Service interface {
	Parse(data []byte) (*model.AppleReceipt, error)
	ReceiptHasTransactions(data []byte) bool
}
