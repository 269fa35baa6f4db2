package receiptparser

import (
	"time"

	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/ber"
	"go.uber.org/zap"
)

// attribute is one SEQUENCE { type INTEGER, version INTEGER, value OCTET STRING }.
type attribute struct {
	typ   int64
	value []byte
}

func (s *service) buildReceipt(container *ber.Container) (*model.AppleReceipt, error) {
	if len(container.Children) == 0 {
		return nil, newError(ReceiptParsingFailed, nil, "receipt payload is empty")
	}
	attrs, err := readAttributeSet(container.Children[0].Bytes())
	if err != nil {
		return nil, newError(ReceiptParsingFailed, err, "")
	}

	var (
		receipt      = &model.AppleReceipt{InAppPurchases: []model.InAppPurchase{}}
		bundleID     *string
		appVersion   *string
		creationDate *time.Time
	)
	for _, attr := range attrs {
		switch receiptAttributeType(attr.typ) {
		case attrBundleID:
			v, err := decodeString(attr.value)
			if err != nil {
				return nil, err
			}
			bundleID = &v
		case attrApplicationVersion:
			v, err := decodeString(attr.value)
			if err != nil {
				return nil, err
			}
			appVersion = &v
		case attrOriginalApplicationVersion:
			v, err := decodeString(attr.value)
			if err != nil {
				return nil, err
			}
			receipt.OriginalApplicationVersion = &v
		case attrOpaqueValue:
			receipt.OpaqueValue = attr.value
		case attrSHA1Hash:
			receipt.SHA1Hash = attr.value
		case attrCreationDate:
			d, err := decodeDate(attr.value)
			if err != nil {
				return nil, err
			}
			creationDate = d
		case attrExpirationDate:
			d, err := decodeDate(attr.value)
			if err != nil {
				return nil, err
			}
			receipt.ExpirationDate = d
		case attrInAppPurchase:
			purchase, err := buildInAppPurchase(attr.value)
			if err != nil {
				return nil, err
			}
			receipt.InAppPurchases = append(receipt.InAppPurchases, *purchase)
		default:
			s.logger.Verbose(msgUnknownReceiptAttribute, zap.Int64("type", attr.typ))
		}
	}

	switch {
	case bundleID == nil:
		return nil, newError(ReceiptParsingFailed, nil, "missing bundle id")
	case appVersion == nil:
		return nil, newError(ReceiptParsingFailed, nil, "missing application version")
	case receipt.OpaqueValue == nil:
		return nil, newError(ReceiptParsingFailed, nil, "missing opaque value")
	case receipt.SHA1Hash == nil:
		return nil, newError(ReceiptParsingFailed, nil, "missing sha1 hash")
	case creationDate == nil:
		return nil, newError(ReceiptParsingFailed, nil, "missing creation date")
	}
	receipt.BundleID = *bundleID
	receipt.ApplicationVersion = *appVersion
	receipt.CreationDate = *creationDate
	return receipt, nil
}

func buildInAppPurchase(payload []byte) (*model.InAppPurchase, error) {
	attrs, err := readAttributeSet(payload)
	if err != nil {
		return nil, newError(InAppPurchaseParsingFailed, err, "")
	}

	var (
		purchase      = &model.InAppPurchase{ProductType: model.ProductTypeUnknown}
		quantity      *int64
		productID     *string
		transactionID *string
		purchaseDate  *time.Time
	)
	for _, attr := range attrs {
		var err error
		switch inAppPurchaseAttributeType(attr.typ) {
		case iapQuantity:
			var n int64
			if n, err = decodeInt(attr.value); err == nil {
				quantity = &n
			}
		case iapProductID:
			var v string
			if v, err = decodeString(attr.value); err == nil {
				productID = &v
			}
		case iapTransactionID:
			var v string
			if v, err = decodeString(attr.value); err == nil {
				transactionID = &v
			}
		case iapOriginalTransactionID:
			var v string
			if v, err = decodeString(attr.value); err == nil {
				purchase.OriginalTransactionID = &v
			}
		case iapPromotionalOfferIdentifier:
			var v string
			if v, err = decodeString(attr.value); err == nil {
				purchase.PromotionalOfferIdentifier = &v
			}
		case iapPurchaseDate:
			purchaseDate, err = decodeDate(attr.value)
		case iapOriginalPurchaseDate:
			purchase.OriginalPurchaseDate, err = decodeDate(attr.value)
		case iapExpiresDate:
			purchase.ExpiresDate, err = decodeDate(attr.value)
		case iapCancellationDate:
			purchase.CancellationDate, err = decodeDate(attr.value)
		case iapProductType:
			var n int64
			if n, err = decodeInt(attr.value); err == nil {
				purchase.ProductType = productTypeFromRaw(n)
			}
		case iapWebOrderLineItemID:
			var n int64
			if n, err = decodeInt(attr.value); err == nil {
				purchase.WebOrderLineItemID = &n
			}
		case iapIsInTrialPeriod:
			var b bool
			if b, err = decodeBool(attr.value); err == nil {
				purchase.IsInTrialPeriod = &b
			}
		case iapIsInIntroOfferPeriod:
			var b bool
			if b, err = decodeBool(attr.value); err == nil {
				purchase.IsInIntroOfferPeriod = &b
			}
		}
		if err != nil {
			return nil, err
		}
	}

	switch {
	case quantity == nil:
		return nil, newError(InAppPurchaseParsingFailed, nil, "missing quantity")
	case productID == nil:
		return nil, newError(InAppPurchaseParsingFailed, nil, "missing product id")
	case transactionID == nil:
		return nil, newError(InAppPurchaseParsingFailed, nil, "missing transaction id")
	case purchaseDate == nil:
		return nil, newError(InAppPurchaseParsingFailed, nil, "missing purchase date")
	}
	purchase.Quantity = int(*quantity)
	purchase.ProductID = *productID
	purchase.TransactionID = *transactionID
	purchase.PurchaseDate = *purchaseDate
	return purchase, nil
}

func productTypeFromRaw(n int64) model.ProductType {
	switch p := model.ProductType(n); p {
	case model.ProductTypeNonConsumable, model.ProductTypeConsumable,
		model.ProductTypeNonRenewingSubscription, model.ProductTypeAutoRenewableSubscription:
		return p
	default:
		return model.ProductTypeUnknown
	}
}

func readAttributeSet(payload []byte) ([]attribute, error) {
	set, err := ber.Build(payload)
	if err != nil {
		return nil, err
	}
	if set.Encoding != ber.Constructed {
		return nil, newError(MalformedAttribute, nil, "attribute set is not constructed")
	}

	attrs := make([]attribute, 0, len(set.Children))
	for _, c := range set.Children {
		if c.Encoding != ber.Constructed || len(c.Children) < 3 {
			return nil, newError(MalformedAttribute, nil, "expected 3 fields, got %d", len(c.Children))
		}
		typ, err := ber.Int(c.Children[0].Payload)
		if err != nil {
			return nil, newError(MalformedAttribute, err, "attribute type")
		}
		attrs = append(attrs, attribute{typ: typ, value: c.Children[2].Bytes()})
	}
	return attrs, nil
}

func decodeString(value []byte) (string, error) {
	c, err := ber.Build(value)
	if err != nil {
		return "", newError(MalformedAttribute, err, "string value")
	}
	s, err := ber.String(c)
	if err != nil {
		return "", newError(MalformedAttribute, err, "string value")
	}
	return s, nil
}

func decodeInt(value []byte) (int64, error) {
	c, err := ber.Build(value)
	if err != nil {
		return 0, newError(MalformedAttribute, err, "integer value")
	}
	n, err := ber.Int(c.Payload)
	if err != nil {
		return 0, newError(MalformedAttribute, err, "integer value")
	}
	return n, nil
}

func decodeBool(value []byte) (bool, error) {
	n, err := decodeInt(value)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}
