package model

import (
	"encoding/json"
	"time"
)

// ProductType is the kind of product an in-app purchase refers to.
type ProductType int

const (
	ProductTypeUnknown                   ProductType = -1
	ProductTypeNonConsumable             ProductType = 0
	ProductTypeConsumable                ProductType = 1
	ProductTypeNonRenewingSubscription   ProductType = 2
	ProductTypeAutoRenewableSubscription ProductType = 3
)

func (p ProductType) String() string {
	switch p {
	case ProductTypeNonConsumable:
		return "non_consumable"
	case ProductTypeConsumable:
		return "consumable"
	case ProductTypeNonRenewingSubscription:
		return "non_renewing_subscription"
	case ProductTypeAutoRenewableSubscription:
		return "auto_renewable_subscription"
	default:
		return "unknown"
	}
}

// AppleReceipt is the contents of a parsed App Store receipt.
type AppleReceipt struct {
	BundleID                   string          `json:"bundleId"`
	ApplicationVersion         string          `json:"applicationVersion"`
	OriginalApplicationVersion *string         `json:"originalApplicationVersion,omitempty"`
	OpaqueValue                []byte          `json:"opaqueValue"`
	SHA1Hash                   []byte          `json:"sha1Hash"`
	CreationDate               time.Time       `json:"creationDate"`
	ExpirationDate             *time.Time      `json:"expirationDate,omitempty"`
	InAppPurchases             []InAppPurchase `json:"inAppPurchases"`
}

// InAppPurchase is a single purchase record inside a receipt.
type InAppPurchase struct {
	Quantity                   int         `json:"quantity"`
	ProductID                  string      `json:"productId"`
	TransactionID              string      `json:"transactionId"`
	OriginalTransactionID      *string     `json:"originalTransactionId,omitempty"`
	ProductType                ProductType `json:"productType"`
	PurchaseDate               time.Time   `json:"purchaseDate"`
	OriginalPurchaseDate       *time.Time  `json:"originalPurchaseDate,omitempty"`
	ExpiresDate                *time.Time  `json:"expiresDate,omitempty"`
	CancellationDate           *time.Time  `json:"cancellationDate,omitempty"`
	IsInTrialPeriod            *bool       `json:"isInTrialPeriod,omitempty"`
	IsInIntroOfferPeriod       *bool       `json:"isInIntroOfferPeriod,omitempty"`
	WebOrderLineItemID         *int64      `json:"webOrderLineItemId,omitempty"`
	PromotionalOfferIdentifier *string     `json:"promotionalOfferIdentifier,omitempty"`
}

// IsSubscription reports whether the purchase is for a subscription product.
// Without a known product type, an expiration date marks a subscription.
func (p InAppPurchase) IsSubscription() bool {
	switch p.ProductType {
	case ProductTypeAutoRenewableSubscription, ProductTypeNonRenewingSubscription:
		return true
	case ProductTypeUnknown:
		return p.ExpiresDate != nil
	default:
		return false
	}
}

// IsActiveSubscription reports whether the purchase is a subscription that expires after now.
func (p InAppPurchase) IsActiveSubscription(now time.Time) bool {
	if !p.IsSubscription() || p.ExpiresDate == nil {
		return false
	}
	return p.ExpiresDate.After(now)
}

// InTrialOrIntroPeriod reports whether the purchase was made in a free trial or intro offer.
func (p InAppPurchase) InTrialOrIntroPeriod() bool {
	return (p.IsInIntroOfferPeriod != nil && *p.IsInIntroOfferPeriod) ||
		(p.IsInTrialPeriod != nil && *p.IsInTrialPeriod)
}

// PurchasedIntroOfferOrFreeTrialProductIdentifiers returns the product ids bought with an
// intro offer or free trial.
func (r *AppleReceipt) PurchasedIntroOfferOrFreeTrialProductIdentifiers() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, p := range r.InAppPurchases {
		if p.InTrialOrIntroPeriod() {
			ids[p.ProductID] = struct{}{}
		}
	}
	return ids
}

// ContainsActivePurchase reports whether the receipt has any active subscription, or a
// non-subscription purchase of productID.
func (r *AppleReceipt) ContainsActivePurchase(productID string, now time.Time) bool {
	for _, p := range r.InAppPurchases {
		if p.IsActiveSubscription(now) {
			return true
		}
	}
	for _, p := range r.InAppPurchases {
		if !p.IsSubscription() && p.ProductID == productID {
			return true
		}
	}
	return false
}

// DebugString returns the receipt as indented JSON.
func (r *AppleReceipt) DebugString() string {
	if r == nil {
		return "<null>"
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "<null>"
	}
	return string(b)
}
