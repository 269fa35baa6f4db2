package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestIsSubscription(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		purchase InAppPurchase
		want     bool
	}{
		{name: "auto renewable", purchase: InAppPurchase{ProductType: ProductTypeAutoRenewableSubscription}, want: true},
		{name: "non renewing", purchase: InAppPurchase{ProductType: ProductTypeNonRenewingSubscription}, want: true},
		{name: "consumable", purchase: InAppPurchase{ProductType: ProductTypeConsumable, ExpiresDate: &expires}, want: false},
		{name: "unknown with expiration", purchase: InAppPurchase{ProductType: ProductTypeUnknown, ExpiresDate: &expires}, want: true},
		{name: "unknown without expiration", purchase: InAppPurchase{ProductType: ProductTypeUnknown}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.purchase.IsSubscription())
		})
	}
}

func TestIsActiveSubscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	active := InAppPurchase{ProductType: ProductTypeAutoRenewableSubscription, ExpiresDate: &future}
	expired := InAppPurchase{ProductType: ProductTypeAutoRenewableSubscription, ExpiresDate: &past}
	noExpiry := InAppPurchase{ProductType: ProductTypeAutoRenewableSubscription}

	assert.True(t, active.IsActiveSubscription(now))
	assert.False(t, expired.IsActiveSubscription(now))
	assert.False(t, noExpiry.IsActiveSubscription(now))
}

func TestPurchasedIntroOfferOrFreeTrialProductIdentifiers(t *testing.T) {
	r := &AppleReceipt{InAppPurchases: []InAppPurchase{
		{ProductID: "monthly", IsInTrialPeriod: ptr(true)},
		{ProductID: "monthly", IsInIntroOfferPeriod: ptr(true)},
		{ProductID: "annual", IsInIntroOfferPeriod: ptr(true), IsInTrialPeriod: ptr(false)},
		{ProductID: "weekly", IsInIntroOfferPeriod: ptr(false)},
		{ProductID: "coins"},
	}}

	ids := r.PurchasedIntroOfferOrFreeTrialProductIdentifiers()
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "monthly")
	assert.Contains(t, ids, "annual")
}

func TestContainsActivePurchase(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	withActiveSub := &AppleReceipt{InAppPurchases: []InAppPurchase{
		{ProductID: "pro.monthly", ProductType: ProductTypeAutoRenewableSubscription, ExpiresDate: &future},
	}}
	assert.True(t, withActiveSub.ContainsActivePurchase("anything", now))

	withExpiredSub := &AppleReceipt{InAppPurchases: []InAppPurchase{
		{ProductID: "pro.monthly", ProductType: ProductTypeAutoRenewableSubscription, ExpiresDate: &past},
	}}
	assert.False(t, withExpiredSub.ContainsActivePurchase("pro.monthly", now))

	withLifetime := &AppleReceipt{InAppPurchases: []InAppPurchase{
		{ProductID: "lifetime", ProductType: ProductTypeNonConsumable},
	}}
	assert.True(t, withLifetime.ContainsActivePurchase("lifetime", now))
	assert.False(t, withLifetime.ContainsActivePurchase("other", now))

	assert.False(t, (&AppleReceipt{}).ContainsActivePurchase("lifetime", now))
}

func TestDebugString(t *testing.T) {
	r := &AppleReceipt{
		BundleID:           "com.example.app",
		ApplicationVersion: "42",
		CreationDate:       time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		InAppPurchases:     []InAppPurchase{},
	}

	out := r.DebugString()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "com.example.app", decoded["bundleId"])
	assert.Equal(t, "2025-01-02T03:04:05Z", decoded["creationDate"])
	assert.NotContains(t, decoded, "expirationDate")

	var nilReceipt *AppleReceipt
	assert.Equal(t, "<null>", nilReceipt.DebugString())
}

func TestProductTypeString(t *testing.T) {
	assert.Equal(t, "auto_renewable_subscription", ProductTypeAutoRenewableSubscription.String())
	assert.Equal(t, "unknown", ProductType(42).String())
}
