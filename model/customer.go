package model

import (
	"sort"
	"time"
)

// CustomerInfo is the subscriber record returned by the backend.
type CustomerInfo struct {
	RequestDate time.Time  `json:"request_date"`
	Subscriber  Subscriber `json:"subscriber"`
}

// Subscriber holds a customer's entitlements and purchases.
type Subscriber struct {
	OriginalAppUserID          string                        `json:"original_app_user_id"`
	OriginalApplicationVersion *string                       `json:"original_application_version"`
	OriginalPurchaseDate       *time.Time                    `json:"original_purchase_date"`
	FirstSeen                  time.Time                     `json:"first_seen"`
	ManagementURL              *string                       `json:"management_url"`
	Entitlements               map[string]Entitlement        `json:"entitlements"`
	Subscriptions              map[string]SubscriptionStatus `json:"subscriptions"`
	NonSubscriptions           map[string][]NonSubscription  `json:"non_subscriptions"`
}

// Entitlement grants access while ExpiresDate is nil or in the future.
type Entitlement struct {
	ProductIdentifier string     `json:"product_identifier"`
	PurchaseDate      time.Time  `json:"purchase_date"`
	ExpiresDate       *time.Time `json:"expires_date"`
}

// SubscriptionStatus is the latest state of one subscription product.
type SubscriptionStatus struct {
	Store                 string     `json:"store"`
	PeriodType            string     `json:"period_type"`
	PurchaseDate          time.Time  `json:"purchase_date"`
	OriginalPurchaseDate  *time.Time `json:"original_purchase_date"`
	ExpiresDate           *time.Time `json:"expires_date"`
	UnsubscribeDetectedAt *time.Time `json:"unsubscribe_detected_at"`
	BillingIssuesDetected *time.Time `json:"billing_issues_detected_at"`
	IsSandbox             bool       `json:"is_sandbox"`
}

// NonSubscription is a one-off purchase.
type NonSubscription struct {
	ID           string    `json:"id"`
	Store        string    `json:"store"`
	PurchaseDate time.Time `json:"purchase_date"`
	IsSandbox    bool      `json:"is_sandbox"`
}

// IsActive reports whether the entitlement is active at now.
func (e Entitlement) IsActive(now time.Time) bool {
	return e.ExpiresDate == nil || e.ExpiresDate.After(now)
}

// ActiveEntitlements returns the sorted identifiers of entitlements active at now.
func (c *CustomerInfo) ActiveEntitlements(now time.Time) []string {
	var out []string
	for id, e := range c.Subscriber.Entitlements {
		if e.IsActive(now) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
