package storage

import (
	"context"
	"time"

	"github.com/thirukguru/receipt-parser/model"
)

// Service defines persistence and history query operations.
type Service interface {
	SaveReceipt(ctx context.Context, input SaveReceiptInput) (int64, error)
	GetTrends(bundleID string, days int) ([]TrendPoint, error)
	GetRecentReceipts(bundleID string, limit int) ([]ReceiptSummary, error)
	GetReceiptComparison(receiptID1, receiptID2 int64) (*ReceiptComparison, error)
	GetTransactionHistory(originalTransactionID string) ([]TransactionEvent, error)
	ListPurchases(receiptID int64) ([]PurchaseSnapshot, error)
	Vacuum(ctx context.Context) error
	Reindex(ctx context.Context) error
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
	Close() error
}

// SaveReceiptInput is the payload saved for a parsed receipt. The SHA-256 of Raw
// identifies the receipt across runs.
type SaveReceiptInput struct {
	RunUUID string
	Source  string
	Version string
	Raw     []byte
	Receipt *model.AppleReceipt
}

// TrendPoint is a daily aggregate of parsed receipts.
type TrendPoint struct {
	BundleID  string `json:"bundle_id"`
	Date      string `json:"date"`
	Receipts  int    `json:"receipts"`
	Purchases int    `json:"purchases"`
	Active    int    `json:"active"`
}

// ReceiptSummary provides compact receipt metadata.
type ReceiptSummary struct {
	ReceiptID      int64
	ReceiptHash    string
	RunUUID        string
	Source         string
	BundleID       string
	AppVersion     string
	CreationDate   time.Time
	ExpirationDate *time.Time
	PurchaseCount  int
	ActiveCount    int
	ParseCount     int
	FirstParsed    time.Time
	LastParsed     time.Time
	Version        string
}

// ReceiptComparison holds transaction differences between two receipts.
type ReceiptComparison struct {
	ReceiptID1          int64
	ReceiptID2          int64
	NewTransactions     []string
	RemovedTransactions []string
	Persistent          int
}

// Transaction statuses derived at query time.
const (
	StatusActive    = "ACTIVE"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"
	StatusPurchased = "PURCHASED"
)

// TransactionEvent is one transaction of a subscription chain as seen in a stored receipt.
type TransactionEvent struct {
	ReceiptID     int64
	BundleID      string
	TransactionID string
	ProductID     string
	PurchaseDate  time.Time
	ExpiresDate   *time.Time
	Status        string
}

// PurchaseSnapshot is a stored in-app purchase.
type PurchaseSnapshot struct {
	TransactionID         string
	OriginalTransactionID string
	ProductID             string
	ProductType           model.ProductType
	Quantity              int
	PurchaseDate          time.Time
	ExpiresDate           *time.Time
	CancellationDate      *time.Time
	IsTrial               bool
	IsIntroOffer          bool
	Status                string
}
