package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thirukguru/receipt-parser/model"
	_ "modernc.org/sqlite"
)

const defaultDBPath = "~/.receipt-parser/history.db"

// Fixed width so stored dates sort lexically.
const dateLayout = "2006-01-02T15:04:05.000Z"

// NewService creates a SQLite-backed storage service.
func NewService(dbPath string) (Service, error) {
	resolved, err := resolvePath(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	// foreign_keys is per connection; the DSN applies it to every connection the pool opens.
	db, err := sql.Open("sqlite", resolved+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &service{db: db, dbPath: resolved, now: time.Now}, nil
}

type service struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

func resolvePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		p = defaultDBPath
	}
	if strings.HasPrefix(p, "~/") || p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		if p == "~" {
			p = home
		} else {
			p = filepath.Join(home, p[2:])
		}
	}
	return filepath.Clean(p), nil
}

// ReceiptHash is the key a raw receipt is stored under.
func ReceiptHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// SaveReceipt stores a parsed receipt. Saving the same raw receipt again only bumps
// last_parsed and parse_count.
func (s *service) SaveReceipt(ctx context.Context, input SaveReceiptInput) (receiptID int64, err error) {
	if input.Receipt == nil {
		return 0, errors.New("receipt is required")
	}
	if len(input.Raw) == 0 {
		return 0, errors.New("raw receipt data is required")
	}
	if input.RunUUID == "" {
		input.RunUUID = fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	r := input.Receipt
	hash := ReceiptHash(input.Raw)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `SELECT receipt_id FROM receipts WHERE receipt_hash=?`, hash).Scan(&receiptID)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE receipts SET
				last_parsed=CURRENT_TIMESTAMP,
				parse_count=parse_count+1,
				run_uuid=?,
				source_ref=?,
				cli_version=?
			WHERE receipt_id=?
		`, input.RunUUID, input.Source, input.Version, receiptID)
		if err != nil {
			return 0, err
		}
		err = tx.Commit()
		if err != nil {
			return 0, err
		}
		return receiptID, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}

	now := s.now()
	active := 0
	for _, p := range r.InAppPurchases {
		if p.IsActiveSubscription(now) {
			active++
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO receipts (
			receipt_hash, run_uuid, source_ref, bundle_id, app_version, original_app_version,
			creation_date, expiration_date, purchase_count, active_count, cli_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, hash, input.RunUUID, input.Source, r.BundleID, r.ApplicationVersion, r.OriginalApplicationVersion,
		formatDate(r.CreationDate), formatOptionalDate(r.ExpirationDate), len(r.InAppPurchases), active, input.Version)
	if err != nil {
		return 0, err
	}
	receiptID, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err = s.savePurchasesTx(ctx, tx, receiptID, r.InAppPurchases); err != nil {
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	return receiptID, nil
}

func (s *service) savePurchasesTx(ctx context.Context, tx *sql.Tx, receiptID int64, purchases []model.InAppPurchase) error {
	for _, p := range purchases {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO in_app_purchases (
				receipt_id, transaction_id, original_transaction_id, product_id, product_type, quantity,
				purchase_date, original_purchase_date, expires_date, cancellation_date,
				is_trial, is_intro_offer, web_order_line_item_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(receipt_id, transaction_id) DO NOTHING
		`, receiptID, p.TransactionID, originalTransactionID(p), p.ProductID, int(p.ProductType), p.Quantity,
			formatDate(p.PurchaseDate), formatOptionalDate(p.OriginalPurchaseDate), formatOptionalDate(p.ExpiresDate),
			formatOptionalDate(p.CancellationDate), isSet(p.IsInTrialPeriod), isSet(p.IsInIntroOfferPeriod),
			p.WebOrderLineItemID)
		if err != nil {
			return err
		}
	}
	return nil
}

// Purchases without an original transaction start their own chain.
func originalTransactionID(p model.InAppPurchase) string {
	if p.OriginalTransactionID != nil && *p.OriginalTransactionID != "" {
		return *p.OriginalTransactionID
	}
	return p.TransactionID
}

func (s *service) GetTrends(bundleID string, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	query := `
		SELECT
			bundle_id,
			DATE(last_parsed) as day,
			COUNT(*),
			SUM(purchase_count),
			SUM(active_count)
		FROM receipts
		WHERE last_parsed >= DATETIME('now', ?)
	`
	args := []any{fmt.Sprintf("-%d day", days)}
	if bundleID != "" {
		query += " AND bundle_id=?"
		args = append(args, bundleID)
	}
	query += " GROUP BY bundle_id, DATE(last_parsed) ORDER BY day ASC, bundle_id ASC"
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []TrendPoint{}
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.BundleID, &p.Date, &p.Receipts, &p.Purchases, &p.Active); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *service) GetRecentReceipts(bundleID string, limit int) ([]ReceiptSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT receipt_id, receipt_hash, run_uuid, source_ref, bundle_id, app_version,
			creation_date, expiration_date, purchase_count, active_count, parse_count,
			first_parsed, last_parsed, cli_version
		FROM receipts
	`
	args := []any{}
	if bundleID != "" {
		query += " WHERE bundle_id=?"
		args = append(args, bundleID)
	}
	query += " ORDER BY last_parsed DESC, receipt_id DESC LIMIT ?"
	args = append(args, limit)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []ReceiptSummary{}
	for rows.Next() {
		var (
			rs         ReceiptSummary
			runUUID    sql.NullString
			source     sql.NullString
			version    sql.NullString
			created    string
			expiration sql.NullString
		)
		if err := rows.Scan(&rs.ReceiptID, &rs.ReceiptHash, &runUUID, &source, &rs.BundleID, &rs.AppVersion,
			&created, &expiration, &rs.PurchaseCount, &rs.ActiveCount, &rs.ParseCount,
			&rs.FirstParsed, &rs.LastParsed, &version); err != nil {
			return nil, err
		}
		rs.RunUUID, rs.Source, rs.Version = runUUID.String, source.String, version.String
		if rs.CreationDate, err = parseDate(created); err != nil {
			return nil, err
		}
		if rs.ExpirationDate, err = parseOptionalDate(expiration); err != nil {
			return nil, err
		}
		receipts = append(receipts, rs)
	}
	return receipts, rows.Err()
}

func (s *service) GetReceiptComparison(receiptID1, receiptID2 int64) (*ReceiptComparison, error) {
	first, err := s.transactionIDsByReceipt(receiptID1)
	if err != nil {
		return nil, err
	}
	second, err := s.transactionIDsByReceipt(receiptID2)
	if err != nil {
		return nil, err
	}

	firstSet := map[string]bool{}
	secondSet := map[string]bool{}
	for _, id := range first {
		firstSet[id] = true
	}
	for _, id := range second {
		secondSet[id] = true
	}

	cmp := &ReceiptComparison{ReceiptID1: receiptID1, ReceiptID2: receiptID2}
	for _, id := range second {
		if !firstSet[id] {
			cmp.NewTransactions = append(cmp.NewTransactions, id)
		}
	}
	for _, id := range first {
		if secondSet[id] {
			cmp.Persistent++
		} else {
			cmp.RemovedTransactions = append(cmp.RemovedTransactions, id)
		}
	}
	return cmp, nil
}

func (s *service) transactionIDsByReceipt(receiptID int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT transaction_id FROM in_app_purchases WHERE receipt_id=? ORDER BY purchase_date ASC, transaction_id ASC
	`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetTransactionHistory lists every stored transaction of a subscription chain,
// oldest first, once per transaction.
func (s *service) GetTransactionHistory(originalTransactionID string) ([]TransactionEvent, error) {
	rows, err := s.db.Query(`
		SELECT MAX(p.receipt_id), r.bundle_id, p.transaction_id, p.product_id,
			p.purchase_date, p.expires_date, p.cancellation_date, p.product_type
		FROM in_app_purchases p
		JOIN receipts r ON r.receipt_id = p.receipt_id
		WHERE p.original_transaction_id=?
		GROUP BY r.bundle_id, p.transaction_id
		ORDER BY p.purchase_date ASC, p.transaction_id ASC
	`, originalTransactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := s.now()
	out := []TransactionEvent{}
	for rows.Next() {
		var (
			e           TransactionEvent
			purchased   string
			expires     sql.NullString
			cancelled   sql.NullString
			productType int
		)
		if err := rows.Scan(&e.ReceiptID, &e.BundleID, &e.TransactionID, &e.ProductID,
			&purchased, &expires, &cancelled, &productType); err != nil {
			return nil, err
		}
		if e.PurchaseDate, err = parseDate(purchased); err != nil {
			return nil, err
		}
		if e.ExpiresDate, err = parseOptionalDate(expires); err != nil {
			return nil, err
		}
		cancellation, err := parseOptionalDate(cancelled)
		if err != nil {
			return nil, err
		}
		e.Status = status(e.ExpiresDate, cancellation, now)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *service) ListPurchases(receiptID int64) ([]PurchaseSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT transaction_id, original_transaction_id, product_id, product_type, quantity,
			purchase_date, expires_date, cancellation_date, is_trial, is_intro_offer
		FROM in_app_purchases WHERE receipt_id=? ORDER BY purchase_date ASC, transaction_id ASC
	`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := s.now()
	out := []PurchaseSnapshot{}
	for rows.Next() {
		var (
			p           PurchaseSnapshot
			original    sql.NullString
			productType int
			purchased   string
			expires     sql.NullString
			cancelled   sql.NullString
		)
		if err := rows.Scan(&p.TransactionID, &original, &p.ProductID, &productType, &p.Quantity,
			&purchased, &expires, &cancelled, &p.IsTrial, &p.IsIntroOffer); err != nil {
			return nil, err
		}
		p.OriginalTransactionID = original.String
		p.ProductType = model.ProductType(productType)
		if p.PurchaseDate, err = parseDate(purchased); err != nil {
			return nil, err
		}
		if p.ExpiresDate, err = parseOptionalDate(expires); err != nil {
			return nil, err
		}
		if p.CancellationDate, err = parseOptionalDate(cancelled); err != nil {
			return nil, err
		}
		p.Status = status(p.ExpiresDate, p.CancellationDate, now)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *service) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

func (s *service) Reindex(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "REINDEX")
	return err
}

// PurgeOlderThan deletes receipts not parsed in the last days; purchases cascade.
func (s *service) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, errors.New("days must be > 0")
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM receipts WHERE last_parsed < DATETIME('now', ?)
	`, fmt.Sprintf("-%d day", days))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *service) Close() error {
	return s.db.Close()
}

func status(expires, cancelled *time.Time, now time.Time) string {
	switch {
	case cancelled != nil:
		return StatusCancelled
	case expires == nil:
		return StatusPurchased
	case expires.After(now):
		return StatusActive
	default:
		return StatusExpired
	}
}

func isSet(b *bool) bool {
	return b != nil && *b
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func formatOptionalDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}

func parseOptionalDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
