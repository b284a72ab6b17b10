// Package store persists finalized business records and menu content.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/voicedesk/server/internal/agent/model"
)

// SQLiteStore implements model.RecordStore using SQLite. The unique call_id
// columns on both record tables are the storage-level backstop for the
// at-most-once finalization invariant.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			call_id TEXT NOT NULL UNIQUE,
			customer_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT,
			reservation_date TEXT NOT NULL,
			reservation_time TEXT NOT NULL,
			party_size TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS financial_inquiries (
			id TEXT PRIMARY KEY,
			call_id TEXT NOT NULL UNIQUE,
			customer_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT,
			reason TEXT NOT NULL,
			priority TEXT NOT NULL,
			call_time DATETIME NOT NULL,
			follow_up_completed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			price TEXT NOT NULL,
			category TEXT NOT NULL,
			allergens TEXT,
			available INTEGER NOT NULL DEFAULT 1
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reservations (id, call_id, customer_name, phone, email, reservation_date, reservation_time, party_size, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CallID, r.CustomerName, r.Phone, r.Email, r.Date, r.Time, r.PartySize, string(r.Status), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindReservationByCall(ctx context.Context, callID string) (*model.Reservation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, call_id, customer_name, phone, email, reservation_date, reservation_time, party_size, status, created_at
		 FROM reservations WHERE call_id = ?`, callID)
	return scanReservation(row)
}

func (s *SQLiteStore) ListReservations(ctx context.Context, limit int) ([]model.Reservation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, call_id, customer_name, phone, email, reservation_date, reservation_time, party_size, status, created_at
		 FROM reservations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		var r model.Reservation
		var email sql.NullString
		var status string
		if err := rows.Scan(&r.ID, &r.CallID, &r.CustomerName, &r.Phone, &email, &r.Date, &r.Time, &r.PartySize, &status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		r.Email = email.String
		r.Status = model.ReservationStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateInquiry(ctx context.Context, i *model.Inquiry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO financial_inquiries (id, call_id, customer_name, phone, email, reason, priority, call_time, follow_up_completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.CallID, i.CustomerName, i.Phone, i.Email, i.Reason, string(i.Priority), i.CallTime, i.FollowUpCompleted, i.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindInquiryByCall(ctx context.Context, callID string) (*model.Inquiry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, call_id, customer_name, phone, email, reason, priority, call_time, follow_up_completed, created_at
		 FROM financial_inquiries WHERE call_id = ?`, callID)
	return scanInquiry(row)
}

func (s *SQLiteStore) ListInquiries(ctx context.Context, limit int) ([]model.Inquiry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, call_id, customer_name, phone, email, reason, priority, call_time, follow_up_completed, created_at
		 FROM financial_inquiries ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	var out []model.Inquiry
	for rows.Next() {
		var i model.Inquiry
		var email sql.NullString
		var priority string
		if err := rows.Scan(&i.ID, &i.CallID, &i.CustomerName, &i.Phone, &email, &i.Reason, &priority, &i.CallTime, &i.FollowUpCompleted, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		i.Email = email.String
		i.Priority = model.ParsePriority(priority)
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Counts(ctx context.Context) (int, int, error) {
	var reservations, inquiries int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&reservations); err != nil {
		return 0, 0, fmt.Errorf("count reservations: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM financial_inquiries`).Scan(&inquiries); err != nil {
		return 0, 0, fmt.Errorf("count inquiries: %w", err)
	}
	return reservations, inquiries, nil
}

func (s *SQLiteStore) SearchMenuItems(ctx context.Context, query string) ([]model.MenuItem, error) {
	like := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, price, category, allergens, available
		 FROM menu_items
		 WHERE available = 1 AND (name LIKE ? OR description LIKE ? OR category LIKE ?)
		 ORDER BY category, name`, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("search menu items: %w", err)
	}
	defer rows.Close()

	var out []model.MenuItem
	for rows.Next() {
		var m model.MenuItem
		var description, allergens sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &description, &m.Price, &m.Category, &allergens, &m.Available); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		m.Description = description.String
		m.Allergens = allergens.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// SeedMenu loads the sample menu once; subsequent starts are no-ops.
func (s *SQLiteStore) SeedMenu(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n); err != nil {
		return fmt.Errorf("count menu items: %w", err)
	}
	if n > 0 {
		return nil
	}

	items := []model.MenuItem{
		{Name: "Grilled Salmon", Description: "Fresh Atlantic salmon with lemon herb butter", Price: "$24.99", Category: "Main Course", Allergens: "fish", Available: true},
		{Name: "Caesar Salad", Description: "Romaine lettuce, parmesan cheese, croutons, Caesar dressing", Price: "$12.99", Category: "Appetizer", Allergens: "dairy, gluten", Available: true},
		{Name: "Chocolate Cake", Description: "Rich chocolate cake with vanilla ice cream", Price: "$8.99", Category: "Dessert", Allergens: "dairy, eggs, gluten", Available: true},
	}
	for _, item := range items {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO menu_items (name, description, price, category, allergens, available) VALUES (?, ?, ?, ?, ?, ?)`,
			item.Name, item.Description, item.Price, item.Category, item.Allergens, item.Available,
		); err != nil {
			return fmt.Errorf("seed menu item %q: %w", item.Name, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var r model.Reservation
	var email sql.NullString
	var status string
	err := row.Scan(&r.ID, &r.CallID, &r.CustomerName, &r.Phone, &email, &r.Date, &r.Time, &r.PartySize, &status, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan reservation: %w", err)
	}
	r.Email = email.String
	r.Status = model.ReservationStatus(status)
	return &r, nil
}

func scanInquiry(row rowScanner) (*model.Inquiry, error) {
	var i model.Inquiry
	var email sql.NullString
	var priority string
	err := row.Scan(&i.ID, &i.CallID, &i.CustomerName, &i.Phone, &email, &i.Reason, &priority, &i.CallTime, &i.FollowUpCompleted, &i.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan inquiry: %w", err)
	}
	i.Email = email.String
	i.Priority = model.ParsePriority(priority)
	return &i, nil
}

var _ model.RecordStore = (*SQLiteStore)(nil)
