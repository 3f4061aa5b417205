// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Schema is created automatically; timestamps stored as RFC3339 UTC

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path. The schema
// is created if it doesn't exist, and parent directories are created as
// needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			expertise TEXT NOT NULL DEFAULT '',
			work_region TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			advisor_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			area INTEGER NOT NULL,
			location TEXT NOT NULL,
			bedrooms INTEGER NOT NULL DEFAULT 0,
			style TEXT NOT NULL DEFAULT '',
			budget INTEGER NOT NULL DEFAULT 0,
			payment TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (owner_id) REFERENCES users(id)
		);

		CREATE INDEX IF NOT EXISTS idx_requests_owner ON requests(owner_id);
		CREATE INDEX IF NOT EXISTS idx_requests_advisor ON requests(advisor_id);
		CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);

		CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			type TEXT NOT NULL,
			area INTEGER NOT NULL,
			location TEXT NOT NULL,
			price INTEGER NOT NULL,
			payment_conditions TEXT NOT NULL DEFAULT '',
			customer_type TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			FOREIGN KEY (owner_id) REFERENCES users(id)
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user. Returns ErrDuplicateUser if the email or
// username is already taken; the existing record is left untouched.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, full_name, email, username, password_hash,
			city, region, expertise, work_region, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.FullName,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.City,
		user.Region,
		user.Expertise,
		user.WorkRegion,
		user.Role,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("created user", "id", user.ID, "role", user.Role)
	return nil
}

const userColumns = `id, full_name, email, username, password_hash,
	city, region, expertise, work_region, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var user User
	var createdAt string

	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.City,
		&user.Region,
		&user.Expertise,
		&user.WorkRegion,
		&user.Role,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	user.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &user, nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email. Email is the login identity.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return user, nil
}

// ListUsers returns all users, newest first.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUserRole changes a user's role.
func (s *SQLiteStore) UpdateUserRole(ctx context.Context, id, role string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Info("updated user role", "id", id, "role", role)
	return nil
}

// CreateRequest inserts a new advisory request.
func (s *SQLiteStore) CreateRequest(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO requests (id, owner_id, advisor_id, type, area, location,
			bedrooms, style, budget, payment, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		req.ID,
		req.OwnerID,
		req.AdvisorID,
		req.Type,
		req.Area,
		req.Location,
		req.Bedrooms,
		req.Style,
		req.Budget,
		req.Payment,
		req.Description,
		string(req.Status),
		req.CreatedAt.UTC().Format(time.RFC3339),
		req.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}

	s.logger.Info("created request", "id", req.ID, "owner_id", req.OwnerID)
	return nil
}

const requestColumns = `id, owner_id, advisor_id, type, area, location,
	bedrooms, style, budget, payment, description, status, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (*Request, error) {
	var req Request
	var status, createdAt, updatedAt string

	err := row.Scan(
		&req.ID,
		&req.OwnerID,
		&req.AdvisorID,
		&req.Type,
		&req.Area,
		&req.Location,
		&req.Bedrooms,
		&req.Style,
		&req.Budget,
		&req.Payment,
		&req.Description,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = RequestStatus(status)
	if req.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if req.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &req, nil
}

// GetRequest retrieves a request by ID.
func (s *SQLiteStore) GetRequest(ctx context.Context, id string) (*Request, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying request: %w", err)
	}
	return req, nil
}

func (s *SQLiteStore) listRequests(ctx context.Context, where string, args ...any) ([]*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests ` + where + ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var reqs []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ListRequestsByOwner returns all requests created by ownerID.
func (s *SQLiteStore) ListRequestsByOwner(ctx context.Context, ownerID string) ([]*Request, error) {
	return s.listRequests(ctx, `WHERE owner_id = ?`, ownerID)
}

// ListRequestsByAdvisor returns all requests assigned to advisorID.
func (s *SQLiteStore) ListRequestsByAdvisor(ctx context.Context, advisorID string) ([]*Request, error) {
	return s.listRequests(ctx, `WHERE advisor_id = ?`, advisorID)
}

// ListRequestsByStatus returns all requests in the given status.
func (s *SQLiteStore) ListRequestsByStatus(ctx context.Context, status RequestStatus) ([]*Request, error) {
	return s.listRequests(ctx, `WHERE status = ?`, string(status))
}

// ListRequests returns all requests across all users.
func (s *SQLiteStore) ListRequests(ctx context.Context) ([]*Request, error) {
	return s.listRequests(ctx, ``)
}

// UpdateRequest persists a request's mutable fields (advisor assignment,
// status, updated_at). The caller owns the UpdatedAt timestamp; the store
// never mutates the struct.
func (s *SQLiteStore) UpdateRequest(ctx context.Context, req *Request) error {
	query := `
		UPDATE requests
		SET advisor_id = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		req.AdvisorID,
		string(req.Status),
		req.UpdatedAt.UTC().Format(time.RFC3339),
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("updating request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Info("updated request", "id", req.ID, "status", req.Status)
	return nil
}

// CreateProperty inserts a new property listing.
func (s *SQLiteStore) CreateProperty(ctx context.Context, prop *Property) error {
	query := `
		INSERT INTO properties (id, owner_id, type, area, location, price,
			payment_conditions, customer_type, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		prop.ID,
		prop.OwnerID,
		prop.Type,
		prop.Area,
		prop.Location,
		prop.Price,
		prop.PaymentConditions,
		prop.CustomerType,
		prop.Description,
		prop.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}

	s.logger.Info("created property", "id", prop.ID, "owner_id", prop.OwnerID)
	return nil
}

// ListProperties returns all property listings, newest first.
func (s *SQLiteStore) ListProperties(ctx context.Context) ([]*Property, error) {
	query := `
		SELECT id, owner_id, type, area, location, price,
			payment_conditions, customer_type, description, created_at
		FROM properties ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer rows.Close()

	var props []*Property
	for rows.Next() {
		var prop Property
		var createdAt string
		err := rows.Scan(
			&prop.ID,
			&prop.OwnerID,
			&prop.Type,
			&prop.Area,
			&prop.Location,
			&prop.Price,
			&prop.PaymentConditions,
			&prop.CustomerType,
			&prop.Description,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		if prop.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		props = append(props, &prop)
	}
	return props, rows.Err()
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
