// ABOUTME: Postgres implementation of the Store interface via pgx stdlib driver
// ABOUTME: Schema is managed with goose migrations embedded in the binary

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/allnik/advisory/internal/store/migrations"
)

// PostgresStore implements the Store interface using Postgres.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore opens a Postgres connection with the given DSN and runs
// any pending migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	logger := slog.Default().With("component", "store")

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("Postgres store initialized")
	return &PostgresStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user. Returns ErrDuplicateUser if the email or
// username is already taken.
func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, full_name, email, username, password_hash,
			city, region, expertise, work_region, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
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
		user.CreatedAt.UTC(),
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

func scanUserPg(row interface{ Scan(...any) error }) (*User, error) {
	var user User
	var createdAt time.Time

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
	user.CreatedAt = createdAt.UTC()
	return &user, nil
}

// GetUser retrieves a user by ID.
func (s *PostgresStore) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUserPg(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUserPg(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return user, nil
}

// ListUsers returns all users, newest first.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUserPg(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUserRole changes a user's role.
func (s *PostgresStore) UpdateUserRole(ctx context.Context, id, role string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
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
func (s *PostgresStore) CreateRequest(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO requests (id, owner_id, advisor_id, type, area, location,
			bedrooms, style, budget, payment, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
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
		req.CreatedAt.UTC(),
		req.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}

	s.logger.Info("created request", "id", req.ID, "owner_id", req.OwnerID)
	return nil
}

func scanRequestPg(row interface{ Scan(...any) error }) (*Request, error) {
	var req Request
	var status string
	var createdAt, updatedAt time.Time

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
	req.CreatedAt = createdAt.UTC()
	req.UpdatedAt = updatedAt.UTC()
	return &req, nil
}

// GetRequest retrieves a request by ID.
func (s *PostgresStore) GetRequest(ctx context.Context, id string) (*Request, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id)
	req, err := scanRequestPg(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) listRequests(ctx context.Context, where string, args ...any) ([]*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests ` + where + ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var reqs []*Request
	for rows.Next() {
		req, err := scanRequestPg(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ListRequestsByOwner returns all requests created by ownerID.
func (s *PostgresStore) ListRequestsByOwner(ctx context.Context, ownerID string) ([]*Request, error) {
	return s.listRequests(ctx, `WHERE owner_id = $1`, ownerID)
}

// ListRequestsByAdvisor returns all requests assigned to advisorID.
func (s *PostgresStore) ListRequestsByAdvisor(ctx context.Context, advisorID string) ([]*Request, error) {
	return s.listRequests(ctx, `WHERE advisor_id = $1`, advisorID)
}

// ListRequestsByStatus returns all requests in the given status.
func (s *PostgresStore) ListRequestsByStatus(ctx context.Context, status RequestStatus) ([]*Request, error) {
	return s.listRequests(ctx, `WHERE status = $1`, string(status))
}

// ListRequests returns all requests across all users.
func (s *PostgresStore) ListRequests(ctx context.Context) ([]*Request, error) {
	return s.listRequests(ctx, ``)
}

// UpdateRequest persists a request's mutable fields (advisor assignment,
// status, updated_at). The caller owns the UpdatedAt timestamp; the store
// never mutates the struct.
func (s *PostgresStore) UpdateRequest(ctx context.Context, req *Request) error {
	query := `
		UPDATE requests
		SET advisor_id = $1, status = $2, updated_at = $3
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query,
		req.AdvisorID,
		string(req.Status),
		req.UpdatedAt.UTC(),
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
func (s *PostgresStore) CreateProperty(ctx context.Context, prop *Property) error {
	query := `
		INSERT INTO properties (id, owner_id, type, area, location, price,
			payment_conditions, customer_type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
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
		prop.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}

	s.logger.Info("created property", "id", prop.ID, "owner_id", prop.OwnerID)
	return nil
}

// ListProperties returns all property listings, newest first.
func (s *PostgresStore) ListProperties(ctx context.Context) ([]*Property, error) {
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
		var createdAt time.Time
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
		prop.CreatedAt = createdAt.UTC()
		props = append(props, &prop)
	}
	return props, rows.Err()
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
