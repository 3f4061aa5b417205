// ABOUTME: Store interface and entity types for advisory server persistence
// ABOUTME: Defines User, Request, Property structs and shared sentinel errors

package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when registering an email or username that
// already exists. The existing record is never overwritten.
var ErrDuplicateUser = errors.New("user already exists")

// RequestStatus is the lifecycle state of an advisory request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusCompleted RequestStatus = "completed"
	StatusCancelled RequestStatus = "cancelled"
)

// ValidStatus reports whether s is one of the enumerated request states.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// User is a registered account. PasswordHash is an opaque bcrypt digest;
// the plaintext is never stored.
type User struct {
	ID           string
	FullName     string
	Email        string
	Username     string
	PasswordHash string
	City         string
	Region       string
	Expertise    string
	WorkRegion   string
	Role         string
	CreatedAt    time.Time
}

// Request is an advisory request connecting a client to an advisor.
// AdvisorID is empty until an advisor accepts the request.
type Request struct {
	ID          string
	OwnerID     string
	AdvisorID   string
	Type        string
	Area        int
	Location    string
	Bedrooms    int
	Style       string
	Budget      int
	Payment     string
	Description string
	Status      RequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Property is a listing posted by an advisor.
type Property struct {
	ID                string
	OwnerID           string
	Type              string
	Area              int
	Location          string
	Price             int
	PaymentConditions string
	CustomerType      string
	Description       string
	CreatedAt         time.Time
}

// Store is the persistence interface consumed by the API layer.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUserRole(ctx context.Context, id, role string) error

	// Requests
	CreateRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)
	ListRequestsByOwner(ctx context.Context, ownerID string) ([]*Request, error)
	ListRequestsByAdvisor(ctx context.Context, advisorID string) ([]*Request, error)
	ListRequestsByStatus(ctx context.Context, status RequestStatus) ([]*Request, error)
	ListRequests(ctx context.Context) ([]*Request, error)
	UpdateRequest(ctx context.Context, req *Request) error

	// Properties
	CreateProperty(ctx context.Context, prop *Property) error
	ListProperties(ctx context.Context) ([]*Property, error)

	Close() error
}

// isUniqueConstraintError recognizes unique violations from both backends:
// SQLite reports "UNIQUE constraint failed", Postgres SQLSTATE 23505.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value")
}
