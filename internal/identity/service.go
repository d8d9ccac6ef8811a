package identity

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"scriptqueue/internal/config"
	"scriptqueue/internal/policy"
	"scriptqueue/internal/services"
)

const minPasswordLength = 8

// timeLayout is fixed-width so lexicographic ordering of stored timestamps
// matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Service manages accounts, credentials, and role assignments. It shares the
// queue store's database handle; the users and user_roles tables are created
// by the schema installer there.
type Service struct {
	db         *sql.DB
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

func NewService(db *sql.DB, cfg *config.Config) *Service {
	cost := cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hours := cfg.Auth.TokenHours
	if hours <= 0 {
		hours = 24
	}
	return &Service{
		db:         db,
		jwtSecret:  []byte(cfg.Auth.JWTSecret),
		tokenTTL:   time.Duration(hours) * time.Hour,
		bcryptCost: cost,
	}
}

// SignUp registers a new account. The account starts unapproved; an admin
// must grant a role before queue access is allowed.
func (s *Service) SignUp(ctx context.Context, email, username, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, services.Wrap(services.ErrValidation, "identity", "signup", "invalid email address", nil)
	}
	if username == "" {
		return nil, services.Wrap(services.ErrValidation, "identity", "signup", "username is required", nil)
	}
	if len(password) < minPasswordLength {
		return nil, services.Wrap(services.ErrValidation, "identity", "signup", "password must be at least 8 characters", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "identity", "signup", "hash password", err)
	}

	user := &User{
		ID:        uuid.New().String(),
		Email:     email,
		Username:  username,
		Role:      policy.RoleNone,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, username, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, string(hash), user.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, services.Wrap(services.ErrConflict, "identity", "signup", "email or username already taken", err)
		}
		return nil, services.Wrap(services.ErrUnavailable, "identity", "signup", "create account", err)
	}
	return user, nil
}

// SignIn verifies credentials and issues a signed access token. Unapproved
// accounts can sign in; their RoleNone gates queue access downstream.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE email = ?`, email)

	var (
		user      User
		hash      string
		createdAt string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Username, &hash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, services.Wrap(services.ErrAuth, "identity", "signin", "invalid credentials", nil)
		}
		return "", nil, services.Wrap(services.ErrUnavailable, "identity", "signin", "load account", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", nil, services.Wrap(services.ErrAuth, "identity", "signin", "invalid credentials", nil)
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		user.CreatedAt = ts
	}

	role, err := s.roleFor(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	user.Role = role

	token, err := s.issueToken(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// Lookup resolves the account behind verified claims, including its current
// role. A missing role row means the account awaits approval.
func (s *Service) Lookup(ctx context.Context, userID string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, created_at FROM users WHERE id = ?`, userID)

	var (
		user      User
		createdAt string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Username, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.Wrap(services.ErrNotFound, "identity", "lookup", "account not found", nil)
		}
		return nil, services.Wrap(services.ErrUnavailable, "identity", "lookup", "load account", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		user.CreatedAt = ts
	}

	role, err := s.roleFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	return &user, nil
}

// PendingUsers lists accounts without a role assignment, oldest first.
func (s *Service) PendingUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.username, u.created_at
		 FROM users u LEFT JOIN user_roles r ON r.user_id = u.id
		 WHERE r.user_id IS NULL
		 ORDER BY u.created_at ASC`)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "identity", "pending", "list pending accounts", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var (
			user      User
			createdAt string
		)
		if err := rows.Scan(&user.ID, &user.Email, &user.Username, &createdAt); err != nil {
			return nil, services.Wrap(services.ErrUnavailable, "identity", "pending", "scan account", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			user.CreatedAt = ts
		}
		user.Role = policy.RoleNone
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "identity", "pending", "iterate accounts", err)
	}
	return users, nil
}

// Approve grants role to the named account, replacing any prior assignment.
func (s *Service) Approve(ctx context.Context, userID string, role policy.Role) error {
	if role != policy.RoleAdmin && role != policy.RoleUser {
		return services.Wrap(services.ErrValidation, "identity", "approve", "role must be admin or user", nil)
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return services.Wrap(services.ErrNotFound, "identity", "approve", "account not found", nil)
	}
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "identity", "approve", "load account", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role, granted_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET role = excluded.role, granted_at = excluded.granted_at`,
		userID, string(role), time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "identity", "approve", "grant role", err)
	}
	return nil
}

func (s *Service) roleFor(ctx context.Context, userID string) (policy.Role, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM user_roles WHERE user_id = ?`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return policy.RoleNone, nil
	}
	if err != nil {
		return policy.RoleNone, services.Wrap(services.ErrUnavailable, "identity", "role", "load role", err)
	}
	return policy.ParseRole(role), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
