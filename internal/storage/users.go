package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/google/uuid"
)

// CreateUser stores a new user. A missing ID is generated.
func (s *SQLStorage) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Username = strings.TrimSpace(user.Username)

	goals := user.Goals
	if goals == nil {
		goals = []string{}
	}
	goalsJSON, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("failed to encode goals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO users (id, username, email, goals, budget, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), user.ID, user.Username, user.Email, string(goalsJSON), user.Budget, user.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %q", common.ErrDuplicateEntry, user.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// LookupUser retrieves a user by username.
func (s *SQLStorage) LookupUser(ctx context.Context, username string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	// No user can have a blank name.
	if err := validateString(username, "username"); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUserNotFound, err)
	}

	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, username, COALESCE(email, ''), COALESCE(goals, '[]'), COALESCE(budget, 0), created_at
		FROM users
		WHERE username = ?
	`), strings.TrimSpace(username))

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrUserNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user ordered by username.
func (s *SQLStorage) ListUsers(ctx context.Context) ([]model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, COALESCE(email, ''), COALESCE(goals, '[]'), COALESCE(budget, 0), created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan user: %w", scanErr)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var (
		user      model.User
		goalsJSON string
		createdAt sql.NullTime
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &goalsJSON, &user.Budget, &createdAt); err != nil {
		return nil, err
	}

	// Goals written by other tools may not be valid JSON; treat them as absent.
	if err := json.Unmarshal([]byte(goalsJSON), &user.Goals); err != nil || user.Goals == nil {
		user.Goals = []string{}
	}
	if createdAt.Valid {
		user.CreatedAt = createdAt.Time
	}
	return &user, nil
}
