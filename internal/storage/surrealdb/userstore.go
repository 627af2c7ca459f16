package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// UserStore implements interfaces.UserStore.
type UserStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewUserStore(db *surrealdb.DB, logger *common.Logger) *UserStore {
	return &UserStore{db: db, logger: logger}
}

func (s *UserStore) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, surrealmodels.NewRecordID(tableUser, userID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if user == nil || user.UserID == "" {
		return nil, interfaces.ErrNotFound
	}
	return user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql := "SELECT * FROM user WHERE string::lowercase(email) = $email LIMIT 1"
	rows, err := queryAll[models.User](ctx, s.db, sql, map[string]any{
		"email": strings.ToLower(strings.TrimSpace(email)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(rows) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return rows[0], nil
}

func (s *UserStore) Save(ctx context.Context, user *models.User) error {
	if user.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	return upsert(ctx, s.db, tableUser, user.UserID, user)
}

func (s *UserStore) Delete(ctx context.Context, userID string) error {
	return deleteRecord[models.User](ctx, s.db, tableUser, userID)
}

func (s *UserStore) List(ctx context.Context) ([]*models.User, error) {
	rows, err := queryAll[models.User](ctx, s.db, "SELECT * FROM user ORDER BY created_at ASC", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return rows, nil
}
