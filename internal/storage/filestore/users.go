package filestore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// UserStore implements interfaces.UserStore.
type UserStore struct {
	dir *jsonDir
}

func (s *UserStore) Get(_ context.Context, userID string) (*models.User, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	var u models.User
	if err := s.dir.read(userID, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	users, err := readAll[models.User](s.dir)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (s *UserStore) Save(_ context.Context, user *models.User) error {
	if user.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.write(user.UserID, user)
}

func (s *UserStore) Delete(_ context.Context, userID string) error {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.remove(userID)
}

// List returns users ordered by creation time, oldest first.
func (s *UserStore) List(_ context.Context) ([]*models.User, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	users, err := readAll[models.User](s.dir)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}
