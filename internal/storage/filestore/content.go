package filestore

import (
	"context"
	"fmt"
	"sort"

	"github.com/abriltello/portafolioAI/internal/models"
)

// ContentStore implements interfaces.ContentStore.
type ContentStore struct {
	dir *jsonDir
}

func (s *ContentStore) Get(_ context.Context, contentID string) (*models.ContentItem, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	var item models.ContentItem
	if err := s.dir.read(contentID, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ContentStore) Save(_ context.Context, item *models.ContentItem) error {
	if item.ContentID == "" {
		return fmt.Errorf("content id is required")
	}
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.write(item.ContentID, item)
}

func (s *ContentStore) Delete(_ context.Context, contentID string) error {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.remove(contentID)
}

func (s *ContentStore) List(_ context.Context, publishedOnly bool) ([]*models.ContentItem, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	all, err := readAll[models.ContentItem](s.dir)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, item := range all {
		if publishedOnly && !item.Published {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
