package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/content"
)

type contentRepository struct {
	db *DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) *contentRepository {
	return &contentRepository{db: db}
}

func (repo *contentRepository) CreateContent(_ context.Context, item content.ContentItem, _ ...core.DBExecutor) (content.ContentItem, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var max int
	for _, c := range repo.db.contents {
		if c.SubjectCourseID == item.SubjectCourseID && c.Bimester == item.Bimester && c.Order > max {
			max = c.Order
		}
	}
	item.ID = uuid.New().String()
	item.Order = max + 1
	repo.db.contents[item.ID] = &item
	return item, nil
}

func (repo *contentRepository) GetContent(_ context.Context, id string, _ ...core.DBExecutor) (content.ContentItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.contents[id]; ok {
		return *c, nil
	}
	return content.ContentItem{}, core.NewNotFoundError("content", id)
}

func (repo *contentRepository) QueryContents(_ context.Context, filter content.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]content.ContentItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := make([]content.ContentItem, 0)
	for _, c := range repo.db.contents {
		if filter.SubjectCourseID != "" && c.SubjectCourseID != filter.SubjectCourseID {
			continue
		}
		if filter.Bimester != 0 && c.Bimester != filter.Bimester {
			continue
		}
		if !filter.IncludeInactive && !c.Active {
			continue
		}
		items = append(items, *c)
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "bimester", Ascending: true}, {Field: "order", Ascending: true}}
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range ordering {
			cmp := compareContents(items[i], items[j], ord.Field)
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return items, nil
}

func (repo *contentRepository) DeactivateContent(_ context.Context, id string, updatedAt time.Time, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.contents[id]
	if !ok {
		return core.NewNotFoundError("content", id)
	}
	c.Active = false
	c.UpdatedAt = updatedAt
	return nil
}

func compareContents(a, b content.ContentItem, field string) int {
	switch field {
	case "bimester":
		return a.Bimester - b.Bimester
	case "order":
		return a.Order - b.Order
	case "class_date":
		return compareTimes(a.ClassDate, b.ClassDate)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "title":
		return strings.Compare(a.Title, b.Title)
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
