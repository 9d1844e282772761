package services

import (
	"context"
	"fmt"

	"github.com/katchinsky/reflux-tg-bot/models"

	"gorm.io/gorm"
)

// CategoryService owns the static category tree shared by all users.
type CategoryService struct{ db *gorm.DB }

func NewCategoryService(db *gorm.DB) *CategoryService { return &CategoryService{db: db} }

// Index loads the whole tree and builds the roll-up arena. The tree is
// small (a fixed taxonomy), so a per-query load keeps queries stateless.
func (s *CategoryService) Index(ctx context.Context) (*CategoryIndex, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("%w: categories: %v", ErrUpstreamLoad, err)
	}
	return BuildCategoryIndex(cats)
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("%w: categories: %v", ErrUpstreamLoad, err)
	}
	return cats, nil
}

// Create inserts a node under an existing parent. A fresh node cannot
// be anyone's ancestor, so checking the parent chain is enough to keep
// the tree acyclic and within the depth cap.
func (s *CategoryService) Create(ctx context.Context, name string, parentID *uint) (*models.Category, error) {
	if parentID != nil {
		ix, err := s.Index(ctx)
		if err != nil {
			return nil, err
		}
		if !ix.Has(*parentID) {
			return nil, fmt.Errorf("%w: parent category %d not found", ErrInvalidConfiguration, *parentID)
		}
		if ix.Depth(*parentID)+1 > MaxCategoryDepth {
			return nil, fmt.Errorf("%w: category tree deeper than %d levels", ErrInvalidConfiguration, MaxCategoryDepth)
		}
	}
	cat := &models.Category{Name: name, ParentID: parentID}
	if err := s.db.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, err
	}
	return cat, nil
}
