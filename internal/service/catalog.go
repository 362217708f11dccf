package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

const SearchLimit = 50

// ProductIndex mirrors catalog writes into a full-text index.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo             *repo.GormRepo
	Events           events.Publisher
	Index            ProductIndex
	DefaultPlatforms []string
}

type StockChange struct {
	ProductID uint `json:"product_id"`
	Delta     int  `json:"delta"`
	Stock     int  `json:"stock"`
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) ListByPlatform(ctx context.Context, platform string) ([]models.Product, error) {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		return nil, fmt.Errorf("%w: platform is required", domain.ErrValidation)
	}
	return s.Repo.ListByPlatform(ctx, platform)
}

func (s *CatalogService) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	kw, err := ValidateKeyword(keyword)
	if err != nil {
		return nil, err
	}
	return s.Repo.SearchProducts(ctx, kw, SearchLimit)
}

// FullTextSearch goes to the index when one is configured and falls back to
// the catalog search otherwise or when the index fails.
func (s *CatalogService) FullTextSearch(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	kw, err := ValidateKeyword(query)
	if err != nil {
		return 0, nil, err
	}
	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, kw, from, size)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("index_search_failed", "query", kw, "error", err)
	}
	return s.Repo.ListProducts(ctx, repo.ProductFilter{Query: kw, Offset: from, Limit: size})
}

// Platforms lists category names, or the configured defaults when no
// category exists yet.
func (s *CatalogService) Platforms(ctx context.Context) ([]string, error) {
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return append([]string(nil), s.DefaultPlatforms...), nil
	}
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.Name)
	}
	return out, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, f)
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", domain.ErrValidation)
	}
	if len(p.Platforms) == 0 {
		return fmt.Errorf("%w: at least one platform is required", domain.ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.index(ctx, *p)
	events.Emit(ctx, s.Events, events.TopicProducts, productKey(p.ID), events.New(events.ProductCreated, p))
	return nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, patch repo.ProductPatch) (*models.Product, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
		}
		patch.Name = &name
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	if patch.Platforms != nil && len(*patch.Platforms) == 0 {
		return nil, fmt.Errorf("%w: at least one platform is required", domain.ErrValidation)
	}

	p, err := s.Repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.index(ctx, *p)
	events.Emit(ctx, s.Events, events.TopicProducts, productKey(p.ID), events.New(events.ProductUpdated, p))
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("index_delete_failed", "product_id", id, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicProducts, productKey(id), events.New(events.ProductDeleted, map[string]uint{"product_id": id}))
	return nil
}

// AdjustStock applies a signed delta through the conditioned stock write.
func (s *CatalogService) AdjustStock(ctx context.Context, id uint, delta int) (*models.Product, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", domain.ErrValidation)
	}
	p, err := s.Repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.stockChanged(ctx, *p, delta)
	return p, nil
}

func (s *CatalogService) SetStock(ctx context.Context, id uint, stock int) (*models.Product, error) {
	p, before, err := s.Repo.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}
	s.stockChanged(ctx, *p, p.Stock-before)
	return p, nil
}

func (s *CatalogService) stockChanged(ctx context.Context, p models.Product, delta int) {
	s.index(ctx, p)
	events.Emit(ctx, s.Events, events.TopicProducts, productKey(p.ID),
		events.New(events.StockAdjusted, StockChange{ProductID: p.ID, Delta: delta, Stock: p.Stock}))
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_product_failed", "product_id", p.ID, "error", err)
	}
}

// Reindex pushes the whole catalog into the index.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	items, err := s.Repo.AllProducts(ctx)
	if err != nil {
		return 0, err
	}
	for i, p := range items {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

func productKey(id uint) string {
	return fmt.Sprintf("product-%d", id)
}
