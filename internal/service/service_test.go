package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/testutil"
)

var validBuyer = models.BuyerSnapshot{
	Name:    "Abebe Kebede",
	Phone:   "0911223344",
	Address: "Bole road, house 12",
	Email:   "abebe@example.com",
}

type fixture struct {
	repo    *repo.GormRepo
	events  *events.Recorder
	catalog *CatalogService
	cart    *CartService
	orders  *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	r := repo.New(testutil.NewDB(t), 5*time.Second)
	rec := &events.Recorder{}
	return &fixture{
		repo:    r,
		events:  rec,
		catalog: &CatalogService{Repo: r, Events: rec, DefaultPlatforms: []string{"PC", "Nintendo Switch"}},
		cart:    &CartService{Repo: r},
		orders:  &OrderService{Repo: r, Events: rec},
	}
}

type fakeIndex struct {
	indexed []uint
	deleted []uint
	err     error
	results []models.Product
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return f.err
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.results)), f.results, nil
}

var errIndexDown = errors.New("index down")
