package service

import (
	"context"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) EnsureUser(ctx context.Context, u models.User) error {
	return s.Repo.EnsureUser(ctx, u)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.Repo.GetUser(ctx, id)
}
