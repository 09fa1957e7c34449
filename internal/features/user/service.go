package user

import (
	"context"

	common_models "cxtrack/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	Get(ctx context.Context, id string) (*common_models.User, error)
	ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]common_models.User, error)
}

type UserServiceImpl struct {
	Repo UserRepository
}

func NewUserService(repo UserRepository) UserService {
	return &UserServiceImpl{Repo: repo}
}

func (s *UserServiceImpl) Get(ctx context.Context, id string) (*common_models.User, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *UserServiceImpl) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]common_models.User, error) {
	return s.Repo.ListByOrganization(ctx, orgID)
}
