package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
)

type userService struct {
	settings
	uow     db.UnitOfWork
	users   repository.UserRepo
	content repository.ContentRepo
}

func NewUserService(uow db.UnitOfWork, users repository.UserRepo, content repository.ContentRepo, opts ...Option) UserService {
	return &userService{settings: newSettings(opts), uow: uow, users: users, content: content}
}

// Create fills in id, role and created_at when empty. New users always start
// at zero points.
func (s *userService) Create(ctx context.Context, u *domain.User) (err error) {
	done := observe(ctx, s.observer, "create_user", map[string]any{"user_id": u.ID, "role": string(u.Role)})
	defer func() { done(err) }()

	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return fmt.Errorf("user name is required: %w", domain.ErrValidation)
	}
	if u.Role == "" {
		u.Role = domain.RoleStudent
	}
	if !domain.ValidRoles[string(u.Role)] {
		return fmt.Errorf("role %q: %w", u.Role, domain.ErrValidation)
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.TotalPoints = 0
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.clock()
	}

	err = s.runInTx(ctx, s.uow, "create_user", func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLUserRepo(tx).Create(ctx, u)
	})
	if err != nil {
		return err
	}
	if u.IsStudent() {
		s.invalidateAllStandings(ctx)
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// invalidateAllStandings drops every scope; a new student appears in the
// global ranking and, with zero points, in every module ranking.
func (s *userService) invalidateAllStandings(ctx context.Context) {
	modules, err := s.content.ListModules(ctx)
	if err != nil {
		s.invalidateStandings(ctx)
		return
	}
	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	s.invalidateStandings(ctx, ids...)
}
