package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/roleguard/internal/activity"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context, filters ListFilters, limit, offset int) ([]User, error)
	CountUsers(ctx context.Context, filters ListFilters) (int, error)
	Roles(ctx context.Context, userID int64) ([]string, error)
	UsersWithRole(ctx context.Context, roleID string) ([]int64, error)
	AddRole(ctx context.Context, userID int64, roleID string) (bool, error)
	RemoveRole(ctx context.Context, userID int64, roleID string) (bool, error)
	SetRole(ctx context.Context, userID int64, roleID string) ([]string, error)
	CountByRole(ctx context.Context) (map[string]int, error)
	DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Publisher receives audit events.
type Publisher interface {
	Publish(ctx context.Context, actor shared.Actor, ev activity.Event)
}

// MembershipHook is called synchronously after a membership change committed.
type MembershipHook interface {
	MembershipChanged(ctx context.Context, userIDs []int64) error
}

// ListResult is one page of users.
type ListResult struct {
	Users      []User            `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service handles user business logic.
type Service struct {
	repo      RepositoryPort
	publisher Publisher
	logger    *slog.Logger
	hooks     []MembershipHook
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, publisher Publisher, logger *slog.Logger, hooks ...MembershipHook) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, publisher: publisher, logger: logger, hooks: hooks}
}

// AddHook registers another membership hook.
func (s *Service) AddHook(hook MembershipHook) {
	s.hooks = append(s.hooks, hook)
}

// GetUser returns a user with its roles.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers returns a page of users.
func (s *Service) ListUsers(ctx context.Context, filters ListFilters) (ListResult, error) {
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	total, err := s.repo.CountUsers(ctx, filters)
	if err != nil {
		return ListResult{}, err
	}
	pagination := shared.NewPagination(filters.Page, perPage, total)
	users, err := s.repo.ListUsers(ctx, filters, pagination.PerPage, pagination.Offset())
	if err != nil {
		return ListResult{}, err
	}
	if users == nil {
		users = []User{}
	}
	return ListResult{Users: users, Pagination: pagination}, nil
}

// Roles returns the role ids held by userID.
func (s *Service) Roles(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.Roles(ctx, userID)
}

// UsersWithRole returns the members of roleID.
func (s *Service) UsersWithRole(ctx context.Context, roleID string) ([]int64, error) {
	return s.repo.UsersWithRole(ctx, roleID)
}

// CountByRole returns member counts keyed by role id.
func (s *Service) CountByRole(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByRole(ctx)
}

// DisplayNames resolves display names for ids; unknown ids are omitted.
func (s *Service) DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return s.repo.DisplayNames(ctx, ids)
}

// DisplayName resolves a single user's display name.
func (s *Service) DisplayName(ctx context.Context, id int64) (string, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Name(), nil
}

// Actor builds the audit identity of an existing user.
func (s *Service) Actor(ctx context.Context, id int64) (shared.Actor, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return shared.Actor{}, err
	}
	return shared.Actor{ID: user.ID, DisplayName: user.Name(), Authenticated: true}, nil
}

// AddRole grants roleID to the user in addition to its current roles.
func (s *Service) AddRole(ctx context.Context, actor shared.Actor, userID int64, roleID string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return shared.NewValidationError("role", "required")
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	added, err := s.repo.AddRole(ctx, userID, roleID)
	if err != nil || !added {
		return err
	}
	s.notify(ctx, userID)
	s.publish(ctx, actor, activity.UserRoleAdded{
		Subject: activity.Subject{UserID: user.ID, DisplayName: user.Name()},
		Role:    roleID,
	})
	return nil
}

// RemoveRole revokes roleID from the user.
func (s *Service) RemoveRole(ctx context.Context, actor shared.Actor, userID int64, roleID string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return shared.NewValidationError("role", "required")
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	removed, err := s.repo.RemoveRole(ctx, userID, roleID)
	if err != nil || !removed {
		return err
	}
	s.notify(ctx, userID)
	s.publish(ctx, actor, activity.UserRoleRemoved{
		Subject: activity.Subject{UserID: user.ID, DisplayName: user.Name()},
		Role:    roleID,
	})
	return nil
}

// SetRole makes roleID the user's only role and records the change.
func (s *Service) SetRole(ctx context.Context, actor shared.Actor, userID int64, roleID string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return shared.NewValidationError("role", "required")
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	previous, err := s.repo.SetRole(ctx, userID, roleID)
	if err != nil {
		return err
	}
	s.notify(ctx, userID)
	s.publish(ctx, actor, activity.UserRoleChanged{
		Subject:  activity.Subject{UserID: user.ID, DisplayName: user.Name()},
		Role:     roleID,
		OldRoles: previous,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, actor shared.Actor, ev activity.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, actor, ev)
	}
}

func (s *Service) notify(ctx context.Context, userIDs ...int64) {
	for _, hook := range s.hooks {
		if err := hook.MembershipChanged(ctx, userIDs); err != nil {
			s.logger.Warn("users: membership hook failed", slog.Any("user_ids", userIDs), slog.Any("error", err))
		}
	}
}
