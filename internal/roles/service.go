// Package roles is the role store: named roles, their capability grants and the
// transactional mutation protocol around them.
package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/roleguard/internal/activity"
	"github.com/odyssey-erp/roleguard/internal/capability"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id string) (Role, error)
	RoleCapabilities(ctx context.Context, ids []string) (map[string]map[string]bool, error)
	CapabilityKeys(ctx context.Context) ([]string, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// TxRepository is the transactional view used by every mutation. LockRole takes a
// row lock that is held until the transaction ends.
type TxRepository interface {
	LockRole(ctx context.Context, id string) (Role, error)
	InsertRole(ctx context.Context, role Role) (Role, error)
	InsertRoleIfMissing(ctx context.Context, role Role) (bool, error)
	DeleteRole(ctx context.Context, id string) error
	SetCapabilities(ctx context.Context, id string, caps map[string]bool) error
	GrantCapability(ctx context.Context, id, capability string) error
	RevokeCapability(ctx context.Context, id, capability string) error
	UpdateDisplayName(ctx context.Context, id, name string) error
	BumpVersion(ctx context.Context, id string) (int64, error)
	ListRoleIDs(ctx context.Context) ([]string, error)
	CapabilityKeys(ctx context.Context) ([]string, error)
	MembersOf(ctx context.Context, roleID string) ([]int64, error)
	ReassignMember(ctx context.Context, userID int64, from, to string) error
}

// Publisher receives domain events after commit.
type Publisher interface {
	Publish(ctx context.Context, actor shared.Actor, ev activity.Event)
}

// ChangeHook is called synchronously after a role mutation committed, with the
// changed roles and every user whose resolution may have changed.
type ChangeHook interface {
	RolesChanged(ctx context.Context, roleIDs []string, members []int64) error
}

// Config tunes role creation.
type Config struct {
	// NewRoleGrantsRead seeds new roles with read. The default is an empty set.
	NewRoleGrantsRead bool
}

// Service handles role business logic.
type Service struct {
	repo      RepositoryPort
	publisher Publisher
	logger    *slog.Logger
	cfg       Config
	hooks     []ChangeHook
	validate  *validator.Validate
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, publisher Publisher, logger *slog.Logger, cfg Config, hooks ...ChangeHook) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		hooks:     hooks,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// AddHook registers another change hook.
func (s *Service) AddHook(hook ChangeHook) {
	s.hooks = append(s.hooks, hook)
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole returns one role.
func (s *Service) GetRole(ctx context.Context, id string) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// RoleCapabilities returns the stored capability maps of the given roles.
func (s *Service) RoleCapabilities(ctx context.Context, ids []string) (map[string]map[string]bool, error) {
	return s.repo.RoleCapabilities(ctx, ids)
}

// AllCapabilities returns the catalog: baseline ids plus every key present on any role.
func (s *Service) AllCapabilities(ctx context.Context) ([]string, error) {
	keys, err := s.repo.CapabilityKeys(ctx)
	if err != nil {
		return nil, err
	}
	return capability.ListAll(keySet(keys)), nil
}

// CreateRole adds a role under the normalized id.
func (s *Service) CreateRole(ctx context.Context, actor shared.Actor, idCandidate, displayName string) (Role, error) {
	id := NormalizeID(idCandidate)
	displayName = strings.TrimSpace(displayName)
	if id == "" {
		return Role{}, shared.NewValidationError("id", "required")
	}
	if displayName == "" {
		return Role{}, shared.NewValidationError("display_name", "required")
	}
	caps := map[string]bool{}
	if s.cfg.NewRoleGrantsRead {
		caps["read"] = true
	}
	var created Role
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		created, err = tx.InsertRole(ctx, Role{ID: id, DisplayName: displayName, Capabilities: caps})
		return err
	})
	if err != nil {
		return Role{}, err
	}
	s.changed(ctx, []string{id}, nil)
	s.publish(ctx, actor, activity.RoleCreated{RoleID: id, DisplayName: displayName, Capabilities: created.Granted()})
	return created, nil
}

// DeleteRole removes a role after moving every member to the fallback role.
func (s *Service) DeleteRole(ctx context.Context, actor shared.Actor, id string) error {
	if err := checkDeletable(id); err != nil {
		return err
	}
	var (
		removed Role
		members []int64
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		removed, members, err = deleteInTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}
	s.changed(ctx, []string{id, FallbackRole}, members)
	s.publish(ctx, actor, deletedEvent(removed, members))
	return nil
}

func checkDeletable(id string) error {
	switch id {
	case AdministratorRole:
		return fmt.Errorf("roles: %s cannot be deleted: %w", id, shared.ErrProtectedRole)
	case FallbackRole:
		return fmt.Errorf("roles: %s receives members of deleted roles and cannot be deleted: %w", id, shared.ErrProtectedRole)
	}
	return nil
}

// deleteInTx reassigns every member of id to the fallback role and deletes it.
// Each member is moved with one delete and one insert inside the caller's
// transaction, so no user is ever left without a role.
func deleteInTx(ctx context.Context, tx TxRepository, id string) (Role, []int64, error) {
	role, err := tx.LockRole(ctx, id)
	if err != nil {
		return Role{}, nil, err
	}
	members, err := tx.MembersOf(ctx, id)
	if err != nil {
		return Role{}, nil, err
	}
	if len(members) > 0 {
		if err := ensureFallback(ctx, tx); err != nil {
			return Role{}, nil, err
		}
	}
	for _, userID := range members {
		if err := tx.ReassignMember(ctx, userID, id, FallbackRole); err != nil {
			return Role{}, nil, err
		}
	}
	if err := tx.DeleteRole(ctx, id); err != nil {
		return Role{}, nil, err
	}
	return role, members, nil
}

func ensureFallback(ctx context.Context, tx TxRepository) error {
	if _, err := tx.LockRole(ctx, FallbackRole); err == nil {
		return nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	_, err := tx.InsertRoleIfMissing(ctx, subscriberDefinition.role())
	return err
}

func deletedEvent(role Role, members []int64) activity.RoleDeleted {
	return activity.RoleDeleted{
		RoleID:       role.ID,
		DisplayName:  role.DisplayName,
		Capabilities: role.Granted(),
		Reassigned:   len(members),
	}
}

// ReplaceCapabilities makes set the role's exact granted set. Ids outside the
// catalog are ignored.
func (s *Service) ReplaceCapabilities(ctx context.Context, actor shared.Actor, id string, set []string) error {
	var (
		before  Role
		after   []string
		members []int64
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		if before, err = tx.LockRole(ctx, id); err != nil {
			return err
		}
		keys, err := tx.CapabilityKeys(ctx)
		if err != nil {
			return err
		}
		after = filterKnown(set, capability.ListAll(keySet(keys)))
		next := make(map[string]bool, len(after))
		for _, c := range after {
			next[c] = true
		}
		if err := tx.SetCapabilities(ctx, id, next); err != nil {
			return err
		}
		if _, err := tx.BumpVersion(ctx, id); err != nil {
			return err
		}
		members, err = tx.MembersOf(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	s.changed(ctx, []string{id}, members)
	s.publish(ctx, actor, activity.RoleUpdated{RoleID: id, DisplayName: before.DisplayName, Old: before.Granted(), New: after})
	return nil
}

// ToggleCapability grants or revokes a single capability.
func (s *Service) ToggleCapability(ctx context.Context, actor shared.Actor, id, capabilityID string, granted bool) error {
	capabilityID = strings.TrimSpace(capabilityID)
	if capabilityID == "" {
		return shared.NewValidationError("capability", "required")
	}
	var (
		role    Role
		members []int64
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		if role, err = tx.LockRole(ctx, id); err != nil {
			return err
		}
		if granted {
			err = tx.GrantCapability(ctx, id, capabilityID)
		} else {
			err = tx.RevokeCapability(ctx, id, capabilityID)
		}
		if err != nil {
			return err
		}
		if _, err := tx.BumpVersion(ctx, id); err != nil {
			return err
		}
		members, err = tx.MembersOf(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	s.changed(ctx, []string{id}, members)
	s.publish(ctx, actor, activity.CapabilityToggled{RoleID: id, DisplayName: role.DisplayName, Capability: capabilityID, Granted: granted})
	return nil
}

// RenameRole changes the display name. The id never changes.
func (s *Service) RenameRole(ctx context.Context, actor shared.Actor, id, displayName string) error {
	if id == AdministratorRole {
		return fmt.Errorf("roles: %s cannot be renamed: %w", id, shared.ErrProtectedRole)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return shared.NewValidationError("display_name", "required")
	}
	var before Role
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		if before, err = tx.LockRole(ctx, id); err != nil {
			return err
		}
		if before.DisplayName == displayName {
			return nil
		}
		if err := tx.UpdateDisplayName(ctx, id, displayName); err != nil {
			return err
		}
		_, err = tx.BumpVersion(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	if before.DisplayName == displayName {
		return nil
	}
	s.changed(ctx, []string{id}, nil)
	s.publish(ctx, actor, activity.RoleRenamed{RoleID: id, OldName: before.DisplayName, NewName: displayName})
	return nil
}

// CloneRole copies the full capability map of sourceID into a new role.
func (s *Service) CloneRole(ctx context.Context, actor shared.Actor, sourceID, newID, displayName string) (Role, error) {
	id := NormalizeID(newID)
	displayName = strings.TrimSpace(displayName)
	if id == "" {
		return Role{}, shared.NewValidationError("id", "required")
	}
	if displayName == "" {
		return Role{}, shared.NewValidationError("display_name", "required")
	}
	var created Role
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		source, err := tx.LockRole(ctx, sourceID)
		if err != nil {
			return err
		}
		created, err = tx.InsertRole(ctx, Role{ID: id, DisplayName: displayName, Capabilities: copyCapabilities(source.Capabilities)})
		return err
	})
	if err != nil {
		return Role{}, err
	}
	s.changed(ctx, []string{id}, nil)
	s.publish(ctx, actor, activity.RoleCloned{SourceID: sourceID, RoleID: id})
	return created, nil
}

// RestoreDefaults deletes every role except the administrator and the fallback
// role through the regular deletion path, resets the fallback role in place, and
// recreates the canonical roles. It runs as one transaction.
func (s *Service) RestoreDefaults(ctx context.Context, actor shared.Actor) error {
	var (
		removed  []activity.RoleDeleted
		affected []int64
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		removed, affected = nil, nil
		if err := ensureFallback(ctx, tx); err != nil {
			return err
		}
		ids, err := tx.ListRoleIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if id == AdministratorRole || id == FallbackRole {
				continue
			}
			role, members, err := deleteInTx(ctx, tx, id)
			if err != nil {
				return err
			}
			removed = append(removed, deletedEvent(role, members))
		}
		for _, def := range CanonicalRoles() {
			if def.ID == FallbackRole {
				if _, err := tx.LockRole(ctx, FallbackRole); err != nil {
					return err
				}
				if err := tx.SetCapabilities(ctx, FallbackRole, def.role().Capabilities); err != nil {
					return err
				}
				if _, err := tx.BumpVersion(ctx, FallbackRole); err != nil {
					return err
				}
				continue
			}
			if _, err := tx.InsertRole(ctx, def.role()); err != nil {
				return err
			}
		}
		affected, err = tx.MembersOf(ctx, FallbackRole)
		return err
	})
	if err != nil {
		return err
	}
	changedIDs := []string{FallbackRole}
	removedIDs := make([]string, 0, len(removed))
	for _, ev := range removed {
		removedIDs = append(removedIDs, ev.RoleID)
	}
	changedIDs = append(changedIDs, removedIDs...)
	s.changed(ctx, changedIDs, affected)
	for _, ev := range removed {
		s.publish(ctx, actor, ev)
	}
	s.publish(ctx, actor, activity.RolesRestored{Removed: removedIDs})
	return nil
}

// EnsureDefaults seeds the install-time roles that do not exist yet and returns
// the ids it created. Existing roles are left untouched.
func (s *Service) EnsureDefaults(ctx context.Context) ([]string, error) {
	var created []string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created = nil
		for _, def := range InstallRoles() {
			ok, err := tx.InsertRoleIfMissing(ctx, def.role())
			if err != nil {
				return err
			}
			if ok {
				created = append(created, def.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		s.logger.Info("roles: seeded default roles", slog.Any("roles", created))
		s.changed(ctx, created, nil)
	}
	return created, nil
}

func (s *Service) changed(ctx context.Context, roleIDs []string, members []int64) {
	for _, hook := range s.hooks {
		if err := hook.RolesChanged(ctx, roleIDs, members); err != nil {
			s.logger.Warn("roles: change hook failed",
				slog.Any("roles", roleIDs),
				slog.Int("members", len(members)),
				slog.Any("error", err))
		}
	}
}

func (s *Service) publish(ctx context.Context, actor shared.Actor, ev activity.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, actor, ev)
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// filterKnown returns the sorted, deduplicated members of set present in the sorted catalog.
func filterKnown(set []string, catalog []string) []string {
	seen := make(map[string]struct{}, len(set))
	out := make([]string, 0, len(set))
	for _, c := range set {
		c = strings.TrimSpace(c)
		if _, dup := seen[c]; dup || !capability.Contains(catalog, c) {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
