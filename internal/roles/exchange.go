package roles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/roleguard/internal/activity"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// ExportedRole is the portable form of a role.
type ExportedRole struct {
	Name         string          `json:"name" validate:"required"`
	Capabilities map[string]bool `json:"capabilities" validate:"required"`
}

// Export maps role ids to their portable form.
type Export map[string]ExportedRole

// ImportResult lists what an import changed.
type ImportResult struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
}

// ExportFilename names an export file for the given day.
func ExportFilename(now time.Time) string {
	return "roles-export-" + now.Format("2006-01-02") + ".json"
}

// Export returns every role with its full stored capability map.
func (s *Service) Export(ctx context.Context) (Export, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	out := make(Export, len(roles))
	for _, role := range roles {
		out[role.ID] = ExportedRole{Name: role.DisplayName, Capabilities: copyCapabilities(role.Capabilities)}
	}
	return out, nil
}

// ParseImport decodes and validates an import document without touching the store.
func (s *Service) ParseImport(raw []byte) (Export, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, shared.NewValidationError("document", "must be a JSON object keyed by role id")
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, shared.NewValidationError("document", err.Error())
	}
	if len(entries) == 0 {
		return nil, shared.NewValidationError("document", "no roles")
	}
	parsed := make(Export, len(entries))
	for key, body := range entries {
		id := NormalizeID(key)
		if id == "" || id != key {
			return nil, shared.NewValidationError(key, "invalid role id")
		}
		body = bytes.TrimSpace(body)
		if len(body) == 0 || body[0] != '{' {
			return nil, shared.NewValidationError(id, "must be an object with name and capabilities")
		}
		var role ExportedRole
		if err := json.Unmarshal(body, &role); err != nil {
			return nil, shared.NewValidationError(id+".capabilities", "must map capability ids to booleans")
		}
		role.Name = strings.TrimSpace(role.Name)
		if err := s.validate.Struct(role); err != nil {
			return nil, importValidationError(id, err)
		}
		for name := range role.Capabilities {
			if strings.TrimSpace(name) == "" {
				return nil, shared.NewValidationError(id+".capabilities", "empty capability id")
			}
		}
		parsed[id] = role
	}
	return parsed, nil
}

func importValidationError(id string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return shared.NewValidationError(fmt.Sprintf("%s.%s", id, strings.ToLower(fe.Field())), fe.Tag())
	}
	return shared.NewValidationError(id, err.Error())
}

// Import creates missing roles and merges grants into existing ones: true grants,
// false revokes. Roles are never deleted. The whole document is validated before
// the first write and applied in one transaction.
func (s *Service) Import(ctx context.Context, actor shared.Actor, raw []byte) (ImportResult, error) {
	doc, err := s.ParseImport(raw)
	if err != nil {
		return ImportResult{}, err
	}
	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		result  ImportResult
		members []int64
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		result, members = ImportResult{Created: []string{}, Updated: []string{}}, nil
		for _, id := range ids {
			entry := doc[id]
			current, err := tx.LockRole(ctx, id)
			if errors.Is(err, shared.ErrNotFound) {
				if _, err := tx.InsertRole(ctx, Role{ID: id, DisplayName: entry.Name, Capabilities: copyCapabilities(entry.Capabilities)}); err != nil {
					return err
				}
				result.Created = append(result.Created, id)
				continue
			}
			if err != nil {
				return err
			}
			changed, err := mergeCapabilities(ctx, tx, current, entry.Capabilities)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			if _, err := tx.BumpVersion(ctx, id); err != nil {
				return err
			}
			roleMembers, err := tx.MembersOf(ctx, id)
			if err != nil {
				return err
			}
			members = append(members, roleMembers...)
			result.Updated = append(result.Updated, id)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	touched := append(append([]string{}, result.Created...), result.Updated...)
	if len(touched) > 0 {
		s.changed(ctx, touched, members)
	}
	s.publish(ctx, actor, activity.RolesImported{RoleIDs: ids})
	return result, nil
}

// mergeCapabilities applies incoming flags to current and reports whether anything changed.
func mergeCapabilities(ctx context.Context, tx TxRepository, current Role, incoming map[string]bool) (bool, error) {
	names := make([]string, 0, len(incoming))
	for name := range incoming {
		names = append(names, name)
	}
	sort.Strings(names)
	changed := false
	for _, name := range names {
		has := current.Capabilities[name]
		switch {
		case incoming[name] && !has:
			if err := tx.GrantCapability(ctx, current.ID, name); err != nil {
				return false, err
			}
			changed = true
		case !incoming[name] && has:
			if err := tx.RevokeCapability(ctx, current.ID, name); err != nil {
				return false, err
			}
			changed = true
		}
	}
	return changed, nil
}
