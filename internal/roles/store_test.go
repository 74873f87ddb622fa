package roles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/odyssey-erp/roleguard/internal/activity"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// memStore is an in-memory RepositoryPort. WithTx holds the store mutex for the
// whole callback and restores a snapshot when the callback fails.
type memStore struct {
	mu      sync.Mutex
	roles   map[string]Role
	members map[int64][]string
	failOn  string
}

func newMemStore(roles ...Role) *memStore {
	s := &memStore{roles: map[string]Role{}, members: map[int64][]string{}}
	for _, r := range roles {
		r.Capabilities = copyCapabilities(r.Capabilities)
		s.roles[r.ID] = r
	}
	return s
}

func (s *memStore) assign(userID int64, roleIDs ...string) {
	s.members[userID] = append(s.members[userID], roleIDs...)
}

func (s *memStore) role(id string) (Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id]
	return r, ok
}

func (s *memStore) rolesOf(userID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.members[userID]...)
}

func (s *memStore) ListRoles(context.Context) ([]Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Role, 0, len(s.roles))
	for _, r := range s.roles {
		r.Capabilities = copyCapabilities(r.Capabilities)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetRole(_ context.Context, id string) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	r.Capabilities = copyCapabilities(r.Capabilities)
	return r, nil
}

func (s *memStore) RoleCapabilities(_ context.Context, ids []string) (map[string]map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]map[string]bool{}
	for _, id := range ids {
		if r, ok := s.roles[id]; ok {
			out[id] = copyCapabilities(r.Capabilities)
		}
	}
	return out, nil
}

func (s *memStore) CapabilityKeys(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memTx{s: s}).keys(), nil
}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rolesSnap := make(map[string]Role, len(s.roles))
	for id, r := range s.roles {
		r.Capabilities = copyCapabilities(r.Capabilities)
		rolesSnap[id] = r
	}
	membersSnap := make(map[int64][]string, len(s.members))
	for id, m := range s.members {
		membersSnap[id] = append([]string(nil), m...)
	}
	if err := fn(ctx, &memTx{s: s}); err != nil {
		s.roles, s.members = rolesSnap, membersSnap
		return err
	}
	return nil
}

type memTx struct{ s *memStore }

func (t *memTx) keys() []string {
	seen := map[string]struct{}{}
	for _, r := range t.s.roles {
		for k := range r.Capabilities {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (t *memTx) LockRole(_ context.Context, id string) (Role, error) {
	r, ok := t.s.roles[id]
	if !ok {
		return Role{}, fmt.Errorf("role %s: %w", id, shared.ErrNotFound)
	}
	r.Capabilities = copyCapabilities(r.Capabilities)
	return r, nil
}

func (t *memTx) InsertRole(_ context.Context, role Role) (Role, error) {
	if t.s.failOn == "insert:"+role.ID {
		return Role{}, shared.Persistence("insert role", fmt.Errorf("boom"))
	}
	if _, ok := t.s.roles[role.ID]; ok {
		return Role{}, fmt.Errorf("role %s: %w", role.ID, shared.ErrConflict)
	}
	role.Capabilities = copyCapabilities(role.Capabilities)
	role.Version = 1
	t.s.roles[role.ID] = role
	return role, nil
}

func (t *memTx) InsertRoleIfMissing(ctx context.Context, role Role) (bool, error) {
	if _, ok := t.s.roles[role.ID]; ok {
		return false, nil
	}
	_, err := t.InsertRole(ctx, role)
	return err == nil, err
}

func (t *memTx) DeleteRole(_ context.Context, id string) error {
	if _, ok := t.s.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(t.s.roles, id)
	return nil
}

func (t *memTx) SetCapabilities(_ context.Context, id string, caps map[string]bool) error {
	r := t.s.roles[id]
	r.Capabilities = copyCapabilities(caps)
	t.s.roles[id] = r
	return nil
}

func (t *memTx) GrantCapability(_ context.Context, id, capability string) error {
	r := t.s.roles[id]
	r.Capabilities = copyCapabilities(r.Capabilities)
	r.Capabilities[capability] = true
	t.s.roles[id] = r
	return nil
}

func (t *memTx) RevokeCapability(_ context.Context, id, capability string) error {
	r := t.s.roles[id]
	r.Capabilities = copyCapabilities(r.Capabilities)
	delete(r.Capabilities, capability)
	t.s.roles[id] = r
	return nil
}

func (t *memTx) UpdateDisplayName(_ context.Context, id, name string) error {
	r := t.s.roles[id]
	r.DisplayName = name
	t.s.roles[id] = r
	return nil
}

func (t *memTx) BumpVersion(_ context.Context, id string) (int64, error) {
	r := t.s.roles[id]
	r.Version++
	t.s.roles[id] = r
	return r.Version, nil
}

func (t *memTx) ListRoleIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(t.s.roles))
	for id := range t.s.roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (t *memTx) CapabilityKeys(context.Context) ([]string, error) {
	return t.keys(), nil
}

func (t *memTx) MembersOf(_ context.Context, roleID string) ([]int64, error) {
	var out []int64
	for userID, roles := range t.s.members {
		for _, r := range roles {
			if r == roleID {
				out = append(out, userID)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (t *memTx) ReassignMember(_ context.Context, userID int64, from, to string) error {
	if t.s.failOn == "reassign" {
		return shared.Persistence("reassign member", fmt.Errorf("boom"))
	}
	next := make([]string, 0, len(t.s.members[userID]))
	hasTarget := false
	for _, r := range t.s.members[userID] {
		if r == to {
			hasTarget = true
		}
	}
	for _, r := range t.s.members[userID] {
		switch {
		case r == from && !hasTarget:
			next = append(next, to)
			hasTarget = true
		case r == from:
		default:
			next = append(next, r)
		}
	}
	t.s.members[userID] = next
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []activity.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ shared.Actor, ev activity.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) kinds() []activity.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]activity.Kind, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind())
	}
	return out
}

type hookCall struct {
	roles   []string
	members []int64
}

type recordingHook struct {
	mu    sync.Mutex
	calls []hookCall
	err   error
}

func (h *recordingHook) RolesChanged(_ context.Context, roleIDs []string, members []int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hookCall{roles: roleIDs, members: members})
	return h.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var admin = shared.Actor{ID: 1, DisplayName: "admin", Authenticated: true}

func seededStore() *memStore {
	var defs []Role
	for _, d := range InstallRoles() {
		defs = append(defs, d.role())
	}
	return newMemStore(defs...)
}

func newTestService(store *memStore, cfg Config) (*Service, *recordingPublisher, *recordingHook) {
	pub := &recordingPublisher{}
	hook := &recordingHook{}
	return NewService(store, pub, discardLogger(), cfg, hook), pub, hook
}
