package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/roleguard/internal/activity"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

type stubRepo struct {
	users     map[int64]User
	lastLimit int
	lastOff   int
	setErr    error
}

func newStubRepo(users ...User) *stubRepo {
	r := &stubRepo{users: map[int64]User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubRepo) GetUser(_ context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *stubRepo) ListUsers(_ context.Context, _ ListFilters, limit, offset int) ([]User, error) {
	r.lastLimit, r.lastOff = limit, offset
	return nil, nil
}

func (r *stubRepo) CountUsers(context.Context, ListFilters) (int, error) {
	return len(r.users), nil
}

func (r *stubRepo) Roles(_ context.Context, userID int64) ([]string, error) {
	return r.users[userID].Roles, nil
}

func (r *stubRepo) UsersWithRole(_ context.Context, roleID string) ([]int64, error) {
	var ids []int64
	for id, u := range r.users {
		for _, role := range u.Roles {
			if role == roleID {
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *stubRepo) AddRole(_ context.Context, userID int64, roleID string) (bool, error) {
	u, ok := r.users[userID]
	if !ok {
		return false, shared.ErrNotFound
	}
	for _, role := range u.Roles {
		if role == roleID {
			return false, nil
		}
	}
	u.Roles = append(u.Roles, roleID)
	r.users[userID] = u
	return true, nil
}

func (r *stubRepo) RemoveRole(_ context.Context, userID int64, roleID string) (bool, error) {
	u := r.users[userID]
	next := u.Roles[:0:0]
	for _, role := range u.Roles {
		if role != roleID {
			next = append(next, role)
		}
	}
	removed := len(next) != len(u.Roles)
	u.Roles = next
	r.users[userID] = u
	return removed, nil
}

func (r *stubRepo) SetRole(_ context.Context, userID int64, roleID string) ([]string, error) {
	if r.setErr != nil {
		return nil, r.setErr
	}
	u := r.users[userID]
	previous := u.Roles
	u.Roles = []string{roleID}
	r.users[userID] = u
	return previous, nil
}

func (r *stubRepo) CountByRole(context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, u := range r.users {
		for _, role := range u.Roles {
			counts[role]++
		}
	}
	return counts, nil
}

func (r *stubRepo) DisplayNames(_ context.Context, ids []int64) (map[int64]string, error) {
	out := map[int64]string{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u.Name()
		}
	}
	return out, nil
}

type stubPublisher struct {
	actors []shared.Actor
	events []activity.Event
}

func (p *stubPublisher) Publish(_ context.Context, actor shared.Actor, ev activity.Event) {
	p.actors = append(p.actors, actor)
	p.events = append(p.events, ev)
}

type stubHook struct {
	calls [][]int64
	err   error
}

func (h *stubHook) MembershipChanged(_ context.Context, ids []int64) error {
	h.calls = append(h.calls, ids)
	return h.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureUsers() []User {
	return []User{
		{ID: 1, Login: "admin", DisplayName: "Site Admin", Roles: []string{"administrator"}},
		{ID: 2, Login: "jdoe", Roles: []string{"editor", "author"}},
		{ID: 3, Login: "reader", DisplayName: "Reader", Roles: []string{"subscriber"}},
	}
}

func TestListUsersClampsPageSize(t *testing.T) {
	repo := newStubRepo(fixtureUsers()...)
	svc := NewService(repo, nil, discardLogger())

	result, err := svc.ListUsers(context.Background(), ListFilters{Page: 2, PerPage: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastLimit)
	assert.Equal(t, 100, repo.lastOff)
	assert.NotNil(t, result.Users)
	assert.Equal(t, 3, result.Pagination.Total)

	_, err = svc.ListUsers(context.Background(), ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOff)
}

func TestAddAndRemoveRoleNotifyOnlyOnChange(t *testing.T) {
	repo := newStubRepo(fixtureUsers()...)
	hook := &stubHook{}
	svc := NewService(repo, nil, discardLogger(), hook)

	require.NoError(t, svc.AddRole(context.Background(), shared.SystemActor, 3, "author"))
	require.NoError(t, svc.AddRole(context.Background(), shared.SystemActor, 3, "author"))
	require.NoError(t, svc.RemoveRole(context.Background(), shared.SystemActor, 3, "editor"))
	require.NoError(t, svc.RemoveRole(context.Background(), shared.SystemActor, 3, "subscriber"))

	assert.Equal(t, [][]int64{{3}, {3}}, hook.calls)
	roles, _ := svc.Roles(context.Background(), 3)
	assert.Equal(t, []string{"author"}, roles)

	assert.ErrorIs(t, svc.AddRole(context.Background(), shared.SystemActor, 3, " "), shared.ErrValidation)
	assert.ErrorIs(t, svc.AddRole(context.Background(), shared.SystemActor, 99, "author"), shared.ErrNotFound)
	assert.ErrorIs(t, svc.RemoveRole(context.Background(), shared.SystemActor, 99, "author"), shared.ErrNotFound)
}

func TestAddAndRemoveRolePublishOnlyOnChange(t *testing.T) {
	repo := newStubRepo(fixtureUsers()...)
	pub := &stubPublisher{}
	svc := NewService(repo, pub, discardLogger())
	actor := shared.Actor{ID: 1, DisplayName: "Site Admin", Authenticated: true}
	ctx := context.Background()

	require.NoError(t, svc.AddRole(ctx, actor, 3, "administrator"))
	require.NoError(t, svc.AddRole(ctx, actor, 3, "administrator"))
	require.NoError(t, svc.RemoveRole(ctx, actor, 3, "administrator"))
	require.NoError(t, svc.RemoveRole(ctx, actor, 3, "administrator"))

	require.Len(t, pub.events, 2)
	assert.Equal(t, activity.UserRoleAdded{
		Subject: activity.Subject{UserID: 3, DisplayName: "Reader"},
		Role:    "administrator",
	}, pub.events[0])
	assert.Equal(t, activity.UserRoleRemoved{
		Subject: activity.Subject{UserID: 3, DisplayName: "Reader"},
		Role:    "administrator",
	}, pub.events[1])
	assert.Equal(t, []shared.Actor{actor, actor}, pub.actors)
}

func TestSetRolePublishesPreviousRoles(t *testing.T) {
	repo := newStubRepo(fixtureUsers()...)
	pub := &stubPublisher{}
	hook := &stubHook{err: errors.New("cache down")}
	svc := NewService(repo, pub, discardLogger(), hook)
	actor := shared.Actor{ID: 1, DisplayName: "Site Admin", Authenticated: true}

	require.NoError(t, svc.SetRole(context.Background(), actor, 2, "contributor"))

	require.Len(t, pub.events, 1)
	ev := pub.events[0].(activity.UserRoleChanged)
	assert.Equal(t, int64(2), ev.UserID)
	assert.Equal(t, "jdoe", ev.DisplayName)
	assert.Equal(t, "contributor", ev.Role)
	assert.Equal(t, []string{"editor", "author"}, ev.OldRoles)
	assert.Equal(t, actor, pub.actors[0])
	assert.Equal(t, [][]int64{{2}}, hook.calls)
}

func TestSetRoleFailures(t *testing.T) {
	repo := newStubRepo(fixtureUsers()...)
	pub := &stubPublisher{}
	svc := NewService(repo, pub, discardLogger())

	assert.ErrorIs(t, svc.SetRole(context.Background(), shared.SystemActor, 99, "editor"), shared.ErrNotFound)
	assert.ErrorIs(t, svc.SetRole(context.Background(), shared.SystemActor, 2, ""), shared.ErrValidation)
	repo.setErr = shared.Persistence("set role", errors.New("boom"))
	assert.ErrorIs(t, svc.SetRole(context.Background(), shared.SystemActor, 2, "editor"), shared.ErrPersistence)
	assert.Empty(t, pub.events)
}

func TestActorAndDisplayNames(t *testing.T) {
	svc := NewService(newStubRepo(fixtureUsers()...), nil, discardLogger())

	actor, err := svc.Actor(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, shared.Actor{ID: 2, DisplayName: "jdoe", Authenticated: true}, actor)

	names, err := svc.DisplayNames(context.Background(), []int64{1, 3, 42})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1: "Site Admin", 3: "Reader"}, names)

	counts, err := svc.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts["editor"])
	members, err := svc.UsersWithRole(context.Background(), "author")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, members)
}
