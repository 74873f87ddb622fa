package activity

import (
	"context"
	"strconv"
	"strings"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// noisyUserMeta lists settings the host rewrites on ordinary page loads.
var noisyUserMeta = map[string]struct{}{
	"wp_user-settings-time":     {},
	"community-events-location": {},
	"dismissed_wp_pointers":     {},
}

func (m *Monitor) registerUserHandlers() {
	on(m, KindUserRegistered, func(_ context.Context, actor shared.Actor, ev UserRegistered) (record, bool) {
		if actor.Authenticated && actor.ID != ev.UserID {
			return emit(actor, ActionUserRegistration, m.sprintf(i18n.MsgUserCreated, actor.Name(), m.subject(ev.Subject)))
		}
		return record{
			actorID:     ev.UserID,
			action:      ActionUserRegistration,
			description: m.sprintf(i18n.MsgUserRegistered, m.subject(ev.Subject)),
		}, true
	})
	on(m, KindProfileUpdated, func(_ context.Context, actor shared.Actor, ev ProfileUpdated) (record, bool) {
		return emit(actor, ActionProfileUpdate, m.sprintf(i18n.MsgProfileUpdated, actor.Name(), m.subject(ev.Subject)))
	})
	on(m, KindUserLoggedIn, func(_ context.Context, _ shared.Actor, ev UserLoggedIn) (record, bool) {
		if ev.UserID <= 0 {
			return skip()
		}
		return record{
			actorID:     ev.UserID,
			action:      ActionUserLogin,
			description: m.sprintf(i18n.MsgUserLoggedIn, m.subject(ev.Subject)),
		}, true
	})
	on(m, KindUserLoggedOut, func(_ context.Context, actor shared.Actor, _ UserLoggedOut) (record, bool) {
		if !actor.Authenticated || actor.ID <= 0 {
			return skip()
		}
		return emit(actor, ActionUserLogout, m.sprintf(i18n.MsgUserLoggedOut, actor.Name()))
	})
	on(m, KindUserDeleted, func(_ context.Context, actor shared.Actor, ev UserDeleted) (record, bool) {
		return emit(actor, ActionUserDeletion, m.sprintf(i18n.MsgUserDeleted, actor.Name(), m.subject(ev.Subject)))
	})
	on(m, KindUserRoleChanged, func(_ context.Context, actor shared.Actor, ev UserRoleChanged) (record, bool) {
		if ev.Role == "" || (len(ev.OldRoles) == 1 && ev.OldRoles[0] == ev.Role) {
			return skip()
		}
		return emit(actor, ActionUserRoleChange, m.sprintf(i18n.MsgUserRoleChanged, actor.Name(), m.subject(ev.Subject), ev.Role))
	})
	on(m, KindUserRoleAdded, func(_ context.Context, actor shared.Actor, ev UserRoleAdded) (record, bool) {
		if ev.Role == "" {
			return skip()
		}
		return emit(actor, ActionUserRoleChange, m.sprintf(i18n.MsgUserRoleAdded, actor.Name(), m.subject(ev.Subject), ev.Role))
	})
	on(m, KindUserRoleRemoved, func(_ context.Context, actor shared.Actor, ev UserRoleRemoved) (record, bool) {
		if ev.Role == "" {
			return skip()
		}
		return emit(actor, ActionUserRoleChange, m.sprintf(i18n.MsgUserRoleRemoved, actor.Name(), m.subject(ev.Subject), ev.Role))
	})
	on(m, KindUserMetaAdded, func(_ context.Context, actor shared.Actor, ev UserMetaAdded) (record, bool) {
		return m.userMeta(actor, i18n.MsgUserMetaAdded, ev.UserMeta)
	})
	on(m, KindUserMetaUpdated, func(_ context.Context, actor shared.Actor, ev UserMetaUpdated) (record, bool) {
		return m.userMeta(actor, i18n.MsgUserMetaUpdated, ev.UserMeta)
	})
	on(m, KindUserMetaDeleted, func(_ context.Context, actor shared.Actor, ev UserMetaDeleted) (record, bool) {
		return m.userMeta(actor, i18n.MsgUserMetaDeleted, ev.UserMeta)
	})
}

func (m *Monitor) userMeta(actor shared.Actor, key string, ev UserMeta) (record, bool) {
	if isPrivateMetaKey(ev.Key) {
		return skip()
	}
	if _, noisy := noisyUserMeta[ev.Key]; noisy {
		return skip()
	}
	return emit(actor, ActionUserMeta, m.sprintf(key, actor.Name(), ev.Key, m.subject(ev.Subject)))
}

func (m *Monitor) subject(s Subject) string {
	if name := strings.TrimSpace(s.DisplayName); name != "" {
		return name
	}
	if s.UserID > 0 {
		return "#" + strconv.FormatInt(s.UserID, 10)
	}
	return m.sprintf(i18n.MsgUnknownSubject)
}
