package activity

import (
	"context"
	"sort"
	"strings"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

func (m *Monitor) registerRoleHandlers() {
	on(m, KindRoleCreated, func(_ context.Context, actor shared.Actor, ev RoleCreated) (record, bool) {
		return emit(actor, ActionRoleCreation, m.sprintf(i18n.MsgRoleCreated, actor.Name(), roleLabel(ev.DisplayName, ev.RoleID)))
	})
	on(m, KindRoleDeleted, func(_ context.Context, actor shared.Actor, ev RoleDeleted) (record, bool) {
		label := roleLabel(ev.DisplayName, ev.RoleID)
		if len(ev.Capabilities) == 0 {
			return emit(actor, ActionRoleDeletion, m.sprintf(i18n.MsgRoleDeleted, actor.Name(), label))
		}
		return emit(actor, ActionRoleDeletion, m.sprintf(i18n.MsgRoleDeletedCaps, actor.Name(), label, strings.Join(ev.Capabilities, ", ")))
	})
	on(m, KindRoleUpdated, func(_ context.Context, actor shared.Actor, ev RoleUpdated) (record, bool) {
		label := roleLabel(ev.DisplayName, ev.RoleID)
		granted, revoked := diff(ev.Old, ev.New)
		if len(granted) == 0 && len(revoked) == 0 {
			return emit(actor, ActionRoleUpdate, m.sprintf(i18n.MsgRoleUpdated, actor.Name(), label))
		}
		return emit(actor, ActionRoleUpdate, m.sprintf(i18n.MsgRoleUpdatedDiff, actor.Name(), label, m.list(granted), m.list(revoked)))
	})
	on(m, KindRoleRenamed, func(_ context.Context, actor shared.Actor, ev RoleRenamed) (record, bool) {
		if ev.OldName == ev.NewName {
			return skip()
		}
		return emit(actor, ActionRoleRename, m.sprintf(i18n.MsgRoleRenamed, actor.Name(), ev.RoleID, ev.OldName, ev.NewName))
	})
	on(m, KindCapabilityToggled, func(_ context.Context, actor shared.Actor, ev CapabilityToggled) (record, bool) {
		verb := m.sprintf(i18n.MsgRevoked)
		if ev.Granted {
			verb = m.sprintf(i18n.MsgGranted)
		}
		return emit(actor, ActionCapabilityToggle, m.sprintf(i18n.MsgCapabilityToggled, actor.Name(), verb, ev.Capability, roleLabel(ev.DisplayName, ev.RoleID)))
	})
	on(m, KindRoleCloned, func(_ context.Context, actor shared.Actor, ev RoleCloned) (record, bool) {
		return emit(actor, ActionRoleClone, m.sprintf(i18n.MsgRoleCloned, actor.Name(), ev.SourceID, ev.RoleID))
	})
	on(m, KindRolesRestored, func(_ context.Context, actor shared.Actor, _ RolesRestored) (record, bool) {
		return emit(actor, ActionRolesRestore, m.sprintf(i18n.MsgRolesRestored, actor.Name()))
	})
	on(m, KindRolesImported, func(_ context.Context, actor shared.Actor, ev RolesImported) (record, bool) {
		return emit(actor, ActionRolesImport, m.sprintf(i18n.MsgRolesImported, actor.Name(), len(ev.RoleIDs)))
	})
}

func roleLabel(displayName, id string) string {
	if strings.TrimSpace(displayName) != "" {
		return displayName
	}
	return id
}

func (m *Monitor) list(items []string) string {
	if len(items) == 0 {
		return m.sprintf(i18n.MsgNone)
	}
	return strings.Join(items, ", ")
}

// diff returns the sorted ids present only in next (granted) and only in prev (revoked).
func diff(prev, next []string) (granted, revoked []string) {
	before := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		before[id] = struct{}{}
	}
	after := make(map[string]struct{}, len(next))
	for _, id := range next {
		after[id] = struct{}{}
		if _, ok := before[id]; !ok {
			granted = append(granted, id)
		}
	}
	for _, id := range prev {
		if _, ok := after[id]; !ok {
			revoked = append(revoked, id)
		}
	}
	sort.Strings(granted)
	sort.Strings(revoked)
	return granted, revoked
}
