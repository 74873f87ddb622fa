package activity

import (
	"bytes"
	"context"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// registerStructureHandlers covers menus, widgets and taxonomy terms.
func (m *Monitor) registerStructureHandlers() {
	on(m, KindMenuCreated, func(_ context.Context, actor shared.Actor, ev MenuCreated) (record, bool) {
		return emit(actor, ActionMenuCreation, m.sprintf(i18n.MsgMenuCreated, actor.Name(), ev.Name))
	})
	on(m, KindMenuUpdated, func(_ context.Context, actor shared.Actor, ev MenuUpdated) (record, bool) {
		return emit(actor, ActionMenuUpdate, m.sprintf(i18n.MsgMenuUpdated, actor.Name(), ev.Name))
	})
	on(m, KindMenuDeleted, func(_ context.Context, actor shared.Actor, ev MenuDeleted) (record, bool) {
		return emit(actor, ActionMenuDeletion, m.sprintf(i18n.MsgMenuDeleted, actor.Name(), ev.Name))
	})
	on(m, KindWidgetsUpdated, func(_ context.Context, actor shared.Actor, ev WidgetsUpdated) (record, bool) {
		if bytes.Equal(bytes.TrimSpace(ev.Old), bytes.TrimSpace(ev.New)) {
			return skip()
		}
		return emit(actor, ActionWidgetUpdate, m.sprintf(i18n.MsgWidgetsUpdated, actor.Name()))
	})

	on(m, KindTermCreated, func(_ context.Context, actor shared.Actor, ev TermCreated) (record, bool) {
		return emit(actor, ActionTermCreation, m.sprintf(i18n.MsgTermCreated, actor.Name(), ev.Taxonomy, ev.Name))
	})
	on(m, KindTermEdited, func(_ context.Context, actor shared.Actor, ev TermEdited) (record, bool) {
		return emit(actor, ActionTermUpdate, m.sprintf(i18n.MsgTermEdited, actor.Name(), ev.Taxonomy, ev.Name))
	})
	on(m, KindTermDeleted, func(_ context.Context, actor shared.Actor, ev TermDeleted) (record, bool) {
		return emit(actor, ActionTermDeletion, m.sprintf(i18n.MsgTermDeleted, actor.Name(), ev.Taxonomy, ev.Name))
	})
}
