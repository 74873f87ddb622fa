package activity

import (
	"context"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

func (m *Monitor) registerCommentHandlers() {
	on(m, KindCommentCreated, func(_ context.Context, actor shared.Actor, ev CommentCreated) (record, bool) {
		return emit(actor, ActionCommentCreation, m.sprintf(i18n.MsgCommentCreated, actor.Name(), ev.PostTitle))
	})
	on(m, KindCommentEdited, func(_ context.Context, actor shared.Actor, ev CommentEdited) (record, bool) {
		return m.comment(actor, ActionCommentUpdate, i18n.MsgCommentEdited, ev.Comment)
	})
	on(m, KindCommentDeleted, func(_ context.Context, actor shared.Actor, ev CommentDeleted) (record, bool) {
		return m.comment(actor, ActionCommentDeletion, i18n.MsgCommentDeleted, ev.Comment)
	})
	on(m, KindCommentSpammed, func(_ context.Context, actor shared.Actor, ev CommentSpammed) (record, bool) {
		return m.comment(actor, ActionCommentSpam, i18n.MsgCommentSpammed, ev.Comment)
	})
	on(m, KindCommentUnspammed, func(_ context.Context, actor shared.Actor, ev CommentUnspammed) (record, bool) {
		return m.comment(actor, ActionCommentUnspam, i18n.MsgCommentUnspammed, ev.Comment)
	})
	on(m, KindCommentTrashed, func(_ context.Context, actor shared.Actor, ev CommentTrashed) (record, bool) {
		return m.comment(actor, ActionCommentTrash, i18n.MsgCommentTrashed, ev.Comment)
	})
	on(m, KindCommentUntrashed, func(_ context.Context, actor shared.Actor, ev CommentUntrashed) (record, bool) {
		return m.comment(actor, ActionCommentUntrash, i18n.MsgCommentUntrashed, ev.Comment)
	})
}

func (m *Monitor) comment(actor shared.Actor, action, key string, ev Comment) (record, bool) {
	return emit(actor, action, m.sprintf(key, actor.Name(), ev.CommentID, ev.PostTitle))
}
