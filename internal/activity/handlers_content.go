package activity

import (
	"context"
	"strings"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

const (
	statusPublish = "publish"
	statusTrash   = "trash"
)

func (m *Monitor) registerContentHandlers() {
	on(m, KindPostStatusChanged, func(_ context.Context, actor shared.Actor, ev PostStatusChanged) (record, bool) {
		if ev.OldStatus == ev.NewStatus || isRevision(ev.PostType) {
			return skip()
		}
		switch {
		case ev.NewStatus == statusPublish:
			return emit(actor, ActionPostPublish, m.sprintf(i18n.MsgPostPublished, actor.Name(), ev.PostType, ev.Title))
		case ev.NewStatus == statusTrash:
			return emit(actor, ActionPostTrash, m.sprintf(i18n.MsgPostTrashed, actor.Name(), ev.PostType, ev.Title))
		default:
			return emit(actor, ActionPostStatus, m.sprintf(i18n.MsgPostStatusChanged, actor.Name(), ev.PostType, ev.Title, ev.OldStatus, ev.NewStatus))
		}
	})
	on(m, KindPostUpdated, func(_ context.Context, actor shared.Actor, ev PostUpdated) (record, bool) {
		if ev.Before == ev.After || isRevision(ev.PostType) {
			return skip()
		}
		return emit(actor, ActionPostUpdate, m.sprintf(i18n.MsgPostUpdated, actor.Name(), ev.PostType, ev.After.Title))
	})
	on(m, KindPostDeleted, func(_ context.Context, actor shared.Actor, ev PostDeleted) (record, bool) {
		if isRevision(ev.PostType) {
			return skip()
		}
		return emit(actor, ActionPostDeletion, m.sprintf(i18n.MsgPostDeleted, actor.Name(), ev.PostType, ev.Title))
	})
	on(m, KindPostMetaAdded, func(_ context.Context, actor shared.Actor, ev PostMetaAdded) (record, bool) {
		return m.postMeta(actor, i18n.MsgPostMetaAdded, ev.PostMeta)
	})
	on(m, KindPostMetaUpdated, func(_ context.Context, actor shared.Actor, ev PostMetaUpdated) (record, bool) {
		return m.postMeta(actor, i18n.MsgPostMetaUpdated, ev.PostMeta)
	})
	on(m, KindPostMetaDeleted, func(_ context.Context, actor shared.Actor, ev PostMetaDeleted) (record, bool) {
		return m.postMeta(actor, i18n.MsgPostMetaDeleted, ev.PostMeta)
	})
}

func (m *Monitor) postMeta(actor shared.Actor, key string, ev PostMeta) (record, bool) {
	if isPrivateMetaKey(ev.Key) {
		return skip()
	}
	return emit(actor, ActionPostMeta, m.sprintf(key, actor.Name(), ev.Key, ev.PostType, ev.Title))
}

func isRevision(postType string) bool {
	return strings.EqualFold(postType, "revision")
}

// isPrivateMetaKey reports keys that are bookkeeping rather than user visible data,
// such as edit locks or session tokens.
func isPrivateMetaKey(key string) bool {
	return key == "" || strings.HasPrefix(key, "_") || key == "session_tokens"
}
