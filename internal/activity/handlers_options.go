package activity

import (
	"bytes"
	"context"
	"strings"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// ignoredOptionFragments mark options that churn on every request.
var ignoredOptionFragments = []string{"_site_transient_", "_transient_", "cron", "session_tokens"}

func (m *Monitor) registerOptionHandlers() {
	on(m, KindOptionAdded, func(_ context.Context, actor shared.Actor, ev OptionAdded) (record, bool) {
		if IgnoredOption(ev.Name) {
			return skip()
		}
		return emit(actor, ActionOptionAddition, m.sprintf(i18n.MsgOptionAdded, actor.Name(), ev.Name))
	})
	on(m, KindOptionUpdated, func(_ context.Context, actor shared.Actor, ev OptionUpdated) (record, bool) {
		if IgnoredOption(ev.Name) {
			return skip()
		}
		if len(ev.Old) > 0 && bytes.Equal(ev.Old, ev.New) {
			return skip()
		}
		return emit(actor, ActionOptionUpdate, m.sprintf(i18n.MsgOptionUpdated, actor.Name(), ev.Name))
	})
	on(m, KindOptionDeleted, func(_ context.Context, actor shared.Actor, ev OptionDeleted) (record, bool) {
		if IgnoredOption(ev.Name) {
			return skip()
		}
		return emit(actor, ActionOptionDeletion, m.sprintf(i18n.MsgOptionDeleted, actor.Name(), ev.Name))
	})
}

// IgnoredOption reports whether changes to the named option are never audited.
func IgnoredOption(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	for _, fragment := range ignoredOptionFragments {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}
