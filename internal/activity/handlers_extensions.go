package activity

import (
	"context"
	"strings"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

func (m *Monitor) registerExtensionHandlers() {
	on(m, KindPluginActivated, func(_ context.Context, actor shared.Actor, ev PluginActivated) (record, bool) {
		return emit(actor, ActionPluginActivation, m.sprintf(i18n.MsgPluginActivated, actor.Name(), pluginName(ev.Plugin)))
	})
	on(m, KindPluginDeactivated, func(_ context.Context, actor shared.Actor, ev PluginDeactivated) (record, bool) {
		return emit(actor, ActionPluginDeactivate, m.sprintf(i18n.MsgPluginDeactivate, actor.Name(), pluginName(ev.Plugin)))
	})
	on(m, KindThemeSwitched, func(_ context.Context, actor shared.Actor, ev ThemeSwitched) (record, bool) {
		if ev.OldName == ev.NewName {
			return skip()
		}
		return emit(actor, ActionThemeSwitch, m.sprintf(i18n.MsgThemeSwitched, actor.Name(), ev.OldName, ev.NewName))
	})
	on(m, KindThemeCustomized, func(_ context.Context, actor shared.Actor, _ ThemeCustomized) (record, bool) {
		return emit(actor, ActionThemeCustomize, m.sprintf(i18n.MsgThemeCustomized, actor.Name()))
	})
	on(m, KindPackagesUpdated, func(_ context.Context, actor shared.Actor, ev PackagesUpdated) (record, bool) {
		if ev.Action != "update" {
			return skip()
		}
		switch ev.Type {
		case "plugin":
			return emit(actor, ActionWordPressUpdate, m.sprintf(i18n.MsgPluginsUpdated, actor.Name()))
		case "theme":
			return emit(actor, ActionWordPressUpdate, m.sprintf(i18n.MsgThemesUpdated, actor.Name()))
		default:
			return skip()
		}
	})
	on(m, KindCoreUpdated, func(_ context.Context, actor shared.Actor, ev CoreUpdated) (record, bool) {
		if strings.TrimSpace(ev.Version) == "" {
			return skip()
		}
		return emit(actor, ActionCoreUpdate, m.sprintf(i18n.MsgCoreUpdated, actor.Name(), ev.Version))
	})
}

// pluginName prefers the header name, falling back to the plugin path.
func pluginName(p Plugin) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return p.Plugin
}
