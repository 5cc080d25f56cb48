package menu

import (
	goruntime "runtime"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
)

// Build creates the Wails application menu for items. On macOS the standard
// application menu is prepended.
func Build(items []Item, d *Dispatcher) *menu.Menu {
	m := menu.NewMenu()
	if goruntime.GOOS == "darwin" {
		m.Append(menu.AppMenu())
	}
	for _, top := range items {
		addItems(m.AddSubmenu(top.Label), top.Children, d)
	}
	return m
}

func addItems(m *menu.Menu, items []Item, d *Dispatcher) {
	for _, it := range items {
		switch {
		case it.Separator:
			m.AddSeparator()
		case len(it.Children) > 0:
			addItems(m.AddSubmenu(it.Label), it.Children, d)
		default:
			item := it
			mi := m.AddText(item.Label, Accelerator(item.Accelerator), func(_ *menu.CallbackData) {
				d.Activate(item)
			})
			mi.Disabled = item.Disabled
		}
	}
}

// Accelerator parses "CmdOrCtrl+Shift+I" style shortcuts. It returns nil for
// an empty string.
func Accelerator(s string) *keys.Accelerator {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "+")
	acc := &keys.Accelerator{Key: strings.ToLower(parts[len(parts)-1])}
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "cmdorctrl", "cmd", "command":
			acc.Modifiers = append(acc.Modifiers, keys.CmdOrCtrlKey)
		case "ctrl", "control":
			acc.Modifiers = append(acc.Modifiers, keys.ControlKey)
		case "alt", "option", "optionoralt":
			acc.Modifiers = append(acc.Modifiers, keys.OptionOrAltKey)
		case "shift":
			acc.Modifiers = append(acc.Modifiers, keys.ShiftKey)
		}
	}
	return acc
}
