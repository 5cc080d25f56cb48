// Package menu defines the application and tray menus and dispatches their
// actions to the shell or the renderer.
package menu

import (
	"github.com/rehber360/rehber360-desktop/internal/constants"
)

// Renderer actions. These are forwarded to the renderer as "menu:<action>".
const (
	ActionNewStudent  = "newStudent"
	ActionImportData  = "importData"
	ActionExportData  = "exportData"
	ActionSettings    = "settings"
	ActionDBBackup    = "dbBackup"
	ActionDBRestore   = "dbRestore"
	ActionExportExcel = "exportExcel"
	ActionExportPDF   = "exportPDF"
	ActionAbout       = "about"
)

// Shell actions. These are handled in-process by registered handlers.
const (
	ActionQuit             = "quit"
	ActionShow             = "show"
	ActionToggleFullscreen = "toggleFullscreen"
	ActionReload           = "reload"
	ActionZoomIn           = "zoomIn"
	ActionZoomOut          = "zoomOut"
	ActionZoomReset        = "zoomReset"
	ActionOpenDocs         = "openDocs"
	ActionOpenChangelog    = "openChangelog"
	ActionCheckUpdates     = "checkUpdates"
	ActionToggleDevTools   = "toggleDevTools"

	ActionUndo      = "undo"
	ActionRedo      = "redo"
	ActionCut       = "cut"
	ActionCopy      = "copy"
	ActionPaste     = "paste"
	ActionSelectAll = "selectAll"
)

// Item is one menu entry. An item with Path navigates the renderer; an item
// with Children is a submenu.
type Item struct {
	Label       string
	Accelerator string
	Action      string
	Path        string
	Separator   bool
	Disabled    bool

	// ShowWindow brings the main window forward before the action runs.
	ShowWindow bool

	Children []Item
}

// Separator returns a separator item.
func Separator() Item { return Item{Separator: true} }

func action(label, accel, act string) Item {
	return Item{Label: label, Accelerator: accel, Action: act}
}

func navigate(label, accel, path string) Item {
	return Item{Label: label, Accelerator: accel, Path: path}
}

// AppMenu returns the main window menu. Developer tools are only included
// when devMode is set.
func AppMenu(devMode bool) []Item {
	view := []Item{
		navigate("Ana Sayfa", "CmdOrCtrl+H", "/"),
		navigate("Öğrenciler", "CmdOrCtrl+1", "/students"),
		navigate("Sınavlar", "CmdOrCtrl+2", "/exams"),
		navigate("Anketler", "CmdOrCtrl+3", "/surveys"),
		navigate("Raporlar", "CmdOrCtrl+4", "/reports"),
		Separator(),
		action("Tam Ekran", "F11", ActionToggleFullscreen),
		action("Yenile", "CmdOrCtrl+R", ActionReload),
		Separator(),
		action("Yakınlaştır", "CmdOrCtrl+=", ActionZoomIn),
		action("Uzaklaştır", "CmdOrCtrl+-", ActionZoomOut),
		action("Sıfırla", "CmdOrCtrl+0", ActionZoomReset),
	}
	if devMode {
		view = append(view, Separator(), action("Geliştirici Araçları", "CmdOrCtrl+Shift+I", ActionToggleDevTools))
	}

	return []Item{
		{Label: "Dosya", Children: []Item{
			action("Yeni Öğrenci", "CmdOrCtrl+N", ActionNewStudent),
			Separator(),
			action("Veri İçe Aktar", "CmdOrCtrl+I", ActionImportData),
			action("Veri Dışa Aktar", "CmdOrCtrl+E", ActionExportData),
			Separator(),
			action("Ayarlar", "CmdOrCtrl+,", ActionSettings),
			Separator(),
			action("Çıkış", "CmdOrCtrl+Q", ActionQuit),
		}},
		{Label: "Düzenle", Children: []Item{
			action("Geri Al", "CmdOrCtrl+Z", ActionUndo),
			action("İleri Al", "CmdOrCtrl+Shift+Z", ActionRedo),
			Separator(),
			action("Kes", "CmdOrCtrl+X", ActionCut),
			action("Kopyala", "CmdOrCtrl+C", ActionCopy),
			action("Yapıştır", "CmdOrCtrl+V", ActionPaste),
			Separator(),
			action("Tümünü Seç", "CmdOrCtrl+A", ActionSelectAll),
		}},
		{Label: "Görünüm", Children: view},
		{Label: "Veritabanı", Children: []Item{
			action("Yedek Al", "CmdOrCtrl+B", ActionDBBackup),
			action("Yedek Geri Yükle", "", ActionDBRestore),
			Separator(),
			action("Excel'e Aktar", "", ActionExportExcel),
			action("PDF'e Aktar", "CmdOrCtrl+P", ActionExportPDF),
		}},
		{Label: "Yardım", Children: []Item{
			action("Dokümantasyon", "", ActionOpenDocs),
			action("Sürüm Notları", "", ActionOpenChangelog),
			action("Güncellemeleri Denetle", "", ActionCheckUpdates),
			Separator(),
			action("Hakkında", "", ActionAbout),
		}},
	}
}

// TrayTooltip is shown when hovering the tray icon.
const TrayTooltip = constants.TrayTooltip

// TrayMenu returns the tray context menu. Every entry except Çıkış brings the
// main window forward.
func TrayMenu() []Item {
	quick := []Item{
		{Label: "Ana Sayfa", Path: "/", ShowWindow: true},
		{Label: "Öğrenciler", Path: "/students", ShowWindow: true},
		{Label: "Sınavlar", Path: "/exams", ShowWindow: true},
		{Label: "Raporlar", Path: "/reports", ShowWindow: true},
	}
	return []Item{
		{Label: constants.AppName, Disabled: true},
		Separator(),
		{Label: "Göster", Action: ActionShow, ShowWindow: true},
		Separator(),
		{Label: "Hızlı Erişim", Children: quick},
		Separator(),
		{Label: "Ayarlar", Action: ActionSettings, ShowWindow: true},
		Separator(),
		{Label: "Çıkış", Action: ActionQuit},
	}
}

// Walk calls fn for every non-separator item, depth first.
func Walk(items []Item, fn func(Item)) {
	for _, it := range items {
		if it.Separator {
			continue
		}
		fn(it)
		Walk(it.Children, fn)
	}
}

// FindAction returns the first item bound to action.
func FindAction(items []Item, act string) (Item, bool) {
	var found Item
	ok := false
	Walk(items, func(it Item) {
		if !ok && it.Action == act {
			found, ok = it, true
		}
	})
	return found, ok
}

// IsRendererAction reports whether act is forwarded to the renderer rather
// than handled by the shell.
func IsRendererAction(act string) bool {
	switch act {
	case ActionNewStudent, ActionImportData, ActionExportData, ActionSettings,
		ActionDBBackup, ActionDBRestore, ActionExportExcel, ActionExportPDF, ActionAbout:
		return true
	}
	return false
}
