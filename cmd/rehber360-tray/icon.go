package main

import (
	_ "embed"
)

// iconData is the 32x32 tray icon. fyne.io/systray accepts PNG on every platform.
//
//go:embed assets/icon.png
var iconData []byte
