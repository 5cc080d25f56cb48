package events

import (
	"errors"
	"testing"
)

func TestRendererEvent(t *testing.T) {
	tests := []struct {
		name        string
		event       Event
		wantName    string
		wantPayload any
	}{
		{"maximized", &WindowStateEvent{BaseEvent: newBase(EventWindowState), State: WindowMaximized}, "window:maximized", true},
		{"unmaximized", &WindowStateEvent{BaseEvent: newBase(EventWindowState), State: WindowUnmaximized}, "window:maximized", false},
		{"fullscreen", &WindowStateEvent{BaseEvent: newBase(EventWindowState), State: WindowFullscreen}, "window:fullscreen", true},
		{"blurred", &WindowStateEvent{BaseEvent: newBase(EventWindowState), State: WindowBlurred}, "window:focused", false},
		{"hidden", &WindowStateEvent{BaseEvent: newBase(EventWindowState), State: WindowHidden}, "window:state", "hidden"},
		{"menu action", &MenuActionEvent{BaseEvent: newBase(EventMenuAction), Action: "newStudent"}, "menu:newStudent", nil},
		{"navigate", &MenuActionEvent{BaseEvent: newBase(EventNavigate), Action: "navigate", Path: "/students"}, "menu:navigate", "/students"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, payload, ok := RendererEvent(tt.event)
			if !ok {
				t.Fatal("Expected event to be forwarded")
			}
			if name != tt.wantName {
				t.Errorf("Expected name %s, got %s", tt.wantName, name)
			}
			if payload != tt.wantPayload {
				t.Errorf("Expected payload %v, got %v", tt.wantPayload, payload)
			}
		})
	}
}

func TestRendererEventUpdates(t *testing.T) {
	progress := &UpdateEvent{BaseEvent: newBase(EventUpdateProgress), Percent: 42, Transferred: 42, Total: 100}
	name, payload, _ := RendererEvent(progress)
	if name != RendererUpdateProgress {
		t.Errorf("Expected %s, got %s", RendererUpdateProgress, name)
	}
	if dto := payload.(UpdateDTO); dto.Percent != 42 || dto.Total != 100 {
		t.Errorf("Unexpected payload %+v", dto)
	}

	failed := &UpdateEvent{BaseEvent: newBase(EventUpdateError), Error: errors.New("feed unreachable")}
	name, payload, _ = RendererEvent(failed)
	if name != "update:error" || payload.(UpdateDTO).Message != "feed unreachable" {
		t.Errorf("Unexpected error event %s %+v", name, payload)
	}
}

func TestRendererEventBackup(t *testing.T) {
	ev := &BackupEvent{BaseEvent: newBase(EventBackupFailed), Auto: true, Error: errors.New("disk full")}
	name, payload, ok := RendererEvent(ev)
	if !ok || name != "backup:failed" {
		t.Fatalf("Unexpected name %s", name)
	}
	if dto := payload.(BackupDTO); !dto.Auto || dto.Error != "disk full" {
		t.Errorf("Unexpected payload %+v", dto)
	}
}
