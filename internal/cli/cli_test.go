package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/backup"
	"github.com/rehber360/rehber360-desktop/internal/store"
)

// TestCommandTree verifies every command group is registered.
func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	AddCommands(root)

	paths := [][]string{
		{"map"},
		{"invoke"},
		{"request"},
		{"backup", "create"},
		{"backup", "list"},
		{"backup", "restore"},
		{"backup", "select"},
		{"backup", "prune"},
		{"backup", "run-due"},
		{"migrate", "detect"},
		{"migrate", "run"},
		{"settings", "set"},
		{"config", "init"},
		{"setup", "admin"},
		{"update", "check"},
		{"update", "download"},
		{"export", "excel"},
		{"export", "pdf"},
		{"import", "students"},
		{"devserver"},
		{"shell", "navigate"},
		{"version"},
	}
	for _, p := range paths {
		cmd, _, err := root.Find(p)
		if err != nil || cmd == root {
			t.Errorf("Command %q not found", strings.Join(p, " "))
			continue
		}
		if cmd.Short == "" {
			t.Errorf("Command %q has no short description", strings.Join(p, " "))
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"config", "transport", "socket", "backend-url", "verbose"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag not found", name)
		}
	}
}

func executeCmd(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Command failed: %v\n%s", err, out.String())
	}
	return out.String()
}

func TestMapCommand(t *testing.T) {
	tests := []struct {
		method   string
		endpoint string
		data     string
		command  string
		args     map[string]any
	}{
		{"GET", "/api/students", "", "get_all_students", map[string]any{}},
		{"get", "/api/students/42?include=notes", "", "get_student", map[string]any{"id": "42", "include": "notes"}},
		{"POST", "/api/students", `{"name":"Ali"}`, "create_student", map[string]any{"name": "Ali"}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.endpoint, func(t *testing.T) {
			args := []string{tt.method, tt.endpoint}
			if tt.data != "" {
				args = append(args, "--data", tt.data)
			}
			out := executeCmd(t, newMapCmd(), args...)

			var got struct {
				Command string         `json:"command"`
				Args    map[string]any `json:"args"`
			}
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("Invalid JSON output %q: %v", out, err)
			}
			if got.Command != tt.command {
				t.Errorf("Expected command %s, got %s", tt.command, got.Command)
			}
			if len(got.Args) != len(tt.args) {
				t.Errorf("Expected args %v, got %v", tt.args, got.Args)
			}
			for k, v := range tt.args {
				if got.Args[k] != v {
					t.Errorf("Expected %s=%v, got %v", k, v, got.Args[k])
				}
			}
		})
	}
}

func TestApplySetting(t *testing.T) {
	s := store.Defaults()

	tests := []struct {
		key   string
		value string
		check func(store.StoreSchema) bool
	}{
		{"theme", "dark", func(s store.StoreSchema) bool { return s.Theme == "dark" }},
		{"minimizeToTray", "false", func(s store.StoreSchema) bool { return !s.MinimizeToTray }},
		{"notifications.dailyReports", "true", func(s store.StoreSchema) bool { return s.Notifications.DailyReports }},
		{"backup.backupTime", "03:30", func(s store.StoreSchema) bool { return s.Backup.BackupTime == "03:30" }},
		{"backup.maxBackups", "5", func(s store.StoreSchema) bool { return s.Backup.MaxBackups == 5 }},
		{"aiProvider.provider", "gemini", func(s store.StoreSchema) bool { return s.AIProvider.Provider == "gemini" }},
	}
	for _, tt := range tests {
		if err := applySetting(&s, tt.key, tt.value); err != nil {
			t.Errorf("applySetting(%s) failed: %v", tt.key, err)
			continue
		}
		if !tt.check(s) {
			t.Errorf("Setting %s=%s not applied", tt.key, tt.value)
		}
	}

	if err := applySetting(&s, "autoStart", "maybe"); err == nil {
		t.Error("Expected error for invalid bool")
	}
	if err := applySetting(&s, "backup.maxBackups", "many"); err == nil {
		t.Error("Expected error for invalid number")
	}
	if err := applySetting(&s, "nope", "1"); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("Expected ErrUnknownSetting, got %v", err)
	}
}

func TestSettingSection(t *testing.T) {
	tests := map[string]string{
		"theme":                     store.SectionAppearance,
		"notifications.missingData": store.SectionNotifications,
		"backup.autoBackup":         store.SectionBackup,
		"aiProvider.model":          store.SectionAIProvider,
		"minimizeToTray":            store.SectionGeneral,
	}
	for key, want := range tests {
		if got := settingSection(key); got != want {
			t.Errorf("settingSection(%s): expected %s, got %s", key, want, got)
		}
	}
}

func TestParseJSONArg(t *testing.T) {
	readFile := func(name string) ([]byte, error) {
		if name == "ogrenci.json" {
			return []byte(`{"name":"Zeynep"}`), nil
		}
		return nil, errors.New("not found")
	}

	v, err := parseJSONArg(`{"a":1}`, nil, readFile)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.(map[string]any)["a"] != float64(1) {
		t.Errorf("Unexpected value %v", v)
	}

	v, err = parseJSONArg("@ogrenci.json", nil, readFile)
	if err != nil || v.(map[string]any)["name"] != "Zeynep" {
		t.Errorf("Expected file contents, got %v (%v)", v, err)
	}

	v, err = parseJSONArg("-", strings.NewReader(`[1,2]`), readFile)
	if err != nil || len(v.([]any)) != 2 {
		t.Errorf("Expected stdin array, got %v (%v)", v, err)
	}

	if v, err := parseJSONArg("", nil, readFile); v != nil || err != nil {
		t.Errorf("Expected nil for empty arg, got %v (%v)", v, err)
	}
	if _, err := parseJSONArg("{broken", nil, readFile); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d): expected %s, got %s", tt.n, tt.want, got)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"evet\n", true},
		{"\n", false},
		{"hayır\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.input), &out, "Devam?")
		if err != nil {
			t.Errorf("confirm(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("confirm(%q): expected %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestChooseBackup(t *testing.T) {
	list := []backup.Info{
		{Name: "database-backup-2026-03-02T02-00-00-000Z.db", Path: "/b/2", Size: 2048, Date: time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)},
		{Name: "database-backup-2026-03-01T02-00-00-000Z.db", Path: "/b/1", Size: 1024, Date: time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"\n", "/b/2", false},
		{"2\n", "/b/1", false},
		{"3\n", "", true},
		{"abc\n", "", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := chooseBackup(bufio.NewReader(strings.NewReader(tt.input)), &out, list)
		if tt.wantErr {
			if err == nil {
				t.Errorf("chooseBackup(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("chooseBackup(%q) failed: %v", tt.input, err)
			continue
		}
		if got.Path != tt.want {
			t.Errorf("chooseBackup(%q): expected %s, got %s", tt.input, tt.want, got.Path)
		}
		if !strings.Contains(out.String(), "  1) ") {
			t.Errorf("Expected numbered listing, got %q", out.String())
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "Rehber360") {
		t.Errorf("Expected app name in version output, got %q", out.String())
	}
}
