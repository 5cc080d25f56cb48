package dialogs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakePlatform struct {
	lastOpen  OpenOptions
	lastSave  SaveOptions
	lastTitle string
	result    string
	results   []string
	err       error
}

func (f *fakePlatform) OpenFile(opts OpenOptions) (string, error) {
	f.lastOpen = opts
	return f.result, f.err
}

func (f *fakePlatform) OpenMultipleFiles(opts OpenOptions) ([]string, error) {
	f.lastOpen = opts
	return f.results, f.err
}

func (f *fakePlatform) OpenDirectory(title string) (string, error) {
	f.lastTitle = title
	return f.result, f.err
}

func (f *fakePlatform) SaveFile(opts SaveOptions) (string, error) {
	f.lastSave = opts
	return f.result, f.err
}

func TestSelectFileDefaults(t *testing.T) {
	p := &fakePlatform{result: "/tmp/ogrenciler.xlsx"}
	s := NewService(p, nil)

	path, err := s.SelectFile(OpenOptions{})
	if err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if path != "/tmp/ogrenciler.xlsx" {
		t.Errorf("Expected selected path, got %s", path)
	}
	if p.lastOpen.Title != "Dosya Seç" {
		t.Errorf("Expected default title, got %s", p.lastOpen.Title)
	}
	if len(p.lastOpen.Filters) != 2 || p.lastOpen.Filters[0].Extensions[0] != "xlsx" {
		t.Errorf("Expected Excel filters, got %+v", p.lastOpen.Filters)
	}
}

func TestSelectMultipleCancelled(t *testing.T) {
	s := NewService(&fakePlatform{}, nil)

	paths, err := s.SelectMultipleFiles(OpenOptions{Title: "Seç"})
	if err != nil {
		t.Fatalf("SelectMultipleFiles failed: %v", err)
	}
	if paths == nil || len(paths) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", paths)
	}
}

func TestSelectDirectoryTitle(t *testing.T) {
	p := &fakePlatform{}
	NewService(p, nil).SelectDirectory("")
	if p.lastTitle != "Klasör Seç" {
		t.Errorf("Expected default title, got %s", p.lastTitle)
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data any
		want string
	}{
		{"string", "merhaba", "merhaba"},
		{"bytes", []byte{0x61, 0x62}, "ab"},
		{"json", map[string]int{"count": 3}, `{"count":3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := filepath.Join(dir, tt.name+".out")
			s := NewService(&fakePlatform{result: target}, nil)

			path, err := s.SaveFile(tt.data, SaveOptions{})
			if err != nil {
				t.Fatalf("SaveFile failed: %v", err)
			}
			if path != target {
				t.Errorf("Expected %s, got %s", target, path)
			}
			got, _ := os.ReadFile(target)
			if string(got) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSaveFileCancelled(t *testing.T) {
	p := &fakePlatform{}
	path, err := NewService(p, nil).SaveFile("x", SaveOptions{})
	if err != nil || path != "" {
		t.Errorf("Expected cancelled save to return empty path, got %q %v", path, err)
	}
	if p.lastSave.Title != "Dosyayı Kaydet" || len(p.lastSave.Filters) != 4 {
		t.Errorf("Expected save defaults, got %+v", p.lastSave)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(path, []byte("veri"), 0644)

	data, err := ReadFile(path)
	if err != nil || string(data) != "veri" {
		t.Errorf("Expected veri, got %q %v", data, err)
	}

	if _, err := ReadFile(path + ".missing"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestValidateExternalURL(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"https://rehber360.com/docs", true},
		{"http://localhost:5000", true},
		{"mailto:destek@rehber360.com", true},
		{"file:///etc/passwd", false},
		{"javascript:alert(1)", false},
		{"https://", false},
		{"/relative/path", false},
	}

	for _, tt := range tests {
		err := ValidateExternalURL(tt.url)
		if tt.ok && err != nil {
			t.Errorf("ValidateExternalURL(%q) = %v, want nil", tt.url, err)
		}
		if !tt.ok && !errors.Is(err, ErrUnsafeURL) {
			t.Errorf("ValidateExternalURL(%q) = %v, want ErrUnsafeURL", tt.url, err)
		}
	}
}

type call struct {
	name string
	args []string
}

func newTestShell(goos string) (*Shell, *[]call, *[]string) {
	var calls []call
	var opened []string
	s := NewShell(func(u string) { opened = append(opened, u) }, nil)
	s.goos = goos
	s.run = func(name string, args ...string) error {
		calls = append(calls, call{name, args})
		return nil
	}
	return s, &calls, &opened
}

func TestOpenExternal(t *testing.T) {
	s, calls, opened := newTestShell("linux")

	if err := s.OpenExternal("https://rehber360.com"); err != nil {
		t.Fatalf("OpenExternal failed: %v", err)
	}
	if len(*opened) != 1 || len(*calls) != 0 {
		t.Errorf("Expected URL opener used, got opened=%v calls=%v", *opened, *calls)
	}
	if err := s.OpenExternal("file:///tmp/x"); !errors.Is(err, ErrUnsafeURL) {
		t.Errorf("Expected ErrUnsafeURL, got %v", err)
	}
}

func TestShowItemInFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yedek.db")
	os.WriteFile(path, nil, 0644)

	tests := []struct {
		goos string
		name string
		arg0 string
	}{
		{"windows", "explorer.exe", "/select," + path},
		{"darwin", "open", "-R"},
		{"linux", "xdg-open", filepath.Dir(path)},
	}

	for _, tt := range tests {
		s, calls, _ := newTestShell(tt.goos)
		if err := s.ShowItemInFolder(path); err != nil {
			t.Fatalf("%s: ShowItemInFolder failed: %v", tt.goos, err)
		}
		if len(*calls) != 1 || (*calls)[0].name != tt.name || (*calls)[0].args[0] != tt.arg0 {
			t.Errorf("%s: unexpected command %+v", tt.goos, *calls)
		}
	}
}

func TestOpenPath(t *testing.T) {
	s, calls, _ := newTestShell("windows")

	if err := s.OpenPath(filepath.Join(t.TempDir(), "missing.pdf")); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}

	dir := t.TempDir()
	if err := s.OpenPath(dir); err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if (*calls)[0].name != "rundll32" || (*calls)[0].args[1] != dir {
		t.Errorf("Unexpected command %+v", (*calls)[0])
	}
}
