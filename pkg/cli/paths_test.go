package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewPaths(t *testing.T) {
	t.Setenv(HomeEnv, "")
	paths, err := NewPaths("openai")
	if err != nil {
		t.Fatalf("NewPaths: %v", err)
	}
	if paths.App != "openai" || filepath.Base(paths.Root) != DefaultBaseDir {
		t.Errorf("paths = %+v", paths)
	}

	root := t.TempDir()
	t.Setenv(HomeEnv, root)
	paths, err = NewPaths("openai")
	if err != nil {
		t.Fatalf("NewPaths: %v", err)
	}
	if paths.Root != root {
		t.Errorf("Root = %q, want %q", paths.Root, root)
	}
}

func TestPaths_Layout(t *testing.T) {
	root := t.TempDir()
	paths := &Paths{App: "openai", Root: root}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"AppDir", paths.AppDir(), filepath.Join(root, "openai")},
		{"ConfigFile", paths.ConfigFile(), filepath.Join(root, "openai", "config.yaml")},
		{"DataDir", paths.DataDir(), filepath.Join(root, "openai", "data")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestPaths_ArtifactPath(t *testing.T) {
	paths := &Paths{App: "openai", Root: t.TempDir()}
	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

	got, err := paths.ArtifactPath("speech", "mp3", now)
	if err != nil {
		t.Fatalf("ArtifactPath: %v", err)
	}
	if want := filepath.Join(paths.DataDir(), "speech-20250102-150405.mp3"); got != want {
		t.Errorf("ArtifactPath = %q, want %q", got, want)
	}
	if info, err := os.Stat(paths.DataDir()); err != nil || !info.IsDir() {
		t.Errorf("data dir not created: %v", err)
	}
}
