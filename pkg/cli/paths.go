package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HomeEnv overrides the ~/.openai-tools root.
const HomeEnv = "OPENAI_TOOLS_HOME"

// Paths locates the per-app directories:
//
//	<root>/<app>/config.yaml
//	<root>/<app>/data/
//
// where root is $OPENAI_TOOLS_HOME or ~/.openai-tools.
type Paths struct {
	App  string
	Root string
}

// NewPaths resolves the directories of app.
func NewPaths(app string) (*Paths, error) {
	if root := os.Getenv(HomeEnv); root != "" {
		return &Paths{App: app, Root: root}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{App: app, Root: filepath.Join(home, DefaultBaseDir)}, nil
}

func (p *Paths) AppDir() string {
	return filepath.Join(p.Root, p.App)
}

func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// DataDir holds generated artifacts such as speech audio and images.
func (p *Paths) DataDir() string {
	return filepath.Join(p.AppDir(), "data")
}

// ArtifactPath creates the data directory and returns a fresh path for a
// generated file, e.g. data/speech-20250102-150405.mp3.
func (p *Paths) ArtifactPath(kind, ext string, now time.Time) (string, error) {
	if err := os.MkdirAll(p.DataDir(), 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	name := fmt.Sprintf("%s-%s.%s", kind, now.Format("20060102-150405"), ext)
	return filepath.Join(p.DataDir(), name), nil
}
