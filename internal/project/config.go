// Package project models the optional fabr.config.json a template may
// carry at its root. The file drives setup commands and placeholder
// collection for one provisioning run and is removed afterwards.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsonc "github.com/muhammadmuzzammil1998/jsonc"

	"github.com/betterde/fabr/internal/schemas"
)

// ConfigFileName is the fixed name looked up at a generated project's root.
const ConfigFileName = "fabr.config.json"

// Placeholder pairs a literal token with the question used to collect
// its value. Order in the config file is the order of substitution.
type Placeholder struct {
	Key    string `json:"key"`
	Prompt string `json:"prompt"`
}

// Config holds a template's setup instructions. Every field is
// optional; the zero value means "no advanced setup".
type Config struct {
	PreSetupCommand    string        `json:"preSetupCommand,omitempty"`
	PostSetupCommand   string        `json:"postSetupCommand,omitempty"`
	InstallCommand     string        `json:"installCommand,omitempty"`
	PostInstallCommand string        `json:"postInstallCommand,omitempty"`
	Placeholders       []Placeholder `json:"placeholders,omitempty"`
	// Ignore lists doublestar globs, relative to the project root,
	// excluded from placeholder replacement.
	Ignore []string `json:"ignore,omitempty"`
}

// Path returns the config file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// Exists reports whether dir carries a config file.
func Exists(dir string) bool {
	info, err := os.Stat(Path(dir))
	return err == nil && info.Mode().IsRegular()
}

// Load parses dir's config file. Comments and trailing commas are
// tolerated; any other shape violation is an error, which callers
// downgrade to an empty configuration rather than aborting.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ConfigFileName, err)
	}
	clean := jsonc.ToJSON(data)
	if err := schemas.Validate(schemas.Project, clean); err != nil {
		return nil, err
	}
	var c Config
	if err := json.Unmarshal(clean, &c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ConfigFileName, err)
	}
	return &c, nil
}

// Remove deletes dir's config file. A file that is already gone is not
// an error; the point is that it never survives into the final project.
func Remove(dir string) error {
	if err := os.Remove(Path(dir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", ConfigFileName, err)
	}
	return nil
}
