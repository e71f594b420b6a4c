package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralt/brewpack/internal/models"
	"gopkg.in/yaml.v3"
)

// rawConfig mirrors the YAML file. Presence of required keys is checked on
// the document node, so a key with an empty or null value still counts.
type rawConfig struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	FilesDir    string   `yaml:"files_dir"`
	OutputDir   string   `yaml:"output_dir"`
	DownloadURL string   `yaml:"download_url"`
	Description string   `yaml:"description"`
	Homepage    string   `yaml:"homepage"`
	GitHubRepo  string   `yaml:"github_repo"`
	Codesign    bool     `yaml:"codesign"`
	Commands    []string `yaml:"commands"`
	Caveat      string   `yaml:"caveat"`
	Compression string   `yaml:"compression"`
}

// requiredKeys are the keys that must appear in every config file
var requiredKeys = []string{
	"name",
	"version",
	"files_dir",
	"output_dir",
	"download_url",
	"description",
	"homepage",
	"github_repo",
}

var errEmptyPath = errors.New("config path is empty")

// MissingKeyError reports a required key that is absent from the file
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required key %q", e.Key)
}

// Load reads the YAML file at path and returns the package configuration.
func Load(path string) (*models.PackageConfig, error) {
	if path == "" {
		return nil, models.NewConfigError("", errEmptyPath)
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, models.NewConfigError(path, fmt.Errorf("read config: %w", err))
	}

	cfg, err := Parse(contents)
	if err != nil {
		return nil, models.NewConfigError(path, err)
	}

	return cfg, nil
}

// Parse decodes YAML contents into a PackageConfig and checks required keys.
func Parse(contents []byte) (*models.PackageConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	present := topLevelKeys(&doc)
	for _, key := range requiredKeys {
		if !present[key] {
			return nil, &MissingKeyError{Key: key}
		}
	}

	var raw rawConfig
	if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	compression, err := models.ParseCompression(raw.Compression)
	if err != nil {
		return nil, err
	}

	return &models.PackageConfig{
		Name:        raw.Name,
		Version:     raw.Version,
		Description: raw.Description,
		Homepage:    raw.Homepage,
		GitHubRepo:  raw.GitHubRepo,
		FilesDir:    raw.FilesDir,
		OutputDir:   raw.OutputDir,
		DownloadURL: raw.DownloadURL,
		Codesign:    raw.Codesign,
		Commands:    append([]string(nil), raw.Commands...),
		Caveat:      raw.Caveat,
		Compression: compression,
	}, nil
}

// topLevelKeys returns the keys of the document's root mapping
func topLevelKeys(doc *yaml.Node) map[string]bool {
	keys := make(map[string]bool)
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return keys
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return keys
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keys[root.Content[i].Value] = true
	}
	return keys
}
