package localise

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProviderLoader retrieves the component data used to seed a provider.
type ProviderLoader interface {
	Load() (map[string]ComponentData, error)
}

// ProviderLoaderFunc adapts a bare function to the ProviderLoader
// interface.
type ProviderLoaderFunc func() (map[string]ComponentData, error)

func (fn ProviderLoaderFunc) Load() (map[string]ComponentData, error) {
	return fn()
}

// FileLoader reads repository files in YAML or JSON form. Each file holds
// a list of components; components repeated across files merge, with
// later files winning on identifier collisions.
type FileLoader struct {
	paths []string
}

func NewFileLoader(paths ...string) *FileLoader {
	return &FileLoader{paths: append([]string(nil), paths...)}
}

type repositoryFile struct {
	Components []componentFile `json:"components" yaml:"components"`
}

type componentFile struct {
	Name         string                       `json:"name" yaml:"name"`
	Default      string                       `json:"default" yaml:"default"`
	Contributors map[string][]string          `json:"contributors" yaml:"contributors"`
	Strings      map[string]map[string]string `json:"strings" yaml:"strings"`
}

func (l *FileLoader) Load() (map[string]ComponentData, error) {
	if l == nil || len(l.paths) == 0 {
		return nil, errors.New("localise: no loader paths configured")
	}

	merged := make(map[string]ComponentData)

	for _, path := range l.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("localise: read %s: %w", path, err)
		}

		file, err := decodeRepositoryFile(path, data)
		if err != nil {
			return nil, fmt.Errorf("localise: decode %s: %w", path, err)
		}
		mergeComponents(merged, file)
	}

	return merged, nil
}

func decodeRepositoryFile(path string, data []byte) (repositoryFile, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var file repositoryFile
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return repositoryFile{}, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return repositoryFile{}, fmt.Errorf("yaml parse error: %w", err)
		}
	default:
		return repositoryFile{}, fmt.Errorf("unsupported extension %s", ext)
	}
	return file, nil
}

func mergeComponents(merged map[string]ComponentData, file repositoryFile) {
	for _, component := range file.Components {
		if component.Name == "" {
			continue
		}

		target, ok := merged[component.Name]
		if !ok {
			target = ComponentData{
				Strings:      make(map[string]map[string]string),
				Contributors: make(map[string][]string),
			}
		}

		if component.Default != "" {
			target.Default = component.Default
		}

		for language, patterns := range component.Strings {
			bucket := target.Strings[language]
			if bucket == nil {
				bucket = make(map[string]string, len(patterns))
				target.Strings[language] = bucket
			}
			for identifier, pattern := range patterns {
				bucket[identifier] = pattern
			}
		}

		for language, contributors := range component.Contributors {
			target.Contributors[language] = appendUnique(target.Contributors[language], contributors)
		}

		merged[component.Name] = target
	}
}

func appendUnique(existing []string, additions []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, entry := range existing {
		seen[entry] = struct{}{}
	}
	for _, entry := range additions {
		if entry == "" {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		existing = append(existing, entry)
	}
	return existing
}

// NewStaticProviderFromLoader hydrates a StaticProvider using the
// provided loader.
func NewStaticProviderFromLoader(registry *TagRegistry, loader ProviderLoader) (*StaticProvider, error) {
	if loader == nil {
		return NewStaticProvider(registry, nil)
	}

	data, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return NewStaticProvider(registry, data)
}
