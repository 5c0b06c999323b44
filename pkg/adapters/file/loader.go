package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/registry"
)

var definitionExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// LoadDefinitions reads wizard definitions from a YAML/JSON file or from every
// such file under a directory, and returns a checked registry.
//
// A document is either a single wizard (with "id" and "steps") or a
// collection under a top-level "wizards" key, given as a list or as a map
// keyed by wizard id. Multi-document YAML streams are accepted.
func LoadDefinitions(path string) (*registry.Registry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat definitions path: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = definitionFiles(path)
		if err != nil {
			return nil, err
		}
	}

	var defs []domain.WizardDefinition
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		parsed, err := ParseDefinitions(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		defs = append(defs, parsed...)
	}
	return registry.New(defs...)
}

func definitionFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if definitionExts[strings.ToLower(filepath.Ext(p))] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan definitions directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// ParseDefinitions decodes every wizard found in a YAML or JSON document stream.
func ParseDefinitions(data []byte) ([]domain.WizardDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var defs []domain.WizardDefinition
	for {
		var doc map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse definitions: %w", err)
		}
		if doc == nil {
			continue
		}
		parsed, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		defs = append(defs, parsed...)
	}
	return defs, nil
}

func fromDocument(doc map[string]any) ([]domain.WizardDefinition, error) {
	collection, ok := doc["wizards"]
	if !ok {
		def, err := registry.Decode(doc)
		if err != nil {
			return nil, err
		}
		return []domain.WizardDefinition{def}, nil
	}

	switch wizards := collection.(type) {
	case []any:
		defs := make([]domain.WizardDefinition, 0, len(wizards))
		for i, item := range wizards {
			raw, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("wizards[%d] is not a mapping", i)
			}
			def, err := registry.Decode(raw)
			if err != nil {
				return nil, fmt.Errorf("wizards[%d]: %w", i, err)
			}
			defs = append(defs, def)
		}
		return defs, nil

	case map[string]any:
		ids := make([]string, 0, len(wizards))
		for id := range wizards {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		defs := make([]domain.WizardDefinition, 0, len(ids))
		for _, id := range ids {
			raw, ok := wizards[id].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("wizard %s is not a mapping", id)
			}
			def, err := registry.Decode(raw)
			if err != nil {
				return nil, fmt.Errorf("wizard %s: %w", id, err)
			}
			if def.ID == "" {
				def.ID = id
			}
			if def.ID != id {
				return nil, fmt.Errorf("wizard %s declares mismatching id %q", id, def.ID)
			}
			defs = append(defs, def)
		}
		return defs, nil

	default:
		return nil, fmt.Errorf("wizards must be a list or a mapping, got %T", collection)
	}
}
