package loam

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/registry"
)

// Loader adapts a Loam repository to the ports.DefinitionSource interface.
// Each document (Markdown with frontmatter, JSON or YAML) holds one wizard.
// A document whose metadata cannot be decoded only affects its own wizard.
type Loader struct {
	Repo   core.Repository
	Logger *slog.Logger
}

// New creates a new Loam adapter.
func New(repo core.Repository) *Loader {
	return &Loader{
		Repo:   repo,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Open initializes a read-only, strict Loam repository at path and wraps it.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across formats.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

// Load resolves a wizard by id, decodes its steps and checks the result.
func (l *Loader) Load(id string) (*domain.WizardDefinition, error) {
	meta, content, err := l.find(context.Background(), id)
	if err != nil {
		return nil, err
	}

	steps, err := registry.DecodeSteps(meta.Steps)
	if err != nil {
		return nil, invalid(id, err)
	}

	def := domain.WizardDefinition{
		ID:          id,
		Title:       meta.Title,
		Description: meta.Description,
		Steps:       steps,
	}
	if def.Description == "" {
		def.Description = strings.TrimSpace(content)
	}

	reg, err := registry.New(def)
	if err != nil {
		return nil, err
	}
	return reg.Load(id)
}

func (l *Loader) find(ctx context.Context, id string) (WizardMetadata, string, error) {
	// Loam resolves "demo" to demo.md, demo.json, etc.
	if doc, err := l.Repo.Get(ctx, id); err == nil {
		meta, err := decodeMetadata(doc.Metadata)
		if err != nil {
			return WizardMetadata{}, "", invalid(id, err)
		}
		if meta.ID == "" || trimExtension(meta.ID) == id {
			return meta, doc.Content, nil
		}
	}

	// The id may come from metadata rather than the file name.
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return WizardMetadata{}, "", fmt.Errorf("loam list failed: %w", err)
	}
	for _, doc := range docs {
		meta, err := decodeMetadata(doc.Metadata)
		if err != nil {
			continue
		}
		if documentID(doc.ID, meta) == id {
			return meta, doc.Content, nil
		}
	}
	return WizardMetadata{}, "", &domain.ConfigurationError{WizardID: id, Err: domain.ErrWizardNotFound}
}

// List returns the ids of every wizard document in the repository.
// Documents whose metadata cannot be decoded are logged and skipped.
func (l *Loader) List() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		meta, err := decodeMetadata(doc.Metadata)
		if err != nil {
			l.logger().Warn("skipping undecodable document", "document", doc.ID, "err", err)
			continue
		}
		if len(meta.Steps) == 0 {
			// Not a wizard (README, notes, ...).
			continue
		}
		id := documentID(doc.ID, meta)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.Logger
}

func invalid(id string, err error) error {
	return &domain.ConfigurationError{WizardID: id, Err: fmt.Errorf("%w: %v", domain.ErrInvalidDefinition, err)}
}

// documentID prefers the id declared in metadata over the file name.
func documentID(docID string, meta WizardMetadata) string {
	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}
	return trimExtension(rawID)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
