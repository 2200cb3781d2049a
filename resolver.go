package opuspdf

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/OPUS4/opus4-pdf/internal/assets"
	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// maxCollectionDepth bounds the walk up the collection hierarchy.
const maxCollectionDepth = 64

// CollectionLookup returns collections by id, used to walk from a
// document's collections up to the root.
type CollectionLookup interface {
	Collection(ctx context.Context, id int) (Collection, error)
}

// CollectionMap is an in-memory CollectionLookup.
type CollectionMap map[int]Collection

// Collection implements CollectionLookup.
func (m CollectionMap) Collection(_ context.Context, id int) (Collection, error) {
	c, ok := m[id]
	if !ok {
		return Collection{}, fmt.Errorf("%w: %d", ErrCollectionNotFound, id)
	}
	return c, nil
}

var _ CollectionLookup = CollectionMap(nil)

// ResolverSettings configures template resolution.
type ResolverSettings struct {
	Default             string           // Template used when nothing more specific matches
	CollectionTemplates map[int]string   // Template configured per collection id
	Lookup              CollectionLookup // Parent lookups, nil disables inheritance
}

// TemplateResolver picks the cover template for a document.
type TemplateResolver struct {
	templates *assets.TemplateDir
	settings  ResolverSettings
	logger    zerolog.Logger
}

// NewTemplateResolver creates a TemplateResolver. templates may be nil when no
// templates directory is available; only absolute template paths resolve then.
func NewTemplateResolver(templates *assets.TemplateDir, settings ResolverSettings, logger zerolog.Logger) *TemplateResolver {
	return &TemplateResolver{templates: templates, settings: settings, logger: logger}
}

// Resolve returns the absolute path of the template to use for doc.
//
// Precedence: requested as an absolute path, requested relative to the
// templates directory, the first template configured for the document's
// collections or their ancestors, the configured default. A name that does
// not exist falls through to the next tier. Returns ErrNoTemplate when every
// tier misses.
func (r *TemplateResolver) Resolve(ctx context.Context, doc *Document, requested string) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}

	if requested != "" {
		if filepath.IsAbs(requested) && fileutil.FileExists(requested) {
			return requested, nil
		}
		if path, ok := r.lookupName(requested); ok {
			return path, nil
		}
		r.logger.Warn().Int("doc_id", doc.ID).Str("template", requested).Msg("requested template not found")
	}

	for _, c := range doc.Collections {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		id, name, ok := r.walkCollection(ctx, doc, c)
		if !ok {
			continue
		}
		// The first configured template ends the collection search.
		if path, ok := r.lookupName(name); ok {
			return path, nil
		}
		r.logger.Warn().Int("doc_id", doc.ID).Int("collection", id).Str("template", name).Msg("collection template not found")
		break
	}

	if r.settings.Default != "" {
		if path, ok := r.lookupName(r.settings.Default); ok {
			return path, nil
		}
		r.logger.Warn().Int("doc_id", doc.ID).Str("template", r.settings.Default).Msg("default template not found")
	}

	return "", fmt.Errorf("%w for document %d", ErrNoTemplate, doc.ID)
}

// walkCollection follows parent links from start until a collection with a
// configured template is found and returns its id and template name. It
// reports false when the root is reached first.
func (r *TemplateResolver) walkCollection(ctx context.Context, doc *Document, start Collection) (int, string, bool) {
	visited := make(map[int]bool)
	c := start

	for depth := 0; ; depth++ {
		if depth >= maxCollectionDepth {
			r.logger.Warn().Int("doc_id", doc.ID).Int("collection", start.ID).Msg("collection hierarchy too deep")
			return 0, "", false
		}
		if visited[c.ID] {
			r.logger.Warn().Int("doc_id", doc.ID).Int("collection", c.ID).Msg("cycle in collection hierarchy")
			return 0, "", false
		}
		visited[c.ID] = true

		if name, ok := r.settings.CollectionTemplates[c.ID]; ok && name != "" {
			return c.ID, name, true
		}

		if c.ParentID == 0 || r.settings.Lookup == nil {
			return 0, "", false
		}
		parent, err := r.settings.Lookup.Collection(ctx, c.ParentID)
		if err != nil {
			r.logger.Warn().Err(err).Int("doc_id", doc.ID).Int("collection", c.ParentID).Msg("collection lookup failed")
			return 0, "", false
		}
		c = parent
	}
}

func (r *TemplateResolver) lookupName(name string) (string, bool) {
	if r.templates == nil {
		return "", false
	}
	path, err := r.templates.Resolve(name)
	if err != nil {
		return "", false
	}
	return path, true
}
