package catalog

import (
	"fmt"
	"time"

	opuspdf "github.com/OPUS4/opus4-pdf"
)

// Record kinds of an import line.
const (
	KindDocument   = "document"
	KindCollection = "collection"
)

// Record is one line of an import file. Exactly one of Document or
// Collection is set, matching Kind.
type Record struct {
	Kind       string              `json:"kind"`
	Document   *DocumentRecord     `json:"document,omitempty"`
	Collection *opuspdf.Collection `json:"collection,omitempty"`
}

// FileRecord is a stored file of a document. A relative Path is resolved
// against the catalog's files directory as {filesDir}/{docId}/{path}.
type FileRecord struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// DocumentRecord is the stored form of a document.
type DocumentRecord struct {
	ID               int                  `json:"id"`
	Type             string               `json:"type,omitempty"`
	Language         string               `json:"language,omitempty"`
	Title            string               `json:"title,omitempty"`
	Abstract         string               `json:"abstract,omitempty"`
	Published        string               `json:"published,omitempty"` // EDTF level 0
	Year             int                  `json:"year,omitempty"`
	Authors          []opuspdf.Person     `json:"authors,omitempty"`
	Editors          []opuspdf.Person     `json:"editors,omitempty"`
	Publisher        string               `json:"publisher,omitempty"`
	PublisherPlace   string               `json:"publisherPlace,omitempty"`
	ThesisPublishers []opuspdf.Institute  `json:"thesisPublishers,omitempty"`
	ParentTitles     []string             `json:"parentTitles,omitempty"`
	Volume           string               `json:"volume,omitempty"`
	Issue            string               `json:"issue,omitempty"`
	Edition          string               `json:"edition,omitempty"`
	PageFirst        int                  `json:"pageFirst,omitempty"`
	PageLast         int                  `json:"pageLast,omitempty"`
	PageCount        int                  `json:"pageCount,omitempty"`
	Identifiers      []opuspdf.Identifier `json:"identifiers,omitempty"`
	Licences         []opuspdf.Licence    `json:"licences,omitempty"`
	Collections      []int                `json:"collections,omitempty"`
	State            string               `json:"state,omitempty"`
	Modified         time.Time            `json:"modified"`
	Files            []FileRecord         `json:"files,omitempty"`
}

func (r *Record) validate() error {
	switch r.Kind {
	case KindDocument:
		if r.Document == nil {
			return fmt.Errorf("%w: document record without document", ErrInvalidRecord)
		}
		return r.Document.validate()
	case KindCollection:
		if r.Collection == nil || r.Collection.ID <= 0 {
			return fmt.Errorf("%w: collection record needs a positive id", ErrInvalidRecord)
		}
		if r.Collection.ParentID == r.Collection.ID {
			return fmt.Errorf("%w: collection %d is its own parent", ErrInvalidRecord, r.Collection.ID)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, r.Kind)
	}
}

func (d *DocumentRecord) validate() error {
	if d.ID <= 0 {
		return fmt.Errorf("%w: document id must be positive, got %d", ErrInvalidRecord, d.ID)
	}
	if d.Published != "" {
		if _, err := opuspdf.ParseDate(d.Published); err != nil {
			return fmt.Errorf("%w: document %d: %w", ErrInvalidRecord, d.ID, err)
		}
	}
	for _, f := range d.Files {
		if f.Name == "" {
			return fmt.Errorf("%w: document %d: file without name", ErrInvalidRecord, d.ID)
		}
	}
	return nil
}

// document converts the record. Collections carry ids only; the catalog
// fills in their parents.
func (d *DocumentRecord) document() *opuspdf.Document {
	doc := &opuspdf.Document{
		ID:                 d.ID,
		Type:               d.Type,
		Language:           d.Language,
		MainTitle:          d.Title,
		MainAbstract:       d.Abstract,
		PublishedYear:      d.Year,
		Authors:            d.Authors,
		Editors:            d.Editors,
		PublisherName:      d.Publisher,
		PublisherPlace:     d.PublisherPlace,
		ThesisPublishers:   d.ThesisPublishers,
		ParentTitles:       d.ParentTitles,
		Volume:             d.Volume,
		Issue:              d.Issue,
		Edition:            d.Edition,
		PageFirst:          d.PageFirst,
		PageLast:           d.PageLast,
		PageCount:          d.PageCount,
		Identifiers:        d.Identifiers,
		Licences:           d.Licences,
		PublicationState:   d.State,
		ServerDateModified: d.Modified,
	}
	if d.Published != "" {
		// Validated on import.
		doc.PublishedDate, _ = opuspdf.ParseDate(d.Published)
		if doc.PublishedYear == 0 && doc.PublishedDate != nil {
			doc.PublishedYear = doc.PublishedDate.Year
		}
	}
	return doc
}
