package opuspdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// cslTypes maps document types to CSL item types. Some mappings are approximate
// (coursematerial, image, lecture, other, periodicalpart, preprint, sound,
// workingpaper).
var cslTypes = map[string]string{
	TypeArticle:                  "article-journal",
	TypeBachelorThesis:           "thesis",
	TypeBook:                     "book",
	TypeBookPart:                 "chapter",
	TypeConferenceObject:         "paper-conference",
	TypeContributionToPeriodical: "article",
	TypeCourseMaterial:           "document",
	TypeDiplom:                   "thesis",
	TypeDoctoralThesis:           "thesis",
	TypeExamen:                   "thesis",
	TypeHabilitation:             "thesis",
	TypeImage:                    "graphic",
	TypeLecture:                  "speech",
	TypeMagister:                 "thesis",
	TypeMasterThesis:             "thesis",
	TypeMovingImage:              "motion_picture",
	TypeOther:                    "document",
	TypePeriodical:               "periodical",
	TypePeriodicalPart:           "collection",
	TypePreprint:                 "manuscript",
	TypeReport:                   "report",
	TypeReview:                   "review",
	TypeSound:                    "song",
	TypeStudyThesis:              "thesis",
	TypeWorkingPaper:             "article",
}

// Document types whose first parent title names a container (journal, book,
// proceedings) rather than a series.
var containerTypes = map[string]bool{
	TypeArticle:                  true,
	TypeBookPart:                 true,
	TypeConferenceObject:         true,
	TypeContributionToPeriodical: true,
	TypeReview:                   true,
	TypeWorkingPaper:             true,
}

// CSLType returns the CSL item type for a document type, "" when unmapped.
func CSLType(docType string) string {
	return cslTypes[docType]
}

// HasContainer reports whether documents of the given type are parts of a container.
func HasContainer(docType string) bool {
	return containerTypes[docType]
}

// CSLName is a CSL name variable.
type CSLName struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family,omitempty"`
}

// CSLDate is a CSL date variable in raw (EDTF) form.
type CSLDate struct {
	Raw string `json:"raw"`
}

// CSLItem is a CSL JSON citation record.
type CSLItem struct {
	ID              string    `json:"id"`
	Type            string    `json:"type,omitempty"`
	Language        string    `json:"language,omitempty"`
	Title           string    `json:"title,omitempty"`
	Abstract        string    `json:"abstract,omitempty"`
	Author          []CSLName `json:"author,omitempty"`
	Editor          []CSLName `json:"editor,omitempty"`
	Issued          *CSLDate  `json:"issued,omitempty"`
	Status          string    `json:"status,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	PublisherPlace  string    `json:"publisher-place,omitempty"`
	ContainerTitle  string    `json:"container-title,omitempty"`
	CollectionTitle string    `json:"collection-title,omitempty"`
	Edition         string    `json:"edition,omitempty"`
	Volume          string    `json:"volume,omitempty"`
	Issue           string    `json:"issue,omitempty"`
	Page            string    `json:"page,omitempty"`
	PageFirst       int       `json:"page-first,omitempty"`
	NumberOfPages   int       `json:"number-of-pages,omitempty"`
	DOI             string    `json:"DOI,omitempty"`
	URL             string    `json:"URL,omitempty"`
	ISBN            string    `json:"ISBN,omitempty"`
	ISSN            string    `json:"ISSN,omitempty"`
}

// CitationMapper maps documents to CSL JSON, the bibliography format
// consumed by pandoc's citeproc.
type CitationMapper struct {
	tempDir string
}

// NewCitationMapper creates a CitationMapper writing its files to tempDir.
func NewCitationMapper(tempDir string) *CitationMapper {
	return &CitationMapper{tempDir: tempDir}
}

// Item builds the CSL record for doc.
func (m *CitationMapper) Item(doc *Document) CSLItem {
	item := CSLItem{
		ID:       strconv.Itoa(doc.ID),
		Type:     CSLType(doc.Type),
		Language: doc.Language,
		Title:    doc.MainTitle,
		Abstract: doc.MainAbstract,
		Author:   cslNames(doc.Authors),
		Editor:   cslNames(doc.Editors),
		Status:   doc.PublicationState,
		Edition:  doc.Edition,
		Volume:   doc.Volume,
		Issue:    doc.Issue,
		DOI:      doc.FirstIdentifier(IdentifierDOI),
		URL:      doc.FirstIdentifier(IdentifierURL),
		ISBN:     doc.FirstIdentifier(IdentifierISBN),
		ISSN:     doc.FirstIdentifier(IdentifierISSN),
	}

	if issued := ExtendedDateString(doc.PublishedDate); issued != "" {
		item.Issued = &CSLDate{Raw: issued}
	} else if doc.PublishedYear > 0 {
		item.Issued = &CSLDate{Raw: strconv.Itoa(doc.PublishedYear)}
	}

	item.Publisher = doc.PublisherName
	item.PublisherPlace = doc.PublisherPlace
	if item.Publisher == "" && len(doc.ThesisPublishers) > 0 {
		item.Publisher = doc.ThesisPublishers[0].Name
		item.PublisherPlace = doc.ThesisPublishers[0].City
	}

	if len(doc.ParentTitles) > 0 {
		if HasContainer(doc.Type) {
			item.ContainerTitle = doc.ParentTitles[0]
		} else {
			item.CollectionTitle = doc.ParentTitles[0]
		}
	}

	if doc.PageFirst > 0 {
		item.Page = strconv.Itoa(doc.PageFirst)
		if doc.PageLast > 0 {
			item.Page += "-" + strconv.Itoa(doc.PageLast)
		}
		item.PageFirst = doc.PageFirst
	}
	item.NumberOfPages = doc.PageCount

	return item
}

// Generate returns the CSL JSON array holding the record for doc.
func (m *CitationMapper) Generate(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	return marshalJSON([]CSLItem{m.Item(doc)})
}

// GenerateFile writes the CSL JSON for doc to {temp}/{tempFilename}-csl.json
// and returns its path. An empty tempFilename defaults to {docId}-{uuid}.
func (m *CitationMapper) GenerateFile(doc *Document, tempFilename string) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	data, err := m.Generate(doc)
	if err != nil {
		return "", err
	}
	return writeTempFile(m.tempDir, tempName(doc, tempFilename)+cslSuffix, data)
}

func cslNames(persons []Person) []CSLName {
	if len(persons) == 0 {
		return nil
	}
	names := make([]CSLName, 0, len(persons))
	for _, p := range persons {
		names = append(names, CSLName{Given: p.FirstName, Family: p.LastName})
	}
	return names
}

// marshalJSON encodes v without HTML escaping so titles stay readable in
// the intermediate files.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
