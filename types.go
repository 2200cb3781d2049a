package opuspdf

import (
	"fmt"
	"time"

	"github.com/OPUS4/opus4-pdf/internal/dateutil"
)

// Document types with a dedicated cover or citation treatment.
const (
	TypeArticle                  = "article"
	TypeBachelorThesis           = "bachelorthesis"
	TypeBook                     = "book"
	TypeBookPart                 = "bookpart"
	TypeConferenceObject         = "conferenceobject"
	TypeContributionToPeriodical = "contributiontoperiodical"
	TypeCourseMaterial           = "coursematerial"
	TypeDiplom                   = "diplom"
	TypeDoctoralThesis           = "doctoralthesis"
	TypeExamen                   = "examen"
	TypeHabilitation             = "habilitation"
	TypeImage                    = "image"
	TypeLecture                  = "lecture"
	TypeMagister                 = "magister"
	TypeMasterThesis             = "masterthesis"
	TypeMovingImage              = "movingimage"
	TypeOther                    = "other"
	TypePeriodical               = "periodical"
	TypePeriodicalPart           = "periodicalpart"
	TypePreprint                 = "preprint"
	TypeReport                   = "report"
	TypeReview                   = "review"
	TypeSound                    = "sound"
	TypeStudyThesis              = "studythesis"
	TypeWorkingPaper             = "workingpaper"
)

// IdentifierType names the kind of a document identifier.
type IdentifierType string

// Identifier types used in citation metadata.
const (
	IdentifierDOI  IdentifierType = "doi"
	IdentifierURL  IdentifierType = "url"
	IdentifierISBN IdentifierType = "isbn"
	IdentifierISSN IdentifierType = "issn"
)

// Date is a publication date with year, month or day precision.
// Zero Month or Day means the part is unknown.
type Date struct {
	Year  int
	Month int
	Day   int
}

// String returns the date in EDTF level 0, "" when the year is unknown.
func (d *Date) String() string {
	if d == nil {
		return ""
	}
	return dateutil.Format(d.Year, d.Month, d.Day)
}

// ParseDate parses an EDTF level 0 date such as 2008, 2008-08 or 2008-08-14.
func ParseDate(s string) (*Date, error) {
	y, m, d, err := dateutil.Parse(s)
	if err != nil {
		return nil, err
	}
	return &Date{Year: y, Month: m, Day: d}, nil
}

// Person is an author or editor of a document.
type Person struct {
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName"`
	AcademicTitle string `json:"academicTitle,omitempty"`
}

// Institute is a thesis publishing institution.
type Institute struct {
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// Licence describes the licence a document is published under.
type Licence struct {
	Name        string `json:"name,omitempty"`
	NameLong    string `json:"nameLong,omitempty"`
	LinkLicence string `json:"linkLicence,omitempty"`
	LinkLogo    string `json:"linkLogo,omitempty"`
}

// Identifier is a typed document identifier.
type Identifier struct {
	Type  IdentifierType `json:"type"`
	Value string         `json:"value"`
}

// Collection is a node of the collection hierarchy. ParentID 0 marks a root.
type Collection struct {
	ID       int    `json:"id"`
	ParentID int    `json:"parentId,omitempty"`
	Name     string `json:"name,omitempty"`
}

// File is a stored file attached to a document.
type File struct {
	ParentID int    // Document id
	PathName string // Stored file name
	Path     string // Absolute path on disk
}

// Document holds the bibliographic data needed to render a cover.
// Pages are 0 when unknown.
type Document struct {
	ID                 int
	Type               string
	Language           string
	MainTitle          string
	MainAbstract       string
	PublishedDate      *Date
	PublishedYear      int
	Authors            []Person
	Editors            []Person
	PublisherName      string
	PublisherPlace     string
	ThesisPublishers   []Institute
	ParentTitles       []string
	Volume             string
	Issue              string
	Edition            string
	PageFirst          int
	PageLast           int
	PageCount          int
	Identifiers        []Identifier
	Licences           []Licence
	Collections        []Collection
	PublicationState   string
	ServerDateModified time.Time
}

// Validate checks the fields every operation relies on.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if d.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidDocument, d.ID)
	}
	return nil
}

// FirstIdentifier returns the value of the first identifier of the given type.
func (d *Document) FirstIdentifier(t IdentifierType) string {
	for _, id := range d.Identifiers {
		if id.Type == t {
			return id.Value
		}
	}
	return ""
}

// MainLicence returns the first licence in document order, nil when there is none.
func (d *Document) MainLicence() *Licence {
	if len(d.Licences) == 0 {
		return nil
	}
	return &d.Licences[0]
}
