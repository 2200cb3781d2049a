package opuspdf

import "time"

// Shared document fixtures modelled on typical repository records.

func articleDocument() *Document {
	return &Document{
		ID:        146,
		Type:      TypeArticle,
		Language:  "en",
		MainTitle: "Nemo enim ipsam voluptatem quia voluptas sit aspernatur aut odit aut fugit",
		MainAbstract: "Sed ut perspiciatis unde omnis iste natus error sit voluptatem " +
			"accusantium doloremque laudantium.",
		PublishedDate: &Date{Year: 2008, Month: 8, Day: 14},
		PublishedYear: 2008,
		Authors: []Person{
			{FirstName: "John", LastName: "Doe", AcademicTitle: "Ph.D."},
			{FirstName: "Jane", LastName: "Roe"},
		},
		PublisherName:  "Italian Society of Psychoeconomics",
		PublisherPlace: "Rome",
		ParentTitles:   []string{"Journal of Latin Psychoeconomics"},
		Volume:         "11",
		Issue:          "2",
		PageFirst:      3,
		PageLast:       4,
		PageCount:      2,
		Identifiers: []Identifier{
			{Type: IdentifierDOI, Value: "10.5555/12345678"},
			{Type: IdentifierURL, Value: "http://psychoceramics.labs.crossref.org/10.5555-12345678.html"},
			{Type: IdentifierISSN, Value: "5555-1234"},
		},
		Licences: []Licence{{
			Name:        "CC BY 4.0",
			NameLong:    "Creative Commons - Attribution 4.0 International",
			LinkLicence: "https://creativecommons.org/licenses/by/4.0/",
			LinkLogo:    "https://licensebuttons.net/l/by/4.0/88x31.png",
		}},
		Collections:        []Collection{{ID: 16, ParentID: 2}},
		PublicationState:   "published",
		ServerDateModified: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func chapterDocument() *Document {
	return &Document{
		ID:            147,
		Type:          TypeBookPart,
		Language:      "en",
		MainTitle:     "Quis autem vel eum iure reprehenderit",
		PublishedDate: &Date{Year: 1990, Month: 2},
		Authors: []Person{
			{FirstName: "John", LastName: "Doe"},
			{FirstName: "J A", LastName: "Roe"},
			{FirstName: "Rachel K.", LastName: "Moe"},
		},
		Editors: []Person{
			{FirstName: "Minnie F", LastName: "Hoe"},
			{FirstName: "Winfried", LastName: "Doe"},
		},
		ParentTitles: []string{"Itaque earum rerum hic tenetur a sapiente delectus – Proceedings of the Latin Psychoeconomics Symposium"},
		Volume:       "22",
		Issue:        "3",
		PageFirst:    44,
		PageLast:     49,
		PageCount:    6,
		Identifiers:  []Identifier{{Type: IdentifierURL, Value: "https://example.org/chapter/147"}},
	}
}

func editedBookDocument() *Document {
	return &Document{
		ID:            148,
		Type:          TypeBook,
		Language:      "en",
		MainTitle:     "Itaque earum rerum hic tenetur a sapiente delectus",
		PublishedDate: &Date{Year: 1994},
		Editors: []Person{
			{FirstName: "M. F.", LastName: "Hoe"},
			{FirstName: "Winfried", LastName: "Doe"},
		},
		ParentTitles: []string{"Itaque earum rerum hic tenetur a sapiente delectus"},
		Volume:       "33",
	}
}

func doctoralThesisDocument() *Document {
	return &Document{
		ID:            149,
		Type:          TypeDoctoralThesis,
		Language:      "de",
		MainTitle:     "Über die Psychoökonomie des Lateinischen",
		PublishedYear: 1996,
		Authors:       []Person{{FirstName: "J.", LastName: "Doe"}},
		ThesisPublishers: []Institute{
			{Name: "Universität Hintertupfing", City: "Hintertupfing"},
		},
		ParentTitles: []string{"Berichte zur Psychoökonomie", "Reports on Psychoeconomics"},
		Volume:       "44",
		PageCount:    202,
		Identifiers: []Identifier{
			{Type: IdentifierISSN, Value: "5555-4321"},
			{Type: IdentifierDOI, Value: "10.5555/87654321"},
			{Type: IdentifierURL, Value: "https://example.org/thesis/149"},
		},
	}
}

// staticConfig is a ConfigValues backed by a map.
type staticConfig map[string]string

func (c staticConfig) Value(key string) string { return c[key] }
