package opuspdf

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
)

// ConfigValues exposes repository settings by dotted key.
type ConfigValues interface {
	Value(dottedKey string) string
}

// DefaultConfigKeys are the settings exported as config-* variables when
// MetadataSettings.ConfigKeys is nil.
var DefaultConfigKeys = []string{"name", "url"}

// MetadataSettings configures the general metadata mapper.
type MetadataSettings struct {
	Config     ConfigValues // Source of config-* values, may be nil
	ConfigKeys []string     // Dotted keys exported as config-<key>; nil means DefaultConfigKeys, empty exports none
	LogosDir   string       // Directory holding licence logo images
}

// MetadataMapper maps documents to the flat metadata map passed to pandoc
// with --metadata-file.
type MetadataMapper struct {
	tempDir  string
	settings MetadataSettings
	logger   zerolog.Logger
}

// NewMetadataMapper creates a MetadataMapper writing its files to tempDir.
func NewMetadataMapper(tempDir string, settings MetadataSettings, logger zerolog.Logger) *MetadataMapper {
	if settings.ConfigKeys == nil {
		settings.ConfigKeys = append([]string(nil), DefaultConfigKeys...)
	}
	return &MetadataMapper{tempDir: tempDir, settings: settings, logger: logger}
}

// Metadata returns the template variables for doc. Empty values are omitted.
func (m *MetadataMapper) Metadata(doc *Document) map[string]string {
	meta := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			meta[key] = value
		}
	}

	for _, key := range m.settings.ConfigKeys {
		name := "config-" + strings.ReplaceAll(key, ".", "-")
		value := ""
		if m.settings.Config != nil {
			value = m.settings.Config.Value(key)
		}
		if value == "" {
			m.logger.Debug().Str("key", key).Msg("config value missing, skipping template variable")
			continue
		}
		meta[name] = value
	}

	set("date-meta", ExtendedDateString(doc.PublishedDate))

	persons := doc.Authors
	if len(persons) == 0 {
		persons = doc.Editors
	}
	set("author-meta", PersonsString(persons, false))

	set("title", doc.MainTitle)
	set("abstract", doc.MainAbstract)
	set("lang", doc.Language)

	if licence := doc.MainLicence(); licence != nil {
		set("licence-title", licence.Name)
		set("licence-text", licence.NameLong)
		set("licence-url", licence.LinkLicence)
		set("licence-logo-name", m.logoName(doc, licence.LinkLogo))
	}

	return meta
}

// logoName returns the logo path relative to the logos directory, derived
// from the path of the logo link. Returns "" unless the file exists locally.
func (m *MetadataMapper) logoName(doc *Document, link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		m.logger.Error().Err(err).Int("doc_id", doc.ID).Str("link", link).Msg("invalid licence logo link")
		return ""
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return ""
	}
	if m.settings.LogosDir == "" {
		m.logger.Error().Int("doc_id", doc.ID).Str("logo", name).Msg("licence logos directory not configured")
		return ""
	}
	if !fileutil.FileExists(filepath.Join(m.settings.LogosDir, filepath.FromSlash(name))) {
		m.logger.Error().Int("doc_id", doc.ID).Str("logo", name).Str("dir", m.settings.LogosDir).Msg("licence logo not found")
		return ""
	}
	return name
}

// Generate returns the metadata for doc as a JSON object.
func (m *MetadataMapper) Generate(doc *Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return marshalJSON(m.Metadata(doc))
}

// GenerateFile writes the metadata for doc to {temp}/{tempFilename}-meta.json
// and returns its path. An empty tempFilename defaults to {docId}-{uuid}.
func (m *MetadataMapper) GenerateFile(doc *Document, tempFilename string) (string, error) {
	data, err := m.Generate(doc)
	if err != nil {
		return "", err
	}
	return writeTempFile(m.tempDir, tempName(doc, tempFilename)+metaSuffix, data)
}
