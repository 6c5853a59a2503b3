package homepage

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ErrNoEntries is returned when a file parses but holds nothing importable.
var ErrNoEntries = errors.New("no importable entries")

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads a Homepage services.yaml or bookmarks.yaml.
type Loader struct {
	filePath string
}

// NewLoader creates a new Homepage loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads the file and returns its entries. The services layout is tried
// first, then the bookmarks layout.
func (l *Loader) Load() ([]Entry, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}
	return Parse(data)
}

// Parse decodes Homepage YAML from memory.
func Parse(data []byte) ([]Entry, error) {
	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	data = stripTemplateVariables(data)

	var services ServicesConfig
	servicesErr := yaml.Unmarshal(data, &services)
	if servicesErr == nil {
		if entries := MapServices(services); len(entries) > 0 {
			return entries, nil
		}
	}

	var bookmarks BookmarksConfig
	bookmarksErr := yaml.Unmarshal(data, &bookmarks)
	if bookmarksErr == nil {
		if entries := MapBookmarks(bookmarks); len(entries) > 0 {
			return entries, nil
		}
	}

	if servicesErr != nil && bookmarksErr != nil {
		return nil, fmt.Errorf("failed to parse homepage yaml: %w", servicesErr)
	}
	return nil, ErrNoEntries
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
