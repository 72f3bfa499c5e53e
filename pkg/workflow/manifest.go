// Package workflow runs scripted batch jobs against the application and
// vault sessions: check out a set of files, rebuild or freeze them, export
// them, and check them back in, all from one YAML manifest.
package workflow

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/cadforge/solidwrap/pkg/document"
)

// Manifest describes one batch job.
type Manifest struct {
	// Files are the documents the job operates on.
	Files []string `yaml:"files"`

	// Checkout acquires the vault lock on each file before touching it.
	Checkout bool `yaml:"checkout"`

	// Rebuild regenerates each document's feature tree.
	Rebuild bool `yaml:"rebuild"`

	// Freeze locks each document's feature tree against regeneration.
	Freeze bool `yaml:"freeze"`

	// Exports lists export formats (or extensions) to produce per file.
	Exports []string `yaml:"exports"`

	// Checkin releases the vault lock afterwards, recording a new version.
	Checkin bool `yaml:"checkin"`

	// Comment is recorded with checkins.
	Comment string `yaml:"comment"`

	// Destination overrides the export directory.
	Destination string `yaml:"destination"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(raw)
}

// ParseManifest parses and validates manifest YAML.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// Validate checks the manifest for structural problems.
func (m *Manifest) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Files, validation.Required),
		validation.Field(&m.Exports, validation.Each(validation.By(validFormat))),
	)
}

func validFormat(value interface{}) error {
	name, _ := value.(string)
	_, err := document.ParseFormat(name)
	return err
}

// ExportFormats resolves the manifest's export format names.
func (m *Manifest) ExportFormats() ([]document.ExportFormat, error) {
	formats := make([]document.ExportFormat, 0, len(m.Exports))
	for _, name := range m.Exports {
		format, err := document.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}
	return formats, nil
}

// NeedsVault reports whether the job touches the vault session.
func (m *Manifest) NeedsVault() bool {
	return m.Checkout || m.Checkin
}

// NeedsApplication reports whether the job touches the application session.
func (m *Manifest) NeedsApplication() bool {
	return m.Rebuild || m.Freeze || len(m.Exports) > 0
}
