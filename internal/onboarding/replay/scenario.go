// Package replay drives a navigation controller through a scripted
// onboarding scenario and reports where it diverges from expectations.
package replay

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"onboarding/internal/onboarding/models"
)

// Scenario is a scripted onboarding run loaded from YAML.
type Scenario struct {
	Name      string `yaml:"name"`
	UserAgent string `yaml:"user_agent,omitempty"`
	// Failing lists collaborators that fail every call: notifier, identity
	// or wallet.
	Failing []string `yaml:"failing,omitempty"`
	Steps   []Step   `yaml:"steps"`
}

// Step is one user action. Expect is the position after the action, and
// ExpectError the error code the action must fail with.
type Step struct {
	Action      string            `yaml:"action"`
	Group       string            `yaml:"group,omitempty"`
	Fields      map[string]string `yaml:"fields,omitempty"`
	Index       int               `yaml:"index,omitempty"`
	Value       string            `yaml:"value,omitempty"`
	Document    string            `yaml:"document,omitempty"`
	Files       []File            `yaml:"files,omitempty"`
	Verified    bool              `yaml:"verified,omitempty"`
	Reason      string            `yaml:"reason,omitempty"`
	Expect      string            `yaml:"expect,omitempty"`
	ExpectError string            `yaml:"expect_error,omitempty"`
}

// File describes an upload without content; only policy checks apply.
type File struct {
	Name     string `yaml:"name"`
	MimeType string `yaml:"mime_type"`
	Size     int64  `yaml:"size"`
}

func (f File) upload() models.UploadFile {
	return models.UploadFile{Name: f.Name, MimeType: f.MimeType, Size: f.Size}
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a scenario and rejects unknown keys.
func Decode(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	for i, st := range sc.Steps {
		if _, ok := actions[st.Action]; !ok {
			return nil, fmt.Errorf("step %d: unknown action %q", i+1, st.Action)
		}
	}
	return &sc, nil
}
