// Package documents tracks the files selected under each document type of a
// session, enforces the per-type upload policy and moves accepted content to
// the content uploader.
package documents

import (
	"slices"

	"onboarding/internal/onboarding/models"
	"onboarding/pkg/platform/strings"
)

// DefaultMaxSizeBytes caps a single document file.
const DefaultMaxSizeBytes int64 = 10 << 20

var defaultMimeTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// Policies maps each document type to its upload policy.
type Policies map[models.DocumentType]models.DocumentTypeConfig

// DefaultPolicies returns the policy set for every offered category.
// Identity documents take a front and back side; corporate documents may
// span several files.
func DefaultPolicies() Policies {
	p := make(Policies)
	for _, t := range models.DocumentTypesFor(models.AccountIndividual) {
		p[t] = NewPolicy(2, DefaultMaxSizeBytes, defaultMimeTypes...)
	}
	for _, t := range models.DocumentTypesFor(models.AccountLegal) {
		p[t] = NewPolicy(5, DefaultMaxSizeBytes, defaultMimeTypes...)
	}
	return p
}

// NewPolicy builds a policy with normalized MIME types.
func NewPolicy(maxFiles int, maxSizeBytes int64, mimeTypes ...string) models.DocumentTypeConfig {
	return models.DocumentTypeConfig{
		MaxFiles:         maxFiles,
		AllowedMimeTypes: strings.DedupeAndTrimLower(mimeTypes),
		MaxSizeBytes:     maxSizeBytes,
	}
}

// WithMaxSize returns a copy of p with every category capped at maxSizeBytes.
func (p Policies) WithMaxSize(maxSizeBytes int64) Policies {
	out := make(Policies, len(p))
	for t, cfg := range p {
		cfg.AllowedMimeTypes = slices.Clone(cfg.AllowedMimeTypes)
		cfg.MaxSizeBytes = maxSizeBytes
		out[t] = cfg
	}
	return out
}

// allows reports whether mimeType is accepted. Parameters such as
// "; charset=" are ignored.
func allows(cfg models.DocumentTypeConfig, mimeType string) bool {
	return slices.Contains(cfg.AllowedMimeTypes, strings.MediaType(mimeType))
}
