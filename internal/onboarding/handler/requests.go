package handler

import (
	"strings"

	"onboarding/internal/onboarding/models"
)

type fieldsRequest struct {
	Fields models.Fields `json:"fields"`
}

// sanitized trims whitespace from every value except passwords, which are
// taken exactly as typed.
func (r fieldsRequest) sanitized() models.Fields {
	out := make(models.Fields, len(r.Fields))
	for k, v := range r.Fields {
		if k == models.FieldPassword || k == models.FieldConfirmPassword {
			out[k] = v
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

type digitRequest struct {
	Value string `json:"value"`
}

type callbackRequest struct {
	Reference string `json:"reference"`
	Verified  bool   `json:"verified"`
	Reason    string `json:"reason,omitempty"`
}

func (r callbackRequest) outcome() models.IdentityOutcome {
	return models.IdentityOutcome{
		Reference: strings.TrimSpace(r.Reference),
		Verified:  r.Verified,
		Reason:    strings.TrimSpace(r.Reason),
	}
}
