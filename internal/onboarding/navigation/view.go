package navigation

import (
	"time"

	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/workflow"
	id "onboarding/pkg/domain"
)

// View is the read model of a session. The password hash and the raw handoff
// reference never leave the controller; the user gets the handoff URL.
type View struct {
	SessionID   id.SessionID                                    `json:"session_id"`
	Current     models.Position                                 `json:"current"`
	Position    string                                          `json:"position"`
	AccountType models.AccountType                              `json:"account_type"`
	CanAdvance  bool                                            `json:"can_advance"`
	CanGoBack   bool                                            `json:"can_go_back"`
	Missing     []string                                        `json:"missing,omitempty"`
	Path        []string                                        `json:"path"`
	History     []string                                        `json:"history"`
	Groups      map[models.Group]models.Fields                  `json:"groups"`
	UBOs        []models.UBO                                    `json:"ubos"`
	Documents   map[models.DocumentType][]models.DocumentUpload `json:"documents"`
	Offered     []models.DocumentType                           `json:"offered_documents"`
	Code        [models.CodeLength]string                       `json:"code"`
	Submitted   bool                                            `json:"submitted"`
	SubmittedAt *time.Time                                      `json:"submitted_at,omitempty"`
	UpdatedAt   time.Time                                       `json:"updated_at"`
}

func (c *Controller) View() View {
	groups := make(map[models.Group]models.Fields)
	for _, g := range c.record.Visited() {
		fields := c.record.Get(g)
		delete(fields, models.FieldPasswordHash)
		delete(fields, models.FieldHandoffReference)
		groups[g] = fields
	}

	accountType := c.record.AccountType()
	path := make([]string, 0)
	for _, p := range workflow.Sequence(accountType) {
		path = append(path, p.String())
	}
	history := make([]string, 0, c.stack.Len())
	for _, p := range c.stack.Positions() {
		history = append(history, p.String())
	}

	v := View{
		SessionID:   c.sessionID,
		Current:     c.current,
		Position:    c.current.String(),
		AccountType: accountType,
		CanAdvance:  c.CanAdvance(),
		CanGoBack:   c.CanGoBack(),
		Missing:     c.Missing(),
		Path:        path,
		History:     history,
		Groups:      groups,
		UBOs:        c.record.UBOs(),
		Documents:   c.tracker.State(),
		Offered:     models.DocumentTypesFor(accountType),
		Code:        c.code.Digits(),
		Submitted:   c.submittedAt != nil,
		UpdatedAt:   c.updatedAt,
	}
	if c.submittedAt != nil {
		at := *c.submittedAt
		v.SubmittedAt = &at
	}
	return v
}
