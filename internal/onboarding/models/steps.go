package models

import (
	"strconv"
	"strings"

	dErrors "onboarding/pkg/domain-errors"
)

// StepID identifies a step of the onboarding workflow.
type StepID string

const (
	StepWelcome               StepID = "welcome"
	StepAccount               StepID = "account"
	StepPersonal              StepID = "personal"
	StepEmployment            StepID = "employment"
	StepIncome                StepID = "income"
	StepCompanyRepresentative StepID = "company_representative"
	StepCompanyInformation    StepID = "company_information"
	StepUBOList               StepID = "ubo_list"
	StepClientType            StepID = "client_type"
	StepRegulatoryStatus      StepID = "regulatory_status"
	StepTransactionDetails    StepID = "transaction_details"
	StepDocumentVerification  StepID = "document_verification"
	StepEmailCode             StepID = "email_code"
	StepIdentityHandoff       StepID = "identity_handoff"
	StepWalletSetup           StepID = "wallet_setup"
	StepComplete              StepID = "complete"
)

// WelcomeStages is the number of intro screens shown before Account.
const WelcomeStages = 3

var knownSteps = map[StepID]bool{
	StepWelcome: true, StepAccount: true, StepPersonal: true, StepEmployment: true,
	StepIncome: true, StepCompanyRepresentative: true, StepCompanyInformation: true,
	StepUBOList: true, StepClientType: true, StepRegulatoryStatus: true,
	StepTransactionDetails: true, StepDocumentVerification: true, StepEmailCode: true,
	StepIdentityHandoff: true, StepWalletSetup: true, StepComplete: true,
}

func (s StepID) IsValid() bool { return knownSteps[s] }

func (s StepID) String() string { return string(s) }

// Position is a place in the workflow. Stage is only meaningful for Welcome.
type Position struct {
	Step  StepID `json:"step"`
	Stage int    `json:"stage,omitempty"`
}

// Start is the initial position of every session.
var Start = Position{Step: StepWelcome}

func (p Position) IsTerminal() bool { return p.Step == StepComplete }

// String renders the position as "welcome#1" or "account".
func (p Position) String() string {
	if p.Step == StepWelcome {
		return string(p.Step) + "#" + strconv.Itoa(p.Stage)
	}
	return string(p.Step)
}

// ParsePosition is the inverse of Position.String.
func ParsePosition(s string) (Position, error) {
	step, stage, hasStage := strings.Cut(s, "#")
	p := Position{Step: StepID(step)}
	if !p.Step.IsValid() {
		return Position{}, dErrors.New(dErrors.CodeInvalidInput, "unknown step: "+step)
	}
	if hasStage {
		if p.Step != StepWelcome {
			return Position{}, dErrors.New(dErrors.CodeInvalidInput, "only welcome has stages")
		}
		n, err := strconv.Atoi(stage)
		if err != nil || n < 0 || n >= WelcomeStages {
			return Position{}, dErrors.New(dErrors.CodeInvalidInput, "invalid welcome stage: "+stage)
		}
		p.Stage = n
	}
	return p, nil
}

// AccountType is the branch discriminator chosen at the Account step.
type AccountType string

const (
	AccountIndividual AccountType = "individual"
	AccountLegal      AccountType = "legal"
)

// ParseAccountType validates an account type from external input.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountIndividual, AccountLegal:
		return AccountType(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "account type must be individual or legal")
}
