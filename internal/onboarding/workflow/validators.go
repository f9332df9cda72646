package workflow

import (
	"fmt"
	"strings"

	"onboarding/internal/onboarding/models"
)

// Inputs is everything a validator may read. Validators are pure: they never
// write to Inputs and hold no state between calls.
type Inputs struct {
	Record  *models.FormRecord
	Uploads map[models.DocumentType][]models.DocumentUpload
	Code    [models.CodeLength]string
}

// Validator returns the names of the fields that still block the step.
// An empty result means the step may be left forward.
type Validator func(in Inputs) []string

var validators = map[models.StepID]Validator{
	models.StepAccount:               validateAccount,
	models.StepPersonal:              requireFields(models.GroupPersonal, models.FieldFirstName, models.FieldLastName, models.FieldNationality, models.FieldAddress),
	models.StepCompanyRepresentative: requireFields(models.GroupCompanyRepresentative, models.FieldFirstName, models.FieldLastName, models.FieldPosition, models.FieldEmail, models.FieldPhoneNumber),
	models.StepCompanyInformation:    requireFields(models.GroupCompanyInformation, models.FieldCompanyName, models.FieldPlaceOfIncorporation, models.FieldDateOfEstablishment, models.FieldRegistrationNumber),
	models.StepUBOList:               validateUBOs,
	models.StepClientType:            requireFields(models.GroupClientType, models.FieldIndustry, models.FieldOrganizationType),
	models.StepRegulatoryStatus:      validateRegulatoryStatus,
	models.StepTransactionDetails:    requireFields(models.GroupTransactionDetails, models.FieldAnticipatedAnnualAmount),
	models.StepEmployment:            requireFields(models.GroupEmployment, models.FieldOccupation, models.FieldProfession),
	models.StepIncome:                requireFields(models.GroupIncome, models.FieldSourceOfWealth, models.FieldAnnualIncome, models.FieldNetWorth, models.FieldAnnualTransactions),
	models.StepDocumentVerification:  validateDocuments,
	models.StepEmailCode:             validateCode,
	models.StepIdentityHandoff:       validateIdentity,
	models.StepWalletSetup:           requireFields(models.GroupWallet, models.FieldWalletID),
}

// Missing lists what blocks a forward transition out of step. Welcome and
// Complete have no validator and never block.
func Missing(step models.StepID, in Inputs) []string {
	v, ok := validators[step]
	if !ok {
		return nil
	}
	return v(in)
}

// Validate reports whether step may be left forward.
func Validate(step models.StepID, in Inputs) bool {
	return len(Missing(step, in)) == 0
}

// Account only gates on the terms checkbox. Password confirmation and email
// format are left to downstream checks.
func validateAccount(in Inputs) []string {
	if in.Record.Value(models.GroupAccount, models.FieldTermsAccepted) != "true" {
		return []string{models.FieldTermsAccepted}
	}
	return nil
}

func requireFields(g models.Group, keys ...string) Validator {
	return func(in Inputs) []string {
		var missing []string
		for _, key := range keys {
			if strings.TrimSpace(in.Record.Value(g, key)) == "" {
				missing = append(missing, key)
			}
		}
		return missing
	}
}

func validateUBOs(in Inputs) []string {
	var missing []string
	for i, ubo := range in.Record.UBOs() {
		for _, key := range ubo.Missing() {
			missing = append(missing, fmt.Sprintf("ubos[%d].%s", i, key))
		}
	}
	return missing
}

// Each "yes" answer pulls in the name and country of the supervisor or
// exchange.
func validateRegulatoryStatus(in Inputs) []string {
	missing := requireFields(models.GroupRegulatoryStatus,
		models.FieldIsFinanciallySupervised, models.FieldIsListedOnExchange)(in)
	if in.Record.Value(models.GroupRegulatoryStatus, models.FieldIsFinanciallySupervised) == models.AnswerYes {
		missing = append(missing, requireFields(models.GroupRegulatoryStatus,
			models.FieldSupervisoryAuthority, models.FieldSupervisoryCountry)(in)...)
	}
	if in.Record.Value(models.GroupRegulatoryStatus, models.FieldIsListedOnExchange) == models.AnswerYes {
		missing = append(missing, requireFields(models.GroupRegulatoryStatus,
			models.FieldExchangeName, models.FieldExchangeCountry)(in)...)
	}
	return missing
}

// One category with a successful upload is enough, whichever it is.
func validateDocuments(in Inputs) []string {
	for _, docType := range models.DocumentTypesFor(in.Record.AccountType()) {
		for _, u := range in.Uploads[docType] {
			if u.Status == models.UploadSuccess {
				return nil
			}
		}
	}
	return []string{string(models.GroupDocuments)}
}

func validateCode(in Inputs) []string {
	var missing []string
	for i, digit := range in.Code {
		if digit == "" {
			missing = append(missing, fmt.Sprintf("code[%d]", i))
		}
	}
	return missing
}

func validateIdentity(in Inputs) []string {
	if in.Record.Value(models.GroupIdentity, models.FieldStatus) != models.StatusVerified {
		return []string{models.FieldStatus}
	}
	return nil
}
