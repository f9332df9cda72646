package workflow

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"onboarding/internal/onboarding/models"
)

type ValidatorSuite struct {
	suite.Suite
	record *models.FormRecord
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.record = models.NewFormRecord()
}

func (s *ValidatorSuite) inputs() Inputs {
	return Inputs{Record: s.record}
}

func (s *ValidatorSuite) merge(g models.Group, f models.Fields) {
	_, err := s.record.Merge(g, f)
	s.Require().NoError(err)
}

func (s *ValidatorSuite) TestStepsWithoutValidatorNeverBlock() {
	s.True(Validate(models.StepWelcome, s.inputs()))
	s.True(Validate(models.StepComplete, s.inputs()))
}

func (s *ValidatorSuite) TestAccount() {
	s.False(Validate(models.StepAccount, s.inputs()))

	// Mismatched passwords and a bad email do not block the step.
	s.merge(models.GroupAccount, models.Fields{models.FieldEmail: "not-an-email", models.FieldTermsAccepted: "true"})
	s.True(Validate(models.StepAccount, s.inputs()))

	s.merge(models.GroupAccount, models.Fields{models.FieldTermsAccepted: "false"})
	s.Equal([]string{models.FieldTermsAccepted}, Missing(models.StepAccount, s.inputs()))
}

func (s *ValidatorSuite) TestPersonal() {
	s.merge(models.GroupPersonal, models.Fields{models.FieldFirstName: "A", models.FieldLastName: "B"})
	s.Equal([]string{models.FieldNationality, models.FieldAddress}, Missing(models.StepPersonal, s.inputs()))

	s.merge(models.GroupPersonal, models.Fields{models.FieldNationality: "LV", models.FieldAddress: "X"})
	s.True(Validate(models.StepPersonal, s.inputs()))

	s.Run("whitespace counts as empty", func() {
		s.merge(models.GroupPersonal, models.Fields{models.FieldAddress: "  "})
		s.False(Validate(models.StepPersonal, s.inputs()))
	})
}

func (s *ValidatorSuite) TestCompanyInformation() {
	s.merge(models.GroupCompanyInformation, models.Fields{
		models.FieldCompanyName:          "Acme",
		models.FieldPlaceOfIncorporation: "LV",
		models.FieldDateOfEstablishment:  "2001-01-01",
	})
	s.Equal([]string{models.FieldRegistrationNumber}, Missing(models.StepCompanyInformation, s.inputs()))

	// Website and registered address are optional.
	s.merge(models.GroupCompanyInformation, models.Fields{models.FieldRegistrationNumber: "40001"})
	s.True(Validate(models.StepCompanyInformation, s.inputs()))
}

func (s *ValidatorSuite) TestUBOList() {
	s.False(Validate(models.StepUBOList, s.inputs()))

	_, err := s.record.UpdateUBO(0, models.Fields{
		models.FieldFirstName: "A", models.FieldLastName: "B", models.FieldNationality: "LV",
		models.FieldDateOfBirth: "1990-01-01", models.FieldAddress: "X",
	})
	s.Require().NoError(err)
	s.True(Validate(models.StepUBOList, s.inputs()))

	s.Run("every entry must be complete", func() {
		s.record.AddUBO()
		missing := Missing(models.StepUBOList, s.inputs())
		s.Contains(missing, "ubos[1].firstName")
		s.NotContains(missing, "ubos[0].firstName")
	})
}

func (s *ValidatorSuite) TestRegulatoryStatus() {
	s.Run("both answered no", func() {
		s.merge(models.GroupRegulatoryStatus, models.Fields{
			models.FieldIsFinanciallySupervised: models.AnswerNo,
			models.FieldIsListedOnExchange:      models.AnswerNo,
		})
		s.True(Validate(models.StepRegulatoryStatus, s.inputs()))
	})

	s.Run("supervised requires authority and country", func() {
		s.merge(models.GroupRegulatoryStatus, models.Fields{models.FieldIsFinanciallySupervised: models.AnswerYes})
		s.Equal([]string{models.FieldSupervisoryAuthority, models.FieldSupervisoryCountry},
			Missing(models.StepRegulatoryStatus, s.inputs()))

		s.merge(models.GroupRegulatoryStatus, models.Fields{
			models.FieldSupervisoryAuthority: "FCMC",
			models.FieldSupervisoryCountry:   "LV",
		})
		s.True(Validate(models.StepRegulatoryStatus, s.inputs()))
	})

	s.Run("listed requires exchange name and country", func() {
		s.merge(models.GroupRegulatoryStatus, models.Fields{models.FieldIsListedOnExchange: models.AnswerYes})
		s.Equal([]string{models.FieldExchangeName, models.FieldExchangeCountry},
			Missing(models.StepRegulatoryStatus, s.inputs()))
	})
}

func (s *ValidatorSuite) TestSelectionSteps() {
	s.False(Validate(models.StepClientType, s.inputs()))
	s.merge(models.GroupClientType, models.Fields{models.FieldIndustry: "finance", models.FieldOrganizationType: "llc"})
	s.True(Validate(models.StepClientType, s.inputs()))

	s.False(Validate(models.StepTransactionDetails, s.inputs()))
	s.merge(models.GroupTransactionDetails, models.Fields{models.FieldAnticipatedAnnualAmount: "0-100000"})
	s.True(Validate(models.StepTransactionDetails, s.inputs()))

	s.merge(models.GroupEmployment, models.Fields{models.FieldOccupation: "employed"})
	s.Equal([]string{models.FieldProfession}, Missing(models.StepEmployment, s.inputs()))

	s.merge(models.GroupIncome, models.Fields{
		models.FieldSourceOfWealth: "salary", models.FieldAnnualIncome: "1",
		models.FieldNetWorth: "2", models.FieldAnnualTransactions: "3",
	})
	s.True(Validate(models.StepIncome, s.inputs()))
}

func (s *ValidatorSuite) TestDocumentVerification() {
	in := s.inputs()
	s.False(Validate(models.StepDocumentVerification, in))

	in.Uploads = map[models.DocumentType][]models.DocumentUpload{
		models.DocumentPassport:   {{Status: models.UploadError, ErrorReason: models.ReasonTooLarge}},
		models.DocumentNationalID: {{Status: models.UploadUploading}},
	}
	s.False(Validate(models.StepDocumentVerification, in))

	// One successful category is enough.
	in.Uploads[models.DocumentResidencePermit] = []models.DocumentUpload{{Status: models.UploadSuccess}}
	s.True(Validate(models.StepDocumentVerification, in))

	s.Run("categories of the other account type do not count", func() {
		legal := Inputs{
			Record:  s.record,
			Uploads: map[models.DocumentType][]models.DocumentUpload{models.DocumentPassport: {{Status: models.UploadSuccess}}},
		}
		s.merge(models.GroupAccount, models.Fields{models.FieldAccountType: string(models.AccountLegal)})
		s.False(Validate(models.StepDocumentVerification, legal))
	})
}

func (s *ValidatorSuite) TestEmailCode() {
	in := s.inputs()
	in.Code = [models.CodeLength]string{"1", "2", "3", "4", "5", ""}
	s.Equal([]string{"code[5]"}, Missing(models.StepEmailCode, in))

	in.Code[5] = "6"
	s.True(Validate(models.StepEmailCode, in))
}

func (s *ValidatorSuite) TestCollaboratorSteps() {
	s.merge(models.GroupIdentity, models.Fields{models.FieldStatus: models.StatusPending})
	s.False(Validate(models.StepIdentityHandoff, s.inputs()))
	s.merge(models.GroupIdentity, models.Fields{models.FieldStatus: models.StatusVerified})
	s.True(Validate(models.StepIdentityHandoff, s.inputs()))

	s.merge(models.GroupWallet, models.Fields{models.FieldStatus: models.StatusFailed})
	s.False(Validate(models.StepWalletSetup, s.inputs()))
	s.merge(models.GroupWallet, models.Fields{models.FieldWalletID: "w-1", models.FieldStatus: models.StatusReady})
	s.True(Validate(models.StepWalletSetup, s.inputs()))
}
