// Package workflow defines the onboarding step graph, the traversal stack
// used for back-navigation, and the per-step validators that gate forward
// transitions.
//
// Forward routing is a pure function of the current position and the
// account type. Backward routing never consults the graph: it pops the
// stack of positions actually visited.
package workflow

import (
	"slices"

	"onboarding/internal/onboarding/models"
	dErrors "onboarding/pkg/domain-errors"
)

var (
	individualBranch = []models.StepID{
		models.StepPersonal,
		models.StepEmployment,
		models.StepIncome,
	}
	legalBranch = []models.StepID{
		models.StepCompanyRepresentative,
		models.StepCompanyInformation,
		models.StepUBOList,
		models.StepClientType,
		models.StepRegulatoryStatus,
		models.StepTransactionDetails,
	}
	tail = []models.StepID{
		models.StepDocumentVerification,
		models.StepEmailCode,
		models.StepIdentityHandoff,
		models.StepWalletSetup,
		models.StepComplete,
	}
)

// Branch returns the steps specific to an account type, in order.
func Branch(t models.AccountType) []models.StepID {
	if t == models.AccountLegal {
		return slices.Clone(legalBranch)
	}
	return slices.Clone(individualBranch)
}

// BranchSteps returns the steps of both branches. Changing the account type
// clears the groups owned by these steps.
func BranchSteps() []models.StepID {
	return slices.Concat(individualBranch, legalBranch)
}

// Sequence returns every position a session of the given type visits, from
// Welcome stage 0 to Complete.
func Sequence(t models.AccountType) []models.Position {
	seq := make([]models.Position, 0, models.WelcomeStages+1+len(legalBranch)+len(tail))
	for stage := 0; stage < models.WelcomeStages; stage++ {
		seq = append(seq, models.Position{Step: models.StepWelcome, Stage: stage})
	}
	seq = append(seq, models.Position{Step: models.StepAccount})
	for _, step := range slices.Concat(Branch(t), tail) {
		seq = append(seq, models.Position{Step: step})
	}
	return seq
}

// Next returns the position after current for the given account type.
// It reads nothing but its arguments.
func Next(current models.Position, t models.AccountType) (models.Position, error) {
	if current.Step == models.StepWelcome {
		if current.Stage < 0 || current.Stage >= models.WelcomeStages {
			return models.Position{}, dErrors.New(dErrors.CodeInvalidInput, "invalid welcome stage")
		}
		if current.Stage+1 < models.WelcomeStages {
			return models.Position{Step: models.StepWelcome, Stage: current.Stage + 1}, nil
		}
		return models.Position{Step: models.StepAccount}, nil
	}
	if current.IsTerminal() {
		return models.Position{}, dErrors.New(dErrors.CodeConflict, "onboarding is already complete")
	}

	path := slices.Concat([]models.StepID{models.StepAccount}, Branch(t), tail)
	i := slices.Index(path, current.Step)
	if i < 0 {
		// A step of the other branch: the account type changed under it.
		return models.Position{}, dErrors.New(dErrors.CodeInvariantViolation,
			"step "+string(current.Step)+" is not on the "+string(t)+" path")
	}
	return models.Position{Step: path[i+1]}, nil
}

// OnPath reports whether step belongs to the path of the given account type.
func OnPath(step models.StepID, t models.AccountType) bool {
	return slices.ContainsFunc(Sequence(t), func(p models.Position) bool { return p.Step == step })
}

// Owner returns the step that owns a record group.
func Owner(g models.Group) (models.StepID, bool) {
	step, ok := groupOwners[g]
	return step, ok
}

var groupOwners = map[models.Group]models.StepID{
	models.GroupAccount:               models.StepAccount,
	models.GroupPersonal:              models.StepPersonal,
	models.GroupEmployment:            models.StepEmployment,
	models.GroupIncome:                models.StepIncome,
	models.GroupCompanyRepresentative: models.StepCompanyRepresentative,
	models.GroupCompanyInformation:    models.StepCompanyInformation,
	models.GroupUBOList:               models.StepUBOList,
	models.GroupClientType:            models.StepClientType,
	models.GroupRegulatoryStatus:      models.StepRegulatoryStatus,
	models.GroupTransactionDetails:    models.StepTransactionDetails,
	models.GroupDocuments:             models.StepDocumentVerification,
	models.GroupVerificationCode:      models.StepEmailCode,
	models.GroupIdentity:              models.StepIdentityHandoff,
	models.GroupWallet:                models.StepWalletSetup,
}

// OwnedGroups returns the groups owned by the given steps.
func OwnedGroups(steps ...models.StepID) []models.Group {
	var groups []models.Group
	for g, owner := range groupOwners {
		if slices.Contains(steps, owner) {
			groups = append(groups, g)
		}
	}
	slices.Sort(groups)
	return groups
}
