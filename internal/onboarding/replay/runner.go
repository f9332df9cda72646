package replay

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/crypto/bcrypt"

	jwttoken "onboarding/internal/jwt_token"
	"onboarding/internal/onboarding/adapters/identity"
	"onboarding/internal/onboarding/adapters/inprocess"
	"onboarding/internal/onboarding/device"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/navigation"
	"onboarding/internal/onboarding/ports"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// StepResult records the outcome of one scripted action.
type StepResult struct {
	Number   int    `json:"number"`
	Action   string `json:"action"`
	Position string `json:"position"`
	Error    string `json:"error,omitempty"`
	Mismatch string `json:"mismatch,omitempty"`
}

// Report is the outcome of a whole scenario.
type Report struct {
	Scenario           string       `json:"scenario"`
	SessionID          string       `json:"session_id"`
	Steps              []StepResult `json:"steps"`
	Final              string       `json:"final"`
	Submitted          bool         `json:"submitted"`
	CollaboratorErrors []string     `json:"collaborator_errors,omitempty"`
}

// Failed reports whether any step diverged.
func (r *Report) Failed() bool {
	return slices.ContainsFunc(r.Steps, func(s StepResult) bool { return s.Mismatch != "" })
}

// ErrMismatch is returned by Run when the scenario diverged.
var ErrMismatch = errors.New("scenario diverged from expectations")

type run struct {
	c        *navigation.Controller
	identity *identity.Provider
	verdicts *jwttoken.JWTService
}

type action func(ctx context.Context, r *run, st Step) error

var actions = map[string]action{
	"advance": func(ctx context.Context, r *run, _ Step) error {
		_, err := r.c.Advance(ctx)
		return err
	},
	"back": func(_ context.Context, r *run, _ Step) error {
		_, err := r.c.Back()
		return err
	},
	"update": func(_ context.Context, r *run, st Step) error {
		g, err := models.ParseGroup(st.Group)
		if err != nil {
			return err
		}
		_, err = r.c.UpdateGroup(g, models.Fields(st.Fields))
		return err
	},
	"ubo_add": func(_ context.Context, r *run, _ Step) error {
		_, err := r.c.AddUBO()
		return err
	},
	"ubo_update": func(_ context.Context, r *run, st Step) error {
		_, err := r.c.UpdateUBO(st.Index, models.Fields(st.Fields))
		return err
	},
	"ubo_remove": func(_ context.Context, r *run, st Step) error {
		return r.c.RemoveUBO(st.Index)
	},
	"upload": func(_ context.Context, r *run, st Step) error {
		docType, err := models.ParseDocumentType(st.Document)
		if err != nil {
			return err
		}
		files := make([]models.UploadFile, 0, len(st.Files))
		for _, f := range st.Files {
			files = append(files, f.upload())
		}
		_, err = r.c.AddFiles(docType, files, false)
		return err
	},
	"remove_upload": func(_ context.Context, r *run, st Step) error {
		docType, err := models.ParseDocumentType(st.Document)
		if err != nil {
			return err
		}
		uploads := r.c.Uploads()[docType]
		if st.Index < 0 || st.Index >= len(uploads) {
			return dErrors.New(dErrors.CodeNotFound, "no upload at that index")
		}
		return r.c.RemoveFile(docType, uploads[st.Index].ID)
	},
	"digit": func(_ context.Context, r *run, st Step) error {
		_, err := r.c.SetDigit(st.Index, st.Value)
		return err
	},
	"backspace": func(_ context.Context, r *run, st Step) error {
		_, err := r.c.Backspace(st.Index)
		return err
	},
	"resend": func(ctx context.Context, r *run, _ Step) error {
		return r.c.ResendCode(ctx)
	},
	"identity_begin": func(ctx context.Context, r *run, _ Step) error {
		return r.c.BeginIdentity(ctx)
	},
	"identity_complete": func(ctx context.Context, r *run, st Step) error {
		ref := r.c.Record().Value(models.GroupIdentity, models.FieldHandoffReference)
		outcome := models.IdentityOutcome{Reference: ref, Verified: st.Verified, Reason: st.Reason}
		token, err := r.verdicts.GenerateCallbackToken(outcome, identity.DefaultReferenceTTL)
		if err != nil {
			return err
		}
		return r.identity.Complete(ctx, token, outcome)
	},
	"wallet": func(ctx context.Context, r *run, _ Step) error {
		return r.c.ProvisionWallet(ctx)
	},
	"submit": func(_ context.Context, r *run, _ Step) error {
		return r.c.Submit()
	},
}

// Run plays sc against a fresh session backed by in-process collaborators.
// It returns ErrMismatch with the full report when any expectation fails.
func Run(ctx context.Context, sc *Scenario, logger *slog.Logger) (*Report, error) {
	key := make([]byte, 64)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing keys: %w", err)
	}
	signer := jwttoken.NewJWTService(hex.EncodeToString(key[:32]), "onboarding-replay", "onboarding-replay")
	verdicts := jwttoken.NewJWTService(hex.EncodeToString(key[32:]), "identity-provider", "onboarding-replay")
	provider := identity.New(signer, "https://identity.invalid/start",
		identity.WithLogger(logger),
		identity.WithCallbackVerifier(verdicts),
	)

	report := &Report{Scenario: sc.Name}
	var notifier ports.Notifier = inprocess.NewLogNotifier(logger)
	var wallet ports.WalletProvisioner = inprocess.NewWalletProvisioner()
	var idp ports.IdentityProvider = provider
	if slices.Contains(sc.Failing, "notifier") {
		notifier = failing{}
	}
	if slices.Contains(sc.Failing, "wallet") {
		wallet = failing{}
	}
	if slices.Contains(sc.Failing, "identity") {
		idp = failing{}
	}

	sessionID := id.NewSessionID()
	report.SessionID = sessionID.String()
	c := navigation.New(sessionID,
		navigation.WithLogger(logger),
		navigation.WithDevice(device.Detect(sc.UserAgent)),
		navigation.WithBcryptCost(bcrypt.MinCost),
		navigation.WithNotifier(notifier),
		navigation.WithIdentityProvider(idp),
		navigation.WithWalletProvisioner(wallet),
		navigation.WithFailureHook(func(_ context.Context, step models.StepID, err error) {
			report.CollaboratorErrors = append(report.CollaboratorErrors, string(step)+": "+err.Error())
		}),
	)
	provider.OnVerificationComplete(func(_ context.Context, _ id.SessionID, outcome models.IdentityOutcome) error {
		return c.CompleteIdentity(outcome)
	})

	r := &run{c: c, identity: provider, verdicts: verdicts}
	for i, st := range sc.Steps {
		err := actions[st.Action](ctx, r, st)
		res := StepResult{Number: i + 1, Action: st.Action, Position: c.Current().String()}
		if err != nil {
			res.Error = err.Error()
		}
		res.Mismatch = check(st, res.Position, err)
		report.Steps = append(report.Steps, res)
	}
	report.Final = c.Current().String()
	report.Submitted = c.Submitted()

	if report.Failed() {
		return report, ErrMismatch
	}
	return report, nil
}

func check(st Step, position string, err error) string {
	switch {
	case st.ExpectError != "" && err == nil:
		return "expected error " + st.ExpectError + ", got none"
	case st.ExpectError != "" && string(dErrors.CodeOf(err)) != st.ExpectError:
		return "expected error " + st.ExpectError + ", got " + string(dErrors.CodeOf(err))
	case st.ExpectError == "" && err != nil:
		return "unexpected error: " + err.Error()
	case st.Expect != "" && st.Expect != position:
		return "expected position " + st.Expect + ", got " + position
	}
	return ""
}

// failing stands in for a collaborator that is down.
type failing struct{}

var errCollaboratorDown = dErrors.New(dErrors.CodeUnavailable, "collaborator unavailable")

func (failing) SendVerificationCode(context.Context, id.SessionID, string) error {
	return errCollaboratorDown
}

func (failing) Provision(context.Context, id.SessionID, models.AccountType) (string, error) {
	return "", errCollaboratorDown
}

func (failing) BeginVerification(context.Context, id.SessionID, models.HandoffMode) (models.Handoff, error) {
	return models.Handoff{}, errCollaboratorDown
}

func (failing) OnVerificationComplete(ports.VerificationCallback) {}
