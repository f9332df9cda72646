package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"onboarding/internal/jwt_token"
	"onboarding/internal/onboarding/adapters/identity"
	"onboarding/internal/onboarding/handler/mocks"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/navigation"
	"onboarding/internal/onboarding/ratelimit"
	"onboarding/internal/onboarding/service"
	"onboarding/internal/platform/metrics"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	svc      *mocks.MockService
	identity *mocks.MockIdentityCallbacks
	jwt      *jwttoken.JWTService
	router   chi.Router

	sessionID id.SessionID
	token     string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.svc = mocks.NewMockService(s.ctrl)
	s.identity = mocks.NewMockIdentityCallbacks(s.ctrl)
	s.jwt = jwttoken.NewJWTService("test-signing-key", "onboarding", "onboarding-web")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	h := New(s.svc, s.identity, s.jwt, logger, m, WithUploadLimits(1<<20, 4<<20))

	s.router = chi.NewRouter()
	h.Register(s.router)

	s.sessionID = id.NewSessionID()
	token, err := s.jwt.GenerateSessionToken(s.sessionID, time.Hour)
	s.Require().NoError(err)
	s.token = token
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) path(suffix string) string {
	return "/onboarding/sessions/" + s.sessionID.String() + suffix
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) authed(req *http.Request) *http.Request {
	return testutil.WithBearer(req, s.token)
}

func (s *HandlerSuite) TestStart() {
	t := s.T()
	s.svc.EXPECT().Start(gomock.Any()).Return(&service.StartResult{
		Token:   "tok",
		Session: navigation.View{SessionID: s.sessionID},
	}, nil)

	rr := s.do(testutil.NewRequest(t, http.MethodPost, "/onboarding/sessions"))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "token", "tok")
	s.NotEmpty(rr.Header().Get("X-Request-ID"))
}

func (s *HandlerSuite) TestSessionAuth() {
	t := s.T()

	s.Run("missing token", func() {
		rr := s.do(testutil.NewRequest(t, http.MethodGet, s.path("")))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("invalid token", func() {
		req := testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, s.path("")), "garbage")
		rr := s.do(req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("token for another session", func() {
		other := "/onboarding/sessions/" + id.NewSessionID().String()
		rr := s.do(s.authed(testutil.NewRequest(t, http.MethodGet, other)))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("malformed session id", func() {
		rr := s.do(s.authed(testutil.NewRequest(t, http.MethodGet, "/onboarding/sessions/not-a-uuid")))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	s.Run("own session", func() {
		s.svc.EXPECT().Get(gomock.Any(), s.sessionID).Return(navigation.View{SessionID: s.sessionID}, nil)
		rr := s.do(s.authed(testutil.NewRequest(t, http.MethodGet, s.path(""))))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "session_id", s.sessionID.String())
	})
}

func (s *HandlerSuite) TestAdvance() {
	t := s.T()

	s.Run("incomplete step", func() {
		s.svc.EXPECT().Advance(gomock.Any(), s.sessionID).
			Return(nil, dErrors.New(dErrors.CodeStepIncomplete, "account step is incomplete"))
		rr := s.do(s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/advance"))))
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, string(dErrors.CodeStepIncomplete))
	})

	s.Run("concurrent transition", func() {
		s.svc.EXPECT().Advance(gomock.Any(), s.sessionID).
			Return(nil, dErrors.New(dErrors.CodeTransitionInFlight, "a forward transition is already in progress"))
		rr := s.do(s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/advance"))))
		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	s.Run("internal errors hide their message", func() {
		s.svc.EXPECT().Back(gomock.Any(), s.sessionID).
			Return(nil, dErrors.New(dErrors.CodeInternal, "redis exploded"))
		rr := s.do(s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/back"))))
		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		s.NotContains(rr.Body.String(), "redis")
	})
}

func (s *HandlerSuite) TestUpdateGroup() {
	t := s.T()

	s.Run("trims values but not passwords", func() {
		s.svc.EXPECT().UpdateGroup(gomock.Any(), s.sessionID, models.GroupAccount, models.Fields{
			models.FieldEmail:    "anna@example.com",
			models.FieldPassword: " secret ",
		}).Return(&service.UpdateResult{}, nil)

		req := testutil.NewJSONRequest(t, http.MethodPatch, s.path("/groups/account"), map[string]any{
			"fields": map[string]string{
				models.FieldEmail:    "  anna@example.com ",
				models.FieldPassword: " secret ",
			},
		})
		rr := s.do(s.authed(req))
		testutil.AssertStatusOK(t, rr)
	})

	s.Run("unknown group", func() {
		req := testutil.NewJSONRequest(t, http.MethodPatch, s.path("/groups/hobbies"), map[string]any{"fields": map[string]string{}})
		rr := s.do(s.authed(req))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	s.Run("malformed body", func() {
		req := testutil.NewRequestWithBody(t, http.MethodPatch, s.path("/groups/account"), "{")
		rr := s.do(s.authed(req))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

func (s *HandlerSuite) TestUBOs() {
	t := s.T()

	s.svc.EXPECT().AddUBO(gomock.Any(), s.sessionID).Return(navigation.View{}, nil)
	rr := s.do(s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/ubos"))))
	testutil.AssertStatusOK(t, rr)

	s.svc.EXPECT().UpdateUBO(gomock.Any(), s.sessionID, 1, models.Fields{models.FieldFirstName: "Jan"}).
		Return(navigation.View{}, nil)
	req := testutil.NewJSONRequest(t, http.MethodPatch, s.path("/ubos/1"), map[string]any{
		"fields": map[string]string{models.FieldFirstName: "Jan"},
	})
	rr = s.do(s.authed(req))
	testutil.AssertStatusOK(t, rr)

	s.svc.EXPECT().RemoveUBO(gomock.Any(), s.sessionID, 0).
		Return(navigation.View{}, dErrors.New(dErrors.CodeInvariantViolation, "at least one beneficial owner is required"))
	rr = s.do(s.authed(testutil.NewRequest(t, http.MethodDelete, s.path("/ubos/0"))))
	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)

	rr = s.do(s.authed(testutil.NewRequest(t, http.MethodDelete, s.path("/ubos/first"))))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func multipartBody(s *HandlerSuite, files map[string][]byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		header.Set("Content-Type", "application/pdf")
		part, err := mw.CreatePart(header)
		s.Require().NoError(err)
		_, err = part.Write(content)
		s.Require().NoError(err)
	}
	s.Require().NoError(mw.Close())
	return body, mw.FormDataContentType()
}

func (s *HandlerSuite) TestAddDocuments() {
	t := s.T()

	s.Run("passes parsed files to the service", func() {
		body, contentType := multipartBody(s, map[string][]byte{"passport.pdf": []byte("%PDF-1.4 passport")})
		s.svc.EXPECT().AddDocuments(gomock.Any(), s.sessionID, models.DocumentPassport, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.SessionID, _ models.DocumentType, files []models.UploadFile) (*service.DocumentsResult, error) {
				s.Require().Len(files, 1)
				s.Equal("passport.pdf", files[0].Name)
				s.Equal("application/pdf", files[0].MimeType)
				content, err := io.ReadAll(files[0].Content)
				s.Require().NoError(err)
				s.Equal("%PDF-1.4 passport", string(content))
				return &service.DocumentsResult{}, nil
			})

		req := httptest.NewRequest(http.MethodPost, s.path("/documents/passport"), body)
		req.Header.Set("Content-Type", contentType)
		rr := s.do(s.authed(req))
		testutil.AssertStatusOK(t, rr)
	})

	s.Run("no files", func() {
		body, contentType := multipartBody(s, nil)
		req := httptest.NewRequest(http.MethodPost, s.path("/documents/passport"), body)
		req.Header.Set("Content-Type", contentType)
		rr := s.do(s.authed(req))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("unknown document type", func() {
		body, contentType := multipartBody(s, map[string][]byte{"a.pdf": []byte("x")})
		req := httptest.NewRequest(http.MethodPost, s.path("/documents/library_card"), body)
		req.Header.Set("Content-Type", contentType)
		rr := s.do(s.authed(req))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	s.Run("remove", func() {
		uploadID := id.NewUploadID()
		s.svc.EXPECT().RemoveDocument(gomock.Any(), s.sessionID, models.DocumentPassport, uploadID).
			Return(navigation.View{}, nil)
		rr := s.do(s.authed(testutil.NewRequest(t, http.MethodDelete, s.path("/documents/passport/"+uploadID.String()))))
		testutil.AssertStatusOK(t, rr)
	})
}

func (s *HandlerSuite) TestVerificationCode() {
	t := s.T()

	s.svc.EXPECT().SetDigit(gomock.Any(), s.sessionID, 2, "7").Return(&service.CodeResult{Focus: 3}, nil)
	req := testutil.NewJSONRequest(t, http.MethodPut, s.path("/code/2"), map[string]string{"value": "7"})
	rr := s.do(s.authed(req))
	testutil.AssertStatusOK(t, rr)

	s.svc.EXPECT().Backspace(gomock.Any(), s.sessionID, 2).Return(&service.CodeResult{Focus: 1}, nil)
	rr = s.do(s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/code/2/backspace"))))
	testutil.AssertStatusOK(t, rr)

	s.svc.EXPECT().ResendCode(gomock.Any(), s.sessionID).Return(navigation.View{}, nil)
	rr = s.do(s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/code/resend"))))
	testutil.AssertStatusOK(t, rr)
}

func (s *HandlerSuite) TestIdentityCallback() {
	t := s.T()

	s.Run("forwards the outcome with the provider token", func() {
		s.identity.EXPECT().Complete(gomock.Any(), "provider-token", models.IdentityOutcome{
			Reference: "ref-token",
			Verified:  true,
		}).Return(nil)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/onboarding/identity/callback", map[string]any{
			"reference": " ref-token ",
			"verified":  true,
		})
		rr := s.do(testutil.WithBearer(req, "provider-token"))
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	s.Run("without a provider token", func() {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/onboarding/identity/callback", map[string]any{
			"reference": "ref-token",
			"verified":  true,
		})
		rr := s.do(req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})

	s.Run("session token does not authenticate the webhook", func() {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/onboarding/identity/callback", map[string]any{
			"reference": "ref-token",
			"verified":  true,
		})
		s.identity.EXPECT().Complete(gomock.Any(), s.token, gomock.Any()).
			Return(dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		rr := s.do(s.authed(req))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	s.Run("missing reference", func() {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/onboarding/identity/callback", map[string]any{"verified": true})
		rr := s.do(testutil.WithBearer(req, "provider-token"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

// TestIdentityCallback_SelfReportedVerdict runs the webhook against the real
// provider: a user holding only their handoff reference cannot report
// themselves verified.
func (s *HandlerSuite) TestIdentityCallback_SelfReportedVerdict() {
	t := s.T()
	idp := jwttoken.NewJWTService("provider-shared-secret", "identity-provider", "onboarding-web")
	provider := identity.New(s.jwt, "https://idp.example.test/start", identity.WithCallbackVerifier(idp))
	verdicts := 0
	provider.OnVerificationComplete(func(context.Context, id.SessionID, models.IdentityOutcome) error {
		verdicts++
		return nil
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	New(s.svc, provider, s.jwt, logger, nil).Register(router)

	handoff, err := provider.BeginVerification(context.Background(), s.sessionID, models.HandoffQRCode)
	s.Require().NoError(err)
	body := map[string]any{"reference": handoff.Reference, "verified": true}

	for name, token := range map[string]string{
		"no token":      "",
		"session token": s.token,
		"reference":     handoff.Reference,
	} {
		s.Run(name, func() {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/onboarding/identity/callback", body)
			if token != "" {
				req = testutil.WithBearer(req, token)
			}
			rr := testutil.DoRequest(router, req)
			testutil.AssertStatus(t, rr, http.StatusUnauthorized)
		})
	}
	s.Zero(verdicts)

	signed, err := idp.GenerateCallbackToken(models.IdentityOutcome{Reference: handoff.Reference, Verified: true}, time.Minute)
	s.Require().NoError(err)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/onboarding/identity/callback", body)
	rr := testutil.DoRequest(router, testutil.WithBearer(req, signed))
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	s.Equal(1, verdicts)
}

func (s *HandlerSuite) TestCollaboratorRetries() {
	t := s.T()

	s.svc.EXPECT().BeginIdentity(gomock.Any(), s.sessionID).Return(navigation.View{}, nil)
	rr := s.do(s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/identity"))))
	testutil.AssertStatusOK(t, rr)

	s.svc.EXPECT().ProvisionWallet(gomock.Any(), s.sessionID).
		Return(navigation.View{}, dErrors.New(dErrors.CodeConflict, "wallet is already provisioned"))
	rr = s.do(s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/wallet"))))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeConflict))

	s.svc.EXPECT().Submit(gomock.Any(), s.sessionID).Return(navigation.View{Submitted: true}, nil)
	rr = s.do(s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/submit"))))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "submitted", true)
}

func (s *HandlerSuite) TestResendIsRateLimitedPerSession() {
	t := s.T()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := ratelimit.NewLimiter(ratelimit.NewInMemoryStore(), map[ratelimit.Class]ratelimit.Rule{
		ratelimit.ClassCodeResend: {Limit: 1, Window: time.Minute},
	}, logger)
	h := New(s.svc, s.identity, s.jwt, logger, nil, WithRateLimits(ratelimit.NewMiddleware(limiter, logger)))
	router := chi.NewRouter()
	h.Register(router)

	s.svc.EXPECT().ResendCode(gomock.Any(), s.sessionID).Return(navigation.View{}, nil).Times(1)

	rr := testutil.DoRequest(router, s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/code/resend"))))
	testutil.AssertStatusOK(t, rr)

	rr = testutil.DoRequest(router, s.authed(testutil.NewRequest(t, http.MethodPost, s.path("/code/resend"))))
	testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "rate_limit_exceeded")
}
