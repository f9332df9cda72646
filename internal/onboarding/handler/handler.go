package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,IdentityCallbacks

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"onboarding/internal/onboarding/documents"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/navigation"
	"onboarding/internal/onboarding/ratelimit"
	"onboarding/internal/onboarding/service"
	"onboarding/internal/platform/metrics"
	"onboarding/internal/platform/middleware"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/platform/middleware/auth"
	"onboarding/pkg/platform/middleware/metadata"
	"onboarding/pkg/platform/middleware/requesttime"
	"onboarding/pkg/requestcontext"
)

// Service defines the onboarding operations exposed over HTTP.
type Service interface {
	Start(ctx context.Context) (*service.StartResult, error)
	Get(ctx context.Context, sessionID id.SessionID) (navigation.View, error)
	Advance(ctx context.Context, sessionID id.SessionID) (*service.TransitionResult, error)
	Back(ctx context.Context, sessionID id.SessionID) (*service.TransitionResult, error)
	Submit(ctx context.Context, sessionID id.SessionID) (navigation.View, error)
	UpdateGroup(ctx context.Context, sessionID id.SessionID, g models.Group, fields models.Fields) (*service.UpdateResult, error)
	AddUBO(ctx context.Context, sessionID id.SessionID) (navigation.View, error)
	UpdateUBO(ctx context.Context, sessionID id.SessionID, i int, fields models.Fields) (navigation.View, error)
	RemoveUBO(ctx context.Context, sessionID id.SessionID, i int) (navigation.View, error)
	AddDocuments(ctx context.Context, sessionID id.SessionID, docType models.DocumentType, files []models.UploadFile) (*service.DocumentsResult, error)
	RemoveDocument(ctx context.Context, sessionID id.SessionID, docType models.DocumentType, uploadID id.UploadID) (navigation.View, error)
	SetDigit(ctx context.Context, sessionID id.SessionID, i int, value string) (*service.CodeResult, error)
	Backspace(ctx context.Context, sessionID id.SessionID, i int) (*service.CodeResult, error)
	ResendCode(ctx context.Context, sessionID id.SessionID) (navigation.View, error)
	BeginIdentity(ctx context.Context, sessionID id.SessionID) (navigation.View, error)
	ProvisionWallet(ctx context.Context, sessionID id.SessionID) (navigation.View, error)
}

// IdentityCallbacks receives verdicts from the identity provider. token is
// the provider's bearer token for the verdict.
type IdentityCallbacks interface {
	Complete(ctx context.Context, token string, outcome models.IdentityOutcome) error
}

// filesField is the multipart field carrying document files.
const filesField = "files"

// defaultMaxUploadMemory is how much of a multipart body stays in memory
// before spilling to temporary files.
const defaultMaxUploadMemory = 8 << 20

// Handler serves the onboarding HTTP API.
type Handler struct {
	logger          *slog.Logger
	onboarding      Service
	identity        IdentityCallbacks
	metrics         *metrics.Metrics
	tokens          auth.SessionTokenValidator
	maxUploadMemory int64
	maxUploadBytes  int64
	rateLimits      *ratelimit.Middleware
}

type Option func(*Handler)

// WithUploadLimits bounds multipart bodies. maxBytes caps the whole request.
func WithUploadLimits(maxMemory, maxBytes int64) Option {
	return func(h *Handler) {
		if maxMemory > 0 {
			h.maxUploadMemory = maxMemory
		}
		if maxBytes > 0 {
			h.maxUploadBytes = maxBytes
		}
	}
}

// WithRateLimits limits session starts per client IP and code resends per
// session.
func WithRateLimits(m *ratelimit.Middleware) Option {
	return func(h *Handler) {
		h.rateLimits = m
	}
}

// New creates a new onboarding Handler.
func New(
	onboarding Service,
	identity IdentityCallbacks,
	tokens auth.SessionTokenValidator,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	opts ...Option,
) *Handler {
	h := &Handler{
		logger:          logger,
		onboarding:      onboarding,
		identity:        identity,
		metrics:         metrics,
		tokens:          tokens,
		maxUploadMemory: defaultMaxUploadMemory,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the onboarding routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.LatencyMiddleware(h.metrics))
	router.Use(metadata.ClientMetadata)
	router.Use(requesttime.Middleware)

	router.With(h.limit(ratelimit.ClassSessionStart, ratelimit.ByClientIP)).
		Post("/onboarding/sessions", h.handleStart)
	router.Post("/onboarding/identity/callback", h.handleIdentityCallback)

	router.Route("/onboarding/sessions/{id}", func(sr chi.Router) {
		sr.Use(auth.RequireSession(h.tokens, h.logger))
		sr.Use(h.requireOwnSession)

		sr.Get("/", h.handleGet)
		sr.Post("/advance", h.handleAdvance)
		sr.Post("/back", h.handleBack)
		sr.Post("/submit", h.handleSubmit)
		sr.Patch("/groups/{group}", h.handleUpdateGroup)
		sr.Post("/ubos", h.handleAddUBO)
		sr.Patch("/ubos/{index}", h.handleUpdateUBO)
		sr.Delete("/ubos/{index}", h.handleRemoveUBO)
		sr.Post("/documents/{type}", h.handleAddDocuments)
		sr.Delete("/documents/{type}/{uploadID}", h.handleRemoveDocument)
		sr.With(h.limit(ratelimit.ClassCodeResend, ratelimit.BySession)).
			Post("/code/resend", h.handleResendCode)
		sr.Put("/code/{index}", h.handleSetDigit)
		sr.Post("/code/{index}/backspace", h.handleBackspace)
		sr.Post("/identity", h.handleBeginIdentity)
		sr.Post("/wallet", h.handleProvisionWallet)
	})

	r.Mount("/", router)
}

func (h *Handler) limit(class ratelimit.Class, key ratelimit.KeyFunc) func(http.Handler) http.Handler {
	if h.rateLimits == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.rateLimits.Limit(class, key)
}

// requireOwnSession rejects tokens issued for a different session than the
// one in the path.
func (h *Handler) requireOwnSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		pathID, err := id.ParseSessionID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if pathID != requestcontext.SessionID(ctx) {
			h.logger.WarnContext(ctx, "session token used for another session",
				"request_id", requestcontext.RequestID(ctx),
				"session_id", pathID.String(),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "token does not grant access to this session"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	res, err := h.onboarding.Start(r.Context())
	if err != nil {
		h.fail(w, r, "failed to start onboarding session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.onboarding.Get(r.Context(), sessionFrom(r))
	h.reply(w, r, "failed to load onboarding session", v, err)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	v, err := h.onboarding.Advance(r.Context(), sessionFrom(r))
	h.reply(w, r, "failed to advance", v, err)
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	v, err := h.onboarding.Back(r.Context(), sessionFrom(r))
	h.reply(w, r, "failed to go back", v, err)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	v, err := h.onboarding.Submit(r.Context(), sessionFrom(r))
	h.reply(w, r, "failed to submit onboarding", v, err)
}

func (h *Handler) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	g, err := models.ParseGroup(chi.URLParam(r, "group"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req fieldsRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.onboarding.UpdateGroup(r.Context(), sessionFrom(r), g, req.sanitized())
	h.reply(w, r, "failed to update group", v, err)
}

func (h *Handler) handleAddUBO(w http.ResponseWriter, r *http.Request) {
	v, err := h.onboarding.AddUBO(r.Context(), sessionFrom(r))
	h.reply(w, r, "failed to add beneficial owner", v, err)
}

func (h *Handler) handleUpdateUBO(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	var req fieldsRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.onboarding.UpdateUBO(r.Context(), sessionFrom(r), i, req.sanitized())
	h.reply(w, r, "failed to update beneficial owner", v, err)
}

func (h *Handler) handleRemoveUBO(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	v, err := h.onboarding.RemoveUBO(r.Context(), sessionFrom(r), i)
	h.reply(w, r, "failed to remove beneficial owner", v, err)
}

func (h *Handler) handleAddDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docType, err := models.ParseDocumentType(chi.URLParam(r, "type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	sel, err := documents.Select(r, filesField, h.maxUploadMemory)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer func() {
		if err := sel.Close(); err != nil {
			h.logger.WarnContext(ctx, "failed to release uploaded files",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}()
	files, err := sel.Files()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.onboarding.AddDocuments(ctx, sessionFrom(r), docType, files)
	if err != nil {
		h.fail(w, r, "failed to add documents", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	docType, err := models.ParseDocumentType(chi.URLParam(r, "type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	uploadID, err := id.ParseUploadID(chi.URLParam(r, "uploadID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.onboarding.RemoveDocument(r.Context(), sessionFrom(r), docType, uploadID)
	h.reply(w, r, "failed to remove document", v, err)
}

func (h *Handler) handleSetDigit(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	var req digitRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.onboarding.SetDigit(r.Context(), sessionFrom(r), i, req.Value)
	h.reply(w, r, "failed to set digit", v, err)
}

func (h *Handler) handleBackspace(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	v, err := h.onboarding.Backspace(r.Context(), sessionFrom(r), i)
	h.reply(w, r, "failed to handle backspace", v, err)
}

func (h *Handler) handleResendCode(w http.ResponseWriter, r *http.Request) {
	v, err := h.onboarding.ResendCode(r.Context(), sessionFrom(r))
	h.reply(w, r, "failed to resend code", v, err)
}

func (h *Handler) handleBeginIdentity(w http.ResponseWriter, r *http.Request) {
	v, err := h.onboarding.BeginIdentity(r.Context(), sessionFrom(r))
	h.reply(w, r, "failed to begin identity verification", v, err)
}

func (h *Handler) handleProvisionWallet(w http.ResponseWriter, r *http.Request) {
	v, err := h.onboarding.ProvisionWallet(r.Context(), sessionFrom(r))
	h.reply(w, r, "failed to provision wallet", v, err)
}

func (h *Handler) handleIdentityCallback(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		h.fail(w, r, "identity verdict without provider token",
			dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
		return
	}
	var req callbackRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Reference == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "reference is required"))
		return
	}
	if err := h.identity.Complete(r.Context(), token, req.outcome()); err != nil {
		h.fail(w, r, "failed to record identity verification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionFrom returns the session authorized by requireOwnSession.
func sessionFrom(r *http.Request) id.SessionID {
	return requestcontext.SessionID(r.Context())
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "index must be an integer"))
		return 0, false
	}
	return i, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "invalid onboarding request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) reply(w http.ResponseWriter, r *http.Request, msg string, v any, err error) {
	if err != nil {
		h.fail(w, r, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// fail logs and writes err. Client errors are logged as warnings, anything
// else as an error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	status := httputil.StatusFor(err)
	args := []any{
		"request_id", requestcontext.RequestID(ctx),
		"session_id", requestcontext.SessionID(ctx).String(),
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}
