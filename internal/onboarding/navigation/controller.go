// Package navigation drives a single onboarding session through the step
// graph. The Controller is the only writer of the traversal stack and the
// only caller of workflow.Next; everything a step may do goes through it.
package navigation

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	"onboarding/internal/onboarding/documents"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/ports"
	"onboarding/internal/onboarding/verification"
	"onboarding/internal/onboarding/workflow"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/email"
)

// FailureHook is told about collaborator failures. The controller records
// the failure in the record where it has a place and never retries.
type FailureHook func(ctx context.Context, step models.StepID, err error)

// Controller holds one session. It is not safe for concurrent use except for
// Advance, which rejects overlapping calls.
type Controller struct {
	sessionID   id.SessionID
	record      *models.FormRecord
	current     models.Position
	stack       workflow.Stack
	tracker     *documents.Tracker
	code        verification.Entry
	device      models.Device
	createdAt   time.Time
	updatedAt   time.Time
	submittedAt *time.Time

	notifier  ports.Notifier
	identity  ports.IdentityProvider
	wallet    ports.WalletProvisioner
	onFailure FailureHook

	policies   documents.Policies
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time

	advancing atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

func WithNotifier(n ports.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithIdentityProvider(p ports.IdentityProvider) Option {
	return func(c *Controller) { c.identity = p }
}

func WithWalletProvisioner(w ports.WalletProvisioner) Option {
	return func(c *Controller) { c.wallet = w }
}

func WithFailureHook(h FailureHook) Option {
	return func(c *Controller) { c.onFailure = h }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithPolicies(p documents.Policies) Option {
	return func(c *Controller) { c.policies = p }
}

// WithBcryptCost sets the cost used to hash the account password.
func WithBcryptCost(cost int) Option {
	return func(c *Controller) { c.bcryptCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithDevice(d models.Device) Option {
	return func(c *Controller) { c.device = d }
}

func newController(opts []Option) *Controller {
	c := &Controller{
		policies:   documents.DefaultPolicies(),
		logger:     slog.Default(),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		device:     models.DeviceDesktop,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New starts a session at the first welcome stage.
func New(sessionID id.SessionID, opts ...Option) *Controller {
	c := newController(opts)
	c.sessionID = sessionID
	c.record = models.NewFormRecord()
	c.current = models.Start
	c.tracker = documents.NewTracker(c.policies, documents.WithClock(c.now))
	c.createdAt = c.now()
	c.updatedAt = c.createdAt
	return c
}

// Transition describes a completed move between positions.
type Transition struct {
	From models.Position `json:"from"`
	To   models.Position `json:"to"`
}

func (c *Controller) SessionID() id.SessionID  { return c.sessionID }
func (c *Controller) Current() models.Position { return c.current }
func (c *Controller) AccountType() models.AccountType {
	return c.record.AccountType()
}

// Record returns a copy of the form record.
func (c *Controller) Record() *models.FormRecord { return c.record.Clone() }

// Submitted reports whether the session was submitted.
func (c *Controller) Submitted() bool { return c.submittedAt != nil }

func (c *Controller) inputs() workflow.Inputs {
	return workflow.Inputs{
		Record:  c.record,
		Uploads: c.tracker.State(),
		Code:    c.code.Digits(),
	}
}

// CanAdvance reports whether the current step may be left forward.
func (c *Controller) CanAdvance() bool {
	return !c.current.IsTerminal() && workflow.Validate(c.current.Step, c.inputs())
}

// Missing lists what blocks the current step.
func (c *Controller) Missing() []string {
	return workflow.Missing(c.current.Step, c.inputs())
}

// CanGoBack reports whether Back would succeed.
func (c *Controller) CanGoBack() bool {
	return c.submittedAt == nil && !c.current.IsTerminal() && c.stack.Len() > 0
}

// Advance validates the current step, moves to the next position and runs
// the entry hook of the step reached. Only one Advance may run at a time.
func (c *Controller) Advance(ctx context.Context) (Transition, error) {
	if !c.advancing.CompareAndSwap(false, true) {
		return Transition{}, dErrors.New(dErrors.CodeTransitionInFlight, "a forward transition is already in progress")
	}
	defer c.advancing.Store(false)

	if err := c.ensureOpen(); err != nil {
		return Transition{}, err
	}
	if c.current.IsTerminal() {
		return Transition{}, dErrors.New(dErrors.CodeConflict, "onboarding is already complete")
	}
	if missing := c.Missing(); len(missing) > 0 {
		code := dErrors.CodeStepIncomplete
		if c.current.Step == models.StepEmailCode {
			code = dErrors.CodeCodeIncomplete
		}
		return Transition{}, dErrors.New(code, c.current.String()+" is incomplete: "+strings.Join(missing, ", "))
	}

	next, err := workflow.Next(c.current, c.record.AccountType())
	if err != nil {
		return Transition{}, err
	}
	t := Transition{From: c.current, To: next}
	c.stack.Push(c.current)
	c.current = next
	c.touch()

	c.enter(ctx, next.Step)
	return t, nil
}

// Back returns to the position actually visited before the current one. It
// does not re-validate anything.
func (c *Controller) Back() (Transition, error) {
	if err := c.ensureOpen(); err != nil {
		return Transition{}, err
	}
	if c.current.IsTerminal() {
		return Transition{}, dErrors.New(dErrors.CodeConflict, "cannot go back from complete")
	}
	prev, ok := c.stack.Pop()
	if !ok {
		return Transition{}, dErrors.New(dErrors.CodeConflict, "already at the first step")
	}
	t := Transition{From: c.current, To: prev}
	c.current = prev
	c.touch()
	return t, nil
}

// Submit finalizes the session. It is only allowed once, at Complete.
func (c *Controller) Submit() error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	if !c.current.IsTerminal() {
		return dErrors.New(dErrors.CodeConflict, "submit is only allowed at complete")
	}
	at := c.now()
	c.submittedAt = &at
	c.updatedAt = at
	return nil
}

// Update reports the effect of a group write.
type Update struct {
	Changed     bool `json:"changed"`
	BranchReset bool `json:"branch_reset"`
}

// UpdateGroup merges fields into g. Only the group owned by the current step
// is writable. Account passwords are stored as a bcrypt hash and the
// confirmation is never kept. A change of account type clears every branch
// group, the UBO list and all document uploads once any of them holds data.
func (c *Controller) UpdateGroup(g models.Group, fields models.Fields) (Update, error) {
	if err := c.ensureStep(g); err != nil {
		return Update{}, err
	}
	if !g.IsFieldGroup() || g == models.GroupIdentity || g == models.GroupWallet {
		return Update{}, dErrors.New(dErrors.CodeForbidden, "group "+string(g)+" cannot be edited directly")
	}

	partial := maps.Clone(fields)
	if g == models.GroupAccount {
		if err := c.normalizeAccount(partial); err != nil {
			return Update{}, err
		}
	}

	before := c.record.AccountType()
	changed, err := c.record.Merge(g, partial)
	if err != nil {
		return Update{}, err
	}
	u := Update{Changed: changed}
	if after := c.record.AccountType(); after != before && c.hasBranchState() {
		c.resetBranch(before, after)
		u.BranchReset = true
	}
	if changed {
		c.touch()
	}
	return u, nil
}

func (c *Controller) normalizeAccount(partial models.Fields) error {
	if t, ok := partial[models.FieldAccountType]; ok {
		if _, err := models.ParseAccountType(t); err != nil {
			return err
		}
	}
	if addr, ok := partial[models.FieldEmail]; ok {
		partial[models.FieldEmail] = email.Normalize(addr)
	}
	delete(partial, models.FieldConfirmPassword)
	if _, ok := partial[models.FieldPasswordHash]; ok {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown field passwordHash for group account")
	}
	password, ok := partial[models.FieldPassword]
	if !ok {
		return nil
	}
	delete(partial, models.FieldPassword)
	if password == "" {
		return nil
	}
	existing := c.record.Value(models.GroupAccount, models.FieldPasswordHash)
	if existing != "" && verifyPassword(password, existing) == nil {
		return nil
	}
	hash, err := hashPassword(password, c.bcryptCost)
	if err != nil {
		return err
	}
	partial[models.FieldPasswordHash] = hash
	return nil
}

// hasBranchState reports whether anything was entered that belongs to a
// branch: branch groups, UBO data or document uploads.
func (c *Controller) hasBranchState() bool {
	visited := c.record.Visited()
	for _, g := range workflow.OwnedGroups(workflow.BranchSteps()...) {
		if slices.Contains(visited, g) {
			return true
		}
	}
	ubos := c.record.UBOs()
	if len(ubos) > 1 || ubos[0] != (models.UBO{}) {
		return true
	}
	return len(c.tracker.Types()) > 0
}

func (c *Controller) resetBranch(from, to models.AccountType) {
	c.record.Clear(workflow.OwnedGroups(workflow.BranchSteps()...)...)
	c.record.ResetUBOs()
	c.tracker.Reset()
	c.logger.Info("onboarding branch reset",
		"session_id", c.sessionID.String(),
		"from", string(from),
		"to", string(to),
	)
}

// UBO list

func (c *Controller) AddUBO() (int, error) {
	if err := c.ensureStep(models.GroupUBOList); err != nil {
		return 0, err
	}
	i := c.record.AddUBO()
	c.touch()
	return i, nil
}

func (c *Controller) UpdateUBO(i int, fields models.Fields) (bool, error) {
	if err := c.ensureStep(models.GroupUBOList); err != nil {
		return false, err
	}
	changed, err := c.record.UpdateUBO(i, fields)
	if err != nil {
		return false, err
	}
	if changed {
		c.touch()
	}
	return changed, nil
}

func (c *Controller) RemoveUBO(i int) error {
	if err := c.ensureStep(models.GroupUBOList); err != nil {
		return err
	}
	if err := c.record.RemoveUBO(i); err != nil {
		return err
	}
	c.touch()
	return nil
}

// Documents

// AddFiles records files under one of the document types offered to the
// session's account type.
func (c *Controller) AddFiles(docType models.DocumentType, files []models.UploadFile, awaitTransfer bool) ([]models.DocumentUpload, error) {
	if err := c.ensureStep(models.GroupDocuments); err != nil {
		return nil, err
	}
	if !slices.Contains(models.DocumentTypesFor(c.record.AccountType()), docType) {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			"document type "+string(docType)+" is not offered to "+string(c.record.AccountType())+" accounts")
	}
	added, err := c.tracker.AddFiles(docType, files, awaitTransfer)
	if err != nil {
		return nil, err
	}
	c.touch()
	return added, nil
}

func (c *Controller) RemoveFile(docType models.DocumentType, uploadID id.UploadID) error {
	if err := c.ensureStep(models.GroupDocuments); err != nil {
		return err
	}
	if err := c.tracker.RemoveFile(docType, uploadID); err != nil {
		return err
	}
	c.touch()
	return nil
}

// ApplyTransfers writes transfer results back by upload id, whatever the
// current step is. Results for removed entries are returned as stale.
func (c *Controller) ApplyTransfers(outcomes []documents.Outcome) (applied, stale []id.UploadID) {
	applied, stale = c.tracker.Apply(outcomes)
	if len(applied) > 0 {
		c.touch()
	}
	return applied, stale
}

// Uploads returns the current upload entries.
func (c *Controller) Uploads() map[models.DocumentType][]models.DocumentUpload {
	return c.tracker.State()
}

// Verification code

func (c *Controller) SetDigit(i int, value string) (int, error) {
	if err := c.ensureStep(models.GroupVerificationCode); err != nil {
		return verification.NoFocus, err
	}
	focus, err := c.code.SetDigit(i, value)
	if err != nil {
		return verification.NoFocus, err
	}
	c.touch()
	return focus, nil
}

func (c *Controller) Backspace(i int) (int, error) {
	if err := c.ensureStep(models.GroupVerificationCode); err != nil {
		return verification.NoFocus, err
	}
	return c.code.OnBackspace(i)
}

// ResendCode asks the notifier for a new code. Digits already entered are
// kept.
func (c *Controller) ResendCode(ctx context.Context) error {
	if err := c.ensureStep(models.GroupVerificationCode); err != nil {
		return err
	}
	c.sendCode(ctx)
	return nil
}

// CodeDigits returns the entered digits.
func (c *Controller) CodeDigits() [models.CodeLength]string { return c.code.Digits() }

func (c *Controller) ensureOpen() error {
	if c.submittedAt != nil {
		return dErrors.New(dErrors.CodeConflict, "onboarding was already submitted")
	}
	return nil
}

// ensureStep rejects writes to g unless the current step owns it.
func (c *Controller) ensureStep(g models.Group) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	owner, ok := workflow.Owner(g)
	if !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown field group: "+string(g))
	}
	if owner != c.current.Step {
		return dErrors.New(dErrors.CodeConflict,
			"group "+string(g)+" is not editable at step "+c.current.String())
	}
	return nil
}

func (c *Controller) touch() {
	c.updatedAt = c.now()
}
