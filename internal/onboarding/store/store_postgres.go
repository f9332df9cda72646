package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"

	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/navigation"
	"onboarding/internal/onboarding/workflow"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
	txcontext "onboarding/pkg/platform/tx"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every pending schema migration.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// PostgresStore persists snapshots in onboarding_sessions. Inside RunInTx the
// session row stays locked until the transaction ends.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) (querier, bool) {
	if tx, ok := txcontext.From(ctx); ok {
		return tx, true
	}
	return s.db, false
}

type row struct {
	step        string
	stage       int
	stack       []string
	record      []byte
	documents   []byte
	code        []string
	device      string
	createdAt   time.Time
	updatedAt   time.Time
	submittedAt sql.NullTime
}

func toRow(snap navigation.Snapshot) (row, error) {
	record, err := json.Marshal(snap.Record)
	if err != nil {
		return row{}, fmt.Errorf("encode record: %w", err)
	}
	docs := snap.Documents
	if docs == nil {
		docs = map[models.DocumentType][]models.DocumentUpload{}
	}
	documents, err := json.Marshal(docs)
	if err != nil {
		return row{}, fmt.Errorf("encode documents: %w", err)
	}
	stack := make([]string, 0, snap.Stack.Len())
	for _, p := range snap.Stack.Positions() {
		stack = append(stack, p.String())
	}
	r := row{
		step:      string(snap.Current.Step),
		stage:     snap.Current.Stage,
		stack:     stack,
		record:    record,
		documents: documents,
		code:      snap.Code[:],
		device:    string(snap.Device),
		createdAt: snap.CreatedAt,
		updatedAt: snap.UpdatedAt,
	}
	if snap.SubmittedAt != nil {
		r.submittedAt = sql.NullTime{Time: *snap.SubmittedAt, Valid: true}
	}
	return r, nil
}

func (r row) snapshot(sessionID id.SessionID) (navigation.Snapshot, error) {
	snap := navigation.Snapshot{
		SessionID: sessionID,
		Current:   models.Position{Step: models.StepID(r.step), Stage: r.stage},
		Device:    models.Device(r.device),
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
	positions := make([]models.Position, 0, len(r.stack))
	for _, raw := range r.stack {
		p, err := models.ParsePosition(raw)
		if err != nil {
			return navigation.Snapshot{}, fmt.Errorf("decode stack of session %s: %w", sessionID, err)
		}
		positions = append(positions, p)
	}
	snap.Stack = workflow.NewStack(positions...)
	snap.Record = models.NewFormRecord()
	if err := json.Unmarshal(r.record, snap.Record); err != nil {
		return navigation.Snapshot{}, fmt.Errorf("decode record of session %s: %w", sessionID, err)
	}
	if err := json.Unmarshal(r.documents, &snap.Documents); err != nil {
		return navigation.Snapshot{}, fmt.Errorf("decode documents of session %s: %w", sessionID, err)
	}
	copy(snap.Code[:], r.code)
	if r.submittedAt.Valid {
		at := r.submittedAt.Time
		snap.SubmittedAt = &at
	}
	return snap, nil
}

func (s *PostgresStore) Create(ctx context.Context, snap navigation.Snapshot) error {
	r, err := toRow(snap)
	if err != nil {
		return err
	}
	q, _ := s.q(ctx)
	res, err := q.ExecContext(ctx, `
		INSERT INTO onboarding_sessions
			(session_id, current_step, current_stage, stack, record, documents, code, device, created_at, updated_at, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id) DO NOTHING
	`, snap.SessionID.String(), r.step, r.stage, pq.Array(r.stack), r.record, r.documents,
		pq.Array(r.code), r.device, r.createdAt, r.updatedAt, r.submittedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", snap.SessionID, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID id.SessionID) (navigation.Snapshot, error) {
	q, inTx := s.q(ctx)
	query := `
		SELECT current_step, current_stage, stack, record, documents, code, device, created_at, updated_at, submitted_at
		FROM onboarding_sessions
		WHERE session_id = $1`
	if inTx {
		query += ` FOR UPDATE`
	}
	var r row
	err := q.QueryRowContext(ctx, query, sessionID.String()).Scan(
		&r.step, &r.stage, pq.Array(&r.stack), &r.record, &r.documents,
		pq.Array(&r.code), &r.device, &r.createdAt, &r.updatedAt, &r.submittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return navigation.Snapshot{}, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
		}
		return navigation.Snapshot{}, fmt.Errorf("get session: %w", err)
	}
	return r.snapshot(sessionID)
}

func (s *PostgresStore) Save(ctx context.Context, snap navigation.Snapshot) error {
	r, err := toRow(snap)
	if err != nil {
		return err
	}
	q, _ := s.q(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE onboarding_sessions SET
			current_step = $2, current_stage = $3, stack = $4, record = $5, documents = $6,
			code = $7, device = $8, updated_at = $9, submitted_at = $10
		WHERE session_id = $1
	`, snap.SessionID.String(), r.step, r.stage, pq.Array(r.stack), r.record, r.documents,
		pq.Array(r.code), r.device, r.updatedAt, r.submittedAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", snap.SessionID, sentinel.ErrNotFound)
	}
	return nil
}

// RunInTx runs fn in a database transaction. Get calls made with the
// context passed to fn lock the session row.
func (s *PostgresStore) RunInTx(ctx context.Context, _ id.SessionID, fn func(ctx context.Context) error) error {
	return txcontext.Run(ctx, s.db, fn)
}
