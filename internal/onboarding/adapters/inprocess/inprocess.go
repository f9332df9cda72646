// Package inprocess holds collaborator adapters that run inside the server
// process. They back local development and tests.
package inprocess

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/ports"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/email"
)

// LogNotifier writes verification code requests to the log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerificationCode(ctx context.Context, sessionID id.SessionID, addr string) error {
	if !email.Valid(addr) {
		return dErrors.New(dErrors.CodeInvalidInput, "a valid email is required to send a verification code")
	}
	n.logger.InfoContext(ctx, "verification code requested",
		"session_id", sessionID.String(),
		"email", addr,
	)
	return nil
}

// WalletProvisioner hands out one wallet per session. Repeated calls for a
// session return the same wallet.
type WalletProvisioner struct {
	mu      sync.Mutex
	wallets map[id.SessionID]string
}

func NewWalletProvisioner() *WalletProvisioner {
	return &WalletProvisioner{wallets: make(map[id.SessionID]string)}
}

func (w *WalletProvisioner) Provision(ctx context.Context, sessionID id.SessionID, accountType models.AccountType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if walletID, ok := w.wallets[sessionID]; ok {
		return walletID, nil
	}
	walletID := fmt.Sprintf("wlt_%s_%s", accountType, uuid.NewString())
	w.wallets[sessionID] = walletID
	return walletID, nil
}

// MemoryUploader stores content in memory, addressed by its SHA-256.
type MemoryUploader struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte)}
}

func (u *MemoryUploader) Upload(ctx context.Context, file models.UploadFile) (ports.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.UploadResult{}, err
	}
	if file.Content == nil {
		return ports.UploadResult{}, dErrors.New(dErrors.CodeInvalidInput, "file has no content")
	}
	var buf bytes.Buffer
	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(&buf, h), file.Content); err != nil {
		return ports.UploadResult{}, fmt.Errorf("read upload content: %w", err)
	}
	hash := hex.EncodeToString(h.Sum(nil))

	u.mu.Lock()
	u.objects[hash] = buf.Bytes()
	u.mu.Unlock()

	return ports.UploadResult{URL: "mem://" + hash, Hash: hash}, nil
}

// Object returns stored content by hash.
func (u *MemoryUploader) Object(hash string) ([]byte, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	b, ok := u.objects[hash]
	return b, ok
}
