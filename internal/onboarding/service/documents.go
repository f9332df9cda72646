package service

import (
	"context"
	"slices"

	"onboarding/internal/onboarding/documents"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/navigation"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/audit"
)

// DocumentsResult reports the entries created by one selection.
type DocumentsResult struct {
	Added   []models.DocumentUpload `json:"added"`
	Session navigation.View         `json:"session"`
}

// AddDocuments registers a selection of files under docType and transfers
// the accepted ones. It runs in three phases so the session lock is never
// held during network transfers:
//
//  1. register the entries (uploading, or rejected with a reason)
//  2. transfer accepted content, bounded by the transfer concurrency
//  3. apply the results; entries removed meanwhile are dropped as stale
func (s *Service) AddDocuments(ctx context.Context, sessionID id.SessionID, docType models.DocumentType, files []models.UploadFile) (*DocumentsResult, error) {
	ctx, span := s.startSpan(ctx, "add_documents", sessionID)
	result, err := s.addDocuments(ctx, sessionID, docType, files)
	endSpan(span, err)
	return result, err
}

func (s *Service) addDocuments(ctx context.Context, sessionID id.SessionID, docType models.DocumentType, files []models.UploadFile) (*DocumentsResult, error) {
	awaitTransfer := s.uploader != nil
	var added []models.DocumentUpload
	c, err := s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		var err error
		added, err = c.AddFiles(docType, files, awaitTransfer)
		return err
	})
	if err != nil {
		return nil, err
	}

	jobs := documents.JobsFor(added, files)
	if awaitTransfer && len(jobs) > 0 {
		outcomes := documents.TransferAll(ctx, s.uploader, jobs, s.transferLimit)
		// Results land even when the caller is gone; otherwise the entries
		// stay uploading for good.
		ctx = context.WithoutCancel(ctx)
		var stale []id.UploadID
		c, err = s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
			_, stale = c.ApplyTransfers(outcomes)
			return nil
		})
		if err != nil {
			return nil, err
		}
		for _, uploadID := range stale {
			s.logger.InfoContext(ctx, "dropped stale upload result",
				"session_id", sessionID.String(),
				"upload_id", uploadID.String(),
			)
		}
	}

	final := s.currentEntries(c, docType, added)
	for _, u := range final {
		s.recordUpload(ctx, sessionID, u)
	}
	return &DocumentsResult{Added: final, Session: c.View()}, nil
}

// currentEntries returns the latest state of the given entries, skipping
// any that were removed while their content was in flight.
func (s *Service) currentEntries(c *navigation.Controller, docType models.DocumentType, added []models.DocumentUpload) []models.DocumentUpload {
	ids := make([]id.UploadID, 0, len(added))
	for _, u := range added {
		ids = append(ids, u.ID)
	}
	out := make([]models.DocumentUpload, 0, len(added))
	for _, u := range c.Uploads()[docType] {
		if slices.Contains(ids, u.ID) {
			out = append(out, u)
		}
	}
	return out
}

func (s *Service) recordUpload(ctx context.Context, sessionID id.SessionID, u models.DocumentUpload) {
	if s.metrics != nil {
		s.metrics.IncUpload(string(u.DocumentType), string(u.Status), string(u.ErrorReason))
	}
	event := audit.EventDocumentAdded
	if u.Status == models.UploadError {
		event = audit.EventDocumentRejected
	}
	s.logAudit(ctx, event,
		"session_id", sessionID,
		"step", string(models.StepDocumentVerification),
		"detail", string(u.DocumentType)+"/"+u.ID.String(),
		"reason", string(u.ErrorReason),
	)
}

// RemoveDocument deletes one upload entry.
func (s *Service) RemoveDocument(ctx context.Context, sessionID id.SessionID, docType models.DocumentType, uploadID id.UploadID) (navigation.View, error) {
	c, err := s.mutate(ctx, sessionID, func(_ context.Context, c *navigation.Controller) error {
		return c.RemoveFile(docType, uploadID)
	})
	if err != nil {
		return navigation.View{}, err
	}
	s.logAudit(ctx, audit.EventDocumentRemoved,
		"session_id", sessionID,
		"step", string(models.StepDocumentVerification),
		"detail", string(docType)+"/"+uploadID.String(),
	)
	return c.View(), nil
}
