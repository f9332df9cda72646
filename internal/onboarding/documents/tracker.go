package documents

import (
	"maps"
	"slices"
	"sync"
	"time"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// Tracker holds the uploads of one session, grouped by document type.
//
// Every write is keyed by upload id, so results that complete out of order
// never overwrite each other. Entries are removed only by RemoveFile or by a
// branch Reset.
type Tracker struct {
	mu       sync.Mutex
	policies Policies
	uploads  map[models.DocumentType][]models.DocumentUpload
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the timestamp source for new entries.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates an empty tracker enforcing policies.
func NewTracker(policies Policies, opts ...Option) *Tracker {
	t := &Tracker{
		policies: policies,
		uploads:  make(map[models.DocumentType][]models.DocumentUpload),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Restore rebuilds a tracker from persisted state.
func Restore(policies Policies, state map[models.DocumentType][]models.DocumentUpload, opts ...Option) *Tracker {
	t := NewTracker(policies, opts...)
	for docType, entries := range state {
		t.uploads[docType] = slices.Clone(entries)
	}
	return t
}

// AddFiles records one entry per file under docType. Each file is checked in
// order against the file limit, then the MIME type, then the size; a file
// failing a check is recorded with status error and the matching reason and
// the rest of the batch is still processed. Accepted files are recorded as
// success, or as uploading when awaitTransfer is set and their content still
// has to reach the uploader.
func (t *Tracker) AddFiles(docType models.DocumentType, files []models.UploadFile, awaitTransfer bool) ([]models.DocumentUpload, error) {
	cfg, ok := t.policies[docType]
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no upload policy for document type "+string(docType))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	added := make([]models.DocumentUpload, 0, len(files))
	for _, f := range files {
		entry := models.DocumentUpload{
			ID:           id.NewUploadID(),
			DocumentType: docType,
			FileName:     f.Name,
			MimeType:     f.MimeType,
			Size:         f.Size,
			Status:       models.UploadSuccess,
			CreatedAt:    t.now(),
		}
		if awaitTransfer {
			entry.Status = models.UploadUploading
		}
		if reason, rejected := t.check(cfg, docType, f); rejected {
			entry.Status = models.UploadError
			entry.ErrorReason = reason
		}
		t.uploads[docType] = append(t.uploads[docType], entry)
		added = append(added, entry)
	}
	return added, nil
}

func (t *Tracker) check(cfg models.DocumentTypeConfig, docType models.DocumentType, f models.UploadFile) (models.UploadErrorReason, bool) {
	if t.activeCount(docType) >= cfg.MaxFiles {
		return models.ReasonTooManyFiles, true
	}
	if !allows(cfg, f.MimeType) {
		return models.ReasonUnsupportedType, true
	}
	if f.Size > cfg.MaxSizeBytes {
		return models.ReasonTooLarge, true
	}
	return "", false
}

// activeCount counts entries that occupy a slot. Rejected files do not.
func (t *Tracker) activeCount(docType models.DocumentType) int {
	n := 0
	for _, u := range t.uploads[docType] {
		if u.Status != models.UploadError {
			n++
		}
	}
	return n
}

// Complete marks an uploading entry as stored. It reports false when the
// entry no longer exists or is not waiting for a transfer.
func (t *Tracker) Complete(uploadID id.UploadID, fileRef, hash string) bool {
	return t.update(uploadID, func(u *models.DocumentUpload) {
		u.Status = models.UploadSuccess
		u.FileRef = fileRef
		u.Hash = hash
		u.ErrorReason = ""
	})
}

// Fail marks an uploading entry as failed with reason.
func (t *Tracker) Fail(uploadID id.UploadID, reason models.UploadErrorReason) bool {
	return t.update(uploadID, func(u *models.DocumentUpload) {
		u.Status = models.UploadError
		u.ErrorReason = reason
	})
}

func (t *Tracker) update(uploadID id.UploadID, fn func(*models.DocumentUpload)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for docType, entries := range t.uploads {
		for i := range entries {
			if entries[i].ID != uploadID {
				continue
			}
			if entries[i].Status != models.UploadUploading {
				return false
			}
			fn(&t.uploads[docType][i])
			return true
		}
	}
	return false
}

// RemoveFile deletes an entry whatever its status.
func (t *Tracker) RemoveFile(docType models.DocumentType, uploadID id.UploadID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.uploads[docType]
	i := slices.IndexFunc(entries, func(u models.DocumentUpload) bool { return u.ID == uploadID })
	if i < 0 {
		return dErrors.New(dErrors.CodeNotFound, "upload not found")
	}
	t.uploads[docType] = slices.Delete(entries, i, i+1)
	if len(t.uploads[docType]) == 0 {
		delete(t.uploads, docType)
	}
	return nil
}

// Reset drops every entry. Only a branch change calls this.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.uploads)
}

// State returns a deep copy of all entries, suitable for persistence and for
// the DocumentVerification validator.
func (t *Tracker) State() map[models.DocumentType][]models.DocumentUpload {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[models.DocumentType][]models.DocumentUpload, len(t.uploads))
	for docType, entries := range t.uploads {
		out[docType] = slices.Clone(entries)
	}
	return out
}

// Types returns the document types that hold at least one entry.
func (t *Tracker) Types() []models.DocumentType {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Sorted(maps.Keys(t.uploads))
}
