package documents

import (
	"context"

	"golang.org/x/sync/errgroup"

	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/ports"
	id "onboarding/pkg/domain"
)

// DefaultTransferConcurrency bounds simultaneous uploads per batch.
const DefaultTransferConcurrency = 4

// Job pairs an uploading entry with the content to transfer.
type Job struct {
	UploadID id.UploadID
	File     models.UploadFile
}

// Outcome is the result of one Job.
type Outcome struct {
	UploadID id.UploadID
	Result   ports.UploadResult
	Err      error
}

// JobsFor pairs the entries returned by AddFiles with the files they were
// created from. Rejected entries get no job.
func JobsFor(added []models.DocumentUpload, files []models.UploadFile) []Job {
	jobs := make([]Job, 0, len(added))
	for i, u := range added {
		if i >= len(files) || u.Status != models.UploadUploading {
			continue
		}
		jobs = append(jobs, Job{UploadID: u.ID, File: files[i]})
	}
	return jobs
}

// TransferAll uploads every job with at most limit transfers in flight.
// A failing file never stops the others, and cancellation of ctx after the
// batch started does not abort transfers already handed to the uploader.
func TransferAll(ctx context.Context, uploader ports.ContentUploader, jobs []Job, limit int) []Outcome {
	if limit <= 0 {
		limit = DefaultTransferConcurrency
	}
	ctx = context.WithoutCancel(ctx)

	outcomes := make([]Outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := uploader.Upload(ctx, job.File)
			outcomes[i] = Outcome{UploadID: job.UploadID, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Apply writes outcomes into the tracker by upload id. Outcomes whose entry
// was removed meanwhile are returned as stale and otherwise ignored.
func (t *Tracker) Apply(outcomes []Outcome) (applied, stale []id.UploadID) {
	for _, o := range outcomes {
		var ok bool
		if o.Err != nil {
			ok = t.Fail(o.UploadID, models.ReasonTransferFailure)
		} else {
			ok = t.Complete(o.UploadID, o.Result.URL, o.Result.Hash)
		}
		if ok {
			applied = append(applied, o.UploadID)
		} else {
			stale = append(stale, o.UploadID)
		}
	}
	return applied, stale
}
