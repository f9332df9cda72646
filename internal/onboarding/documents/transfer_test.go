package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/ports"
	"onboarding/internal/onboarding/ports/mocks"
)

func TestTransferAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := mocks.NewMockContentUploader(ctrl)
	tracker := NewTracker(DefaultPolicies())

	files := []models.UploadFile{pdf("ok.pdf", 10), {Name: "bad.exe", MimeType: "application/x-msdownload", Size: 10}, pdf("broken.pdf", 10)}
	added, err := tracker.AddFiles(models.DocumentPassport, files, true)
	require.NoError(t, err)

	jobs := JobsFor(added, files)
	require.Len(t, jobs, 2, "rejected files are not transferred")

	uploader.EXPECT().Upload(gomock.Any(), files[0]).Return(ports.UploadResult{URL: "mem://ok", Hash: "sha256:01"}, nil)
	uploader.EXPECT().Upload(gomock.Any(), files[2]).Return(ports.UploadResult{}, errors.New("connection reset"))

	outcomes := TransferAll(context.Background(), uploader, jobs, 2)
	applied, stale := tracker.Apply(outcomes)
	assert.Len(t, applied, 2)
	assert.Empty(t, stale)

	state := tracker.State()[models.DocumentPassport]
	assert.Equal(t, models.UploadSuccess, state[0].Status)
	assert.Equal(t, "mem://ok", state[0].FileRef)
	assert.Equal(t, models.ReasonUnsupportedType, state[1].ErrorReason)
	assert.Equal(t, models.ReasonTransferFailure, state[2].ErrorReason)
	assert.Equal(t, models.UploadError, state[2].Status, "no entry is left uploading")
}

func TestTransferAll_IgnoresCallerCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := mocks.NewMockContentUploader(ctrl)
	tracker := NewTracker(DefaultPolicies())

	files := []models.UploadFile{pdf("a.pdf", 1)}
	added, err := tracker.AddFiles(models.DocumentPassport, files, true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uploader.EXPECT().Upload(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ models.UploadFile) (ports.UploadResult, error) {
			assert.NoError(t, ctx.Err())
			return ports.UploadResult{URL: "mem://a"}, nil
		})

	outcomes := TransferAll(ctx, uploader, JobsFor(added, files), 0)
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
}

// A result arriving after its entry was removed is dropped, and a later
// entry for the same file is not touched by it.
func TestApply_DropsStaleResults(t *testing.T) {
	tracker := NewTracker(DefaultPolicies())
	files := []models.UploadFile{pdf("a.pdf", 1)}

	first, err := tracker.AddFiles(models.DocumentPassport, files, true)
	require.NoError(t, err)
	require.NoError(t, tracker.RemoveFile(models.DocumentPassport, first[0].ID))
	second, err := tracker.AddFiles(models.DocumentPassport, files, true)
	require.NoError(t, err)

	applied, stale := tracker.Apply([]Outcome{{UploadID: first[0].ID, Result: ports.UploadResult{URL: "mem://old"}}})
	assert.Empty(t, applied)
	assert.Equal(t, first[0].ID, stale[0])

	state := tracker.State()[models.DocumentPassport]
	require.Len(t, state, 1)
	assert.Equal(t, second[0].ID, state[0].ID)
	assert.Equal(t, models.UploadUploading, state[0].Status)
}
