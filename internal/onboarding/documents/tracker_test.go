package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

type TrackerSuite struct {
	suite.Suite
	tracker *Tracker
	now     time.Time
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.tracker = NewTracker(DefaultPolicies(), WithClock(func() time.Time { return s.now }))
}

func pdf(name string, size int64) models.UploadFile {
	return models.UploadFile{Name: name, MimeType: "application/pdf", Size: size}
}

func (s *TrackerSuite) TestAddFiles() {
	s.Run("accepted file is stored immediately without transfer", func() {
		added, err := s.tracker.AddFiles(models.DocumentPassport, []models.UploadFile{pdf("front.pdf", 1024)}, false)
		s.Require().NoError(err)
		s.Require().Len(added, 1)
		s.Equal(models.UploadSuccess, added[0].Status)
		s.Equal(s.now, added[0].CreatedAt)
		s.False(added[0].ID.IsNil())
		s.Equal(1, successes(s.tracker, models.DocumentPassport))
	})

	s.Run("unknown document type is rejected", func() {
		_, err := s.tracker.AddFiles(models.DocumentType("selfie"), []models.UploadFile{pdf("a.pdf", 1)}, false)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *TrackerSuite) TestAddFiles_RejectionReasons() {
	files := []models.UploadFile{
		{Name: "notes.txt", MimeType: "text/plain", Size: 10},
		pdf("huge.pdf", DefaultMaxSizeBytes+1),
		pdf("front.pdf", 10),
		{Name: "back.PNG", MimeType: "Image/PNG", Size: 10},
		pdf("third.pdf", 10),
	}
	added, err := s.tracker.AddFiles(models.DocumentPassport, files, false)
	s.Require().NoError(err)
	s.Require().Len(added, len(files))

	s.Equal(models.ReasonUnsupportedType, added[0].ErrorReason)
	s.Equal(models.ReasonTooLarge, added[1].ErrorReason)
	s.Equal(models.UploadSuccess, added[2].Status)
	s.Equal(models.UploadSuccess, added[3].Status, "mime comparison ignores case")
	s.Equal(models.ReasonTooManyFiles, added[4].ErrorReason, "rejected files do not take a slot but two accepted ones fill it")
	for _, i := range []int{0, 1, 4} {
		s.Equal(models.UploadError, added[i].Status)
	}
	s.Equal(2, successes(s.tracker, models.DocumentPassport))
}

func (s *TrackerSuite) TestFileLimitCountsUploadsInFlight() {
	_, err := s.tracker.AddFiles(models.DocumentNationalID, []models.UploadFile{pdf("a.pdf", 1), pdf("b.pdf", 1)}, true)
	s.Require().NoError(err)

	added, err := s.tracker.AddFiles(models.DocumentNationalID, []models.UploadFile{pdf("c.pdf", 1)}, true)
	s.Require().NoError(err)
	s.Equal(models.ReasonTooManyFiles, added[0].ErrorReason)
	s.Equal(models.UploadUploading, s.tracker.State()[models.DocumentNationalID][1].Status)
}

func (s *TrackerSuite) TestCompleteAndFail() {
	added, err := s.tracker.AddFiles(models.DocumentPassport, []models.UploadFile{pdf("a.pdf", 1), pdf("b.pdf", 1)}, true)
	s.Require().NoError(err)

	s.True(s.tracker.Complete(added[0].ID, "mem://a", "sha256:aa"))
	s.True(s.tracker.Fail(added[1].ID, models.ReasonTransferFailure))

	state := s.tracker.State()[models.DocumentPassport]
	s.Equal("mem://a", state[0].FileRef)
	s.Equal(models.UploadSuccess, state[0].Status)
	s.Equal(models.ReasonTransferFailure, state[1].ErrorReason)

	s.Run("settled entries are not overwritten", func() {
		s.False(s.tracker.Complete(added[1].ID, "mem://b", "sha256:bb"))
		s.False(s.tracker.Fail(added[0].ID, models.ReasonTransferFailure))
	})

	s.Run("unknown id is ignored", func() {
		s.False(s.tracker.Complete(id.NewUploadID(), "mem://x", ""))
	})
}

func (s *TrackerSuite) TestRemoveFile() {
	added, err := s.tracker.AddFiles(models.DocumentPassport, []models.UploadFile{pdf("a.pdf", 1)}, true)
	s.Require().NoError(err)

	s.Require().NoError(s.tracker.RemoveFile(models.DocumentPassport, added[0].ID), "uploading entries can be removed")
	s.Empty(s.tracker.State())
	s.Empty(s.tracker.Types())

	err = s.tracker.RemoveFile(models.DocumentPassport, added[0].ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *TrackerSuite) TestReset() {
	_, err := s.tracker.AddFiles(models.DocumentResidencePermit, []models.UploadFile{pdf("a.pdf", 1)}, false)
	s.Require().NoError(err)
	s.Equal(1, successes(s.tracker, models.DocumentResidencePermit))

	s.tracker.Reset()
	s.Empty(s.tracker.State())
}

func (s *TrackerSuite) TestStateIsACopy() {
	_, err := s.tracker.AddFiles(models.DocumentPassport, []models.UploadFile{pdf("a.pdf", 1)}, false)
	s.Require().NoError(err)

	state := s.tracker.State()
	state[models.DocumentPassport][0].Status = models.UploadError

	restored := Restore(DefaultPolicies(), s.tracker.State())
	s.Equal(1, successes(restored, models.DocumentPassport))
	s.Equal(s.tracker.State(), restored.State())
}

func TestPolicies_WithMaxSize(t *testing.T) {
	p := DefaultPolicies().WithMaxSize(100)
	for _, cfg := range p {
		require.Equal(t, int64(100), cfg.MaxSizeBytes)
	}
	require.Equal(t, DefaultMaxSizeBytes, DefaultPolicies()[models.DocumentPassport].MaxSizeBytes)
}

// A file larger than the cap always ends in error/too_large and never adds a
// successful entry.
func TestAddFiles_TooLargeNeverSucceeds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tracker := NewTracker(DefaultPolicies())
		size := rapid.Int64Range(DefaultMaxSizeBytes+1, 4*DefaultMaxSizeBytes).Draw(rt, "size")
		awaitTransfer := rapid.Bool().Draw(rt, "awaitTransfer")

		added, err := tracker.AddFiles(models.DocumentPassport, []models.UploadFile{pdf("f.pdf", size)}, awaitTransfer)
		require.NoError(rt, err)
		require.Len(rt, added, 1)
		require.Equal(rt, models.UploadError, added[0].Status)
		require.Equal(rt, models.ReasonTooLarge, added[0].ErrorReason)
		require.Zero(rt, successes(tracker, models.DocumentPassport))
	})
}

// successes counts stored files under docType.
func successes(t *Tracker, docType models.DocumentType) int {
	n := 0
	for _, u := range t.State()[docType] {
		if u.Status == models.UploadSuccess {
			n++
		}
	}
	return n
}
