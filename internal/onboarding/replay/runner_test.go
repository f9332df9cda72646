package replay

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RunnerSuite struct {
	suite.Suite
	ctx    context.Context
	logger *slog.Logger
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *RunnerSuite) TestIndividualHappyPath() {
	sc, err := Load("testdata/individual.yaml")
	s.Require().NoError(err)

	report, err := Run(s.ctx, sc, s.logger)
	s.Require().NoError(err, "%+v", report)
	s.Equal("complete", report.Final)
	s.True(report.Submitted)
	s.Empty(report.CollaboratorErrors)
}

func (s *RunnerSuite) TestCollaboratorOutageIsReportedNotFatal() {
	sc, err := Decode(strings.NewReader(`
name: wallet outage
failing: [wallet, notifier]
steps:
  - action: advance
  - action: advance
  - action: advance
  - action: update
    group: account
    fields: {termsAccepted: "true", email: "jan@example.com"}
  - action: advance
    expect: personal
`))
	s.Require().NoError(err)

	report, err := Run(s.ctx, sc, s.logger)
	s.Require().NoError(err)
	s.Equal("personal", report.Final)
	s.False(report.Submitted)
}

func (s *RunnerSuite) TestMismatchIsReported() {
	sc, err := Decode(strings.NewReader(`
name: wrong expectation
steps:
  - action: advance
    expect: account
  - action: back
    expect_error: conflict
`))
	s.Require().NoError(err)

	report, err := Run(s.ctx, sc, s.logger)
	s.Require().ErrorIs(err, ErrMismatch)
	s.Require().Len(report.Steps, 2)
	s.Equal("expected position account, got welcome#1", report.Steps[0].Mismatch)
	s.Equal("expected error conflict, got none", report.Steps[1].Mismatch)
	s.True(report.Failed())
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown action": "name: x\nsteps:\n  - action: teleport\n",
		"unknown key":    "name: x\nsteps:\n  - action: advance\n    expected: account\n",
		"no steps":       "name: x\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)
}
