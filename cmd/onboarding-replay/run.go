package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"onboarding/internal/onboarding/replay"
	"onboarding/internal/platform/logger"
)

var jsonOutput bool

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>...",
	Short: "Play scenarios against a fresh in-process session",
	Long: `Play one or more onboarding scenarios against a fresh session backed by
in-process collaborators and report each step.

The command exits non-zero when any step diverges from its expectation.

Examples:
  onboarding-replay run scenarios/individual.yaml
  onboarding-replay run --json scenarios/*.yaml | jq '.steps[] | select(.mismatch)'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.NewWithWriter(cmd.ErrOrStderr(), logLevel)
		failed := 0
		for _, path := range args {
			sc, err := replay.Load(path)
			if err != nil {
				return err
			}
			report, err := replay.Run(cmd.Context(), sc, log)
			if report == nil {
				return err
			}
			if werr := writeReport(cmd.OutOrStdout(), report); werr != nil {
				return werr
			}
			if err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios diverged", failed, len(args))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "print reports as JSON")
	rootCmd.AddCommand(runCmd)
}

func writeReport(w io.Writer, r *replay.Report) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	status := "ok"
	if r.Failed() {
		status = "FAILED"
	}
	if _, err := fmt.Fprintf(w, "%s: %s (final %s, submitted %t)\n", r.Scenario, status, r.Final, r.Submitted); err != nil {
		return err
	}
	for _, st := range r.Steps {
		line := fmt.Sprintf("  %2d %-18s %s", st.Number, st.Action, st.Position)
		if st.Error != "" {
			line += "  error=" + st.Error
		}
		if st.Mismatch != "" {
			line += "  MISMATCH: " + st.Mismatch
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for _, e := range r.CollaboratorErrors {
		if _, err := fmt.Fprintln(w, "  collaborator failed: "+e); err != nil {
			return err
		}
	}
	return nil
}
