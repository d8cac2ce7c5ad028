package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show the checkpointed state of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCheckpoints()
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := api.NewStatusService(store).Status(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Session %s\n", report.SessionID)
			fmt.Fprintln(out, renderStatusLine("learner", statusInfo, report.LearnerID, colorize))
			fmt.Fprintln(out, renderStatusLine("stage", statusInfo, fmt.Sprintf("%s (%d%%)", report.StageLabel, report.Progress), colorize))
			if report.Completed {
				fmt.Fprintln(out, renderStatusLine("state", statusOK, "completed", colorize))
			} else if report.ShouldContinue {
				fmt.Fprintln(out, renderStatusLine("state", statusInfo, "in progress", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("state", statusError, "ended", colorize))
			}
			if report.RetryCount > 0 {
				fmt.Fprintln(out, renderStatusLine("retries", statusWarn, strconv.Itoa(report.RetryCount), colorize))
			}
			for _, msg := range report.Errors {
				fmt.Fprintln(out, renderStatusLine("error", statusWarn, msg, colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the status as JSON")
	return cmd
}

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List checkpointed sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCheckpoints()
			if err != nil {
				return err
			}
			defer store.Close()

			reports, err := api.NewStatusService(store).ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, api.SessionListResponse{Sessions: reports})
			}
			if len(reports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded")
				return nil
			}

			rows := make([][]string, 0, len(reports))
			for _, report := range reports {
				rows = append(rows, []string{
					report.SessionID,
					report.LearnerID,
					report.StageLabel,
					strconv.Itoa(report.Progress) + "%",
					sessionStateLabel(report),
					report.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Session", "Learner", "Stage", "Progress", "State", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the session list as JSON")
	return cmd
}

func sessionStateLabel(report api.StatusReport) string {
	switch {
	case report.Completed:
		return "completed"
	case report.ShouldContinue:
		return "in progress"
	default:
		return "ended"
	}
}
