package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"loom/internal/learning"
	"loom/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		profilePath string
		learnerID   string
		name        string
		subject     string
		style       string
		level       int
		weakAreas   []string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a learning package for one learner",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := resolveProfile(profilePath, learning.LearnerProfile{
				ID:             learnerID,
				Name:           name,
				Subject:        subject,
				LearningStyle:  style,
				KnowledgeLevel: level,
				WeakAreas:      weakAreas,
			})
			if err != nil {
				return err
			}

			store, err := ctx.openCheckpoints()
			if err != nil {
				return err
			}
			defer store.Close()

			engine, err := ctx.buildEngine(store, nil)
			if err != nil {
				return err
			}

			result := engine.Run(cmd.Context(), profile)
			if err := catalogResult(cmd, ctx, profile, result); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warn: unable to catalog package: %v\n", err)
			}
			return reportResult(cmd, result, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Path to a learner profile JSON file")
	cmd.Flags().StringVar(&learnerID, "learner-id", "", "Learner identifier")
	cmd.Flags().StringVar(&name, "name", "", "Learner name")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject to build a path for")
	cmd.Flags().StringVar(&style, "style", "reading", "Learning style (visual, auditory, kinesthetic, reading)")
	cmd.Flags().IntVar(&level, "level", 1, "Knowledge level 1-5")
	cmd.Flags().StringSliceVar(&weakAreas, "weak", nil, "Weak areas needing extra focus")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full result as JSON")
	return cmd
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Resume an interrupted workflow session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCheckpoints()
			if err != nil {
				return err
			}
			defer store.Close()

			engine, err := ctx.buildEngine(store, nil)
			if err != nil {
				return err
			}

			result := engine.Resume(cmd.Context(), strings.TrimSpace(args[0]))
			if result.State != nil && result.State.Profile != nil {
				if err := catalogResult(cmd, ctx, *result.State.Profile, result); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: unable to catalog package: %v\n", err)
				}
			}
			return reportResult(cmd, result, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full result as JSON")
	return cmd
}

// resolveProfile loads the profile file when given, otherwise builds one from
// the flag values.
func resolveProfile(path string, flagProfile learning.LearnerProfile) (learning.LearnerProfile, error) {
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return learning.LearnerProfile{}, fmt.Errorf("read profile: %w", err)
		}
		var profile learning.LearnerProfile
		if err := json.Unmarshal(data, &profile); err != nil {
			return learning.LearnerProfile{}, fmt.Errorf("parse profile: %w", err)
		}
		return profile, nil
	}
	if strings.TrimSpace(flagProfile.Subject) == "" {
		return learning.LearnerProfile{}, fmt.Errorf("a subject is required: pass --subject or --profile")
	}
	return flagProfile, nil
}

func catalogResult(cmd *cobra.Command, ctx *commandContext, profile learning.LearnerProfile, result workflow.Result) error {
	if !result.Completed || result.Package == nil {
		return nil
	}
	catalog, err := ctx.openCatalog()
	if err != nil {
		return err
	}
	defer catalog.Close()

	if err := catalog.SaveProfile(cmd.Context(), &profile); err != nil {
		return err
	}
	return catalog.SavePackage(cmd.Context(), result.Package)
}

func reportResult(cmd *cobra.Command, result workflow.Result, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintf(out, "Session %s\n", result.SessionID)
	if result.Completed {
		fmt.Fprintln(out, renderStatusLine("workflow", statusOK, "completed", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("workflow", statusError, fmt.Sprintf("ended at %s", result.FinalStage), colorize))
	}
	if result.Package != nil {
		pkg := result.Package
		fmt.Fprintln(out, renderStatusLine("package", statusInfo, pkg.PackageID, colorize))
		fmt.Fprintln(out, renderStatusLine("resources", statusInfo, fmt.Sprintf("%d planned, %d generated", len(pkg.Resources), len(pkg.Contents)), colorize))
		fmt.Fprintln(out, renderStatusLine("assessments", statusInfo, fmt.Sprintf("%d questions", len(pkg.Assessments)), colorize))
	}
	for _, msg := range result.Errors {
		fmt.Fprintln(out, renderStatusLine("error", statusWarn, msg, colorize))
	}
	if result.Err != nil {
		return result.Err
	}
	if !result.Completed {
		return fmt.Errorf("workflow did not complete")
	}
	return nil
}
