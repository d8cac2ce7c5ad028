package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newPackagesCommand(ctx *commandContext) *cobra.Command {
	var learnerID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "packages [package-id]",
		Short: "List cataloged learning packages or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer catalog.Close()

			if len(args) == 1 {
				pkg, err := catalog.GetPackage(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				return writeJSON(cmd, pkg)
			}

			packages, err := catalog.ListPackages(cmd.Context(), strings.TrimSpace(learnerID))
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, packages)
			}
			if len(packages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No packages cataloged")
				return nil
			}

			rows := make([][]string, 0, len(packages))
			for _, pkg := range packages {
				rows = append(rows, []string{
					pkg.PackageID,
					pkg.LearnerID,
					strconv.Itoa(len(pkg.Resources)),
					strconv.Itoa(len(pkg.Assessments)),
					strconv.Itoa(pkg.Difficulty),
					pkg.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Package", "Learner", "Resources", "Questions", "Difficulty", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&learnerID, "learner", "", "Only list packages for this learner")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the package list as JSON")
	return cmd
}
