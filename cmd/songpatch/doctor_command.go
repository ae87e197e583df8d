package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"songpatch/internal/deps"
	"songpatch/internal/preflight"
	"songpatch/internal/services"
)

type doctorOutput struct {
	Checks []preflight.Result `json:"checks"`
	Tools  []deps.Status      `json:"tools"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := doctorOutput{
				Checks: preflight.RunAll(cmd.Context(), cfg, ctx.songDir()),
				Tools:  preflight.CheckSystemDeps(cmd.Context(), cfg),
			}

			if ctx.jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printDoctorReport(cmd, report)
			}

			if missing := deps.Missing(report.Tools); len(missing) > 0 {
				return services.Wrap(services.ErrConfiguration, "doctor", "", "missing required tools: "+strings.Join(missing, ", "), nil)
			}
			return nil
		},
	}
}

func printDoctorReport(cmd *cobra.Command, report doctorOutput) {
	out := cmd.OutOrStdout()

	toolRows := make([][]string, 0, len(report.Tools))
	for _, s := range report.Tools {
		state := "ok"
		detail := s.Version
		if !s.Available {
			state = "missing"
			if s.Optional {
				state = "missing (optional)"
			}
			detail = s.Detail
		}
		toolRows = append(toolRows, []string{s.Name, s.Command, state, detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Tool", "Command", "Status", "Detail"}, toolRows, nil))

	checkRows := make([][]string, 0, len(report.Checks))
	for _, r := range report.Checks {
		checkRows = append(checkRows, []string{r.Name, passFail(r.Passed), r.Detail})
	}
	if len(checkRows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, checkRows, nil))
	}
}

func passFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}
