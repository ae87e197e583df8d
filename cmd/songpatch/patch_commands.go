package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"songpatch/internal/pipeline"
	"songpatch/internal/services"
)

func newPatchCommand(ctx *commandContext) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Validate a candidate file and write the patched output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("input", input); err != nil {
				return err
			}
			return ctx.withPatcher(cmd, func(p *pipeline.Patcher) error {
				result, err := p.Patch(cmd.Context(), pipeline.PatchRequest{Input: input, Output: output})
				if err != nil && !errors.Is(err, services.ErrRejected) {
					return err
				}
				if ctx.jsonOutput {
					if jsonErr := writeJSON(cmd, result); jsonErr != nil {
						return jsonErr
					}
					return err
				}
				out := cmd.OutOrStdout()
				printVerdict(out, result.Outcome.Accepted(), result.Outcome.Summary())
				if err != nil {
					return err
				}
				switch result.Action {
				case pipeline.ActionUnchanged:
					fmt.Fprintf(out, "Output: %s (already in target format)\n", result.Output)
				case pipeline.ActionCopied:
					fmt.Fprintf(out, "Output: %s (copied)\n", result.Output)
				default:
					fmt.Fprintf(out, "Output: %s\n", result.Output)
				}
				if result.Filter != "" {
					fmt.Fprintf(out, "Filter: %s\n", result.Filter)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Candidate audio file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <input-dir>/<input-name><extension>)")
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check whether a candidate file matches the registered master",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("input", input); err != nil {
				return err
			}
			return ctx.withPatcher(cmd, func(p *pipeline.Patcher) error {
				result, err := p.Verify(cmd.Context(), input)
				if err != nil && !errors.Is(err, services.ErrRejected) {
					return err
				}
				if ctx.jsonOutput {
					if jsonErr := writeJSON(cmd, result); jsonErr != nil {
						return jsonErr
					}
					return err
				}
				printVerdict(cmd.OutOrStdout(), result.Outcome.Accepted(), result.Summary)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Candidate audio file")
	return cmd
}

func newFingerprintCommand(ctx *commandContext) *cobra.Command {
	var master string

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Register a master file: hash, length, and fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("master", master); err != nil {
				return err
			}
			return ctx.withPatcher(cmd, func(p *pipeline.Patcher) error {
				result, err := p.Register(cmd.Context(), master)
				if err != nil {
					return err
				}
				if ctx.jsonOutput {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Registered %s\n", result.Master)
				if result.Tags != nil {
					fmt.Fprintf(out, "  Tags:              %s\n", result.Tags.Label())
				}
				fmt.Fprintf(out, "  Digest:            %s\n", result.Digest)
				fmt.Fprintf(out, "  Length:            %.3fs\n", float64(result.DurationMs)/1000)
				fmt.Fprintf(out, "  Known-good hashes: %d\n", result.KnownGoodHashes)
				fmt.Fprintf(out, "  audio.json:        %s (updated: %s)\n", result.DocumentPath, yesNo(result.Changed))
				fmt.Fprintf(out, "  fingerprint:       %s\n", result.FingerprintPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&master, "master", "m", "", "Master audio file")
	return cmd
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return services.Wrap(services.ErrValidation, "", "flags", fmt.Sprintf("--%s is required", name), nil)
	}
	return nil
}
