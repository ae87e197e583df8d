package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"songpatch/internal/knowngood"
	"songpatch/internal/patch"
	"songpatch/internal/services"
)

type compileOutput struct {
	Filter  string   `json:"filter"`
	Filters []string `json:"filters"`
}

func newCompileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Print the ffmpeg filter graph for the song's patches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.songStore()
			if err != nil {
				return err
			}
			doc, err := store.Require(cmd.Context())
			if err != nil {
				return err
			}
			graph := patch.Compile(doc.PatchSpec())

			result := compileOutput{Filter: graph.String(), Filters: []string{}}
			if graph != nil {
				for _, f := range graph.Filters {
					result.Filters = append(result.Filters, f.String())
				}
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, result)
			}
			if result.Filter == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(no patches; output is a plain re-encode)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Filter)
			return nil
		},
	}
}

type hashOutput struct {
	File      string `json:"file"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	KnownGood *bool  `json:"known_good,omitempty"`
}

func newHashCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>",
		Short: "Print a file's SHA-256 digest and whether it is known-good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := knowngood.HashFile(args[0])
			if err != nil {
				return services.Wrap(services.ErrNotFound, "hash", "", "", err)
			}
			result := hashOutput{File: args[0], Algorithm: hash.Algorithm, Digest: hash.Digest}

			store, err := ctx.songStore()
			if err != nil {
				return err
			}
			doc, exists, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if exists {
				known := doc.Profile().KnownGoodHashes.Contains(hash.Digest)
				result.KnownGood = &known
			}

			if ctx.jsonOutput {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", result.Digest, result.File)
			if result.KnownGood != nil {
				fmt.Fprintf(out, "Known-good: %s\n", yesNo(*result.KnownGood))
			}
			return nil
		},
	}
}
