package main

import (
	"github.com/spf13/cobra"

	"songpatch/internal/services"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "songpatch",
		Short:         "Validate and patch custom song audio against a registered master",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return services.Wrap(services.ErrValidation, "", "flags", "", err)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVarP(&ctx.songDirFlag, "song-dir", "d", ".", "Directory holding audio.json and fingerprint.bin")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&ctx.silent, "silent", "s", false, "Suppress console logging")
	flags.BoolVar(&ctx.jsonOutput, "json", false, "Print machine-readable JSON results")

	rootCmd.AddCommand(newPatchCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newFingerprintCommand(ctx))
	rootCmd.AddCommand(newCompileCommand(ctx))
	rootCmd.AddCommand(newHashCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
