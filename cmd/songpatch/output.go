package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printVerdict writes an ACCEPTED/REJECTED line, colored on terminals.
func printVerdict(out io.Writer, accepted bool, detail string) {
	label, color := "ACCEPTED", ansiGreen
	if !accepted {
		label, color = "REJECTED", ansiRed
	}
	if shouldColorize(out) {
		label = color + label + ansiReset
	}
	fmt.Fprintf(out, "%s  %s\n", label, detail)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
