package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthias/iso20022-toolkit/internal/codesets"
)

var codesetsCmd = &cobra.Command{
	Use:   "codesets <file.json>",
	Short: "Validate and list an external code set document",
	Long:  "Load an ISO 20022 external code set JSON document, validate its shape, and list every code set with its size and a sample value.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCodeSets,
}

func init() {
	rootCmd.AddCommand(codesetsCmd)
}

func runCodeSets(_ *cobra.Command, args []string) error {
	codes, err := codesets.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load code sets: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Loaded %d code sets from %s\n\n", codes.Len(), args[0])
	for _, name := range codes.Names() {
		line := fmt.Sprintf("  %-44s %5d codes", name, len(codes.Values(name)))
		if sample, ok := codes.Sample(name); ok {
			line += fmt.Sprintf("   e.g. %s", sample)
		}
		_, _ = fmt.Fprintln(os.Stdout, line)
		if rootVerbose {
			if desc := codes.Description(name); desc != "" {
				_, _ = fmt.Fprintf(os.Stdout, "      %s\n", desc)
			}
		}
	}

	return nil
}
