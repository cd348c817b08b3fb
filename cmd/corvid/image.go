package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"corvid/internal/metadata"
)

func newImageCmd() *cobra.Command {
	imageCmd := &cobra.Command{
		Use:   "image",
		Short: "Inspect metadata images",
	}
	dumpCmd := &cobra.Command{
		Use:   "dump <file.cvm>",
		Short: "Print a metadata image as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := metadata.FromFile(args[0]).Load()
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			data, err := metadata.Encode(img, metadata.FormatYAML)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	imageCmd.AddCommand(dumpCmd)
	return imageCmd
}
