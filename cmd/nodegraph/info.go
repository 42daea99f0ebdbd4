package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SaanidhyaM/node-based-image-processor/internal/io"
	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show how an image is read as a chain source",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]
	buf, meta, err := io.NewImageLoader(env.slog).LoadImage(path)
	if err != nil {
		return err
	}
	defer buf.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:        %s\n", path)
	fmt.Fprintf(out, "Format:      %s\n", meta.Format)
	fmt.Fprintf(out, "Dimensions:  %d x %d\n", meta.Width, meta.Height)
	fmt.Fprintf(out, "Channels:    %d (%s)\n", meta.Channels, meta.SampleType)
	fmt.Fprintf(out, "Loaded as:   %s\n", buf)
	fmt.Fprintf(out, "Split into:  %v\n", transforms.NewChannelSplitter().Available(buf))
	return nil
}
