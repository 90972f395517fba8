package main

import (
	"time"

	"github.com/spf13/cobra"

	"mediadocs/internal/logging"
	"mediadocs/internal/media"
)

type toolOptions struct {
	gsPath  string
	timeout time.Duration
	tmpDir  string
}

func (o *toolOptions) transformer(cmd *cobra.Command) *media.Transformer {
	logger := logging.New(cmd.ErrOrStderr(), time.Local)
	return media.New(media.Config{
		GhostscriptPath: o.gsPath,
		Timeout:         o.timeout,
		TempDir:         o.tmpDir,
	}, logger, nil)
}

func newRootCommand() *cobra.Command {
	opts := &toolOptions{}

	rootCmd := &cobra.Command{
		Use:           "mediactl",
		Short:         "Inspect, compress and merge documents locally",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.gsPath, "gs", "gs", "Ghostscript binary")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", media.DefaultTimeout, "Timeout for one Ghostscript run")
	rootCmd.PersistentFlags().StringVar(&opts.tmpDir, "tmp", "", "Scratch directory (default: system temp)")

	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newCompressCommand(opts))
	rootCmd.AddCommand(newMergeCommand(opts))

	return rootCmd
}
