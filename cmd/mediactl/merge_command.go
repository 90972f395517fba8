package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"mediadocs/internal/media"
)

func newMergeCommand(opts *toolOptions) *cobra.Command {
	var tierFlag string
	var precompress bool

	cmd := &cobra.Command{
		Use:   "merge <out.pdf> <input>...",
		Short: "Merge images and PDFs, in order, into one PDF",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := media.ParseTier(tierFlag)
			if err != nil {
				return fmt.Errorf("unsupported tier %q: want auto, light, medium or strong", tierFlag)
			}
			dst, srcs := args[0], args[1:]

			inputs := make([]media.Input, 0, len(srcs))
			for _, src := range srcs {
				data, err := os.ReadFile(src)
				if err != nil {
					return fmt.Errorf("read %s: %w", src, err)
				}
				inputs = append(inputs, media.Input{
					Name:     filepath.Base(src),
					MimeType: mimetype.Detect(data).String(),
					Data:     data,
				})
			}

			out, err := opts.transformer(cmd).Merge(cmd.Context(), inputs, tier, precompress)
			if err != nil {
				return err
			}
			if err := os.WriteFile(dst, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dst, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d inputs, %s\n", dst, len(inputs), humanize.IBytes(uint64(len(out))))
			return nil
		},
	}
	cmd.Flags().StringVar(&tierFlag, "tier", string(media.TierAuto), "Compression tier: auto, light, medium, strong")
	cmd.Flags().BoolVar(&precompress, "precompress", false, "Compress PDF inputs before merging")
	return cmd
}
