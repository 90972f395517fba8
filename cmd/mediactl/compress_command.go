package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"mediadocs/internal/media"
)

func newCompressCommand(opts *toolOptions) *cobra.Command {
	var tierFlag, outFlag string

	cmd := &cobra.Command{
		Use:   "compress <file>",
		Short: "Compress an image or PDF with the given tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := media.ParseTier(tierFlag)
			if err != nil {
				return fmt.Errorf("unsupported tier %q: want auto, light, medium or strong", tierFlag)
			}
			in := args[0]
			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}

			mt := mimetype.Detect(data).String()
			t := opts.transformer(cmd)
			var out []byte
			switch {
			case media.IsPDF(mt):
				out, err = t.CompressPDF(cmd.Context(), data, tier)
			case media.IsImage(mt):
				out, err = t.CompressImage(cmd.Context(), data, mt, tier)
			default:
				return errors.New("only images and PDFs can be compressed, got " + mt)
			}
			if err != nil {
				return err
			}

			dst := outFlag
			if dst == "" {
				dst = compressedName(in)
			}
			if err := os.WriteFile(dst, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dst, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", dst,
				humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(len(out))))
			return nil
		},
	}
	cmd.Flags().StringVar(&tierFlag, "tier", string(media.TierAuto), "Compression tier: auto, light, medium, strong")
	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output path (default: <name>.min<ext>)")
	return cmd
}

func compressedName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".min" + ext
}
