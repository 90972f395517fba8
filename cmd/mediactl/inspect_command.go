package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/spf13/cobra"

	"mediadocs/internal/imageinfo"
	"mediadocs/internal/media"
)

type inspection struct {
	File      string `json:"file"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	// DocxCX and DocxCY are the OOXML extent at native size.
	DocxCX int64 `json:"docx_cx,omitempty"`
	DocxCY int64 `json:"docx_cy,omitempty"`
}

func inspectFile(path string) (*inspection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mt := mimetype.Detect(data)
	out := &inspection{
		File:      path,
		MimeType:  mt.String(),
		Size:      int64(len(data)),
		SizeHuman: humanize.IBytes(uint64(len(data))),
	}

	switch {
	case media.IsPDF(mt.String()):
		n, err := api.PageCount(bytes.NewReader(data), nil)
		if err != nil {
			return nil, fmt.Errorf("count pages of %s: %w", path, err)
		}
		out.Pages = n
	case media.IsImage(mt.String()):
		// header sniffing keys off the detected type, not the file name
		if size, ok := imageinfo.Dimensions(data, mt.Extension()); ok {
			out.Width, out.Height = size.Width, size.Height
			out.DocxCX, out.DocxCY = imageinfo.DocxExtentEMU(size.Width, size.Height)
		}
	}
	return out, nil
}

func newInspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>...",
		Short: "Print type, size, image dimensions or page count",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, arg := range args {
				info, err := inspectFile(arg)
				if err != nil {
					return err
				}
				if asJSON {
					if err := json.NewEncoder(w).Encode(info); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s", filepath.Base(info.File), info.MimeType, info.SizeHuman)
				switch {
				case info.Pages > 0:
					fmt.Fprintf(w, "\t%d pages", info.Pages)
				case info.Width > 0:
					fmt.Fprintf(w, "\t%dx%d", info.Width, info.Height)
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit one JSON object per file")
	return cmd
}
