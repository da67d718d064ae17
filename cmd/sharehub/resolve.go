package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/meta"
)

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url>",
		Short: "Show how a video URL is recognized and which thumbnail it gets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResolution(cmd.OutOrStdout(), args[0])
		},
	}
}

func printResolution(w io.Writer, rawURL string) error {
	v := meta.ExtractVideoID(rawURL)
	if v == nil {
		return fmt.Errorf("no video pattern matches %q", rawURL)
	}
	thumb := meta.ResolveThumbnail(content.Post{VideoURL: rawURL})

	rows := [][]string{
		{"Platform", string(v.Platform)},
		{"ID", v.ID},
		{"Embed URL", v.EmbedURL},
	}
	if v.Platform == meta.PlatformDirect {
		rows = append(rows, []string{"MIME type", meta.VideoMIMEType(rawURL)})
	}
	if thumb.OK() {
		rows = append(rows, []string{"Thumbnail", thumb.Value})
	} else {
		rows = append(rows, []string{"Thumbnail", "(placeholder)"})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"Field", "Value"}, rows, nil))
	return err
}
