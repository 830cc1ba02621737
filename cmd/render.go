package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/linanwx/chatwidget/markdown"
	"github.com/linanwx/chatwidget/reveal"
)

var renderCmd = &cobra.Command{
	Use:     "render [file]",
	Short:   "Render chat markdown to HTML",
	GroupID: "internal",
	Long: `Render a markdown file (or stdin) with the widget's renderer.

--frames prints every frame of the character reveal, one per line.
--ast dumps the parsed document tree instead of HTML.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var (
	renderFrames   bool
	renderAST      bool
	renderInterval time.Duration
)

func init() {
	renderCmd.Flags().BoolVar(&renderFrames, "frames", false, "Print every reveal frame")
	renderCmd.Flags().BoolVar(&renderAST, "ast", false, "Dump the document tree")
	renderCmd.Flags().DurationVar(&renderInterval, "interval", time.Millisecond, "Delay between frames with --frames")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	text := string(data)
	out := cmd.OutOrStdout()

	switch {
	case renderAST:
		// Dump writes to stdout.
		markdown.Parse(text).Dump(data, 0)
	case renderFrames:
		done := make(chan struct{})
		engine := reveal.New(reveal.WithInterval(renderInterval))
		engine.Start(text, reveal.ModeMarkdown, func(html string) {
			fmt.Fprintln(out, html)
		}, func() { close(done) })
		<-done
	default:
		fmt.Fprintln(out, markdown.Render(text))
	}
	return nil
}
