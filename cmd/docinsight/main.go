// Command docinsight runs the ingestion pipeline locally: no quota, no
// persistence, just extract, normalize, classify and print.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	common := []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "json",
			Usage:   "output format: json or yaml",
		},
		&cli.BoolFlag{
			Name:  "no-ai",
			Usage: "skip the AI provider and use keyword classification",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 0,
			Usage: "overall deadline (0 uses the configured fetch and classify timeouts)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log pipeline stages to stderr",
		},
	}

	return &cli.App{
		Name:  "docinsight",
		Usage: "summarize and classify a PDF, web page or YouTube video",
		Commands: []*cli.Command{
			{
				Name:      "pdf",
				Usage:     "ingest a local PDF file",
				ArgsUsage: "<file.pdf>",
				Flags:     common,
				Action:    pdfAction,
			},
			{
				Name:      "url",
				Usage:     "ingest a web page",
				ArgsUsage: "<url>",
				Flags:     common,
				Action:    urlAction,
			},
			{
				Name:      "youtube",
				Usage:     "ingest a YouTube video's public metadata",
				ArgsUsage: "<url>",
				Flags:     common,
				Action:    youtubeAction,
			},
			{
				Name:   "status",
				Usage:  "probe the configured AI provider",
				Flags:  common,
				Action: statusAction,
			},
		},
	}
}
