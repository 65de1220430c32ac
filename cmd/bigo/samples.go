package main

import (
	"github.com/panbanda/bigo/internal/output"
	"github.com/panbanda/bigo/pkg/samples"
	"github.com/urfave/cli/v2"
)

func samplesCmd() *cli.Command {
	return &cli.Command{
		Name:  "samples",
		Usage: "List the built-in sample programs",
		Action: func(c *cli.Context) error {
			var rows [][]string
			for _, s := range samples.All() {
				rows = append(rows, []string{s.Name, s.Title, s.Time, s.Space})
			}
			tbl := output.NewTable("Samples", []string{"Name", "Title", "Time", "Space"}, rows, nil, nil)
			return output.NewWriterFormatter(output.ParseFormat(c.String("format")), c.App.Writer, false).Output(tbl)
		},
	}
}
