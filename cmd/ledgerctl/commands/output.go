package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// ui writes operator-facing output; color is dropped automatically when stdout is not a terminal
type ui struct {
	out    io.Writer
	errOut io.Writer
}

func (u *ui) info(format string, a ...any) {
	_, _ = fmt.Fprintf(u.out, "%s %s\n", cyan("ℹ"), fmt.Sprintf(format, a...))
}

func (u *ui) success(format string, a ...any) {
	_, _ = fmt.Fprintf(u.out, "%s %s\n", green("✓"), fmt.Sprintf(format, a...))
}

func (u *ui) warning(format string, a ...any) {
	_, _ = fmt.Fprintf(u.errOut, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, a...))
}

func (u *ui) failure(format string, a ...any) {
	_, _ = fmt.Fprintf(u.errOut, "%s %s\n", red("✗"), fmt.Sprintf(format, a...))
}

func (u *ui) table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
