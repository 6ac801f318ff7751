package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/franksops/autotransfer/engine"
)

func renderSummary(tallies []engine.Tally) string {
	if len(tallies) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Profile", "Queued", "Succeeded", "Failed"})

	var total engine.Tally
	for _, t := range tallies {
		tw.AppendRow(table.Row{t.Profile, strconv.Itoa(t.Queued), strconv.Itoa(t.Succeeded), strconv.Itoa(t.Failed)})
		total.Queued += t.Queued
		total.Succeeded += t.Succeeded
		total.Failed += t.Failed
	}
	tw.AppendFooter(table.Row{"Total", strconv.Itoa(total.Queued), strconv.Itoa(total.Succeeded), strconv.Itoa(total.Failed)})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}
