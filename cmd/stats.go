package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/renderer"
	"github.com/df07/go-photon-mapper/pkg/tracer"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	return table
}

func percent(part, whole int) string {
	if whole == 0 {
		return "-"
	}
	return fmt.Sprintf("%02.1f %%", 100*float64(part)/float64(whole))
}

func displayTraceStats(w io.Writer, stats tracer.Stats, elapsed time.Duration) {
	walks := stats.Walks()
	table := newTable(w, "Outcome", "Count", "% of walks")
	rows := []struct {
		name  string
		count int
	}{
		{"emitted", stats.Emitted},
		{"diffuse branches", stats.DiffuseBranches},
		{"escaped", stats.Escaped},
		{"absorbed", stats.Absorbed},
		{"depth limited", stats.DepthLimited},
		{"total internal", stats.TotalInternal},
		{"terminated", stats.Terminated},
		{"reflected", stats.Reflected},
		{"transmitted", stats.Transmitted},
	}
	for _, row := range rows {
		table.Append([]string{row.name, fmt.Sprintf("%d", row.count), percent(row.count, walks)})
	}
	table.SetFooter([]string{"recorded", fmt.Sprintf("%d", stats.Recorded), elapsed.Round(time.Millisecond).String()})
	table.Render()
}

func displayRenderStats(w io.Writer, stats renderer.RenderStats, passes int, elapsed time.Duration) {
	table := newTable(w, "Pixels", "Samples", "Avg spp", "Min spp", "Max spp", "Passes", "Render time")
	table.Append([]string{
		fmt.Sprintf("%d", stats.TotalPixels),
		fmt.Sprintf("%d", stats.TotalSamples),
		fmt.Sprintf("%.1f", stats.AverageSamples),
		fmt.Sprintf("%d", stats.MinSamples),
		fmt.Sprintf("%d", stats.MaxSamplesUsed),
		fmt.Sprintf("%d", passes),
		elapsed.Round(time.Millisecond).String(),
	})
	table.Render()
}

func displayMapInfo(w io.Writer, path string, pm *photonmap.PhotonMap, load, check time.Duration, checkErr error) {
	status := "ok"
	if checkErr != nil {
		status = "FAILED"
	}
	table := newTable(w, "Snapshot", "Photons", "Depth", "Index", "Load", "Check", "Status")
	table.Append([]string{
		path,
		fmt.Sprintf("%d", pm.Len()),
		fmt.Sprintf("%d", pm.Depth()),
		pm.IndexKind().String(),
		load.Round(time.Millisecond).String(),
		check.Round(time.Millisecond).String(),
		status,
	})
	table.Render()
}

func displayProfile(w io.Writer, results []photonmap.ProfileResult) {
	table := newTable(w, "Index", "Photons", "Queries", "Insert", "Build", "Query", "Check", "Mean neighbors")
	for _, r := range results {
		table.Append([]string{
			r.Config.Index.String(),
			fmt.Sprintf("%d", r.Config.MapSize),
			fmt.Sprintf("%d", r.Config.NumQueries),
			r.Insert.String(),
			r.Build.String(),
			r.Query.String(),
			r.Check.String(),
			fmt.Sprintf("%.2f", r.MeanNeighbors),
		})
	}
	table.Render()
}
