package main

import (
	"fmt"
	"io"

	"github.com/adyen/cartcheck/internal/scenario"
)

func printReport(w io.Writer, report scenario.Report, reference string) {
	fmt.Fprintf(w, "%s %s\n", reference, report.Plan.Name())
	for _, step := range report.Steps {
		if step.Snapshot == nil {
			fmt.Fprintf(w, "  %s\n", step.Name)
			continue
		}
		snap := step.Snapshot
		mark := "ok"
		if !snap.Consistent() {
			mark = "MISMATCH"
		}
		fmt.Fprintf(w, "  %s: %d items, total %s, sum %s %s\n", step.Name, len(snap.Items), snap.Total, snap.Sum(), mark)
		for _, item := range snap.Items {
			fmt.Fprintf(w, "    [%d] %s %s\n", item.Position, item.Name, item.Price)
		}
	}
}
