package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nuclearcat/mybackup/collect"
	"github.com/nuclearcat/mybackup/upload"
)

// writeCollectSummary prints one line per host and target.
func writeCollectSummary(w io.Writer, rep *collect.Report) {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintf(bw, "Run: %s\n", rep.RunID)
	_, _ = fmt.Fprintf(bw, "Hosts: %d  Files: %d  Failures: %d\n", len(rep.Hosts), len(rep.Artifacts()), rep.Failed())
	_, _ = fmt.Fprintln(bw, strings.Repeat("=", 80))
	for _, h := range rep.Hosts {
		line := fmt.Sprintf("%s (%s): %s", h.Host, h.Type, h.Status)
		switch {
		case h.Note != "":
			line += ": " + h.Note
		case h.Err != nil && len(h.Targets) == 0:
			line += ": " + h.Err.Error()
		}
		_, _ = fmt.Fprintln(bw, line)
		for _, t := range h.Targets {
			switch {
			case t.Artifact != nil:
				_, _ = fmt.Fprintf(bw, "  %-8s %s -> %s (%s)\n", t.Status, t.Path, t.Artifact.LocalPath,
					humanize.IBytes(uint64(t.Artifact.Size)))
			case t.Err != nil:
				_, _ = fmt.Fprintf(bw, "  %-8s %s: %v\n", t.Status, t.Path, t.Err)
			default:
				_, _ = fmt.Fprintf(bw, "  %-8s %s (%s)\n", t.Status, t.Path, t.Note)
			}
		}
	}
	_ = bw.Flush()
}

// writeUploadSummary prints one line per uploaded file and the totals.
func writeUploadSummary(w io.Writer, sum *upload.Summary) {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintln(bw, strings.Repeat("-", 80))
	_, _ = fmt.Fprintf(bw, "Upload: %s\n", sum.Endpoint)
	for _, o := range sum.Outcomes {
		switch {
		case o.Accepted():
			_, _ = fmt.Fprintf(bw, "  accepted %s\n", o.Path)
		case o.Verdict != nil:
			_, _ = fmt.Fprintf(bw, "  rejected %s: %s\n", o.Path, o.Verdict)
		default:
			_, _ = fmt.Fprintf(bw, "  failed   %s: %v\n", o.Path, o.Err)
		}
	}
	_, _ = fmt.Fprintf(bw, "Accepted: %d  Rejected: %d\n", sum.Accepted(), sum.Rejected())
	_ = bw.Flush()
}
