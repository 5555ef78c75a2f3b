// Package session drives one invocation: it filters the archive paths handed
// over by the shell, runs every accepted archive through the dropper engine
// and reports the outcome on the console.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"jsondropper/internal/dropper"
	"jsondropper/internal/util"
)

var (
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed)
	titleColor = color.New(color.FgHiCyan, color.Bold)
)

// Rejected is an argument that was not processed.
type Rejected struct {
	Path   string
	Reason string
}

// Report collects the outcome of a batch.
type Report struct {
	Results  []*dropper.Result
	Rejected []Rejected
}

// Failed counts archives whose processing recorded at least one failure.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// Syncer is the part of the dropper engine a Runner needs.
type Syncer interface {
	Sync(archivePath string, roots ...string) *dropper.Result
}

// Runner processes archives one after the other.
type Runner struct {
	Engine Syncer
	Out    io.Writer
	Log    *slog.Logger
}

// FilterArchives keeps the arguments naming an existing .zip file, as
// absolute paths in their original order.
func FilterArchives(args []string) ([]string, []Rejected) {
	var accepted []string
	var rejected []Rejected
	for _, arg := range args {
		p := util.CleanInputPath(arg)
		if p == "" {
			continue
		}
		if !util.HasArchiveExt(p) {
			rejected = append(rejected, Rejected{Path: p, Reason: "not a .zip file"})
			continue
		}
		abs, err := util.GetAbsPath(p)
		if err != nil {
			rejected = append(rejected, Rejected{Path: p, Reason: err.Error()})
			continue
		}
		ok, err := util.IsFile(abs)
		if err != nil || !ok {
			rejected = append(rejected, Rejected{Path: abs, Reason: "file not found"})
			continue
		}
		accepted = append(accepted, abs)
	}
	return accepted, rejected
}

// Run filters args and synchronizes every accepted archive against roots.
// One archive failing never stops the next one.
func (r *Runner) Run(args []string, roots []string) *Report {
	archives, rejected := FilterArchives(args)
	report := &Report{Rejected: rejected}
	for _, rj := range rejected {
		warnColor.Fprintf(r.Out, "Skipped '%s': %s\n", rj.Path, rj.Reason)
		r.logger().Info("argument rejected", "path", rj.Path, "reason", rj.Reason)
	}
	if len(archives) == 0 {
		warnColor.Fprintln(r.Out, "No .zip archives to process.")
		return report
	}

	for i, a := range archives {
		titleColor.Fprintf(r.Out, "\n[%d/%d] %s\n", i+1, len(archives), filepath.Base(a))
		res := r.Engine.Sync(a, roots...)
		r.print(res)
		report.Results = append(report.Results, res)
	}
	return report
}

func (r *Runner) print(res *dropper.Result) {
	if res.Code != "" {
		fmt.Fprintf(r.Out, "  Code: %s\n", res.Code)
	}
	switch res.Status {
	case dropper.StatusSkipped:
		warnColor.Fprintf(r.Out, "  %s\n", res.Describe())
		return
	case dropper.StatusDryRun:
		for _, d := range res.Matched {
			fmt.Fprintf(r.Out, "  ~ would replace %s\n", d)
		}
		return
	}
	for _, d := range res.Updated {
		okColor.Fprintf(r.Out, "  + updated %s\n", d)
	}
	for _, f := range res.Failures {
		errColor.Fprintf(r.Out, "  ! %s\n", f.Error())
	}
	if res.Err != nil {
		errColor.Fprintf(r.Out, "  ! %v\n", res.Err)
	}
}

func (r *Runner) logger() *slog.Logger {
	return orDiscard(r.Log)
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return log
}

// PrintSummary renders one table row per processed archive.
func (r *Report) PrintSummary(w io.Writer) {
	if len(r.Results) == 0 {
		return
	}
	fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Archive", "Code", "Status", "Written", "Details"})
	table.SetAutoWrapText(false)
	for _, res := range r.Results {
		table.Append([]string{
			filepath.Base(res.Archive),
			res.Code,
			string(res.Status),
			humanize.Bytes(uint64(res.BytesWritten)),
			res.Describe(),
		})
	}
	table.Render()

	if failed := r.Failed(); failed > 0 {
		errColor.Fprintf(w, "%d of %d archives had errors.\n", failed, len(r.Results))
	} else {
		okColor.Fprintln(w, "Done.")
	}
}
