package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"jsondropper/internal/config"
)

// PrintBanner prints the program name and how it is meant to be used.
func PrintBanner(w io.Writer) {
	titleColor.Fprintln(w, "=== JsonDropper ===")
	fmt.Fprintln(w, "Drop form .zip exports onto the executable (or use Send To) to replace")
	fmt.Fprintln(w, "every project folder whose form.json carries the same Code.")
	fmt.Fprintln(w)
}

// PrintRoots renders the configured roots as a numbered table.
func PrintRoots(w io.Writer, roots []string, exists func(string) bool) {
	if len(roots) == 0 {
		warnColor.Fprintln(w, "No roots configured.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Root", "Status"})
	table.SetAutoWrapText(false)
	for i, r := range roots {
		status := "OK"
		if exists != nil && !exists(r) {
			status = "MISSING"
		}
		table.Append([]string{fmt.Sprint(i + 1), r, status})
	}
	table.Render()
}

// Manage runs the interactive setup shown when the program is started
// without archives. It returns nil when the user exits or input ends.
func Manage(cfg *config.Config, console *Console, exists func(string) bool) error {
	out := console.out
	for {
		fmt.Fprintln(out)
		PrintRoots(out, cfg.GetRoots(), exists)
		staged := "off"
		if cfg.GetSettings().StagedReplace {
			staged = "on"
		}

		idx, err := console.Choose("What do you want to do?", []string{
			"Add a root",
			"Remove a root",
			fmt.Sprintf("Toggle staged replace (now %s)", staged),
			"Exit",
		})
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch idx {
		case 0:
			p, err := console.ReadPath("Root directory (drag a folder here): ")
			if err != nil {
				return exitOnEOF(err)
			}
			if p == "" {
				continue
			}
			abs, err := cfg.AddRoot(p)
			if err != nil {
				errColor.Fprintf(out, "Cannot add root: %v\n", err)
				continue
			}
			okColor.Fprintf(out, "Added root '%s'.\n", abs)
		case 1:
			if len(cfg.GetRoots()) == 0 {
				warnColor.Fprintln(out, "Nothing to remove.")
				continue
			}
			ref, err := console.ReadPath("Number or path of the root to remove: ")
			if err != nil {
				return exitOnEOF(err)
			}
			if ref == "" {
				continue
			}
			removed, err := cfg.RemoveRoot(ref)
			if err != nil {
				errColor.Fprintf(out, "Cannot remove root: %v\n", err)
				continue
			}
			okColor.Fprintf(out, "Removed root '%s'.\n", removed)
		case 2:
			next := !cfg.GetSettings().StagedReplace
			if err := cfg.SetStagedReplace(next); err != nil {
				errColor.Fprintf(out, "Cannot save setting: %v\n", err)
				continue
			}
		default:
			return nil
		}
	}
}

func exitOnEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
