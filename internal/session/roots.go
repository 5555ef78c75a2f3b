package session

import (
	"errors"
	"fmt"
	"log/slog"

	"jsondropper/internal/util"
)

var (
	ErrNoRoots          = errors.New("no target root configured; run without arguments to add one")
	ErrRootUnavailable  = errors.New("none of the selected roots is an existing directory")
	errSelectionAborted = errors.New("root selection aborted")
)

// RootRequest describes where a batch should look for project folders.
type RootRequest struct {
	// Explicit roots given on the command line replace the configured ones.
	Explicit []string
	// All selects every configured root without asking.
	All bool
}

// ResolveRoots turns the configured roots and req into the list of
// directories a batch searches. When several roots are configured and the
// console is interactive the user picks one of them or all; otherwise all
// are used. Roots that do not exist are reported and dropped.
func ResolveRoots(configured []string, req RootRequest, console *Console, log *slog.Logger) ([]string, error) {
	log = orDiscard(log)
	candidates := configured
	if len(req.Explicit) > 0 {
		candidates = nil
		for _, r := range req.Explicit {
			abs, err := util.GetAbsPath(util.CleanInputPath(r))
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, abs)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoRoots
	}

	if len(candidates) > 1 && len(req.Explicit) == 0 && !req.All && console != nil && console.Interactive {
		options := append(append([]string(nil), candidates...), "All roots")
		idx, err := console.Choose("Several roots are configured. Where should the archives go?", options)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errSelectionAborted, err)
		}
		if idx < len(candidates) {
			candidates = candidates[idx : idx+1]
		}
	}

	var roots []string
	for _, r := range candidates {
		ok, err := util.IsDir(r)
		if err != nil || !ok {
			util.WarningPrint("Root '%s' does not exist or is not a directory, ignored.\n", r)
			log.Warn("root unavailable", "root", r, "error", err)
			continue
		}
		roots = append(roots, r)
	}
	if len(roots) == 0 {
		return nil, ErrRootUnavailable
	}
	return roots, nil
}
