// cmd/roots.go
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"jsondropper/internal/config"
	"jsondropper/internal/scan"
	"jsondropper/internal/session"
	"jsondropper/internal/util"
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "Manage the directories searched for project folders",
}

var rootsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured roots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session.PrintRoots(os.Stdout, appConfig.GetRoots(), rootExists)
		return nil
	},
}

var rootsAddCmd = &cobra.Command{
	Use:   "add <directory>",
	Short: "Add a root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, err := appConfig.AddRoot(util.CleanInputPath(args[0]))
		if errors.Is(err, config.ErrRootExists) {
			util.WarningPrint("Root '%s' is already configured.\n", abs)
			return nil
		}
		if err != nil {
			return fmt.Errorf("add root: %w", err)
		}
		util.SuccessPrint("Added root '%s'.\n", abs)
		return nil
	},
}

var rootsRemoveCmd = &cobra.Command{
	Use:   "remove <number|directory>",
	Short: "Remove a root by its number in 'roots list' or by path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := appConfig.RemoveRoot(util.CleanInputPath(args[0]))
		if err != nil {
			return fmt.Errorf("remove root: %w", err)
		}
		util.SuccessPrint("Removed root '%s'.\n", removed)
		return nil
	},
}

var rootsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every root exists and count the project folders below it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roots := appConfig.GetRoots()
		if len(roots) == 0 {
			return session.ErrNoRoots
		}
		scanner, err := scan.New(util.NewHostFS(), scan.Options{Exclude: appConfig.GetSettings().Exclude, Logger: logger})
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Root", "Status", "Forms", "Without Code"})
		table.SetAutoWrapText(false)
		broken := 0
		for _, r := range roots {
			candidates, err := scanner.Candidates(r)
			if err != nil {
				broken++
				logger.Debug("root check failed", "root", r, "error", err)
				table.Append([]string{r, "UNAVAILABLE", "-", "-"})
				continue
			}
			noCode := 0
			for _, c := range candidates {
				if !c.OK {
					noCode++
				}
			}
			table.Append([]string{r, "OK", fmt.Sprint(len(candidates)), fmt.Sprint(noCode)})
		}
		table.Render()

		if broken > 0 {
			return fmt.Errorf("%d of %d roots are unavailable", broken, len(roots))
		}
		return nil
	},
}

func init() {
	rootsCmd.AddCommand(rootsListCmd, rootsAddCmd, rootsRemoveCmd, rootsCheckCmd)
	rootCmd.AddCommand(rootsCmd)
}
