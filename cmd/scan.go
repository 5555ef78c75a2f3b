// cmd/scan.go
package cmd

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"jsondropper/internal/scan"
	"jsondropper/internal/util"
)

var scanCmd = &cobra.Command{
	Use:   "scan [directory...]",
	Short: "List the project folders and their Code below the given directories",
	Long: `Scan walks the given directories (default: the configured roots) and
prints every folder holding a form.json together with its Code. Nothing is
modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs := args
		if len(dirs) == 0 {
			dirs = appConfig.GetRoots()
		}
		if len(dirs) == 0 {
			util.WarningPrint("No roots configured and no directory given.\n")
			return nil
		}

		scanner, err := scan.New(util.NewHostFS(), scan.Options{Exclude: appConfig.GetSettings().Exclude, Logger: logger})
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Code", "Folder"})
		table.SetAutoWrapText(false)
		rows := 0
		for _, d := range dirs {
			abs, err := util.GetAbsPath(util.CleanInputPath(d))
			if err != nil {
				return err
			}
			candidates, err := scanner.Candidates(abs)
			if err != nil {
				util.WarningPrint("%v\n", err)
				continue
			}
			for _, c := range candidates {
				code := c.Code
				switch {
				case c.Err != nil:
					code = "(unreadable)"
				case !c.OK:
					code = "(no Code)"
				}
				table.Append([]string{code, c.Dir})
				rows++
			}
		}
		if rows == 0 {
			util.WarningPrint("No form.json found.\n")
			return nil
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
