// cmd/sendto.go
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"jsondropper/internal/shell"
	"jsondropper/internal/util"
)

var sendToCmd = &cobra.Command{
	Use:       "sendto <install|remove>",
	Short:     "Add or remove JsonDropper in the Explorer \"Send To\" menu (Windows)",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"install", "remove"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "install":
			exe, err := os.Executable()
			if err != nil {
				return err
			}
			lnk, err := shell.InstallSendTo(exe)
			if err != nil {
				return err
			}
			util.SuccessPrint("Created '%s'.\n", lnk)
		case "remove":
			lnk, removed, err := shell.RemoveSendTo()
			if err != nil {
				return err
			}
			if !removed {
				util.WarningPrint("'%s' does not exist.\n", lnk)
				return nil
			}
			util.SuccessPrint("Removed '%s'.\n", lnk)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendToCmd)
}
