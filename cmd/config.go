// cmd/config.go
package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// configurable properties
const (
	propPauseOnExit   = "pause_on_exit"
	propStagedReplace = "staged_replace"
	propExclude       = "exclude"
)

var configProps = []string{propPauseOnExit, propStagedReplace, propExclude}

var configCmd = &cobra.Command{
	Use:   "config <get|set> <property> [value]",
	Short: "Get or set a JsonDropper setting",
	Long: `Read or change a setting stored in the config file.

Supported properties:
  pause_on_exit:  wait for Enter before closing the console (true/false)
  staged_replace: extract next to each folder first, swap only on success (true/false)
  exclude:        comma separated glob patterns of folders never searched,
                  relative to the root (e.g. "**/node_modules,.git")

Examples:
  jsondropper config get staged_replace
  jsondropper config set pause_on_exit false
  jsondropper config set exclude "**/node_modules,**/.git"
  jsondropper config set exclude ""`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return errors.New("missing arguments: expected an action (get/set) and a property")
		}
		action := strings.ToLower(args[0])
		if action != "get" && action != "set" {
			return fmt.Errorf("invalid action '%s', expected 'get' or 'set'", args[0])
		}
		if action == "set" && len(args) != 3 {
			return errors.New("'set' takes exactly one value")
		}
		if action == "get" && len(args) != 2 {
			return errors.New("'get' takes no value")
		}
		prop := strings.ToLower(args[1])
		for _, p := range configProps {
			if p == prop {
				return nil
			}
		}
		return fmt.Errorf("unsupported property '%s' (supported: %s)", args[1], strings.Join(configProps, ", "))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := strings.ToLower(args[0])
		prop := strings.ToLower(args[1])
		settings := appConfig.GetSettings()

		if action == "get" {
			switch prop {
			case propPauseOnExit:
				fmt.Printf("%s: %t\n", prop, settings.PauseOnExit)
			case propStagedReplace:
				fmt.Printf("%s: %t\n", prop, settings.StagedReplace)
			case propExclude:
				fmt.Printf("%s: %s\n", prop, strings.Join(settings.Exclude, ","))
			}
			return nil
		}

		value := args[2]
		var err error
		switch prop {
		case propPauseOnExit, propStagedReplace:
			var b bool
			if b, err = strconv.ParseBool(value); err != nil {
				return fmt.Errorf("'%s' expects true or false, got '%s'", prop, value)
			}
			if prop == propPauseOnExit {
				err = appConfig.SetPauseOnExit(b)
			} else {
				err = appConfig.SetStagedReplace(b)
			}
		case propExclude:
			err = appConfig.SetExclude(strings.Split(value, ","))
		}
		if err != nil {
			return fmt.Errorf("set %s: %w", prop, err)
		}
		fmt.Printf("%s set to: %s\n", prop, value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
