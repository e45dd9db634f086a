package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/paramflow/paramflow/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the CLI version",
	Example: "paramflow version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(fmt.Sprintf("paramflow %s on %s/%s", version.Version, runtime.GOOS, runtime.GOARCH))
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
