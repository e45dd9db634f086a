package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/paramflow/paramflow/pkg/dependency"
	"github.com/paramflow/paramflow/pkg/filesystem"
	"github.com/paramflow/paramflow/pkg/loader"
)

var statusBaseline string

var statusCmd = &cobra.Command{
	Use:   "status <params-file> <param>...",
	Short: "Report parameter changes since the recorded baseline",
	Long: `Compares the current values of the requested parameters against the
baseline recorded in a lock file and reports each changed parameter as
new, modified or deleted. Unchanged parameters are omitted.`,
	Example: "paramflow status params.yaml train.lr train.epochs --baseline pipeline.lock.json",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys := filesystem.NewOSFileSystem()
		loaders := loader.Defaults()

		rec := dependency.LockRecord{Path: args[0], Params: args[1:]}
		if statusBaseline != "" {
			data, err := os.ReadFile(statusBaseline)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			rec.Path = args[0]
			rec.Params = args[1:]
		}

		dep, err := dependency.FromLock("cli", rec, fsys, loaders)
		if err != nil {
			return err
		}

		report, err := dep.WorkspaceStatus()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}

		cmd.Println(string(out))
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusBaseline, "baseline", "", "Lock file holding the recorded baseline values")
	RootCmd.AddCommand(statusCmd)
}
