package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/filesystem"
	"github.com/paramflow/paramflow/pkg/loader"
	yamlloader "github.com/paramflow/paramflow/pkg/loader/yaml"
	"github.com/paramflow/paramflow/pkg/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <pipeline-file>",
	Short: "Resolve a templated pipeline definition",
	Long: `Resolves every ${...} placeholder in the pipeline definition against its
parameter files and prints the resolved definition, with each stage's params
list extended by the parameter entries the stage actually referenced.`,
	Example: "paramflow resolve pipeline.yaml",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys := filesystem.NewOSFileSystem()
		loaders := loader.Defaults()

		raw, err := loaders.LoadFile(fsys, args[0])
		if err != nil {
			return err
		}

		data, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: '%s' is not a mapping", errors.ErrInvalidDefinition, args[0])
		}

		r, err := resolver.New(fsys, loaders, cfg, filepath.Dir(args[0]), data)
		if err != nil {
			return err
		}

		resolved, err := r.Resolve()
		if err != nil {
			return err
		}

		out, err := yamlloader.New().Encode(resolved)
		if err != nil {
			return err
		}

		cmd.Print(string(out))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(resolveCmd)
}
