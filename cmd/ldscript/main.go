package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/ldscript"
	"github.com/wippyai/ldscript/descriptor"
	"github.com/wippyai/ldscript/layout"
)

var (
	rootVerbose bool
	rootStrict  bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ldscript",
	Short: "Validate firmware memory layouts and generate linker scripts",
	Long: `ldscript reads a memory layout descriptor (.yaml, .json or .star),
checks that regions do not overlap and that every section sits in memory
with the rights it needs, then writes a GNU ld script and C startup glue.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !rootVerbose {
			return nil
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		logger = l
		ldscript.SetLogger(l)
		return nil
	},
}

func loadLayout(path string) (*layout.Layout, error) {
	opts := layout.DefaultOptions()
	opts.StrictSections = rootStrict
	return descriptor.Load(path, opts)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "log every registration and written file to stderr")
	rootCmd.PersistentFlags().BoolVar(&rootStrict, "strict", false, "reject sections defined more than once instead of keeping the last")
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
