package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/ldscript"
	"github.com/wippyai/ldscript/script"
)

var (
	generateOutput    string
	generateNoStartup bool
	generateOpts      = script.DefaultOptions()
)

var generateCmd = &cobra.Command{
	Use:   "generate <descriptor>",
	Short: "Write the linker script and startup glue for a descriptor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(args[0])
		if err != nil {
			return err
		}

		opts := generateOpts
		opts.Startup = !generateNoStartup

		paths, err := ldscript.GenerateWith(l, generateOutput, opts)
		if err != nil {
			return err
		}

		logger.Debug("generation finished", zap.Strings("paths", paths))
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", ".", "existing directory to write into")
	generateCmd.Flags().BoolVar(&generateNoStartup, "no-startup", false, "skip the C startup glue")
	generateCmd.Flags().StringVar(&generateOpts.Entry, "entry", generateOpts.Entry, "entry point symbol")
	generateCmd.Flags().StringVar(&generateOpts.ScriptName, "script-name", generateOpts.ScriptName, "linker script file name")
	generateCmd.Flags().StringVar(&generateOpts.StartupName, "startup-name", generateOpts.StartupName, "startup glue file name")
	generateCmd.Flags().StringVar(&generateOpts.InitFunc, "init-func", generateOpts.InitFunc, "name of the generated C init function")
	rootCmd.AddCommand(generateCmd)
}
