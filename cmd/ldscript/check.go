package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <descriptor>",
	Short: "Validate a descriptor without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(args[0])
		if err != nil {
			return err
		}
		img, err := l.Freeze()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d regions, %d sections, %d boot-copy)\n",
			args[0], len(img.Regions()), len(img.Sections()), len(img.BootCopy()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
