package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudcmds/c0/bytecode"
)

var errInvalidModule = errors.New("module is invalid")

func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file.o0]",
		Short: "Decode and validate a module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkModule(cmd, v, args)
		},
	}
}

// checkModule lists every structural problem in the module.
func checkModule(cmd *cobra.Command, v *viper.Viper, args []string) error {
	data, err := readModule(cmd, v, args)
	if err != nil {
		return err
	}
	mod, err := bytecode.Decode(data)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	err = mod.Validate()
	if err == nil {
		fmt.Fprintf(out, "%s %d constant(s), %d function(s)\n",
			color.GreenString("ok"), mod.ConstantCount(), mod.FunctionCount())
		return nil
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return err
	}
	for _, problem := range merr.Errors {
		fmt.Fprintf(out, "%s %s\n", color.RedString("error"), problem)
	}
	return fmt.Errorf("%w: %d problem(s)", errInvalidModule, len(merr.Errors))
}
