package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudcmds/c0/vm"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file.o0]",
		Short: "Execute a module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModule(cmd, v, args)
		},
	}
	flags := cmd.Flags()
	flags.Int("entry", 0, "index of the function to start in")
	flags.Int("max-frames", vm.MaxFrameDepth, "call depth limit")
	flags.Int("max-stack", vm.MaxStackDepth, "operand stack limit per frame")
	flags.Int("max-heap", vm.MaxHeapCells, "heap cell limit per run")
	flags.String("input", "", "file the scan instructions read from (default stdin)")
	flags.Bool("trace", false, "log every instruction")
	flags.Bool("result", false, "print the value the entry function returns")
	for _, name := range []string{"entry", "max-frames", "max-stack", "max-heap", "input", "trace", "result"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func getVMOptions(cmd *cobra.Command, v *viper.Viper) ([]vm.Option, func() error, error) {
	closer := func() error { return nil }
	opts := []vm.Option{
		vm.WithOutput(cmd.OutOrStdout()),
		vm.WithInput(cmd.InOrStdin()),
		vm.WithLogger(newLogger(v, cmd.ErrOrStderr())),
		vm.WithEntry(v.GetInt("entry")),
		vm.WithMaxFrameDepth(v.GetInt("max-frames")),
		vm.WithMaxStackDepth(v.GetInt("max-stack")),
		vm.WithMaxHeapCells(v.GetInt("max-heap")),
		vm.WithTrace(v.GetBool("trace")),
	}
	if path := v.GetString("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, vm.WithInput(f))
		closer = f.Close
	}
	return opts, closer, nil
}

func runModule(cmd *cobra.Command, v *viper.Viper, args []string) error {
	if v.GetBool("stdin") && v.GetString("input") == "" {
		return fmt.Errorf("--stdin needs --input for the program's own input")
	}
	data, err := readModule(cmd, v, args)
	if err != nil {
		return err
	}
	opts, closer, err := getVMOptions(cmd, v)
	if err != nil {
		return err
	}
	defer closer()

	machine, err := vm.Load(data, opts...)
	if err != nil {
		return err
	}
	if err := machine.Run(cmd.Context()); err != nil {
		return err
	}
	if v.GetBool("result") {
		if result, ok := machine.TOS(); ok {
			fmt.Fprintln(cmd.OutOrStdout(), result)
		}
	}
	return nil
}
