package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudcmds/c0/bytecode"
	"github.com/cloudcmds/c0/dis"
)

func newDisCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file.o0]",
		Short: "Disassemble a module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disModule(cmd, v, args)
		},
	}
	cmd.Flags().Bool("json", false, "print the module as JSON")
	cmd.Flags().Int("func", -1, "disassemble one function only")
	_ = v.BindPFlag("json", cmd.Flags().Lookup("json"))
	_ = v.BindPFlag("func", cmd.Flags().Lookup("func"))
	return cmd
}

func disModule(cmd *cobra.Command, v *viper.Viper, args []string) error {
	data, err := readModule(cmd, v, args)
	if err != nil {
		return err
	}
	mod, err := bytecode.Decode(data)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if v.GetBool("json") {
		output, err := getOutputJSON(mod)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	// If a function index was provided, disassemble its code only
	if fn := v.GetInt("func"); fn >= 0 {
		instructions, err := dis.Disassemble(mod, fn)
		if err != nil {
			return err
		}
		return dis.Print(instructions, out)
	}
	return dis.PrintModule(mod, out)
}

func getOutputJSON(mod *bytecode.Module) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(mod, "", "  ")
	}
	data, err := json.Marshal(mod)
	if err != nil {
		return nil, err
	}
	return prettyjson.Format(data)
}
