package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/Urethramancer/sicxe/disassembler"
	"github.com/Urethramancer/sicxe/object"
	"github.com/Urethramancer/sicxe/optab"
)

var (
	optabFile string
	outFile   string
	source    bool
)

var rootCmd = &cobra.Command{
	Use:   "disxe [flags] objfile",
	Short: "SIC/XE object program disassembler",
	Long: `Disxe decodes the Text records of an object program into a listing.

With --source the output is assembly source that asmxe accepts, bracketed
by START and END.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := optab.Open(optabFile)
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		prog, err := object.Parse(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		insts, err := disassembler.Disassemble(prog, t)
		if err != nil {
			return err
		}
		glog.V(1).Infof("Decoded %d elements from %s", len(insts), args[0])

		var text string
		if source {
			text = disassembler.Source(prog, insts)
		} else {
			text = disassembler.Format(insts)
		}
		if outFile == "" {
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}
		if err := os.WriteFile(outFile, []byte(text), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Disassembly written to %s\n", outFile)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&optabFile, "optab", "", "operation table descriptor replacing the built-in table")
	rootCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file")
	rootCmd.Flags().BoolVar(&source, "source", false, "emit reassemblable source instead of a listing")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
