package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/Urethramancer/sicxe/cpu"
	"github.com/Urethramancer/sicxe/object"
)

var (
	loadAt  string
	memSize int
)

// rootCmd loads an object program into a fresh machine and shows the result.
var rootCmd = &cobra.Command{
	Use:   "ldxe [flags] objfile",
	Short: "Relocating loader for SIC/XE object programs",
	Long: `Ldxe copies the Text records of an object program into memory at the
load address, applies the Modification records and prints the loaded
memory and the program counter.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		prog, err := object.Parse(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		at := prog.Header.Start
		if loadAt != "" {
			v, err := strconv.ParseUint(loadAt, 16, 20)
			if err != nil {
				return fmt.Errorf("load address %q: %w", loadAt, err)
			}
			at = int(v)
		}

		c := cpu.New(memSize)
		if err := prog.Load(c, at); err != nil {
			return err
		}
		glog.V(1).Infof("Loaded %s at %06X with %d relocations", prog.Header.Title, at, len(prog.Modifications))

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Loaded %s (%d bytes) at %06X\n\n", prog.Header.Title, prog.Header.Length, at)
		dumpMemory(w, c, at, prog.Header.Length)
		fmt.Fprintf(w, "\nPC=%06X\n", c.PC())
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&loadAt, "at", "", "load address in hex, defaults to the program start")
	rootCmd.Flags().IntVar(&memSize, "mem", cpu.MaxMemory, "memory size in bytes")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// dumpMemory prints n bytes from addr, 16 per line. Lines of zeros are skipped.
func dumpMemory(w io.Writer, c *cpu.CPU, addr, n int) {
	const perLine = 16
	for off := 0; off < n; off += perLine {
		size := min(perLine, n-off)
		b := c.ReadBytes(uint32(addr+off), size)
		if allZero(b) {
			continue
		}
		fmt.Fprintf(w, "%06X  % X\n", addr+off, b)
	}
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
