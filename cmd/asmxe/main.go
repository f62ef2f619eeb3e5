package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Urethramancer/sicxe/assembler"
	"github.com/Urethramancer/sicxe/object"
	"github.com/Urethramancer/sicxe/optab"
)

var (
	optabFile string
	outFile   string
	dump      bool
	listing   bool
)

// rootCmd assembles each named source file into <name>.obj.
var rootCmd = &cobra.Command{
	Use:   "asmxe [flags] [file...]",
	Short: "Two-pass SIC/XE assembler",
	Long: `Asmxe translates SIC/XE assembly source into H/T/M/E object records.

Each source file is written next to itself with an .obj extension unless
--out names the output. With no file arguments the source is read from
standard input and the object program printed to standard output.
Several files are assembled in parallel.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&optabFile, "optab", "", "operation table descriptor replacing the built-in table")
	rootCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file for a single input, - for standard output")
	rootCmd.Flags().BoolVar(&dump, "dump", false, "print the operation, symbol and literal tables")
	rootCmd.Flags().BoolVar(&listing, "listing", false, "print the pass 2 listing")
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

// result is one finished run, kept for ordered reporting.
type result struct {
	name string
	asm  *assembler.Assembler
	prog *object.Program
}

func run(cmd *cobra.Command, args []string) error {
	t, err := optab.Open(optabFile)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return cmd.Help()
		}
		asm, prog, err := assembler.AssembleSource(t, os.Stdin)
		if err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
		r := result{name: "stdin", asm: asm, prog: prog}
		if outFile == "" {
			outFile = "-"
		}
		if err := write(cmd.OutOrStdout(), outFile, prog); err != nil {
			return err
		}
		report(cmd.OutOrStdout(), t, r)
		return nil
	}

	if outFile != "" && len(args) > 1 {
		return fmt.Errorf("--out needs exactly one input file, got %d", len(args))
	}

	results := make([]result, len(args))
	var g errgroup.Group
	for i, name := range args {
		i, name := i, name
		g.Go(func() error {
			r, err := assembleFile(t, name)
			if err != nil {
				return err
			}
			results[i] = r
			dst := outFile
			if dst == "" {
				dst = objectName(name)
			}
			return write(cmd.OutOrStdout(), dst, r.prog)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, r := range results {
		report(cmd.OutOrStdout(), t, r)
	}
	return nil
}

func assembleFile(t *optab.Table, name string) (result, error) {
	f, err := os.Open(name)
	if err != nil {
		return result{}, err
	}
	defer f.Close()

	glog.V(1).Infof("Assembling %s", name)
	asm, prog, err := assembler.AssembleSource(t, f)
	if err != nil {
		return result{}, fmt.Errorf("%s: %w", name, err)
	}
	return result{name: name, asm: asm, prog: prog}, nil
}

// objectName replaces the source extension with .obj.
func objectName(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".obj"
}

func write(stdout io.Writer, dst string, prog *object.Program) error {
	if dst == "-" {
		_, err := io.WriteString(stdout, prog.String())
		return err
	}
	if err := os.WriteFile(dst, []byte(prog.String()), 0o644); err != nil {
		return err
	}
	glog.V(1).Infof("Wrote %s", dst)
	return nil
}

// report prints the optional listing and table dumps for one run.
func report(w io.Writer, t *optab.Table, r result) {
	if listing {
		fmt.Fprintf(w, "; %s\n", r.name)
		for _, l := range r.asm.Listing() {
			line := fmt.Sprintf("%06X  %-36s %X", l.Loc, describe(l.Statement), l.Code)
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}
	if !dump {
		return
	}
	printer := pp.New()
	printer.SetColoringEnabled(term.IsTerminal(int(os.Stdout.Fd())))
	ops := make(map[string]optab.Op, t.Len())
	for _, name := range t.Names() {
		ops[name], _ = t.Lookup(name)
	}
	printer.Fprintln(w, "OPTAB", ops)
	printer.Fprintln(w, "SYMTAB", r.asm.Symbols())
	printer.Fprintln(w, "LITTAB", r.asm.Literals())
	if ext := r.asm.Externals(); len(ext) > 0 {
		printer.Fprintln(w, "EXTERNAL", ext)
	}
}

// describe renders a statement in source form for the listing.
func describe(s assembler.Statement) string {
	var text string
	switch st := s.(type) {
	case *assembler.Directive:
		text = st.Name + " " + st.Operand
	case *assembler.RegisterInstr:
		text = st.Mnemonic + " " + st.R1
		if st.R2 != "" {
			text += "," + st.R2
		}
	case *assembler.MemoryInstr:
		mn := st.Mnemonic
		if st.Extended {
			mn = "+" + mn
		}
		text = mn + " " + st.Operand
	case *assembler.LiteralDef:
		text = st.Literal
	}
	return fmt.Sprintf("%-8s %s", s.Label(), text)
}
