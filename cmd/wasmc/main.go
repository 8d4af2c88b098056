// Command wasmc compiles a pre-parsed Extended-Spec Tree document into a
// WebAssembly binary module (spec.md §6.5).
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lhaig/wasmc/internal/codegen"
	"github.com/lhaig/wasmc/internal/compiler"
	"github.com/lhaig/wasmc/internal/diagnostic"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "wasmc",
		Short:   "Compile an Extended-Spec Tree document to a Wasm binary module",
		Version: version,
	}
	root.AddCommand(compileCmd(), checkCmd())
	return root
}

func compileCmd() *cobra.Command {
	var importsPath, outPath, entryExport string
	var strict bool
	var memoryPages uint32
	cmd := &cobra.Command{
		Use:   "compile [est-file]",
		Short: "Compile an EST document to out.wasm (or --out)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := readInput(args)
			if err != nil {
				return err
			}
			importsSpec, err := readImportsSpec(importsPath)
			if err != nil {
				return err
			}

			logger := diagnostic.NewLogrusSink()
			opts := compiler.Options{Strict: strict, EntryExport: entryExport, MemoryPages: memoryPages}
			wasmBytes, ok := compiler.Compile(document, importsSpec, opts, logger)
			if !ok {
				return fmt.Errorf("compilation failed")
			}

			if outPath == "" {
				outPath = "out.wasm"
			}
			if err := os.WriteFile(outPath, wasmBytes, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Printf("wrote %s (%d bytes)\n", outPath, len(wasmBytes))
			return nil
		},
	}
	cmd.Flags().StringVar(&importsPath, "imports", "", "path to an import spec file (module.name:params->result per line)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default out.wasm)")
	cmd.Flags().BoolVar(&strict, "strict", true, "treat an undeclared global identifier as an error instead of an implicit global")
	cmd.Flags().StringVar(&entryExport, "entry", "main", "export name for the program's entry function (empty disables the extra export)")
	cmd.Flags().Uint32Var(&memoryPages, "memory-pages", codegen.DefaultMemoryPages, "initial linear memory size, in 64KiB Wasm pages")
	return cmd
}

func checkCmd() *cobra.Command {
	var importsPath string
	var strict bool
	cmd := &cobra.Command{
		Use:   "check [est-file]",
		Short: "Resolve and lower an EST document, reporting diagnostics only",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := readInput(args)
			if err != nil {
				return err
			}
			importsSpec, err := readImportsSpec(importsPath)
			if err != nil {
				return err
			}

			logger := diagnostic.NewLogrusSink()
			opts := compiler.Options{Strict: strict}
			diags := compiler.Check(document, importsSpec, opts, logger)
			if diags.HasErrors() {
				return fmt.Errorf("%d diagnostic(s)", diags.Count())
			}
			fmt.Println("no errors found")
			return nil
		},
	}
	cmd.Flags().StringVar(&importsPath, "imports", "", "path to an import spec file (module.name:params->result per line)")
	cmd.Flags().BoolVar(&strict, "strict", true, "treat an undeclared global identifier as an error instead of an implicit global")
	return cmd
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

func readImportsSpec(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading import spec %s: %w", path, err)
	}
	return string(b), nil
}
