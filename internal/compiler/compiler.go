// Package compiler orchestrates the whole pipeline (spec.md §6.3):
// decode the EST document, resolve scopes, lower to IR, run the
// optimizer, and emit a Wasm binary module.
package compiler

import (
	"github.com/lhaig/wasmc/internal/codegen"
	"github.com/lhaig/wasmc/internal/diagnostic"
	"github.com/lhaig/wasmc/internal/est"
	"github.com/lhaig/wasmc/internal/lower"
	"github.com/lhaig/wasmc/internal/optimize"
	"github.com/lhaig/wasmc/internal/resolver"
)

// Options configures Compile/Check beyond the EST document and import
// spec itself. spec.md §6.3's `compile(source_est_document, imports_spec)`
// entry point is deliberately bare; Options is this repo's extension
// point for the ambient CLI configuration SPEC_FULL.md's §2 calls for
// (strict-mode global resolution, the entry export name, initial linear
// memory size).
type Options struct {
	// Strict selects UndeclaredGlobal-as-error (true) vs. implicit-global
	// (false) resolution, per spec.md §4.5. The CLI's --strict flag.
	Strict bool
	// EntryExport additionally exports the entry function under this
	// name, alongside the mandatory Start-section invocation. Empty
	// means no additional export. The CLI's --entry flag.
	EntryExport string
	// MemoryPages sets the module's initial linear memory size, in
	// 64KiB Wasm pages; 0 falls back to codegen.DefaultMemoryPages. The
	// CLI's --memory-pages flag.
	MemoryPages uint32
}

// DefaultOptions is what the CLI applies when a flag is left unset:
// strict resolution, an entry export named "main", and codegen's
// default memory size.
func DefaultOptions() Options {
	return Options{Strict: true, EntryExport: "main", MemoryPages: codegen.DefaultMemoryPages}
}

// Compile runs the full pipeline against an EST document and an import
// spec (see ParseImports). On any error it returns (nil, false) having
// delivered diagnostics to logger; on success it returns the complete
// Wasm binary module.
func Compile(document []byte, importsSpec string, opts Options, logger diagnostic.Logger) ([]byte, bool) {
	diags := diagnostic.New(logger)

	prog, err := est.Decode(document)
	if err != nil {
		diags.Errorf(nil, "%s", err)
		return nil, false
	}

	imports, predefined, importIndex, err := ParseImports(importsSpec)
	if err != nil {
		diags.Errorf(nil, "%s", err)
		return nil, false
	}

	resolver.Resolve(prog, predefined, opts.Strict, diags)
	if diags.HasErrors() {
		return nil, false
	}

	addressTaken := est.CollectAddressTaken(prog)

	irProg := lower.Lower(prog, imports, importIndex, diags)
	if diags.HasErrors() {
		return nil, false
	}

	optimize.Unreachable(irProg)

	mod := codegen.Generate(irProg, codegen.AddressTakenFromEST(addressTaken), opts.EntryExport, opts.MemoryPages)
	return mod.Serialize(), true
}

// Check runs decode + resolve + lower only (no codegen), for the CLI's
// `check` subcommand and for diagnostics-only callers. Only opts.Strict
// applies; EntryExport/MemoryPages have no effect since codegen never runs.
func Check(document []byte, importsSpec string, opts Options, logger diagnostic.Logger) *diagnostic.Diagnostics {
	diags := diagnostic.New(logger)

	prog, err := est.Decode(document)
	if err != nil {
		diags.Errorf(nil, "%s", err)
		return diags
	}

	imports, predefined, importIndex, err := ParseImports(importsSpec)
	if err != nil {
		diags.Errorf(nil, "%s", err)
		return diags
	}

	resolver.Resolve(prog, predefined, opts.Strict, diags)
	if diags.HasErrors() {
		return diags
	}

	lower.Lower(prog, imports, importIndex, diags)
	return diags
}
