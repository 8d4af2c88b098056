package compiler

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lhaig/wasmc/internal/ir"
	"github.com/lhaig/wasmc/internal/resolver"
)

// ParseImports parses an import spec (spec.md §6.3). It takes no logger:
// a malformed spec comes back as the returned error, which Compile and
// Check report through their own logger. The grammar is one import per
// non-empty, non-`#`-comment line, shaped
//
//	module.name:paramType,paramType->resultType
//
// with the param list and `->resultType` both optional (an import
// taking no arguments has an empty list; one with no return value omits
// the arrow entirely). Type tokens are ir.VarType's own names: number,
// boolean, string, undefined, func, any.
//
// It returns the ir.Import table in declaration order (which doubles as
// the Wasm import index every ir.ImportFn.Index names), a predefined
// table binding each import's local name to a depth-0 VarLocId ahead of
// resolution, and the VarLocId -> import-index map lowering needs to
// turn a reference to that name into ir.ImportFn instead of ir.VarName.
func ParseImports(spec string) ([]*ir.Import, map[string]resolver.VarLocId, map[resolver.VarLocId]int, error) {
	var imports []*ir.Import
	predefined := make(map[string]resolver.VarLocId)
	importIndex := make(map[resolver.VarLocId]int)

	for lineNo, line := range strings.Split(spec, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		imp, localName, err := parseImportLine(line)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "import spec line %d", lineNo+1)
		}
		if _, dup := predefined[localName]; dup {
			return nil, nil, nil, errors.Errorf("import spec line %d: %q already bound", lineNo+1, localName)
		}

		idx := len(imports)
		imports = append(imports, imp)
		id := resolver.VarLocId{Depth: 0, Index: idx}
		predefined[localName] = id
		importIndex[id] = idx
	}

	return imports, predefined, importIndex, nil
}

func parseImportLine(line string) (*ir.Import, string, error) {
	dot := strings.Index(line, ".")
	colon := strings.Index(line, ":")
	if dot < 0 || colon < 0 || dot > colon {
		return nil, "", errors.Errorf("expected module.name:paramTypes->resultType, got %q", line)
	}
	module := line[:dot]
	name := line[dot+1 : colon]
	rest := line[colon+1:]

	paramsPart, resultPart, hasResult := strings.Cut(rest, "->")

	var params []ir.VarType
	if paramsPart != "" {
		for _, tok := range strings.Split(paramsPart, ",") {
			t, err := parseVarType(strings.TrimSpace(tok))
			if err != nil {
				return nil, "", err
			}
			params = append(params, t)
		}
	}

	var result *ir.VarType
	if hasResult {
		t, err := parseVarType(strings.TrimSpace(resultPart))
		if err != nil {
			return nil, "", err
		}
		result = ir.Some(t)
	}

	return &ir.Import{Module: module, Name: name, Params: params, Result: result}, name, nil
}

func parseVarType(tok string) (ir.VarType, error) {
	switch tok {
	case "any":
		return ir.TAny, nil
	case "number":
		return ir.TNumber, nil
	case "boolean":
		return ir.TBoolean, nil
	case "string":
		return ir.TString, nil
	case "undefined":
		return ir.TUndefined, nil
	case "func":
		return ir.TFunc, nil
	default:
		return 0, errors.Errorf("unknown type token %q", tok)
	}
}
