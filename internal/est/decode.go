package est

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// UnsupportedNodeError is returned when a recognized-but-not-handled, or
// wholly unknown, `type` tag is encountered while decoding.
type UnsupportedNodeError struct {
	Type string
	Loc  *Location
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported node type %q", e.Type)
}

// ParseError wraps a malformed-document condition (Kind ParseEST).
type ParseError struct {
	cause error
}

func (e *ParseError) Error() string { return "malformed EST document: " + e.cause.Error() }
func (e *ParseError) Unwrap() error { return e.cause }

// rawNode is the wire shape shared by every EST node: a discriminant
// `type` tag plus a source location, with all variant-specific fields
// left in RawMessage form for a second decoding pass.
type rawNode struct {
	Type string           `json:"type"`
	File string           `json:"file"`
	Start *Position       `json:"start"`
	End   *Position       `json:"end"`

	Body         json.RawMessage `json:"body"`
	Test         json.RawMessage `json:"test"`
	Consequent   json.RawMessage `json:"consequent"`
	Alternate    json.RawMessage `json:"alternate"`
	Argument     json.RawMessage `json:"argument"`
	Label        string          `json:"label"`
	Object       json.RawMessage `json:"object"`
	Expression   json.RawMessage `json:"expression"`
	Directive    string          `json:"directive"`
	Kind         string          `json:"kind"`
	Declarations []json.RawMessage `json:"declarations"`
	ID           json.RawMessage `json:"id"`
	Init         json.RawMessage `json:"init"`
	Name         string          `json:"name"`
	Value        json.RawMessage `json:"value"`
	Regex        *struct {
		Pattern string `json:"pattern"`
		Flags   string `json:"flags"`
	} `json:"regex"`
	Operator  string          `json:"operator"`
	Prefix    *bool           `json:"prefix"`
	Left      json.RawMessage `json:"left"`
	Right     json.RawMessage `json:"right"`
	Callee    json.RawMessage `json:"callee"`
	Arguments []json.RawMessage `json:"arguments"`
	Params    []json.RawMessage `json:"params"`
	Source    json.RawMessage `json:"source"`
	Specifiers []json.RawMessage `json:"specifiers"`
	Local     json.RawMessage `json:"local"`
	Imported  json.RawMessage `json:"imported"`
}

// Decode parses a JSON EST document into its root Program node.
func Decode(document []byte) (*Program, error) {
	var raw rawNode
	if err := json.Unmarshal(document, &raw); err != nil {
		return nil, &ParseError{cause: err}
	}
	node, err := decodeNode(&raw)
	if err != nil {
		return nil, err
	}
	prog, ok := node.(*Program)
	if !ok {
		return nil, &ParseError{cause: errors.Errorf("document root is %q, not Program", raw.Type)}
	}
	return prog, nil
}

func locOf(r *rawNode) *Location {
	if r.File == "" && r.Start == nil && r.End == nil {
		return nil
	}
	return &Location{File: r.File, Start: r.Start, End: r.End}
}

func decodeNode(r *rawNode) (Node, error) {
	b := base{Location: locOf(r)}
	switch r.Type {
	case "Program":
		body, err := decodeNodeList(r.Body)
		if err != nil {
			return nil, err
		}
		return &Program{base: b, Body: body}, nil

	case "BlockStatement":
		body, err := decodeNodeList(r.Body)
		if err != nil {
			return nil, err
		}
		return &Block{base: b, Body: body}, nil

	case "IfStatement":
		test, err := decodeRaw(r.Test)
		if err != nil {
			return nil, err
		}
		cons, err := decodeRaw(r.Consequent)
		if err != nil {
			return nil, err
		}
		var alt Node
		if len(r.Alternate) > 0 && string(r.Alternate) != "null" {
			alt, err = decodeRaw(r.Alternate)
			if err != nil {
				return nil, err
			}
		}
		return &If{base: b, Test: test, Consequent: cons, Alternate: alt}, nil

	case "WhileStatement":
		test, err := decodeRaw(r.Test)
		if err != nil {
			return nil, err
		}
		body, err := decodeRaw(r.Body)
		if err != nil {
			return nil, err
		}
		return &While{base: b, Test: test, Body: body}, nil

	case "ReturnStatement":
		var arg Node
		var err error
		if len(r.Argument) > 0 && string(r.Argument) != "null" {
			arg, err = decodeRaw(r.Argument)
			if err != nil {
				return nil, err
			}
		}
		return &Return{base: b, Argument: arg}, nil

	case "BreakStatement":
		return &Break{base: b, Label: r.Label}, nil

	case "ContinueStatement":
		return &Continue{base: b, Label: r.Label}, nil

	case "LabeledStatement":
		body, err := decodeRaw(r.Body)
		if err != nil {
			return nil, err
		}
		return &Labeled{base: b, Label: r.Label, Body: body}, nil

	case "WithStatement":
		obj, err := decodeRaw(r.Object)
		if err != nil {
			return nil, err
		}
		body, err := decodeRaw(r.Body)
		if err != nil {
			return nil, err
		}
		return &With{base: b, Object: obj, Body: body}, nil

	case "DebuggerStatement":
		return &Debugger{base: b}, nil

	case "EmptyStatement":
		return &Empty{base: b}, nil

	case "ExpressionStatement":
		if r.Directive != "" {
			return &Directive{base: b, Value: r.Directive}, nil
		}
		expr, err := decodeRaw(r.Expression)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{base: b, Expression: expr}, nil

	case "VariableDeclaration":
		kind, err := decodeVarKind(r.Kind)
		if err != nil {
			return nil, err
		}
		decls := make([]*VariableDeclarator, 0, len(r.Declarations))
		for _, d := range r.Declarations {
			decl, err := decodeDeclarator(d)
			if err != nil {
				return nil, err
			}
			decls = append(decls, decl)
		}
		return &VariableDeclaration{base: b, Kind: kind, Declarations: decls}, nil

	case "Identifier":
		return &Identifier{base: b, Name: r.Name}, nil

	case "Literal":
		return decodeLiteral(r, b)

	case "UnaryExpression":
		arg, err := decodeRaw(r.Argument)
		if err != nil {
			return nil, err
		}
		return &Unary{base: b, Operator: UnaryOp(r.Operator), Argument: arg}, nil

	case "UpdateExpression":
		arg, err := decodeRaw(r.Argument)
		if err != nil {
			return nil, err
		}
		prefix := r.Prefix != nil && *r.Prefix
		return &Update{base: b, Operator: UpdateOp(r.Operator), Argument: arg, Prefix: prefix}, nil

	case "BinaryExpression":
		left, err := decodeRaw(r.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeRaw(r.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{base: b, Operator: BinaryOp(r.Operator), Left: left, Right: right}, nil

	case "LogicalExpression":
		left, err := decodeRaw(r.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeRaw(r.Right)
		if err != nil {
			return nil, err
		}
		return &Logical{base: b, Operator: LogicalOp(r.Operator), Left: left, Right: right}, nil

	case "AssignmentExpression":
		left, err := decodeRaw(r.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeRaw(r.Right)
		if err != nil {
			return nil, err
		}
		return &Assignment{base: b, Operator: AssignmentOp(r.Operator), Target: left, Value: right}, nil

	case "ConditionalExpression":
		test, err := decodeRaw(r.Test)
		if err != nil {
			return nil, err
		}
		cons, err := decodeRaw(r.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := decodeRaw(r.Alternate)
		if err != nil {
			return nil, err
		}
		return &Conditional{base: b, Test: test, Consequent: cons, Alternate: alt}, nil

	case "CallExpression":
		callee, err := decodeRaw(r.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeNodeSlice(r.Arguments)
		if err != nil {
			return nil, err
		}
		return &Call{base: b, Callee: callee, Arguments: args}, nil

	case "FunctionDeclaration":
		params, err := decodeParams(r.Params)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(r.Body)
		if err != nil {
			return nil, err
		}
		return &FunctionDeclaration{base: b, Name: r.Name, Params: params, Body: body}, nil

	case "FunctionExpression":
		params, err := decodeParams(r.Params)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(r.Body)
		if err != nil {
			return nil, err
		}
		return &FunctionExpression{base: b, Name: r.Name, Params: params, Body: body}, nil

	case "ArrowFunctionExpression":
		params, err := decodeParams(r.Params)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(r.Body)
		if err != nil {
			return nil, err
		}
		return &ArrowFunctionExpression{base: b, Params: params, Body: body}, nil

	case "ImportDeclaration":
		return decodeImport(r, b)

	default:
		return nil, &UnsupportedNodeError{Type: r.Type, Loc: b.Location}
	}
}

func decodeVarKind(s string) (VariableKind, error) {
	switch s {
	case "var":
		return VarVar, nil
	case "let":
		return VarLet, nil
	case "const":
		return VarConst, nil
	default:
		return 0, &ParseError{cause: errors.Errorf("unknown variable declaration kind %q", s)}
	}
}

func decodeDeclarator(raw json.RawMessage) (*VariableDeclarator, error) {
	var r rawNode
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, &ParseError{cause: err}
	}
	idNode, err := decodeRaw(r.ID)
	if err != nil {
		return nil, err
	}
	id, ok := idNode.(*Identifier)
	if !ok {
		return nil, &ParseError{cause: errors.New("VariableDeclarator.id is not an Identifier")}
	}
	var init Node
	if len(r.Init) > 0 && string(r.Init) != "null" {
		init, err = decodeRaw(r.Init)
		if err != nil {
			return nil, err
		}
	}
	return &VariableDeclarator{base: base{Location: locOf(&r)}, ID: id, Init: init}, nil
}

func decodeLiteral(r *rawNode, b base) (Node, error) {
	if r.Regex != nil {
		return &Literal{base: b, Kind: LitRegExp, RegExp: r.Regex.Pattern}, nil
	}
	if len(r.Value) == 0 || string(r.Value) == "null" {
		return &Literal{base: b, Kind: LitNull}, nil
	}
	var v interface{}
	if err := json.Unmarshal(r.Value, &v); err != nil {
		return nil, &ParseError{cause: err}
	}
	switch vv := v.(type) {
	case string:
		return &Literal{base: b, Kind: LitString, String: vv}, nil
	case bool:
		return &Literal{base: b, Kind: LitBool, Bool: vv}, nil
	case float64:
		return &Literal{base: b, Kind: LitNumber, Number: vv}, nil
	default:
		return &Literal{base: b, Kind: LitUndefined}, nil
	}
}

func decodeParams(raw []json.RawMessage) ([]Param, error) {
	params := make([]Param, 0, len(raw))
	for _, p := range raw {
		node, err := decodeRaw(p)
		if err != nil {
			return nil, err
		}
		ident, ok := node.(*Identifier)
		if !ok {
			return nil, &ParseError{cause: errors.New("function parameter is not an Identifier")}
		}
		params = append(params, Param{Name: ident.Name})
	}
	return params, nil
}

func decodeBlock(raw json.RawMessage) (*Block, error) {
	node, err := decodeRaw(raw)
	if err != nil {
		return nil, err
	}
	block, ok := node.(*Block)
	if !ok {
		return nil, &ParseError{cause: errors.New("function body is not a BlockStatement")}
	}
	return block, nil
}

func decodeImport(r *rawNode, b base) (Node, error) {
	var source string
	if len(r.Source) > 0 {
		var s string
		if err := json.Unmarshal(r.Source, &s); err == nil {
			source = s
		} else {
			node, err := decodeRaw(r.Source)
			if err != nil {
				return nil, err
			}
			if lit, ok := node.(*Literal); ok {
				source = lit.String
			}
		}
	}
	specs := make([]ImportSpecifier, 0, len(r.Specifiers))
	for _, raw := range r.Specifiers {
		var sr rawNode
		if err := json.Unmarshal(raw, &sr); err != nil {
			return nil, &ParseError{cause: err}
		}
		localNode, err := decodeRaw(sr.Local)
		if err != nil {
			return nil, err
		}
		local, ok := localNode.(*Identifier)
		if !ok {
			return nil, &ParseError{cause: errors.New("import specifier local is not an Identifier")}
		}
		switch sr.Type {
		case "ImportSpecifier":
			importedName := local.Name
			if len(sr.Imported) > 0 {
				impNode, err := decodeRaw(sr.Imported)
				if err != nil {
					return nil, err
				}
				if impIdent, ok := impNode.(*Identifier); ok {
					importedName = impIdent.Name
				}
			}
			specs = append(specs, ImportSpecifier{Kind: ImportSpecifierNamed, Local: local.Name, Imported: importedName})
		case "ImportDefaultSpecifier":
			specs = append(specs, ImportSpecifier{Kind: ImportSpecifierDefault, Local: local.Name})
		case "ImportNamespaceSpecifier":
			specs = append(specs, ImportSpecifier{Kind: ImportSpecifierNamespace, Local: local.Name})
		default:
			return nil, &UnsupportedNodeError{Type: sr.Type, Loc: locOf(&sr)}
		}
	}
	return &ImportDeclaration{base: b, Source: source, Specifiers: specs}, nil
}

func decodeRaw(raw json.RawMessage) (Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var r rawNode
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, &ParseError{cause: err}
	}
	return decodeNode(&r)
}

func decodeNodeList(raw json.RawMessage) ([]Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{cause: err}
	}
	return decodeNodeSlice(items)
}

func decodeNodeSlice(items []json.RawMessage) ([]Node, error) {
	nodes := make([]Node, 0, len(items))
	for _, raw := range items {
		node, err := decodeRaw(raw)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
