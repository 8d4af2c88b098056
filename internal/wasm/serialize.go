package wasm

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D} // "\0asm"
var wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}

// Serialize turns m into the complete Wasm binary: header, then each
// section in its fixed order, each one omitted entirely when empty (the
// Start section is gated on presence, not emptiness — a Start section
// naming function 0 is not "empty" just because it's one byte).
func (m *Module) Serialize() []byte {
	m.checkComplete()

	var out []byte
	out = append(out, wasmMagic...)
	out = append(out, wasmVersion...)

	out = append(out, m.serializeTypeSection()...)
	out = append(out, m.serializeImportSection()...)
	out = append(out, m.serializeFunctionSection()...)
	out = append(out, m.serializeTableSection()...)
	out = append(out, m.serializeMemorySection()...)
	out = append(out, m.serializeGlobalSection()...)
	out = append(out, m.serializeExportSection()...)
	out = append(out, m.serializeStartSection()...)
	out = append(out, m.serializeElementSection()...)
	out = append(out, m.serializeCodeSection()...)
	out = append(out, m.serializeDataSection()...)
	return out
}

func (m *Module) serializeTypeSection() []byte {
	types := m.Types.Items()
	if len(types) == 0 {
		return nil
	}
	var body []byte
	for _, t := range types {
		body = append(body, 0x60)
		body = append(body, EncodeVector(len(t.Params), encodeValTypes(t.Params))...)
		body = append(body, EncodeVector(len(t.Results), encodeValTypes(t.Results))...)
	}
	return encodeSection(secType, EncodeVector(len(types), body))
}

func encodeValTypes(vs []ValType) []byte {
	out := make([]byte, len(vs))
	for i, v := range vs {
		out[i] = byte(v)
	}
	return out
}

func (m *Module) serializeImportSection() []byte {
	imports := m.Imports.Items()
	if len(imports) == 0 {
		return nil
	}
	var body []byte
	for _, imp := range imports {
		body = append(body, EncodeString(imp.Module)...)
		body = append(body, EncodeString(imp.Name)...)
		body = append(body, serializeImportDesc(imp)...)
	}
	return encodeSection(secImport, EncodeVector(len(imports), body))
}

func serializeImportDesc(imp Import) []byte {
	switch imp.Kind {
	case ImportKindFunc:
		return append([]byte{descFunc}, EncodeU32(uint64(imp.Type))...)
	case ImportKindTable:
		return append([]byte{descTable}, serializeTableType(imp.Table)...)
	case ImportKindMem:
		return append([]byte{descMem}, serializeLimits(imp.Mem.Limits)...)
	case ImportKindGlobal:
		return append([]byte{descGlobal}, serializeGlobalType(imp.Global)...)
	default:
		panic("ICE: unknown import kind")
	}
}

func serializeTableType(t TableType) []byte {
	out := []byte{elemTypeFuncref}
	return append(out, serializeLimits(t.Limits)...)
}

func serializeLimits(l Limits) []byte {
	if l.Max == nil {
		out := []byte{0x00}
		return append(out, EncodeU32(uint64(l.Min))...)
	}
	out := []byte{0x01}
	out = append(out, EncodeU32(uint64(l.Min))...)
	return append(out, EncodeU32(uint64(*l.Max))...)
}

func serializeGlobalType(g GlobalType) []byte {
	out := []byte{byte(g.Val)}
	if g.Mut {
		return append(out, 0x01)
	}
	return append(out, 0x00)
}

func (m *Module) serializeFunctionSection() []byte {
	if len(m.Funcs) == 0 {
		return nil
	}
	var body []byte
	for _, t := range m.Funcs {
		body = append(body, EncodeU32(uint64(t))...)
	}
	return encodeSection(secFunction, EncodeVector(len(m.Funcs), body))
}

func (m *Module) serializeTableSection() []byte {
	if m.Table == nil {
		return nil
	}
	body := EncodeVector(1, serializeTableType(*m.Table))
	return encodeSection(secTable, body)
}

func (m *Module) serializeMemorySection() []byte {
	if m.Mem == nil {
		return nil
	}
	body := EncodeVector(1, serializeLimits(m.Mem.Limits))
	return encodeSection(secMemory, body)
}

func (m *Module) serializeGlobalSection() []byte {
	if len(m.Globals) == 0 {
		return nil
	}
	var body []byte
	for _, g := range m.Globals {
		body = append(body, serializeGlobalType(g.Type)...)
		body = append(body, g.Init...)
	}
	return encodeSection(secGlobal, EncodeVector(len(m.Globals), body))
}

func (m *Module) serializeExportSection() []byte {
	if len(m.Exports) == 0 {
		return nil
	}
	var body []byte
	for _, exp := range m.Exports {
		body = append(body, EncodeString(exp.Name)...)
		body = append(body, exportDescTag(exp.Kind))
		body = append(body, EncodeU32(uint64(exp.Index))...)
	}
	return encodeSection(secExport, EncodeVector(len(m.Exports), body))
}

func exportDescTag(k ExportKind) byte {
	switch k {
	case ExportKindFunc:
		return descFunc
	case ExportKindTable:
		return descTable
	case ExportKindMem:
		return descMem
	case ExportKindGlobal:
		return descGlobal
	default:
		panic("ICE: unknown export kind")
	}
}

// serializeStartSection is gated on Start being set at all, not on
// whether its section would otherwise be "empty" — a present Start
// section is never empty.
func (m *Module) serializeStartSection() []byte {
	if m.Start == nil {
		return nil
	}
	return encodeSection(secStart, EncodeU32(uint64(*m.Start)))
}

func (m *Module) serializeElementSection() []byte {
	if len(m.Elems) == 0 {
		return nil
	}
	var body []byte
	for _, e := range m.Elems {
		body = append(body, EncodeU32(uint64(e.Table))...)
		body = append(body, e.Offset...)
		var funcs []byte
		for _, f := range e.Funcs {
			funcs = append(funcs, EncodeU32(uint64(f))...)
		}
		body = append(body, EncodeVector(len(e.Funcs), funcs)...)
	}
	return encodeSection(secElement, EncodeVector(len(m.Elems), body))
}

func (m *Module) serializeCodeSection() []byte {
	if len(m.Code) == 0 {
		return nil
	}
	var body []byte
	for _, c := range m.Code {
		body = append(body, EncodeU32(uint64(len(c.bytes)))...)
		body = append(body, c.bytes...)
	}
	return encodeSection(secCode, EncodeVector(len(m.Code), body))
}

func (m *Module) serializeDataSection() []byte {
	if len(m.Data) == 0 {
		return nil
	}
	var body []byte
	for _, d := range m.Data {
		body = append(body, EncodeU32(uint64(d.Mem))...)
		body = append(body, d.Offset...)
		body = append(body, EncodeU32(uint64(len(d.Bytes)))...)
		body = append(body, d.Bytes...)
	}
	return encodeSection(secData, EncodeVector(len(m.Data), body))
}

// ConstI32 builds a constant init/offset expression: i32.const v; end.
func ConstI32(v int32) []byte {
	out := []byte{OpI32Const}
	out = append(out, EncodeS64(int64(v))...)
	return append(out, OpEnd)
}
