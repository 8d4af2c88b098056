package wasm

// Section ids, in the fixed order they must appear in the binary.
const (
	secType     byte = 1
	secImport   byte = 2
	secFunction byte = 3
	secTable    byte = 4
	secMemory   byte = 5
	secGlobal   byte = 6
	secExport   byte = 7
	secStart    byte = 8
	secElement  byte = 9
	secCode     byte = 10
	secData     byte = 11
)

// Import/export descriptor kind tags.
const (
	descFunc   byte = 0x00
	descTable  byte = 0x01
	descMem    byte = 0x02
	descGlobal byte = 0x03
)

const elemTypeFuncref byte = 0x70

// Opcodes, grouped as the teacher's table does.
const (
	OpUnreachable byte = 0x00
	OpNop         byte = 0x01
	OpBlock       byte = 0x02
	OpLoop        byte = 0x03
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpEnd         byte = 0x0B
	OpBr          byte = 0x0C
	OpBrIf        byte = 0x0D
	OpReturn      byte = 0x0F
	OpCall        byte = 0x10
	OpCallIndirect byte = 0x11
	OpDrop        byte = 0x1A
	OpSelect      byte = 0x1B

	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24

	OpI32Load  byte = 0x28
	OpI64Load  byte = 0x29
	OpF64Load  byte = 0x2B
	OpI32Store byte = 0x36
	OpI64Store byte = 0x37
	OpF64Store byte = 0x39

	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpF32Const byte = 0x43
	OpF64Const byte = 0x44

	OpI32Eqz byte = 0x45
	OpI32Eq  byte = 0x46
	OpI32Ne  byte = 0x47
	OpI32LtS byte = 0x48
	OpI32GtS byte = 0x4A
	OpI32LeS byte = 0x4C
	OpI32GeS byte = 0x4E

	OpF64Eq byte = 0x61
	OpF64Ne byte = 0x62
	OpF64Lt byte = 0x63
	OpF64Gt byte = 0x64
	OpF64Le byte = 0x65
	OpF64Ge byte = 0x66

	OpI32Add  byte = 0x6A
	OpI32Sub  byte = 0x6B
	OpI32Mul  byte = 0x6C
	OpI32DivS byte = 0x6D
	OpI32RemS byte = 0x6F
	OpI32And  byte = 0x71
	OpI32Or   byte = 0x72
	OpI32Xor  byte = 0x73
	OpI32Shl  byte = 0x74
	OpI32ShrS byte = 0x75

	OpF64Neg   byte = 0x9A
	OpF64Trunc byte = 0x9D

	OpF64Add byte = 0xA0
	OpF64Sub byte = 0xA1
	OpF64Mul byte = 0xA2
	OpF64Div byte = 0xA3

	OpI32TruncF64S   byte = 0xAA
	OpF64ConvertI32S byte = 0xB7
	OpF64ConvertI32U byte = 0xB8

	// Block types (empty-result blocks only; this module never produces
	// a typed block result, only values via locals/globals).
	BlockVoid byte = 0x40
)
