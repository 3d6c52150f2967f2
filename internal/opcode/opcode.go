package opcode

import (
	"fmt"

	"gsymbex/internal/constraint"
)

// Operation 字节码操作码，JVM 指令集的一个子集
// https://docs.oracle.com/javase/specs/jvms/se17/html/jvms-6.html
type Operation string

func (op Operation) String() string {
	return string(op)
}

const (
	NOP          Operation = "nop"
	ACONST_NULL  Operation = "aconst_null"
	BIPUSH       Operation = "bipush"
	SIPUSH       Operation = "sipush"
	LDC          Operation = "ldc"
	LDC2_W       Operation = "ldc2_w"
	ILOAD        Operation = "iload"
	LLOAD        Operation = "lload"
	FLOAD        Operation = "fload"
	DLOAD        Operation = "dload"
	ALOAD        Operation = "aload"
	IALOAD       Operation = "iaload"
	LALOAD       Operation = "laload"
	FALOAD       Operation = "faload"
	DALOAD       Operation = "daload"
	ISTORE       Operation = "istore"
	LSTORE       Operation = "lstore"
	FSTORE       Operation = "fstore"
	DSTORE       Operation = "dstore"
	ASTORE       Operation = "astore"
	IASTORE      Operation = "iastore"
	LASTORE      Operation = "lastore"
	FASTORE      Operation = "fastore"
	DASTORE      Operation = "dastore"
	POP          Operation = "pop"
	DUP          Operation = "dup"
	SWAP         Operation = "swap"
	IADD         Operation = "iadd"
	LADD         Operation = "ladd"
	FADD         Operation = "fadd"
	DADD         Operation = "dadd"
	ISUB         Operation = "isub"
	LSUB         Operation = "lsub"
	FSUB         Operation = "fsub"
	DSUB         Operation = "dsub"
	IMUL         Operation = "imul"
	LMUL         Operation = "lmul"
	FMUL         Operation = "fmul"
	DMUL         Operation = "dmul"
	IDIV         Operation = "idiv"
	LDIV         Operation = "ldiv"
	FDIV         Operation = "fdiv"
	DDIV         Operation = "ddiv"
	IREM         Operation = "irem"
	LREM         Operation = "lrem"
	INEG         Operation = "ineg"
	LNEG         Operation = "lneg"
	FNEG         Operation = "fneg"
	DNEG         Operation = "dneg"
	IINC         Operation = "iinc"
	I2L          Operation = "i2l"
	I2F          Operation = "i2f"
	I2D          Operation = "i2d"
	L2I          Operation = "l2i"
	L2F          Operation = "l2f"
	L2D          Operation = "l2d"
	F2I          Operation = "f2i"
	F2L          Operation = "f2l"
	F2D          Operation = "f2d"
	D2I          Operation = "d2i"
	D2L          Operation = "d2l"
	D2F          Operation = "d2f"
	I2B          Operation = "i2b"
	I2C          Operation = "i2c"
	I2S          Operation = "i2s"
	LCMP         Operation = "lcmp"
	FCMPL        Operation = "fcmpl"
	FCMPG        Operation = "fcmpg"
	DCMPL        Operation = "dcmpl"
	DCMPG        Operation = "dcmpg"
	IFEQ         Operation = "ifeq"
	IFNE         Operation = "ifne"
	IFLT         Operation = "iflt"
	IFGE         Operation = "ifge"
	IFGT         Operation = "ifgt"
	IFLE         Operation = "ifle"
	IF_ICMPEQ    Operation = "if_icmpeq"
	IF_ICMPNE    Operation = "if_icmpne"
	IF_ICMPLT    Operation = "if_icmplt"
	IF_ICMPGE    Operation = "if_icmpge"
	IF_ICMPGT    Operation = "if_icmpgt"
	IF_ICMPLE    Operation = "if_icmple"
	GOTO         Operation = "goto"
	LOOKUPSWITCH Operation = "lookupswitch"
	IRETURN      Operation = "ireturn"
	LRETURN      Operation = "lreturn"
	FRETURN      Operation = "freturn"
	DRETURN      Operation = "dreturn"
	ARETURN      Operation = "areturn"
	RETURN       Operation = "return"
	NEWARRAY     Operation = "newarray"
	ARRAYLENGTH  Operation = "arraylength"
	IFNULL       Operation = "ifnull"
	IFNONNULL    Operation = "ifnonnull"
)

// Argument 指令在文本格式中的参数类型
type Argument int

const (
	ArgNone Argument = iota
	// ArgConstant is a literal: 5, 5L, 1.5, 1.5f.
	ArgConstant
	// ArgLocal is a local slot index.
	ArgLocal
	// ArgLabel is a jump target.
	ArgLabel
	// ArgIncrement is a local slot and a signed delta.
	ArgIncrement
	// ArgCases is a list of key:label pairs ending with default:label.
	ArgCases
	// ArgType is a primitive element type.
	ArgType
)

// OPCodeInfo 操作码的静态信息
type OPCodeInfo struct {
	OPCode Operation
	Code   int // 字节码编码
	// Family is the generic form of a shortcut: iload_2 belongs to iload.
	Family Operation
	// Index is the implicit operand of a shortcut, -1 for none.
	Index            int
	Argument         Argument
	RequiredElements int // 需要的操作数栈元素数量
	// Type is the operand type of typed instructions.
	Type constraint.Type
}

// IsBranch reports whether the instruction may continue at a label.
func (info OPCodeInfo) IsBranch() bool {
	return info.Argument == ArgLabel || info.Argument == ArgCases
}

// IsReturn reports whether the instruction ends the method.
func (info OPCodeInfo) IsReturn() bool {
	switch info.OPCode {
	case IRETURN, LRETURN, FRETURN, DRETURN, ARETURN, RETURN:
		return true
	}
	return false
}

func info(code int, arg Argument, required int, typ constraint.Type) OPCodeInfo {
	return OPCodeInfo{Code: code, Index: -1, Argument: arg, RequiredElements: required, Type: typ}
}

var opCodeInfos = map[Operation]OPCodeInfo{
	NOP:          info(0x00, ArgNone, 0, constraint.Int),
	ACONST_NULL:  info(0x01, ArgNone, 0, constraint.Int),
	BIPUSH:       info(0x10, ArgConstant, 0, constraint.Int),
	SIPUSH:       info(0x11, ArgConstant, 0, constraint.Int),
	LDC:          info(0x12, ArgConstant, 0, constraint.Int),
	LDC2_W:       info(0x14, ArgConstant, 0, constraint.Long),
	ILOAD:        info(0x15, ArgLocal, 0, constraint.Int),
	LLOAD:        info(0x16, ArgLocal, 0, constraint.Long),
	FLOAD:        info(0x17, ArgLocal, 0, constraint.Float),
	DLOAD:        info(0x18, ArgLocal, 0, constraint.Double),
	ALOAD:        info(0x19, ArgLocal, 0, constraint.Int),
	IALOAD:       info(0x2E, ArgNone, 2, constraint.Int),
	LALOAD:       info(0x2F, ArgNone, 2, constraint.Long),
	FALOAD:       info(0x30, ArgNone, 2, constraint.Float),
	DALOAD:       info(0x31, ArgNone, 2, constraint.Double),
	ISTORE:       info(0x36, ArgLocal, 1, constraint.Int),
	LSTORE:       info(0x37, ArgLocal, 1, constraint.Long),
	FSTORE:       info(0x38, ArgLocal, 1, constraint.Float),
	DSTORE:       info(0x39, ArgLocal, 1, constraint.Double),
	ASTORE:       info(0x3A, ArgLocal, 1, constraint.Int),
	IASTORE:      info(0x4F, ArgNone, 3, constraint.Int),
	LASTORE:      info(0x50, ArgNone, 3, constraint.Long),
	FASTORE:      info(0x51, ArgNone, 3, constraint.Float),
	DASTORE:      info(0x52, ArgNone, 3, constraint.Double),
	POP:          info(0x57, ArgNone, 1, constraint.Int),
	DUP:          info(0x59, ArgNone, 1, constraint.Int),
	SWAP:         info(0x5F, ArgNone, 2, constraint.Int),
	IADD:         info(0x60, ArgNone, 2, constraint.Int),
	LADD:         info(0x61, ArgNone, 2, constraint.Long),
	FADD:         info(0x62, ArgNone, 2, constraint.Float),
	DADD:         info(0x63, ArgNone, 2, constraint.Double),
	ISUB:         info(0x64, ArgNone, 2, constraint.Int),
	LSUB:         info(0x65, ArgNone, 2, constraint.Long),
	FSUB:         info(0x66, ArgNone, 2, constraint.Float),
	DSUB:         info(0x67, ArgNone, 2, constraint.Double),
	IMUL:         info(0x68, ArgNone, 2, constraint.Int),
	LMUL:         info(0x69, ArgNone, 2, constraint.Long),
	FMUL:         info(0x6A, ArgNone, 2, constraint.Float),
	DMUL:         info(0x6B, ArgNone, 2, constraint.Double),
	IDIV:         info(0x6C, ArgNone, 2, constraint.Int),
	LDIV:         info(0x6D, ArgNone, 2, constraint.Long),
	FDIV:         info(0x6E, ArgNone, 2, constraint.Float),
	DDIV:         info(0x6F, ArgNone, 2, constraint.Double),
	IREM:         info(0x70, ArgNone, 2, constraint.Int),
	LREM:         info(0x71, ArgNone, 2, constraint.Long),
	INEG:         info(0x74, ArgNone, 1, constraint.Int),
	LNEG:         info(0x75, ArgNone, 1, constraint.Long),
	FNEG:         info(0x76, ArgNone, 1, constraint.Float),
	DNEG:         info(0x77, ArgNone, 1, constraint.Double),
	IINC:         info(0x84, ArgIncrement, 0, constraint.Int),
	I2L:          info(0x85, ArgNone, 1, constraint.Long),
	I2F:          info(0x86, ArgNone, 1, constraint.Float),
	I2D:          info(0x87, ArgNone, 1, constraint.Double),
	L2I:          info(0x88, ArgNone, 1, constraint.Int),
	L2F:          info(0x89, ArgNone, 1, constraint.Float),
	L2D:          info(0x8A, ArgNone, 1, constraint.Double),
	F2I:          info(0x8B, ArgNone, 1, constraint.Int),
	F2L:          info(0x8C, ArgNone, 1, constraint.Long),
	F2D:          info(0x8D, ArgNone, 1, constraint.Double),
	D2I:          info(0x8E, ArgNone, 1, constraint.Int),
	D2L:          info(0x8F, ArgNone, 1, constraint.Long),
	D2F:          info(0x90, ArgNone, 1, constraint.Float),
	I2B:          info(0x91, ArgNone, 1, constraint.Byte),
	I2C:          info(0x92, ArgNone, 1, constraint.Char),
	I2S:          info(0x93, ArgNone, 1, constraint.Short),
	LCMP:         info(0x94, ArgNone, 2, constraint.Long),
	FCMPL:        info(0x95, ArgNone, 2, constraint.Float),
	FCMPG:        info(0x96, ArgNone, 2, constraint.Float),
	DCMPL:        info(0x97, ArgNone, 2, constraint.Double),
	DCMPG:        info(0x98, ArgNone, 2, constraint.Double),
	IFEQ:         info(0x99, ArgLabel, 1, constraint.Int),
	IFNE:         info(0x9A, ArgLabel, 1, constraint.Int),
	IFLT:         info(0x9B, ArgLabel, 1, constraint.Int),
	IFGE:         info(0x9C, ArgLabel, 1, constraint.Int),
	IFGT:         info(0x9D, ArgLabel, 1, constraint.Int),
	IFLE:         info(0x9E, ArgLabel, 1, constraint.Int),
	IF_ICMPEQ:    info(0x9F, ArgLabel, 2, constraint.Int),
	IF_ICMPNE:    info(0xA0, ArgLabel, 2, constraint.Int),
	IF_ICMPLT:    info(0xA1, ArgLabel, 2, constraint.Int),
	IF_ICMPGE:    info(0xA2, ArgLabel, 2, constraint.Int),
	IF_ICMPGT:    info(0xA3, ArgLabel, 2, constraint.Int),
	IF_ICMPLE:    info(0xA4, ArgLabel, 2, constraint.Int),
	GOTO:         info(0xA7, ArgLabel, 0, constraint.Int),
	LOOKUPSWITCH: info(0xAB, ArgCases, 1, constraint.Int),
	IRETURN:      info(0xAC, ArgNone, 1, constraint.Int),
	LRETURN:      info(0xAD, ArgNone, 1, constraint.Long),
	FRETURN:      info(0xAE, ArgNone, 1, constraint.Float),
	DRETURN:      info(0xAF, ArgNone, 1, constraint.Double),
	ARETURN:      info(0xB0, ArgNone, 1, constraint.Int),
	RETURN:       info(0xB1, ArgNone, 0, constraint.Int),
	NEWARRAY:     info(0xBC, ArgType, 1, constraint.Int),
	ARRAYLENGTH:  info(0xBE, ArgNone, 1, constraint.Int),
	IFNULL:       info(0xC6, ArgLabel, 1, constraint.Int),
	IFNONNULL:    info(0xC7, ArgLabel, 1, constraint.Int),
}

var opCodes map[int]OPCodeInfo

// shortcut registers op_0..op_{n-1}, which carry their operand in the opcode.
func shortcut(family Operation, first, n, offset int) {
	generic := opCodeInfos[family]
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s_%d", family, i+offset)
		if i+offset < 0 {
			name = fmt.Sprintf("%s_m%d", family, -(i + offset))
		}
		opCodeInfos[Operation(name)] = OPCodeInfo{
			Code:             first + i,
			Family:           family,
			Index:            i + offset,
			Argument:         ArgNone,
			RequiredElements: generic.RequiredElements,
			Type:             generic.Type,
		}
	}
}

func init() {
	// iconst_m1~iconst_5 lconst_0~1 fconst_0~2 dconst_0~1
	opCodeInfos["iconst"] = info(-1, ArgNone, 0, constraint.Int)
	opCodeInfos["lconst"] = info(-1, ArgNone, 0, constraint.Long)
	opCodeInfos["fconst"] = info(-1, ArgNone, 0, constraint.Float)
	opCodeInfos["dconst"] = info(-1, ArgNone, 0, constraint.Double)
	shortcut("iconst", 0x02, 7, -1)
	shortcut("lconst", 0x09, 2, 0)
	shortcut("fconst", 0x0B, 3, 0)
	shortcut("dconst", 0x0E, 2, 0)
	for _, family := range []Operation{"iconst", "lconst", "fconst", "dconst"} {
		delete(opCodeInfos, family)
	}
	// xload_0~3 xstore_0~3
	loads := []Operation{ILOAD, LLOAD, FLOAD, DLOAD, ALOAD}
	stores := []Operation{ISTORE, LSTORE, FSTORE, DSTORE, ASTORE}
	for i := range loads {
		shortcut(loads[i], 0x1A+4*i, 4, 0)
		shortcut(stores[i], 0x3B+4*i, 4, 0)
	}
	for k, info := range opCodeInfos {
		info.OPCode = k
		if info.Family == "" {
			info.Family = k
		}
		opCodeInfos[k] = info
	}

	opCodes = make(map[int]OPCodeInfo)
	for _, info := range opCodeInfos {
		opCodes[info.Code] = info
	}
}

func GetOPCodeInfoByCode(code int) (OPCodeInfo, bool) {
	info, ok := opCodes[code]
	return info, ok
}

func GetOPCodeInfoByOperation(key Operation) (OPCodeInfo, bool) {
	info, ok := opCodeInfos[key]
	return info, ok
}
