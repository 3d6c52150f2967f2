// Package vm is a small symbolic stack machine over assembled programs. It
// hands every symbolic branch to the search driver and resumes at the pc
// the applied alternative wrote.
package vm

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"gsymbex/internal/assembler"
	"gsymbex/internal/choice"
	"gsymbex/internal/constraint"
	"gsymbex/internal/core"
	"gsymbex/internal/interp"
	"gsymbex/internal/opcode"
	"gsymbex/internal/search"
)

const (
	NullPointerException           = "java/lang/NullPointerException"
	ArrayIndexOutOfBoundsException = "java/lang/ArrayIndexOutOfBoundsException"
	NegativeArraySizeException     = "java/lang/NegativeArraySizeException"
)

// DefaultMaxInstructions bounds the instructions executed on one path.
const DefaultMaxInstructions = 100000

// Machine runs one program under one search.
type Machine struct {
	program *assembler.Program
	frame   *interp.SimpleFrame
	heap    interp.Heap
	factory *choice.Factory
	// arrays are the array parameters, initialized at the negative pcs
	// before the first instruction.
	arrays []assembler.Param
	entry  int
	limit  int
	logger *log.Entry
}

type Option func(*Machine)

func WithHeap(heap interp.Heap) Option {
	return func(m *Machine) {
		m.heap = heap
	}
}

// WithMaxInstructions sets the per path instruction bound; zero disables it.
func WithMaxInstructions(n int) Option {
	return func(m *Machine) {
		m.limit = n
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

func New(program *assembler.Program, cfg choice.Config, opts ...Option) (*Machine, error) {
	m := &Machine{
		program: program,
		frame:   interp.NewSimpleFrame(program.Method, program.MaxLocals),
		limit:   DefaultMaxInstructions,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.heap == nil {
		m.heap = interp.NewSimpleHeap()
	}
	if m.logger == nil {
		m.logger = log.NewEntry(log.StandardLogger())
	}
	m.logger = m.logger.WithField("method", program.Method)
	m.factory = choice.NewFactory(cfg, m.heap, m, choice.WithLogger(m.logger))

	for _, param := range program.Params {
		if param.Array {
			m.arrays = append(m.arrays, param)
			continue
		}
		if err := m.frame.SetLocal(param.Slot, constraint.NewVariable(param.Name, param.Type)); err != nil {
			return nil, errors.Wrapf(err, "parameter %s", param.Name)
		}
	}
	m.entry = -len(m.arrays)
	m.frame.SetPC(m.entry)
	return m, nil
}

func (m *Machine) Frame() *interp.SimpleFrame {
	return m.frame
}

func (m *Machine) Factory() *choice.Factory {
	return m.factory
}

// Entry is the pc the machine starts at; array parameters occupy the
// negative pcs before zero.
func (m *Machine) Entry() int {
	return m.entry
}

// Throw replaces the operand stack with the exception and moves to the
// throw pc, one past the last instruction. Callers save the operands and
// the pc first.
func (m *Machine) Throw(frame interp.Frame, exception string) error {
	if err := frame.SetOperands([]interp.Value{interp.NewObject(exception)}); err != nil {
		return err
	}
	frame.SetPC(m.program.Len())
	return nil
}

func (m *Machine) throw(r recorder, exception string) error {
	r.saveOperands()
	r.setPC(r.frame.PC())
	return m.Throw(r.frame, exception)
}

// Run executes from the current frame state until the path ends.
func (m *Machine) Run(ctx context.Context, d *search.Driver) (*search.PathEnd, error) {
	for executed := 0; ; executed++ {
		if m.limit > 0 && executed >= m.limit {
			return &search.PathEnd{Kind: search.EndAborted, Detail: "instruction limit"}, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pc := m.frame.PC()
		if pc == m.program.Len() {
			return m.uncaught()
		}
		r := recorder{frame: m.frame, trail: d.Trail()}
		if pc < 0 {
			ok, err := m.initArray(ctx, d, m.arrays[pc-m.entry])
			if err != nil || !ok {
				return pruned(err)
			}
			continue
		}
		in, ok := m.program.At(pc)
		if !ok {
			return nil, errors.Errorf("%s: pc %d outside the method", m.program.Method, pc)
		}
		end, err := m.step(ctx, d, r, in)
		if err != nil {
			return nil, errors.Wrapf(err, "%s at line %d", in, in.Line)
		}
		if end != nil {
			return end, nil
		}
	}
}

func (m *Machine) uncaught() (*search.PathEnd, error) {
	operands := m.frame.Operands()
	if len(operands) != 1 {
		return nil, errors.Errorf("throw pc reached with %d operands", len(operands))
	}
	exception, ok := operands[0].(*interp.Object)
	if !ok {
		return nil, errors.Errorf("thrown %T is not an exception", operands[0])
	}
	m.logger.Debugf("uncaught %s", exception.Class())
	return &search.PathEnd{Kind: search.EndException, Detail: exception.Class()}, nil
}

func pruned(err error) (*search.PathEnd, error) {
	if err != nil {
		return nil, err
	}
	return &search.PathEnd{Kind: search.EndPruned}, nil
}

func (m *Machine) initArray(ctx context.Context, d *search.Driver, param assembler.Param) (bool, error) {
	pc := m.frame.PC()
	cp, err := m.factory.NewArrayInitialization(d.Current(), m.frame, choice.ArraySpec{
		Name:    param.Name,
		Element: param.Type,
		Length:  constraint.NewVariable(param.Name+".length", constraint.Int),
		Slot:    param.Slot,
		Next:    pc + 1,
	})
	if err != nil {
		return false, err
	}
	return d.Open(ctx, cp)
}

// open hands cp to the driver. A nil end means the path continues.
func open(ctx context.Context, d *search.Driver, cp choice.ChoicePoint) (*search.PathEnd, error) {
	ok, err := d.Open(ctx, cp)
	if err != nil || !ok {
		return pruned(err)
	}
	return nil, nil
}

func (m *Machine) branch(ctx context.Context, d *search.Driver, r recorder, cond constraint.Expression, target int) (*search.PathEnd, error) {
	pc := m.frame.PC()
	if k, ok := cond.(*constraint.Constant); ok {
		if k.Bool() {
			r.setPC(target)
		} else {
			r.setPC(pc + 1)
		}
		return nil, nil
	}
	return open(ctx, d, m.factory.NewBranch(d.Current(), m.frame, cond, target, pc+1))
}

var conditions = map[opcode.Operation]constraint.CompareOp{
	opcode.IFEQ: constraint.OpEQ, opcode.IF_ICMPEQ: constraint.OpEQ,
	opcode.IFNE: constraint.OpNE, opcode.IF_ICMPNE: constraint.OpNE,
	opcode.IFLT: constraint.OpLT, opcode.IF_ICMPLT: constraint.OpLT,
	opcode.IFGE: constraint.OpGE, opcode.IF_ICMPGE: constraint.OpGE,
	opcode.IFGT: constraint.OpGT, opcode.IF_ICMPGT: constraint.OpGT,
	opcode.IFLE: constraint.OpLE, opcode.IF_ICMPLE: constraint.OpLE,
}

var arithmetic = map[opcode.Operation]constraint.ArithOp{
	opcode.IADD: constraint.OpAdd, opcode.LADD: constraint.OpAdd, opcode.FADD: constraint.OpAdd, opcode.DADD: constraint.OpAdd,
	opcode.ISUB: constraint.OpSub, opcode.LSUB: constraint.OpSub, opcode.FSUB: constraint.OpSub, opcode.DSUB: constraint.OpSub,
	opcode.IMUL: constraint.OpMul, opcode.LMUL: constraint.OpMul, opcode.FMUL: constraint.OpMul, opcode.DMUL: constraint.OpMul,
	opcode.FDIV: constraint.OpDiv, opcode.DDIV: constraint.OpDiv,
	opcode.IDIV: constraint.OpDiv, opcode.LDIV: constraint.OpDiv,
	opcode.IREM: constraint.OpRem, opcode.LREM: constraint.OpRem,
}

func zeroOf(typ constraint.Type) *constraint.Constant {
	switch {
	case typ == constraint.Boolean:
		return constraint.False
	case typ.IsFloating():
		return constraint.FloatingConstant(typ, 0)
	}
	return constraint.IntegralConstant(typ, 0)
}

func (m *Machine) step(ctx context.Context, d *search.Driver, r recorder, in *assembler.Instruction) (*search.PathEnd, error) {
	pc := in.PC
	next := pc + 1
	info := in.Info

	switch family := info.Family; family {
	case opcode.NOP:

	case opcode.ACONST_NULL:
		if err := r.push(nil); err != nil {
			return nil, err
		}

	case "iconst", "lconst", "fconst", "dconst":
		var k *constraint.Constant
		if info.Type.IsFloating() {
			k = constraint.FloatingConstant(info.Type, float64(info.Index))
		} else {
			k = constraint.IntegralConstant(info.Type, int64(info.Index))
		}
		if err := r.push(k); err != nil {
			return nil, err
		}

	case opcode.BIPUSH, opcode.SIPUSH, opcode.LDC, opcode.LDC2_W:
		if err := r.push(in.Constant); err != nil {
			return nil, err
		}

	case opcode.ILOAD, opcode.LLOAD, opcode.FLOAD, opcode.DLOAD, opcode.ALOAD:
		v, err := m.frame.Local(in.Local)
		if err != nil {
			return nil, err
		}
		if err := r.push(v); err != nil {
			return nil, err
		}

	case opcode.ISTORE, opcode.LSTORE, opcode.FSTORE, opcode.DSTORE, opcode.ASTORE:
		v, err := r.pop()
		if err != nil {
			return nil, err
		}
		if err := r.setLocal(in.Local, v); err != nil {
			return nil, err
		}

	case opcode.IALOAD, opcode.LALOAD, opcode.FALOAD, opcode.DALOAD:
		index, err := r.popTerm()
		if err != nil {
			return nil, err
		}
		array, err := r.popArray()
		if err != nil {
			return nil, err
		}
		i, throw, err := m.checkIndex(array, index)
		if err != nil {
			return nil, err
		}
		if throw != "" {
			return nil, m.throw(r, throw)
		}
		v, err := array.Load(i)
		if err != nil {
			return nil, err
		}
		if err := r.push(v); err != nil {
			return nil, err
		}

	case opcode.IASTORE, opcode.LASTORE, opcode.FASTORE, opcode.DASTORE:
		value, err := r.popTerm()
		if err != nil {
			return nil, err
		}
		index, err := r.popTerm()
		if err != nil {
			return nil, err
		}
		array, err := r.popArray()
		if err != nil {
			return nil, err
		}
		i, throw, err := m.checkIndex(array, index)
		if err != nil {
			return nil, err
		}
		if throw != "" {
			return nil, m.throw(r, throw)
		}
		stored := interp.Value(value)
		if array.ElementType().IsNumeric() {
			stored = constraint.CastTo(value, array.ElementType())
		}
		if err := r.store(array, i, stored); err != nil {
			return nil, err
		}

	case opcode.POP:
		if _, err := r.pop(); err != nil {
			return nil, err
		}

	case opcode.DUP:
		v, err := r.pop()
		if err != nil {
			return nil, err
		}
		for i := 0; i < 2; i++ {
			if err := r.push(v); err != nil {
				return nil, err
			}
		}

	case opcode.SWAP:
		top, err := r.pop()
		if err != nil {
			return nil, err
		}
		below, err := r.pop()
		if err != nil {
			return nil, err
		}
		if err := r.push(top); err != nil {
			return nil, err
		}
		if err := r.push(below); err != nil {
			return nil, err
		}

	case opcode.IADD, opcode.LADD, opcode.FADD, opcode.DADD,
		opcode.ISUB, opcode.LSUB, opcode.FSUB, opcode.DSUB,
		opcode.IMUL, opcode.LMUL, opcode.FMUL, opcode.DMUL,
		opcode.FDIV, opcode.DDIV:
		left, right, err := r.popTerms()
		if err != nil {
			return nil, err
		}
		if err := r.push(constraint.NewArithmetic(arithmetic[family], left, right)); err != nil {
			return nil, err
		}

	case opcode.IDIV, opcode.LDIV, opcode.IREM, opcode.LREM:
		left, right, err := r.popTerms()
		if err != nil {
			return nil, err
		}
		op := arithmetic[family]
		if k, ok := constraint.AsConstant(right); ok {
			if k.IsZero() {
				return nil, m.throw(r, choice.ArithmeticException)
			}
			if err := r.push(constraint.NewArithmetic(op, left, right)); err != nil {
				return nil, err
			}
			break
		}
		cp, err := m.factory.NewArithmeticGuard(d.Current(), m.frame, op, left, right, next)
		if err != nil {
			return nil, err
		}
		return open(ctx, d, cp)

	case opcode.INEG, opcode.LNEG, opcode.FNEG, opcode.DNEG:
		t, err := r.popTerm()
		if err != nil {
			return nil, err
		}
		if err := r.push(constraint.Neg(t)); err != nil {
			return nil, err
		}

	case opcode.IINC:
		v, err := m.frame.Local(in.Local)
		if err != nil {
			return nil, err
		}
		t, ok := v.(constraint.Term)
		if !ok || !t.Type().IsIntegral() {
			return nil, errors.Errorf("iinc of %T", v)
		}
		sum := constraint.Add(t, constraint.IntConstant(int32(in.Delta)))
		if err := r.setLocal(in.Local, sum); err != nil {
			return nil, err
		}

	case opcode.I2L, opcode.I2F, opcode.I2D, opcode.L2I, opcode.L2F, opcode.L2D,
		opcode.F2I, opcode.F2L, opcode.F2D, opcode.D2I, opcode.D2L, opcode.D2F:
		t, err := r.popTerm()
		if err != nil {
			return nil, err
		}
		if err := r.push(constraint.CastTo(t, info.Type)); err != nil {
			return nil, err
		}

	case opcode.I2B, opcode.I2C, opcode.I2S:
		t, err := r.popTerm()
		if err != nil {
			return nil, err
		}
		// the narrowed value is widened back to int on the stack
		if err := r.push(constraint.CastTo(constraint.CastTo(t, info.Type), constraint.Int)); err != nil {
			return nil, err
		}

	case opcode.LCMP:
		left, right, err := r.popTerms()
		if err != nil {
			return nil, err
		}
		return open(ctx, d, m.factory.NewLongCompare(d.Current(), m.frame, left, right, next))

	case opcode.FCMPL, opcode.FCMPG, opcode.DCMPL, opcode.DCMPG:
		left, right, err := r.popTerms()
		if err != nil {
			return nil, err
		}
		policy := choice.Narrow
		if info.Type == constraint.Double {
			policy = choice.Wide
		}
		bias := choice.BiasL
		if family == opcode.FCMPG || family == opcode.DCMPG {
			bias = choice.BiasG
		}
		return open(ctx, d, m.factory.NewFloatCompare(d.Current(), m.frame, policy, bias, left, right, next))

	case opcode.IFEQ, opcode.IFNE, opcode.IFLT, opcode.IFGE, opcode.IFGT, opcode.IFLE:
		t, err := r.popTerm()
		if err != nil {
			return nil, err
		}
		return m.branch(ctx, d, r, constraint.Compare(conditions[family], t, zeroOf(t.Type())), in.Target)

	case opcode.IF_ICMPEQ, opcode.IF_ICMPNE, opcode.IF_ICMPLT, opcode.IF_ICMPGE, opcode.IF_ICMPGT, opcode.IF_ICMPLE:
		left, right, err := r.popTerms()
		if err != nil {
			return nil, err
		}
		return m.branch(ctx, d, r, constraint.Compare(conditions[family], left, right), in.Target)

	case opcode.IFNULL, opcode.IFNONNULL:
		array, err := r.popArray()
		if err != nil {
			return nil, err
		}
		if (array == nil) == (family == opcode.IFNULL) {
			next = in.Target
		}

	case opcode.GOTO:
		next = in.Target

	case opcode.LOOKUPSWITCH:
		key, err := r.popTerm()
		if err != nil {
			return nil, err
		}
		if k, ok := constraint.AsConstant(key); ok {
			next = in.Default
			for i, caseKey := range in.Keys {
				if int64(caseKey) == k.Int() {
					next = in.Targets[i]
				}
			}
			break
		}
		cp, err := m.factory.NewSwitch(d.Current(), m.frame, key, in.Keys, in.Targets, in.Default)
		if err != nil {
			return nil, err
		}
		return open(ctx, d, cp)

	case opcode.IRETURN, opcode.LRETURN, opcode.FRETURN, opcode.DRETURN, opcode.ARETURN:
		v, err := r.pop()
		if err != nil {
			return nil, err
		}
		return &search.PathEnd{Kind: search.EndReturn, Value: v}, nil

	case opcode.RETURN:
		return &search.PathEnd{Kind: search.EndReturn}, nil

	case opcode.NEWARRAY:
		count, err := r.popTerm()
		if err != nil {
			return nil, err
		}
		if !count.Type().IsIntegral() {
			return nil, errors.Errorf("array length of type %s", count.Type())
		}
		k, ok := constraint.AsConstant(count)
		if !ok {
			cp, err := m.factory.NewArrayInitialization(d.Current(), m.frame, choice.ArraySpec{
				Name:    fmt.Sprintf("newarray@%d", pc),
				Element: in.Element,
				Length:  count,
				Slot:    choice.OperandStack,
				Next:    next,
				NonNull: true,
			})
			if err != nil {
				return nil, err
			}
			return open(ctx, d, cp)
		}
		if k.Int() < 0 {
			return nil, m.throw(r, NegativeArraySizeException)
		}
		array, err := m.heap.NewArray(in.Element, int(k.Int()))
		if err != nil {
			return nil, err
		}
		values := make([]interp.Value, array.Length())
		for i := range values {
			values[i] = zeroOf(in.Element)
		}
		array.Replace(values)
		if err := r.push(array); err != nil {
			return nil, err
		}

	case opcode.ARRAYLENGTH:
		array, err := r.popArray()
		if err != nil {
			return nil, err
		}
		if array == nil {
			return nil, m.throw(r, NullPointerException)
		}
		if err := r.push(constraint.IntConstant(int32(array.Length()))); err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unsupported instruction %s", in.OPCode)
	}
	r.setPC(next)
	return nil, nil
}

// checkIndex resolves a concrete index, or names the exception to throw.
func (m *Machine) checkIndex(array *interp.Array, index constraint.Term) (int, string, error) {
	if array == nil {
		return 0, NullPointerException, nil
	}
	k, ok := constraint.AsConstant(index)
	if !ok {
		return 0, "", errors.Wrapf(core.ErrCannotModel, "symbolic array index %s", index)
	}
	if k.Int() < 0 || k.Int() >= int64(array.Length()) {
		return 0, ArrayIndexOutOfBoundsException, nil
	}
	return int(k.Int()), "", nil
}
