// Package assembler parses the textual instruction format run by the
// reference interpreter.
//
//	; comment
//	.method Example.sign
//	.locals 2
//	.param 0 x int
//	.param 1 a int[]
//	    iload_0
//	    ifle negative
//	    iconst_1
//	    ireturn
//	negative:
//	    iconst_m1
//	    ireturn
//
// Every value takes one local slot. Jump targets are labels; PCs are
// instruction indices.
package assembler

import (
	"bufio"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"gsymbex/internal/constraint"
	"gsymbex/internal/opcode"
)

// Param is a symbolic method argument.
type Param struct {
	Slot int
	Name string
	Type constraint.Type
	// Array marks an array of Type whose length is enumerated.
	Array bool
}

func (p Param) String() string {
	if p.Array {
		return p.Name + " " + p.Type.String() + "[]"
	}
	return p.Name + " " + p.Type.String()
}

// Program 一个方法的指令与参数信息
type Program struct {
	Method       string
	MaxLocals    int
	Params       []Param
	instructions []Instruction
	labels       map[string]int
}

func (p *Program) Instructions() []Instruction {
	return p.instructions
}

func (p *Program) Len() int {
	return len(p.instructions)
}

// At returns the instruction at pc.
func (p *Program) At(pc int) (*Instruction, bool) {
	if pc < 0 || pc >= len(p.instructions) {
		return nil, false
	}
	return &p.instructions[pc], true
}

// Label returns the pc of a label.
func (p *Program) Label(name string) (int, bool) {
	pc, ok := p.labels[name]
	return pc, ok
}

// GetListing renders the program with resolved jump targets.
func (p *Program) GetListing() string {
	var builder strings.Builder
	builder.WriteString(".method " + p.Method + "\n")
	builder.WriteString(".locals " + strconv.Itoa(p.MaxLocals) + "\n")
	for _, param := range p.Params {
		builder.WriteString(".param " + strconv.Itoa(param.Slot) + " " + param.String() + "\n")
	}
	builder.WriteString(instructionListToListing(p.instructions))
	return builder.String()
}

// Find returns the pcs where the sequence of patterns starts.
func (p *Program) Find(patterns [][]opcode.Operation) []int {
	return FindOPCodeSequence(patterns, p.instructions)
}

type pending struct {
	line   int
	labels []string
}

// Parse assembles source into a program.
func Parse(source string) (*Program, error) {
	p := &Program{labels: make(map[string]int), MaxLocals: -1}
	// jump arguments are resolved once every label is known
	var unresolved []pending
	scanner := bufio.NewScanner(strings.NewReader(source))
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, ';'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, ".") {
			if err := p.directive(text); err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			continue
		}
		if i := strings.IndexByte(text, ':'); i > 0 && !strings.ContainsAny(text[:i], " \t") {
			name := text[:i]
			if _, ok := p.labels[name]; ok {
				return nil, errors.Errorf("line %d: duplicate label %q", line, name)
			}
			p.labels[name] = len(p.instructions)
			text = strings.TrimSpace(text[i+1:])
			if text == "" {
				continue
			}
		}
		in, refs, err := parseInstruction(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		in.PC = len(p.instructions)
		in.Line = line
		p.instructions = append(p.instructions, in)
		unresolved = append(unresolved, pending{line: line, labels: refs})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read source")
	}
	for pc, u := range unresolved {
		if err := p.resolve(&p.instructions[pc], u.labels); err != nil {
			return nil, errors.Wrapf(err, "line %d", u.line)
		}
	}
	return p, p.validate()
}

func (p *Program) directive(text string) error {
	fields := strings.Fields(text)
	switch fields[0] {
	case ".method":
		if len(fields) != 2 {
			return errors.New(".method takes a name")
		}
		p.Method = fields[1]
	case ".locals":
		if len(fields) != 2 {
			return errors.New(".locals takes a count")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return errors.Errorf("bad local count %q", fields[1])
		}
		p.MaxLocals = n
	case ".param":
		if len(fields) != 4 {
			return errors.New(".param takes a slot, a name and a type")
		}
		slot, err := strconv.Atoi(fields[1])
		if err != nil || slot < 0 {
			return errors.Errorf("bad slot %q", fields[1])
		}
		param := Param{Slot: slot, Name: fields[2]}
		typeName := fields[3]
		if strings.HasSuffix(typeName, "[]") {
			param.Array = true
			typeName = strings.TrimSuffix(typeName, "[]")
		}
		if param.Type, err = constraint.ParseType(typeName); err != nil {
			return err
		}
		for _, other := range p.Params {
			if other.Slot == slot {
				return errors.Errorf("slot %d already holds %s", slot, other.Name)
			}
		}
		p.Params = append(p.Params, param)
	default:
		return errors.Errorf("unknown directive %s", fields[0])
	}
	return nil
}

func parseInstruction(text string) (Instruction, []string, error) {
	fields := strings.Fields(text)
	op := opcode.Operation(strings.ToLower(fields[0]))
	info, ok := opcode.GetOPCodeInfoByOperation(op)
	if !ok {
		return Instruction{}, nil, errors.Errorf("unknown instruction %q", fields[0])
	}
	in := Instruction{OPCode: op, Info: info, Text: strings.Join(fields[1:], " "), Local: -1}
	if usesLocal(info) {
		in.Local = info.Index
	}
	args := fields[1:]
	want := map[opcode.Argument]int{
		opcode.ArgNone:      0,
		opcode.ArgConstant:  1,
		opcode.ArgLocal:     1,
		opcode.ArgLabel:     1,
		opcode.ArgIncrement: 2,
		opcode.ArgType:      1,
	}
	if n, fixed := want[info.Argument]; fixed && len(args) != n {
		return in, nil, errors.Errorf("%s takes %d arguments, got %d", op, n, len(args))
	}

	var err error
	switch info.Argument {
	case opcode.ArgConstant:
		in.Constant, err = parseConstant(op, args[0])
	case opcode.ArgLocal:
		in.Local, err = parseSlot(args[0])
	case opcode.ArgIncrement:
		if in.Local, err = parseSlot(args[0]); err == nil {
			in.Delta, err = strconv.Atoi(args[1])
		}
	case opcode.ArgType:
		in.Element, err = constraint.ParseType(args[0])
	case opcode.ArgLabel:
		return in, args, nil
	case opcode.ArgCases:
		return parseCases(in, args)
	}
	return in, nil, err
}

// parseCases reads "k:label ... default:label". The returned labels are the
// case targets followed by the default.
func parseCases(in Instruction, args []string) (Instruction, []string, error) {
	var labels []string
	var def string
	seen := make(map[int32]bool)
	for _, arg := range args {
		i := strings.IndexByte(arg, ':')
		if i <= 0 || i == len(arg)-1 {
			return in, nil, errors.Errorf("bad case %q", arg)
		}
		key, label := arg[:i], arg[i+1:]
		if key == "default" {
			def = label
			continue
		}
		k, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			return in, nil, errors.Errorf("bad case key %q", key)
		}
		if seen[int32(k)] {
			return in, nil, errors.Errorf("duplicate case %d", k)
		}
		seen[int32(k)] = true
		in.Keys = append(in.Keys, int32(k))
		labels = append(labels, label)
	}
	if def == "" {
		return in, nil, errors.New("lookupswitch needs a default")
	}
	return in, append(labels, def), nil
}

func (p *Program) resolve(in *Instruction, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	pcs := make([]int, len(labels))
	for i, name := range labels {
		pc, ok := p.labels[name]
		if !ok {
			return errors.Errorf("undefined label %q", name)
		}
		pcs[i] = pc
	}
	if in.Info.Argument == opcode.ArgLabel {
		in.Target = pcs[0]
		return nil
	}
	in.Targets = pcs[:len(pcs)-1]
	in.Default = pcs[len(pcs)-1]
	// keys sorted as the JVM lays them out
	order := make([]int, len(in.Keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return in.Keys[order[a]] < in.Keys[order[b]] })
	keys := make([]int32, len(order))
	targets := make([]int, len(order))
	for i, j := range order {
		keys[i], targets[i] = in.Keys[j], in.Targets[j]
	}
	in.Keys, in.Targets = keys, targets
	return nil
}

func (p *Program) validate() error {
	if p.Method == "" {
		p.Method = "main"
	}
	used := -1
	for _, param := range p.Params {
		if param.Slot > used {
			used = param.Slot
		}
	}
	for _, in := range p.instructions {
		if usesLocal(in.Info) && in.Local > used {
			used = in.Local
		}
	}
	if p.MaxLocals < 0 {
		p.MaxLocals = used + 1
	} else if used >= p.MaxLocals {
		return errors.Errorf("local %d exceeds .locals %d", used, p.MaxLocals)
	}
	if len(p.instructions) == 0 {
		return errors.New("no instructions")
	}
	last := p.instructions[len(p.instructions)-1].Info
	if !last.IsReturn() && last.OPCode != opcode.GOTO {
		return errors.Errorf("%s falls off the end", p.Method)
	}
	return nil
}

func usesLocal(info opcode.OPCodeInfo) bool {
	switch info.Argument {
	case opcode.ArgLocal, opcode.ArgIncrement:
		return true
	}
	switch info.Family {
	case opcode.ILOAD, opcode.LLOAD, opcode.FLOAD, opcode.DLOAD, opcode.ALOAD,
		opcode.ISTORE, opcode.LSTORE, opcode.FSTORE, opcode.DSTORE, opcode.ASTORE:
		return true
	}
	return false
}

func parseSlot(text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, errors.Errorf("bad local %q", text)
	}
	return n, nil
}

// parseConstant reads 5, 5L, 1.5, 1.5f, NaN, NaNf, Infinity and -Infinity.
func parseConstant(op opcode.Operation, text string) (*constraint.Constant, error) {
	lower := strings.ToLower(text)
	var c *constraint.Constant
	switch {
	case strings.HasSuffix(lower, "l"):
		v, err := strconv.ParseInt(text[:len(text)-1], 10, 64)
		if err != nil {
			return nil, errors.Errorf("bad long %q", text)
		}
		c = constraint.LongConstant(v)
	case strings.HasSuffix(lower, "f") && !strings.HasSuffix(lower, "inf"):
		v, err := parseFloat(text[:len(text)-1], 32)
		if err != nil {
			return nil, errors.Errorf("bad float %q", text)
		}
		c = constraint.FloatConstant(float32(v))
	case strings.ContainsAny(lower, ".en") || strings.Contains(lower, "inf"):
		v, err := parseFloat(text, 64)
		if err != nil {
			return nil, errors.Errorf("bad double %q", text)
		}
		c = constraint.DoubleConstant(v)
	default:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, errors.Errorf("bad int %q", text)
		}
		c = constraint.IntConstant(int32(v))
	}
	switch op {
	case opcode.BIPUSH:
		if c.Type() != constraint.Int || c.Int() < math.MinInt8 || c.Int() > math.MaxInt8 {
			return nil, errors.Errorf("bipush takes a byte, got %s", text)
		}
	case opcode.SIPUSH:
		if c.Type() != constraint.Int || c.Int() < math.MinInt16 || c.Int() > math.MaxInt16 {
			return nil, errors.Errorf("sipush takes a short, got %s", text)
		}
	case opcode.LDC:
		if c.Type() != constraint.Int && c.Type() != constraint.Float {
			return nil, errors.Errorf("ldc takes an int or a float, got %s", text)
		}
	case opcode.LDC2_W:
		if c.Type() != constraint.Long && c.Type() != constraint.Double {
			return nil, errors.Errorf("ldc2_w takes a long or a double, got %s", text)
		}
	}
	return c, nil
}

func parseFloat(text string, bits int) (float64, error) {
	switch strings.ToLower(text) {
	case "nan":
		return math.NaN(), nil
	case "infinity", "+infinity":
		return math.Inf(1), nil
	case "-infinity":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(text, bits)
}
