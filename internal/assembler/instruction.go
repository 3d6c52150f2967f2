package assembler

import (
	"strconv"
	"strings"

	"gsymbex/internal/constraint"
	"gsymbex/internal/opcode"
)

// Instruction 解析后的一条指令，PC 为指令序号
type Instruction struct {
	PC     int
	Line   int // 源文件行号
	OPCode opcode.Operation
	Info   opcode.OPCodeInfo
	// Text holds the arguments as written.
	Text string

	Constant *constraint.Constant
	Local    int
	Delta    int
	Target   int
	Element  constraint.Type
	Keys     []int32
	Targets  []int
	Default  int
}

// Family is the generic operation, iload for iload_2.
func (in *Instruction) Family() opcode.Operation {
	return in.Info.Family
}

func (in *Instruction) String() string {
	var builder strings.Builder
	builder.WriteString(strconv.Itoa(in.PC))
	builder.WriteString(" ")
	builder.WriteString(in.OPCode.String())
	if args := in.arguments(); args != "" {
		builder.WriteString(" ")
		builder.WriteString(args)
	}
	return builder.String()
}

// arguments 以解析后的形式输出参数，跳转目标输出为 PC
func (in *Instruction) arguments() string {
	switch in.Info.Argument {
	case opcode.ArgConstant:
		text := in.Constant.String()
		if in.Constant.Type() == constraint.Double && !strings.ContainsAny(text, ".eIN") {
			text += ".0"
		}
		return text
	case opcode.ArgLocal:
		return strconv.Itoa(in.Local)
	case opcode.ArgIncrement:
		return strconv.Itoa(in.Local) + " " + strconv.Itoa(in.Delta)
	case opcode.ArgLabel:
		return "#" + strconv.Itoa(in.Target)
	case opcode.ArgType:
		return in.Element.String()
	case opcode.ArgCases:
		var parts []string
		for i, k := range in.Keys {
			parts = append(parts, strconv.Itoa(int(k))+":#"+strconv.Itoa(in.Targets[i]))
		}
		parts = append(parts, "default:#"+strconv.Itoa(in.Default))
		return strings.Join(parts, " ")
	}
	return ""
}

func instructionListToListing(instructions []Instruction) string {
	var builder strings.Builder
	for i := range instructions {
		builder.WriteString(instructions[i].String())
		builder.WriteString("\n")
	}
	return builder.String()
}

// patterns从0开始，instructions从index开始，依次匹配
// 匹配按 Family 进行，iload 可以匹配 iload_0
func isSequenceMatch(patterns [][]opcode.Operation, instructions []Instruction, index int) bool {
	for i, pattern := range patterns {
		if index+i >= len(instructions) {
			return false
		}
		var found bool
		for _, p := range pattern {
			if instructions[index+i].OPCode == p || instructions[index+i].Family() == p {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FindOPCodeSequence returns the start of every match of patterns.
func FindOPCodeSequence(patterns [][]opcode.Operation, instructions []Instruction) []int {
	result := make([]int, 0)
	for i := 0; i < len(instructions)-len(patterns)+1; i++ {
		if isSequenceMatch(patterns, instructions, i) {
			result = append(result, i)
		}
	}
	return result
}
