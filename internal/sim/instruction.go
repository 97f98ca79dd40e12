// Package sim is the two-stack simulation engine. It models the push_swap
// instruction set, applies instructions to a pair of integer stacks and
// supports step-by-step playback in both directions.
package sim

import "fmt"

// Instruction is one operation of the closed push_swap vocabulary.
type Instruction uint8

const (
	// PushA moves the top of stack B onto stack A ("pa").
	PushA Instruction = iota + 1
	// PushB moves the top of stack A onto stack B ("pb").
	PushB
	// SwapA exchanges the top two elements of stack A ("sa").
	SwapA
	// SwapB exchanges the top two elements of stack B ("sb").
	SwapB
	// SwapBoth is SwapA and SwapB at once ("ss").
	SwapBoth
	// RotateA moves the top of stack A to its bottom ("ra").
	RotateA
	// RotateB moves the top of stack B to its bottom ("rb").
	RotateB
	// RotateBoth is RotateA and RotateB at once ("rr").
	RotateBoth
	// ReverseRotateA moves the bottom of stack A to its top ("rra").
	ReverseRotateA
	// ReverseRotateB moves the bottom of stack B to its top ("rrb").
	ReverseRotateB
	// ReverseRotateBoth is ReverseRotateA and ReverseRotateB at once ("rrr").
	ReverseRotateBoth
)

var instructionTokens = map[Instruction]string{
	PushA:             "pa",
	PushB:             "pb",
	SwapA:             "sa",
	SwapB:             "sb",
	SwapBoth:          "ss",
	RotateA:           "ra",
	RotateB:           "rb",
	RotateBoth:        "rr",
	ReverseRotateA:    "rra",
	ReverseRotateB:    "rrb",
	ReverseRotateBoth: "rrr",
}

var tokenInstructions = func() map[string]Instruction {
	m := make(map[string]Instruction, len(instructionTokens))
	for ins, tok := range instructionTokens {
		m[tok] = ins
	}
	return m
}()

// AllInstructions lists the vocabulary in declaration order.
var AllInstructions = []Instruction{
	PushA, PushB,
	SwapA, SwapB, SwapBoth,
	RotateA, RotateB, RotateBoth,
	ReverseRotateA, ReverseRotateB, ReverseRotateBoth,
}

// String returns the push_swap token for the instruction.
func (i Instruction) String() string {
	if tok, ok := instructionTokens[i]; ok {
		return tok
	}
	return fmt.Sprintf("Instruction(%d)", uint8(i))
}

// Valid reports whether i is part of the vocabulary.
func (i Instruction) Valid() bool {
	_, ok := instructionTokens[i]
	return ok
}

// Inverse returns the instruction that undoes i.
func (i Instruction) Inverse() Instruction {
	switch i {
	case PushA:
		return PushB
	case PushB:
		return PushA
	case RotateA:
		return ReverseRotateA
	case RotateB:
		return ReverseRotateB
	case RotateBoth:
		return ReverseRotateBoth
	case ReverseRotateA:
		return RotateA
	case ReverseRotateB:
		return RotateB
	case ReverseRotateBoth:
		return RotateBoth
	default:
		// swaps are their own inverse
		return i
	}
}

// LookupInstruction maps a token such as "rra" to its instruction.
func LookupInstruction(token string) (Instruction, bool) {
	ins, ok := tokenInstructions[token]
	return ins, ok
}
