package sim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedInstruction is matched by every parse failure.
var ErrMalformedInstruction = errors.New("malformed instruction")

// MalformedInstructionError reports the first token that is not part of the
// vocabulary. Position is 1-based.
type MalformedInstructionError struct {
	Token    string
	Position int
}

func (e *MalformedInstructionError) Error() string {
	return fmt.Sprintf("malformed instruction %q at position %d", e.Token, e.Position)
}

func (e *MalformedInstructionError) Unwrap() error { return ErrMalformedInstruction }

// ParseInstructions splits text on whitespace and maps every token to an
// instruction. Nothing is returned on failure, not even the instructions that
// preceded the bad token.
func ParseInstructions(text string) ([]Instruction, error) {
	fields := strings.Fields(text)
	out := make([]Instruction, 0, len(fields))
	for i, tok := range fields {
		ins, ok := LookupInstruction(tok)
		if !ok {
			return nil, &MalformedInstructionError{Token: tok, Position: i + 1}
		}
		out = append(out, ins)
	}
	return out, nil
}

// FormatInstructions renders instructions one per line, the same layout a
// push_swap program prints.
func FormatInstructions(instructions []Instruction) string {
	var sb strings.Builder
	for _, ins := range instructions {
		sb.WriteString(ins.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
