package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxPromptAttempts bounds re-prompting on invalid answers.
const maxPromptAttempts = 3

// prompter asks for values the user did not pass as flags.
type prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{reader: bufio.NewReader(r), writer: w}
}

// readInput reads one line without the trailing newline. A final line without
// a newline is still returned.
func readInput(reader *bufio.Reader) (string, error) {
	input, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ask prints question and returns the answer, or def when the answer is empty.
func (p *prompter) ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.writer, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.writer, "%s: ", question)
	}
	answer, err := readInput(p.reader)
	if err != nil {
		return "", fmt.Errorf("no answer for %q: %w", question, err)
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// askInt asks until it gets an integer >= min.
func (p *prompter) askInt(question string, min int) (int, error) {
	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		answer, err := p.ask(question, "")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= min {
			return n, nil
		}
		fmt.Fprintf(p.writer, "Please enter a whole number of at least %d.\n", min)
	}
	return 0, fmt.Errorf("invalid answer for %q", question)
}

// askChoice asks for one of options; an empty answer picks def.
func (p *prompter) askChoice(question string, options []string, def string) (string, error) {
	label := fmt.Sprintf("%s (%s)", question, strings.Join(options, "/"))
	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		answer, err := p.ask(label, def)
		if err != nil {
			return "", err
		}
		for _, o := range options {
			if strings.EqualFold(answer, o) {
				return o, nil
			}
		}
		fmt.Fprintf(p.writer, "Please choose one of: %s\n", strings.Join(options, ", "))
	}
	return "", fmt.Errorf("invalid answer for %q", question)
}
