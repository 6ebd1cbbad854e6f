package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetChoice prints options numbered from 1 and accepts either a number or
// the exact (case-insensitive) option text.
func GetChoice(reader *bufio.Reader, prompt string, options []string, w io.Writer) (string, error) {
	for i, o := range options {
		if _, err := fmt.Fprintf(w, "%2d. %s\n", i+1, o); err != nil {
			return "", err
		}
	}

	answer, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}

	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(options) {
			return "", fmt.Errorf("choice %d out of range 1..%d", n, len(options))
		}
		return options[n-1], nil
	}
	for _, o := range options {
		if strings.EqualFold(o, answer) {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown choice %q", answer)
}
