package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoAnswer = errors.New("no answer to confirmation prompt")

// confirm asks a yes/no question, defaulting to yes on an empty answer.
// Unrecognized answers repeat the question. End of input is an error.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s [Y/n] ", question)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return false, fmt.Errorf("reading answer: %w", err)
			}
			return false, errNoAnswer
		}
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "", "y", "ye", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(out, "Please answer yes or no.")
	}
}
