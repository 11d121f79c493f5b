package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompts read from the App's shared reader, so lines typed ahead of a
// prompt are not lost between the REPL and the prompt.

var (
	readPassword = term.ReadPassword
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

var errNoInput = errors.New("no input")

// askLine shows label followed by a "> " marker on the next line and returns
// the answer without surrounding blanks. A last line without a newline still
// counts as an answer.
func askLine(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s\n> ", label)

	line, err := r.ReadString('\n')
	switch {
	case err == nil, errors.Is(err, io.EOF) && line != "":
		return strings.TrimSpace(line), nil
	case errors.Is(err, io.EOF):
		return "", errNoInput
	default:
		return "", err
	}
}

// askSecret reads a secret from the terminal without echo. The caller wipes
// the returned bytes.
func askSecret(w io.Writer, label string) ([]byte, error) {
	fmt.Fprintf(w, "%s: ", label)
	secret, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return secret, nil
}
