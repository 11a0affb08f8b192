package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON payload of type T from a --file flag or,
// when the flag is absent and stdin is piped, from stdin. Batch task
// creation reads its input through this.
type FileReader[T any] struct {
	fileFlagValue string
}

// Flag returns the --file/-f flag to register on the consuming command.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to a JSON file (reads piped stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Read decodes the payload. An interactive stdin with no --file is an
// error rather than a hang waiting for input.
func (fr *FileReader[T]) Read() (T, error) {
	var reader io.Reader
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return input, fmt.Errorf("no input provided (stdin is a terminal); use -f or pipe JSON")
		}
		reader = os.Stdin
	}

	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
