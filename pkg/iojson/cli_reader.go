package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tailscale/hujson"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader reads a JSON value from the --file flag or from piped stdin.
// Comments and trailing commas (JWCC) are accepted.
type FileReader[T any] struct {
	fileFlagValue string

	// Stdin overrides os.Stdin, for tests.
	Stdin io.Reader
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// ReadBytes returns the input normalized to standard JSON.
func (fr *FileReader[T]) ReadBytes() ([]byte, error) {
	var reader io.Reader

	switch {
	case fr.fileFlagValue != "":
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	case fr.Stdin != nil:
		reader = fr.Stdin
	default:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = os.Stdin
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return std, nil
}

// Read decodes the input into T.
func (fr *FileReader[T]) Read() (T, error) {
	var input T

	data, err := fr.ReadBytes()
	if err != nil {
		return input, err
	}

	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
