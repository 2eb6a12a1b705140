package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type field struct {
	label   string
	integer *int
	real    *float64
}

// Prompt asks for each tunable parameter, showing its current value as the default.
// Blank answers keep the default, as do answers that fail to parse.
func Prompt(in io.Reader, out io.Writer, c *Config) error {
	fields := []field{
		{label: "Batch size - iterations between abstractions", integer: &c.Abstraction.BatchSize},
		{label: "Alpha ABS - iteration threshold for abstraction", integer: &c.Abstraction.AlphaAbs},
		{label: "MCTS iterations per decision", integer: &c.Search.Iterations},
		{label: "Max turns before counting pieces", integer: &c.KTK.MaxTurns},
		{label: "Eta R - reward function error threshold", real: &c.Abstraction.Thresholds.EtaR},
		{label: "Eta T - transition probability error threshold", real: &c.Abstraction.Thresholds.EtaT},
		{label: "Board size", integer: &c.KTK.BoardSize},
	}

	scanner := bufio.NewScanner(in)
	for _, f := range fields {
		var current string
		if f.integer != nil {
			current = strconv.Itoa(*f.integer)
		} else {
			current = strconv.FormatFloat(*f.real, 'g', -1, 64)
		}
		if _, err := fmt.Fprintf(out, "%s [%s]: ", f.label, current); err != nil {
			return err
		}

		if !scanner.Scan() {
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}

		var err error
		if f.integer != nil {
			var v int
			if v, err = strconv.Atoi(answer); err == nil {
				*f.integer = v
			}
		} else {
			var v float64
			if v, err = strconv.ParseFloat(answer, 64); err == nil {
				*f.real = v
			}
		}
		if err != nil {
			fmt.Fprintf(out, "invalid input %q, keeping %s\n", answer, current)
		}
	}
	return scanner.Err()
}
