package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// outputResult writes result in the selected format. Text output always
// returns nil; JSON output returns the encoder's error, if any.
func outputResult(command string, result any) error {
	if flagFormat == "text" {
		fmt.Printf("%+v\n", result)
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(CLIResult{Command: command, Results: result})
}

// outputError writes an error in the selected format and returns it so
// RunE can propagate it to Cobra, mirroring the teacher's CLI's
// single-envelope error convention.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}
