package cff

import (
	"context"
	"os/exec"
	"strings"

	"github.com/agentstation/cffauthor/pkg/constants"
	"github.com/agentstation/cffauthor/pkg/errors"
)

// Validator checks that a CFF file on disk conforms to the schema.
type Validator interface {
	Validate(ctx context.Context, path string) error
}

// ConvertValidator validates files by running the cffconvert tool, which
// carries the authoritative CFF schema.
type ConvertValidator struct {
	command string
}

// NewConvertValidator creates a validator that shells out to command, or to
// "cffconvert" when command is empty.
func NewConvertValidator(command string) *ConvertValidator {
	if command == "" {
		command = "cffconvert"
	}
	return &ConvertValidator{command: command}
}

// Validate runs `cffconvert --validate --infile path`. A non-zero exit is
// returned as a ProcessError carrying the tool's output, which the caller
// surfaces line by line in the review comment.
func (v *ConvertValidator) Validate(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.ValidatorTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, v.command, "--validate", "--infile", path)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return &errors.ProcessError{
		Operation: "cff validation",
		Command:   v.command + " --validate --infile " + path,
		Output:    strings.TrimSpace(string(output)),
		ExitCode:  exitCode,
		Err:       err,
	}
}
