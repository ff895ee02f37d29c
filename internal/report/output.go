package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agentstation/cffauthor/pkg/constants"
	"github.com/agentstation/cffauthor/pkg/contribution"
	"github.com/agentstation/cffauthor/pkg/errors"
)

// Outputs holds the values exported through the GITHUB_OUTPUT file for
// later workflow steps.
type Outputs struct {
	// NewAuthors lists the contributors missing from the citation file,
	// with their contributions. Always written, even when empty.
	NewAuthors []contribution.ManifestEntry

	// UpdatedCFF is the recommended citation file content. Written only
	// when non-empty.
	UpdatedCFF []byte

	// Warnings are the run's warning messages. Written only when present.
	Warnings []string
}

// WriteOutputs writes the outputs to w in the GITHUB_OUTPUT multiline
// format (name<<delimiter ... delimiter).
func WriteOutputs(w io.Writer, out Outputs) error {
	entries := out.NewAuthors
	if entries == nil {
		entries = []contribution.ManifestEntry{}
	}
	// An encoder with HTML escaping off keeps "Name <email>" identity keys
	// readable in the manifest.
	var manifest bytes.Buffer
	enc := json.NewEncoder(&manifest)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return errors.WrapParse("json", "new authors manifest", err)
	}
	if err := writeOutput(w, "new_authors", manifest.String()); err != nil {
		return err
	}
	if len(out.UpdatedCFF) > 0 {
		if err := writeOutput(w, "updated_cff", string(out.UpdatedCFF)); err != nil {
			return err
		}
	}
	if len(out.Warnings) > 0 {
		if err := writeOutput(w, "warnings", strings.Join(out.Warnings, "\n")); err != nil {
			return err
		}
	}
	return nil
}

// AppendOutputs appends the outputs to the file at path, creating it if
// needed. GitHub Actions points GITHUB_OUTPUT at a file other steps may
// already have written to.
func AppendOutputs(path string, out Outputs) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("open", path, err)
	}
	defer f.Close()

	if err := WriteOutputs(f, out); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// writeOutput emits one multiline output. The delimiter line must not
// occur in the value, so a fixed token is refused when the value embeds it.
func writeOutput(w io.Writer, name, value string) error {
	const delimiter = "CFFAUTHOR_EOF"
	if strings.Contains(value, delimiter) {
		return errors.NewConstructionError("workflow output", nil,
			fmt.Sprintf("value of %s contains the heredoc delimiter", name))
	}
	value = strings.TrimRight(value, "\n")
	if _, err := fmt.Fprintf(w, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter); err != nil {
		return errors.WrapIO("write", "workflow output", err)
	}
	return nil
}
