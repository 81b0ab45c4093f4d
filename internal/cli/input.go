package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/draft/internal/draft"
	"github.com/roach88/draft/internal/value"
)

// inputFailure reports an unusable input file and returns a command error.
func (f *OutputFormatter) inputFailure(code, message string, err error) error {
	if reportErr := f.Error(code, fmt.Sprintf("%s: %v", message, err), nil); reportErr != nil {
		return WrapExitError(ExitCommandError, "write error report", reportErr)
	}
	return WrapExitError(ExitCommandError, message, err)
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, f *OutputFormatter, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, f.inputFailure(ErrCodeReadFailed, "read "+path, err)
	}
	f.VerboseLog("read %s (%d bytes)", path, len(data))
	return data, nil
}

// readDocument reads a JSON document.
func readDocument(cmd *cobra.Command, f *OutputFormatter, path string) (value.Value, error) {
	data, err := readInput(cmd, f, path)
	if err != nil {
		return nil, err
	}
	v, err := value.Parse(data)
	if err != nil {
		return nil, f.inputFailure(ErrCodeParseFailed, "parse "+path, err)
	}
	return v, nil
}

// readPatches reads a JSON array of patches in wire format.
func readPatches(cmd *cobra.Command, f *OutputFormatter, path string) ([]draft.Patch, error) {
	data, err := readInput(cmd, f, path)
	if err != nil {
		return nil, err
	}
	var patches []draft.Patch
	if err := json.Unmarshal(data, &patches); err != nil {
		return nil, f.inputFailure(ErrCodeParseFailed, "parse "+path, err)
	}
	return patches, nil
}
