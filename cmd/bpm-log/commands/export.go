package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ocf-bpm/bpm-go/pkg/log"
)

// RunExport writes the capture at path as JSON lines to output, or to
// stdout when output is empty.
func RunExport(path, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	err := reader.Each(func(event log.Event) error {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	return nil
}
