// Package utils holds the output helpers shared by the commands and the
// backend logs.
package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"eiractl/internal/models"
)

var sizeUnits = []string{"KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders a size with binary units and one decimal, e.g. "1.5 KB".
func FormatBytes(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}
	value := float64(bytes) / 1024
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}

// FprintJSON writes data as indented JSON followed by a newline.
func FprintJSON(w io.Writer, data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// FprintError writes the JSON error envelope used by every command.
func FprintError(w io.Writer, err error, command string) {
	envelope := models.ErrorResponse{
		Error:     err.Error(),
		Timestamp: FormatTime(time.Now()),
		Command:   command,
	}
	if err := FprintJSON(w, envelope); err != nil {
		slog.Error("failed to print error envelope", "error", err)
		fmt.Fprintf(w, "Error: %s\n", envelope.Error)
	}
}

func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
