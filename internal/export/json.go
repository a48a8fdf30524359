package export

import (
	"encoding/json"

	"github.com/gorewood/vault/internal/output"
)

// FormatJSON writes the report to the printer.
func FormatJSON(printer *output.Printer, report Report) error {
	return printer.WriteJSON(report)
}

func marshalJSON(report Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
