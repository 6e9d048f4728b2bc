package validate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/partstore/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// DetectFormat — формат по расширению; неизвестное расширение считается JSON.
func DetectFormat(path string) InputFormat {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return FormatJSONL
	}
	return FormatJSON
}

// ValidateFile — валидирует файл с телами заказов (JSON или JSONL).
func ValidateFile(ctx context.Context, validator ports.OrderValidator, filePath string, format InputFormat, ow io.Writer) (Summary, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return Summary{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if format == FormatAuto {
		format = DetectFormat(filePath)
	}
	return ValidateReader(ctx, validator, file, format, ow)
}

// ValidateReader — то же, что ValidateFile, но для произвольного reader (stdin).
func ValidateReader(ctx context.Context, validator ports.OrderValidator, ir io.Reader, format InputFormat, ow io.Writer) (Summary, error) {
	switch format {
	case FormatJSON:
		raw, err := io.ReadAll(ir)
		if err != nil {
			return Summary{}, fmt.Errorf("read: %w", err)
		}
		order, err := ValidateOrderFromJSON(ctx, validator, raw)
		if err != nil {
			return Summary{Invalid: 1, Errors: []LineError{{Line: 1, Err: err}}}, err
		}
		if err := writeCanonical(ow, order); err != nil {
			return Summary{}, err
		}
		return Summary{Valid: 1}, nil

	case FormatJSONL, FormatAuto:
		return ValidateJSONLStream(ctx, validator, ir, ow)

	default:
		return Summary{}, fmt.Errorf("unsupported format: %s", format)
	}
}
