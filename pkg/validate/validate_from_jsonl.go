package validate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/partstore/internal/ports"
)

// LineError — причина отклонения строки JSONL (нумерация с 1).
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

// Summary — итог проверки файла или потока.
type Summary struct {
	Valid   int
	Invalid int
	Errors  []LineError
}

func (s Summary) String() string {
	return fmt.Sprintf("%d valid / %d invalid", s.Valid, s.Invalid)
}

// ValidateJSONLStream — построчная проверка пачки тел заказов.
// Валидные записи пишутся в ow каноническим JSON по одной на строку, пустые строки пропускаются.
// Невалидная строка не прерывает обработку: причина попадает в Summary.Errors.
func ValidateJSONLStream(ctx context.Context, validator ports.OrderValidator, ir io.Reader, ow io.Writer) (Summary, error) {
	var res Summary

	scanner := bufio.NewScanner(ir)
	// запас на большие строки
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return res, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		order, err := ValidateOrderFromJSON(ctx, validator, line)
		if err != nil {
			res.Invalid++
			res.Errors = append(res.Errors, LineError{Line: lineNo, Err: err})
			continue
		}

		if err := writeCanonical(ow, order); err != nil {
			return res, err
		}
		res.Valid++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}

func writeCanonical(ow io.Writer, v any) error {
	canonical, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := ow.Write(append(canonical, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
