package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gunvolt24/partstore/pkg/validate"
)

// CLI для офлайн-проверки тел заказов (POST /orders) перед отправкой.
func main() {
	inputPath := flag.String("in", "", "path to input (.json or .jsonl). If empty, reads from stdin.")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orderValidator := validate.NewOrderValidator()
	format := validate.InputFormat(*formatStr)

	var (
		summary validate.Summary
		err     error
	)
	// stdin вариант: считаем, что jsonl
	if *inputPath == "" {
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
		summary, err = validate.ValidateReader(ctx, orderValidator, os.Stdin, format, os.Stdout)
	} else {
		summary, err = validate.ValidateFile(ctx, orderValidator, *inputPath, format, os.Stdout)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, summary)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
}
