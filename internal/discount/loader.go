package discount

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fileLoader implements Loader for local discount files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based discount loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "discount-loader").Logger(),
	}
}

// Load reads a discount file with one "CODE,AMOUNT" entry per line.
// Blank lines and lines starting with '#' are skipped.
func (l *fileLoader) Load(ctx context.Context, filePath string) (Table, error) {
	l.logger.Info().Str("file", filePath).Msg("loading discount file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open discount file")
		return nil, fmt.Errorf("failed to open discount file %s: %w", filePath, err)
	}
	defer file.Close()

	table, err := parseTable(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to parse discount file")
		return nil, fmt.Errorf("failed to parse discount file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("codes_loaded", len(table)).
		Msg("discount file loaded")

	return table, nil
}

// parseTable reads "CODE,AMOUNT" lines into a Table. Codes are
// upper-cased; a duplicate code keeps the last amount seen.
func parseTable(ctx context.Context, r io.Reader) (Table, error) {
	table := make(Table)
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, rawAmount, found := strings.Cut(line, ",")
		if !found {
			return nil, fmt.Errorf("line %d: expected CODE,AMOUNT", lineNo)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(rawAmount))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount %q: %w", lineNo, rawAmount, err)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("line %d: negative discount amount", lineNo)
		}

		table[strings.ToUpper(strings.TrimSpace(code))] = amount
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading discount data: %w", err)
	}

	return table, nil
}
