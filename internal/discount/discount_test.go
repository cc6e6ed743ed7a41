package discount

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gearhub/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable(t *testing.T) {
	input := `# seasonal codes
WELCOME10,10.00

save5 , 5.50
WELCOME10,12.00
`
	table, err := parseTable(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table, 2)

	amount, ok := table.Amount("SAVE5")
	require.True(t, ok, "codes are upper-cased on load")
	assert.True(t, amount.Equal(decimal.RequireFromString("5.50")))

	// Duplicate code keeps the last amount seen.
	amount, _ = table.Amount("WELCOME10")
	assert.True(t, amount.Equal(decimal.RequireFromString("12.00")))
}

func TestParseTable_Errors(t *testing.T) {
	_, err := parseTable(context.Background(), strings.NewReader("WELCOME10"))
	assert.ErrorContains(t, err, "expected CODE,AMOUNT")

	_, err = parseTable(context.Background(), strings.NewReader("WELCOME10,abc"))
	assert.ErrorContains(t, err, "invalid amount")

	_, err = parseTable(context.Background(), strings.NewReader("WELCOME10,-5.00"))
	assert.ErrorContains(t, err, "negative discount amount")
}

func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codes.csv")
	require.NoError(t, os.WriteFile(path, []byte("SPRING,15.00\n"), 0o644))

	loader := NewFileLoader(zerolog.Nop())
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	amount, ok := table.Amount("SPRING")
	assert.True(t, ok)
	assert.True(t, amount.Equal(decimal.RequireFromString("15.00")))

	_, err = loader.Load(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestValidator_Validate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codes.csv")
	require.NoError(t, os.WriteFile(path, []byte("WELCOME10,10.00\n"), 0o644))

	v, err := NewValidator(context.Background(), NewFileLoader(zerolog.Nop()), path, zerolog.Nop())
	require.NoError(t, err)

	amount, err := v.Validate(context.Background(), " welcome10 ")
	require.NoError(t, err, "codes match case-insensitively")
	assert.True(t, amount.Equal(decimal.RequireFromString("10.00")))

	_, err = v.Validate(context.Background(), "NOPE")
	assert.ErrorIs(t, err, model.ErrInvalidDiscountCode)

	_, err = v.Validate(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrInvalidDiscountCode)
}

func TestValidator_NoFileRejectsEverything(t *testing.T) {
	v, err := NewValidator(context.Background(), NewFileLoader(zerolog.Nop()), "", zerolog.Nop())
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), "WELCOME10")
	assert.ErrorIs(t, err, model.ErrInvalidDiscountCode)
}
