package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstants_AreUnique(t *testing.T) {
	names := []string{
		FieldFile, FieldSource, FieldStage, FieldAccount, FieldMessage, FieldLine,
		FieldTransactionID, FieldTag, FieldStrategy, FieldField, FieldValue,
		FieldWorkers, FieldOperation, FieldError, FieldDuration, FieldCount,
		FieldDelimiter, FieldInputFile, FieldOutputFile,
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		assert.NotEmpty(t, n)
		assert.False(t, seen[n], "duplicate field name %q", n)
		seen[n] = true
	}
}
