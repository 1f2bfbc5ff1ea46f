package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaFingerprint_AddTable_AccumulatesTotalColumns(t *testing.T) {
	sf := NewSchemaFingerprint()
	sf.AddTable(TableSchema{Name: "journal_entries", Columns: []FieldSchema{{Name: "id"}, {Name: "amount"}}})
	sf.AddTable(TableSchema{Name: "transactions", Columns: []FieldSchema{{Name: "id"}}})

	assert.Equal(t, 3, sf.TotalColumns())
	assert.Len(t, sf.Tables, 2)
}

func TestSchemaExtractor_FromNumeric_DerivesNullRateFromZeros(t *testing.T) {
	stats := NewNumericStats(10, func() float64 { return 0.5 })
	for i := 0; i < 8; i++ {
		stats.Observe(100.0)
	}
	stats.Observe(0.0)
	stats.Observe(0.0)

	field := NewSchemaExtractor().FromNumeric("amount", stats)

	assert.Equal(t, TypeFloat64, field.DataType)
	assert.True(t, field.Nullable)
	assert.InDelta(t, 0.2, field.NullRate, 1e-9)
	assert.Equal(t, uint64(10), field.Cardinality)
}

func TestSchemaExtractor_FromCategorical_DetectsBooleanColumn(t *testing.T) {
	stats := NewCategoricalStats(10)
	stats.Observe("true")
	stats.Observe("false")
	stats.Observe("true")

	field := NewSchemaExtractor().FromCategorical("flag", stats)

	assert.Equal(t, TypeBoolean, field.DataType)
}

func TestSchemaExtractor_FromCategorical_DefaultsToStringForNonBoolean(t *testing.T) {
	stats := NewCategoricalStats(10)
	stats.Observe("US01")
	stats.Observe("DE01")
	stats.Observe("US01")

	field := NewSchemaExtractor().FromCategorical("company_code", stats)

	assert.Equal(t, TypeString, field.DataType)
	assert.Equal(t, uint64(2), field.Cardinality)
}

func TestDataType_IsNumericAndIsCategorical(t *testing.T) {
	assert.True(t, TypeInt64.IsNumeric())
	assert.True(t, TypeDecimal.IsNumeric())
	assert.False(t, TypeString.IsNumeric())

	assert.True(t, TypeBoolean.IsCategorical())
	assert.True(t, TypeString.IsCategorical())
	assert.False(t, TypeFloat64.IsCategorical())
}
