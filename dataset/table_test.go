package dataset

import (
	"database/sql"
	"testing"

	"github.com/pivolan/chart_builder/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestIsNumericType(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Int64", true},
		{"Float64", true},
		{"Nullable(Int64)", true},
		{"LowCardinality(Nullable(Float32))", true},
		{"Decimal(18, 2)", true},
		{"String", false},
		{"Nullable(String)", false},
		{"DateTime64(3)", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNumericType(tt.in))
		})
	}
}

func TestRowToRecord(t *testing.T) {
	names := []string{"id", "month", "sales"}
	numeric := map[string]bool{"id": true, "sales": true}
	values := []sql.NullString{
		{String: "7", Valid: true},
		{String: "2024", Valid: true},
		{},
	}

	got := rowToRecord(names, values, numeric)
	assert.Equal(t, models.Record{
		{Name: "id", Value: models.Num(7)},
		{Name: "month", Value: models.Str("2024")},
		{Name: "sales", Value: models.Str("")},
	}, got)
}

func TestLoadTableRejectsBadName(t *testing.T) {
	_, err := LoadTable(nil, "t; DROP TABLE x", 10)
	assert.Error(t, err)
}
