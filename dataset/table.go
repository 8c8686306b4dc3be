package dataset

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pivolan/chart_builder/domain/models"
	"github.com/pivolan/go_utils"
	"gorm.io/gorm"
)

// DefaultTableLimit caps how many rows LoadTable pulls into memory.
const DefaultTableLimit = 10000

type ColumnInfo struct {
	Name string
	Type string //Date DateTime64 Int64 Float64
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)?$`)

var numericTypes = []string{
	"Int8", "Int16", "Int32", "Int64", "Int128", "Int256",
	"UInt8", "UInt16", "UInt32", "UInt64", "UInt128", "UInt256",
	"Float32", "Float64",
}

// IsNumericType reports whether a ClickHouse column type holds numbers.
// Nullable and LowCardinality wrappers and Decimal precisions are unwrapped.
func IsNumericType(_type string) bool {
	for _, wrapper := range []string{"Nullable(", "LowCardinality("} {
		if strings.HasPrefix(_type, wrapper) && strings.HasSuffix(_type, ")") {
			_type = strings.TrimSuffix(strings.TrimPrefix(_type, wrapper), ")")
		}
	}
	if strings.HasPrefix(_type, "Decimal") {
		return true
	}
	return go_utils.InArray(_type, numericTypes)
}

func getColumnAndTypeList(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	tx := db.Raw(fmt.Sprintf("DESCRIBE TABLE %s", tableName)).Scan(&columns)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return columns, nil
}

// LoadTable reads up to limit rows of a ClickHouse table. Column types come
// from DESCRIBE TABLE, so a numeric column yields numbers even when the first
// row happens to look like text.
func LoadTable(db *gorm.DB, tableName string, limit int) ([]models.Record, error) {
	if !tableNameRe.MatchString(tableName) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}
	if limit <= 0 {
		limit = DefaultTableLimit
	}

	columns, err := getColumnAndTypeList(db, tableName)
	if err != nil {
		return nil, fmt.Errorf("error describing table %s: %w", tableName, err)
	}
	numeric := make(map[string]bool, len(columns))
	for _, c := range columns {
		numeric[c.Name] = IsNumericType(c.Type)
	}

	rows, err := db.Raw(fmt.Sprintf("SELECT * FROM %s LIMIT %d", tableName, limit)).Rows()
	if err != nil {
		return nil, fmt.Errorf("error selecting from %s: %w", tableName, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []models.Record
	for rows.Next() {
		values := make([]sql.NullString, len(names))
		ptrs := make([]interface{}, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", tableName, err)
		}
		records = append(records, rowToRecord(names, values, numeric))
	}
	return records, rows.Err()
}

// rowToRecord converts one scanned row. NULL becomes an empty string; a value
// of a numeric column that fails to parse keeps its text.
func rowToRecord(names []string, values []sql.NullString, numeric map[string]bool) models.Record {
	rec := make(models.Record, 0, len(names))
	for i, name := range names {
		v := values[i]
		cell := models.Cell{Name: name, Value: models.Str(v.String)}
		if v.Valid && numeric[name] {
			if f, err := strconv.ParseFloat(v.String, 64); err == nil {
				cell.Value = models.Num(f)
			}
		}
		rec = append(rec, cell)
	}
	return rec
}
