package checks

import (
	"fmt"
	"reflect"
	"strings"

	"tlf-sync/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema integrity check.
type SchemaReport struct {
	Database string                 `json:"database"`
	Matched  bool                   `json:"matched"`
	Tables   map[string]TableReport `json:"tables"`
	Errors   []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// typeAliases lists how drivers spell a gorm tag type in their catalogs.
var typeAliases = map[string][]string{
	"varchar":  {"character varying", "text"},
	"int":      {"integer"},
	"bigint":   {"integer"},
	"boolean":  {"tinyint", "bool"},
	"json":     {"longtext", "jsonb"},
	"decimal":  {"numeric"},
	"datetime": {"timestamp"},
}

// CheckSchema verifies a database against gorm models used as the source of
// truth. Every model must implement TableName.
func CheckSchema(db *gorm.DB, name string, models []any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Database: name,
		Tables:   make(map[string]TableReport),
		Matched:  true,
		Errors:   []string{},
	}

	for _, model := range models {
		typ := reflect.TypeOf(model)
		if typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		tabler, ok := reflect.New(typ).Interface().(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %s does not implement TableName", typ.Name())
		}
		tableName := tabler.TableName()

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}

		tbl := checkTable(typ, actualCols)
		if tbl.Status != "ok" {
			report.Matched = false
		}
		report.Tables[tableName] = tbl
	}

	return report, nil
}

func checkTable(typ reflect.Type, actualCols []database.ColumnInfo) TableReport {
	tbl := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}
	if len(actualCols) == 0 {
		tbl.Status = "missing"
	}

	actualMap := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	for i := 0; i < typ.NumField(); i++ {
		gormTag := typ.Field(i).Tag.Get("gorm")
		colName := parseGormColumn(gormTag)
		if colName == "" {
			continue
		}

		actCol, exists := actualMap[colName]
		if !exists {
			tbl.MissingColumns = append(tbl.MissingColumns, colName)
			if tbl.Status == "ok" {
				tbl.Status = "error"
			}
			continue
		}

		expType := strings.ToLower(parseGormType(gormTag))
		if expType != "" && !typeMatches(expType, actCol.Type) {
			tbl.TypeMismatches = append(tbl.TypeMismatches,
				fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type))
			tbl.Status = "error"
		}
	}
	return tbl
}

// typeMatches is a soft check: the actual type must contain the expected base
// type or one of its driver aliases. Sizes are not compared.
func typeMatches(expected, actual string) bool {
	base, _, _ := strings.Cut(expected, "(")
	if strings.Contains(actual, base) {
		return true
	}
	for _, alias := range typeAliases[base] {
		if strings.Contains(actual, alias) {
			return true
		}
	}
	return false
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}
