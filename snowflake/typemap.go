package snowflake

import (
	"regexp"
	"strings"
)

type dataTypeLink struct {
	SourceDataType string
	TargetDataType string
}

// DatabricksToSnowflakeDataTypeMapping maps Databricks SQL data types onto
// the Snowflake types the load table is created with.
var DatabricksToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "tinyint", TargetDataType: "NUMBER"},
	{SourceDataType: "smallint", TargetDataType: "NUMBER"},
	{SourceDataType: "int", TargetDataType: "NUMBER"},
	{SourceDataType: "integer", TargetDataType: "NUMBER"},
	{SourceDataType: "bigint", TargetDataType: "NUMBER"},
	{SourceDataType: "long", TargetDataType: "NUMBER"},
	{SourceDataType: "float", TargetDataType: "FLOAT"},
	{SourceDataType: "real", TargetDataType: "FLOAT"},
	{SourceDataType: "double", TargetDataType: "DOUBLE"},
	{SourceDataType: "boolean", TargetDataType: "BOOLEAN"},
	{SourceDataType: "date", TargetDataType: "DATE"},
	{SourceDataType: "timestamp", TargetDataType: "TIMESTAMP_NTZ"},
	{SourceDataType: "timestamp_ntz", TargetDataType: "TIMESTAMP_NTZ"},
	{SourceDataType: "binary", TargetDataType: "BINARY"},
	{SourceDataType: "string", TargetDataType: "VARCHAR"},
	{SourceDataType: "varchar", TargetDataType: "VARCHAR"},
	{SourceDataType: "char", TargetDataType: "VARCHAR"},
}

// typeCatchAll receives map/array/struct and anything else unrecognised.
const typeCatchAll = "VARIANT"

var (
	regexpDecimalType = regexp.MustCompile(`^(decimal|numeric)(\s*\(\s*\d+\s*(,\s*\d+\s*)?\))?$`)
	regexpCharType    = regexp.MustCompile(`^(varchar|char)\s*\(\s*\d+\s*\)$`)
)

type dataTypeMap map[string]string

func newDataTypeMapper(types []dataTypeLink) dataTypeMap {
	dtm := make(dataTypeMap)
	for _, row := range types { // for each data type link...
		dtm[row.SourceDataType] = row.TargetDataType
	}
	return dtm
}

var databricksTypes = newDataTypeMapper(DatabricksToSnowflakeDataTypeMapping)

// MapDataType converts one Databricks column type to its Snowflake
// counterpart. Parameterised decimal types keep their precision and scale.
// Unrecognised types never fail and load as the catch-all type instead.
func MapDataType(databricksType string) string {
	t := strings.ToLower(strings.TrimSpace(databricksType))
	if target, ok := databricksTypes[t]; ok {
		return target
	}
	if m := regexpDecimalType.FindStringSubmatch(t); m != nil {
		if m[2] != "" { // if precision was supplied...
			return "NUMBER" + strings.Replace(m[2], " ", "", -1)
		}
		return "NUMBER"
	}
	if regexpCharType.MatchString(t) { // if the type carries an explicit length...
		return "VARCHAR"
	}
	return typeCatchAll
}
