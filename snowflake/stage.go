package snowflake

import (
	"fmt"
	"strings"
)

// GetStageDDL builds the CREATE STAGE statement pointing Snowflake at the S3
// location the export job writes to. The stage reads parquet files so no
// field or date formats are needed.
func GetStageDDL(stageName string, s3Url string, key string, secret string, addTerminator bool) []string {
	terminator := ""
	s3Url = "s3://" + strings.TrimPrefix(s3Url, "s3://") // ensure 's3://' leading string.
	if addTerminator {
		terminator = ";"
	}
	s := [1]string{}
	s[0] = fmt.Sprintf(`create or replace stage %v
  url = '%v'
  credentials = (
    aws_key_id = '%v'
    aws_secret_key = '%v'
  )
  file_format = (
    type = parquet
  )
  comment = 'bricksync shared data stage'%v`,
		stageName,
		s3Url, key, secret,
		terminator)
	return s[:]
}
