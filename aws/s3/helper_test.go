package s3

import "testing"

func TestParseDSN(t *testing.T) {
	b, err := ParseDSN("s3://databricks-snowflake-share/runs", "eu-west-1")
	if err != nil {
		t.Fatal("expected DSN to parse, got: ", err)
	}
	if b.Name != "databricks-snowflake-share" {
		t.Fatal("unexpected bucket name: ", b.Name)
	}
	if b.Prefix != "runs" {
		t.Fatal("unexpected prefix: ", b.Prefix)
	}
	if b.Region != "eu-west-1" {
		t.Fatal("unexpected region: ", b.Region)
	}
}

func TestParseDSNRejectsBadScheme(t *testing.T) {
	if _, err := ParseDSN("gs://bucket/prefix", "eu-west-1"); err == nil {
		t.Fatal("expected error for non-s3 scheme")
	}
}

func TestParseDSNRequiresRegion(t *testing.T) {
	if _, err := ParseDSN("s3://bucket/prefix", ""); err == nil {
		t.Fatal("expected error for missing region")
	}
}
