package helper

import (
	"strings"
	"testing"
)

type testConfig struct {
	Host  string `errorTxt:"warehouse host" mandatory:"yes"`
	Token string `errorTxt:"access token" mandatory:"yes"`
	Note  string `errorTxt:"note"`
	Port  int    `errorTxt:"port" mandatory:"yes"`
}

func TestValidateStructIsPopulated(t *testing.T) {
	cfg := &testConfig{Host: "dbc-123.cloud.example.com"}
	err := ValidateStructIsPopulated(cfg)
	if err == nil {
		t.Fatal("expected error for unset mandatory fields")
	}
	if !strings.Contains(err.Error(), "access token") || !strings.Contains(err.Error(), "port") {
		t.Fatal("expected error to name missing fields, got: ", err)
	}
	if strings.Contains(err.Error(), "warehouse host") {
		t.Fatal("host is set so it must not be reported, got: ", err)
	}
	if strings.Contains(err.Error(), "note") {
		t.Fatal("non-mandatory fields must not be reported, got: ", err)
	}

	cfg.Token = "tok"
	cfg.Port = 4000
	if err := ValidateStructIsPopulated(cfg); err != nil {
		t.Fatal("expected fully populated struct to validate, got: ", err)
	}
}

type nestedConfig struct {
	Inner testConfig
	Name  string `errorTxt:"name" mandatory:"yes"`
}

func TestValidateStructDescendsIntoNestedStructs(t *testing.T) {
	cfg := &nestedConfig{Name: "x"}
	err := ValidateStructIsPopulated(cfg)
	if err == nil || !strings.Contains(err.Error(), "warehouse host") {
		t.Fatal("expected nested struct fields to be validated, got: ", err)
	}
}
