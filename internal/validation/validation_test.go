package validation

import (
	"strings"
	"testing"
)

func TestValidateContractName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Owner", false},
		{"with underscore", "_Token", false},
		{"with dollar", "$Proxy", false},
		{"with digits", "ERC20", false},
		{"empty", "", true},
		{"leading digit", "1Token", true},
		{"whitespace", "My Token", true},
		{"path separator", "contracts/Owner", true},
		{"too long", strings.Repeat("A", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContractName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContractName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	if err := ValidateFilePath(""); err != nil {
		t.Errorf("empty path should be allowed: %v", err)
	}
	if err := ValidateFilePath("contracts/Owner.sol"); err != nil {
		t.Errorf("normal path rejected: %v", err)
	}
	if err := ValidateFilePath("bad\x00path"); err == nil {
		t.Error("NUL byte not rejected")
	}
}

func TestValidateBytecodeSize(t *testing.T) {
	if err := ValidateBytecodeSize(strings.Repeat("ab", 1024), 1); err != nil {
		t.Errorf("1KB of bytecode rejected at 1KB limit: %v", err)
	}
	if err := ValidateBytecodeSize(strings.Repeat("ab", 2048), 1); err == nil {
		t.Error("oversized bytecode not rejected")
	}
	if err := ValidateBytecodeSize(strings.Repeat("ab", 1<<20), 0); err != nil {
		t.Errorf("disabled limit still rejected input: %v", err)
	}
}
