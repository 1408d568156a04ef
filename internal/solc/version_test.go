package solc

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{input: "0.8.14"},
		{input: "0.8.14+commit.80d49f37"},
		{input: "v0.8.14"},
		{input: "0.4.26"},
		{input: "", wantErr: true},
		{input: "latest", wantErr: true},
		{input: "0.8", wantErr: true},
	}

	for _, tt := range tests {
		_, err := ParseVersion(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if tt.wantErr && err != nil && !errors.Is(err, ErrInvalidVersion) {
			t.Errorf("ParseVersion(%q) error not ErrInvalidVersion: %v", tt.input, err)
		}
	}
}

func TestCompare(t *testing.T) {
	if Version("0.8.14").Compare("0.8.2") <= 0 {
		t.Error("0.8.14 should order after 0.8.2")
	}
	if Version("0.8.14+commit.80d49f37").Compare("0.8.14") != 0 {
		t.Error("commit suffix should not participate in ordering")
	}
}

func TestSortDescending(t *testing.T) {
	versions := []Version{"0.7.6", "0.8.14", "bogus", "0.8.2"}
	SortDescending(versions)

	want := []Version{"0.8.14", "0.8.2", "0.7.6", "bogus"}
	for i := range want {
		if versions[i] != want[i] {
			t.Fatalf("order = %v, want %v", versions, want)
		}
	}
}
