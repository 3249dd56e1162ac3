package utils

import (
	"reflect"
	"testing"
)

func TestSplitSymbols(t *testing.T) {
	got := SplitSymbols("AC GT\nTA\t")
	want := []string{"A", "C", "G", "T", "T", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := SplitSymbols(" \n\t"); len(got) != 0 {
		t.Errorf("Expected no symbols from whitespace, got %v", got)
	}
}
