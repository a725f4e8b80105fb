package table

import (
	"reflect"
	"testing"
)

func TestFormatAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"Garage", "cam-1", "12 kB"},
		{"Porch", "cam-22", "1.1 MB"},
	}
	got := Format(rows, []Alignment{AlignLeft, AlignLeft, AlignRight})
	want := []string{
		"Garage  cam-1    12 kB",
		"Porch   cam-22  1.1 MB",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatMeasuresCellWidth(t *testing.T) {
	rows := [][]string{
		{"東京", "x"},
		{"ab", "y"},
	}
	got := Format(rows, nil)
	want := []string{
		"東京  x",
		"ab    y",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatPadsShortRows(t *testing.T) {
	got := Format([][]string{{"a", "b"}, {"long"}}, nil)
	want := []string{"a     b", "long  "}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if Format(nil, nil) != nil {
		t.Fatalf("expected nil for no rows")
	}
}
