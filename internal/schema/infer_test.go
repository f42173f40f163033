package schema

import (
	"reflect"
	"testing"

	"csvsql/internal/locale"
	"csvsql/internal/parser/csv"
)

func column(vals ...string) []csv.Row {
	rows := make([]csv.Row, len(vals))
	for i, v := range vals {
		rows[i] = csv.Row{v}
	}
	return rows
}

func TestInferSingleColumn(t *testing.T) {
	t.Parallel()
	gb := locale.MustParse("en-GB")

	tests := []struct {
		name string
		vals []string
		want ColumnType
	}{
		{name: "integers", vals: []string{"1", "2", "3"}, want: Integer},
		{name: "integer and decimal", vals: []string{"1", "2.5", "3"}, want: Double},
		{name: "integer and text", vals: []string{"1", "abc", "3"}, want: String},
		{name: "all blank", vals: []string{"", "", ""}, want: String},
		{name: "booleans", vals: []string{"true", "FALSE", ""}, want: Boolean},
		{name: "dates", vals: []string{"2024-01-02", "15/03/2024"}, want: DateTime},
		{name: "date and integer", vals: []string{"2024-01-02", "7"}, want: String},
		{name: "date and decimal", vals: []string{"2024-01-02", "7.5"}, want: String},
		{name: "date and boolean", vals: []string{"2024-01-02", "true"}, want: String},
		{name: "boolean and integer", vals: []string{"true", "1"}, want: String},
		{name: "boolean and decimal", vals: []string{"false", "1.5"}, want: String},
		{name: "trailing plus is text", vals: []string{"4+", "5"}, want: String},
		{name: "out of int32 range is decimal", vals: []string{"3000000000", "1"}, want: Double},
		{name: "quoted integers", vals: []string{`"1"`, `"2"`}, want: Integer},
		{name: "whitespace only is blank", vals: []string{" ", "4"}, want: Integer},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Infer(column(tt.vals...), false, gb)
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("Infer(%q) = %v, want [%v]", tt.vals, got, tt.want)
			}
		})
	}
}

func TestInferSkipsHeader(t *testing.T) {
	t.Parallel()

	records := []csv.Row{
		{"id", "price", "when", "flag"},
		{"1", "9.99", "2024-01-02", "true"},
		{"2", "", "2024-02-03", "false"},
	}
	got := Infer(records, true, locale.MustParse("en-GB"))
	want := []ColumnType{Integer, Double, DateTime, Boolean}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Infer() = %v, want %v", got, want)
	}

	// Without the header flag the names are data and force String.
	got = Infer(records, false, locale.MustParse("en-GB"))
	for i, typ := range got {
		if typ != String {
			t.Fatalf("Infer(no header)[%d] = %v, want string", i, typ)
		}
	}
}

func TestInferLocaleDecimal(t *testing.T) {
	t.Parallel()

	vals := column("1.234,5", "3,14")
	if got := Infer(vals, false, locale.MustParse("de-DE")); got[0] != Double {
		t.Fatalf("de-DE Infer() = %v, want double", got)
	}
	if got := Infer(vals, false, locale.MustParse("en-GB")); got[0] != String {
		t.Fatalf("en-GB Infer() = %v, want string", got)
	}
}

func TestInferEmpty(t *testing.T) {
	t.Parallel()
	if got := Infer(nil, true, locale.MustParse("")); len(got) != 0 {
		t.Fatalf("Infer(nil) = %v, want empty", got)
	}
	if got := Infer([]csv.Row{{"a", "b"}}, true, locale.MustParse("")); !reflect.DeepEqual(got, []ColumnType{String, String}) {
		t.Fatalf("Infer(header only) = %v, want [string string]", got)
	}
}

func TestResolveIsOrderIndependent(t *testing.T) {
	t.Parallel()

	all := []ColumnType{Boolean, Integer, Double, DateTime, String}
	for _, a := range all {
		for _, b := range all {
			ab := TypeSet(0).Add(a).Add(b)
			ba := TypeSet(0).Add(b).Add(a)
			if Resolve(ab) != Resolve(ba) {
				t.Errorf("Resolve(%v,%v) = %v, Resolve(%v,%v) = %v", a, b, Resolve(ab), b, a, Resolve(ba))
			}
		}
	}
	if got := Resolve(0); got != String {
		t.Fatalf("Resolve(empty) = %v, want string", got)
	}
}

func TestClassifyPriority(t *testing.T) {
	t.Parallel()
	gb := locale.MustParse("en-GB")

	tests := map[string]ColumnType{
		"true":       Boolean,
		"42":         Integer,
		"-42.0":      Double,
		"1,000":      Double,
		"2024-05-06": DateTime,
		"hello":      String,
		"1e5":        String,
	}
	for in, want := range tests {
		if got := Classify(in, gb); got != want {
			t.Errorf("Classify(%q) = %v, want %v", in, got, want)
		}
	}
}
