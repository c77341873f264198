package utils

import "testing"

func TestEncodeCSV(t *testing.T) {
	records := []*Record{
		NewRecord().Set("team", "Rockets").Set("score", "8.5"),
		NewRecord().Set("score", "7").Set("team", `Quote "Q", Inc`),
	}
	got, err := EncodeCSV(records)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := "team,score\r\nRockets,8.5\r\n\"Quote \"\"Q\"\", Inc\",7\r\n"
	if string(got) != want {
		t.Errorf("Expected %q, got %q", want, string(got))
	}
}

func TestEncodeCSVEmpty(t *testing.T) {
	got, err := EncodeCSV(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty output, got %q", string(got))
	}
}

func TestRecordSetKeepsOrder(t *testing.T) {
	r := NewRecord().Set("a", "1").Set("b", "2").Set("a", "3")
	if len(r.Keys) != 2 || r.Keys[0] != "a" || r.Keys[1] != "b" {
		t.Errorf("Expected keys [a b], got %v", r.Keys)
	}
	if r.Values["a"] != "3" {
		t.Errorf("Expected a=3, got %s", r.Values["a"])
	}
}

func TestEncodeCSVFieldQuoting(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain", "Rockets", "Rockets"},
		{"leading space kept bare", " padded", " padded"},
		{"comma", "a,b", `"a,b"`},
		{"quote", `say "hi"`, `"say ""hi"""`},
		{"newline kept as is", "line1\nline2", "\"line1\nline2\""},
		{"carriage return", "a\rb", "\"a\rb\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeCSV([]*Record{NewRecord().Set("v", tt.value)})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			want := "v\r\n" + tt.want + "\r\n"
			if string(got) != want {
				t.Errorf("Expected %q, got %q", want, string(got))
			}
		})
	}
}
