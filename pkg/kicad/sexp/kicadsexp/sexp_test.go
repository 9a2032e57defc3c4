package kicadsexp

import (
	"testing"
)

func TestParseNestedLists(t *testing.T) {
	exprs, err := ParseString(`(kicad_sch (version 20231120) (symbol (lib_id "Device:R") (at 100 50.8 90)))`)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if len(exprs) != 1 {
		t.Fatalf("Expected 1 top-level expression, got %d", len(exprs))
	}

	root, ok := exprs[0].(*List)
	if !ok {
		t.Fatalf("Expected *List root, got %T", exprs[0])
	}
	if root.Name() != "kicad_sch" {
		t.Errorf("Expected root name 'kicad_sch', got '%s'", root.Name())
	}
	if root.Len() != 3 {
		t.Errorf("Expected 3 root elements, got %d", root.Len())
	}

	sym := root.Get(2).(*List)
	libID := sym.Get(1).(*List)
	if q, ok := libID.Get(1).(Quoted); !ok || string(q) != "Device:R" {
		t.Errorf("Expected quoted lib_id 'Device:R', got %#v", libID.Get(1))
	}
	at := sym.Get(2).(*List)
	if s, ok := at.Get(2).(Symbol); !ok || string(s) != "50.8" {
		t.Errorf("Expected symbol '50.8', got %#v", at.Get(2))
	}
}

func TestParseQuotedStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `(title "Power Board")`, "Power Board"},
		{"escaped quote", `(title "say \"hi\"")`, `say "hi"`},
		{"escaped backslash", `(title "a\\b")`, `a\b`},
		{"newline escape", `(title "line1\nline2")`, "line1\nline2"},
		{"parens inside string", `(title "f(x) = (y)")`, "f(x) = (y)"},
		{"empty", `(title "")`, ""},
		{"hash reference", `(property "Reference" "#PWR01")`, "#PWR01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("Failed to parse %q: %v", tt.input, err)
			}
			list := exprs[0].(*List)
			got, ok := list.Get(list.Len() - 1).(Quoted)
			if !ok {
				t.Fatalf("Expected Quoted, got %T", list.Get(list.Len()-1))
			}
			if string(got) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, string(got))
			}
		})
	}
}

func TestParseMultilineAndEmptyLists(t *testing.T) {
	input := `(a
		()
		(b
			"multi
line"
		)
	)`
	exprs, err := ParseString(input)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	root := exprs[0].(*List)
	if root.Len() != 3 {
		t.Fatalf("Expected 3 elements, got %d", root.Len())
	}
	empty := root.Get(1).(*List)
	if empty.Len() != 0 || empty.Name() != "" {
		t.Errorf("Expected empty list, got %s", empty)
	}
	b := root.Get(2).(*List)
	if b.Line != 3 {
		t.Errorf("Expected list to start on line 3, got %d", b.Line)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed list", `(kicad_sch (version 1)`},
		{"stray close", `(a))`},
		{"unterminated string", `(title "oops)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseString(tt.input); err == nil {
				t.Errorf("Expected error for %q", tt.input)
			}
		})
	}
}

func TestListString(t *testing.T) {
	exprs, err := ParseString(`(property "Value" "10k" (at 1 2 0))`)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	want := `(property "Value" "10k" (at 1 2 0))`
	if got := exprs[0].String(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
