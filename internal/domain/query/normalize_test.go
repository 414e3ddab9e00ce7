package query

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Молоко   3.2%! ", "молоко 32"},
		{"Ёжик в тумане", "ежик в тумане"},
		{"Кока-Кола 0.5л", "кокакола 05л"},
		{"Hello,\tWorld\n", "hello world"},
		{"snake_case stays", "snake_case stays"},
		{"!!!", ""},
		{"", ""},
		{"Café  Crème", "café crème"},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"  Молоко   3.2%! ",
		"ЁЛКА",
		"Вода «Святой источник» 1,5 л",
		"İstanbul",
		"a - b - c",
		" leading nbsp",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalize_DistinctFromPunctuationFreeInput(t *testing.T) {
	if Normalize("  Молоко   3.2%! ") != Normalize("молоко 32") {
		t.Fatal("expected equal after stripping punctuation")
	}
	if Normalize("молоко 3 2") == Normalize("молоко 32") {
		t.Fatal("whitespace between digits must be preserved")
	}
}

func TestNoSpace(t *testing.T) {
	if got := NoSpace("кока кола 05л"); got != "кокакола05л" {
		t.Errorf("NoSpace = %q", got)
	}
}

func TestIsASCII(t *testing.T) {
	if !IsASCII("molok 10") {
		t.Error("expected ASCII")
	}
	if IsASCII("molok 10л") {
		t.Error("expected non-ASCII")
	}
	if !IsASCII("") {
		t.Error("empty string is ASCII")
	}
}
