package ruledsl

import "testing"

func TestTokenizeIdentifiersAndSymbols(t *testing.T) {
	toks, err := tokenize("obligation(notify person[0], [], null).")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	want := []struct {
		kind tokenKind
		text string
	}{
		{tokIdent, "obligation"},
		{tokSym, "("},
		{tokIdent, "notify"},
		{tokIdent, "person"},
		{tokSym, "["},
		{tokInt, "0"},
		{tokSym, "]"},
		{tokSym, ","},
		{tokSym, "["},
		{tokSym, "]"},
		{tokSym, ","},
		{tokIdent, "null"},
		{tokSym, ")"},
		{tokSym, "."},
		{tokEOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].kind != w.kind || toks[i].text != w.text {
			t.Errorf("token %d = %+v, want {%v %q}", i, toks[i], w.kind, w.text)
		}
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := tokenize(`"line\nbreak"`)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	if toks[0].kind != tokString || toks[0].text != "line\nbreak" {
		t.Errorf("token = %+v", toks[0])
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	if _, err := tokenize(`"unterminated`); err == nil {
		t.Error("expected an error for an unterminated string literal")
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	if _, err := tokenize("@"); err == nil {
		t.Error("expected an error for an unrecognized character")
	}
}

func TestTokenizeNegativeAndFloatNumbers(t *testing.T) {
	toks, err := tokenize("-5 3.14 2e3")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	if toks[0].kind != tokInt || toks[0].ival != -5 {
		t.Errorf("token 0 = %+v, want int -5", toks[0])
	}
	if toks[1].kind != tokFloat || toks[1].fval != 3.14 {
		t.Errorf("token 1 = %+v, want float 3.14", toks[1])
	}
	if toks[2].kind != tokFloat || toks[2].fval != 2000 {
		t.Errorf("token 2 = %+v, want float 2000", toks[2])
	}
}

func TestTokenizeArrowAndNotEqual(t *testing.T) {
	toks, err := tokenize("a -> b != c")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	if toks[1].kind != tokSym || toks[1].text != "->" {
		t.Errorf("token 1 = %+v, want ->", toks[1])
	}
	if toks[3].kind != tokSym || toks[3].text != "!=" {
		t.Errorf("token 3 = %+v, want !=", toks[3])
	}
}

func TestTokenizeEmptyInputYieldsEOF(t *testing.T) {
	toks, err := tokenize("   ")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	if len(toks) != 1 || toks[0].kind != tokEOF {
		t.Errorf("tokens = %+v, want a single tokEOF", toks)
	}
}
