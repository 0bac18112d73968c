package glslin

import (
	"testing"
)

func tokenize(t *testing.T, source string) []Token {
	t.Helper()
	lexer := NewLexer(source)
	tokens, err := lexer.Tokenize()
	if err != nil {
		t.Fatalf("Lexer error: %v", err)
	}
	return tokens
}

func TestLexSimpleFragmentShader(t *testing.T) {
	source := `void main() {
    gl_FragColor = vec4(1.0);
}`
	tokens := tokenize(t, source)

	expected := []TokenKind{
		TokenVoid, TokenIdent, TokenLeftParen, TokenRightParen, TokenLeftBrace,
		TokenIdent, TokenEqual, TokenVec4, TokenLeftParen, TokenFloatLiteral,
		TokenRightParen, TokenSemicolon, TokenRightBrace, TokenEOF,
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, kind := range expected {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: expected %v, got %v (%q)", i, kind, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestLexVersionDirective(t *testing.T) {
	lexer := NewLexer("#version 450\nvoid main() {}\n")
	if _, err := lexer.Tokenize(); err != nil {
		t.Fatalf("Lexer error: %v", err)
	}
	if lexer.Version() != 450 {
		t.Errorf("expected version 450, got %d", lexer.Version())
	}
}

func TestLexFloatLiterals(t *testing.T) {
	tests := []struct {
		source string
		lexeme string
	}{
		{"1.0", "1.0"},
		{"0.5", "0.5"},
		{".5", ".5"},
		{"1.", "1."},
		{"2.5e-3", "2.5e-3"},
		{"1.0f", "1.0f"},
		{"3e4", "3e4"},
	}
	for _, tt := range tests {
		tokens := tokenize(t, tt.source)
		if tokens[0].Kind != TokenFloatLiteral {
			t.Errorf("%q: expected float literal, got %v", tt.source, tokens[0].Kind)
		}
		if tokens[0].Lexeme != tt.lexeme {
			t.Errorf("%q: expected lexeme %q, got %q", tt.source, tt.lexeme, tokens[0].Lexeme)
		}
	}
}

func TestLexIntLiterals(t *testing.T) {
	tests := []string{"0", "42", "0x1F", "7u"}
	for _, source := range tests {
		tokens := tokenize(t, source)
		if tokens[0].Kind != TokenIntLiteral {
			t.Errorf("%q: expected int literal, got %v", source, tokens[0].Kind)
		}
	}
}

func TestLexOperators(t *testing.T) {
	tokens := tokenize(t, "a += b * c >= d ? e : f++")
	expected := []TokenKind{
		TokenIdent, TokenPlusEqual, TokenIdent, TokenStar, TokenIdent,
		TokenGreaterEqual, TokenIdent, TokenQuestion, TokenIdent, TokenColon,
		TokenIdent, TokenPlusPlus, TokenEOF,
	}
	for i, kind := range expected {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: expected %v, got %v", i, kind, tokens[i].Kind)
		}
	}
}

func TestLexComments(t *testing.T) {
	source := `// line comment
float a; /* block
comment */ float b;`
	tokens := tokenize(t, source)
	var idents []string
	for _, tok := range tokens {
		if tok.Kind == TokenIdent {
			idents = append(idents, tok.Lexeme)
		}
	}
	if len(idents) != 2 || idents[0] != "a" || idents[1] != "b" {
		t.Errorf("expected idents [a b], got %v", idents)
	}
}

func TestLexDefineSubstitution(t *testing.T) {
	source := `#define PI 3.14159
float x = PI;`
	tokens := tokenize(t, source)

	found := false
	for _, tok := range tokens {
		if tok.Kind == TokenFloatLiteral && tok.Lexeme == "3.14159" {
			found = true
		}
		if tok.Kind == TokenIdent && tok.Lexeme == "PI" {
			t.Error("PI was not substituted")
		}
	}
	if !found {
		t.Error("expected substituted float literal 3.14159")
	}
}

func TestLexExternalDefines(t *testing.T) {
	lexer := NewLexerWithDefines("float x = SCALE;", map[string]string{"SCALE": "2.0"})
	tokens, err := lexer.Tokenize()
	if err != nil {
		t.Fatalf("Lexer error: %v", err)
	}
	found := false
	for _, tok := range tokens {
		if tok.Kind == TokenFloatLiteral && tok.Lexeme == "2.0" {
			found = true
		}
	}
	if !found {
		t.Error("external define was not substituted")
	}
}

func TestLexLineTracking(t *testing.T) {
	tokens := tokenize(t, "float a;\nfloat b;")
	for _, tok := range tokens {
		if tok.Kind == TokenIdent && tok.Lexeme == "b" {
			if tok.Line != 2 {
				t.Errorf("expected b on line 2, got %d", tok.Line)
			}
		}
	}
}
