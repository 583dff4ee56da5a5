package lexer

import (
	"testing"
)

func TestNextToken_BasicTokens(t *testing.T) {
	input := `. | : := ^ ; ( ) [ ] #(`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenPeriod, "."},
		{TokenPipe, "|"},
		{TokenColon, ":"},
		{TokenAssign, ":="},
		{TokenCaret, "^"},
		{TokenSemicolon, ";"},
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBracket, "["},
		{TokenRBracket, "]"},
		{TokenHashLParen, "#("},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken_BinarySelectors(t *testing.T) {
	input := `+ - * / % < > <= >= = ~= == ,`

	tests := []string{"+", "-", "*", "/", "%", "<", ">", "<=", ">=", "=", "~=", "==", ","}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != TokenBinarySelector {
			t.Fatalf("tests[%d] - expected BinarySelector, got=%q (%q)", i, tok.Type, tok.Literal)
		}
		if tok.Literal != want {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, want, tok.Literal)
		}
	}
}

func TestNextToken_Numbers(t *testing.T) {
	input := `3 4 7 3.14 100`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenInteger, "3"},
		{TokenInteger, "4"},
		{TokenInteger, "7"},
		{TokenFloat, "3.14"},
		{TokenInteger, "100"},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - got=%q %q, want=%q %q", i, tok.Type, tok.Literal, tt.expectedType, tt.expectedLiteral)
		}
	}
}

func TestNextToken_Identifiers(t *testing.T) {
	input := `x dx self super true false nil Point derive`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenIdentifier, "x"},
		{TokenIdentifier, "dx"},
		{TokenSelf, "self"},
		{TokenSuper, "super"},
		{TokenTrue, "true"},
		{TokenFalse, "false"},
		{TokenNil, "nil"},
		{TokenIdentifier, "Point"},
		{TokenIdentifier, "derive"},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - got=%q %q, want=%q %q", i, tok.Type, tok.Literal, tt.expectedType, tt.expectedLiteral)
		}
	}
}

func TestNextToken_KeywordParts(t *testing.T) {
	input := `moveBy: dx and: dy`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenKeyword, "moveBy:"},
		{TokenIdentifier, "dx"},
		{TokenKeyword, "and:"},
		{TokenIdentifier, "dy"},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - got=%q %q, want=%q %q", i, tok.Type, tok.Literal, tt.expectedType, tt.expectedLiteral)
		}
	}
}

func TestNextToken_StringLiteral(t *testing.T) {
	l := New(`"A" "hello ""world"""`)

	tok := l.NextToken()
	if tok.Type != TokenString || tok.Literal != "A" {
		t.Fatalf("got=%q %q", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != TokenString || tok.Literal != `hello "world"` {
		t.Fatalf("got=%q %q", tok.Type, tok.Literal)
	}
}

func TestNextToken_Symbols(t *testing.T) {
	input := `#x #(x y) #moveBy:and: #+`

	l := New(input)

	tok := l.NextToken()
	if tok.Type != TokenSymbol || tok.Literal != "x" {
		t.Fatalf("got=%q %q", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != TokenHashLParen {
		t.Fatalf("got=%q %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken() // x
	tok = l.NextToken() // y
	tok = l.NextToken() // )
	if tok.Type != TokenRBracket && tok.Type != TokenRParen {
		t.Fatalf("expected array close, got=%q", tok.Type)
	}

	tok = l.NextToken()
	if tok.Type != TokenSymbol || tok.Literal != "moveBy:and:" {
		t.Fatalf("got=%q %q", tok.Type, tok.Literal)
	}

	tok = l.NextToken()
	if tok.Type != TokenSymbol || tok.Literal != "+" {
		t.Fatalf("got=%q %q", tok.Type, tok.Literal)
	}
}

func TestNextToken_NegativeNumber(t *testing.T) {
	// '-' followed by a digit with no preceding operand context still
	// lexes as a BinarySelector here; the parser (not the lexer) decides
	// whether a leading '-' is unary negation based on grammatical
	// position, since the lexer has no notion of "preceding operand".
	l := New(`-4`)
	tok := l.NextToken()
	if tok.Type != TokenBinarySelector || tok.Literal != "-" {
		t.Fatalf("got=%q %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != TokenInteger || tok.Literal != "4" {
		t.Fatalf("got=%q %q", tok.Type, tok.Literal)
	}
}

func TestTokenize_FullExpression(t *testing.T) {
	l := New(`3 + 4`)
	toks, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 4 { // 3, +, 4, EOF
		t.Fatalf("expected 4 tokens, got %d", len(toks))
	}
}
