package glslin

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes GLSL source code.
//
// Preprocessor handling is limited to what strict pipeline input needs:
// #version is recorded, object-like #define macros are substituted, and
// any other directive is skipped to the end of its line.
type Lexer struct {
	source  string
	pos     int
	line    int
	column  int
	start   int
	tokens  []Token
	defines map[string]string
	version int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	return NewLexerWithDefines(source, nil)
}

// NewLexerWithDefines creates a lexer with externally supplied macro
// definitions. In-source #define directives are added on top and shadow
// external ones.
func NewLexerWithDefines(source string, defines map[string]string) *Lexer {
	// Estimate ~1 token per 6 characters of source.
	estTokens := len(source) / 6
	if estTokens < 16 {
		estTokens = 16
	}
	all := make(map[string]string, len(defines))
	for name, value := range defines {
		all[name] = value
	}
	return &Lexer{
		source:  source,
		pos:     0,
		line:    1,
		column:  1,
		tokens:  make([]Token, 0, estTokens),
		defines: all,
	}
}

// Tokenize returns all tokens from the source.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, nil
}

// Version reports the #version directive value, or 0 if none was seen.
// Only valid after Tokenize.
func (l *Lexer) Version() int {
	return l.version
}

func (l *Lexer) scanToken() error {
	r := l.advance()

	switch r {
	// Single-character tokens
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case ',':
		l.addToken(TokenComma)
	case '.':
		if isDigit(l.peek()) {
			l.number()
		} else {
			l.addToken(TokenDot)
		}
	case ':':
		l.addToken(TokenColon)
	case ';':
		l.addToken(TokenSemicolon)
	case '?':
		l.addToken(TokenQuestion)
	case '~':
		l.addToken(TokenTilde)
	case '#':
		l.directive()
	case '%':
		if l.match('=') {
			l.addToken(TokenPercentEqual)
		} else {
			l.addToken(TokenPercent)
		}
	case '^':
		if l.match('=') {
			l.addToken(TokenCaretEqual)
		} else {
			l.addToken(TokenCaret)
		}

	// Operators that could be one or two characters
	case '+':
		if l.match('+') {
			l.addToken(TokenPlusPlus)
		} else if l.match('=') {
			l.addToken(TokenPlusEqual)
		} else {
			l.addToken(TokenPlus)
		}
	case '-':
		if l.match('-') {
			l.addToken(TokenMinusMinus)
		} else if l.match('=') {
			l.addToken(TokenMinusEqual)
		} else {
			l.addToken(TokenMinus)
		}
	case '*':
		if l.match('=') {
			l.addToken(TokenStarEqual)
		} else {
			l.addToken(TokenStar)
		}
	case '/':
		if l.match('/') {
			// Line comment
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		} else if l.match('*') {
			// Block comment
			l.blockComment()
		} else if l.match('=') {
			l.addToken(TokenSlashEqual)
		} else {
			l.addToken(TokenSlash)
		}
	case '=':
		if l.match('=') {
			l.addToken(TokenEqualEqual)
		} else {
			l.addToken(TokenEqual)
		}
	case '!':
		if l.match('=') {
			l.addToken(TokenBangEqual)
		} else {
			l.addToken(TokenBang)
		}
	case '<':
		if l.match('<') {
			if l.match('=') {
				l.addToken(TokenLessLessEqual)
			} else {
				l.addToken(TokenLessLess)
			}
		} else if l.match('=') {
			l.addToken(TokenLessEqual)
		} else {
			l.addToken(TokenLess)
		}
	case '>':
		if l.match('>') {
			if l.match('=') {
				l.addToken(TokenGreaterGreaterEqual)
			} else {
				l.addToken(TokenGreaterGreater)
			}
		} else if l.match('=') {
			l.addToken(TokenGreaterEqual)
		} else {
			l.addToken(TokenGreater)
		}
	case '&':
		if l.match('&') {
			l.addToken(TokenAmpAmp)
		} else if l.match('=') {
			l.addToken(TokenAmpEqual)
		} else {
			l.addToken(TokenAmpersand)
		}
	case '|':
		if l.match('|') {
			l.addToken(TokenPipePipe)
		} else if l.match('=') {
			l.addToken(TokenPipeEqual)
		} else {
			l.addToken(TokenPipe)
		}

	// Whitespace
	case ' ', '\r', '\t':
		// Ignore whitespace
	case '\n':
		l.line++
		l.column = 1

	default:
		if isDigit(r) {
			l.number()
		} else if isAlpha(r) || r == '_' {
			l.identifier()
		} else {
			l.addToken(TokenError)
		}
	}

	return nil
}

// directive consumes a preprocessor line starting after '#'.
func (l *Lexer) directive() {
	lineStart := l.pos
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}
	fields := strings.Fields(l.source[lineStart:l.pos])
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "version":
		if len(fields) >= 2 {
			l.version, _ = strconv.Atoi(fields[1])
		}
	case "define":
		if len(fields) >= 2 {
			name := fields[1]
			// Function-like macros are not supported; skip them.
			if strings.ContainsRune(name, '(') {
				return
			}
			value := ""
			if len(fields) >= 3 {
				value = strings.Join(fields[2:], " ")
			}
			l.defines[name] = value
		}
	}
	// #extension, #pragma, #ifdef chains etc. are skipped wholesale.
}

func (l *Lexer) blockComment() {
	depth := 1
	for depth > 0 && !l.isAtEnd() {
		if l.peek() == '/' && l.peekNext() == '*' {
			l.advance()
			l.advance()
			depth++
		} else if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			depth--
		} else {
			if l.peek() == '\n' {
				l.line++
				l.column = 0
			}
			l.advance()
		}
	}
}

func (l *Lexer) number() {
	// Check for hex prefix
	if l.source[l.start] == '0' && l.pos < len(l.source) {
		next := l.peek()
		if next == 'x' || next == 'X' {
			l.advance()
			for isHexDigit(l.peek()) {
				l.advance()
			}
			if l.peek() == 'u' || l.peek() == 'U' {
				l.advance()
			}
			l.addToken(TokenIntLiteral)
			return
		}
	}

	for isDigit(l.peek()) {
		l.advance()
	}

	// Fractional part. "1." is a valid GLSL float literal; "1.x" would be
	// member access on an int, which GLSL rejects later anyway.
	nextAfterDot := l.peekNext()
	if l.peek() == '.' && !isAlpha(nextAfterDot) && nextAfterDot != '_' {
		l.advance() // consume '.'
		for isDigit(l.peek()) {
			l.advance()
		}
		l.floatTail()
		return
	}

	// Leading-dot floats (".5") arrive here with start on the dot.
	if l.source[l.start] == '.' {
		l.floatTail()
		return
	}

	// Exponent without decimal point
	if l.peek() == 'e' || l.peek() == 'E' {
		l.floatTail()
		return
	}

	// Integer suffix
	if l.peek() == 'u' || l.peek() == 'U' {
		l.advance()
	}

	l.addToken(TokenIntLiteral)
}

// floatTail consumes an optional exponent and suffix, then emits a float token.
func (l *Lexer) floatTail() {
	if l.peek() == 'e' || l.peek() == 'E' {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'f' || l.peek() == 'F' {
		l.advance()
	}
	l.addToken(TokenFloatLiteral)
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := l.source[l.start:l.pos]

	if value, ok := l.defines[text]; ok {
		l.substitute(text, value)
		return
	}

	kind := l.lookupKeyword(text)
	l.addToken(kind)
}

// substitute lexes a macro replacement value in place of the macro name.
// One level only; recursive macros degrade to the raw identifier.
func (l *Lexer) substitute(name, value string) {
	if value == "" {
		return
	}
	sub := NewLexer(value)
	delete(sub.defines, name)
	toks, err := sub.Tokenize()
	if err != nil {
		l.addToken(TokenIdent)
		return
	}
	for _, tok := range toks {
		if tok.Kind == TokenEOF {
			break
		}
		tok.Line = l.line
		tok.Column = l.column - (l.pos - l.start)
		l.tokens = append(l.tokens, tok)
	}
}

var keywords = map[string]TokenKind{
	"break":     TokenBreak,
	"case":      TokenCase,
	"const":     TokenConst,
	"continue":  TokenContinue,
	"default":   TokenDefault,
	"discard":   TokenDiscard,
	"do":        TokenDo,
	"else":      TokenElse,
	"false":     TokenFalse,
	"flat":      TokenFlat,
	"for":       TokenFor,
	"if":        TokenIf,
	"in":        TokenIn,
	"inout":     TokenInOut,
	"layout":    TokenLayout,
	"out":       TokenOut,
	"precision": TokenPrecision,
	"return":    TokenReturn,
	"struct":    TokenStruct,
	"switch":    TokenSwitch,
	"true":      TokenTrue,
	"uniform":   TokenUniform,
	"varying":   TokenVarying,
	"while":     TokenWhile,

	// Precision qualifiers
	"highp":   TokenHighp,
	"mediump": TokenMediump,
	"lowp":    TokenLowp,

	// Types
	"void":           TokenVoid,
	"bool":           TokenBool,
	"int":            TokenInt,
	"uint":           TokenUint,
	"float":          TokenFloat,
	"vec2":           TokenVec2,
	"vec3":           TokenVec3,
	"vec4":           TokenVec4,
	"ivec2":          TokenIVec2,
	"ivec3":          TokenIVec3,
	"ivec4":          TokenIVec4,
	"uvec2":          TokenUVec2,
	"uvec3":          TokenUVec3,
	"uvec4":          TokenUVec4,
	"bvec2":          TokenBVec2,
	"bvec3":          TokenBVec3,
	"bvec4":          TokenBVec4,
	"mat2":           TokenMat2,
	"mat3":           TokenMat3,
	"mat4":           TokenMat4,
	"mat2x2":         TokenMat2x2,
	"mat2x3":         TokenMat2x3,
	"mat2x4":         TokenMat2x4,
	"mat3x2":         TokenMat3x2,
	"mat3x3":         TokenMat3x3,
	"mat3x4":         TokenMat3x4,
	"mat4x2":         TokenMat4x2,
	"mat4x3":         TokenMat4x3,
	"mat4x4":         TokenMat4x4,
	"sampler2D":      TokenSampler2D,
	"sampler2DArray": TokenSampler2DArray,
	"sampler3D":      TokenSampler3D,
	"samplerCube":    TokenSamplerCube,
}

func (l *Lexer) lookupKeyword(text string) TokenKind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	if text == "true" || text == "false" {
		return TokenBoolLiteral
	}
	return TokenIdent
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Line:   l.line,
		Column: l.column - (l.pos - l.start),
	})
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	l.column++
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() {
		return false
	}
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if r != expected {
		return false
	}
	l.pos += size
	l.column++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

