package glslin

// Parse tokenizes and parses GLSL source code into an AST module.
func Parse(source string) (*Module, error) {
	lexer := NewLexer(source)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}

	parser := NewParser(tokens)
	module, err := parser.Parse()
	if err != nil {
		return nil, err
	}
	module.Version = lexer.Version()
	return module, nil
}
