package glslin

import (
	"fmt"
	"strconv"
)

// Parser parses GLSL tokens into an AST.
type Parser struct {
	tokens  []Token
	current int
	errors  []ParseError
	module  *Module
}

// ParseError represents a parsing error.
type ParseError struct {
	Message string
	Token   Token
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Token.Line, e.Token.Column, e.Message)
}

// NewParser creates a new parser for the given tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
	}
}

// Parse parses the tokens and returns a Module AST.
func (p *Parser) Parse() (*Module, error) {
	p.module = &Module{}

	for !p.isAtEnd() {
		decls, err := p.declaration()
		if err != nil {
			p.errors = append(p.errors, *err)
			p.synchronize()
			continue
		}
		for _, decl := range decls {
			switch d := decl.(type) {
			case *FunctionDecl:
				p.module.Functions = append(p.module.Functions, d)
			case *StructDecl:
				p.module.Structs = append(p.module.Structs, d)
			case *VarDecl:
				p.module.GlobalVars = append(p.module.GlobalVars, d)
			case *BlockDecl:
				p.module.UniformBlocks = append(p.module.UniformBlocks, d)
			}
		}
	}

	if len(p.errors) > 0 {
		return p.module, fmt.Errorf("parsing failed with %d error(s): %w", len(p.errors), p.errors[0])
	}

	return p.module, nil
}

// declaration parses a top-level declaration. GLSL declarations may
// introduce several names at once (float a, b;), so a slice is returned.
func (p *Parser) declaration() ([]Decl, *ParseError) {
	switch {
	case p.check(TokenPrecision):
		// precision highp float; carries no information for strict input.
		p.skipToSemicolon()
		return nil, nil
	case p.check(TokenStruct):
		decl, err := p.structDecl()
		if err != nil {
			return nil, err
		}
		return []Decl{decl}, nil
	case p.check(TokenEOF):
		return nil, nil
	default:
		return p.globalDecl()
	}
}

// globalDecl parses a qualified global declaration: a uniform block, a
// global variable (possibly a list), a compute layout declaration, or a
// function definition.
func (p *Parser) globalDecl() ([]Decl, *ParseError) {
	start := p.peek()

	var layout *LayoutQualifier
	if p.check(TokenLayout) {
		l, err := p.layoutQualifier()
		if err != nil {
			return nil, err
		}
		layout = l
	}

	qualifier := QualifierNone
	flat := false
	varying := false
	for {
		switch {
		case p.match(TokenConst):
			qualifier = QualifierConst
			continue
		case p.match(TokenUniform):
			qualifier = QualifierUniform
			continue
		case p.match(TokenIn):
			qualifier = QualifierIn
			continue
		case p.match(TokenOut):
			qualifier = QualifierOut
			continue
		case p.match(TokenVarying):
			// Direction depends on the stage, which the lowerer knows.
			qualifier = QualifierIn
			varying = true
			continue
		case p.match(TokenFlat):
			flat = true
			continue
		case p.match(TokenHighp), p.match(TokenMediump), p.match(TokenLowp):
			// Precision qualifiers carry no semantic weight for us.
			continue
		}
		break
	}

	// layout(local_size_x = N) in; declares the compute workgroup size.
	if qualifier == QualifierIn && p.check(TokenSemicolon) {
		p.advance()
		if layout != nil {
			for i := 0; i < 3; i++ {
				if layout.HasSize[i] {
					p.module.WorkgroupSize[i] = layout.LocalSize[i]
				} else if p.module.WorkgroupSize[i] == 0 {
					p.module.WorkgroupSize[i] = 1
				}
			}
		}
		return nil, nil
	}

	// Uniform block: uniform Name { members } [instance];
	if qualifier == QualifierUniform && p.check(TokenIdent) && p.peekNext().Kind == TokenLeftBrace {
		block, err := p.blockDecl(layout, start)
		if err != nil {
			return nil, err
		}
		return []Decl{block}, nil
	}

	declType, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected declaration name", Token: p.peek()}
	}
	name := p.advance()

	// Function definition: type name(params) { ... }
	if p.check(TokenLeftParen) {
		if qualifier != QualifierNone || layout != nil {
			return nil, &ParseError{Message: "qualifiers are not allowed on function definitions", Token: name}
		}
		fn, ferr := p.functionDecl(declType, name)
		if ferr != nil {
			return nil, ferr
		}
		return []Decl{fn}, nil
	}

	// Variable declarator list.
	var decls []Decl
	for {
		varDecl, verr := p.varDeclarator(declType, name, qualifier, layout, flat, start)
		if verr != nil {
			return nil, verr
		}
		varDecl.Varying = varying
		decls = append(decls, varDecl)

		if !p.match(TokenComma) {
			break
		}
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected declaration name", Token: p.peek()}
		}
		name = p.advance()
	}

	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}
	return decls, nil
}

// varDeclarator parses one declarator: name, optional array size,
// optional initializer.
func (p *Parser) varDeclarator(declType Type, name Token, qualifier StorageQualifier, layout *LayoutQualifier, flat bool, start Token) (*VarDecl, *ParseError) {
	var arraySize Expr
	if p.match(TokenLeftBracket) {
		if !p.check(TokenRightBracket) {
			size, err := p.expression()
			if err != nil {
				return nil, err
			}
			arraySize = size
		}
		if err := p.expectErr(TokenRightBracket); err != nil {
			return nil, err
		}
	}

	var init Expr
	if p.match(TokenEqual) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		init = e
	}

	return &VarDecl{
		Name:      name.Lexeme,
		Type:      declType,
		ArraySize: arraySize,
		Init:      init,
		Qualifier: qualifier,
		Layout:    layout,
		Flat:      flat,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// layoutQualifier parses layout(item, item, ...).
func (p *Parser) layoutQualifier() (*LayoutQualifier, *ParseError) {
	start := p.advance() // consume 'layout'
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}

	layout := &LayoutQualifier{
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}

	for !p.check(TokenRightParen) && !p.isAtEnd() {
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected layout identifier", Token: p.peek()}
		}
		item := p.advance()

		var value uint32
		hasValue := false
		if p.match(TokenEqual) {
			if !p.check(TokenIntLiteral) {
				return nil, &ParseError{Message: "expected integer in layout qualifier", Token: p.peek()}
			}
			lit := p.advance()
			n, err := strconv.ParseUint(lit.Lexeme, 0, 32)
			if err != nil {
				return nil, &ParseError{Message: "invalid layout value: " + lit.Lexeme, Token: lit}
			}
			value = uint32(n)
			hasValue = true
		}

		switch item.Lexeme {
		case "set":
			layout.Set, layout.HasSet = value, hasValue
		case "binding":
			layout.Binding, layout.HasBinding = value, hasValue
		case "location":
			layout.Location, layout.HasLocation = value, hasValue
		case "local_size_x":
			layout.LocalSize[0], layout.HasSize[0] = value, hasValue
		case "local_size_y":
			layout.LocalSize[1], layout.HasSize[1] = value, hasValue
		case "local_size_z":
			layout.LocalSize[2], layout.HasSize[2] = value, hasValue
		default:
			// std140, row_major etc. change nothing we model.
		}

		if !p.match(TokenComma) {
			break
		}
	}

	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}
	return layout, nil
}

// blockDecl parses a uniform block declaration body.
func (p *Parser) blockDecl(layout *LayoutQualifier, start Token) (*BlockDecl, *ParseError) {
	name := p.advance() // block type name
	p.advance()         // consume '{'

	members := make([]*StructMember, 0, 4)
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		member, err := p.memberDecl()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}

	instance := ""
	if p.check(TokenIdent) {
		instance = p.advance().Lexeme
	}

	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	return &BlockDecl{
		Layout:       layout,
		Name:         name.Lexeme,
		InstanceName: instance,
		Members:      members,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// structDecl parses a struct declaration.
func (p *Parser) structDecl() (*StructDecl, *ParseError) {
	start := p.advance() // consume 'struct'

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected struct name", Token: p.peek()}
	}
	name := p.advance()

	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	members := make([]*StructMember, 0, 4)
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		member, err := p.memberDecl()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)

	return &StructDecl{
		Name:    name.Lexeme,
		Members: members,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// memberDecl parses one struct or block member: type name [size];
func (p *Parser) memberDecl() (*StructMember, *ParseError) {
	// Precision qualifiers may prefix member types.
	for p.match(TokenHighp) || p.match(TokenMediump) || p.match(TokenLowp) {
	}

	memberType, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected member name", Token: p.peek()}
	}
	name := p.advance()

	var arraySize Expr
	if p.match(TokenLeftBracket) {
		if !p.check(TokenRightBracket) {
			size, serr := p.expression()
			if serr != nil {
				return nil, serr
			}
			arraySize = size
		}
		if err := p.expectErr(TokenRightBracket); err != nil {
			return nil, err
		}
	}

	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	return &StructMember{
		Name:      name.Lexeme,
		Type:      memberType,
		ArraySize: arraySize,
		Span: Span{
			Start: Position{Line: name.Line, Column: name.Column},
		},
	}, nil
}

// functionDecl parses a function definition after its return type and
// name have been consumed.
func (p *Parser) functionDecl(returnType Type, name Token) (*FunctionDecl, *ParseError) {
	p.advance() // consume '('

	params := make([]*Parameter, 0, 4)
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		// void parameter list: main(void)
		if p.check(TokenVoid) && p.peekNext().Kind == TokenRightParen {
			p.advance()
			break
		}
		param, err := p.parameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)

		if !p.match(TokenComma) {
			break
		}
	}

	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return &FunctionDecl{
		Name:       name.Lexeme,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		Span: Span{
			Start: Position{Line: name.Line, Column: name.Column},
		},
	}, nil
}

// parameter parses a function parameter.
func (p *Parser) parameter() (*Parameter, *ParseError) {
	// Parameters are by-value; out/inout would need pointer semantics.
	if p.check(TokenOut) || p.check(TokenInOut) {
		return nil, &ParseError{Message: "out/inout parameters are not supported", Token: p.peek()}
	}
	p.match(TokenIn)
	for p.match(TokenHighp) || p.match(TokenMediump) || p.match(TokenLowp) {
	}

	paramType, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected parameter name", Token: p.peek()}
	}
	name := p.advance()

	return &Parameter{
		Name: name.Lexeme,
		Type: paramType,
		Span: Span{
			Start: Position{Line: name.Line, Column: name.Column},
		},
	}, nil
}

// typeSpec parses a type specification.
func (p *Parser) typeSpec() (Type, *ParseError) {
	tok := p.peek()

	if p.isTypeKeyword(tok.Kind) || p.check(TokenIdent) || p.check(TokenVoid) {
		name := p.advance()
		return &NamedType{
			Name: name.Lexeme,
			Span: Span{
				Start: Position{Line: name.Line, Column: name.Column},
			},
		}, nil
	}

	return nil, &ParseError{Message: "expected type", Token: tok}
}

// declGroup carries several declarators from one local declaration
// statement; block bodies flatten it.
type declGroup struct {
	decls []*VarDecl
	span  Span
}

func (d *declGroup) Pos() Span { return d.span }
func (d *declGroup) stmtNode() {}

// block parses a block statement.
func (p *Parser) block() (*BlockStmt, *ParseError) {
	start := p.peek()
	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	stmts := make([]Stmt, 0, 4)
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		switch s := stmt.(type) {
		case nil:
		case *declGroup:
			for _, d := range s.decls {
				stmts = append(stmts, d)
			}
		default:
			stmts = append(stmts, stmt)
		}
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}

	return &BlockStmt{
		Statements: stmts,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// statement parses a statement.
func (p *Parser) statement() (Stmt, *ParseError) {
	switch {
	case p.check(TokenReturn):
		return p.returnStmt()
	case p.check(TokenIf):
		return p.ifStmt()
	case p.check(TokenFor):
		return p.forStmt()
	case p.check(TokenWhile):
		return p.whileStmt()
	case p.check(TokenBreak):
		return p.breakStmt()
	case p.check(TokenContinue):
		return p.continueStmt()
	case p.check(TokenDiscard):
		return p.discardStmt()
	case p.check(TokenSwitch):
		return p.switchStmt()
	case p.check(TokenLeftBrace):
		return p.block()
	case p.check(TokenSemicolon):
		p.advance()
		return nil, nil
	case p.isDeclStart():
		return p.localDecl()
	case p.check(TokenPlusPlus) || p.check(TokenMinusMinus):
		return p.incDecStmt()
	default:
		return p.exprOrAssignStmt()
	}
}

// isDeclStart reports whether the upcoming tokens begin a local variable
// declaration: a qualifier, a type keyword, or a user type name followed
// by an identifier.
func (p *Parser) isDeclStart() bool {
	kind := p.peek().Kind
	if kind == TokenConst || kind == TokenHighp || kind == TokenMediump || kind == TokenLowp {
		return true
	}
	if p.isTypeKeyword(kind) {
		// vec3 v = ...; versus constructor expression vec3(...)
		return p.peekNext().Kind == TokenIdent
	}
	if kind == TokenIdent {
		return p.peekNext().Kind == TokenIdent
	}
	return false
}

// localDecl parses a local variable declaration statement.
func (p *Parser) localDecl() (Stmt, *ParseError) {
	start := p.peek()

	qualifier := QualifierNone
	for {
		if p.match(TokenConst) {
			qualifier = QualifierConst
			continue
		}
		if p.match(TokenHighp) || p.match(TokenMediump) || p.match(TokenLowp) {
			continue
		}
		break
	}

	declType, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	group := &declGroup{
		span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}
	for {
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected variable name", Token: p.peek()}
		}
		name := p.advance()

		decl, derr := p.varDeclarator(declType, name, qualifier, nil, false, start)
		if derr != nil {
			return nil, derr
		}
		group.decls = append(group.decls, decl)

		if !p.match(TokenComma) {
			break
		}
	}

	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	if len(group.decls) == 1 {
		return group.decls[0], nil
	}
	return group, nil
}

// returnStmt parses a return statement.
func (p *Parser) returnStmt() (*ReturnStmt, *ParseError) {
	start := p.advance() // consume 'return'

	var value Expr
	if !p.check(TokenSemicolon) && !p.check(TokenRightBrace) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = e
	}

	p.match(TokenSemicolon)

	return &ReturnStmt{
		Value: value,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// ifStmt parses an if statement.
func (p *Parser) ifStmt() (*IfStmt, *ParseError) {
	start := p.advance() // consume 'if'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.statementAsBlock()
	if err != nil {
		return nil, err
	}

	var elseStmt Stmt
	if p.match(TokenElse) {
		if p.check(TokenIf) {
			elseStmt, err = p.ifStmt()
		} else {
			elseStmt, err = p.statementAsBlock()
		}
		if err != nil {
			return nil, err
		}
	}

	return &IfStmt{
		Condition: cond,
		Body:      body,
		Else:      elseStmt,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// statementAsBlock parses a statement and wraps a non-block body in a
// block, so braceless if/else/loop bodies lower uniformly.
func (p *Parser) statementAsBlock() (*BlockStmt, *ParseError) {
	if p.check(TokenLeftBrace) {
		return p.block()
	}
	start := p.peek()
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	block := &BlockStmt{
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}
	switch s := stmt.(type) {
	case nil:
	case *declGroup:
		for _, d := range s.decls {
			block.Statements = append(block.Statements, d)
		}
	default:
		block.Statements = append(block.Statements, stmt)
	}
	return block, nil
}

// forStmt parses a for statement.
func (p *Parser) forStmt() (*ForStmt, *ParseError) {
	start := p.advance() // consume 'for'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}

	// Init
	var init Stmt
	if !p.check(TokenSemicolon) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		if group, ok := s.(*declGroup); ok {
			if len(group.decls) != 1 {
				return nil, &ParseError{Message: "for-loop init must declare a single variable", Token: start}
			}
			s = group.decls[0]
		}
		init = s
	} else {
		p.advance()
	}

	// Condition
	var cond Expr
	if !p.check(TokenSemicolon) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		cond = e
	}
	p.match(TokenSemicolon)

	// Update
	var update Stmt
	if !p.check(TokenRightParen) {
		s, err := p.updateStmt()
		if err != nil {
			return nil, err
		}
		update = s
	}

	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.statementAsBlock()
	if err != nil {
		return nil, err
	}

	return &ForStmt{
		Init:      init,
		Condition: cond,
		Update:    update,
		Body:      body,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// updateStmt parses a for-loop update clause without a trailing
// semicolon: i++, ++i, i += 1, or a call.
func (p *Parser) updateStmt() (Stmt, *ParseError) {
	start := p.peek()

	if p.check(TokenPlusPlus) || p.check(TokenMinusMinus) {
		return p.incDecStmtNoSemi()
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.isAssignOp(p.peek().Kind) {
		op := p.advance()
		right, rerr := p.expression()
		if rerr != nil {
			return nil, rerr
		}
		return &AssignStmt{
			Left:  expr,
			Op:    op.Kind,
			Right: right,
			Span: Span{
				Start: Position{Line: start.Line, Column: start.Column},
			},
		}, nil
	}

	if p.check(TokenPlusPlus) || p.check(TokenMinusMinus) {
		op := p.advance()
		return desugarIncDec(expr, op), nil
	}

	return &ExprStmt{
		Expr: expr,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// whileStmt parses a while statement.
func (p *Parser) whileStmt() (*WhileStmt, *ParseError) {
	start := p.advance() // consume 'while'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.statementAsBlock()
	if err != nil {
		return nil, err
	}

	return &WhileStmt{
		Condition: cond,
		Body:      body,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// switchStmt parses a switch statement.
func (p *Parser) switchStmt() (*SwitchStmt, *ParseError) {
	start := p.advance() // consume 'switch'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	selector, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	var cases []*SwitchCaseClause
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		caseClause, err := p.switchCaseClause()
		if err != nil {
			return nil, err
		}
		cases = append(cases, caseClause)
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}

	return &SwitchStmt{
		Selector: selector,
		Cases:    cases,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// switchCaseClause parses one case or default clause. The body runs to
// the next case/default label or the closing brace, C-style.
func (p *Parser) switchCaseClause() (*SwitchCaseClause, *ParseError) {
	start := p.peek()
	var selectors []Expr
	isDefault := false

	if p.match(TokenDefault) {
		isDefault = true
	} else if p.match(TokenCase) {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, expr)
	} else {
		return nil, &ParseError{Message: "expected 'case' or 'default'", Token: start}
	}

	if err := p.expectErr(TokenColon); err != nil {
		return nil, err
	}

	var body []Stmt
	for !p.check(TokenCase) && !p.check(TokenDefault) && !p.check(TokenRightBrace) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		switch s := stmt.(type) {
		case nil:
		case *declGroup:
			for _, d := range s.decls {
				body = append(body, d)
			}
		default:
			body = append(body, stmt)
		}
	}

	return &SwitchCaseClause{
		Selectors: selectors,
		IsDefault: isDefault,
		Body:      body,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// breakStmt parses a break statement.
func (p *Parser) breakStmt() (*BreakStmt, *ParseError) {
	start := p.advance() // consume 'break'
	p.match(TokenSemicolon)
	return &BreakStmt{
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// continueStmt parses a continue statement.
func (p *Parser) continueStmt() (*ContinueStmt, *ParseError) {
	start := p.advance() // consume 'continue'
	p.match(TokenSemicolon)
	return &ContinueStmt{
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// discardStmt parses a discard statement.
func (p *Parser) discardStmt() (*DiscardStmt, *ParseError) {
	start := p.advance() // consume 'discard'
	p.match(TokenSemicolon)
	return &DiscardStmt{
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// incDecStmt parses a prefix increment/decrement statement.
func (p *Parser) incDecStmt() (Stmt, *ParseError) {
	stmt, err := p.incDecStmtNoSemi()
	if err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)
	return stmt, nil
}

func (p *Parser) incDecStmtNoSemi() (Stmt, *ParseError) {
	op := p.advance() // consume ++ or --
	operand, err := p.postfix()
	if err != nil {
		return nil, err
	}
	return desugarIncDec(operand, op), nil
}

// desugarIncDec turns i++ / ++i into i += 1.
func desugarIncDec(target Expr, op Token) *AssignStmt {
	assignOp := TokenPlusEqual
	if op.Kind == TokenMinusMinus {
		assignOp = TokenMinusEqual
	}
	span := Span{Start: Position{Line: op.Line, Column: op.Column}}
	return &AssignStmt{
		Left: target,
		Op:   assignOp,
		Right: &Literal{
			Kind:  TokenIntLiteral,
			Value: "1",
			Span:  span,
		},
		Span: span,
	}
}

// exprOrAssignStmt parses an expression statement or assignment.
func (p *Parser) exprOrAssignStmt() (Stmt, *ParseError) {
	start := p.peek()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.isAssignOp(p.peek().Kind) {
		op := p.advance()
		right, err := p.expression()
		if err != nil {
			return nil, err
		}
		p.match(TokenSemicolon)
		return &AssignStmt{
			Left:  expr,
			Op:    op.Kind,
			Right: right,
			Span: Span{
				Start: Position{Line: start.Line, Column: start.Column},
			},
		}, nil
	}

	// Postfix increment/decrement statement: i++;
	if p.check(TokenPlusPlus) || p.check(TokenMinusMinus) {
		op := p.advance()
		p.match(TokenSemicolon)
		return desugarIncDec(expr, op), nil
	}

	p.match(TokenSemicolon)
	return &ExprStmt{
		Expr: expr,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// expression parses an expression.
func (p *Parser) expression() (Expr, *ParseError) {
	return p.ternary()
}

// ternary parses conditional expressions (cond ? a : b), right associative.
func (p *Parser) ternary() (Expr, *ParseError) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenQuestion) {
		return cond, nil
	}
	start := p.advance() // consume '?'

	accept, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenColon); err != nil {
		return nil, err
	}
	reject, err := p.ternary()
	if err != nil {
		return nil, err
	}

	return &TernaryExpr{
		Condition: cond,
		Accept:    accept,
		Reject:    reject,
		Span: Span{
			Start: Position{Line: start.Line, Column: start.Column},
		},
	}, nil
}

// logicalOr parses || expressions.
func (p *Parser) logicalOr() (Expr, *ParseError) {
	left, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}

	for p.match(TokenPipePipe) {
		right, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    TokenPipePipe,
			Right: right,
		}
	}

	return left, nil
}

// logicalAnd parses && expressions.
func (p *Parser) logicalAnd() (Expr, *ParseError) {
	left, err := p.bitwiseOr()
	if err != nil {
		return nil, err
	}

	for p.match(TokenAmpAmp) {
		right, err := p.bitwiseOr()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    TokenAmpAmp,
			Right: right,
		}
	}

	return left, nil
}

// bitwiseOr parses | expressions.
func (p *Parser) bitwiseOr() (Expr, *ParseError) {
	left, err := p.bitwiseXor()
	if err != nil {
		return nil, err
	}

	for p.match(TokenPipe) {
		right, err := p.bitwiseXor()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    TokenPipe,
			Right: right,
		}
	}

	return left, nil
}

// bitwiseXor parses ^ expressions.
func (p *Parser) bitwiseXor() (Expr, *ParseError) {
	left, err := p.bitwiseAnd()
	if err != nil {
		return nil, err
	}

	for p.match(TokenCaret) {
		right, err := p.bitwiseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    TokenCaret,
			Right: right,
		}
	}

	return left, nil
}

// bitwiseAnd parses & expressions.
func (p *Parser) bitwiseAnd() (Expr, *ParseError) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}

	for p.match(TokenAmpersand) {
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    TokenAmpersand,
			Right: right,
		}
	}

	return left, nil
}

// equality parses == and != expressions.
func (p *Parser) equality() (Expr, *ParseError) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}

	for p.check(TokenEqualEqual) || p.check(TokenBangEqual) {
		op := p.advance()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    op.Kind,
			Right: right,
		}
	}

	return left, nil
}

// comparison parses <, >, <=, >= expressions.
func (p *Parser) comparison() (Expr, *ParseError) {
	left, err := p.shift()
	if err != nil {
		return nil, err
	}

	for p.check(TokenLess) || p.check(TokenGreater) ||
		p.check(TokenLessEqual) || p.check(TokenGreaterEqual) {
		op := p.advance()
		right, err := p.shift()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    op.Kind,
			Right: right,
		}
	}

	return left, nil
}

// shift parses << and >> expressions.
func (p *Parser) shift() (Expr, *ParseError) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}

	for p.check(TokenLessLess) || p.check(TokenGreaterGreater) {
		op := p.advance()
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    op.Kind,
			Right: right,
		}
	}

	return left, nil
}

// additive parses + and - expressions.
func (p *Parser) additive() (Expr, *ParseError) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}

	for p.check(TokenPlus) || p.check(TokenMinus) {
		op := p.advance()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    op.Kind,
			Right: right,
		}
	}

	return left, nil
}

// multiplicative parses *, /, % expressions.
func (p *Parser) multiplicative() (Expr, *ParseError) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	for p.check(TokenStar) || p.check(TokenSlash) || p.check(TokenPercent) {
		op := p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    op.Kind,
			Right: right,
		}
	}

	return left, nil
}

// unary parses unary expressions.
func (p *Parser) unary() (Expr, *ParseError) {
	if p.check(TokenMinus) || p.check(TokenPlus) || p.check(TokenBang) || p.check(TokenTilde) {
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		// Unary plus is the identity.
		if op.Kind == TokenPlus {
			return operand, nil
		}
		return &UnaryExpr{
			Op:      op.Kind,
			Operand: operand,
			Span: Span{
				Start: Position{Line: op.Line, Column: op.Column},
			},
		}, nil
	}

	return p.postfix()
}

// postfix parses postfix expressions (calls, indexing, member access).
func (p *Parser) postfix() (Expr, *ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		if p.match(TokenLeftParen) {
			args := make([]Expr, 0, 4)
			for !p.check(TokenRightParen) && !p.isAtEnd() {
				arg, err := p.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.match(TokenComma) {
					break
				}
			}
			if err := p.expectErr(TokenRightParen); err != nil {
				return nil, err
			}

			switch callee := expr.(type) {
			case *Ident:
				expr = &CallExpr{
					Func: callee,
					Args: args,
					Span: callee.Span,
				}
			case *ConstructExpr:
				callee.Args = args
			default:
				return nil, &ParseError{Message: "expression is not callable", Token: p.peek()}
			}
		} else if p.match(TokenLeftBracket) {
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectErr(TokenRightBracket); err != nil {
				return nil, err
			}
			expr = &IndexExpr{
				Expr:  expr,
				Index: index,
			}
		} else if p.match(TokenDot) {
			if !p.check(TokenIdent) {
				return nil, &ParseError{Message: "expected member name", Token: p.peek()}
			}
			member := p.advance()
			expr = &MemberExpr{
				Expr:   expr,
				Member: member.Lexeme,
			}
		} else {
			break
		}
	}

	return expr, nil
}

// primary parses primary expressions.
func (p *Parser) primary() (Expr, *ParseError) {
	tok := p.peek()

	switch tok.Kind {
	case TokenIntLiteral, TokenFloatLiteral:
		p.advance()
		return &Literal{
			Kind:  tok.Kind,
			Value: tok.Lexeme,
			Span: Span{
				Start: Position{Line: tok.Line, Column: tok.Column},
			},
		}, nil

	case TokenTrue, TokenFalse, TokenBoolLiteral:
		p.advance()
		return &Literal{
			Kind:  TokenBoolLiteral,
			Value: tok.Lexeme,
			Span: Span{
				Start: Position{Line: tok.Line, Column: tok.Column},
			},
		}, nil

	case TokenIdent:
		p.advance()
		return &Ident{
			Name: tok.Lexeme,
			Span: Span{
				Start: Position{Line: tok.Line, Column: tok.Column},
			},
		}, nil

	case TokenLeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		// Type constructors: vec3(1.0, 2.0, 3.0)
		if p.isTypeKeyword(tok.Kind) {
			typeExpr, err := p.typeSpec()
			if err != nil {
				return nil, err
			}
			return &ConstructExpr{
				Type: typeExpr,
				Span: Span{
					Start: Position{Line: tok.Line, Column: tok.Column},
				},
			}, nil
		}

		return nil, &ParseError{
			Message: fmt.Sprintf("unexpected token %s in expression", tok.Kind),
			Token:   tok,
		}
	}
}

// Helper methods

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekNext() Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+1]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) check(kind TokenKind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectErr(kind TokenKind) *ParseError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	return &ParseError{
		Message: fmt.Sprintf("expected %s, got %s", kind, p.peek().Kind),
		Token:   p.peek(),
	}
}

func (p *Parser) skipToSemicolon() {
	for !p.check(TokenSemicolon) && !p.isAtEnd() {
		p.advance()
	}
	p.match(TokenSemicolon)
}

func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == TokenSemicolon {
			return
		}
		switch p.peek().Kind {
		case TokenStruct, TokenUniform, TokenLayout, TokenPrecision, TokenVoid:
			return
		}
		p.advance()
	}
}

func (p *Parser) isTypeKeyword(kind TokenKind) bool {
	switch kind {
	case TokenBool, TokenInt, TokenUint, TokenFloat,
		TokenVec2, TokenVec3, TokenVec4,
		TokenIVec2, TokenIVec3, TokenIVec4,
		TokenUVec2, TokenUVec3, TokenUVec4,
		TokenBVec2, TokenBVec3, TokenBVec4,
		TokenMat2, TokenMat3, TokenMat4,
		TokenMat2x2, TokenMat2x3, TokenMat2x4,
		TokenMat3x2, TokenMat3x3, TokenMat3x4,
		TokenMat4x2, TokenMat4x3, TokenMat4x4,
		TokenSampler2D, TokenSampler2DArray, TokenSampler3D, TokenSamplerCube:
		return true
	}
	return false
}

func (p *Parser) isAssignOp(kind TokenKind) bool {
	switch kind {
	case TokenEqual, TokenPlusEqual, TokenMinusEqual, TokenStarEqual,
		TokenSlashEqual, TokenPercentEqual, TokenAmpEqual, TokenPipeEqual,
		TokenCaretEqual, TokenLessLessEqual, TokenGreaterGreaterEqual:
		return true
	}
	return false
}
