package glslin

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gogpu/naga/ir"
)

// Lowerer converts a GLSL AST to Naga IR.
type Lowerer struct {
	module *ir.Module
	source string
	stage  ir.ShaderStage

	// Type resolution
	registry *ir.TypeRegistry
	types    map[string]ir.TypeHandle

	// Variable resolution
	globals         map[string]ir.GlobalVariableHandle
	blockMembers    map[string]blockMember
	constExprs      map[string]Expr
	moduleConstants map[string]ir.ConstantHandle
	locals          map[string]ir.ExpressionHandle

	// Combined texture/sampler pairs: image global -> sampler global
	samplers map[ir.GlobalVariableHandle]ir.GlobalVariableHandle

	// Stage interface in declaration order
	ioVars   []*ioVar
	ioByName map[string]*ioVar

	nextInLocation  uint32
	nextOutLocation uint32

	// Function resolution
	functions map[string]ir.FunctionHandle

	// Current function context
	currentFunc    *ir.Function
	currentExprIdx ir.ExpressionHandle

	errors SourceErrors
}

// blockMember addresses a member of an anonymous uniform block.
type blockMember struct {
	global ir.GlobalVariableHandle
	index  uint32
}

// ioVar is a stage input or output backed by a private global.
type ioVar struct {
	name    string
	global  ir.GlobalVariableHandle
	typ     ir.TypeHandle
	binding ir.Binding
	output  bool
}

// Lower converts a GLSL AST module to Naga IR for the given stage.
func Lower(ast *Module, stage ir.ShaderStage) (*ir.Module, error) {
	return LowerWithSource(ast, stage, "")
}

// LowerWithSource converts a GLSL AST module to Naga IR, keeping source
// for error messages.
func LowerWithSource(ast *Module, stage ir.ShaderStage, source string) (*ir.Module, error) {
	l := &Lowerer{
		module:          &ir.Module{},
		source:          source,
		stage:           stage,
		registry:        ir.NewTypeRegistry(),
		types:           make(map[string]ir.TypeHandle, 16),
		globals:         make(map[string]ir.GlobalVariableHandle, 8),
		blockMembers:    make(map[string]blockMember, 8),
		constExprs:      make(map[string]Expr, 4),
		moduleConstants: make(map[string]ir.ConstantHandle, 4),
		locals:          make(map[string]ir.ExpressionHandle, 16),
		samplers:        make(map[ir.GlobalVariableHandle]ir.GlobalVariableHandle, 2),
		ioByName:        make(map[string]*ioVar, 8),
		functions:       make(map[string]ir.FunctionHandle, len(ast.Functions)),
	}

	l.registerBuiltinTypes()

	for _, s := range ast.Structs {
		if err := l.lowerStruct(s); err != nil {
			l.addError(err.Error(), s.Span)
		}
	}

	for _, b := range ast.UniformBlocks {
		if err := l.lowerUniformBlock(b); err != nil {
			l.addError(err.Error(), b.Span)
		}
	}

	for _, v := range ast.GlobalVars {
		if err := l.lowerGlobalVar(v); err != nil {
			l.addError(err.Error(), v.Span)
		}
	}

	// Pre-register function names to support forward references.
	for i, f := range ast.Functions {
		l.functions[f.Name] = ir.FunctionHandle(i)
	}

	for _, f := range ast.Functions {
		if err := l.lowerFunction(f); err != nil {
			l.addError(err.Error(), f.Span)
		}
	}

	if !l.errors.HasErrors() {
		if err := l.buildEntryPoint(ast); err != nil {
			l.addError(err.Error(), Span{})
		}
	}

	if l.errors.HasErrors() {
		return nil, &l.errors
	}

	l.module.Types = l.registry.GetTypes()
	return l.module, nil
}

func (l *Lowerer) addError(message string, span Span) {
	l.errors.Add(NewSourceError(message, span, l.source))
}

func (l *Lowerer) registerBuiltinTypes() {
	l.registerType("float", ir.ScalarType{Kind: ir.ScalarFloat, Width: 4})
	l.registerType("int", ir.ScalarType{Kind: ir.ScalarSint, Width: 4})
	l.registerType("uint", ir.ScalarType{Kind: ir.ScalarUint, Width: 4})
	l.registerType("bool", ir.ScalarType{Kind: ir.ScalarBool, Width: 1})
}

func (l *Lowerer) registerType(name string, inner ir.TypeInner) ir.TypeHandle {
	handle := l.registry.GetOrCreate(name, inner)
	if name != "" {
		l.types[name] = handle
	}
	// Keep module types in sync so type resolution works during lowering.
	l.module.Types = l.registry.GetTypes()
	return handle
}

// lowerStruct converts a struct declaration to IR.
func (l *Lowerer) lowerStruct(s *StructDecl) error {
	members, size, err := l.lowerMembers(s.Members, s.Name)
	if err != nil {
		return err
	}
	l.registerType(s.Name, ir.StructType{Members: members, Span: size})
	return nil
}

// lowerMembers converts struct or block members with std140-compatible
// offsets.
func (l *Lowerer) lowerMembers(astMembers []*StructMember, owner string) ([]ir.StructMember, uint32, error) {
	members := make([]ir.StructMember, len(astMembers))
	var offset uint32
	var maxAlign uint32 = 1
	for i, m := range astMembers {
		typeHandle, err := l.resolveType(m.Type)
		if err != nil {
			return nil, 0, fmt.Errorf("%s member %s: %w", owner, m.Name, err)
		}
		if m.ArraySize != nil {
			typeHandle, err = l.arrayOf(typeHandle, m.ArraySize)
			if err != nil {
				return nil, 0, fmt.Errorf("%s member %s: %w", owner, m.Name, err)
			}
		}

		align, size := l.typeAlignmentAndSize(typeHandle)
		if align > maxAlign {
			maxAlign = align
		}
		offset = (offset + align - 1) &^ (align - 1)

		members[i] = ir.StructMember{
			Name:   m.Name,
			Type:   typeHandle,
			Offset: offset,
		}
		offset += size
	}
	structSize := (offset + maxAlign - 1) &^ (maxAlign - 1)
	return members, structSize, nil
}

// typeAlignmentAndSize returns alignment and size for uniform buffer layout.
func (l *Lowerer) typeAlignmentAndSize(handle ir.TypeHandle) (align, size uint32) {
	typ, ok := l.registry.Lookup(handle)
	if !ok {
		return 4, 4
	}

	switch t := typ.Inner.(type) {
	case ir.ScalarType:
		return 4, 4

	case ir.VectorType:
		scalarSize := uint32(4)
		switch t.Size {
		case ir.Vec2:
			return 8, scalarSize * 2
		case ir.Vec3:
			return 16, scalarSize * 3
		case ir.Vec4:
			return 16, scalarSize * 4
		}

	case ir.MatrixType:
		colAlign, colSize := l.vectorAlignmentAndSize(uint8(t.Rows))
		return colAlign, colSize * uint32(t.Columns)

	case ir.ArrayType:
		elemAlign, elemSize := l.typeAlignmentAndSize(t.Base)
		stride := (elemSize + 15) &^ 15
		if elemAlign < 16 {
			elemAlign = 16
		}
		if t.Size.Constant != nil {
			return elemAlign, stride * *t.Size.Constant
		}
		return elemAlign, stride

	case ir.StructType:
		var maxMemberAlign uint32 = 1
		for _, member := range t.Members {
			memberAlign, _ := l.typeAlignmentAndSize(member.Type)
			if memberAlign > maxMemberAlign {
				maxMemberAlign = memberAlign
			}
		}
		return maxMemberAlign, t.Span
	}

	return 4, 4
}

func (l *Lowerer) vectorAlignmentAndSize(components uint8) (align, size uint32) {
	scalarSize := uint32(4)
	switch components {
	case 2:
		return 8, scalarSize * 2
	case 3:
		return 16, scalarSize * 3
	case 4:
		return 16, scalarSize * 4
	default:
		return 4, scalarSize
	}
}

// lowerUniformBlock converts a uniform block to a struct-typed uniform
// global. Members of anonymous blocks are addressed directly by name.
func (l *Lowerer) lowerUniformBlock(b *BlockDecl) error {
	members, size, err := l.lowerMembers(b.Members, "block "+b.Name)
	if err != nil {
		return err
	}
	typeHandle := l.registerType(b.Name, ir.StructType{Members: members, Span: size})

	binding := &ir.ResourceBinding{}
	if b.Layout != nil {
		binding.Group = b.Layout.Set
		binding.Binding = b.Layout.Binding
	}

	name := b.InstanceName
	if name == "" {
		name = b.Name
	}

	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:    name,
		Space:   ir.SpaceUniform,
		Binding: binding,
		Type:    typeHandle,
	})

	if b.InstanceName != "" {
		l.globals[b.InstanceName] = handle
	} else {
		for i, m := range b.Members {
			l.blockMembers[m.Name] = blockMember{global: handle, index: uint32(i)}
		}
	}
	return nil
}

// lowerGlobalVar converts a global variable declaration to IR.
func (l *Lowerer) lowerGlobalVar(v *VarDecl) error {
	switch v.Qualifier {
	case QualifierConst:
		return l.lowerConstGlobal(v)
	case QualifierUniform:
		return l.lowerUniformGlobal(v)
	case QualifierIn, QualifierOut:
		return l.lowerStageVar(v)
	default:
		return l.lowerPrivateGlobal(v)
	}
}

// lowerConstGlobal registers a module-scope constant. Scalar literal
// initializers become IR constants; anything else is inlined at use sites.
func (l *Lowerer) lowerConstGlobal(v *VarDecl) error {
	if v.Init == nil {
		return fmt.Errorf("const '%s' must have an initializer", v.Name)
	}

	lit, ok := v.Init.(*Literal)
	if !ok {
		l.constExprs[v.Name] = v.Init
		return nil
	}

	var scalarKind ir.ScalarKind
	var bits uint64
	switch lit.Kind {
	case TokenIntLiteral:
		val, unsigned := parseIntLiteral(lit.Value)
		if unsigned {
			bits = uint64(val)
			scalarKind = ir.ScalarUint
		} else {
			bits = uint64(val)
			scalarKind = ir.ScalarSint
		}
	case TokenFloatLiteral:
		f, _ := strconv.ParseFloat(trimFloatSuffix(lit.Value), 32)
		bits = uint64(math.Float32bits(float32(f)))
		scalarKind = ir.ScalarFloat
	case TokenBoolLiteral:
		if lit.Value == "true" {
			bits = 1
		}
		scalarKind = ir.ScalarBool
	default:
		l.constExprs[v.Name] = v.Init
		return nil
	}

	typeHandle, err := l.resolveType(v.Type)
	if err != nil {
		return fmt.Errorf("const %s: %w", v.Name, err)
	}

	handle := ir.ConstantHandle(len(l.module.Constants))
	l.module.Constants = append(l.module.Constants, ir.Constant{
		Name:  v.Name,
		Type:  typeHandle,
		Value: ir.ScalarValue{Bits: bits, Kind: scalarKind},
	})
	l.moduleConstants[v.Name] = handle
	return nil
}

// lowerUniformGlobal converts a loose uniform declaration. Opaque
// sampler types split into separate texture and sampler globals, the
// way the IR models them.
func (l *Lowerer) lowerUniformGlobal(v *VarDecl) error {
	named, ok := v.Type.(*NamedType)
	if ok {
		if img, isSampler := samplerImageType(named.Name); isSampler {
			return l.lowerCombinedSampler(v, img)
		}
	}

	typeHandle, err := l.resolveType(v.Type)
	if err != nil {
		return fmt.Errorf("uniform %s: %w", v.Name, err)
	}
	if v.ArraySize != nil {
		typeHandle, err = l.arrayOf(typeHandle, v.ArraySize)
		if err != nil {
			return fmt.Errorf("uniform %s: %w", v.Name, err)
		}
	}

	binding := &ir.ResourceBinding{}
	if v.Layout != nil {
		binding.Group = v.Layout.Set
		binding.Binding = v.Layout.Binding
	}

	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:    v.Name,
		Space:   ir.SpaceUniform,
		Binding: binding,
		Type:    typeHandle,
	})
	l.globals[v.Name] = handle
	return nil
}

// lowerCombinedSampler splits a GLSL combined texture/sampler into the
// texture and sampler globals the IR expects.
func (l *Lowerer) lowerCombinedSampler(v *VarDecl, img ir.ImageType) error {
	imageType := l.registerType("", img)
	samplerType := l.registerType("", ir.SamplerType{Comparison: false})

	binding := &ir.ResourceBinding{}
	if v.Layout != nil {
		binding.Group = v.Layout.Set
		binding.Binding = v.Layout.Binding
	}

	imageHandle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:    v.Name,
		Space:   ir.SpaceHandle,
		Binding: binding,
		Type:    imageType,
	})

	samplerBinding := &ir.ResourceBinding{Group: binding.Group, Binding: binding.Binding + 1}
	samplerHandle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:    v.Name + "_sampler",
		Space:   ir.SpaceHandle,
		Binding: samplerBinding,
		Type:    samplerType,
	})

	l.globals[v.Name] = imageHandle
	l.samplers[imageHandle] = samplerHandle
	return nil
}

// samplerImageType maps GLSL combined sampler type names to image types.
func samplerImageType(name string) (ir.ImageType, bool) {
	switch name {
	case "sampler2D":
		return ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled}, true
	case "sampler2DArray":
		return ir.ImageType{Dim: ir.Dim2D, Arrayed: true, Class: ir.ImageClassSampled}, true
	case "sampler3D":
		return ir.ImageType{Dim: ir.Dim3D, Class: ir.ImageClassSampled}, true
	case "samplerCube":
		return ir.ImageType{Dim: ir.DimCube, Class: ir.ImageClassSampled}, true
	default:
		return ir.ImageType{}, false
	}
}

// lowerStageVar converts an in/out declaration to a private global plus
// a stage interface entry. The entry point wrapper wires them to
// arguments and results.
func (l *Lowerer) lowerStageVar(v *VarDecl) error {
	typeHandle, err := l.resolveType(v.Type)
	if err != nil {
		return fmt.Errorf("stage var %s: %w", v.Name, err)
	}

	var location uint32
	output := v.Qualifier == QualifierOut
	if v.Varying && l.stage == ir.StageVertex {
		// Legacy varying is a vertex output, a fragment input.
		output = true
	}
	if v.Layout != nil && v.Layout.HasLocation {
		location = v.Layout.Location
		if output {
			if location >= l.nextOutLocation {
				l.nextOutLocation = location + 1
			}
		} else if location >= l.nextInLocation {
			l.nextInLocation = location + 1
		}
	} else if output {
		location = l.nextOutLocation
		l.nextOutLocation++
	} else {
		location = l.nextInLocation
		l.nextInLocation++
	}

	var interp *ir.Interpolation
	if v.Flat {
		interp = &ir.Interpolation{Kind: ir.InterpolationFlat}
	}

	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:  v.Name,
		Space: ir.SpacePrivate,
		Type:  typeHandle,
	})
	l.globals[v.Name] = handle

	io := &ioVar{
		name:    v.Name,
		global:  handle,
		typ:     typeHandle,
		binding: ir.LocationBinding{Location: location, Interpolation: interp},
		output:  output,
	}
	l.ioVars = append(l.ioVars, io)
	l.ioByName[v.Name] = io
	return nil
}

// lowerPrivateGlobal converts an unqualified global variable.
func (l *Lowerer) lowerPrivateGlobal(v *VarDecl) error {
	typeHandle, err := l.resolveType(v.Type)
	if err != nil {
		return fmt.Errorf("global %s: %w", v.Name, err)
	}
	if v.ArraySize != nil {
		typeHandle, err = l.arrayOf(typeHandle, v.ArraySize)
		if err != nil {
			return fmt.Errorf("global %s: %w", v.Name, err)
		}
	}

	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:  v.Name,
		Space: ir.SpacePrivate,
		Type:  typeHandle,
	})
	l.globals[v.Name] = handle
	return nil
}

// lowerFunction converts a function declaration to IR.
func (l *Lowerer) lowerFunction(f *FunctionDecl) error {
	for k := range l.locals {
		delete(l.locals, k)
	}
	l.currentExprIdx = 0

	var bodySize int
	if f.Body != nil {
		bodySize = len(f.Body.Statements)
	}
	estExprs := bodySize * 3
	if estExprs < 8 {
		estExprs = 8
	}

	name := f.Name
	if name == "main" {
		// Keep "main" free for the entry point wrapper.
		name = "main_1"
	}

	fn := &ir.Function{
		Name:            name,
		Arguments:       make([]ir.FunctionArgument, len(f.Params)),
		LocalVars:       make([]ir.LocalVariable, 0, 4),
		Expressions:     make([]ir.Expression, 0, estExprs),
		ExpressionTypes: make([]ir.TypeResolution, 0, estExprs),
		Body:            make([]ir.Statement, 0, bodySize),
	}
	l.currentFunc = fn

	for i, p := range f.Params {
		typeHandle, err := l.resolveType(p.Type)
		if err != nil {
			return fmt.Errorf("function %s param %s: %w", f.Name, p.Name, err)
		}
		fn.Arguments[i] = ir.FunctionArgument{
			Name: p.Name,
			Type: typeHandle,
		}
		exprHandle := l.addExpression(ir.Expression{
			Kind: ir.ExprFunctionArgument{Index: uint32(i)},
		})
		l.locals[p.Name] = exprHandle
	}

	if named, ok := f.ReturnType.(*NamedType); !ok || named.Name != "void" {
		typeHandle, err := l.resolveType(f.ReturnType)
		if err != nil {
			return fmt.Errorf("function %s return type: %w", f.Name, err)
		}
		fn.Result = &ir.FunctionResult{Type: typeHandle}
	}

	if f.Body != nil {
		if err := l.lowerBlock(f.Body, &fn.Body); err != nil {
			return fmt.Errorf("function %s body: %w", f.Name, err)
		}
	}

	l.module.Functions = append(l.module.Functions, *fn)
	return nil
}

// buildEntryPoint wraps the user's main in an entry point function that
// moves bound arguments into the private stage globals and composes the
// bound result from them.
func (l *Lowerer) buildEntryPoint(ast *Module) error {
	mainHandle, ok := l.functions["main"]
	if !ok {
		return fmt.Errorf("no 'main' function defined")
	}

	fn := &ir.Function{Name: "main"}
	l.currentFunc = fn
	l.currentExprIdx = 0

	var inputs, outputs []*ioVar
	for _, io := range l.ioVars {
		if io.output {
			outputs = append(outputs, io)
		} else {
			inputs = append(inputs, io)
		}
	}

	for i, in := range inputs {
		binding := in.binding
		fn.Arguments = append(fn.Arguments, ir.FunctionArgument{
			Name:    in.name,
			Type:    in.typ,
			Binding: &binding,
		})
		argExpr := l.addExpression(ir.Expression{
			Kind: ir.ExprFunctionArgument{Index: uint32(i)},
		})
		globalExpr := l.addExpression(ir.Expression{
			Kind: ir.ExprGlobalVariable{Variable: in.global},
		})
		fn.Body = append(fn.Body, ir.Statement{
			Kind: ir.StmtStore{Pointer: globalExpr, Value: argExpr},
		})
	}

	fn.Body = append(fn.Body, ir.Statement{
		Kind: ir.StmtCall{Function: mainHandle},
	})

	switch len(outputs) {
	case 0:
	case 1:
		out := outputs[0]
		binding := out.binding
		fn.Result = &ir.FunctionResult{Type: out.typ, Binding: &binding}
		value := l.addExpression(ir.Expression{
			Kind: ir.ExprGlobalVariable{Variable: out.global},
		})
		fn.Body = append(fn.Body, ir.Statement{
			Kind: ir.StmtReturn{Value: &value},
		})
	default:
		members := make([]ir.StructMember, len(outputs))
		components := make([]ir.ExpressionHandle, len(outputs))
		var offset uint32
		for i, out := range outputs {
			binding := out.binding
			align, size := l.typeAlignmentAndSize(out.typ)
			offset = (offset + align - 1) &^ (align - 1)
			members[i] = ir.StructMember{
				Name:    out.name,
				Type:    out.typ,
				Binding: &binding,
				Offset:  offset,
			}
			offset += size
		}
		structHandle := l.registerType(stageOutputName(l.stage), ir.StructType{
			Members: members,
			Span:    offset,
		})
		for i, out := range outputs {
			components[i] = l.addExpression(ir.Expression{
				Kind: ir.ExprGlobalVariable{Variable: out.global},
			})
		}
		value := l.addExpression(ir.Expression{
			Kind: ir.ExprCompose{Type: structHandle, Components: components},
		})
		fn.Result = &ir.FunctionResult{Type: structHandle}
		fn.Body = append(fn.Body, ir.Statement{
			Kind: ir.StmtReturn{Value: &value},
		})
	}

	wrapperHandle := ir.FunctionHandle(len(l.module.Functions))
	l.module.Functions = append(l.module.Functions, *fn)

	ep := ir.EntryPoint{
		Name:     "main",
		Stage:    l.stage,
		Function: wrapperHandle,
	}
	if l.stage == ir.StageCompute {
		ep.Workgroup = ast.WorkgroupSize
		for i := range ep.Workgroup {
			if ep.Workgroup[i] == 0 {
				ep.Workgroup[i] = 1
			}
		}
	}
	l.module.EntryPoints = append(l.module.EntryPoints, ep)
	return nil
}

func stageOutputName(stage ir.ShaderStage) string {
	switch stage {
	case ir.StageVertex:
		return "VertexOutput"
	case ir.StageFragment:
		return "FragmentOutput"
	default:
		return "ComputeOutput"
	}
}

// lowerBlock converts a block statement to IR statements.
func (l *Lowerer) lowerBlock(block *BlockStmt, target *[]ir.Statement) error {
	for _, stmt := range block.Statements {
		if err := l.lowerStatement(stmt, target); err != nil {
			return err
		}
	}
	return nil
}

// lowerStatement converts a statement to IR.
func (l *Lowerer) lowerStatement(stmt Stmt, target *[]ir.Statement) error {
	switch s := stmt.(type) {
	case *ReturnStmt:
		return l.lowerReturn(s, target)
	case *VarDecl:
		return l.lowerLocalVar(s, target)
	case *AssignStmt:
		return l.lowerAssign(s, target)
	case *IfStmt:
		return l.lowerIf(s, target)
	case *ForStmt:
		return l.lowerFor(s, target)
	case *WhileStmt:
		return l.lowerWhile(s, target)
	case *SwitchStmt:
		return l.lowerSwitch(s, target)
	case *BreakStmt:
		*target = append(*target, ir.Statement{Kind: ir.StmtBreak{}})
		return nil
	case *ContinueStmt:
		*target = append(*target, ir.Statement{Kind: ir.StmtContinue{}})
		return nil
	case *DiscardStmt:
		*target = append(*target, ir.Statement{Kind: ir.StmtKill{}})
		return nil
	case *ExprStmt:
		_, err := l.lowerExpression(s.Expr, target)
		return err
	case *BlockStmt:
		var body []ir.Statement
		if err := l.lowerBlock(s, &body); err != nil {
			return err
		}
		*target = append(*target, ir.Statement{Kind: ir.StmtBlock{Block: body}})
		return nil
	default:
		return fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

// lowerReturn converts a return statement to IR.
func (l *Lowerer) lowerReturn(ret *ReturnStmt, target *[]ir.Statement) error {
	var valueHandle *ir.ExpressionHandle
	if ret.Value != nil {
		handle, err := l.lowerExpression(ret.Value, target)
		if err != nil {
			return err
		}
		valueHandle = &handle
	}
	*target = append(*target, ir.Statement{
		Kind: ir.StmtReturn{Value: valueHandle},
	})
	return nil
}

// lowerLocalVar converts a local variable declaration to IR.
func (l *Lowerer) lowerLocalVar(v *VarDecl, target *[]ir.Statement) error {
	var initHandle *ir.ExpressionHandle
	if v.Init != nil {
		init, err := l.lowerExpression(v.Init, target)
		if err != nil {
			return err
		}
		initHandle = &init
	}

	typeHandle, err := l.resolveType(v.Type)
	if err != nil {
		return fmt.Errorf("local var %s: %w", v.Name, err)
	}
	if v.ArraySize != nil {
		typeHandle, err = l.arrayOf(typeHandle, v.ArraySize)
		if err != nil {
			return fmt.Errorf("local var %s: %w", v.Name, err)
		}
	}

	localIdx := uint32(len(l.currentFunc.LocalVars))
	l.currentFunc.LocalVars = append(l.currentFunc.LocalVars, ir.LocalVariable{
		Name: v.Name,
		Type: typeHandle,
		Init: initHandle,
	})

	exprHandle := l.addExpression(ir.Expression{
		Kind: ir.ExprLocalVariable{Variable: localIdx},
	})
	l.locals[v.Name] = exprHandle
	return nil
}

// lowerAssign converts an assignment statement to IR.
func (l *Lowerer) lowerAssign(assign *AssignStmt, target *[]ir.Statement) error {
	pointer, err := l.lowerExpression(assign.Left, target)
	if err != nil {
		return err
	}

	value, err := l.lowerExpression(assign.Right, target)
	if err != nil {
		return err
	}

	if assign.Op != TokenEqual {
		loadHandle := l.addExpression(ir.Expression{
			Kind: ir.ExprLoad{Pointer: pointer},
		})
		op := l.assignOpToBinary(assign.Op)
		value = l.addExpression(ir.Expression{
			Kind: ir.ExprBinary{Op: op, Left: loadHandle, Right: value},
		})
	}

	*target = append(*target, ir.Statement{
		Kind: ir.StmtStore{Pointer: pointer, Value: value},
	})
	return nil
}

// lowerIf converts an if statement to IR.
func (l *Lowerer) lowerIf(ifStmt *IfStmt, target *[]ir.Statement) error {
	condition, err := l.lowerExpression(ifStmt.Condition, target)
	if err != nil {
		return err
	}

	var accept, reject []ir.Statement
	if err := l.lowerBlock(ifStmt.Body, &accept); err != nil {
		return err
	}
	if ifStmt.Else != nil {
		if err := l.lowerStatement(ifStmt.Else, &reject); err != nil {
			return err
		}
	}

	*target = append(*target, ir.Statement{
		Kind: ir.StmtIf{
			Condition: condition,
			Accept:    accept,
			Reject:    reject,
		},
	})
	return nil
}

// lowerFor converts a for loop to IR.
// For loops become: init; loop { if !condition { break }; body; update }
func (l *Lowerer) lowerFor(forStmt *ForStmt, target *[]ir.Statement) error {
	if forStmt.Init != nil {
		if err := l.lowerStatement(forStmt.Init, target); err != nil {
			return err
		}
	}

	var body, continuing []ir.Statement

	if forStmt.Condition != nil {
		condition, err := l.lowerExpression(forStmt.Condition, &body)
		if err != nil {
			return err
		}
		notCond := l.addExpression(ir.Expression{
			Kind: ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: condition},
		})
		body = append(body, ir.Statement{
			Kind: ir.StmtIf{
				Condition: notCond,
				Accept:    []ir.Statement{{Kind: ir.StmtBreak{}}},
				Reject:    []ir.Statement{},
			},
		})
	}

	if err := l.lowerBlock(forStmt.Body, &body); err != nil {
		return err
	}

	if forStmt.Update != nil {
		if err := l.lowerStatement(forStmt.Update, &continuing); err != nil {
			return err
		}
	}

	*target = append(*target, ir.Statement{
		Kind: ir.StmtLoop{
			Body:       body,
			Continuing: continuing,
		},
	})
	return nil
}

// lowerWhile converts a while loop to IR.
func (l *Lowerer) lowerWhile(whileStmt *WhileStmt, target *[]ir.Statement) error {
	var body []ir.Statement

	condition, err := l.lowerExpression(whileStmt.Condition, &body)
	if err != nil {
		return err
	}
	notCond := l.addExpression(ir.Expression{
		Kind: ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: condition},
	})
	body = append(body, ir.Statement{
		Kind: ir.StmtIf{
			Condition: notCond,
			Accept:    []ir.Statement{{Kind: ir.StmtBreak{}}},
			Reject:    []ir.Statement{},
		},
	})

	if err := l.lowerBlock(whileStmt.Body, &body); err != nil {
		return err
	}

	*target = append(*target, ir.Statement{
		Kind: ir.StmtLoop{
			Body:       body,
			Continuing: []ir.Statement{},
		},
	})
	return nil
}

// lowerSwitch converts a switch statement to IR. A default case is
// appended when the source omits one, since the IR requires it.
func (l *Lowerer) lowerSwitch(switchStmt *SwitchStmt, target *[]ir.Statement) error {
	selector, err := l.lowerExpression(switchStmt.Selector, target)
	if err != nil {
		return fmt.Errorf("switch selector: %w", err)
	}

	var cases []ir.SwitchCase
	hasDefault := false
	for i, clause := range switchStmt.Cases {
		var caseBody []ir.Statement
		for _, stmt := range clause.Body {
			if err := l.lowerStatement(stmt, &caseBody); err != nil {
				return fmt.Errorf("switch case %d body: %w", i, err)
			}
		}
		// GLSL case bodies end with an explicit break; the IR break
		// out of a switch is implicit.
		if n := len(caseBody); n > 0 {
			if _, isBreak := caseBody[n-1].Kind.(ir.StmtBreak); isBreak {
				caseBody = caseBody[:n-1]
			}
		}

		if clause.IsDefault {
			hasDefault = true
			cases = append(cases, ir.SwitchCase{
				Value: ir.SwitchValueDefault{},
				Body:  caseBody,
			})
			continue
		}
		for _, sel := range clause.Selectors {
			value, err := l.lowerSwitchCaseValue(sel)
			if err != nil {
				return fmt.Errorf("switch case %d selector: %w", i, err)
			}
			cases = append(cases, ir.SwitchCase{
				Value: value,
				Body:  caseBody,
			})
		}
	}

	if !hasDefault {
		cases = append(cases, ir.SwitchCase{
			Value: ir.SwitchValueDefault{},
			Body:  []ir.Statement{},
		})
	}

	*target = append(*target, ir.Statement{
		Kind: ir.StmtSwitch{
			Selector: selector,
			Cases:    cases,
		},
	})
	return nil
}

// lowerSwitchCaseValue converts a switch case selector to IR.
func (l *Lowerer) lowerSwitchCaseValue(expr Expr) (ir.SwitchValue, error) {
	switch e := expr.(type) {
	case *Literal:
		if e.Kind != TokenIntLiteral {
			return nil, fmt.Errorf("switch case selector must be an integer literal")
		}
		val, unsigned := parseIntLiteral(e.Value)
		if unsigned {
			return ir.SwitchValueU32(uint32(val & 0xFFFFFFFF)), nil
		}
		return ir.SwitchValueI32(int32(val & 0xFFFFFFFF)), nil
	case *Ident:
		constHandle, ok := l.moduleConstants[e.Name]
		if !ok {
			return nil, fmt.Errorf("switch case selector '%s': not a known constant", e.Name)
		}
		constant := &l.module.Constants[constHandle]
		sv, ok := constant.Value.(ir.ScalarValue)
		if !ok {
			return nil, fmt.Errorf("switch case selector '%s': not a scalar constant", e.Name)
		}
		switch sv.Kind {
		case ir.ScalarUint:
			return ir.SwitchValueU32(uint32(sv.Bits)), nil
		case ir.ScalarSint:
			return ir.SwitchValueI32(int32(sv.Bits)), nil
		default:
			return nil, fmt.Errorf("switch case selector '%s': must be integer", e.Name)
		}
	default:
		return nil, fmt.Errorf("switch case selector must be a literal or constant, got %T", expr)
	}
}

// parseIntLiteral parses an integer literal and reports whether it
// carried an unsigned suffix.
func parseIntLiteral(s string) (int64, bool) {
	unsigned := false
	if len(s) > 0 && (s[len(s)-1] == 'u' || s[len(s)-1] == 'U') {
		unsigned = true
		s = s[:len(s)-1]
	}
	val, _ := strconv.ParseInt(s, 0, 64)
	return val, unsigned
}

func trimFloatSuffix(s string) string {
	if len(s) > 0 && (s[len(s)-1] == 'f' || s[len(s)-1] == 'F') {
		return s[:len(s)-1]
	}
	return s
}

// lowerExpression converts an expression to IR.
func (l *Lowerer) lowerExpression(expr Expr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	switch e := expr.(type) {
	case *Literal:
		return l.lowerLiteral(e)
	case *Ident:
		return l.resolveIdentifier(e.Name, target)
	case *BinaryExpr:
		return l.lowerBinary(e, target)
	case *UnaryExpr:
		return l.lowerUnary(e, target)
	case *TernaryExpr:
		return l.lowerTernary(e, target)
	case *CallExpr:
		return l.lowerCall(e, target)
	case *ConstructExpr:
		return l.lowerConstruct(e, target)
	case *MemberExpr:
		return l.lowerMember(e, target)
	case *IndexExpr:
		return l.lowerIndex(e, target)
	default:
		return 0, fmt.Errorf("unsupported expression type: %T", expr)
	}
}

// lowerLiteral converts a literal to IR.
func (l *Lowerer) lowerLiteral(lit *Literal) (ir.ExpressionHandle, error) {
	var value ir.LiteralValue

	switch lit.Kind {
	case TokenIntLiteral:
		val, unsigned := parseIntLiteral(lit.Value)
		if unsigned {
			value = ir.LiteralU32(uint32(val & 0xFFFFFFFF))
		} else {
			value = ir.LiteralI32(int32(val & 0xFFFFFFFF))
		}
	case TokenFloatLiteral:
		v, _ := strconv.ParseFloat(trimFloatSuffix(lit.Value), 32)
		value = ir.LiteralF32(v)
	case TokenBoolLiteral:
		value = ir.LiteralBool(lit.Value == "true")
	default:
		return 0, fmt.Errorf("unsupported literal kind: %v", lit.Kind)
	}

	return l.addExpression(ir.Expression{
		Kind: ir.Literal{Value: value},
	}), nil
}

// lowerBinary converts a binary expression to IR.
func (l *Lowerer) lowerBinary(bin *BinaryExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	left, err := l.lowerExpression(bin.Left, target)
	if err != nil {
		return 0, err
	}
	right, err := l.lowerExpression(bin.Right, target)
	if err != nil {
		return 0, err
	}

	op := l.tokenToBinaryOp(bin.Op)
	return l.addExpression(ir.Expression{
		Kind: ir.ExprBinary{Op: op, Left: left, Right: right},
	}), nil
}

// lowerUnary converts a unary expression to IR.
func (l *Lowerer) lowerUnary(un *UnaryExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	operand, err := l.lowerExpression(un.Operand, target)
	if err != nil {
		return 0, err
	}

	op := l.tokenToUnaryOp(un.Op)
	return l.addExpression(ir.Expression{
		Kind: ir.ExprUnary{Op: op, Expr: operand},
	}), nil
}

// lowerTernary converts cond ? a : b to an IR select expression.
func (l *Lowerer) lowerTernary(t *TernaryExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	condition, err := l.lowerExpression(t.Condition, target)
	if err != nil {
		return 0, err
	}
	accept, err := l.lowerExpression(t.Accept, target)
	if err != nil {
		return 0, err
	}
	reject, err := l.lowerExpression(t.Reject, target)
	if err != nil {
		return 0, err
	}

	return l.addExpression(ir.Expression{
		Kind: ir.ExprSelect{
			Condition: condition,
			Accept:    accept,
			Reject:    reject,
		},
	}), nil
}

// lowerCall converts a call expression to IR.
func (l *Lowerer) lowerCall(call *CallExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	funcName := call.Func.Name

	if funcName == "mod" {
		return l.lowerModCall(call.Args, target)
	}
	if funcName == "atan" && len(call.Args) == 2 {
		return l.lowerMathCall(ir.MathAtan2, call.Args, target)
	}
	if deriv, ok := l.getDerivativeFunction(funcName); ok {
		return l.lowerDerivativeCall(deriv, call.Args, target)
	}
	if relFun, ok := l.getRelationalFunction(funcName); ok {
		return l.lowerRelationalCall(relFun, call.Args, target)
	}
	if mathFunc, ok := mathFuncTable[funcName]; ok {
		return l.lowerMathCall(mathFunc, call.Args, target)
	}
	if l.isTextureFunction(funcName) {
		return l.lowerTextureCall(funcName, call.Args, target)
	}

	funcHandle, ok := l.functions[funcName]
	if !ok {
		return 0, fmt.Errorf("unknown function: %s", funcName)
	}

	args := make([]ir.ExpressionHandle, len(call.Args))
	for i, arg := range call.Args {
		handle, err := l.lowerExpression(arg, target)
		if err != nil {
			return 0, err
		}
		args[i] = handle
	}

	resultHandle := l.addExpression(ir.Expression{
		Kind: ir.ExprCallResult{Function: funcHandle},
	})

	*target = append(*target, ir.Statement{
		Kind: ir.StmtCall{
			Function:  funcHandle,
			Arguments: args,
			Result:    &resultHandle,
		},
	})

	return resultHandle, nil
}

// lowerModCall desugars GLSL mod(x, y) to x - y * floor(x / y).
func (l *Lowerer) lowerModCall(args []Expr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	if len(args) != 2 {
		return 0, fmt.Errorf("mod requires exactly 2 arguments, got %d", len(args))
	}
	x, err := l.lowerExpression(args[0], target)
	if err != nil {
		return 0, err
	}
	y, err := l.lowerExpression(args[1], target)
	if err != nil {
		return 0, err
	}

	div := l.addExpression(ir.Expression{
		Kind: ir.ExprBinary{Op: ir.BinaryDivide, Left: x, Right: y},
	})
	floor := l.addExpression(ir.Expression{
		Kind: ir.ExprMath{Fun: ir.MathFloor, Arg: div},
	})
	mul := l.addExpression(ir.Expression{
		Kind: ir.ExprBinary{Op: ir.BinaryMultiply, Left: y, Right: floor},
	})
	return l.addExpression(ir.Expression{
		Kind: ir.ExprBinary{Op: ir.BinarySubtract, Left: x, Right: mul},
	}), nil
}

// mathFuncTable maps GLSL builtin names to IR math functions.
var mathFuncTable = map[string]ir.MathFunction{
	"abs":      ir.MathAbs,
	"min":      ir.MathMin,
	"max":      ir.MathMax,
	"clamp":    ir.MathClamp,
	"saturate": ir.MathSaturate,

	"cos":   ir.MathCos,
	"cosh":  ir.MathCosh,
	"sin":   ir.MathSin,
	"sinh":  ir.MathSinh,
	"tan":   ir.MathTan,
	"tanh":  ir.MathTanh,
	"acos":  ir.MathAcos,
	"asin":  ir.MathAsin,
	"atan":  ir.MathAtan,
	"asinh": ir.MathAsinh,
	"acosh": ir.MathAcosh,
	"atanh": ir.MathAtanh,

	"radians": ir.MathRadians,
	"degrees": ir.MathDegrees,

	"ceil":      ir.MathCeil,
	"floor":     ir.MathFloor,
	"round":     ir.MathRound,
	"roundEven": ir.MathRound,
	"fract":     ir.MathFract,
	"trunc":     ir.MathTrunc,

	"exp":  ir.MathExp,
	"exp2": ir.MathExp2,
	"log":  ir.MathLog,
	"log2": ir.MathLog2,
	"pow":  ir.MathPow,

	"dot":         ir.MathDot,
	"cross":       ir.MathCross,
	"distance":    ir.MathDistance,
	"length":      ir.MathLength,
	"normalize":   ir.MathNormalize,
	"faceforward": ir.MathFaceForward,
	"reflect":     ir.MathReflect,
	"refract":     ir.MathRefract,

	"sign":        ir.MathSign,
	"fma":         ir.MathFma,
	"mix":         ir.MathMix,
	"step":        ir.MathStep,
	"smoothstep":  ir.MathSmoothStep,
	"sqrt":        ir.MathSqrt,
	"inversesqrt": ir.MathInverseSqrt,

	"transpose":   ir.MathTranspose,
	"determinant": ir.MathDeterminant,
	"inverse":     ir.MathInverse,
}

func (l *Lowerer) lowerMathCall(mathFunc ir.MathFunction, args []Expr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("math function requires at least one argument")
	}

	arg0, err := l.lowerExpression(args[0], target)
	if err != nil {
		return 0, err
	}

	var arg1, arg2, arg3 *ir.ExpressionHandle
	if len(args) > 1 {
		a, err := l.lowerExpression(args[1], target)
		if err != nil {
			return 0, err
		}
		arg1 = &a
	}
	if len(args) > 2 {
		a, err := l.lowerExpression(args[2], target)
		if err != nil {
			return 0, err
		}
		arg2 = &a
	}
	if len(args) > 3 {
		a, err := l.lowerExpression(args[3], target)
		if err != nil {
			return 0, err
		}
		arg3 = &a
	}

	return l.addExpression(ir.Expression{
		Kind: ir.ExprMath{
			Fun:  mathFunc,
			Arg:  arg0,
			Arg1: arg1,
			Arg2: arg2,
			Arg3: arg3,
		},
	}), nil
}

// getDerivativeFunction maps GLSL derivative builtins to IR.
func (l *Lowerer) getDerivativeFunction(name string) (ir.ExprDerivative, bool) {
	switch name {
	case "dFdx":
		return ir.ExprDerivative{Axis: ir.DerivativeX, Control: ir.DerivativeNone}, true
	case "dFdy":
		return ir.ExprDerivative{Axis: ir.DerivativeY, Control: ir.DerivativeNone}, true
	case "fwidth":
		return ir.ExprDerivative{Axis: ir.DerivativeWidth, Control: ir.DerivativeNone}, true
	case "dFdxCoarse":
		return ir.ExprDerivative{Axis: ir.DerivativeX, Control: ir.DerivativeCoarse}, true
	case "dFdyCoarse":
		return ir.ExprDerivative{Axis: ir.DerivativeY, Control: ir.DerivativeCoarse}, true
	case "dFdxFine":
		return ir.ExprDerivative{Axis: ir.DerivativeX, Control: ir.DerivativeFine}, true
	case "dFdyFine":
		return ir.ExprDerivative{Axis: ir.DerivativeY, Control: ir.DerivativeFine}, true
	default:
		return ir.ExprDerivative{}, false
	}
}

func (l *Lowerer) lowerDerivativeCall(deriv ir.ExprDerivative, args []Expr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("derivative function requires exactly 1 argument, got %d", len(args))
	}
	expr, err := l.lowerExpression(args[0], target)
	if err != nil {
		return 0, err
	}
	deriv.Expr = expr
	return l.addExpression(ir.Expression{Kind: deriv}), nil
}

// getRelationalFunction maps GLSL relational builtins to IR.
func (l *Lowerer) getRelationalFunction(name string) (ir.RelationalFunction, bool) {
	switch name {
	case "all":
		return ir.RelationalAll, true
	case "any":
		return ir.RelationalAny, true
	case "isnan":
		return ir.RelationalIsNan, true
	case "isinf":
		return ir.RelationalIsInf, true
	default:
		return 0, false
	}
}

func (l *Lowerer) lowerRelationalCall(fun ir.RelationalFunction, args []Expr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("relational function requires exactly 1 argument, got %d", len(args))
	}
	arg, err := l.lowerExpression(args[0], target)
	if err != nil {
		return 0, err
	}
	return l.addExpression(ir.Expression{
		Kind: ir.ExprRelational{Fun: fun, Argument: arg},
	}), nil
}

// isTextureFunction checks for GLSL texture access builtins.
func (l *Lowerer) isTextureFunction(name string) bool {
	switch name {
	case "texture", "texture2D", "textureCube", "textureLod", "textureGrad",
		"texelFetch", "textureSize":
		return true
	}
	return false
}

// lowerTextureCall converts a texture builtin call to IR. The first
// argument names a combined sampler; it expands to the image/sampler
// global pair created at declaration time.
func (l *Lowerer) lowerTextureCall(name string, args []Expr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	if len(args) < 2 && name != "textureSize" {
		return 0, fmt.Errorf("%s requires at least 2 arguments", name)
	}
	if len(args) < 1 {
		return 0, fmt.Errorf("%s requires a sampler argument", name)
	}

	image, sampler, err := l.resolveSamplerPair(args[0], target)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	switch name {
	case "texture", "texture2D", "textureCube":
		coord, err := l.lowerExpression(args[1], target)
		if err != nil {
			return 0, err
		}
		var level ir.SampleLevel = ir.SampleLevelAuto{}
		if len(args) > 2 {
			bias, err := l.lowerExpression(args[2], target)
			if err != nil {
				return 0, err
			}
			level = ir.SampleLevelBias{Bias: bias}
		}
		return l.addExpression(ir.Expression{
			Kind: ir.ExprImageSample{
				Image:      image,
				Sampler:    sampler,
				Coordinate: coord,
				Level:      level,
			},
		}), nil

	case "textureLod":
		if len(args) < 3 {
			return 0, fmt.Errorf("textureLod requires 3 arguments")
		}
		coord, err := l.lowerExpression(args[1], target)
		if err != nil {
			return 0, err
		}
		lod, err := l.lowerExpression(args[2], target)
		if err != nil {
			return 0, err
		}
		return l.addExpression(ir.Expression{
			Kind: ir.ExprImageSample{
				Image:      image,
				Sampler:    sampler,
				Coordinate: coord,
				Level:      ir.SampleLevelExact{Level: lod},
			},
		}), nil

	case "textureGrad":
		if len(args) < 4 {
			return 0, fmt.Errorf("textureGrad requires 4 arguments")
		}
		coord, err := l.lowerExpression(args[1], target)
		if err != nil {
			return 0, err
		}
		ddx, err := l.lowerExpression(args[2], target)
		if err != nil {
			return 0, err
		}
		ddy, err := l.lowerExpression(args[3], target)
		if err != nil {
			return 0, err
		}
		return l.addExpression(ir.Expression{
			Kind: ir.ExprImageSample{
				Image:      image,
				Sampler:    sampler,
				Coordinate: coord,
				Level:      ir.SampleLevelGradient{X: ddx, Y: ddy},
			},
		}), nil

	case "texelFetch":
		if len(args) < 3 {
			return 0, fmt.Errorf("texelFetch requires 3 arguments")
		}
		coord, err := l.lowerExpression(args[1], target)
		if err != nil {
			return 0, err
		}
		lod, err := l.lowerExpression(args[2], target)
		if err != nil {
			return 0, err
		}
		return l.addExpression(ir.Expression{
			Kind: ir.ExprImageLoad{
				Image:      image,
				Coordinate: coord,
				Level:      &lod,
			},
		}), nil

	case "textureSize":
		return l.addExpression(ir.Expression{
			Kind: ir.ExprImageQuery{
				Image: image,
				Query: ir.ImageQuerySize{},
			},
		}), nil

	default:
		return 0, fmt.Errorf("unknown texture function: %s", name)
	}
}

// resolveSamplerPair resolves a combined sampler argument to its image
// and sampler global expressions.
func (l *Lowerer) resolveSamplerPair(expr Expr, target *[]ir.Statement) (image, sampler ir.ExpressionHandle, err error) {
	ident, ok := expr.(*Ident)
	if !ok {
		return 0, 0, fmt.Errorf("sampler argument must be a uniform name")
	}
	imageGlobal, ok := l.globals[ident.Name]
	if !ok {
		return 0, 0, fmt.Errorf("unknown sampler: %s", ident.Name)
	}
	samplerGlobal, ok := l.samplers[imageGlobal]
	if !ok {
		return 0, 0, fmt.Errorf("'%s' is not a sampler uniform", ident.Name)
	}

	image = l.addExpression(ir.Expression{
		Kind: ir.ExprGlobalVariable{Variable: imageGlobal},
	})
	sampler = l.addExpression(ir.Expression{
		Kind: ir.ExprGlobalVariable{Variable: samplerGlobal},
	})
	return image, sampler, nil
}

// lowerConstruct converts a type constructor to IR.
func (l *Lowerer) lowerConstruct(cons *ConstructExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	typeHandle, err := l.resolveType(cons.Type)
	if err != nil {
		return 0, err
	}

	components := make([]ir.ExpressionHandle, len(cons.Args))
	for i, arg := range cons.Args {
		handle, err := l.lowerExpression(arg, target)
		if err != nil {
			return 0, err
		}
		components[i] = handle
	}

	typ, _ := l.registry.Lookup(typeHandle)

	// Scalar constructors with one argument are conversions: float(x).
	if len(components) == 1 {
		if scalar, ok := typ.Inner.(ir.ScalarType); ok {
			width := scalar.Width
			return l.addExpression(ir.Expression{
				Kind: ir.ExprAs{
					Expr:    components[0],
					Kind:    scalar.Kind,
					Convert: &width,
				},
			}), nil
		}
	}

	if vec, ok := typ.Inner.(ir.VectorType); ok && len(components) == 1 {
		argType, err := ir.ResolveExpressionType(l.module, l.currentFunc, components[0])
		if err == nil {
			argInner, _, _ := l.resolveTypeInner(argType)
			if argVec, ok := argInner.(ir.VectorType); ok && argVec.Size == vec.Size {
				// Vector conversion: ivec2(someVec2)
				width := vec.Scalar.Width
				return l.addExpression(ir.Expression{
					Kind: ir.ExprAs{
						Expr:    components[0],
						Kind:    vec.Scalar.Kind,
						Convert: &width,
					},
				}), nil
			}
		}

		// Splat constructor: vec3(0.0)
		needed := int(vec.Size)
		splatted := make([]ir.ExpressionHandle, needed)
		for i := 0; i < needed; i++ {
			splatted[i] = components[0]
		}
		components = splatted
	}

	return l.addExpression(ir.Expression{
		Kind: ir.ExprCompose{Type: typeHandle, Components: components},
	}), nil
}

// lowerMember converts a member access or swizzle to IR.
func (l *Lowerer) lowerMember(mem *MemberExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	base, err := l.lowerExpression(mem.Expr, target)
	if err != nil {
		return 0, err
	}

	baseType, err := ir.ResolveExpressionType(l.module, l.currentFunc, base)
	if err != nil {
		return 0, fmt.Errorf("member access base type: %w", err)
	}

	if index, ok, err := l.structMemberIndex(baseType, mem.Member); err != nil {
		return 0, err
	} else if ok {
		return l.addExpression(ir.Expression{
			Kind: ir.ExprAccessIndex{Base: base, Index: index},
		}), nil
	}

	vec, ok, err := l.vectorType(baseType)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("unsupported member access %q", mem.Member)
	}

	if len(mem.Member) == 1 {
		index, err := l.swizzleIndex(mem.Member, vec.Size)
		if err != nil {
			return 0, err
		}
		return l.addExpression(ir.Expression{
			Kind: ir.ExprAccessIndex{Base: base, Index: index},
		}), nil
	}
	size, pattern, err := l.swizzlePattern(mem.Member, vec.Size)
	if err != nil {
		return 0, err
	}
	return l.addExpression(ir.Expression{
		Kind: ir.ExprSwizzle{Size: size, Vector: base, Pattern: pattern},
	}), nil
}

// lowerIndex converts an index expression to IR.
func (l *Lowerer) lowerIndex(idx *IndexExpr, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	base, err := l.lowerExpression(idx.Expr, target)
	if err != nil {
		return 0, err
	}
	index, err := l.lowerExpression(idx.Index, target)
	if err != nil {
		return 0, err
	}
	return l.addExpression(ir.Expression{
		Kind: ir.ExprAccess{Base: base, Index: index},
	}), nil
}

// Helper methods

func (l *Lowerer) addExpression(expr ir.Expression) ir.ExpressionHandle {
	handle := l.currentExprIdx
	l.currentExprIdx++
	l.currentFunc.Expressions = append(l.currentFunc.Expressions, expr)

	exprType, err := ir.ResolveExpressionType(l.module, l.currentFunc, handle)
	if err != nil {
		exprType = ir.TypeResolution{}
	}
	l.currentFunc.ExpressionTypes = append(l.currentFunc.ExpressionTypes, exprType)

	return handle
}

// glslBuiltinVar describes a gl_* built-in variable.
type glslBuiltinVar struct {
	inner   ir.TypeInner
	output  bool
	binding ir.Binding
	stage   ir.ShaderStage
}

var floatScalar = ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
var uintScalar = ir.ScalarType{Kind: ir.ScalarUint, Width: 4}
var boolScalar = ir.ScalarType{Kind: ir.ScalarBool, Width: 1}

var glslBuiltins = map[string]glslBuiltinVar{
	"gl_Position": {
		inner:   ir.VectorType{Size: ir.Vec4, Scalar: floatScalar},
		output:  true,
		binding: ir.BuiltinBinding{Builtin: ir.BuiltinPosition},
		stage:   ir.StageVertex,
	},
	"gl_FragCoord": {
		inner:   ir.VectorType{Size: ir.Vec4, Scalar: floatScalar},
		binding: ir.BuiltinBinding{Builtin: ir.BuiltinPosition},
		stage:   ir.StageFragment,
	},
	"gl_FragColor": {
		inner:   ir.VectorType{Size: ir.Vec4, Scalar: floatScalar},
		output:  true,
		binding: ir.LocationBinding{Location: 0},
		stage:   ir.StageFragment,
	},
	"gl_FragDepth": {
		inner:   floatScalar,
		output:  true,
		binding: ir.BuiltinBinding{Builtin: ir.BuiltinFragDepth},
		stage:   ir.StageFragment,
	},
	"gl_FrontFacing": {
		inner:   boolScalar,
		binding: ir.BuiltinBinding{Builtin: ir.BuiltinFrontFacing},
		stage:   ir.StageFragment,
	},
	"gl_VertexIndex": {
		inner:   uintScalar,
		binding: ir.BuiltinBinding{Builtin: ir.BuiltinVertexIndex},
		stage:   ir.StageVertex,
	},
	"gl_InstanceIndex": {
		inner:   uintScalar,
		binding: ir.BuiltinBinding{Builtin: ir.BuiltinInstanceIndex},
		stage:   ir.StageVertex,
	},
	"gl_GlobalInvocationID": {
		inner:   ir.VectorType{Size: ir.Vec3, Scalar: uintScalar},
		binding: ir.BuiltinBinding{Builtin: ir.BuiltinGlobalInvocationID},
		stage:   ir.StageCompute,
	},
	"gl_LocalInvocationID": {
		inner:   ir.VectorType{Size: ir.Vec3, Scalar: uintScalar},
		binding: ir.BuiltinBinding{Builtin: ir.BuiltinLocalInvocationID},
		stage:   ir.StageCompute,
	},
	"gl_WorkGroupID": {
		inner:   ir.VectorType{Size: ir.Vec3, Scalar: uintScalar},
		binding: ir.BuiltinBinding{Builtin: ir.BuiltinWorkGroupID},
		stage:   ir.StageCompute,
	},
}

// resolveIdentifier resolves a name to an expression handle. gl_*
// built-ins materialize a private global plus a stage interface entry on
// first use.
func (l *Lowerer) resolveIdentifier(name string, target *[]ir.Statement) (ir.ExpressionHandle, error) {
	if handle, ok := l.locals[name]; ok {
		return handle, nil
	}

	if handle, ok := l.moduleConstants[name]; ok {
		return l.addExpression(ir.Expression{
			Kind: ir.ExprConstant{Constant: handle},
		}), nil
	}

	if expr, ok := l.constExprs[name]; ok {
		return l.lowerExpression(expr, target)
	}

	if member, ok := l.blockMembers[name]; ok {
		base := l.addExpression(ir.Expression{
			Kind: ir.ExprGlobalVariable{Variable: member.global},
		})
		return l.addExpression(ir.Expression{
			Kind: ir.ExprAccessIndex{Base: base, Index: member.index},
		}), nil
	}

	if handle, ok := l.globals[name]; ok {
		return l.addExpression(ir.Expression{
			Kind: ir.ExprGlobalVariable{Variable: handle},
		}), nil
	}

	if builtin, ok := glslBuiltins[name]; ok {
		if builtin.stage != l.stage {
			return 0, fmt.Errorf("%s is not available in this shader stage", name)
		}
		handle := l.declareBuiltin(name, builtin)
		return l.addExpression(ir.Expression{
			Kind: ir.ExprGlobalVariable{Variable: handle},
		}), nil
	}

	return 0, fmt.Errorf("unresolved identifier: %s", name)
}

// declareBuiltin creates the private global backing a gl_* variable.
func (l *Lowerer) declareBuiltin(name string, builtin glslBuiltinVar) ir.GlobalVariableHandle {
	typeHandle := l.registerType("", builtin.inner)

	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, ir.GlobalVariable{
		Name:  name,
		Space: ir.SpacePrivate,
		Type:  typeHandle,
	})
	l.globals[name] = handle

	io := &ioVar{
		name:    name,
		global:  handle,
		typ:     typeHandle,
		binding: builtin.binding,
		output:  builtin.output,
	}
	l.ioVars = append(l.ioVars, io)
	l.ioByName[name] = io
	return handle
}

// resolveType converts a GLSL type to an IR type handle.
func (l *Lowerer) resolveType(typ Type) (ir.TypeHandle, error) {
	switch t := typ.(type) {
	case *NamedType:
		return l.resolveNamedType(t)
	case *ArrayType:
		base, err := l.resolveType(t.Element)
		if err != nil {
			return 0, err
		}
		return l.arrayOf(base, t.Size)
	default:
		return 0, fmt.Errorf("unsupported type: %T", typ)
	}
}

// arrayOf builds an IR array type with a constant size.
func (l *Lowerer) arrayOf(base ir.TypeHandle, sizeExpr Expr) (ir.TypeHandle, error) {
	var size ir.ArraySize
	if sizeExpr != nil {
		lit, ok := sizeExpr.(*Literal)
		if !ok || lit.Kind != TokenIntLiteral {
			return 0, fmt.Errorf("array size must be an integer literal")
		}
		n, err := strconv.ParseUint(lit.Value, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid array size: %s", lit.Value)
		}
		constSize := uint32(n)
		size.Constant = &constSize
	}
	elemAlign, elemSize := l.typeAlignmentAndSize(base)
	stride := (elemSize + elemAlign - 1) &^ (elemAlign - 1)
	return l.registerType("", ir.ArrayType{Base: base, Size: size, Stride: stride}), nil
}

func (l *Lowerer) resolveNamedType(t *NamedType) (ir.TypeHandle, error) {
	if handle, ok := l.types[t.Name]; ok {
		return handle, nil
	}

	if inner, ok := glslTypeInner(t.Name); ok {
		return l.registerType("", inner), nil
	}

	return 0, fmt.Errorf("unknown type: %s", t.Name)
}

// glslTypeInner maps GLSL type keywords to IR type inners.
func glslTypeInner(name string) (ir.TypeInner, bool) {
	vec := func(size ir.VectorSize, scalar ir.ScalarType) ir.TypeInner {
		return ir.VectorType{Size: size, Scalar: scalar}
	}
	mat := func(cols, rows ir.VectorSize) ir.TypeInner {
		return ir.MatrixType{Columns: cols, Rows: rows, Scalar: floatScalar}
	}
	intScalar := ir.ScalarType{Kind: ir.ScalarSint, Width: 4}

	switch name {
	case "vec2":
		return vec(ir.Vec2, floatScalar), true
	case "vec3":
		return vec(ir.Vec3, floatScalar), true
	case "vec4":
		return vec(ir.Vec4, floatScalar), true
	case "ivec2":
		return vec(ir.Vec2, intScalar), true
	case "ivec3":
		return vec(ir.Vec3, intScalar), true
	case "ivec4":
		return vec(ir.Vec4, intScalar), true
	case "uvec2":
		return vec(ir.Vec2, uintScalar), true
	case "uvec3":
		return vec(ir.Vec3, uintScalar), true
	case "uvec4":
		return vec(ir.Vec4, uintScalar), true
	case "bvec2":
		return vec(ir.Vec2, boolScalar), true
	case "bvec3":
		return vec(ir.Vec3, boolScalar), true
	case "bvec4":
		return vec(ir.Vec4, boolScalar), true
	case "mat2", "mat2x2":
		return mat(ir.Vec2, ir.Vec2), true
	case "mat3", "mat3x3":
		return mat(ir.Vec3, ir.Vec3), true
	case "mat4", "mat4x4":
		return mat(ir.Vec4, ir.Vec4), true
	case "mat2x3":
		return mat(ir.Vec2, ir.Vec3), true
	case "mat2x4":
		return mat(ir.Vec2, ir.Vec4), true
	case "mat3x2":
		return mat(ir.Vec3, ir.Vec2), true
	case "mat3x4":
		return mat(ir.Vec3, ir.Vec4), true
	case "mat4x2":
		return mat(ir.Vec4, ir.Vec2), true
	case "mat4x3":
		return mat(ir.Vec4, ir.Vec3), true
	}

	if img, ok := samplerImageType(name); ok {
		return img, true
	}
	return nil, false
}

// binaryOpTable maps token kinds to binary operators.
var binaryOpTable = map[TokenKind]ir.BinaryOperator{
	TokenPlus:           ir.BinaryAdd,
	TokenMinus:          ir.BinarySubtract,
	TokenStar:           ir.BinaryMultiply,
	TokenSlash:          ir.BinaryDivide,
	TokenPercent:        ir.BinaryModulo,
	TokenEqualEqual:     ir.BinaryEqual,
	TokenBangEqual:      ir.BinaryNotEqual,
	TokenLess:           ir.BinaryLess,
	TokenLessEqual:      ir.BinaryLessEqual,
	TokenGreater:        ir.BinaryGreater,
	TokenGreaterEqual:   ir.BinaryGreaterEqual,
	TokenAmpAmp:         ir.BinaryLogicalAnd,
	TokenPipePipe:       ir.BinaryLogicalOr,
	TokenAmpersand:      ir.BinaryAnd,
	TokenPipe:           ir.BinaryInclusiveOr,
	TokenCaret:          ir.BinaryExclusiveOr,
	TokenLessLess:       ir.BinaryShiftLeft,
	TokenGreaterGreater: ir.BinaryShiftRight,
}

// unaryOpTable maps token kinds to unary operators.
var unaryOpTable = map[TokenKind]ir.UnaryOperator{
	TokenMinus: ir.UnaryNegate,
	TokenBang:  ir.UnaryLogicalNot,
	TokenTilde: ir.UnaryBitwiseNot,
}

func (l *Lowerer) tokenToBinaryOp(tok TokenKind) ir.BinaryOperator {
	if op, ok := binaryOpTable[tok]; ok {
		return op
	}
	return ir.BinaryAdd
}

func (l *Lowerer) tokenToUnaryOp(tok TokenKind) ir.UnaryOperator {
	if op, ok := unaryOpTable[tok]; ok {
		return op
	}
	return ir.UnaryNegate
}

// assignOpTable maps compound assignment token kinds to binary operators.
var assignOpTable = map[TokenKind]ir.BinaryOperator{
	TokenPlusEqual:           ir.BinaryAdd,
	TokenMinusEqual:          ir.BinarySubtract,
	TokenStarEqual:           ir.BinaryMultiply,
	TokenSlashEqual:          ir.BinaryDivide,
	TokenPercentEqual:        ir.BinaryModulo,
	TokenAmpEqual:            ir.BinaryAnd,
	TokenPipeEqual:           ir.BinaryInclusiveOr,
	TokenCaretEqual:          ir.BinaryExclusiveOr,
	TokenLessLessEqual:       ir.BinaryShiftLeft,
	TokenGreaterGreaterEqual: ir.BinaryShiftRight,
}

func (l *Lowerer) assignOpToBinary(tok TokenKind) ir.BinaryOperator {
	if op, ok := assignOpTable[tok]; ok {
		return op
	}
	return ir.BinaryAdd
}

func (l *Lowerer) structMemberIndex(base ir.TypeResolution, name string) (uint32, bool, error) {
	inner, ok, err := l.resolveTypeInner(base)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	st, isStruct := inner.(ir.StructType)
	if !isStruct {
		return 0, false, nil
	}
	for i, member := range st.Members {
		if member.Name == name {
			return uint32(i), true, nil
		}
	}
	return 0, false, fmt.Errorf("struct has no member %q", name)
}

func (l *Lowerer) vectorType(base ir.TypeResolution) (ir.VectorType, bool, error) {
	inner, ok, err := l.resolveTypeInner(base)
	if err != nil {
		return ir.VectorType{}, false, err
	}
	if !ok {
		return ir.VectorType{}, false, nil
	}
	if vec, isVec := inner.(ir.VectorType); isVec {
		return vec, true, nil
	}
	return ir.VectorType{}, false, nil
}

func (l *Lowerer) resolveTypeInner(base ir.TypeResolution) (ir.TypeInner, bool, error) {
	resolvePointer := func(inner ir.TypeInner) (ir.TypeInner, error) {
		pt, ok := inner.(ir.PointerType)
		if !ok {
			return inner, nil
		}
		baseType, ok := l.registry.Lookup(pt.Base)
		if !ok {
			return nil, fmt.Errorf("pointer base type %d out of range", pt.Base)
		}
		return baseType.Inner, nil
	}

	if base.Handle != nil {
		typ, ok := l.registry.Lookup(*base.Handle)
		if !ok {
			return nil, false, fmt.Errorf("type handle %d out of range", *base.Handle)
		}
		inner, err := resolvePointer(typ.Inner)
		if err != nil {
			return nil, false, err
		}
		return inner, true, nil
	}
	if base.Value != nil {
		inner, err := resolvePointer(base.Value)
		if err != nil {
			return nil, false, err
		}
		return inner, true, nil
	}
	return nil, false, nil
}

func (l *Lowerer) swizzleIndex(member string, vecSize ir.VectorSize) (uint32, error) {
	comp, ok := swizzleComponent(member[0])
	if !ok {
		return 0, fmt.Errorf("invalid swizzle component %q", member)
	}
	if uint8(comp) >= uint8(vecSize) {
		return 0, fmt.Errorf("swizzle component %q out of range for vec%v", member, vecSize)
	}
	return uint32(comp), nil
}

func (l *Lowerer) swizzlePattern(member string, vecSize ir.VectorSize) (ir.VectorSize, [4]ir.SwizzleComponent, error) {
	if len(member) < 2 || len(member) > 4 {
		return 0, [4]ir.SwizzleComponent{}, fmt.Errorf("invalid swizzle %q", member)
	}
	var pattern [4]ir.SwizzleComponent
	for i := 0; i < len(member); i++ {
		comp, ok := swizzleComponent(member[i])
		if !ok {
			return 0, [4]ir.SwizzleComponent{}, fmt.Errorf("invalid swizzle component %q", member)
		}
		if uint8(comp) >= uint8(vecSize) {
			return 0, [4]ir.SwizzleComponent{}, fmt.Errorf("swizzle component %q out of range for vec%v", member, vecSize)
		}
		pattern[i] = comp
	}
	var size ir.VectorSize
	switch len(member) {
	case 2:
		size = ir.Vec2
	case 3:
		size = ir.Vec3
	default:
		size = ir.Vec4
	}
	return size, pattern, nil
}

func swizzleComponent(c byte) (ir.SwizzleComponent, bool) {
	switch c {
	case 'x', 'r', 's':
		return ir.SwizzleX, true
	case 'y', 'g', 't':
		return ir.SwizzleY, true
	case 'z', 'b', 'p':
		return ir.SwizzleZ, true
	case 'w', 'a', 'q':
		return ir.SwizzleW, true
	default:
		return 0, false
	}
}
