// Copyright 2026 The ShaderConverter Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/naga/ir"
)

// nameKey identifies an IR entity for name lookup.
type nameKey struct {
	kind    nameKeyKind
	handle1 uint32
	handle2 uint32
}

type nameKeyKind uint8

const (
	nameKeyType nameKeyKind = iota
	nameKeyStructMember
	nameKeyConstant
	nameKeyGlobalVariable
	nameKeyFunction
	nameKeyFunctionArgument
	nameKeyEntryPoint
	nameKeyLocal
)

// Writer generates WGSL source code from IR.
type Writer struct {
	module  *ir.Module
	options *Options

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management
	names map[nameKey]string
	namer *namer

	// Type tracking
	typeNames map[ir.TypeHandle]string

	// Function context (set during function writing)
	currentFunction   *ir.Function
	currentFuncHandle ir.FunctionHandle
	localNames        map[uint32]string
	namedExpressions  map[ir.ExpressionHandle]string

	// Expression baking (expressions materialized to let bindings)
	needBakeExpression map[ir.ExpressionHandle]struct{}

	// Output tracking
	entryPointNames map[string]string
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer() *namer {
	return &namer{
		usedNames: make(map[string]struct{}),
	}
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	escaped := escapeKeyword(base)

	if _, used := n.usedNames[escaped]; !used {
		n.usedNames[escaped] = struct{}{}
		return escaped
	}

	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

// newWriter creates a new WGSL writer.
func newWriter(module *ir.Module, options *Options) *Writer {
	return &Writer{
		module:             module,
		options:            options,
		names:              make(map[nameKey]string),
		namer:              newNamer(),
		typeNames:          make(map[ir.TypeHandle]string),
		entryPointNames:    make(map[string]string),
		namedExpressions:   make(map[ir.ExpressionHandle]string),
		needBakeExpression: make(map[ir.ExpressionHandle]struct{}),
	}
}

// String returns the generated WGSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates WGSL code for the entire module.
func (w *Writer) writeModule() error {
	// 1. Register all names
	if err := w.registerNames(); err != nil {
		return err
	}

	// 2. Write type definitions (structs)
	if err := w.writeTypes(); err != nil {
		return err
	}

	// 3. Write module-scope constants
	if err := w.writeConstants(); err != nil {
		return err
	}

	// 4. Write global variables
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}

	// 5. Write regular functions
	if err := w.writeFunctions(); err != nil {
		return err
	}

	// 6. Write entry points
	return w.writeEntryPoints()
}

// registerNames assigns unique names to all IR entities.
//
//nolint:gocognit // Name registration requires handling all IR entity types
func (w *Writer) registerNames() error {
	// Register type names (only structs need names in WGSL)
	for handle, typ := range w.module.Types {
		if _, ok := typ.Inner.(ir.StructType); !ok {
			continue
		}
		var baseName string
		if typ.Name != "" {
			baseName = typ.Name
		} else {
			baseName = fmt.Sprintf("Struct_%d", handle)
		}
		name := w.namer.call(baseName)
		w.names[nameKey{kind: nameKeyType, handle1: uint32(handle)}] = name //nolint:gosec // G115: handle is valid slice index
		w.typeNames[ir.TypeHandle(handle)] = name                           //nolint:gosec // G115: handle is valid slice index

		st := typ.Inner.(ir.StructType)
		for memberIdx, member := range st.Members {
			memberName := member.Name
			if memberName == "" {
				memberName = fmt.Sprintf("member_%d", memberIdx)
			}
			w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: uint32(memberIdx)}] = escapeKeyword(memberName) //nolint:gosec // G115: handle is valid slice index
		}
	}

	// Register constant names
	for handle, constant := range w.module.Constants {
		var baseName string
		if constant.Name != "" {
			baseName = constant.Name
		} else {
			baseName = fmt.Sprintf("const_%d", handle)
		}
		name := w.namer.call(baseName)
		w.names[nameKey{kind: nameKeyConstant, handle1: uint32(handle)}] = name //nolint:gosec // G115: handle is valid slice index
	}

	// Register global variable names
	for handle, global := range w.module.GlobalVariables {
		var baseName string
		if global.Name != "" {
			baseName = global.Name
		} else {
			baseName = fmt.Sprintf("global_%d", handle)
		}
		name := w.namer.call(baseName)
		w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}] = name //nolint:gosec // G115: handle is valid slice index
	}

	// Entry point functions keep their entry point name; register them first
	// so helper functions cannot steal the name.
	epFunctions := make(map[ir.FunctionHandle]string, len(w.module.EntryPoints))
	for epIdx, ep := range w.module.EntryPoints {
		name := w.namer.call(ep.Name)
		w.names[nameKey{kind: nameKeyEntryPoint, handle1: uint32(epIdx)}] = name //nolint:gosec // G115: epIdx is valid slice index
		w.entryPointNames[ep.Name] = name
		epFunctions[ep.Function] = name
	}

	// Register function names
	for handle := range w.module.Functions {
		fn := &w.module.Functions[handle]

		if epName, ok := epFunctions[ir.FunctionHandle(handle)]; ok { //nolint:gosec // G115: handle is valid slice index
			w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}] = epName //nolint:gosec // G115: handle is valid slice index
		} else {
			var baseName string
			if fn.Name != "" {
				baseName = fn.Name
			} else {
				baseName = fmt.Sprintf("function_%d", handle)
			}
			name := w.namer.call(baseName)
			w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}] = name //nolint:gosec // G115: handle is valid slice index
		}

		for argIdx, arg := range fn.Arguments {
			argName := arg.Name
			if argName == "" {
				argName = fmt.Sprintf("arg_%d", argIdx)
			}
			w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}] = escapeKeyword(argName) //nolint:gosec // G115: handle is valid slice index
		}
	}

	return nil
}

// writeTypes writes struct type definitions.
func (w *Writer) writeTypes() error {
	for handle, typ := range w.module.Types {
		st, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}

		typeName := w.typeNames[ir.TypeHandle(handle)] //nolint:gosec // G115: handle is valid slice index
		w.writeLine("struct %s {", typeName)
		w.pushIndent()

		for memberIdx, member := range st.Members {
			memberName := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: uint32(memberIdx)}] //nolint:gosec // G115: handle is valid slice index
			attrs := ""
			if member.Binding != nil {
				a, err := bindingAttributes(*member.Binding)
				if err != nil {
					return err
				}
				attrs = a + " "
			}
			w.writeLine("%s%s: %s,", attrs, memberName, w.getTypeName(member.Type))
		}

		w.popIndent()
		w.writeLine("}")
		w.writeLine("")
	}
	return nil
}

// writeConstants writes module-scope constant declarations.
func (w *Writer) writeConstants() error {
	for handle, constant := range w.module.Constants {
		name := w.names[nameKey{kind: nameKeyConstant, handle1: uint32(handle)}] //nolint:gosec // G115: handle is valid slice index
		value, err := w.writeConstantValue(constant)
		if err != nil {
			return err
		}
		w.writeLine("const %s: %s = %s;", name, w.getTypeName(constant.Type), value)
	}
	if len(w.module.Constants) > 0 {
		w.writeLine("")
	}
	return nil
}

// writeConstantValue returns the WGSL representation of a constant value.
func (w *Writer) writeConstantValue(constant ir.Constant) (string, error) {
	switch v := constant.Value.(type) {
	case ir.ScalarValue:
		return w.writeScalarValue(v, constant.Type), nil
	case ir.CompositeValue:
		typeName := w.getTypeName(constant.Type)
		components := make([]string, 0, len(v.Components))
		for _, compHandle := range v.Components {
			if int(compHandle) >= len(w.module.Constants) {
				return "", fmt.Errorf("invalid constant handle: %d", compHandle)
			}
			comp, err := w.writeConstantValue(w.module.Constants[compHandle])
			if err != nil {
				return "", err
			}
			components = append(components, comp)
		}
		return fmt.Sprintf("%s(%s)", typeName, strings.Join(components, ", ")), nil
	default:
		return "", fmt.Errorf("unsupported constant value: %T", constant.Value)
	}
}

// writeScalarValue returns the WGSL representation of a scalar value.
func (w *Writer) writeScalarValue(v ir.ScalarValue, typeHandle ir.TypeHandle) string {
	switch v.Kind {
	case ir.ScalarBool:
		if v.Bits != 0 {
			return "true"
		}
		return "false"
	case ir.ScalarSint:
		return fmt.Sprintf("%di", int32(v.Bits)) //nolint:gosec // G115: stored as 32-bit pattern
	case ir.ScalarUint:
		return fmt.Sprintf("%du", uint32(v.Bits)) //nolint:gosec // G115: stored as 32-bit pattern
	case ir.ScalarFloat:
		width := uint8(4)
		if int(typeHandle) < len(w.module.Types) {
			if scalar, ok := w.module.Types[typeHandle].Inner.(ir.ScalarType); ok {
				width = scalar.Width
			}
		}
		if width == 4 {
			return formatFloat(math.Float32frombits(uint32(v.Bits))) //nolint:gosec // G115: stored as 32-bit pattern
		}
		return formatFloat64(math.Float64frombits(v.Bits))
	default:
		return "0"
	}
}

// writeGlobalVariables writes module-scope variable declarations.
func (w *Writer) writeGlobalVariables() error {
	for handle, global := range w.module.GlobalVariables {
		name := w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}] //nolint:gosec // G115: handle is valid slice index
		typeName := w.getTypeName(global.Type)

		prefix := ""
		if global.Binding != nil {
			prefix = fmt.Sprintf("@group(%d) @binding(%d) ", global.Binding.Group, global.Binding.Binding)
		}

		space, err := addressSpaceDecl(global.Space)
		if err != nil {
			return err
		}

		if global.Init != nil {
			if int(*global.Init) >= len(w.module.Constants) {
				return fmt.Errorf("invalid constant handle: %d", *global.Init)
			}
			init, err := w.writeConstantValue(w.module.Constants[*global.Init])
			if err != nil {
				return err
			}
			w.writeLine("%s%s %s: %s = %s;", prefix, space, name, typeName, init)
		} else {
			w.writeLine("%s%s %s: %s;", prefix, space, name, typeName)
		}
	}
	if len(w.module.GlobalVariables) > 0 {
		w.writeLine("")
	}
	return nil
}

// addressSpaceDecl returns the var declaration keyword for an address space.
func addressSpaceDecl(space ir.AddressSpace) (string, error) {
	switch space {
	case ir.SpacePrivate:
		return "var<private>", nil
	case ir.SpaceWorkGroup:
		return "var<workgroup>", nil
	case ir.SpaceUniform:
		return "var<uniform>", nil
	case ir.SpaceStorage:
		return "var<storage, read_write>", nil
	case ir.SpacePushConstant:
		return "var<push_constant>", nil
	case ir.SpaceHandle:
		// Textures and samplers take no address space
		return "var", nil
	default:
		return "", fmt.Errorf("unsupported address space for module-scope variable: %d", space)
	}
}

// writeFunctions writes regular function definitions.
// Entry point functions are skipped; writeEntryPoints emits them with stage attributes.
func (w *Writer) writeFunctions() error {
	epFunctions := make(map[ir.FunctionHandle]bool, len(w.module.EntryPoints))
	for _, ep := range w.module.EntryPoints {
		epFunctions[ep.Function] = true
	}

	for handle := range w.module.Functions {
		if epFunctions[ir.FunctionHandle(handle)] { //nolint:gosec // G115: handle is valid slice index
			continue
		}
		fn := &w.module.Functions[handle]
		if err := w.writeFunction(ir.FunctionHandle(handle), fn, nil); err != nil { //nolint:gosec // G115: handle is valid slice index
			return err
		}
	}
	return nil
}

// writeFunction writes a single function definition.
// ep is non-nil when the function is an entry point.
func (w *Writer) writeFunction(handle ir.FunctionHandle, fn *ir.Function, ep *ir.EntryPoint) error {
	w.currentFunction = fn
	w.currentFuncHandle = handle
	w.localNames = make(map[uint32]string)
	w.namedExpressions = make(map[ir.ExpressionHandle]string)

	name := w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}]

	if ep != nil {
		w.writeLine("%s", stageAttributes(ep))
	}

	// Arguments
	args := make([]string, 0, len(fn.Arguments))
	for argIdx, arg := range fn.Arguments {
		argName := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}] //nolint:gosec // G115: argIdx is bounded by slice length
		attrs := ""
		if arg.Binding != nil {
			a, err := bindingAttributes(*arg.Binding)
			if err != nil {
				return err
			}
			attrs = a + " "
		}
		args = append(args, fmt.Sprintf("%s%s: %s", attrs, argName, w.getTypeName(arg.Type)))
	}

	// Return type
	returnClause := ""
	if fn.Result != nil {
		attrs := ""
		if fn.Result.Binding != nil {
			a, err := bindingAttributes(*fn.Result.Binding)
			if err != nil {
				return err
			}
			attrs = a + " "
		}
		returnClause = fmt.Sprintf(" -> %s%s", attrs, w.getTypeName(fn.Result.Type))
	}

	w.writeLine("fn %s(%s)%s {", name, strings.Join(args, ", "), returnClause)
	w.pushIndent()

	if err := w.writeLocalVars(fn); err != nil {
		return err
	}

	if err := w.writeBlock(ir.Block(fn.Body)); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")
	w.writeLine("")

	w.currentFunction = nil
	return nil
}

// writeEntryPoints writes entry point functions with their stage attributes.
func (w *Writer) writeEntryPoints() error {
	for i := range w.module.EntryPoints {
		ep := &w.module.EntryPoints[i]
		if w.options.EntryPoint != "" && ep.Name != w.options.EntryPoint {
			continue
		}
		fn := &w.module.Functions[ep.Function]
		if err := w.writeFunction(ep.Function, fn, ep); err != nil {
			return err
		}
	}
	return nil
}

// stageAttributes returns the attribute line for an entry point.
func stageAttributes(ep *ir.EntryPoint) string {
	switch ep.Stage {
	case ir.StageVertex:
		return "@vertex"
	case ir.StageFragment:
		return "@fragment"
	case ir.StageCompute:
		x, y, z := ep.Workgroup[0], ep.Workgroup[1], ep.Workgroup[2]
		if x == 0 {
			x = 1
		}
		if y == 0 {
			y = 1
		}
		if z == 0 {
			z = 1
		}
		return fmt.Sprintf("@compute @workgroup_size(%d, %d, %d)", x, y, z)
	default:
		return "@fragment"
	}
}

// bindingAttributes returns the WGSL attributes for an I/O binding.
func bindingAttributes(binding ir.Binding) (string, error) {
	switch b := binding.(type) {
	case ir.LocationBinding:
		attr := fmt.Sprintf("@location(%d)", b.Location)
		if b.Interpolation != nil {
			interp, err := interpolationName(b.Interpolation.Kind)
			if err != nil {
				return "", err
			}
			attr += fmt.Sprintf(" @interpolate(%s)", interp)
		}
		return attr, nil
	case ir.BuiltinBinding:
		name, err := builtinName(b.Builtin)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("@builtin(%s)", name), nil
	default:
		return "", fmt.Errorf("unsupported binding: %T", binding)
	}
}

// interpolationName returns the WGSL interpolation type name.
func interpolationName(kind ir.InterpolationKind) (string, error) {
	switch kind {
	case ir.InterpolationFlat:
		return "flat", nil
	case ir.InterpolationLinear:
		return "linear", nil
	case ir.InterpolationPerspective:
		return "perspective", nil
	default:
		return "", fmt.Errorf("unsupported interpolation kind: %d", kind)
	}
}

// builtinName returns the WGSL builtin value name.
func builtinName(builtin ir.BuiltinValue) (string, error) {
	switch builtin {
	case ir.BuiltinPosition:
		return "position", nil
	case ir.BuiltinVertexIndex:
		return "vertex_index", nil
	case ir.BuiltinInstanceIndex:
		return "instance_index", nil
	case ir.BuiltinFrontFacing:
		return "front_facing", nil
	case ir.BuiltinFragDepth:
		return "frag_depth", nil
	case ir.BuiltinSampleIndex:
		return "sample_index", nil
	case ir.BuiltinSampleMask:
		return "sample_mask", nil
	case ir.BuiltinLocalInvocationID:
		return "local_invocation_id", nil
	case ir.BuiltinLocalInvocationIndex:
		return "local_invocation_index", nil
	case ir.BuiltinGlobalInvocationID:
		return "global_invocation_id", nil
	case ir.BuiltinWorkGroupID:
		return "workgroup_id", nil
	case ir.BuiltinNumWorkGroups:
		return "num_workgroups", nil
	default:
		return "", fmt.Errorf("unsupported builtin value: %d", builtin)
	}
}

// writeLocalVars writes local variable declarations.
func (w *Writer) writeLocalVars(fn *ir.Function) error {
	for localIdx, local := range fn.LocalVars {
		localName := w.namer.call(local.Name)
		w.localNames[uint32(localIdx)] = localName //nolint:gosec // G115: localIdx is valid slice index
		typeName := w.getTypeName(local.Type)

		if local.Init != nil {
			initStr, err := w.writeExpression(*local.Init)
			if err != nil {
				return err
			}
			w.writeLine("var %s: %s = %s;", localName, typeName, initStr)
		} else {
			w.writeLine("var %s: %s;", localName, typeName)
		}
	}
	return nil
}

// Output helpers

// writeLine writes a line with indentation and newline.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// formatFloat formats a float32 for WGSL output.
func formatFloat(f float32) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatFloat64 formats a float64 for WGSL output.
// WGSL has no 64-bit float literals, so the value is emitted as f32.
func formatFloat64(f float64) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
