// Copyright 2026 The ShaderConverter Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga/ir"
)

// writeExpression writes an expression and returns its WGSL representation.
func (w *Writer) writeExpression(handle ir.ExpressionHandle) (string, error) {
	// Check if this expression was already named
	if name, ok := w.namedExpressions[handle]; ok {
		return name, nil
	}

	if w.currentFunction == nil {
		return "", fmt.Errorf("no current function context")
	}

	if int(handle) >= len(w.currentFunction.Expressions) {
		return "", fmt.Errorf("invalid expression handle: %d", handle)
	}

	expr := &w.currentFunction.Expressions[handle]
	return w.writeExpressionKind(expr.Kind, handle)
}

// writeExpressionKind writes the expression based on its kind.
//
//nolint:gocyclo,cyclop // Expression handling requires many cases
func (w *Writer) writeExpressionKind(kind ir.ExpressionKind, _ ir.ExpressionHandle) (string, error) {
	switch k := kind.(type) {
	case ir.Literal:
		return w.writeLiteral(k)
	case ir.ExprConstant:
		return w.names[nameKey{kind: nameKeyConstant, handle1: uint32(k.Constant)}], nil
	case ir.ExprZeroValue:
		return fmt.Sprintf("%s()", w.getTypeName(k.Type)), nil
	case ir.ExprCompose:
		return w.writeCompose(k)
	case ir.ExprAccess:
		return w.writeAccess(k)
	case ir.ExprAccessIndex:
		return w.writeAccessIndex(k)
	case ir.ExprSplat:
		return w.writeSplat(k)
	case ir.ExprSwizzle:
		return w.writeSwizzle(k)
	case ir.ExprFunctionArgument:
		return w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(w.currentFuncHandle), handle2: k.Index}], nil
	case ir.ExprGlobalVariable:
		return w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(k.Variable)}], nil
	case ir.ExprLocalVariable:
		return w.writeLocalVariable(k)
	case ir.ExprLoad:
		// Loads from var references are implicit in WGSL source form
		return w.writeExpression(k.Pointer)
	case ir.ExprUnary:
		return w.writeUnary(k)
	case ir.ExprBinary:
		return w.writeBinary(k)
	case ir.ExprSelect:
		return w.writeSelect(k)
	case ir.ExprRelational:
		return w.writeRelational(k)
	case ir.ExprMath:
		return w.writeMath(k)
	case ir.ExprDerivative:
		return w.writeDerivative(k)
	case ir.ExprImageSample:
		return w.writeImageSample(k)
	case ir.ExprImageLoad:
		return w.writeImageLoad(k)
	case ir.ExprImageQuery:
		return w.writeImageQuery(k)
	case ir.ExprAs:
		return w.writeAs(k)
	case ir.ExprCallResult:
		return w.writeCallResult(k)
	case ir.ExprArrayLength:
		return w.writeArrayLength(k)
	default:
		return "", fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

// writeLiteral writes a literal expression.
func (w *Writer) writeLiteral(lit ir.Literal) (string, error) {
	switch v := lit.Value.(type) {
	case ir.LiteralBool:
		if v {
			return "true", nil
		}
		return "false", nil
	case ir.LiteralI32:
		return fmt.Sprintf("%di", int32(v)), nil
	case ir.LiteralU32:
		return fmt.Sprintf("%du", uint32(v)), nil
	case ir.LiteralF32:
		return formatFloat(float32(v)), nil
	case ir.LiteralF64:
		return formatFloat64(float64(v)), nil
	case ir.LiteralAbstractInt:
		return fmt.Sprintf("%d", int64(v)), nil
	case ir.LiteralAbstractFloat:
		return formatFloat64(float64(v)), nil
	default:
		return "", fmt.Errorf("unsupported literal value: %T", lit.Value)
	}
}

// writeCompose writes a composite construction expression.
func (w *Writer) writeCompose(c ir.ExprCompose) (string, error) {
	typeName := w.getTypeName(c.Type)

	components := make([]string, 0, len(c.Components))
	for _, comp := range c.Components {
		compStr, err := w.writeExpression(comp)
		if err != nil {
			return "", err
		}
		components = append(components, compStr)
	}

	return fmt.Sprintf("%s(%s)", typeName, strings.Join(components, ", ")), nil
}

// writeAccess writes an indexed access expression with a dynamic index.
func (w *Writer) writeAccess(a ir.ExprAccess) (string, error) {
	base, err := w.writeExpression(a.Base)
	if err != nil {
		return "", err
	}
	index, err := w.writeExpression(a.Index)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s[%s]", base, index), nil
}

// writeAccessIndex writes a constant-index access expression.
// Struct member accesses are written with dot notation.
func (w *Writer) writeAccessIndex(a ir.ExprAccessIndex) (string, error) {
	base, err := w.writeExpression(a.Base)
	if err != nil {
		return "", err
	}

	if st, handle, ok := w.structTypeOf(a.Base); ok {
		if int(a.Index) < len(st.Members) {
			memberName := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: a.Index}]
			if memberName != "" {
				return fmt.Sprintf("%s.%s", base, memberName), nil
			}
		}
	}

	return fmt.Sprintf("%s[%d]", base, a.Index), nil
}

// structTypeOf resolves the struct type of an expression, if it has one.
func (w *Writer) structTypeOf(handle ir.ExpressionHandle) (ir.StructType, ir.TypeHandle, bool) {
	if w.currentFunction == nil || int(handle) >= len(w.currentFunction.ExpressionTypes) {
		return ir.StructType{}, 0, false
	}
	resolution := &w.currentFunction.ExpressionTypes[handle]
	if resolution.Handle == nil || int(*resolution.Handle) >= len(w.module.Types) {
		return ir.StructType{}, 0, false
	}
	st, ok := w.module.Types[*resolution.Handle].Inner.(ir.StructType)
	return st, *resolution.Handle, ok
}

// writeSplat writes a splat expression (scalar to vector).
func (w *Writer) writeSplat(s ir.ExprSplat) (string, error) {
	value, err := w.writeExpression(s.Value)
	if err != nil {
		return "", err
	}
	// WGSL vector constructors broadcast a single scalar
	return fmt.Sprintf("vec%d(%s)", s.Size, value), nil
}

// writeSwizzle writes a swizzle expression.
func (w *Writer) writeSwizzle(s ir.ExprSwizzle) (string, error) {
	vector, err := w.writeExpression(s.Vector)
	if err != nil {
		return "", err
	}

	components := "xyzw"
	var swizzle string
	for i := ir.VectorSize(0); i < s.Size; i++ {
		if int(s.Pattern[i]) < len(components) {
			swizzle += string(components[s.Pattern[i]])
		}
	}

	return fmt.Sprintf("%s.%s", vector, swizzle), nil
}

// writeLocalVariable writes a local variable reference.
func (w *Writer) writeLocalVariable(l ir.ExprLocalVariable) (string, error) {
	if name, ok := w.localNames[l.Variable]; ok {
		return name, nil
	}
	return fmt.Sprintf("local_%d", l.Variable), nil
}

// writeUnary writes a unary expression.
func (w *Writer) writeUnary(u ir.ExprUnary) (string, error) {
	operand, err := w.writeExpression(u.Expr)
	if err != nil {
		return "", err
	}

	switch u.Op {
	case ir.UnaryNegate:
		return fmt.Sprintf("-(%s)", operand), nil
	case ir.UnaryLogicalNot:
		return fmt.Sprintf("!(%s)", operand), nil
	case ir.UnaryBitwiseNot:
		return fmt.Sprintf("~(%s)", operand), nil
	default:
		return "", fmt.Errorf("unsupported unary operator: %v", u.Op)
	}
}

// binaryOpToken maps binary operators to WGSL operator tokens.
func binaryOpToken(op ir.BinaryOperator) (string, error) {
	switch op {
	case ir.BinaryAdd:
		return "+", nil
	case ir.BinarySubtract:
		return "-", nil
	case ir.BinaryMultiply:
		return "*", nil
	case ir.BinaryDivide:
		return "/", nil
	case ir.BinaryModulo:
		return "%", nil
	case ir.BinaryEqual:
		return "==", nil
	case ir.BinaryNotEqual:
		return "!=", nil
	case ir.BinaryLess:
		return "<", nil
	case ir.BinaryLessEqual:
		return "<=", nil
	case ir.BinaryGreater:
		return ">", nil
	case ir.BinaryGreaterEqual:
		return ">=", nil
	case ir.BinaryAnd:
		return "&", nil
	case ir.BinaryExclusiveOr:
		return "^", nil
	case ir.BinaryInclusiveOr:
		return "|", nil
	case ir.BinaryLogicalAnd:
		return "&&", nil
	case ir.BinaryLogicalOr:
		return "||", nil
	case ir.BinaryShiftLeft:
		return "<<", nil
	case ir.BinaryShiftRight:
		return ">>", nil
	default:
		return "", fmt.Errorf("unsupported binary operator: %v", op)
	}
}

// writeBinary writes a binary expression.
func (w *Writer) writeBinary(b ir.ExprBinary) (string, error) {
	left, err := w.writeExpression(b.Left)
	if err != nil {
		return "", err
	}
	right, err := w.writeExpression(b.Right)
	if err != nil {
		return "", err
	}
	op, err := binaryOpToken(b.Op)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

// writeSelect writes a select expression.
func (w *Writer) writeSelect(s ir.ExprSelect) (string, error) {
	condition, err := w.writeExpression(s.Condition)
	if err != nil {
		return "", err
	}
	accept, err := w.writeExpression(s.Accept)
	if err != nil {
		return "", err
	}
	reject, err := w.writeExpression(s.Reject)
	if err != nil {
		return "", err
	}
	// WGSL select takes the false branch first
	return fmt.Sprintf("select(%s, %s, %s)", reject, accept, condition), nil
}

// writeRelational writes a relational expression.
func (w *Writer) writeRelational(r ir.ExprRelational) (string, error) {
	argument, err := w.writeExpression(r.Argument)
	if err != nil {
		return "", err
	}

	switch r.Fun {
	case ir.RelationalAll:
		return fmt.Sprintf("all(%s)", argument), nil
	case ir.RelationalAny:
		return fmt.Sprintf("any(%s)", argument), nil
	case ir.RelationalIsNan, ir.RelationalIsInf:
		return "", fmt.Errorf("NaN and infinity tests are not available in WGSL")
	default:
		return "", fmt.Errorf("unsupported relational function: %v", r.Fun)
	}
}

// mathFunctionName maps an IR math function to its WGSL builtin name.
//
//nolint:gocyclo,cyclop // Math functions require many cases
func mathFunctionName(fun ir.MathFunction) (string, error) {
	switch fun {
	case ir.MathAbs:
		return "abs", nil
	case ir.MathMin:
		return "min", nil
	case ir.MathMax:
		return "max", nil
	case ir.MathClamp:
		return "clamp", nil
	case ir.MathSaturate:
		return "saturate", nil
	case ir.MathCos:
		return "cos", nil
	case ir.MathCosh:
		return "cosh", nil
	case ir.MathSin:
		return "sin", nil
	case ir.MathSinh:
		return "sinh", nil
	case ir.MathTan:
		return "tan", nil
	case ir.MathTanh:
		return "tanh", nil
	case ir.MathAcos:
		return "acos", nil
	case ir.MathAsin:
		return "asin", nil
	case ir.MathAtan:
		return "atan", nil
	case ir.MathAtan2:
		return "atan2", nil
	case ir.MathAsinh:
		return "asinh", nil
	case ir.MathAcosh:
		return "acosh", nil
	case ir.MathAtanh:
		return "atanh", nil
	case ir.MathRadians:
		return "radians", nil
	case ir.MathDegrees:
		return "degrees", nil
	case ir.MathCeil:
		return "ceil", nil
	case ir.MathFloor:
		return "floor", nil
	case ir.MathRound:
		return "round", nil
	case ir.MathFract:
		return "fract", nil
	case ir.MathTrunc:
		return "trunc", nil
	case ir.MathExp:
		return "exp", nil
	case ir.MathExp2:
		return "exp2", nil
	case ir.MathLog:
		return "log", nil
	case ir.MathLog2:
		return "log2", nil
	case ir.MathPow:
		return "pow", nil
	case ir.MathSqrt:
		return "sqrt", nil
	case ir.MathInverseSqrt:
		return "inverseSqrt", nil
	case ir.MathSign:
		return "sign", nil
	case ir.MathFma:
		return "fma", nil
	case ir.MathMix:
		return "mix", nil
	case ir.MathStep:
		return "step", nil
	case ir.MathSmoothStep:
		return "smoothstep", nil
	case ir.MathDot:
		return "dot", nil
	case ir.MathCross:
		return "cross", nil
	case ir.MathDistance:
		return "distance", nil
	case ir.MathLength:
		return "length", nil
	case ir.MathNormalize:
		return "normalize", nil
	case ir.MathFaceForward:
		return "faceForward", nil
	case ir.MathReflect:
		return "reflect", nil
	case ir.MathRefract:
		return "refract", nil
	case ir.MathTranspose:
		return "transpose", nil
	case ir.MathDeterminant:
		return "determinant", nil
	case ir.MathCountOneBits:
		return "countOneBits", nil
	case ir.MathReverseBits:
		return "reverseBits", nil
	case ir.MathFirstLeadingBit:
		return "firstLeadingBit", nil
	case ir.MathFirstTrailingBit:
		return "firstTrailingBit", nil
	case ir.MathCountLeadingZeros:
		return "countLeadingZeros", nil
	case ir.MathCountTrailingZeros:
		return "countTrailingZeros", nil
	case ir.MathExtractBits:
		return "extractBits", nil
	case ir.MathInsertBits:
		return "insertBits", nil
	case ir.MathPack4x8snorm:
		return "pack4x8snorm", nil
	case ir.MathPack4x8unorm:
		return "pack4x8unorm", nil
	case ir.MathPack2x16snorm:
		return "pack2x16snorm", nil
	case ir.MathPack2x16unorm:
		return "pack2x16unorm", nil
	case ir.MathPack2x16float:
		return "pack2x16float", nil
	case ir.MathUnpack4x8snorm:
		return "unpack4x8snorm", nil
	case ir.MathUnpack4x8unorm:
		return "unpack4x8unorm", nil
	case ir.MathUnpack2x16snorm:
		return "unpack2x16snorm", nil
	case ir.MathUnpack2x16unorm:
		return "unpack2x16unorm", nil
	case ir.MathUnpack2x16float:
		return "unpack2x16float", nil
	case ir.MathInverse:
		return "", fmt.Errorf("matrix inverse is not available in WGSL")
	case ir.MathOuter:
		return "", fmt.Errorf("outer product is not available in WGSL")
	default:
		return "", fmt.Errorf("unsupported math function: %v", fun)
	}
}

// writeMath writes a math function expression.
func (w *Writer) writeMath(m ir.ExprMath) (string, error) {
	name, err := mathFunctionName(m.Fun)
	if err != nil {
		return "", err
	}

	args := make([]string, 0, 4)
	for _, argHandle := range []*ir.ExpressionHandle{&m.Arg, m.Arg1, m.Arg2, m.Arg3} {
		if argHandle == nil {
			break
		}
		a, err := w.writeExpression(*argHandle)
		if err != nil {
			return "", err
		}
		args = append(args, a)
	}

	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), nil
}

// writeDerivative writes a derivative expression.
func (w *Writer) writeDerivative(d ir.ExprDerivative) (string, error) {
	expr, err := w.writeExpression(d.Expr)
	if err != nil {
		return "", err
	}

	var name string
	switch d.Axis {
	case ir.DerivativeX:
		name = "dpdx"
	case ir.DerivativeY:
		name = "dpdy"
	case ir.DerivativeWidth:
		name = "fwidth"
	default:
		return "", fmt.Errorf("unsupported derivative axis: %v", d.Axis)
	}

	switch d.Control {
	case ir.DerivativeCoarse:
		name += "Coarse"
	case ir.DerivativeFine:
		name += "Fine"
	}

	return fmt.Sprintf("%s(%s)", name, expr), nil
}

// writeImageSample writes a texture sampling expression.
func (w *Writer) writeImageSample(s ir.ExprImageSample) (string, error) {
	image, err := w.writeExpression(s.Image)
	if err != nil {
		return "", err
	}
	sampler, err := w.writeExpression(s.Sampler)
	if err != nil {
		return "", err
	}
	coordinate, err := w.writeExpression(s.Coordinate)
	if err != nil {
		return "", err
	}

	args := []string{image, sampler, coordinate}
	if s.ArrayIndex != nil {
		idx, err := w.writeExpression(*s.ArrayIndex)
		if err != nil {
			return "", err
		}
		args = append(args, idx)
	}

	switch level := s.Level.(type) {
	case ir.SampleLevelExact:
		levelExpr, err := w.writeExpression(level.Level)
		if err != nil {
			return "", err
		}
		args = append(args, levelExpr)
		return fmt.Sprintf("textureSampleLevel(%s)", strings.Join(args, ", ")), nil
	case ir.SampleLevelBias:
		biasExpr, err := w.writeExpression(level.Bias)
		if err != nil {
			return "", err
		}
		args = append(args, biasExpr)
		return fmt.Sprintf("textureSampleBias(%s)", strings.Join(args, ", ")), nil
	case ir.SampleLevelGradient:
		gradX, err := w.writeExpression(level.X)
		if err != nil {
			return "", err
		}
		gradY, err := w.writeExpression(level.Y)
		if err != nil {
			return "", err
		}
		args = append(args, gradX, gradY)
		return fmt.Sprintf("textureSampleGrad(%s)", strings.Join(args, ", ")), nil
	case ir.SampleLevelZero:
		args = append(args, "0.0")
		return fmt.Sprintf("textureSampleLevel(%s)", strings.Join(args, ", ")), nil
	default:
		// SampleLevelAuto: implicit LOD
		return fmt.Sprintf("textureSample(%s)", strings.Join(args, ", ")), nil
	}
}

// writeImageLoad writes a texture load expression.
func (w *Writer) writeImageLoad(l ir.ExprImageLoad) (string, error) {
	image, err := w.writeExpression(l.Image)
	if err != nil {
		return "", err
	}
	coordinate, err := w.writeExpression(l.Coordinate)
	if err != nil {
		return "", err
	}

	args := []string{image, coordinate}
	if l.ArrayIndex != nil {
		idx, err := w.writeExpression(*l.ArrayIndex)
		if err != nil {
			return "", err
		}
		args = append(args, idx)
	}
	switch {
	case l.Level != nil:
		level, err := w.writeExpression(*l.Level)
		if err != nil {
			return "", err
		}
		args = append(args, level)
	case l.Sample != nil:
		sample, err := w.writeExpression(*l.Sample)
		if err != nil {
			return "", err
		}
		args = append(args, sample)
	}

	return fmt.Sprintf("textureLoad(%s)", strings.Join(args, ", ")), nil
}

// writeImageQuery writes a texture query expression.
func (w *Writer) writeImageQuery(q ir.ExprImageQuery) (string, error) {
	image, err := w.writeExpression(q.Image)
	if err != nil {
		return "", err
	}

	switch query := q.Query.(type) {
	case ir.ImageQuerySize:
		if query.Level != nil {
			level, err := w.writeExpression(*query.Level)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("textureDimensions(%s, %s)", image, level), nil
		}
		return fmt.Sprintf("textureDimensions(%s)", image), nil
	case ir.ImageQueryNumLevels:
		return fmt.Sprintf("textureNumLevels(%s)", image), nil
	case ir.ImageQueryNumLayers:
		return fmt.Sprintf("textureNumLayers(%s)", image), nil
	case ir.ImageQueryNumSamples:
		return fmt.Sprintf("textureNumSamples(%s)", image), nil
	default:
		return "", fmt.Errorf("unsupported image query: %T", q.Query)
	}
}

// writeAs writes a conversion or bitcast expression.
func (w *Writer) writeAs(a ir.ExprAs) (string, error) {
	expr, err := w.writeExpression(a.Expr)
	if err != nil {
		return "", err
	}

	scalar := scalarToWGSL(ir.ScalarType{Kind: a.Kind, Width: 4})
	typeName := scalar
	// Conversions of vectors use the matching vector constructor
	if size, ok := w.vectorSizeOf(a.Expr); ok {
		typeName = fmt.Sprintf("vec%d<%s>", size, scalar)
	}

	if a.Convert == nil {
		return fmt.Sprintf("bitcast<%s>(%s)", typeName, expr), nil
	}
	return fmt.Sprintf("%s(%s)", typeName, expr), nil
}

// vectorSizeOf resolves the vector size of an expression, if it is a vector.
func (w *Writer) vectorSizeOf(handle ir.ExpressionHandle) (ir.VectorSize, bool) {
	if w.currentFunction == nil || int(handle) >= len(w.currentFunction.ExpressionTypes) {
		return 0, false
	}
	resolution := &w.currentFunction.ExpressionTypes[handle]
	var inner ir.TypeInner
	if resolution.Handle != nil && int(*resolution.Handle) < len(w.module.Types) {
		inner = w.module.Types[*resolution.Handle].Inner
	} else {
		inner = resolution.Value
	}
	if vec, ok := inner.(ir.VectorType); ok {
		return vec.Size, true
	}
	return 0, false
}

// writeCallResult writes a call result expression.
// Normally the result was baked to a let binding by the call statement.
func (w *Writer) writeCallResult(c ir.ExprCallResult) (string, error) {
	name := w.names[nameKey{kind: nameKeyFunction, handle1: uint32(c.Function)}]
	if name == "" {
		return fmt.Sprintf("call_result_%d", c.Function), nil
	}
	return name, nil
}

// writeArrayLength writes an array length expression.
func (w *Writer) writeArrayLength(a ir.ExprArrayLength) (string, error) {
	expr, err := w.writeExpression(a.Array)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("arrayLength(&%s)", expr), nil
}
