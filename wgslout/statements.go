// Copyright 2026 The ShaderConverter Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga/ir"
)

// writeBlock writes a block of statements.
func (w *Writer) writeBlock(block ir.Block) error {
	for _, stmt := range block {
		if err := w.writeStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// writeStatement writes a single statement.
func (w *Writer) writeStatement(stmt ir.Statement) error {
	return w.writeStatementKind(stmt.Kind)
}

// writeStatementKind writes a statement based on its kind.
func (w *Writer) writeStatementKind(kind ir.StatementKind) error {
	switch k := kind.(type) {
	case ir.StmtEmit:
		return w.writeEmit(k)

	case ir.StmtBlock:
		w.writeLine("{")
		w.pushIndent()
		if err := w.writeBlock(k.Block); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
		return nil

	case ir.StmtIf:
		return w.writeIf(k)

	case ir.StmtSwitch:
		return w.writeSwitch(k)

	case ir.StmtLoop:
		return w.writeLoop(k)

	case ir.StmtBreak:
		w.writeLine("break;")
		return nil

	case ir.StmtContinue:
		w.writeLine("continue;")
		return nil

	case ir.StmtReturn:
		return w.writeReturn(k)

	case ir.StmtKill:
		w.writeLine("discard;")
		return nil

	case ir.StmtBarrier:
		return w.writeBarrier(k)

	case ir.StmtStore:
		return w.writeStore(k)

	case ir.StmtImageStore:
		return w.writeImageStore(k)

	case ir.StmtAtomic:
		return w.writeAtomic(k)

	case ir.StmtCall:
		return w.writeCall(k)

	case ir.StmtWorkGroupUniformLoad:
		return w.writeWorkGroupUniformLoad(k)

	default:
		return fmt.Errorf("unsupported statement kind: %T", kind)
	}
}

// writeEmit materializes marked expressions to let bindings.
func (w *Writer) writeEmit(emit ir.StmtEmit) error {
	for handle := emit.Range.Start; handle < emit.Range.End; handle++ {
		if _, needsBake := w.needBakeExpression[handle]; needsBake {
			if err := w.bakeExpression(handle); err != nil {
				return err
			}
		}
	}
	return nil
}

// bakeExpression binds an expression to a let so later uses reference it by name.
func (w *Writer) bakeExpression(handle ir.ExpressionHandle) error {
	exprStr, err := w.writeExpression(handle)
	if err != nil {
		return err
	}

	tempName := fmt.Sprintf("_e%d", handle)
	w.namedExpressions[handle] = tempName

	if w.options.Flags&WriterFlagExplicitTypes != 0 {
		if typeName, ok := w.expressionTypeName(handle); ok {
			w.writeLine("let %s: %s = %s;", tempName, typeName, exprStr)
			return nil
		}
	}
	w.writeLine("let %s = %s;", tempName, exprStr)
	return nil
}

// expressionTypeName resolves the WGSL type name of an expression, if known.
func (w *Writer) expressionTypeName(handle ir.ExpressionHandle) (string, bool) {
	if w.currentFunction == nil || int(handle) >= len(w.currentFunction.ExpressionTypes) {
		return "", false
	}
	resolution := &w.currentFunction.ExpressionTypes[handle]
	if resolution.Handle != nil {
		return w.getTypeName(*resolution.Handle), true
	}
	if resolution.Value != nil {
		return w.typeInnerToWGSL(resolution.Value), true
	}
	return "", false
}

// writeIf writes an if statement.
func (w *Writer) writeIf(ifStmt ir.StmtIf) error {
	condition, err := w.writeExpression(ifStmt.Condition)
	if err != nil {
		return err
	}

	w.writeLine("if (%s) {", condition)
	w.pushIndent()
	if err := w.writeBlock(ifStmt.Accept); err != nil {
		return err
	}
	w.popIndent()

	if len(ifStmt.Reject) > 0 {
		w.writeLine("} else {")
		w.pushIndent()
		if err := w.writeBlock(ifStmt.Reject); err != nil {
			return err
		}
		w.popIndent()
	}

	w.writeLine("}")
	return nil
}

// writeSwitch writes a switch statement.
func (w *Writer) writeSwitch(switchStmt ir.StmtSwitch) error {
	selector, err := w.writeExpression(switchStmt.Selector)
	if err != nil {
		return err
	}

	w.writeLine("switch (%s) {", selector)
	w.pushIndent()

	for _, switchCase := range switchStmt.Cases {
		switch v := switchCase.Value.(type) {
		case ir.SwitchValueI32:
			w.writeLine("case %di: {", int32(v))
		case ir.SwitchValueU32:
			w.writeLine("case %du: {", uint32(v))
		case ir.SwitchValueDefault:
			w.writeLine("default: {")
		}

		w.pushIndent()
		if err := w.writeBlock(switchCase.Body); err != nil {
			return err
		}
		if switchCase.FallThrough {
			w.writeLine("fallthrough;")
		}
		w.popIndent()
		w.writeLine("}")
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeLoop writes a loop statement.
func (w *Writer) writeLoop(loop ir.StmtLoop) error {
	w.writeLine("loop {")
	w.pushIndent()

	if err := w.writeBlock(loop.Body); err != nil {
		return err
	}

	if len(loop.Continuing) > 0 || loop.BreakIf != nil {
		w.writeLine("continuing {")
		w.pushIndent()
		if err := w.writeBlock(loop.Continuing); err != nil {
			return err
		}
		if loop.BreakIf != nil {
			condition, err := w.writeExpression(*loop.BreakIf)
			if err != nil {
				return err
			}
			w.writeLine("break if %s;", condition)
		}
		w.popIndent()
		w.writeLine("}")
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeReturn writes a return statement.
func (w *Writer) writeReturn(ret ir.StmtReturn) error {
	if ret.Value == nil {
		w.writeLine("return;")
		return nil
	}

	value, err := w.writeExpression(*ret.Value)
	if err != nil {
		return err
	}
	w.writeLine("return %s;", value)
	return nil
}

// writeBarrier writes a barrier statement.
func (w *Writer) writeBarrier(barrier ir.StmtBarrier) error {
	if barrier.Flags&ir.BarrierStorage != 0 {
		w.writeLine("storageBarrier();")
	}
	if barrier.Flags&ir.BarrierTexture != 0 {
		w.writeLine("textureBarrier();")
	}
	if barrier.Flags&ir.BarrierWorkGroup != 0 || barrier.Flags == 0 {
		w.writeLine("workgroupBarrier();")
	}
	return nil
}

// writeStore writes a store statement.
func (w *Writer) writeStore(store ir.StmtStore) error {
	pointer, err := w.writeExpression(store.Pointer)
	if err != nil {
		return err
	}
	value, err := w.writeExpression(store.Value)
	if err != nil {
		return err
	}
	w.writeLine("%s = %s;", pointer, value)
	return nil
}

// writeImageStore writes a texture store statement.
func (w *Writer) writeImageStore(imgStore ir.StmtImageStore) error {
	image, err := w.writeExpression(imgStore.Image)
	if err != nil {
		return err
	}
	coordinate, err := w.writeExpression(imgStore.Coordinate)
	if err != nil {
		return err
	}
	value, err := w.writeExpression(imgStore.Value)
	if err != nil {
		return err
	}

	if imgStore.ArrayIndex != nil {
		arrayIdx, err := w.writeExpression(*imgStore.ArrayIndex)
		if err != nil {
			return err
		}
		w.writeLine("textureStore(%s, %s, %s, %s);", image, coordinate, arrayIdx, value)
	} else {
		w.writeLine("textureStore(%s, %s, %s);", image, coordinate, value)
	}
	return nil
}

// writeAtomic writes an atomic operation statement.
func (w *Writer) writeAtomic(atomic ir.StmtAtomic) error {
	pointer, err := w.writeExpression(atomic.Pointer)
	if err != nil {
		return err
	}
	value, err := w.writeExpression(atomic.Value)
	if err != nil {
		return err
	}

	var funcName string
	switch f := atomic.Fun.(type) {
	case ir.AtomicAdd:
		funcName = "atomicAdd"
	case ir.AtomicSubtract:
		funcName = "atomicSub"
	case ir.AtomicAnd:
		funcName = "atomicAnd"
	case ir.AtomicExclusiveOr:
		funcName = "atomicXor"
	case ir.AtomicInclusiveOr:
		funcName = "atomicOr"
	case ir.AtomicMin:
		funcName = "atomicMin"
	case ir.AtomicMax:
		funcName = "atomicMax"
	case ir.AtomicExchange:
		if f.Compare != nil {
			return w.writeAtomicCompareExchange(atomic, f, pointer, value)
		}
		funcName = "atomicExchange"
	default:
		return fmt.Errorf("unsupported atomic function: %T", atomic.Fun)
	}

	if atomic.Result != nil {
		tempName := fmt.Sprintf("_ae%d", *atomic.Result)
		w.namedExpressions[*atomic.Result] = tempName
		w.writeLine("let %s = %s(&%s, %s);", tempName, funcName, pointer, value)
	} else {
		w.writeLine("%s(&%s, %s);", funcName, pointer, value)
	}
	return nil
}

// writeAtomicCompareExchange writes an atomic compare-exchange operation.
func (w *Writer) writeAtomicCompareExchange(atomic ir.StmtAtomic, exchange ir.AtomicExchange, pointer, value string) error {
	compareVal, err := w.writeExpression(*exchange.Compare)
	if err != nil {
		return err
	}

	if atomic.Result != nil {
		tempName := fmt.Sprintf("_ae%d", *atomic.Result)
		w.namedExpressions[*atomic.Result] = tempName
		w.writeLine("let %s = atomicCompareExchangeWeak(&%s, %s, %s).old_value;", tempName, pointer, compareVal, value)
	} else {
		w.writeLine("atomicCompareExchangeWeak(&%s, %s, %s);", pointer, compareVal, value)
	}
	return nil
}

// writeCall writes a function call statement.
func (w *Writer) writeCall(call ir.StmtCall) error {
	funcName := w.names[nameKey{kind: nameKeyFunction, handle1: uint32(call.Function)}]

	argStrs := make([]string, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		argStr, err := w.writeExpression(arg)
		if err != nil {
			return err
		}
		argStrs = append(argStrs, argStr)
	}

	callExpr := fmt.Sprintf("%s(%s)", funcName, strings.Join(argStrs, ", "))

	if call.Result != nil {
		tempName := fmt.Sprintf("_fc%d", *call.Result)
		w.namedExpressions[*call.Result] = tempName
		w.writeLine("let %s = %s;", tempName, callExpr)
	} else {
		w.writeLine("%s;", callExpr)
	}
	return nil
}

// writeWorkGroupUniformLoad writes a workgroup uniform load.
func (w *Writer) writeWorkGroupUniformLoad(load ir.StmtWorkGroupUniformLoad) error {
	pointer, err := w.writeExpression(load.Pointer)
	if err != nil {
		return err
	}

	tempName := fmt.Sprintf("_wul%d", load.Result)
	w.namedExpressions[load.Result] = tempName
	w.writeLine("let %s = workgroupUniformLoad(&%s);", tempName, pointer)
	return nil
}
