// Package shaderconverter translates shader source between dialects.
//
// A conversion is a single synchronous call: source text plus a source
// dialect, target dialect, and pipeline stage go in, and either generated
// target text or a diagnostic comes out. The pipeline is
//
//	normalize (permissive GLSL only) -> parse -> validate -> generate
//
// built on the github.com/gogpu/naga IR: the WGSL frontend and the HLSL,
// MSL, and GLSL backends come from the library, while the permissive GLSL
// frontend (package glslin) and the WGSL backend (package wgslout) are
// supplied by this module.
//
// Example:
//
//	result := shaderconverter.Convert(src,
//		shaderconverter.SourceGLSL, shaderconverter.TargetWGSL,
//		shaderconverter.StageFragment)
//	if !result.Success {
//		log.Fatal(result.Error)
//	}
//	fmt.Println(result.Output)
//
// Calls are independent and may run concurrently; nothing is shared or
// cached between them.
package shaderconverter

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"

	"github.com/sidunrealde/ShaderConverter/glslin"
	"github.com/sidunrealde/ShaderConverter/normalize"
	"github.com/sidunrealde/ShaderConverter/wgslout"
)

// SourceDialect selects the frontend used to parse the input shader.
// Any value outside the recognized set is treated as SourceGLSL: the
// permissive frontend is the deliberate fallback, so an unrecognized
// source selector never fails on its own.
type SourceDialect string

const (
	// SourceGLSL is permissive GLSL. Input is rewritten by the
	// normalize package before parsing.
	SourceGLSL SourceDialect = "glsl"

	// SourceWGSL is strict WGSL, parsed exactly as written.
	SourceWGSL SourceDialect = "wgsl"
)

// TargetDialect selects the backend that generates the output shader.
// Unlike SourceDialect there is no fallback: an unrecognized target is a
// hard "Unknown format" error.
type TargetDialect string

const (
	TargetHLSL TargetDialect = "hlsl"
	TargetWGSL TargetDialect = "wgsl"
	TargetMSL  TargetDialect = "msl"
	TargetGLSL TargetDialect = "glsl"
)

// Stage names the pipeline stage of the shader being converted. Only
// "vertex" and "compute" are matched; any other value, including the
// empty string, means fragment.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
	StageCompute  Stage = "compute"
)

func (s Stage) shaderStage() ir.ShaderStage {
	switch s {
	case StageVertex:
		return ir.StageVertex
	case StageCompute:
		return ir.StageCompute
	default:
		return ir.StageFragment
	}
}

// Convert translates shader source from one dialect to another.
//
// Stage failures short-circuit: the first failing stage produces a
// ConversionResult with Success false and that stage's diagnostic in
// Error, and no later stage runs. Internal panics are recovered into a
// failed result, so a failing call never poisons later calls; call
// InitDiagnostics to have recovered panics logged.
func Convert(code string, source SourceDialect, target TargetDialect, stage Stage) (result ConversionResult) {
	defer func() {
		if r := recover(); r != nil {
			if logger := diag.Load(); logger != nil {
				logger.Error("panic during shader conversion",
					"panic", r,
					"stack", string(debug.Stack()))
			}
			result = errorResult(fmt.Sprintf("Internal Error: %v", r))
		}
	}()

	module, diagMsg := parseModule(code, source, stage)
	if module == nil {
		return errorResult(diagMsg)
	}

	verrs, err := naga.Validate(module)
	if err != nil {
		return errorResult("Validation Error: " + err.Error())
	}
	if len(verrs) > 0 {
		return errorResult("Validation Error: " + joinValidationErrors(verrs))
	}

	return generate(module, target)
}

// ConvertGLSL converts permissive GLSL source to the given target
// dialect. It is a fixed binding of Convert with SourceGLSL, kept for
// callers that predate source dialect selection.
//
// Deprecated: Use Convert instead.
func ConvertGLSL(code string, target TargetDialect, stage Stage) ConversionResult {
	return Convert(code, SourceGLSL, target, stage)
}

// parseModule runs the frontend for the given source dialect. On failure
// it returns a nil module and the diagnostic to report.
func parseModule(code string, source SourceDialect, stage Stage) (*ir.Module, string) {
	if source == SourceWGSL {
		ast, err := naga.Parse(code)
		if err != nil {
			return nil, "WGSL Parse Error: " + err.Error()
		}
		module, err := naga.LowerWithSource(ast, code)
		if err != nil {
			return nil, "WGSL Parse Error: " + err.Error()
		}
		return module, ""
	}

	// Everything else goes through the permissive GLSL path,
	// normalization included.
	normalized := normalize.Source(code, string(stage))
	ast, err := glslin.Parse(normalized)
	if err != nil {
		return nil, glslParseError(err, normalized)
	}
	module, err := glslin.LowerWithSource(ast, stage.shaderStage(), normalized)
	if err != nil {
		return nil, glslParseError(err, normalized)
	}
	return module, ""
}

// glslParseError embeds the full normalized source in the diagnostic.
// Normalization is opaque to the caller, so without the rewritten text
// they cannot debug why parsing failed against source they did not write.
func glslParseError(err error, normalized string) string {
	return fmt.Sprintf("GLSL Parse Error: %v\n\nNormalized source:\n%s", err, normalized)
}

func joinValidationErrors(verrs []ir.ValidationError) string {
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// generate dispatches a validated module to exactly one backend. This is
// the one stage with no fallback: an unrecognized target dialect is a
// hard error.
func generate(module *ir.Module, target TargetDialect) ConversionResult {
	var (
		output string
		err    error
	)
	switch target {
	case TargetHLSL:
		output, _, err = hlsl.Compile(module, hlsl.DefaultOptions())
		if err != nil {
			return errorResult("HLSL Generation Error: " + err.Error())
		}
	case TargetWGSL:
		output, _, err = wgslout.Compile(module, wgslout.Options{})
		if err != nil {
			return errorResult("WGSL Generation Error: " + err.Error())
		}
	case TargetMSL:
		output, _, err = msl.CompileWithPipeline(module, msl.DefaultOptions(), msl.PipelineOptions{})
		if err != nil {
			return errorResult("MSL Generation Error: " + err.Error())
		}
	case TargetGLSL:
		output, _, err = glsl.Compile(module, glsl.Options{
			LangVersion:        glsl.Version450,
			EntryPoint:         "main",
			ForceHighPrecision: true,
		})
		if err != nil {
			return errorResult("GLSL Generation Error: " + err.Error())
		}
	default:
		return errorResult(fmt.Sprintf("Unknown format: %s", target))
	}
	return ConversionResult{Success: true, Output: output}
}
