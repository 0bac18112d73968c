// Copyright 2026 The ShaderConverter Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"
)

// =============================================================================
// Options Tests
// =============================================================================

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Flags != WriterFlagNone {
		t.Errorf("Expected Flags to be None, got %v", opts.Flags)
	}

	if opts.EntryPoint != "" {
		t.Errorf("Expected empty EntryPoint, got %q", opts.EntryPoint)
	}
}

// =============================================================================
// Type Conversion Tests
// =============================================================================

func TestScalarToWGSL(t *testing.T) {
	tests := []struct {
		scalar ir.ScalarType
		want   string
	}{
		{ir.ScalarType{Kind: ir.ScalarBool, Width: 1}, "bool"},
		{ir.ScalarType{Kind: ir.ScalarSint, Width: 4}, "i32"},
		{ir.ScalarType{Kind: ir.ScalarUint, Width: 4}, "u32"},
		{ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}, "f32"},
		{ir.ScalarType{Kind: ir.ScalarFloat, Width: 2}, "f16"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := scalarToWGSL(tt.scalar)
			if got != tt.want {
				t.Errorf("scalarToWGSL(%+v) = %q, want %q", tt.scalar, got, tt.want)
			}
		})
	}
}

func TestTypeInnerToWGSL(t *testing.T) {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	i32 := ir.ScalarType{Kind: ir.ScalarSint, Width: 4}
	size3 := uint32(3)

	module := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.VectorType{Size: 2, Scalar: f32}}, // Type 0
		},
	}
	opts := DefaultOptions()
	w := newWriter(module, &opts)

	tests := []struct {
		name  string
		inner ir.TypeInner
		want  string
	}{
		{"vec3f", ir.VectorType{Size: 3, Scalar: f32}, "vec3<f32>"},
		{"vec4i", ir.VectorType{Size: 4, Scalar: i32}, "vec4<i32>"},
		{"mat4", ir.MatrixType{Columns: 4, Rows: 4, Scalar: f32}, "mat4x4<f32>"},
		{"mat2x3", ir.MatrixType{Columns: 2, Rows: 3, Scalar: f32}, "mat2x3<f32>"},
		{"sized array", ir.ArrayType{Base: 0, Size: ir.ArraySize{Constant: &size3}}, "array<vec2<f32>, 3>"},
		{"runtime array", ir.ArrayType{Base: 0}, "array<vec2<f32>>"},
		{"atomic", ir.AtomicType{Scalar: i32}, "atomic<i32>"},
		{"sampler", ir.SamplerType{}, "sampler"},
		{"comparison sampler", ir.SamplerType{Comparison: true}, "sampler_comparison"},
		{"pointer", ir.PointerType{Base: 0, Space: ir.SpaceFunction}, "ptr<function, vec2<f32>>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.typeInnerToWGSL(tt.inner)
			if got != tt.want {
				t.Errorf("typeInnerToWGSL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageToWGSL(t *testing.T) {
	tests := []struct {
		name  string
		image ir.ImageType
		want  string
	}{
		{
			"texture_2d",
			ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled},
			"texture_2d<f32>",
		},
		{
			"texture_3d",
			ir.ImageType{Dim: ir.Dim3D, Class: ir.ImageClassSampled},
			"texture_3d<f32>",
		},
		{
			"texture_cube",
			ir.ImageType{Dim: ir.DimCube, Class: ir.ImageClassSampled},
			"texture_cube<f32>",
		},
		{
			"texture_2d_array",
			ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, Arrayed: true},
			"texture_2d_array<f32>",
		},
		{
			"texture_multisampled_2d",
			ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, Multisampled: true},
			"texture_multisampled_2d<f32>",
		},
		{
			"texture_depth_2d",
			ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassDepth},
			"texture_depth_2d",
		},
		{
			"texture_depth_cube",
			ir.ImageType{Dim: ir.DimCube, Class: ir.ImageClassDepth},
			"texture_depth_cube",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := imageToWGSL(tt.image)
			if got != tt.want {
				t.Errorf("imageToWGSL() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Keyword Tests
// =============================================================================

func TestEscapeKeyword(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"foo", "foo"},
		{"myVariable", "myVariable"},
		{"color_out", "color_out"},
		{"main", "main"}, // not reserved in WGSL
		// Keywords that need escaping
		{"var", "var_"},
		{"let", "let_"},
		{"fn", "fn_"},
		{"loop", "loop_"},
		{"f32", "f32_"},
		{"vec4", "vec4_"},
		{"sampler", "sampler_"},
		{"texture_2d", "texture_2d_"},
		{"uniform", "uniform_"},
		{"storage", "storage_"},
		// Reserved prefix
		{"__internal", "x__internal"},
		// Empty string case
		{"", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeKeyword(tt.input)
			if got != tt.want {
				t.Errorf("escapeKeyword(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsKeyword(t *testing.T) {
	keywords := []string{
		"var", "let", "fn", "struct", "loop", "continuing", "discard",
		"f32", "i32", "u32", "bool", "vec2", "vec3", "vec4",
		"mat4x4", "array", "atomic", "ptr",
		"sampler", "sampler_comparison", "texture_2d", "texture_cube",
		"uniform", "storage", "workgroup", "private",
		"textureSample", "workgroupBarrier",
	}

	for _, kw := range keywords {
		if !isKeyword(kw) {
			t.Errorf("%q should be a keyword", kw)
		}
	}

	nonKeywords := []string{
		"myVariable", "foo", "bar", "customFunc", "color_output",
		"position", "normal", "texCoord", "fragColor", "main",
	}

	for _, nkw := range nonKeywords {
		if isKeyword(nkw) {
			t.Errorf("%q should not be a keyword", nkw)
		}
	}
}

// =============================================================================
// Namer Tests
// =============================================================================

func TestNamer_UniqueNames(t *testing.T) {
	n := newNamer()

	name1 := n.call("foo")
	name2 := n.call("foo")
	name3 := n.call("foo")

	if name1 != "foo" {
		t.Errorf("First name should be 'foo', got %q", name1)
	}
	if name2 == name1 {
		t.Error("Second name should be different from first")
	}
	if name3 == name1 || name3 == name2 {
		t.Error("Third name should be different from others")
	}
}

func TestNamer_EscapesKeywords(t *testing.T) {
	n := newNamer()

	name := n.call("var")
	if name != "var_" {
		t.Errorf("Expected 'var_', got %q", name)
	}

	name2 := n.call("var")
	if name2 == name {
		t.Error("Second 'var' should get a unique name")
	}
}

// =============================================================================
// Format Tests
// =============================================================================

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input    float32
		contains string
	}{
		{1.0, "."},
		{0.5, "0.5"},
		{1.5e10, "e+10"},
		{0.0, "0.0"},
	}

	for _, tt := range tests {
		got := formatFloat(tt.input)
		if !strings.Contains(got, tt.contains) {
			t.Errorf("formatFloat(%v) = %q, should contain %q", tt.input, got, tt.contains)
		}
	}
}

// =============================================================================
// Attribute Tests
// =============================================================================

func TestBuiltinName(t *testing.T) {
	tests := []struct {
		builtin ir.BuiltinValue
		want    string
	}{
		{ir.BuiltinPosition, "position"},
		{ir.BuiltinVertexIndex, "vertex_index"},
		{ir.BuiltinInstanceIndex, "instance_index"},
		{ir.BuiltinFrontFacing, "front_facing"},
		{ir.BuiltinFragDepth, "frag_depth"},
		{ir.BuiltinLocalInvocationID, "local_invocation_id"},
		{ir.BuiltinGlobalInvocationID, "global_invocation_id"},
		{ir.BuiltinWorkGroupID, "workgroup_id"},
		{ir.BuiltinNumWorkGroups, "num_workgroups"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := builtinName(tt.builtin)
			if err != nil {
				t.Fatalf("builtinName() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("builtinName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBindingAttributes(t *testing.T) {
	flat := ir.Interpolation{Kind: ir.InterpolationFlat}

	tests := []struct {
		name    string
		binding ir.Binding
		want    string
	}{
		{"location", ir.LocationBinding{Location: 2}, "@location(2)"},
		{"flat location", ir.LocationBinding{Location: 1, Interpolation: &flat}, "@location(1) @interpolate(flat)"},
		{"builtin", ir.BuiltinBinding{Builtin: ir.BuiltinPosition}, "@builtin(position)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bindingAttributes(tt.binding)
			if err != nil {
				t.Fatalf("bindingAttributes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("bindingAttributes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStageAttributes(t *testing.T) {
	tests := []struct {
		name string
		ep   ir.EntryPoint
		want string
	}{
		{"vertex", ir.EntryPoint{Stage: ir.StageVertex}, "@vertex"},
		{"fragment", ir.EntryPoint{Stage: ir.StageFragment}, "@fragment"},
		{"compute", ir.EntryPoint{Stage: ir.StageCompute, Workgroup: [3]uint32{8, 4, 1}}, "@compute @workgroup_size(8, 4, 1)"},
		{"compute defaults", ir.EntryPoint{Stage: ir.StageCompute}, "@compute @workgroup_size(1, 1, 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stageAttributes(&tt.ep)
			if got != tt.want {
				t.Errorf("stageAttributes() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Compile Tests
// =============================================================================

func TestCompile_NilModule(t *testing.T) {
	_, _, err := Compile(nil, DefaultOptions())
	if err == nil {
		t.Fatal("expected error for nil module")
	}
}

func TestCompile_EmptyModule(t *testing.T) {
	module := &ir.Module{}

	source, info, err := Compile(module, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if source != "" {
		t.Errorf("expected empty output for empty module, got: %s", source)
	}

	if info.EntryPointNames == nil {
		t.Error("EntryPointNames should not be nil")
	}
}

func TestCompile_UniformBuffer(t *testing.T) {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	vec2 := ir.VectorType{Size: 2, Scalar: f32}

	module := &ir.Module{
		Types: []ir.Type{
			{Inner: f32},  // Type 0
			{Inner: vec2}, // Type 1
			{
				Name: "Globals",
				Inner: ir.StructType{
					Members: []ir.StructMember{
						{Name: "uTime", Type: 0, Offset: 0},
						{Name: "uResolution", Type: 1, Offset: 8},
					},
					Span: 16,
				},
			},
		},
		GlobalVariables: []ir.GlobalVariable{
			{
				Name:    "globals",
				Space:   ir.SpaceUniform,
				Binding: &ir.ResourceBinding{Group: 0, Binding: 0},
				Type:    2,
			},
		},
	}

	source, _, err := Compile(module, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if !strings.Contains(source, "struct Globals {") {
		t.Error("Expected struct definition in output")
	}
	if !strings.Contains(source, "uTime: f32,") {
		t.Error("Expected uTime member in output")
	}
	if !strings.Contains(source, "uResolution: vec2<f32>,") {
		t.Error("Expected uResolution member in output")
	}
	if !strings.Contains(source, "@group(0) @binding(0) var<uniform> globals: Globals;") {
		t.Errorf("Expected uniform declaration, got:\n%s", source)
	}
}

func TestCompile_TextureAndSampler(t *testing.T) {
	module := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled}}, // Type 0
			{Inner: ir.SamplerType{}},                                         // Type 1
		},
		GlobalVariables: []ir.GlobalVariable{
			{
				Name:    "uTexture",
				Space:   ir.SpaceHandle,
				Binding: &ir.ResourceBinding{Group: 0, Binding: 1},
				Type:    0,
			},
			{
				Name:    "uTexture_sampler",
				Space:   ir.SpaceHandle,
				Binding: &ir.ResourceBinding{Group: 0, Binding: 2},
				Type:    1,
			},
		},
	}

	source, _, err := Compile(module, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if !strings.Contains(source, "@group(0) @binding(1) var uTexture: texture_2d<f32>;") {
		t.Errorf("Expected texture declaration, got:\n%s", source)
	}
	if !strings.Contains(source, "@group(0) @binding(2) var uTexture_sampler: sampler;") {
		t.Errorf("Expected sampler declaration, got:\n%s", source)
	}
}

// fragmentModule builds a minimal fragment shader module returning a constant color.
func fragmentModule() *ir.Module {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	vec4 := ir.VectorType{Size: 4, Scalar: f32}
	var locBinding ir.Binding = ir.LocationBinding{Location: 0}

	composeHandle := ir.ExpressionHandle(4)

	return &ir.Module{
		Types: []ir.Type{
			{Inner: f32},  // Type 0
			{Inner: vec4}, // Type 1
		},
		Functions: []ir.Function{
			{
				Name: "main",
				Result: &ir.FunctionResult{
					Type:    1,
					Binding: &locBinding,
				},
				Expressions: []ir.Expression{
					{Kind: ir.Literal{Value: ir.LiteralF32(1.0)}},
					{Kind: ir.Literal{Value: ir.LiteralF32(0.5)}},
					{Kind: ir.Literal{Value: ir.LiteralF32(0.25)}},
					{Kind: ir.Literal{Value: ir.LiteralF32(1.0)}},
					{Kind: ir.ExprCompose{Type: 1, Components: []ir.ExpressionHandle{0, 1, 2, 3}}},
				},
				Body: []ir.Statement{
					{Kind: ir.StmtReturn{Value: &composeHandle}},
				},
			},
		},
		EntryPoints: []ir.EntryPoint{
			{Name: "main", Stage: ir.StageFragment, Function: 0},
		},
	}
}

func TestCompile_FragmentEntryPoint(t *testing.T) {
	source, info, err := Compile(fragmentModule(), DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if !strings.Contains(source, "@fragment") {
		t.Error("Expected @fragment attribute in output")
	}
	if !strings.Contains(source, "fn main() -> @location(0) vec4<f32> {") {
		t.Errorf("Expected entry point signature, got:\n%s", source)
	}
	if !strings.Contains(source, "return vec4<f32>(1.0, 0.5, 0.25, 1.0);") {
		t.Errorf("Expected return statement, got:\n%s", source)
	}

	if info.EntryPointNames["main"] != "main" {
		t.Errorf("Expected entry point name mapping, got %v", info.EntryPointNames)
	}
}

func TestCompile_EntryPointSelection(t *testing.T) {
	source, _, err := Compile(fragmentModule(), Options{EntryPoint: "other"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if strings.Contains(source, "@fragment") {
		t.Error("Unselected entry point should not be emitted")
	}
}

func TestCompile_VertexBuiltinPosition(t *testing.T) {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	vec4 := ir.VectorType{Size: 4, Scalar: f32}
	var posBinding ir.Binding = ir.BuiltinBinding{Builtin: ir.BuiltinPosition}
	zero := ir.ExpressionHandle(0)

	module := &ir.Module{
		Types: []ir.Type{
			{Inner: f32},  // Type 0
			{Inner: vec4}, // Type 1
		},
		Functions: []ir.Function{
			{
				Name: "main",
				Result: &ir.FunctionResult{
					Type:    1,
					Binding: &posBinding,
				},
				Expressions: []ir.Expression{
					{Kind: ir.ExprZeroValue{Type: 1}},
				},
				Body: []ir.Statement{
					{Kind: ir.StmtReturn{Value: &zero}},
				},
			},
		},
		EntryPoints: []ir.EntryPoint{
			{Name: "main", Stage: ir.StageVertex, Function: 0},
		},
	}

	source, _, err := Compile(module, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if !strings.Contains(source, "@vertex") {
		t.Error("Expected @vertex attribute in output")
	}
	if !strings.Contains(source, "fn main() -> @builtin(position) vec4<f32> {") {
		t.Errorf("Expected builtin position result, got:\n%s", source)
	}
	if !strings.Contains(source, "return vec4<f32>();") {
		t.Errorf("Expected zero value return, got:\n%s", source)
	}
}

func TestCompile_ComputeWorkgroupSize(t *testing.T) {
	module := &ir.Module{
		Functions: []ir.Function{
			{Name: "main"},
		},
		EntryPoints: []ir.EntryPoint{
			{Name: "main", Stage: ir.StageCompute, Function: 0, Workgroup: [3]uint32{8, 4, 1}},
		},
	}

	source, _, err := Compile(module, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if !strings.Contains(source, "@compute @workgroup_size(8, 4, 1)") {
		t.Errorf("Expected workgroup size attribute, got:\n%s", source)
	}
	if !strings.Contains(source, "fn main() {") {
		t.Errorf("Expected void entry point, got:\n%s", source)
	}
}
