package glslin

import (
	"testing"
)

func parseSource(t *testing.T, source string) *Module {
	t.Helper()
	module, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return module
}

func TestParseSimpleFragmentShader(t *testing.T) {
	source := `#version 450
void main() {
    gl_FragColor = vec4(1.0);
}`
	module := parseSource(t, source)

	if module.Version != 450 {
		t.Errorf("expected version 450, got %d", module.Version)
	}
	if len(module.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(module.Functions))
	}

	fn := module.Functions[0]
	if fn.Name != "main" {
		t.Errorf("expected function name 'main', got %q", fn.Name)
	}
	if len(fn.Params) != 0 {
		t.Errorf("expected no parameters, got %d", len(fn.Params))
	}
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(fn.Body.Statements))
	}

	assign, ok := fn.Body.Statements[0].(*AssignStmt)
	if !ok {
		t.Fatalf("expected assignment, got %T", fn.Body.Statements[0])
	}
	if assign.Op != TokenEqual {
		t.Errorf("expected plain assignment, got %v", assign.Op)
	}
	if _, ok := assign.Right.(*ConstructExpr); !ok {
		t.Errorf("expected constructor on right side, got %T", assign.Right)
	}
}

func TestParseUniformBlock(t *testing.T) {
	source := `layout(set = 0, binding = 0) uniform Globals {
    float uTime;
    vec2 uResolution;
};
void main() {}`
	module := parseSource(t, source)

	if len(module.UniformBlocks) != 1 {
		t.Fatalf("expected 1 uniform block, got %d", len(module.UniformBlocks))
	}
	block := module.UniformBlocks[0]
	if block.Name != "Globals" {
		t.Errorf("expected block name 'Globals', got %q", block.Name)
	}
	if block.InstanceName != "" {
		t.Errorf("expected anonymous block, got instance %q", block.InstanceName)
	}
	if block.Layout == nil || !block.Layout.HasSet || !block.Layout.HasBinding {
		t.Fatal("expected set and binding layout qualifiers")
	}
	if block.Layout.Set != 0 || block.Layout.Binding != 0 {
		t.Errorf("expected set=0 binding=0, got set=%d binding=%d", block.Layout.Set, block.Layout.Binding)
	}
	if len(block.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(block.Members))
	}
	if block.Members[0].Name != "uTime" || block.Members[1].Name != "uResolution" {
		t.Errorf("unexpected member names: %q, %q", block.Members[0].Name, block.Members[1].Name)
	}
}

func TestParseStageInterface(t *testing.T) {
	source := `layout(location = 0) in vec2 vUv;
layout(location = 1) flat in int vIndex;
layout(location = 0) out vec4 fragColor;
void main() {}`
	module := parseSource(t, source)

	if len(module.GlobalVars) != 3 {
		t.Fatalf("expected 3 globals, got %d", len(module.GlobalVars))
	}

	vUv := module.GlobalVars[0]
	if vUv.Qualifier != QualifierIn {
		t.Errorf("expected in qualifier, got %v", vUv.Qualifier)
	}
	if vUv.Layout == nil || !vUv.Layout.HasLocation || vUv.Layout.Location != 0 {
		t.Error("expected location 0 on vUv")
	}

	if !module.GlobalVars[1].Flat {
		t.Error("expected flat qualifier on vIndex")
	}

	if module.GlobalVars[2].Qualifier != QualifierOut {
		t.Errorf("expected out qualifier, got %v", module.GlobalVars[2].Qualifier)
	}
}

func TestParseVaryingDeclaration(t *testing.T) {
	module := parseSource(t, "varying vec2 vUv;\nvoid main() {}")

	if len(module.GlobalVars) != 1 {
		t.Fatalf("expected 1 global, got %d", len(module.GlobalVars))
	}
	v := module.GlobalVars[0]
	if !v.Varying {
		t.Error("expected varying flag")
	}
	if v.Qualifier != QualifierIn {
		t.Errorf("expected in qualifier, got %v", v.Qualifier)
	}
}

func TestParseComputeLayout(t *testing.T) {
	source := `layout(local_size_x = 8, local_size_y = 4) in;
void main() {}`
	module := parseSource(t, source)

	if module.WorkgroupSize != [3]uint32{8, 4, 1} {
		t.Errorf("expected workgroup size [8 4 1], got %v", module.WorkgroupSize)
	}
}

func TestParseFunctionWithParams(t *testing.T) {
	source := `float luminance(vec3 color) {
    return dot(color, vec3(0.2126, 0.7152, 0.0722));
}
void main() {}`
	module := parseSource(t, source)

	if len(module.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(module.Functions))
	}
	fn := module.Functions[0]
	if fn.Name != "luminance" {
		t.Errorf("expected 'luminance', got %q", fn.Name)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "color" {
		t.Fatalf("unexpected params: %+v", fn.Params)
	}
	ret, ok := fn.ReturnType.(*NamedType)
	if !ok || ret.Name != "float" {
		t.Errorf("expected float return type, got %v", fn.ReturnType)
	}
}

func TestParseControlFlow(t *testing.T) {
	source := `void main() {
    float acc = 0.0;
    for (int i = 0; i < 8; i++) {
        if (acc > 4.0) {
            break;
        } else {
            acc += 1.0;
        }
    }
    while (acc > 0.0) {
        acc -= 1.0;
    }
}`
	module := parseSource(t, source)
	body := module.Functions[0].Body.Statements

	if len(body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(body))
	}

	forStmt, ok := body[1].(*ForStmt)
	if !ok {
		t.Fatalf("expected for statement, got %T", body[1])
	}
	if forStmt.Init == nil || forStmt.Condition == nil || forStmt.Update == nil {
		t.Error("expected full for header")
	}
	// i++ desugars to i += 1
	update, ok := forStmt.Update.(*AssignStmt)
	if !ok {
		t.Fatalf("expected assignment update, got %T", forStmt.Update)
	}
	if update.Op != TokenPlusEqual {
		t.Errorf("expected += update, got %v", update.Op)
	}

	if _, ok := body[2].(*WhileStmt); !ok {
		t.Errorf("expected while statement, got %T", body[2])
	}
}

func TestParseTernary(t *testing.T) {
	source := `void main() {
    float x = true ? 1.0 : 0.0;
}`
	module := parseSource(t, source)

	decl, ok := module.Functions[0].Body.Statements[0].(*VarDecl)
	if !ok {
		t.Fatalf("expected var decl, got %T", module.Functions[0].Body.Statements[0])
	}
	ternary, ok := decl.Init.(*TernaryExpr)
	if !ok {
		t.Fatalf("expected ternary initializer, got %T", decl.Init)
	}
	if _, ok := ternary.Condition.(*Literal); !ok {
		t.Errorf("expected literal condition, got %T", ternary.Condition)
	}
}

func TestParseSwitch(t *testing.T) {
	source := `void main() {
    int mode = 1;
    switch (mode) {
    case 0:
        mode = 10;
        break;
    default:
        mode = 20;
        break;
    }
}`
	module := parseSource(t, source)

	sw, ok := module.Functions[0].Body.Statements[1].(*SwitchStmt)
	if !ok {
		t.Fatalf("expected switch, got %T", module.Functions[0].Body.Statements[1])
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(sw.Cases))
	}
	if sw.Cases[0].IsDefault {
		t.Error("first case should not be default")
	}
	if !sw.Cases[1].IsDefault {
		t.Error("second case should be default")
	}
}

func TestParseMultipleDeclarators(t *testing.T) {
	source := `void main() {
    float a = 1.0, b = 2.0;
}`
	module := parseSource(t, source)

	body := module.Functions[0].Body.Statements
	if len(body) != 2 {
		t.Fatalf("expected 2 statements from declarator list, got %d", len(body))
	}
	for i, name := range []string{"a", "b"} {
		decl, ok := body[i].(*VarDecl)
		if !ok {
			t.Fatalf("statement %d: expected var decl, got %T", i, body[i])
		}
		if decl.Name != name {
			t.Errorf("statement %d: expected name %q, got %q", i, name, decl.Name)
		}
	}
}

func TestParseStructDecl(t *testing.T) {
	source := `struct Light {
    vec3 position;
    float intensity;
};
void main() {}`
	module := parseSource(t, source)

	if len(module.Structs) != 1 {
		t.Fatalf("expected 1 struct, got %d", len(module.Structs))
	}
	s := module.Structs[0]
	if s.Name != "Light" || len(s.Members) != 2 {
		t.Errorf("unexpected struct: %q with %d members", s.Name, len(s.Members))
	}
}

func TestParsePrecisionIgnored(t *testing.T) {
	source := `precision highp float;
void main() {}`
	module := parseSource(t, source)
	if len(module.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(module.Functions))
	}
}

func TestParseErrorReporting(t *testing.T) {
	_, err := Parse("void main( {}")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseUnterminatedExpression(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"missing call paren", "void main() { gl_FragColor = vec4(1.0; }"},
		{"missing nested call paren", "void main() { float x = max(1.0, sin(2.0; }"},
		{"missing index bracket", "void main() { vec4 c = vec4(1.0); float x = c[0; }"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.source)
			if err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestParseOutParamRejected(t *testing.T) {
	_, err := Parse("void f(out float x) {}\nvoid main() {}")
	if err == nil {
		t.Fatal("expected error for out parameter")
	}
}
