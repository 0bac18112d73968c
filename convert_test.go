package shaderconverter

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicFragment = "void main() { gl_FragColor = vec4(1.0); }"

func TestConvert_BasicFragmentToWGSL(t *testing.T) {
	result := Convert(basicFragment, SourceGLSL, TargetWGSL, StageFragment)
	require.True(t, result.Success, "conversion failed: %s", result.Error)
	assert.Contains(t, result.Output, "@fragment")
	assert.Empty(t, result.Error)
}

func TestConvert_AllTargets(t *testing.T) {
	for _, target := range []TargetDialect{TargetHLSL, TargetWGSL, TargetMSL, TargetGLSL} {
		t.Run(string(target), func(t *testing.T) {
			result := Convert(basicFragment, SourceGLSL, target, StageFragment)
			require.True(t, result.Success, "conversion failed: %s", result.Error)
			assert.NotEmpty(t, result.Output)
		})
	}
}

func TestConvert_UnknownTargetIsHardError(t *testing.T) {
	result := Convert(basicFragment, SourceGLSL, "dxbc", StageFragment)
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "Unknown format: dxbc")
	assert.Empty(t, result.Output)
}

func TestConvert_UnknownSourceFallsBackToGLSL(t *testing.T) {
	// Unrecognized source selectors are parsed with the permissive GLSL
	// frontend rather than rejected.
	result := Convert(basicFragment, "essl", TargetWGSL, StageFragment)
	require.True(t, result.Success, "conversion failed: %s", result.Error)
	assert.Contains(t, result.Output, "@fragment")
}

func TestConvert_WGSLSourceToHLSL(t *testing.T) {
	source := `
@fragment
fn main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`
	result := Convert(source, SourceWGSL, TargetHLSL, StageFragment)
	require.True(t, result.Success, "conversion failed: %s", result.Error)
	assert.NotEmpty(t, result.Output)
}

func TestConvert_WGSLParseErrorPrefix(t *testing.T) {
	result := Convert("fn main( {", SourceWGSL, TargetWGSL, StageFragment)
	require.False(t, result.Success)
	assert.True(t, strings.HasPrefix(result.Error, "WGSL Parse Error: "), "got: %s", result.Error)
}

func TestConvert_GLSLParseErrorEmbedsNormalizedSource(t *testing.T) {
	result := Convert("void main() { gl_FragColor = ; }", SourceGLSL, TargetWGSL, StageFragment)
	require.False(t, result.Success)
	assert.True(t, strings.HasPrefix(result.Error, "GLSL Parse Error: "), "got: %s", result.Error)
	// The caller never sees the rewritten text otherwise, so the
	// diagnostic must carry the whole normalized source.
	assert.Contains(t, result.Error, "Normalized source:")
	assert.Contains(t, result.Error, "#version 450")
	assert.Contains(t, result.Error, "gl_FragColor = ;")
}

func TestConvert_UnterminatedExpressionFails(t *testing.T) {
	// A missing closing delimiter must surface as a parse failure, never
	// as successful generation from a silently mis-parsed program.
	result := Convert("void main() { gl_FragColor = vec4(1.0; }", SourceGLSL, TargetWGSL, StageFragment)
	require.False(t, result.Success)
	assert.True(t, strings.HasPrefix(result.Error, "GLSL Parse Error: "), "got: %s", result.Error)
	assert.Contains(t, result.Error, "Normalized source:")
	assert.Empty(t, result.Output)
}

func TestConvert_EngineUniformsDoNotCollide(t *testing.T) {
	// uTime/uResolution are injected by normalization; user declarations
	// of the exact legacy form must not produce duplicate declarations.
	source := `
uniform float uTime;
uniform vec2 uResolution;
void main() {
    gl_FragColor = vec4(fract(uTime), uResolution.x, uResolution.y, 1.0);
}
`
	result := Convert(source, SourceGLSL, TargetWGSL, StageFragment)
	require.True(t, result.Success, "conversion failed: %s", result.Error)
	assert.Contains(t, result.Output, "uTime")
}

func TestConvert_VertexStage(t *testing.T) {
	source := `
varying vec2 vUv;
void main() {
    vUv = vec2(0.5);
    gl_Position = vec4(0.0, 0.0, 0.0, 1.0);
}
`
	result := Convert(source, SourceGLSL, TargetWGSL, StageVertex)
	require.True(t, result.Success, "conversion failed: %s", result.Error)
	assert.Contains(t, result.Output, "@vertex")
}

func TestConvert_UnknownStageMeansFragment(t *testing.T) {
	// Only "vertex" and "compute" are matched; anything else, including
	// the empty string, is fragment.
	for _, stage := range []Stage{"", "fragment", "pixel", "geometry"} {
		t.Run(string(stage), func(t *testing.T) {
			result := Convert(basicFragment, SourceGLSL, TargetWGSL, stage)
			require.True(t, result.Success, "conversion failed: %s", result.Error)
			assert.Contains(t, result.Output, "@fragment")
		})
	}
}

func TestConvert_Deterministic(t *testing.T) {
	first := Convert(basicFragment, SourceGLSL, TargetWGSL, StageFragment)
	require.True(t, first.Success, "conversion failed: %s", first.Error)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Convert(basicFragment, SourceGLSL, TargetWGSL, StageFragment))
	}
}

func TestConvert_FailedCallDoesNotPoisonLaterCalls(t *testing.T) {
	bad := Convert("void main() { gl_FragColor = ; }", SourceGLSL, TargetWGSL, StageFragment)
	require.False(t, bad.Success)

	good := Convert(basicFragment, SourceGLSL, TargetWGSL, StageFragment)
	require.True(t, good.Success, "conversion failed: %s", good.Error)
}

func TestConvertGLSL_IsConvertWithGLSLSource(t *testing.T) {
	cases := []struct {
		code   string
		target TargetDialect
		stage  Stage
	}{
		{basicFragment, TargetWGSL, StageFragment},
		{basicFragment, TargetHLSL, ""},
		{"void main() { gl_FragColor = ; }", TargetWGSL, StageFragment},
		{basicFragment, "dxbc", StageFragment},
	}
	for _, tc := range cases {
		assert.Equal(t,
			Convert(tc.code, SourceGLSL, tc.target, tc.stage),
			ConvertGLSL(tc.code, tc.target, tc.stage))
	}
}

func TestInitDiagnostics_Idempotent(t *testing.T) {
	InitDiagnostics()
	InitDiagnostics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			InitDiagnostics()
		}()
	}
	wg.Wait()

	// Installing the hook must not change conversion results.
	result := Convert(basicFragment, SourceGLSL, TargetWGSL, StageFragment)
	require.True(t, result.Success, "conversion failed: %s", result.Error)
	assert.Contains(t, result.Output, "@fragment")
}

func TestConvert_ConcurrentCallsAreIndependent(t *testing.T) {
	want := Convert(basicFragment, SourceGLSL, TargetWGSL, StageFragment)
	require.True(t, want.Success, "conversion failed: %s", want.Error)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := Convert(basicFragment, SourceGLSL, TargetWGSL, StageFragment)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
