package shaderconverter

import (
	"runtime"
	"testing"

	"github.com/sidunrealde/ShaderConverter/glslin"
	"github.com/sidunrealde/ShaderConverter/normalize"
)

// ---------------------------------------------------------------------------
// Test shader sources — realistic GLSL shaders at different complexity levels
// ---------------------------------------------------------------------------

// shaderSmallFragment is a minimal legacy fragment shader (~1 line body).
const shaderSmallFragment = `
void main() {
    gl_FragColor = vec4(1.0, 0.0, 0.0, 1.0);
}
`

// shaderSmallVertex is a minimal vertex shader with a legacy varying.
const shaderSmallVertex = `
varying vec2 vUv;
void main() {
    vUv = vec2(0.5, 0.5);
    gl_Position = vec4(0.0, 0.0, 0.0, 1.0);
}
`

// shaderMediumPlasma is a WebGL-era plasma effect using the engine uniforms
// and legacy conventions the normalizer rewrites (~15 lines of body).
const shaderMediumPlasma = `
precision mediump float;
uniform float uTime;
uniform vec2 uResolution;
varying vec2 vUv;

void main() {
    vec2 p = vUv * 2.0 - 1.0;
    float t = uTime * 0.5;

    float v = sin(p.x * 10.0 + t);
    v = v + sin((p.y * 10.0 + t) * 0.5);
    v = v + sin((p.x * 10.0 + p.y * 10.0 + t) * 0.5);

    float cx = p.x + 0.5 * sin(t * 0.2);
    float cy = p.y + 0.5 * cos(t * 0.3);
    v = v + sin(sqrt(cx * cx + cy * cy + 1.0) * 10.0 + t);

    vec3 color = vec3(sin(v), sin(v + 1.0), sin(v + 2.0)) * 0.5 + 0.5;
    gl_FragColor = vec4(color, 1.0);
}
`

// shaderLargeLighting is a larger fragment shader with diffuse and specular
// lighting, tone mapping, and gamma correction (~30 lines of body).
const shaderLargeLighting = `
precision highp float;
uniform float uTime;
varying vec3 vNormal;
varying vec3 vPosition;

void main() {
    vec3 N = normalize(vNormal);

    vec3 lightPos = vec3(10.0, 10.0, 10.0);
    vec3 lightColor = vec3(1.0, 1.0, 1.0);
    vec3 L = normalize(lightPos - vPosition);

    float NdotL = max(dot(N, L), 0.0);
    vec3 diffuse = lightColor * NdotL;

    vec3 viewDir = normalize(vec3(0.0, 0.0, 5.0) - vPosition);
    vec3 halfDir = normalize(L + viewDir);
    float NdotH = max(dot(N, halfDir), 0.0);
    float specPower = pow(NdotH, 32.0);
    vec3 specular = lightColor * specPower;

    vec3 ambient = vec3(0.05, 0.05, 0.05);
    vec3 baseColor = vec3(0.8, 0.2, 0.2);

    vec3 finalColor = ambient + baseColor * diffuse + specular * 0.5;
    vec3 toneMapped = finalColor / (finalColor + vec3(1.0, 1.0, 1.0));

    float gamma = 1.0 / 2.2;
    vec3 corrected = vec3(
        pow(toneMapped.x, gamma),
        pow(toneMapped.y, gamma),
        pow(toneMapped.z, gamma));

    gl_FragColor = vec4(corrected, 1.0);
}
`

// ---------------------------------------------------------------------------
// Complexity-grouped shaders for table-driven benchmarks
// ---------------------------------------------------------------------------

type shaderCase struct {
	name   string
	source string
	stage  Stage
}

var shadersByComplexity = []shaderCase{
	{"small_fragment", shaderSmallFragment, StageFragment},
	{"small_vertex", shaderSmallVertex, StageVertex},
	{"medium_plasma", shaderMediumPlasma, StageFragment},
	{"large_lighting", shaderLargeLighting, StageFragment},
}

// ---------------------------------------------------------------------------
// End-to-end conversion benchmarks
// ---------------------------------------------------------------------------

// BenchmarkConvert benchmarks full GLSL-to-WGSL conversion grouped by shader
// complexity. Reports allocations and throughput in bytes/sec.
func BenchmarkConvert(b *testing.B) {
	for _, sc := range shadersByComplexity {
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(sc.source)))
			b.ResetTimer()

			var result ConversionResult
			for i := 0; i < b.N; i++ {
				result = Convert(sc.source, SourceGLSL, TargetWGSL, sc.stage)
				if !result.Success {
					b.Fatalf("convert failed: %s", result.Error)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// BenchmarkConvertAllTargets benchmarks the same medium shader converted to
// each target dialect for cross-backend comparison.
func BenchmarkConvertAllTargets(b *testing.B) {
	source := shaderMediumPlasma
	for _, target := range []TargetDialect{TargetHLSL, TargetWGSL, TargetMSL, TargetGLSL} {
		b.Run(string(target), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(source)))
			b.ResetTimer()

			var result ConversionResult
			for i := 0; i < b.N; i++ {
				result = Convert(source, SourceGLSL, target, StageFragment)
				if !result.Success {
					b.Fatalf("convert failed: %s", result.Error)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// ---------------------------------------------------------------------------
// Individual pipeline stage benchmarks (normalize, parse, lower)
// ---------------------------------------------------------------------------

// BenchmarkNormalize benchmarks the source normalization pass alone.
func BenchmarkNormalize(b *testing.B) {
	for _, sc := range shadersByComplexity {
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(sc.source)))
			b.ResetTimer()

			var out string
			for i := 0; i < b.N; i++ {
				out = normalize.Source(sc.source, string(sc.stage))
			}
			runtime.KeepAlive(out)
		})
	}
}

// BenchmarkParseGLSL benchmarks GLSL parsing (tokenization + AST
// construction) of normalized source for shaders of different complexity.
func BenchmarkParseGLSL(b *testing.B) {
	for _, sc := range shadersByComplexity {
		b.Run(sc.name, func(b *testing.B) {
			normalized := normalize.Source(sc.source, string(sc.stage))

			b.ReportAllocs()
			b.SetBytes(int64(len(normalized)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				ast, err := glslin.Parse(normalized)
				if err != nil {
					b.Fatalf("parse failed: %v", err)
				}
				runtime.KeepAlive(ast)
			}
		})
	}
}

// BenchmarkLowerGLSL benchmarks AST-to-IR lowering for shaders of different
// complexity.
func BenchmarkLowerGLSL(b *testing.B) {
	for _, sc := range shadersByComplexity {
		b.Run(sc.name, func(b *testing.B) {
			normalized := normalize.Source(sc.source, string(sc.stage))
			ast, err := glslin.Parse(normalized)
			if err != nil {
				b.Fatalf("parse failed: %v", err)
			}

			b.ReportAllocs()
			b.SetBytes(int64(len(normalized)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				module, lErr := glslin.LowerWithSource(ast, sc.stage.shaderStage(), normalized)
				if lErr != nil {
					b.Fatalf("lower failed: %v", lErr)
				}
				runtime.KeepAlive(module)
			}
		})
	}
}
