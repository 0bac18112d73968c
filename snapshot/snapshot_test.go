// Package snapshot_test provides golden snapshot tests for the conversion
// pipeline.
//
// For each input shader in testdata/in/, the test converts through all four
// target dialects and compares output to golden files stored in
// testdata/golden/{hlsl,wgsl,msl,glsl}/. The source dialect and pipeline
// stage come from the input file extension: .frag, .vert, and .comp are
// permissive GLSL at the matching stage; .wgsl is strict WGSL.
//
// To regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
package snapshot_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	shaderconverter "github.com/sidunrealde/ShaderConverter"
)

// shaderFile represents an input shader loaded from disk.
type shaderFile struct {
	name    string // base name without extension (e.g., "plasma")
	source  string
	dialect shaderconverter.SourceDialect
	stage   shaderconverter.Stage
}

var targets = []struct {
	dialect shaderconverter.TargetDialect
	ext     string
}{
	{shaderconverter.TargetHLSL, ".hlsl"},
	{shaderconverter.TargetWGSL, ".wgsl"},
	{shaderconverter.TargetMSL, ".metal"},
	{shaderconverter.TargetGLSL, ".glsl"},
}

// TestSnapshots is the main golden snapshot test. It loads all input
// shaders, converts each to every target dialect, and compares with golden
// files.
func TestSnapshots(t *testing.T) {
	shaders := loadInputShaders(t, filepath.Join("testdata", "in"))
	if len(shaders) == 0 {
		t.Skip("no input shaders in testdata/in/; add shaders and run with UPDATE_GOLDEN=1 to create goldens")
	}

	for i := range shaders {
		shader := &shaders[i]
		t.Run(shader.name, func(t *testing.T) {
			for _, target := range targets {
				t.Run(string(target.dialect), func(t *testing.T) {
					result := shaderconverter.Convert(shader.source, shader.dialect, target.dialect, shader.stage)
					if !result.Success {
						t.Fatalf("[%s] conversion to %s failed: %s", shader.name, target.dialect, result.Error)
					}
					golden := filepath.Join("testdata", "golden", string(target.dialect), shader.name+target.ext)
					compareGolden(t, golden, result.Output)
				})
			}
		})
	}
}

// loadInputShaders reads all recognized shader files from the given
// directory. A missing directory means the suite has no fixtures checked in.
func loadInputShaders(t *testing.T, dir string) []shaderFile {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read input directory %q: %v", dir, err)
	}

	var shaders []shaderFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		var (
			dialect shaderconverter.SourceDialect
			stage   shaderconverter.Stage
		)
		switch ext {
		case ".frag":
			dialect, stage = shaderconverter.SourceGLSL, shaderconverter.StageFragment
		case ".vert":
			dialect, stage = shaderconverter.SourceGLSL, shaderconverter.StageVertex
		case ".comp":
			dialect, stage = shaderconverter.SourceGLSL, shaderconverter.StageCompute
		case ".wgsl":
			dialect, stage = shaderconverter.SourceWGSL, shaderconverter.StageFragment
		default:
			continue
		}
		data, readErr := os.ReadFile(filepath.Join(dir, entry.Name()))
		if readErr != nil {
			t.Fatalf("read shader %q: %v", entry.Name(), readErr)
		}
		shaders = append(shaders, shaderFile{
			name:    strings.TrimSuffix(entry.Name(), ext),
			source:  string(data),
			dialect: dialect,
			stage:   stage,
		})
	}

	// Sort for deterministic test order
	sort.Slice(shaders, func(i, j int) bool {
		return shaders[i].name < shaders[j].name
	})

	return shaders
}

// ---------------------------------------------------------------------------
// Golden File Comparison
// ---------------------------------------------------------------------------

// compareGolden compares actual output with the golden file at path.
// If UPDATE_GOLDEN is set, writes actual output as the new golden file.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			t.Fatalf("create golden dir: %v", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(actual), 0o644); wErr != nil {
			t.Fatalf("write golden file: %v", wErr)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("golden file missing: %s\nRun with UPDATE_GOLDEN=1 to create.\n\nActual output:\n%s", path, truncate(actual, 500))
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	// Normalize line endings for cross-platform comparison.
	// Git may convert \n to \r\n on Windows checkout.
	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	actualStr := strings.ReplaceAll(actual, "\r\n", "\n")

	if expectedStr != actualStr {
		diff := diffStrings(expectedStr, actualStr)
		t.Errorf("output differs from golden %s:\n%s", path, diff)
	}
}

// diffStrings produces a simple line-by-line diff showing the first difference
// and surrounding context.
func diffStrings(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var sb strings.Builder
	maxLines := len(expectedLines)
	if len(actualLines) > maxLines {
		maxLines = len(actualLines)
	}

	const contextLines = 3
	firstDiff := -1
	for i := 0; i < maxLines; i++ {
		var eLine, aLine string
		if i < len(expectedLines) {
			eLine = expectedLines[i]
		}
		if i < len(actualLines) {
			aLine = actualLines[i]
		}
		if eLine != aLine {
			firstDiff = i
			break
		}
	}

	if firstDiff < 0 {
		return "(no difference found)"
	}

	fmt.Fprintf(&sb, "first difference at line %d:\n", firstDiff+1)
	fmt.Fprintf(&sb, "  expected lines: %d\n", len(expectedLines))
	fmt.Fprintf(&sb, "  actual lines:   %d\n\n", len(actualLines))

	// Show context around the first difference
	start := firstDiff - contextLines
	if start < 0 {
		start = 0
	}
	end := firstDiff + contextLines + 1
	if end > maxLines {
		end = maxLines
	}

	for i := start; i < end; i++ {
		prefix := " "
		var eLine, aLine string
		if i < len(expectedLines) {
			eLine = expectedLines[i]
		}
		if i < len(actualLines) {
			aLine = actualLines[i]
		}
		if eLine != aLine {
			prefix = "!"
		}
		fmt.Fprintf(&sb, "%s %4d expected: %s\n", prefix, i+1, truncate(eLine, 120))
		if eLine != aLine {
			fmt.Fprintf(&sb, "%s %4d actual:   %s\n", prefix, i+1, truncate(aLine, 120))
		}
	}

	return sb.String()
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
