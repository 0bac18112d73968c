// Package normalize rewrites permissive GLSL source into the strict
// Vulkan-flavored form the GLSL frontend accepts.
//
// Shaders written for WebGL-era pipelines commonly omit the version
// directive, declare uTime/uResolution as loose uniforms, and use legacy
// varying declarations. Normalization gives all of them one canonical
// shape: a fixed header with a Globals uniform block, loose engine
// uniforms commented out in place, and the well-known varyings rewritten
// to explicit location-qualified declarations.
package normalize

import (
	"fmt"
	"strings"
)

// Header is the canonical preamble prepended to every normalized shader.
// It pins the GLSL version and provides the engine uniforms through a
// single uniform block at set 0, binding 0.
const Header = `#version 450
layout(set = 0, binding = 0) uniform Globals {
    float uTime;
    vec2 uResolution;
};`

// engineUniforms are loose uniform declarations superseded by the
// Globals block. Matching lines are commented out so line numbers in
// diagnostics stay stable.
var engineUniforms = map[string]struct{}{
	"uniform float uTime;":      {},
	"uniform vec2 uResolution;": {},
}

// varyingRewrites maps legacy varying declarations to their fixed
// interface locations. Only these exact forms are recognized; variants
// with different spacing or names pass through untouched.
var varyingRewrites = map[string]varyingSlot{
	"varying vec2 vUv;":       {location: 0, glslType: "vec2", name: "vUv"},
	"varying vec3 vNormal;":   {location: 1, glslType: "vec3", name: "vNormal"},
	"varying vec3 vPosition;": {location: 2, glslType: "vec3", name: "vPosition"},
}

type varyingSlot struct {
	location uint32
	glslType string
	name     string
}

// Source normalizes permissive GLSL source for the given stage.
// It never fails; unrecognized lines pass through unchanged.
func Source(src, stage string) string {
	direction := "out"
	if isFragment(stage) {
		direction = "in"
	}

	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Version directives and precision qualifiers are replaced by
		// the canonical header.
		if strings.HasPrefix(trimmed, "#version") || strings.HasPrefix(trimmed, "precision ") {
			continue
		}

		if _, ok := engineUniforms[trimmed]; ok {
			out = append(out, "// "+line)
			continue
		}

		if slot, ok := varyingRewrites[trimmed]; ok {
			out = append(out, fmt.Sprintf("layout(location = %d) %s %s %s;",
				slot.location, direction, slot.glslType, slot.name))
			continue
		}

		out = append(out, line)
	}

	return Header + "\n" + strings.Join(out, "\n")
}

// isFragment reports whether the stage selector names the fragment
// stage. Anything that is not vertex or compute is treated as fragment.
func isFragment(stage string) bool {
	return stage != "vertex" && stage != "compute"
}
