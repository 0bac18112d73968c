// Copyright 2026 The ShaderConverter Authors
// SPDX-License-Identifier: MIT

package wgslout

// wgslKeywords contains WGSL keywords, reserved words, and predeclared names.
// Based on the WGSL specification.
var wgslKeywords = map[string]struct{}{
	// Keywords
	"alias": {}, "break": {}, "case": {}, "const": {}, "const_assert": {},
	"continue": {}, "continuing": {}, "default": {}, "diagnostic": {},
	"discard": {}, "else": {}, "enable": {}, "false": {}, "fn": {},
	"for": {}, "if": {}, "let": {}, "loop": {}, "override": {},
	"requires": {}, "return": {}, "struct": {}, "switch": {}, "true": {},
	"var": {}, "while": {},

	// Reserved words
	"NULL": {}, "Self": {}, "abstract": {}, "active": {}, "alignas": {},
	"alignof": {}, "as": {}, "asm": {}, "asm_fragment": {}, "async": {},
	"attribute": {}, "auto": {}, "await": {}, "become": {},
	"binding_array": {}, "cast": {}, "catch": {}, "class": {}, "co_await": {},
	"co_return": {}, "co_yield": {}, "coherent": {}, "column_major": {},
	"common": {}, "compile": {}, "compile_fragment": {}, "concept": {},
	"const_cast": {}, "consteval": {}, "constexpr": {}, "constinit": {},
	"crate": {}, "debugger": {}, "decltype": {}, "delete": {}, "demote": {},
	"demote_to_helper": {}, "do": {}, "dynamic_cast": {}, "enum": {},
	"explicit": {}, "export": {}, "extends": {}, "extern": {}, "external": {},
	"fallthrough": {}, "filter": {}, "final": {}, "finally": {}, "friend": {},
	"from": {}, "fxgroup": {}, "get": {}, "goto": {}, "groupshared": {},
	"highp": {}, "impl": {}, "implements": {}, "import": {}, "inline": {},
	"instanceof": {}, "interface": {}, "layout": {}, "lowp": {}, "macro": {},
	"macro_rules": {}, "match": {}, "mediump": {}, "meta": {}, "mod": {},
	"module": {}, "move": {}, "mut": {}, "mutable": {}, "namespace": {},
	"new": {}, "nil": {}, "noexcept": {}, "noinline": {}, "nointerpolation": {},
	"noperspective": {}, "null": {}, "nullptr": {}, "of": {}, "operator": {},
	"package": {}, "packoffset": {}, "partition": {}, "pass": {}, "patch": {},
	"pixelfragment": {}, "precise": {}, "precision": {}, "premerge": {},
	"priv": {}, "protected": {}, "pub": {}, "public": {}, "readonly": {},
	"ref": {}, "regardless": {}, "register": {}, "reinterpret_cast": {},
	"require": {}, "resource": {}, "restrict": {}, "self": {}, "set": {},
	"shared": {}, "sizeof": {}, "smooth": {}, "snorm": {}, "static": {},
	"static_assert": {}, "static_cast": {}, "std": {}, "subroutine": {},
	"super": {}, "target": {}, "template": {}, "this": {}, "thread_local": {},
	"throw": {}, "trait": {}, "try": {}, "type": {}, "typedef": {},
	"typeid": {}, "typename": {}, "typeof": {}, "union": {}, "unless": {},
	"unorm": {}, "unsafe": {}, "unsized": {}, "use": {}, "using": {},
	"varying": {}, "virtual": {}, "volatile": {}, "wgsl": {}, "where": {},
	"with": {}, "writeonly": {}, "yield": {},

	// Predeclared types
	"bool": {}, "f16": {}, "f32": {}, "i32": {}, "u32": {},
	"vec2": {}, "vec3": {}, "vec4": {},
	"vec2f": {}, "vec3f": {}, "vec4f": {},
	"vec2i": {}, "vec3i": {}, "vec4i": {},
	"vec2u": {}, "vec3u": {}, "vec4u": {},
	"vec2h": {}, "vec3h": {}, "vec4h": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},
	"array": {}, "atomic": {}, "ptr": {},
	"sampler": {}, "sampler_comparison": {},
	"texture_1d": {}, "texture_2d": {}, "texture_2d_array": {},
	"texture_3d": {}, "texture_cube": {}, "texture_cube_array": {},
	"texture_multisampled_2d": {}, "texture_depth_multisampled_2d": {},
	"texture_storage_1d": {}, "texture_storage_2d": {},
	"texture_storage_2d_array": {}, "texture_storage_3d": {},
	"texture_depth_2d": {}, "texture_depth_2d_array": {},
	"texture_depth_cube": {}, "texture_depth_cube_array": {},
	"texture_external": {},

	// Address spaces and access modes
	"function": {}, "private": {}, "workgroup": {}, "uniform": {},
	"storage": {}, "push_constant": {}, "read": {}, "write": {},
	"read_write": {},

	// Commonly collided builtin function names
	"all": {}, "any": {}, "select": {}, "abs": {}, "min": {}, "max": {},
	"clamp": {}, "saturate": {}, "floor": {}, "ceil": {}, "round": {},
	"fract": {}, "trunc": {}, "sign": {}, "sqrt": {}, "inverseSqrt": {},
	"pow": {}, "exp": {}, "exp2": {}, "log": {}, "log2": {},
	"sin": {}, "cos": {}, "tan": {}, "asin": {}, "acos": {}, "atan": {},
	"atan2": {}, "sinh": {}, "cosh": {}, "tanh": {}, "asinh": {},
	"acosh": {}, "atanh": {}, "radians": {}, "degrees": {},
	"mix": {}, "step": {}, "smoothstep": {}, "fma": {},
	"length": {}, "distance": {}, "dot": {}, "cross": {},
	"normalize": {}, "faceForward": {}, "reflect": {}, "refract": {},
	"transpose": {}, "determinant": {}, "arrayLength": {},
	"dpdx": {}, "dpdy": {}, "fwidth": {},
	"textureSample": {}, "textureSampleLevel": {}, "textureSampleBias": {},
	"textureSampleGrad": {}, "textureSampleCompare": {}, "textureLoad": {},
	"textureStore": {}, "textureDimensions": {}, "textureNumLevels": {},
	"textureNumLayers": {}, "textureNumSamples": {},
	"workgroupBarrier": {}, "storageBarrier": {}, "textureBarrier": {},
	"workgroupUniformLoad": {},
}

// isKeyword checks if a name is a WGSL keyword or reserved word.
func isKeyword(name string) bool {
	_, ok := wgslKeywords[name]
	return ok
}

// escapeKeyword escapes a name if it conflicts with WGSL keywords.
// Names starting with a double underscore are reserved by the language.
func escapeKeyword(name string) string {
	if name == "" {
		return "unnamed"
	}
	if isKeyword(name) {
		return name + "_"
	}
	if len(name) >= 2 && name[:2] == "__" {
		return "x" + name
	}
	return name
}
