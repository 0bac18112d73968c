// Copyright 2026 The ShaderConverter Authors
// SPDX-License-Identifier: MIT

// Package wgslout generates WGSL source code from Naga IR modules.
//
// The writer walks a validated ir.Module and emits WGSL text: struct
// definitions with I/O attributes, module-scope constants and variables
// with their address spaces and resource bindings, helper functions,
// and entry points carrying stage attributes.
//
// Basic usage:
//
//	output, info, err := wgslout.Compile(module, wgslout.DefaultOptions())
//	if err != nil {
//		// handle error
//	}
//	fmt.Println(output)
//	fmt.Println(info.EntryPointNames)
//
// The generated code targets the WGSL specification as implemented by
// current WebGPU runtimes. Features the language has no equivalent for,
// such as matrix inversion or NaN tests, produce an error instead of
// silently emitting invalid code.
package wgslout
