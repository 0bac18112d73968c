// Copyright 2026 The ShaderConverter Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"fmt"

	"github.com/gogpu/naga/ir"
)

// WriterFlags control optional writer behavior.
type WriterFlags uint32

const (
	// WriterFlagNone enables no optional behavior.
	WriterFlagNone WriterFlags = 0
	// WriterFlagExplicitTypes spells out the type on every let binding
	// instead of relying on inference.
	WriterFlagExplicitTypes WriterFlags = 1 << 0
)

// Options configures WGSL code generation.
type Options struct {
	// Flags control optional writer behavior.
	Flags WriterFlags

	// EntryPoint selects a single entry point to emit.
	// Empty means all entry points.
	EntryPoint string
}

// DefaultOptions returns the default WGSL generation options.
func DefaultOptions() Options {
	return Options{
		Flags: WriterFlagNone,
	}
}

// TranslationInfo contains metadata about the generated code.
type TranslationInfo struct {
	// EntryPointNames maps IR entry point names to generated WGSL names.
	EntryPointNames map[string]string
}

// Compile generates WGSL source code from an IR module.
func Compile(module *ir.Module, options Options) (string, TranslationInfo, error) {
	if module == nil {
		return "", TranslationInfo{}, fmt.Errorf("wgslout: module is nil")
	}

	w := newWriter(module, &options)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("wgslout: %w", err)
	}

	info := TranslationInfo{
		EntryPointNames: w.entryPointNames,
	}

	return w.String(), info, nil
}
