// Copyright 2026 The ShaderConverter Authors
// SPDX-License-Identifier: MIT

package wgslout

import (
	"fmt"

	"github.com/gogpu/naga/ir"
)

// getTypeName returns the WGSL type name for a type handle.
func (w *Writer) getTypeName(handle ir.TypeHandle) string {
	if int(handle) >= len(w.module.Types) {
		return fmt.Sprintf("type_%d", handle)
	}
	// Structs use their registered name
	if name, ok := w.typeNames[handle]; ok {
		return name
	}
	return w.typeInnerToWGSL(w.module.Types[handle].Inner)
}

// typeInnerToWGSL returns the WGSL name for a TypeInner.
func (w *Writer) typeInnerToWGSL(inner ir.TypeInner) string {
	switch t := inner.(type) {
	case ir.ScalarType:
		return scalarToWGSL(t)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", t.Size, scalarToWGSL(t.Scalar))
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", t.Columns, t.Rows, scalarToWGSL(t.Scalar))
	case ir.ArrayType:
		if t.Size.Constant != nil {
			return fmt.Sprintf("array<%s, %d>", w.getTypeName(t.Base), *t.Size.Constant)
		}
		return fmt.Sprintf("array<%s>", w.getTypeName(t.Base))
	case ir.StructType:
		// Anonymous struct inner without a registered handle
		return "struct_unknown"
	case ir.PointerType:
		return w.pointerToWGSL(t)
	case ir.AtomicType:
		return fmt.Sprintf("atomic<%s>", scalarToWGSL(t.Scalar))
	case ir.SamplerType:
		if t.Comparison {
			return "sampler_comparison"
		}
		return "sampler"
	case ir.ImageType:
		return imageToWGSL(t)
	default:
		return "unknown_type"
	}
}

// scalarToWGSL returns the WGSL name for a scalar type.
func scalarToWGSL(t ir.ScalarType) string {
	switch t.Kind {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarSint:
		return "i32"
	case ir.ScalarUint:
		return "u32"
	case ir.ScalarFloat:
		if t.Width == 2 {
			return "f16"
		}
		return "f32"
	default:
		return "i32"
	}
}

// pointerToWGSL returns the WGSL name for a pointer type.
func (w *Writer) pointerToWGSL(t ir.PointerType) string {
	var space string
	switch t.Space {
	case ir.SpaceFunction:
		space = "function"
	case ir.SpacePrivate:
		space = "private"
	case ir.SpaceWorkGroup:
		space = "workgroup"
	case ir.SpaceUniform:
		space = "uniform"
	case ir.SpaceStorage:
		space = "storage"
	default:
		space = "function"
	}
	return fmt.Sprintf("ptr<%s, %s>", space, w.getTypeName(t.Base))
}

// imageToWGSL returns the WGSL name for a texture type.
func imageToWGSL(t ir.ImageType) string {
	dim := imageDimSuffix(t.Dim)
	if t.Arrayed {
		dim += "_array"
	}

	switch t.Class {
	case ir.ImageClassDepth:
		if t.Multisampled {
			return "texture_depth_multisampled_2d"
		}
		return "texture_depth_" + dim
	case ir.ImageClassStorage:
		// Storage texel format is not tracked in the IR; rgba8unorm is the
		// most common interchange format.
		return fmt.Sprintf("texture_storage_%s<rgba8unorm, write>", dim)
	default:
		if t.Multisampled {
			return "texture_multisampled_2d<f32>"
		}
		return fmt.Sprintf("texture_%s<f32>", dim)
	}
}

// imageDimSuffix returns the dimension part of a WGSL texture type name.
func imageDimSuffix(dim ir.ImageDimension) string {
	switch dim {
	case ir.Dim1D:
		return "1d"
	case ir.Dim2D:
		return "2d"
	case ir.Dim3D:
		return "3d"
	case ir.DimCube:
		return "cube"
	default:
		return "2d"
	}
}
