package shaderconverter

// ConversionResult is the outcome of a single conversion call.
//
// Exactly one of Output and Error is meaningful: Output when Success is
// true, Error otherwise. No partial output is ever returned.
type ConversionResult struct {
	Success bool
	Output  string
	Error   string
}

func errorResult(msg string) ConversionResult {
	return ConversionResult{Error: msg}
}
