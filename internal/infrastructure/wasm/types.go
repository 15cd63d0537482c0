// Package wasm runs compiled scene binaries headlessly with wazero. The host
// bridge records draw calls instead of rendering, which lets exports be
// verified without a browser.
package wasm

import "fmt"

// MissingImportError reports an import the host bridge does not provide.
type MissingImportError struct {
	Module string
	Name   string
}

func (e *MissingImportError) Error() string {
	return fmt.Sprintf("missing import: %s.%s", e.Module, e.Name)
}

// SignatureMismatchError reports a host import declared with the wrong type.
type SignatureMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("import %s has signature %s, host provides %s", e.Name, e.Actual, e.Expected)
}

// MissingExportError reports a required export the module lacks.
type MissingExportError struct {
	Name string
}

func (e *MissingExportError) Error() string {
	return fmt.Sprintf("module does not export %q", e.Name)
}
