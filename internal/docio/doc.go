// Package docio moves documents between files and jsontree values.
//
// Documents and schemas are read and written as JSON or YAML, chosen by file
// extension. Object member order survives both formats. The package also
// decodes RFC 6902 patches and applies them through an editor.Controller,
// and renders line diffs between two documents.
package docio
