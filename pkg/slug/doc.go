// Package slug turns display names into URL-safe identifiers.
//
// The fake backend derives product and category slugs from their names with
// it, the same way the real one does on create:
//
//	slug.Make("Code Formatter & Beautifier Tool") // "code-formatter-beautifier-tool"
//	slug.Make("Café Menü", slug.MaxLength(8))       // "cafe-men"
//
// Accents are folded with Unicode decomposition (golang.org/x/text), every
// other run of non-alphanumerics becomes one separator, and leading or
// trailing separators are dropped.
package slug
