// Package normalisers selects a Normaliser for a file by its extension.
// Markdown and HTML are reduced to plain text; anything else is indexed as-is.
package normalisers
