// Package html provides a Normaliser for HTML documents.
// It parses the page with goquery and keeps the readable body text,
// one line per block element.
package html
