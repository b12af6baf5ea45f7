// Package file persists sercha-rag settings as TOML under the data directory.
package file
