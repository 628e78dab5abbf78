package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("symbol index is closed")

// TypeRecord is one declared type as stored in the index.
type TypeRecord struct {
	// Key is the structural handle key, e.g. "Lcom/acme/Outer$Inner;".
	Key string
	// Binary is the javac binary name: com.acme.Outer$Inner.
	Binary string
	// Qualified is the dotted source name: com.acme.Outer.Inner.
	Qualified string
	Simple    string
	Package   string
	Kind      string
	File      string
}

// SymbolIndex persists type declarations and answers exact-match searches.
type SymbolIndex interface {
	// ReplaceFile drops the records previously stored for file and stores
	// records in their place, together with the file's content hash.
	ReplaceFile(ctx context.Context, file, contentHash string, records []TypeRecord) error

	// RemoveFile drops every record of file.
	RemoveFile(ctx context.Context, file string) error

	// FileHash returns the content hash recorded by the last ReplaceFile.
	FileHash(ctx context.Context, file string) (string, bool, error)

	// FindTypes matches pattern case-insensitively against the qualified
	// name when it contains a dot and against the simple name otherwise.
	FindTypes(ctx context.Context, pattern string) ([]TypeRecord, error)

	Count(ctx context.Context) (int, error)

	SetMeta(ctx context.Context, key, value string) error
	GetMeta(ctx context.Context, key string) (string, bool, error)

	Close() error
}
