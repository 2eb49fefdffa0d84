package catalog

import (
	"context"
	"fmt"

	"github.com/helmcode/devdiag/pkg/parser"
)

// Source provides raw catalog bytes from a file, URL or cluster object.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// LoadError reports a catalog that could not be read or parsed. A process
// must not serve requests with a catalog that failed to load.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load fetches, parses and compiles the catalog behind src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return nil, &LoadError{Source: src.Location(), Err: err}
	}
	return FromBytes(src.Location(), raw)
}

// FromBytes parses and compiles a catalog document. location only labels
// errors.
func FromBytes(location string, raw []byte) (*Catalog, error) {
	entries, err := parser.ParseCatalog(raw)
	if err != nil {
		return nil, &LoadError{Source: location, Err: err}
	}
	return Compile(entries), nil
}
