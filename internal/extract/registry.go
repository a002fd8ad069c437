package extract

import (
	"errors"
	"fmt"

	"leadscout-engine/internal/extract/bingplaces"
	"leadscout-engine/internal/extract/gmaps"
	"leadscout-engine/internal/extract/types"
)

var ErrUnknownSource = errors.New("unknown source")

var sources = map[string]func() types.Source{
	gmaps.SourceName:      func() types.Source { return gmaps.New() },
	bingplaces.SourceName: func() types.Source { return bingplaces.New() },
}

// NewSource resolves a caller-supplied source identifier.
func NewSource(name string) (types.Source, error) {
	mk, ok := sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return mk(), nil
}

func SourceNames() []string {
	out := make([]string, 0, len(sources))
	for n := range sources {
		out = append(out, n)
	}
	return out
}
