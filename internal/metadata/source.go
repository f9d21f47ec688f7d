package metadata

import (
	"context"
	"errors"
	"fmt"
)

// Source records how a song was submitted.
type Source string

const (
	SourceManual  Source = "manual"
	SourceSpotify Source = "spotify"
	SourceYouTube Source = "youtube"
)

func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceManual, SourceSpotify, SourceYouTube:
		return Source(s), nil
	case "":
		return SourceManual, nil
	}
	return "", fmt.Errorf("unknown submission source %q", s)
}

var (
	ErrInvalidURL   = errors.New("invalid track url")
	ErrLookupFailed = errors.New("metadata lookup failed")
	ErrNoResolver   = errors.New("no metadata resolver configured")
)

// Metadata is what a lookup knows about a track.
type Metadata struct {
	Title           string
	Artist          string
	Album           *string
	DurationSeconds *int
	ThumbnailURL    *string
	ExternalID      string
	URL             string
}

type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (*Metadata, error)
}

// Registry dispatches lookups by source. Manual submissions never reach a resolver.
type Registry struct {
	resolvers map[Source]Resolver
}

func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[Source]Resolver)}
}

func (r *Registry) Register(source Source, resolver Resolver) {
	r.resolvers[source] = resolver
}

func (r *Registry) Resolve(ctx context.Context, source Source, rawURL string) (*Metadata, error) {
	if source == SourceManual {
		return nil, fmt.Errorf("manual submissions have no metadata source")
	}
	resolver, ok := r.resolvers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoResolver, source)
	}
	return resolver.Resolve(ctx, rawURL)
}
