package labels

import (
	"log/slog"
	"sync"
)

// Resolver maps class offsets to WordNet ids and labels. The mapping table is
// loaded on construction; the lexical database on the first Labels call. It is
// safe for concurrent use.
type Resolver struct {
	mapping     *MappingTable
	lexiconPath string
	logger      *slog.Logger

	once    sync.Once
	lexicon *Lexicon
	lexErr  error
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver loads the mapping table at mappingPath. lexiconPath is only
// opened when labels are requested.
func NewResolver(mappingPath, lexiconPath string, opts ...ResolverOption) (*Resolver, error) {
	mapping, err := LoadMappingTable(mappingPath)
	if err != nil {
		return nil, err
	}
	r := NewResolverFromTable(mapping, lexiconPath, opts...)
	r.logger.Debug("mapping table loaded", "path", mappingPath, "offsets", mapping.Len(), "skipped", mapping.Skipped())
	return r, nil
}

// NewResolverFromTable builds a Resolver around an already parsed table.
func NewResolverFromTable(mapping *MappingTable, lexiconPath string, opts ...ResolverOption) *Resolver {
	r := &Resolver{mapping: mapping, lexiconPath: lexiconPath, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the WordNet id for offset.
func (r *Resolver) Lookup(offset int) (string, bool) {
	return r.mapping.Lookup(offset)
}

// WordnetIDs resolves each offset; unresolved offsets yield "".
func (r *Resolver) WordnetIDs(offsets []int) []string {
	ids := make([]string, len(offsets))
	for i, o := range offsets {
		ids[i], _ = r.mapping.Lookup(o)
	}
	return ids
}

// Labels resolves each offset to a readable label; unresolved offsets yield "".
func (r *Resolver) Labels(offsets []int) ([]string, error) {
	lex, err := r.Lexicon()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(offsets))
	for i, id := range r.WordnetIDs(offsets) {
		out[i] = lex.Label(id)
	}
	return out, nil
}

// Lexicon loads the lexical database once and returns it.
func (r *Resolver) Lexicon() (*Lexicon, error) {
	r.once.Do(func() {
		r.lexicon, r.lexErr = LoadLexicon(r.lexiconPath)
		if r.lexErr == nil {
			r.logger.Debug("lexical database loaded", "path", r.lexiconPath, "ids", r.lexicon.Len())
		}
	})
	return r.lexicon, r.lexErr
}
