package nav

import (
	"sort"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/bundledoc/bundledoc/internal/encode"
	"github.com/bundledoc/bundledoc/internal/output"
	"github.com/bundledoc/bundledoc/internal/pool"
	"github.com/bundledoc/bundledoc/internal/search"
)

var (
	ErrSymbolNotFound  = errors.Base("symbol not found")
	ErrAmbiguousSymbol = errors.Base("ambiguous symbol")
)

func NewLookup(entries []encode.Reference) *Lookup {
	lookup := &Lookup{
		Entries: entries,
		ByIndex: make(map[uint32]*encode.Reference, len(entries)),
		ByName:  make(map[string][]uint32),
	}
	for i := range entries {
		entry := &entries[i]
		lookup.ByIndex[entry.Index] = entry
		lookup.ByName[entry.Name] = append(lookup.ByName[entry.Name], entry.Index)
	}
	for name := range lookup.ByName {
		sort.Slice(lookup.ByName[name], func(i, j int) bool {
			return lookup.ByName[name][i] < lookup.ByName[name][j]
		})
	}
	return lookup
}

// LoadLookup reads the index written by generate into dir.
func LoadLookup(dir string) (*Lookup, error) {
	entries, path, err := output.ReadIndex(dir)
	if err != nil {
		return nil, err
	}
	lookup := NewLookup(entries)
	lookup.Path = path
	return lookup, nil
}

// Resolve matches query against entry indices first, then pretty names. A
// mangled query is reduced to its pretty name.
func Resolve(l *Lookup, query string) []*encode.Reference {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if idx, err := strconv.ParseUint(query, 10, 32); err == nil {
		if entry, ok := l.ByIndex[uint32(idx)]; ok {
			return []*encode.Reference{entry}
		}
	}
	indices := l.ByName[pool.PrettyName(query)]
	out := make([]*encode.Reference, 0, len(indices))
	for _, idx := range indices {
		if entry := l.ByIndex[idx]; entry != nil {
			out = append(out, entry)
		}
	}
	return out
}

func ResolveSingle(l *Lookup, query string) (*encode.Reference, error) {
	matches := Resolve(l, query)
	if len(matches) == 0 {
		return nil, errors.Errorf("%w: %q", ErrSymbolNotFound, query)
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	options := make([]string, 0, len(matches))
	for _, match := range matches {
		options = append(options, strconv.FormatUint(uint64(match.Index), 10))
	}
	return nil, errors.Errorf("%w: %q matches indices %s", ErrAmbiguousSymbol, query, strings.Join(options, ", "))
}

// ResolveWithOptions falls back to ranked search when an exact lookup misses
// and opts.Fuzzy is set.
func ResolveWithOptions(l *Lookup, index *search.Index, query string, opts ResolveOptions) []EntryRecord {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	exact := Resolve(l, query)
	if len(exact) > 0 || !opts.Fuzzy || index == nil {
		records := make([]EntryRecord, 0, len(exact))
		for _, entry := range exact {
			records = append(records, recordFromEntry(entry))
		}
		if len(records) > limit {
			records = records[:limit]
		}
		return records
	}

	results := search.Search(index, query, limit)
	records := make([]EntryRecord, 0, len(results))
	for _, result := range results {
		entry := l.ByIndex[result.Index]
		if entry == nil {
			continue
		}
		record := recordFromEntry(entry)
		record.Score = result.Score
		records = append(records, record)
	}
	return records
}
