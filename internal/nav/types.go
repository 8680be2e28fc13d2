package nav

import "github.com/bundledoc/bundledoc/internal/encode"

// Lookup is the in-memory form of a generated index.
type Lookup struct {
	Path    string
	Entries []encode.Reference
	ByIndex map[uint32]*encode.Reference
	ByName  map[string][]uint32
}

type ResolveOptions struct {
	Fuzzy bool
	Limit int
}

type EntryRecord struct {
	Name  string  `json:"name"`
	Index uint32  `json:"index"`
	Base  *uint32 `json:"base,omitempty"`
	Score float64 `json:"score,omitempty"`
}

func recordFromEntry(entry *encode.Reference) EntryRecord {
	if entry == nil {
		return EntryRecord{}
	}
	return EntryRecord{Name: entry.Name, Index: entry.Index, Base: entry.Base}
}
