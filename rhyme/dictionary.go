// Package rhyme provides a rhyming dictionary.
//
// Architecture:
// - SuffixTrie answers "which stored word ends most like this one"
// - PrefixIndex (radix tree) answers completions
// - SubstringIndex (suffix array) answers substring search, rebuilt lazily
//
// A single RWMutex guards the whole dictionary: mutations take the
// write lock for their full duration, and so does Rhyme, which uses
// scratch buffers owned by the trie.
package rhyme

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/richinex/rhymer/internal/dsa"
)

// Errors returned by Dictionary operations.
var (
	ErrEmptyWord      = dsa.ErrEmptyEntry
	ErrInvalidWord    = dsa.ErrInvalidEntry
	ErrEmptyTree      = dsa.ErrEmptyTree
	ErrNoJointSuffix  = dsa.ErrNoJointSuffix
	ErrOnlyKeyMatches = dsa.ErrOnlyKeyMatches
)

// WordSource yields words to load into a Dictionary.
type WordSource interface {
	Each(ctx context.Context, fn func(word string) error) error
}

// Match is the result of a rhyme lookup.
type Match struct {
	Word         string `json:"word"`
	Rhyme        string `json:"rhyme"`
	SharedSuffix int    `json:"shared_suffix"`
}

// Stats describes the dictionary contents.
type Stats struct {
	Entries     int    `json:"entries"`
	Nodes       int    `json:"nodes"`
	Fingerprint uint64 `json:"fingerprint"`
}

// FingerprintHex renders the fingerprint as 16 hex digits.
func (s Stats) FingerprintHex() string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], s.Fingerprint)
	return hex.EncodeToString(buf[:])
}

// LoadReport summarizes a Load call.
type LoadReport struct {
	Added     int `json:"added"`
	Duplicate int `json:"duplicate"`
	Rejected  int `json:"rejected"`
}

// Dictionary stores words and finds rhymes for them.
// Safe for concurrent use.
type Dictionary struct {
	mu sync.RWMutex

	rhymes   *dsa.SuffixTrie
	prefixes *dsa.PrefixIndex

	// XOR of per-word hashes, order independent
	fingerprint uint64

	// Lazy-built substring index
	search      *dsa.SubstringIndex
	searchDirty bool
}

// New creates an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		rhymes:      dsa.NewSuffixTrie(),
		prefixes:    dsa.NewPrefixIndex(),
		searchDirty: true,
	}
}

// Add stores word. Returns false if it was already present.
func (d *Dictionary) Add(word string) (bool, error) {
	entry, err := dsa.NewEntry(word)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addLocked(entry), nil
}

func (d *Dictionary) addLocked(entry dsa.Entry) bool {
	if !d.rhymes.Insert(entry) {
		return false
	}
	d.prefixes.Add(string(entry))
	d.fingerprint ^= hashWord(string(entry))
	d.searchDirty = true
	return true
}

// Has reports whether word is stored.
func (d *Dictionary) Has(word string) (bool, error) {
	entry, err := dsa.NewEntry(word)
	if err != nil {
		return false, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rhymes.Contains(entry), nil
}

// Remove deletes word. Returns false if it was not present.
func (d *Dictionary) Remove(word string) (bool, error) {
	entry, err := dsa.NewEntry(word)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.rhymes.Remove(entry) {
		return false, nil
	}
	d.prefixes.Delete(word)
	d.fingerprint ^= hashWord(word)
	d.searchDirty = true
	return true, nil
}

// Rhyme finds the stored word, other than word itself, sharing the
// longest suffix with it. Failures are ErrEmptyTree, ErrNoJointSuffix
// and ErrOnlyKeyMatches; match them with errors.Is.
func (d *Dictionary) Rhyme(word string) (Match, error) {
	entry, err := dsa.NewEntry(word)
	if err != nil {
		return Match{}, err
	}

	// the matcher writes to the trie's scratch buffer
	d.mu.Lock()
	found, err := d.rhymes.FindLongestSharedSuffix(entry)
	d.mu.Unlock()
	if err != nil {
		return Match{}, fmt.Errorf("rhyme for %q: %w", word, err)
	}

	return Match{
		Word:         word,
		Rhyme:        found,
		SharedSuffix: dsa.SharedSuffixLen(word, found),
	}, nil
}

// Count returns the number of stored words.
func (d *Dictionary) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rhymes.Count()
}

// Words returns every stored word, sorted.
func (d *Dictionary) Words() []string {
	d.mu.RLock()
	words := d.rhymes.Extract()
	d.mu.RUnlock()

	sort.Strings(words)
	return words
}

// Complete returns stored words starting with prefix, sorted.
// A limit of zero or less returns every match.
func (d *Dictionary) Complete(prefix string, limit int) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.prefixes.Complete(prefix, limit)
}

// Search returns stored words containing pattern, sorted.
// A limit of zero or less returns every match.
func (d *Dictionary) Search(pattern string, limit int) []string {
	d.mu.Lock()
	if d.searchDirty || d.search == nil {
		d.search = dsa.BuildSubstringIndex(d.rhymes.Extract())
		d.searchDirty = false
	}
	index := d.search
	d.mu.Unlock()

	// the index is immutable once built
	return index.Find(pattern, limit)
}

// Fingerprint returns a digest of the stored words that does not depend
// on insertion order. Two dictionaries holding the same words agree.
func (d *Dictionary) Fingerprint() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fingerprint
}

// Stats returns a snapshot of the dictionary size.
func (d *Dictionary) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Stats{
		Entries:     d.rhymes.Count(),
		Nodes:       d.rhymes.NodeCount(),
		Fingerprint: d.fingerprint,
	}
}

// Load adds every word produced by src. Empty words and words that are
// not valid UTF-8 are counted as rejected rather than failing the load.
func (d *Dictionary) Load(ctx context.Context, src WordSource) (LoadReport, error) {
	var report LoadReport

	err := src.Each(ctx, func(word string) error {
		entry, err := dsa.NewEntry(word)
		if err != nil {
			report.Rejected++
			return nil
		}

		d.mu.Lock()
		added := d.addLocked(entry)
		d.mu.Unlock()

		if added {
			report.Added++
		} else {
			report.Duplicate++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to load words: %w", err)
	}
	return report, nil
}

func hashWord(word string) uint64 {
	return xxhash.Sum64String(word)
}
