package dsa

import (
	"github.com/armon/go-radix"
)

// PrefixIndex keeps words in a compressed prefix tree (go-radix) for
// forward completion. It complements SuffixTrie, which only answers
// questions about word endings.
//
// Time Complexity: O(k) per lookup where k is key length.
type PrefixIndex struct {
	tree *radix.Tree
}

// NewPrefixIndex creates an empty index.
func NewPrefixIndex() *PrefixIndex {
	return &PrefixIndex{
		tree: radix.New(),
	}
}

// Add stores word. Returns false if it was already present.
func (p *PrefixIndex) Add(word string) bool {
	_, updated := p.tree.Insert(word, struct{}{})
	return !updated
}

// Delete removes word. Returns true if it was present.
func (p *PrefixIndex) Delete(word string) bool {
	_, deleted := p.tree.Delete(word)
	return deleted
}

// Complete returns stored words starting with prefix in lexical order.
// A limit of zero or less returns every match.
// Time Complexity: O(k + m) where k is prefix length, m is number of matches.
func (p *PrefixIndex) Complete(prefix string, limit int) []string {
	var results []string
	p.tree.WalkPrefix(prefix, func(k string, _ interface{}) bool {
		results = append(results, k)
		return limit > 0 && len(results) >= limit
	})
	return results
}
