// Package dsa provides the data structures behind the rhyme dictionary.
//
// SuffixTrie is a retrieval tree keyed by the reversed characters of each
// word, so a shared path from the root is a shared suffix of the words.
// PrefixIndex (go-radix) answers forward completions and SubstringIndex
// (suffix array) answers substring search.
package dsa

import (
	"errors"
	"unicode/utf8"
)

// Errors returned when building an Entry.
var (
	ErrEmptyEntry   = errors.New("entry must not be empty")
	ErrInvalidEntry = errors.New("entry must be valid UTF-8")
)

// Entry is a non-empty UTF-8 word accepted by SuffixTrie.
// Characters are compared by code point; no folding or normalization.
type Entry string

// NewEntry validates s for use with SuffixTrie.
func NewEntry(s string) (Entry, error) {
	if s == "" {
		return "", ErrEmptyEntry
	}
	// invalid bytes would all decode to U+FFFD and collide
	if !utf8.ValidString(s) {
		return "", ErrInvalidEntry
	}
	return Entry(s), nil
}

type nodeID int32

const (
	rootID nodeID = 0

	// sentinel recorded for the root in the path tracer
	nulChar rune = 0
)

// trieNode is one vertex of the arena. Children refer to other arena slots.
type trieNode struct {
	children map[rune]nodeID
	entry    bool
}

// step is one (character, node) pair recorded while walking a key.
type step struct {
	char rune
	node nodeID
}

// pathTracer is the scratch record of a traced walk. It is owned by the
// trie and must be cleared after every use.
type pathTracer struct {
	steps []step
}

func (p *pathTracer) push(c rune, id nodeID) {
	p.steps = append(p.steps, step{char: c, node: id})
}

func (p *pathTracer) clear() {
	p.steps = p.steps[:0]
}

// SuffixTrie stores words by their reversed characters.
//
// Nodes live in an arena slice and are addressed by index; freed slots are
// recycled by later inserts. A node that is neither an entry nor has
// children never survives a Remove.
//
// SuffixTrie is not safe for concurrent use.
type SuffixTrie struct {
	nodes []trieNode
	free  []nodeID
	count int

	tracer pathTracer
	match  []rune
}

// NewSuffixTrie creates an empty trie holding only the root.
func NewSuffixTrie() *SuffixTrie {
	return &SuffixTrie{
		nodes: []trieNode{{}},
	}
}

// Insert adds entry to the trie.
// Returns true if the entry was added, false if it was already present.
// Time Complexity: O(k) where k is entry length.
func (t *SuffixTrie) Insert(entry Entry) bool {
	if entry == "" || !utf8.ValidString(string(entry)) {
		return false
	}

	id := rootID
	s := string(entry)
	for len(s) > 0 {
		c, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
		id = t.childOrCreate(id, c)
	}

	n := &t.nodes[id]
	if n.entry {
		return false
	}
	n.entry = true
	t.count++
	return true
}

// Contains reports whether entry was inserted and not removed since.
// A path that only passes through longer entries does not count.
func (t *SuffixTrie) Contains(entry Entry) bool {
	_, ok := t.track(entry, false)
	return ok
}

// Remove deletes entry and prunes every node left without purpose.
// Returns false if the entry was not present; the trie is then unchanged.
func (t *SuffixTrie) Remove(entry Entry) bool {
	defer t.tracer.clear()

	end, ok := t.track(entry, true)
	if !ok {
		return false
	}

	n := &t.nodes[end]
	n.entry = false
	t.count--

	// longer entries still pass through
	if len(n.children) > 0 {
		return true
	}

	t.prune()
	return true
}

// prune unwinds the recorded path from the childless terminal node,
// detaching each node from its parent until reaching an ancestor that
// is an entry or still has other children.
func (t *SuffixTrie) prune() {
	steps := t.tracer.steps
	last := len(steps) - 1
	char, child := steps[last].char, steps[last].node

	for i := last - 1; i >= 0; i-- {
		parent := steps[i].node
		delete(t.nodes[parent].children, char)
		t.release(child)

		p := &t.nodes[parent]
		if len(p.children) > 0 {
			return
		}
		p.children = nil
		if p.entry || parent == rootID {
			return
		}

		char, child = steps[i].char, parent
	}
}

// track walks entry in reversed order. With record set, every visited
// node is pushed onto the path tracer, starting with the root.
func (t *SuffixTrie) track(entry Entry, record bool) (nodeID, bool) {
	if !utf8.ValidString(string(entry)) {
		return 0, false
	}

	id := rootID
	if record {
		t.tracer.push(nulChar, id)
	}

	s := string(entry)
	for len(s) > 0 {
		c, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]

		next, ok := t.nodes[id].children[c]
		if !ok {
			return 0, false
		}
		if record {
			t.tracer.push(c, next)
		}
		id = next
	}

	if id == rootID || !t.nodes[id].entry {
		return 0, false
	}
	return id, true
}

// Count returns the number of stored entries.
func (t *SuffixTrie) Count() int {
	return t.count
}

// NodeCount returns the number of live nodes, root excluded.
func (t *SuffixTrie) NodeCount() int {
	return len(t.nodes) - len(t.free) - 1
}

// Extract returns every stored entry in unspecified order.
// Returns nil for an empty trie. The trie is not modified.
func (t *SuffixTrie) Extract() []string {
	if t.count == 0 {
		return nil
	}

	out := make([]string, 0, t.count)
	buf := make([]rune, 0, 64)
	t.extract(rootID, buf, &out)
	return out
}

func (t *SuffixTrie) extract(id nodeID, buf []rune, out *[]string) {
	for c, child := range t.nodes[id].children {
		buf = append(buf, c)
		if t.nodes[child].entry {
			*out = append(*out, reverseRunes(buf))
		}
		t.extract(child, buf, out)
		buf = buf[:len(buf)-1]
	}
}

func (t *SuffixTrie) childOrCreate(parent nodeID, c rune) nodeID {
	if id, ok := t.nodes[parent].children[c]; ok {
		return id
	}

	id := t.alloc()
	p := &t.nodes[parent]
	if p.children == nil {
		p.children = make(map[rune]nodeID)
	}
	p.children[c] = id
	return id
}

func (t *SuffixTrie) alloc() nodeID {
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		return id
	}
	t.nodes = append(t.nodes, trieNode{})
	return nodeID(len(t.nodes) - 1)
}

func (t *SuffixTrie) release(id nodeID) {
	t.nodes[id] = trieNode{}
	t.free = append(t.free, id)
}

// reverseRunes turns a reversed-path buffer back into reading order.
func reverseRunes(rs []rune) string {
	out := make([]rune, len(rs))
	for i, c := range rs {
		out[len(rs)-1-i] = c
	}
	return string(out)
}
