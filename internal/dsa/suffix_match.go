package dsa

import (
	"errors"
	"unicode/utf8"
)

// Reasons FindLongestSharedSuffix can fail. Each is a normal outcome that
// callers branch on, e.g. to decide whether to insert the key afterwards.
var (
	// ErrEmptyTree means nothing is stored.
	ErrEmptyTree = errors.New("tree is empty")
	// ErrNoJointSuffix means no entry ends with the key's last character.
	ErrNoJointSuffix = errors.New("no entry shares a suffix with key")
	// ErrOnlyKeyMatches means the key itself is the only entry sharing a suffix with it.
	ErrOnlyKeyMatches = errors.New("only the key itself shares its suffix")
)

// noSkip is never a valid character, so pickChild may return any child.
const noSkip rune = -1

// branch remembers the last node with more than one child seen on the
// key's path, with the match length there and the character taken.
type branch struct {
	node   nodeID
	length int
	taken  rune
}

// FindLongestSharedSuffix returns the stored entry, other than key itself,
// sharing the longest suffix with key.
//
// When a stored word is itself a suffix of key and is strictly longer than
// the match at the last branching point, it wins. Otherwise the search
// detours through that branch (or extends past the key) down to a leaf.
// Among equally good answers the one reached through the smallest code
// point is returned; callers should not rely on which.
//
// Time Complexity: O(k + d) where k is key length and d the depth of the detour.
func (t *SuffixTrie) FindLongestSharedSuffix(key Entry) (string, error) {
	defer func() { t.match = t.match[:0] }()

	root := t.nodes[rootID]
	if len(root.children) == 0 {
		return "", ErrEmptyTree
	}
	if key == "" {
		return "", ErrEmptyEntry
	}
	if !utf8.ValidString(string(key)) {
		return "", ErrInvalidEntry
	}

	s := string(key)
	c, size := utf8.DecodeLastRuneInString(s)
	s = s[:len(s)-size]

	cur, ok := root.children[c]
	if !ok {
		return "", ErrNoJointSuffix
	}
	t.match = append(t.match[:0], c)

	var br *branch
	best := 0
	for len(s) > 0 {
		n := &t.nodes[cur]
		if n.entry {
			best = len(t.match)
		}
		if len(n.children) == 0 {
			break
		}

		c, size = utf8.DecodeLastRuneInString(s)
		next, ok := n.children[c]
		if !ok {
			break
		}
		if len(n.children) > 1 {
			br = &branch{node: cur, length: len(t.match), taken: c}
		}

		t.match = append(t.match, c)
		s = s[:len(s)-size]
		cur = next
	}

	if len(t.nodes[cur].children) == 0 {
		switch {
		case br != nil && best > br.length:
			return reverseRunes(t.match[:best]), nil
		case br != nil:
			t.match = t.match[:br.length]
			c, cur = t.pickChild(br.node, br.taken)
			t.match = append(t.match, c)
		case best == 0:
			return "", ErrOnlyKeyMatches
		default:
			return reverseRunes(t.match[:best]), nil
		}
	}

	for len(t.nodes[cur].children) > 0 {
		c, cur = t.pickChild(cur, noSkip)
		t.match = append(t.match, c)
	}

	return reverseRunes(t.match), nil
}

// pickChild returns the child of id with the smallest character other
// than skip. The caller guarantees such a child exists.
func (t *SuffixTrie) pickChild(id nodeID, skip rune) (rune, nodeID) {
	pick, found := noSkip, false
	var child nodeID
	for c, n := range t.nodes[id].children {
		if c == skip {
			continue
		}
		if !found || c < pick {
			pick, child, found = c, n, true
		}
	}
	return pick, child
}

// SharedSuffixLen returns how many trailing characters a and b have in common.
func SharedSuffixLen(a, b string) int {
	n := 0
	for len(a) > 0 && len(b) > 0 {
		ca, sa := utf8.DecodeLastRuneInString(a)
		cb, sb := utf8.DecodeLastRuneInString(b)
		if ca != cb {
			break
		}
		a, b = a[:len(a)-sa], b[:len(b)-sb]
		n++
	}
	return n
}
