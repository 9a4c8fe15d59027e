package dsa

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
)

// rev reverses s so tests can describe prefix sharing with readable words.
func rev(s string) string {
	rs := []rune(s)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}

// checkStructure fails the test if any reachable node is a dead leaf or if
// arena bookkeeping disagrees with what is reachable from the root.
func checkStructure(t *testing.T, tr *SuffixTrie) {
	t.Helper()

	if tr.nodes[rootID].entry {
		t.Error("root must never be an entry")
	}

	entries := 0
	var walk func(id nodeID) int
	walk = func(id nodeID) int {
		reachable := 0
		for c, child := range tr.nodes[id].children {
			n := tr.nodes[child]
			if !n.entry && len(n.children) == 0 {
				t.Errorf("dead leaf under %q", string(c))
			}
			if n.entry {
				entries++
			}
			reachable += 1 + walk(child)
		}
		return reachable
	}

	if got := walk(rootID); got != tr.NodeCount() {
		t.Errorf("expected %d live nodes, reachable %d", tr.NodeCount(), got)
	}
	if entries != tr.Count() {
		t.Errorf("expected %d entries, found %d", tr.Count(), entries)
	}
	if len(tr.tracer.steps) != 0 {
		t.Errorf("path tracer not cleared: %d steps", len(tr.tracer.steps))
	}
}

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("entry")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e != "entry" {
		t.Errorf("expected %q, got %q", "entry", e)
	}

	if _, err := NewEntry(""); !errors.Is(err, ErrEmptyEntry) {
		t.Errorf("expected ErrEmptyEntry, got %v", err)
	}
}

func TestNewEntryRejectsInvalidUTF8(t *testing.T) {
	for _, s := range []string{"ab\xff", "\xfe", "caf\xc3"} {
		if _, err := NewEntry(s); !errors.Is(err, ErrInvalidEntry) {
			t.Errorf("NewEntry(%q): expected ErrInvalidEntry, got %v", s, err)
		}
	}
}

func TestSuffixTrieInvalidUTF8DoesNotCollide(t *testing.T) {
	tr := NewSuffixTrie()

	if tr.Insert(Entry("ab\xff")) {
		t.Error("invalid entry must not be inserted")
	}
	if !tr.Insert(Entry("ab\uFFFD")) {
		t.Fatal("expected insert of replacement character to succeed")
	}
	if tr.Contains(Entry("ab\xfe")) {
		t.Error("invalid bytes must not match U+FFFD")
	}
	if tr.Remove(Entry("ab\xfe")) {
		t.Error("invalid bytes must not remove U+FFFD")
	}
	if _, err := tr.FindLongestSharedSuffix(Entry("xb\xfe")); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
	if tr.Count() != 1 {
		t.Errorf("expected 1 entry, got %d", tr.Count())
	}
	checkStructure(t, tr)
}

func TestNewSuffixTrie(t *testing.T) {
	tr := NewSuffixTrie()
	if tr.Count() != 0 {
		t.Errorf("expected empty trie, got count %d", tr.Count())
	}
	if tr.NodeCount() != 0 {
		t.Errorf("expected no nodes, got %d", tr.NodeCount())
	}
	if tr.Extract() != nil {
		t.Error("expected nil extraction for empty trie")
	}
}

func TestSuffixTrieInsertStoresReversed(t *testing.T) {
	tr := NewSuffixTrie()
	if !tr.Insert("touchstone") {
		t.Fatal("expected first insert to succeed")
	}

	id := rootID
	word := []rune("touchstone")
	for i := len(word) - 1; i >= 0; i-- {
		next, ok := tr.nodes[id].children[word[i]]
		if !ok {
			t.Fatalf("missing node for %q at %d", string(word[i]), i)
		}
		n := tr.nodes[next]
		if i == 0 {
			if !n.entry || len(n.children) != 0 {
				t.Errorf("terminal node should be a childless entry")
			}
		} else if n.entry {
			t.Errorf("inner node at %d should not be an entry", i)
		}
		id = next
	}

	if tr.Count() != 1 {
		t.Errorf("expected count 1, got %d", tr.Count())
	}
	if tr.NodeCount() != len(word) {
		t.Errorf("expected %d nodes, got %d", len(word), tr.NodeCount())
	}
}

func TestSuffixTrieInsertIdempotent(t *testing.T) {
	tr := NewSuffixTrie()
	if !tr.Insert("rhyme") {
		t.Error("expected true on first insert")
	}
	if tr.Insert("rhyme") {
		t.Error("expected false on repeated insert")
	}
	if tr.Count() != 1 {
		t.Errorf("expected count 1, got %d", tr.Count())
	}
}

func TestSuffixTrieInsertSharedPath(t *testing.T) {
	tr := NewSuffixTrie()
	tr.Insert("stone")
	nodes := tr.NodeCount()

	if !tr.Insert("touchstone") {
		t.Fatal("expected insert of longer word to succeed")
	}
	if got := tr.NodeCount() - nodes; got != len("touch") {
		t.Errorf("expected %d new nodes, got %d", len("touch"), got)
	}

	// existing path, new terminal flag
	if !tr.Insert("one") {
		t.Fatal("expected insert of suffix word to succeed")
	}
	if tr.NodeCount() != len("touchstone") {
		t.Errorf("expected no new nodes, got %d", tr.NodeCount())
	}
	if tr.Count() != 3 {
		t.Errorf("expected count 3, got %d", tr.Count())
	}
}

func TestSuffixTrieInsertEmptyEntry(t *testing.T) {
	tr := NewSuffixTrie()
	if tr.Insert("") {
		t.Error("empty entry must not be inserted")
	}
	checkStructure(t, tr)
}

func TestSuffixTrieContains(t *testing.T) {
	tr := NewSuffixTrie()
	tr.Insert("lyrics")

	tests := []struct {
		key  Entry
		want bool
	}{
		{"lyrics", true},
		{"rics", false},    // path exists, not an entry
		{"xlyrics", false}, // runs past the leaf
		{"lyricz", false},  // absent first character
		{"Lyrics", false},  // case-sensitive
		{"", false},
	}

	for _, tt := range tests {
		if got := tr.Contains(tt.key); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestSuffixTrieContainsUnicode(t *testing.T) {
	tr := NewSuffixTrie()
	tr.Insert("café")
	tr.Insert("naïve")

	if !tr.Contains("café") || !tr.Contains("naïve") {
		t.Error("expected multibyte words to be found")
	}
	if tr.Contains("cafe") {
		t.Error("no normalization: cafe must not match café")
	}
	if tr.NodeCount() != len([]rune("café"))+len([]rune("naïve")) {
		t.Errorf("expected one node per code point, got %d", tr.NodeCount())
	}
}

func TestSuffixTrieRemoveAbsent(t *testing.T) {
	tr := NewSuffixTrie()
	tr.Insert("documental")
	nodes := tr.NodeCount()

	for _, key := range []Entry{"mental", "xdocumental", "documentar", ""} {
		if tr.Remove(key) {
			t.Errorf("Remove(%q) should report absent", key)
		}
	}
	if tr.NodeCount() != nodes || tr.Count() != 1 {
		t.Error("failed remove must not mutate the trie")
	}
	checkStructure(t, tr)
}

func TestSuffixTrieRemoveLeavesLongerEntries(t *testing.T) {
	above := Entry(rev("keyworder"))
	under := Entry(rev("keyworders"))

	tr := NewSuffixTrie()
	tr.Insert(above)
	tr.Insert(under)
	nodes := tr.NodeCount()

	if !tr.Remove(above) {
		t.Fatal("expected remove to succeed")
	}
	if tr.Contains(above) {
		t.Error("removed entry still present")
	}
	if !tr.Contains(under) {
		t.Error("longer entry must survive")
	}
	if tr.NodeCount() != nodes {
		t.Errorf("no node should be pruned, had %d now %d", nodes, tr.NodeCount())
	}
	checkStructure(t, tr)
}

func TestSuffixTrieRemoveStopsAtEntry(t *testing.T) {
	above := Entry(rev("keyworder"))
	under := Entry(rev("keyworders"))

	tr := NewSuffixTrie()
	tr.Insert(above)
	tr.Insert(under)

	if !tr.Remove(under) {
		t.Fatal("expected remove to succeed")
	}
	if tr.Contains(under) || !tr.Contains(above) {
		t.Error("expected only the longer entry to be removed")
	}
	if tr.NodeCount() != len("keyworder") {
		t.Errorf("expected %d nodes, got %d", len("keyworder"), tr.NodeCount())
	}

	end, ok := tr.track(above, false)
	if !ok {
		t.Fatal("expected to track remaining entry")
	}
	if len(tr.nodes[end].children) != 0 {
		t.Error("remaining entry should now be a leaf")
	}
	checkStructure(t, tr)
}

func TestSuffixTrieRemoveStopsAtBranch(t *testing.T) {
	tr := NewSuffixTrie()
	tr.Insert("athletics")
	tr.Insert("ethics")

	if !tr.Remove("athletics") {
		t.Fatal("expected remove to succeed")
	}
	if tr.NodeCount() != len("ethics") {
		t.Errorf("expected only %d nodes to remain, got %d", len("ethics"), tr.NodeCount())
	}
	if !tr.Contains("ethics") {
		t.Error("sibling entry must survive")
	}
	checkStructure(t, tr)
}

func TestSuffixTrieRemoveLastEntry(t *testing.T) {
	tr := NewSuffixTrie()
	tr.Insert("lyrics")

	if !tr.Remove("lyrics") {
		t.Fatal("expected remove to succeed")
	}
	if tr.Count() != 0 || tr.NodeCount() != 0 {
		t.Errorf("expected empty trie, got count %d nodes %d", tr.Count(), tr.NodeCount())
	}
	if len(tr.nodes[rootID].children) != 0 {
		t.Error("root should have no children")
	}
	if tr.Remove("lyrics") {
		t.Error("second remove should report absent")
	}
	checkStructure(t, tr)
}

func TestSuffixTrieReusesFreedNodes(t *testing.T) {
	tr := NewSuffixTrie()
	tr.Insert("abc")
	tr.Remove("abc")
	capacity := len(tr.nodes)

	tr.Insert("xyz")
	if len(tr.nodes) != capacity {
		t.Errorf("expected arena to reuse freed slots, grew from %d to %d", capacity, len(tr.nodes))
	}
	if !tr.Contains("xyz") || tr.Contains("abc") {
		t.Error("reused slots must not leak previous state")
	}
	checkStructure(t, tr)
}

func TestSuffixTrieExtract(t *testing.T) {
	words := []string{
		"aa",
		"azbq",
		"by",
		"ybc",
		"ybcrqutmop",
		"ybcrqutmopfvb",
		"ybcrqutmoprfg",
		"ybxr",
		"zazazazazabyyb",
	}

	tr := NewSuffixTrie()
	for _, w := range words {
		tr.Insert(Entry(w))
	}
	nodes := tr.NodeCount()

	got := tr.Extract()
	sort.Strings(got)
	if len(got) != len(words) {
		t.Fatalf("expected %d entries, got %d: %v", len(words), len(got), got)
	}
	for i := range words {
		if got[i] != words[i] {
			t.Errorf("entry %d: expected %q, got %q", i, words[i], got[i])
		}
	}
	if tr.NodeCount() != nodes || tr.Count() != len(words) {
		t.Error("extraction must not modify the trie")
	}
}

func TestSuffixTrieRandomOperations(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	alphabet := []rune("abcé")

	randomWord := func() Entry {
		n := 1 + rnd.Intn(5)
		rs := make([]rune, n)
		for i := range rs {
			rs[i] = alphabet[rnd.Intn(len(alphabet))]
		}
		return Entry(rs)
	}

	tr := NewSuffixTrie()
	model := make(map[Entry]bool)

	for i := 0; i < 5000; i++ {
		w := randomWord()
		if rnd.Intn(3) == 0 {
			want := model[w]
			if got := tr.Remove(w); got != want {
				t.Fatalf("step %d: Remove(%q) = %v, want %v", i, w, got, want)
			}
			delete(model, w)
		} else {
			want := !model[w]
			if got := tr.Insert(w); got != want {
				t.Fatalf("step %d: Insert(%q) = %v, want %v", i, w, got, want)
			}
			model[w] = true
		}

		if i%250 == 0 {
			checkStructure(t, tr)
		}
	}

	checkStructure(t, tr)
	if tr.Count() != len(model) {
		t.Fatalf("expected count %d, got %d", len(model), tr.Count())
	}
	extracted := tr.Extract()
	if len(extracted) != tr.Count() {
		t.Errorf("extracted %d entries, count is %d", len(extracted), tr.Count())
	}
	for _, w := range extracted {
		if !model[Entry(w)] {
			t.Errorf("extracted %q which is not stored", w)
		}
	}
	for w := range model {
		if !tr.Contains(w) {
			t.Errorf("expected %q to be present", w)
		}
	}

	// drain everything; only the root may remain
	for w := range model {
		tr.Remove(w)
	}
	if tr.Count() != 0 || tr.NodeCount() != 0 {
		t.Errorf("expected empty trie after draining, count %d nodes %d", tr.Count(), tr.NodeCount())
	}
}
