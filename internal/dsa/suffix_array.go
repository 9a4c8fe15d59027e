package dsa

import (
	"sort"
	"strings"
)

// separator joins words in the indexed text. Patterns containing it never match.
const separator = "\x00"

// SubstringIndex answers "which words contain this pattern" with a suffix
// array built over all words joined by a separator.
type SubstringIndex struct {
	text   string
	sa     []int // sa[i] = start of the i-th smallest suffix
	starts []int // starts[i] = offset of words[i] in text
	words  []string
}

// BuildSubstringIndex indexes words. The slice is copied.
// Uses prefix doubling.
// Time Complexity: O(n log² n) where n is the total length of all words.
func BuildSubstringIndex(words []string) *SubstringIndex {
	x := &SubstringIndex{
		words:  append([]string(nil), words...),
		starts: make([]int, len(words)),
	}

	var b strings.Builder
	for i, w := range x.words {
		x.starts[i] = b.Len()
		b.WriteString(w)
		b.WriteString(separator)
	}
	x.text = b.String()
	x.sa = buildSuffixArray(x.text)
	return x
}

func buildSuffixArray(text string) []int {
	n := len(text)
	sa := make([]int, n)
	if n == 0 {
		return sa
	}

	rank := make([]int, n)
	for i := 0; i < n; i++ {
		sa[i] = i
		rank[i] = int(text[i])
	}

	// rank of the half starting k bytes later, -1 past the end
	second := func(i, k int) int {
		if i+k < n {
			return rank[i+k]
		}
		return -1
	}

	tmp := make([]int, n)
	for k := 1; ; k *= 2 {
		sort.Slice(sa, func(i, j int) bool {
			a, b := sa[i], sa[j]
			if rank[a] != rank[b] {
				return rank[a] < rank[b]
			}
			return second(a, k) < second(b, k)
		})

		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			prev, curr := sa[i-1], sa[i]
			tmp[curr] = tmp[prev]
			if rank[prev] != rank[curr] || second(prev, k) != second(curr, k) {
				tmp[curr]++
			}
		}
		copy(rank, tmp)

		if rank[sa[n-1]] == n-1 || k >= n {
			break
		}
	}
	return sa
}

// Find returns the distinct words containing pattern, sorted.
// A limit of zero or less returns every match.
// Time Complexity: O(m log n + r) where m = len(pattern), r = number of occurrences.
func (x *SubstringIndex) Find(pattern string, limit int) []string {
	if pattern == "" || strings.Contains(pattern, separator) || len(x.sa) == 0 {
		return nil
	}

	first := sort.Search(len(x.sa), func(i int) bool {
		return x.text[x.sa[i]:] >= pattern
	})

	seen := make(map[int]struct{})
	for i := first; i < len(x.sa); i++ {
		if !strings.HasPrefix(x.text[x.sa[i]:], pattern) {
			break
		}
		seen[x.wordAt(x.sa[i])] = struct{}{}
	}

	results := make([]string, 0, len(seen))
	for w := range seen {
		results = append(results, x.words[w])
	}
	sort.Strings(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// wordAt maps a text offset back to the index of the word holding it.
func (x *SubstringIndex) wordAt(pos int) int {
	return sort.Search(len(x.starts), func(i int) bool {
		return x.starts[i] > pos
	}) - 1
}
