package dsa

import (
	"reflect"
	"testing"
)

func TestPrefixIndexAdd(t *testing.T) {
	p := NewPrefixIndex()
	if !p.Add("rhyme") {
		t.Error("expected first add to report new word")
	}
	if p.Add("rhyme") {
		t.Error("expected repeated add to report existing word")
	}
	if got := p.Complete("rhy", 0); !reflect.DeepEqual(got, []string{"rhyme"}) {
		t.Errorf("expected [rhyme], got %v", got)
	}
}

func TestPrefixIndexDelete(t *testing.T) {
	p := NewPrefixIndex()
	p.Add("rhyme")
	p.Add("rhythm")

	if !p.Delete("rhyme") {
		t.Error("expected delete to succeed")
	}
	if p.Delete("rhyme") {
		t.Error("expected second delete to report absent")
	}
	if got := p.Complete("", 0); !reflect.DeepEqual(got, []string{"rhythm"}) {
		t.Errorf("sibling word must survive, got %v", got)
	}
}

func TestPrefixIndexComplete(t *testing.T) {
	p := NewPrefixIndex()
	for _, w := range []string{"document", "documental", "documentalist", "docket", "lyrics"} {
		p.Add(w)
	}

	got := p.Complete("docu", 0)
	want := []string{"document", "documental", "documentalist"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	got = p.Complete("doc", 2)
	if len(got) != 2 {
		t.Errorf("expected limit of 2, got %v", got)
	}

	if got := p.Complete("xyz", 0); len(got) != 0 {
		t.Errorf("expected no completions, got %v", got)
	}

	if got := p.Complete("", 0); len(got) != 5 {
		t.Errorf("empty prefix should list every word, got %v", got)
	}
}
