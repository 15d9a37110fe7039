package lsp

import (
	"slices"
	"strings"
	"sync"
)

type document struct {
	text    string
	version int
}

// snapshot is a document as it was when diagnostics were requested.
type snapshot struct {
	uri string
	document
}

// store holds open documents, the ones waiting for diagnostics and the ones
// with diagnostics on screen.
type store struct {
	mu        sync.Mutex
	docs      map[string]document
	dirty     map[string]struct{}
	published map[string]bool
}

func newStore() *store {
	return &store{
		docs:      make(map[string]document),
		dirty:     make(map[string]struct{}),
		published: make(map[string]bool),
	}
}

func (st *store) open(uri, text string, version int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.docs[uri] = document{text: text, version: version}
	st.dirty[uri] = struct{}{}
}

// update rewrites the text of an open document and marks it dirty. It
// reports false for unknown documents.
func (st *store) update(uri string, version int, edit func(string) string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	doc, ok := st.docs[uri]
	if !ok {
		return false
	}
	doc.text = edit(doc.text)
	if version > 0 {
		doc.version = version
	}
	st.docs[uri] = doc
	st.dirty[uri] = struct{}{}
	return true
}

func (st *store) get(uri string) (document, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	doc, ok := st.docs[uri]
	return doc, ok
}

// close forgets uri and reports whether its diagnostics must be cleared.
func (st *store) close(uri string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	had := st.published[uri]
	delete(st.docs, uri)
	delete(st.dirty, uri)
	delete(st.published, uri)
	return had
}

// takeDirty returns the dirty documents by URI and clears the dirty set.
func (st *store) takeDirty() []snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]snapshot, 0, len(st.dirty))
	for uri := range st.dirty {
		if doc, ok := st.docs[uri]; ok {
			out = append(out, snapshot{uri: uri, document: doc})
		}
	}
	clear(st.dirty)
	slices.SortFunc(out, func(a, b snapshot) int { return strings.Compare(a.uri, b.uri) })
	return out
}

// settle records that snap produced n diagnostics and reports whether they
// should be published. Nothing is published for a document edited or
// closed since the snapshot, nor for a clean document with a clean screen.
func (st *store) settle(snap snapshot, n int) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if cur, ok := st.docs[snap.uri]; !ok || cur != snap.document {
		return false
	}
	had := st.published[snap.uri]
	st.published[snap.uri] = n > 0
	return n > 0 || had
}
