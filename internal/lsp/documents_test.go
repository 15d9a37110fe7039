package lsp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStoreSettle(t *testing.T) {
	st := newStore()
	st.open("file:///b.svelte", "b", 1)
	st.open("file:///a.svelte", "a", 1)

	snaps := st.takeDirty()
	var uris []string
	for _, s := range snaps {
		uris = append(uris, s.uri)
	}
	if diff := cmp.Diff([]string{"file:///a.svelte", "file:///b.svelte"}, uris); diff != "" {
		t.Fatalf("dirty order (-want +got):\n%s", diff)
	}
	if len(st.takeDirty()) != 0 {
		t.Fatalf("dirty set not cleared")
	}

	a, b := snaps[0], snaps[1]
	if !st.settle(a, 2) {
		t.Fatalf("new diagnostics should publish")
	}
	if st.settle(b, 0) {
		t.Fatalf("clean document with nothing shown should not publish")
	}

	// edited after the snapshot: the result is stale
	st.update(a.uri, 2, func(string) string { return "a2" })
	if st.settle(a, 0) {
		t.Fatalf("stale snapshot published")
	}
	a2 := st.takeDirty()[0]
	if !st.settle(a2, 0) {
		t.Fatalf("clearing shown diagnostics should publish")
	}

	if st.update("file:///missing.svelte", 1, func(s string) string { return s }) {
		t.Fatalf("update of unknown document succeeded")
	}
	st.settle(b, 1)
	if !st.close(b.uri) || st.close(b.uri) {
		t.Fatalf("close should report shown diagnostics once")
	}
}
