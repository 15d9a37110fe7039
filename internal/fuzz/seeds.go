package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

var componentSeeds = []string{
	"",
	"<p>hi</p>",
	"<script>\n  let a = 1;\n</script>\n\n<h1>{a}</h1>\n\n<style>\n  h1 { color: red; }\n</style>\n",
	"<script context=\"module\">export const x = 1;</script><script lang=\"ts\">let y: number = 2;</script>",
	"<SCRIPT>upper</SCRIPT><style lang=\"scss\">.a { .b { c: d } }</style>",
	"{#if a}<b>x</b>{:else if b}y{:else}z{/if}",
	"{#each items as { id, name }, i (id)}<li>{name}</li>{:else}none{/each}",
	"{#await p then v}{v}{:catch e}{e.message}{/await}",
	"<input bind:value on:click|once={h} class:active {...rest} />",
	"<script>const s = '</div>';</script>",
	"<script>unterminated",
	"<!-- <script>x</script> -->",
	"\t\n  <style></style>  \n",
}

var expressionSeeds = []string{
	"a",
	"a + b * c",
	"fn(x, { y: 1 }, [2, 3])",
	"cond ? \"yes\" : 'no'",
	"x => x.y?.z ?? 0",
	"`tpl ${a}`",
	"(((a)))",
	"oops(",
	"a /* c */ + b",
	"",
}

var styleSeeds = []string{
	"h1 { color: red; }",
	"@media (max-width: 600px) { .a { margin: 0 auto } }",
	":global(.x) > p::before { content: \"}\"; }",
	"a { b",
	"",
}

func addComponentSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range componentSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.svelte файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".svelte" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
