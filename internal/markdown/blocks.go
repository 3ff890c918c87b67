// Package markdown extracts fenced code blocks from LLM responses.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultLanguage is the key used for fenced blocks with no info string.
const DefaultLanguage = "plaintext"

// ExtractCodeBlocks returns all fenced code blocks in src grouped by
// language, each language's blocks in document order. Indented code blocks
// are ignored: models delimit code with fences, and indentation inside prose
// is usually just formatting.
func ExtractCodeBlocks(src string) map[string][]string {
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	blocks := make(map[string][]string)
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lang := DefaultLanguage
		if l := fcb.Language(source); len(l) > 0 {
			lang = string(l)
		}

		var b strings.Builder
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
		blocks[lang] = append(blocks[lang], strings.TrimSuffix(b.String(), "\n"))
		return ast.WalkContinue, nil
	})
	return blocks
}

// FirstBlock returns the first code block matching any of langs, in the
// order given. ok is false when none of the languages appear.
func FirstBlock(src string, langs ...string) (string, bool) {
	blocks := ExtractCodeBlocks(src)
	for _, lang := range langs {
		if bs := blocks[lang]; len(bs) > 0 {
			return bs[0], true
		}
	}
	return "", false
}

// StripFence removes a bare fence wrapper around a whole response. Models
// sometimes answer with nothing but a fenced block, or prepend the fence
// without closing it; either way the fence lines themselves are noise.
func StripFence(lines []string) []string {
	out := lines
	if len(out) > 0 && strings.HasPrefix(strings.TrimSpace(out[0]), "```") {
		out = out[1:]
	}
	if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "```" {
		out = out[:len(out)-1]
	}
	return out
}
