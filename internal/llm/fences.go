package llm

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

const fence = "```"

// StripFences returns the document inside Markdown code fences. A response
// wrapped in a single fence (with or without a language tag) is unwrapped;
// otherwise the first fenced block found in surrounding prose is used;
// otherwise the trimmed text is returned as is.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, fence) && strings.HasSuffix(trimmed, fence) &&
		strings.Count(trimmed, fence) == 2 && len(trimmed) > 2*len(fence) {
		body := strings.TrimPrefix(strings.TrimSuffix(trimmed, fence), fence)
		if i := strings.IndexByte(body, '\n'); i >= 0 {
			return strings.TrimSpace(body[i+1:])
		}
		return strings.TrimSpace(stripInfoString(body))
	}

	if strings.Contains(trimmed, fence) {
		if block, ok := firstCodeBlock(trimmed); ok {
			return strings.TrimSpace(block)
		}
	}

	return trimmed
}

// stripInfoString drops a language tag glued to a single-line block, as in
// "```json{...}```"
func stripInfoString(body string) string {
	i := strings.IndexFunc(body, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+')
	})
	if i <= 0 || (body[i] != '{' && body[i] != '[') {
		return body
	}
	return body[i:]
}

// firstCodeBlock walks the Markdown AST for the first fenced block
func firstCodeBlock(text string) (string, bool) {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.FencedCode)
	doc := markdown.Parse([]byte(text), p)

	var (
		literal string
		found   bool
	)
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if cb, ok := node.(*ast.CodeBlock); ok && cb.IsFenced {
			literal = string(cb.Literal)
			found = true
			return ast.Terminate
		}
		return ast.GoToNext
	})
	return literal, found
}
