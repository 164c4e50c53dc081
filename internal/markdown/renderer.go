// Package markdown renders post bodies to HTML with site-specific rules for
// links, images, code and headings.
package markdown

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/parser"
	"github.com/starford/quill/internal/slug"
)

// Warning kinds.
const (
	WarnUnknownLanguage = "unknown-language"
	WarnHighlight       = "highlight-failed"
)

// Options configures a Renderer.
type Options struct {
	// BasePath is the site path the content tree is served under; relative
	// image sources are resolved against it.
	BasePath string
	// PostPath is the site path prefix of post pages; heading anchors link to
	// PostPath/<slug>#<anchor>.
	PostPath string
}

// Result is the output of rendering one document.
type Result struct {
	HTML     string
	Warnings []models.Warning
}

// Renderer converts Markdown bodies to HTML. It is safe for concurrent use;
// per-document state lives in a fresh node renderer for every call.
type Renderer struct {
	opts Options
}

// NewRenderer creates a Renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Fingerprint identifies the option set, so cached output can be keyed on it.
func (r *Renderer) Fingerprint() string {
	return "v1|" + r.opts.BasePath + "|" + r.opts.PostPath
}

// Render converts body, the Markdown of doc, to HTML. Tabs are normalized to
// two spaces first. Unknown code languages degrade to plain text and are
// reported as warnings rather than errors.
func (r *Renderer) Render(doc models.Document, meta models.Metadata, body string) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("markdown: render %s: panic: %v", doc.RelPath, p)
		}
	}()

	nr := &nodeRenderer{
		opts:    r.opts,
		docDir:  doc.Dir(),
		postURL: path.Join("/", r.opts.PostPath, meta.Slug),
		anchors: slug.NewRegistry(),
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(nr, 100)),
		),
	)

	var buf bytes.Buffer
	source := []byte(strings.ReplaceAll(body, "\t", "  "))
	if err := md.Convert(source, &buf); err != nil {
		return Result{}, fmt.Errorf("markdown: render %s: %w", doc.RelPath, err)
	}
	return Result{HTML: buf.String(), Warnings: nr.warnings}, nil
}

type nodeRenderer struct {
	opts     Options
	docDir   string
	postURL  string
	anchors  *slug.Registry
	warnings []models.Warning
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
	reg.Register(ast.KindHeading, r.renderHeading)
}

func (r *nodeRenderer) warn(kind, format string, args ...any) {
	r.warnings = append(r.warnings, models.Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (r *nodeRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_ = w.WriteByte('"')
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	src := parser.ResolveAssetURL(r.opts.BasePath, r.docDir, string(n.Destination))

	_, _ = w.WriteString(`<img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(src), true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(plainText(n, source)))
	_ = w.WriteByte('"')
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` loading="lazy" />`)
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<code class="language-text">`)
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		var value []byte
		switch t := c.(type) {
		case *ast.Text:
			value = t.Segment.Value(source)
		case *ast.String:
			value = t.Value
		}
		if bytes.HasSuffix(value, []byte("\n")) {
			value = append(value[:len(value)-1:len(value)-1], ' ')
		}
		_, _ = w.Write(util.EscapeHTML(value))
	}
	_, _ = w.WriteString("</code>")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if !entering {
		fmt.Fprintf(w, "</a></h%d>\n", n.Level)
		return ast.WalkContinue, nil
	}
	id := r.anchors.Unique(string(plainText(n, source)))
	fmt.Fprintf(w, `<h%d id="%s"><a href="%s#%s" class="anchor" aria-hidden="true">`,
		n.Level, id, util.EscapeHTML(util.URLEscape([]byte(r.postURL), true)), id)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	tag := ""
	if n.Info != nil {
		tag = string(n.Language(source))
	}
	grammar, plain, ok := grammarFor(tag)
	switch {
	case plain:
		writePlainCode(w, code.Bytes())
		return ast.WalkSkipChildren, nil
	case !ok:
		r.warn(WarnUnknownLanguage, "no grammar for code language %q, rendered as plain text", tag)
		writePlainCode(w, code.Bytes())
		return ast.WalkSkipChildren, nil
	}

	if err := highlight(w, grammar, code.String()); err != nil {
		r.warn(WarnHighlight, "highlighting %s failed: %v", grammar, err)
		writePlainCode(w, code.Bytes())
	}
	return ast.WalkSkipChildren, nil
}

func writePlainCode(w util.BufWriter, code []byte) {
	_, _ = w.WriteString(`<pre class="language-text"><code>`)
	_, _ = w.Write(util.EscapeHTML(code))
	_, _ = w.WriteString("</code></pre>\n")
}

// preWrapper replaces chroma's default <pre> with one carrying the grammar class.
type preWrapper struct {
	grammar string
}

func (p preWrapper) Start(_ bool, _ string) string {
	return `<pre class="language-` + p.grammar + `"><code>`
}

func (p preWrapper) End(_ bool) string {
	return "</code></pre>"
}

func highlight(w util.BufWriter, grammar, code string) error {
	lexer := lexers.Get(grammar)
	if lexer == nil {
		return fmt.Errorf("lexer %q not registered", grammar)
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return err
	}
	// Render into a scratch buffer so a failed format leaves w untouched.
	var buf bytes.Buffer
	f := chromahtml.New(chromahtml.WithClasses(true), chromahtml.WithPreWrapper(preWrapper{grammar: grammar}))
	if err := f.Format(&buf, styles.Fallback, it); err != nil {
		return err
	}
	_, _ = w.Write(buf.Bytes())
	_ = w.WriteByte('\n')
	return nil
}

// plainText returns the concatenated text content of n's descendants.
func plainText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return bytes.TrimSpace(buf.Bytes())
}
