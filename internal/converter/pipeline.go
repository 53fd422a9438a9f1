package converter

import (
	"context"
	"fmt"
	"sync"

	"github.com/yuanying/docx2html/internal/docx"
)

// Diagnostic records a non-fatal problem found during conversion: a
// malformed optional part, an unresolvable reference, an unknown style.
// Diagnostics never abort a conversion.
type Diagnostic struct {
	Part    string
	Message string
}

func (d Diagnostic) String() string {
	return d.Part + ": " + d.Message
}

// Options configures a conversion.
type Options struct {
	// CacheDir is where extracted images are written, under an images/
	// subdirectory. Required when the document references images.
	CacheDir string
	// MaxImageWidth, when positive, downscales wider images on extraction.
	MaxImageWidth int
}

// Result is the output of one conversion.
type Result struct {
	HTML        string
	CSS         string
	Media       map[string][]byte
	Diagnostics []Diagnostic
}

// Converter runs the conversion pipeline. One Converter may be reused for
// several documents; each Convert call is independent.
type Converter struct {
	opts Options
}

func New(opts Options) *Converter {
	return &Converter{opts: opts}
}

// ConvertFile converts the package at path.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*Result, error) {
	pkg, err := docx.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, pkg)
}

// ConvertBytes converts an in-memory package.
func (c *Converter) ConvertBytes(ctx context.Context, data []byte) (*Result, error) {
	pkg, err := docx.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, pkg)
}

// Convert runs the full pipeline against an opened package. Only an
// unreadable container or a missing main document is fatal; every other
// defect degrades to a diagnostic.
func (c *Converter) Convert(ctx context.Context, pkg *docx.Package) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		diags []Diagnostic

		doc       *docx.Document
		docErr    error
		styles    *docx.StyleTable
		numbering *docx.NumberingTable
		rels      *docx.Relationships
		media     *docx.MediaStore
		theme     *docx.Theme
	)
	report := func(part, format string, args ...any) {
		mu.Lock()
		diags = append(diags, Diagnostic{Part: part, Message: fmt.Sprintf(format, args...)})
		mu.Unlock()
	}

	// The main document and the five support parts are independent of
	// one another, so they load in parallel. The package itself only
	// sees concurrent reads.
	var wg sync.WaitGroup
	wg.Add(6)

	go func() {
		defer wg.Done()
		data, ok := pkg.ReadBinary(docx.MainDocumentPart)
		if !ok {
			docErr = docx.ErrMissingMainDocument
			return
		}
		doc, docErr = docx.ParseDocument(data)
	}()

	go func() {
		defer wg.Done()
		styles = docx.EmptyStyleTable()
		data, ok := pkg.ReadBinary(docx.StylesPart)
		if !ok {
			return
		}
		parsed, err := docx.ParseStyles(data)
		if err != nil {
			report(docx.StylesPart, "ignoring malformed styles part: %v", err)
			return
		}
		styles = parsed
	}()

	go func() {
		defer wg.Done()
		numbering = docx.EmptyNumberingTable()
		data, ok := pkg.ReadBinary(docx.NumberingPart)
		if !ok {
			return
		}
		parsed, err := docx.ParseNumbering(data)
		if err != nil {
			report(docx.NumberingPart, "ignoring malformed numbering part: %v", err)
			return
		}
		numbering = parsed
	}()

	go func() {
		defer wg.Done()
		rels = docx.EmptyRelationships()
		data, ok := pkg.ReadBinary(docx.RelationshipsPart)
		if !ok {
			return
		}
		parsed, err := docx.ParseRelationships(data)
		if err != nil {
			report(docx.RelationshipsPart, "ignoring malformed relationships part: %v", err)
			return
		}
		rels = parsed
	}()

	go func() {
		defer wg.Done()
		media = docx.LoadMedia(pkg)
	}()

	go func() {
		defer wg.Done()
		data, ok := pkg.ReadBinary(docx.ThemePart)
		if !ok {
			return
		}
		parsed, err := docx.ParseTheme(data)
		if err != nil {
			report(docx.ThemePart, "ignoring malformed theme part: %v", err)
			return
		}
		theme = parsed
	}()

	wg.Wait()

	if docErr != nil {
		return nil, fmt.Errorf("parsing %s: %w", docx.MainDocumentPart, docErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if theme != nil && theme.MinorFont != "" {
		styles.EnsureDefaultFont(theme.MinorFont)
	}

	cache := NewImageCache(c.opts.CacheDir, NewImageScaler(c.opts.MaxImageWidth))
	builder := NewTreeBuilder(styles, numbering, rels, media, cache)
	tree, err := builder.Build(doc)
	if err != nil {
		return nil, err
	}
	diags = append(diags, builder.Diagnostics()...)

	html := NewRenderer(numbering).Render(tree)
	css := GenerateCSS(styles)

	return &Result{
		HTML:        html,
		CSS:         css,
		Media:       media.Parts(),
		Diagnostics: diags,
	}, nil
}
