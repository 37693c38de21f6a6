package modules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/config"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/lexer"
	"github.com/Microindole/lency/internal/parser"
	"github.com/Microindole/lency/internal/pipeline"
	"github.com/Microindole/lency/internal/token"
)

// Loader resolves `import a.b.c` declarations by mapping dots to path
// separators and searching the project source tree, then the standard
// library tree. Each module is parsed at most once; a
// visitation-in-progress set turns import cycles into diagnostics
// pointing at the import that closes the cycle.
type Loader struct {
	cfg  *config.Config
	sink *diagnostics.Sink

	loaded     map[string]*Module // by dotted path
	processing map[string]bool    // cycle detection during DFS

	// Sources caches file contents for the diagnostic renderer.
	Sources map[string]string

	// Order lists modules dependencies-first (post-order DFS), the
	// sequence later phases walk for deterministic diagnostics.
	Order []*Module
}

func NewLoader(cfg *config.Config, sink *diagnostics.Sink) *Loader {
	return &Loader{
		cfg:        cfg,
		sink:       sink,
		loaded:     make(map[string]*Module),
		processing: make(map[string]bool),
		Sources:    make(map[string]string),
	}
}

// LoadRoot loads the root file and every transitive import. Returns the
// root module; the full set is in l.Order. The root keeps path "".
func (l *Loader) LoadRoot(rootFile string) *Module {
	content, err := os.ReadFile(rootFile)
	if err != nil {
		l.sink.Errorf(diagnostics.ErrM001, spanForFile(rootFile), "cannot read %s: %v", rootFile, err)
		return nil
	}
	return l.loadParsed(rootFile, "", string(content))
}

// Resolve maps a dotted import path to a source file, searching the
// project tree then the stdlib tree. Returns "" when neither exists.
func (l *Loader) Resolve(dotted string) string {
	rel := filepath.Join(strings.Split(dotted, ".")...) + config.SourceFileExt
	candidate := filepath.Join(l.cfg.SrcRoot, rel)
	if fileExists(candidate) {
		return candidate
	}
	if l.cfg.StdlibRoot != "" {
		candidate = filepath.Join(l.cfg.StdlibRoot, rel)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func (l *Loader) loadParsed(file, dotted, content string) *Module {
	l.Sources[file] = content

	ctx := pipeline.NewContext(file, content)
	ctx.Sink = l.sink
	pipe := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{})
	ctx = pipe.Run(ctx)

	mod := &Module{Path: dotted, File: file, Ast: ctx.AstRoot}
	if mod.Ast != nil {
		mod.Ast.Path = dotted
	}
	l.loaded[dotted] = mod
	l.processing[dotted] = true
	defer func() { delete(l.processing, dotted) }()

	if mod.Ast != nil {
		for _, imp := range mod.Ast.Imports {
			dep := l.loadImport(imp.DottedPath(), imp)
			if dep != nil {
				mod.Deps = append(mod.Deps, dep)
			}
		}
	}

	l.Order = append(l.Order, mod)
	return mod
}

func (l *Loader) loadImport(dotted string, imp *ast.ImportDeclaration) *Module {
	if l.processing[dotted] {
		l.sink.Errorf(diagnostics.ErrM002, imp.GetToken().Span,
			"import cycle detected: %q is already being loaded", dotted).
			WithNote("this import closes the cycle")
		return nil
	}
	if mod, ok := l.loaded[dotted]; ok {
		return mod
	}

	file := l.Resolve(dotted)
	if file == "" {
		l.sink.Errorf(diagnostics.ErrM001, imp.GetToken().Span,
			"cannot find module %q", dotted).
			WithNote("searched %s and %s", l.cfg.SrcRoot, l.cfg.StdlibRoot)
		return nil
	}

	content, err := os.ReadFile(file)
	if err != nil {
		l.sink.Errorf(diagnostics.ErrM001, imp.GetToken().Span, "cannot read %s: %v", file, err)
		return nil
	}
	return l.loadParsed(file, dotted, string(content))
}

// Modules returns all loaded modules dependencies-first.
func (l *Loader) Modules() []*Module {
	return l.Order
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func spanForFile(path string) token.Span {
	return token.Span{File: path, Line: 1, Column: 1}
}
