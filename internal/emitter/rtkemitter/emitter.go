// Package rtkemitter renders RTK Query modules (types.ts, one <tag>.slice.ts
// per tag and index.ts) and writes them into an output directory.
package rtkemitter

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/mark3labs/swagger2rtk/internal/endpoint"
	"github.com/mark3labs/swagger2rtk/internal/naming"
	"github.com/mark3labs/swagger2rtk/internal/schema"
	"github.com/mark3labs/swagger2rtk/internal/spec"
)

const (
	TypesFile   = "types.ts"
	IndexFile   = "index.ts"
	SliceSuffix = ".slice.ts"

	header = "/* Auto-generated by swagger2rtk. Do not edit. */"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(template.New("rtk").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{"lit": naming.StringLiteral}).
	ParseFS(templatesFS, "templates/*.tmpl"))

// Options controls rendering and writing.
type Options struct {
	OutDir           string // required; generated modules are written here
	BaseClientPath   string // module exporting the empty API, e.g. src/store/empty-api.ts
	BaseClientExport string // export name of the empty API, e.g. emptySplitApi
	Hooks            bool   // re-export generated React hooks
	DryRun           bool   // plan only; nothing is removed or written
	Logger           *slog.Logger
}

// ModuleKind tells the three generated module types apart.
type ModuleKind string

const (
	TypesModule ModuleKind = "types"
	SliceModule ModuleKind = "slice"
	IndexModule ModuleKind = "index"
)

// PlannedFile describes a module the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Kind    ModuleKind
	Tag     string // slice modules only
	Count   int    // schemas for types.ts, endpoints for slices
	Size    int
	Mode    os.FileMode
}

// Bundle is a fully rendered set of modules, held in memory until written.
type Bundle struct {
	Planned []PlannedFile // types.ts, slices in tag order, index.ts
	Files   map[string][]byte
}

// Result reports what Write did.
type Result struct {
	OutDir  string
	Planned []PlannedFile
	// Removed lists stale generated modules deleted before writing; on a dry
	// run, the ones that would be deleted.
	Removed []string
	DryRun  bool
}

// EmissionError reports a module that could not be rendered.
type EmissionError struct {
	Module string
	Cause  error
}

func (e *EmissionError) Error() string { return fmt.Sprintf("emit %s: %v", e.Module, e.Cause) }
func (e *EmissionError) Unwrap() error { return e.Cause }

// IsGenerated reports whether a file name follows the generated-module
// naming convention and is therefore owned by the emitter.
func IsGenerated(name string) bool {
	return name == TypesFile || name == IndexFile || strings.HasSuffix(name, SliceSuffix)
}

type typesData struct {
	Header       string
	Declarations []string
}

type sliceData struct {
	Header     string
	BaseExport string
	BaseImport string
	Tag        string
	APIName    string
	Types      []string
	Endpoints  []endpoint.Binding
	Hooks      bool
}

type indexData struct {
	Header string
	Stems  []string
}

// Render builds every module in memory. Nothing touches the filesystem, so
// a failure here leaves the output directory as it was.
func Render(doc *spec.Document, groups []endpoint.TagGroup, opts Options) (*Bundle, error) {
	if doc == nil {
		return nil, &EmissionError{Module: TypesFile, Cause: fmt.Errorf("nil document")}
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("rtkemitter: OutDir is required")
	}
	log := logger(opts)

	baseImport, err := importPath(opts.OutDir, opts.BaseClientPath)
	if err != nil {
		return nil, &EmissionError{Module: "base client import", Cause: err}
	}

	b := &Bundle{Files: map[string][]byte{}}

	types := typesData{Header: header}
	declared := map[string]string{}
	for _, ns := range doc.Schemas {
		name := naming.TypeName(ns.Name)
		if prev, dup := declared[name]; dup {
			log.Warn("schema names collide after sanitizing", "schema", ns.Name, "other", prev, "type", name)
		}
		declared[name] = ns.Name
		types.Declarations = append(types.Declarations, schema.Declaration(ns.Name, ns.Schema))
	}
	if err := b.add(TypesFile, "types.ts.tmpl", types, PlannedFile{Kind: TypesModule, Count: len(doc.Schemas)}); err != nil {
		return nil, err
	}

	stems := make([]string, 0, len(groups))
	owner := map[string]string{}
	for _, g := range groups {
		stem := naming.TagToFile(g.Tag)
		file := stem + SliceSuffix
		if prev, dup := owner[stem]; dup {
			log.Warn("tags map to the same module; the later one wins", "file", file, "tag", g.Tag, "other", prev)
		}
		owner[stem] = g.Tag

		data := sliceData{
			Header:     header,
			BaseExport: opts.BaseClientExport,
			BaseImport: baseImport,
			Tag:        g.Tag,
			APIName:    naming.Camel(g.Tag) + "Api",
			Hooks:      opts.Hooks,
		}
		used := schema.NameSet{}
		for _, d := range g.Endpoints {
			binding := endpoint.Synthesize(d, g.Tag)
			binding.References(used)
			data.Endpoints = append(data.Endpoints, binding)
		}
		data.Types = used.Sorted()
		if err := b.add(file, "slice.ts.tmpl", data, PlannedFile{Kind: SliceModule, Tag: g.Tag, Count: len(g.Endpoints)}); err != nil {
			return nil, err
		}
		log.Debug("rendered module", "file", file, "tag", g.Tag, "endpoints", len(g.Endpoints), "imports", len(data.Types))
		stems = append(stems, stem)
	}

	if err := b.add(IndexFile, "index.ts.tmpl", indexData{Header: header, Stems: stems}, PlannedFile{Kind: IndexModule}); err != nil {
		return nil, err
	}
	return b, nil
}

// add renders one module. A file name that is already planned is replaced
// in place so the plan keeps first-seen order.
func (b *Bundle) add(rel, tmpl string, data any, pf PlannedFile) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return &EmissionError{Module: rel, Cause: err}
	}
	content := []byte(strings.TrimRight(buf.String(), "\n") + "\n")
	b.Files[rel] = content

	pf.RelPath = rel
	pf.Size = len(content)
	pf.Mode = 0o644
	for i := range b.Planned {
		if b.Planned[i].RelPath == rel {
			b.Planned[i] = pf
			return nil
		}
	}
	b.Planned = append(b.Planned, pf)
	return nil
}

// importPath computes the specifier slice modules use to import the base
// client: relative to outDir, forward slashes, no .ts extension, always
// starting with a dot.
func importPath(outDir, basePath string) (string, error) {
	if strings.TrimSpace(basePath) == "" {
		return "", fmt.Errorf("base client path is empty")
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absOut, absBase)
	if err != nil {
		return "", err
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".ts")
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel, nil
}

func logger(opts Options) *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.New(slog.DiscardHandler)
}
