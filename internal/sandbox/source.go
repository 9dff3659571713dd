// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sandbox

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Import paths under which the host packages are visible to programs.
const (
	FramePath   = "askdata/frame"
	ChartPath   = "askdata/chart"
	DisplayPath = "askdata/display"
)

// AllowedStdlib lists the standard library packages a program may import.
var AllowedStdlib = []string{"fmt", "math", "sort", "strconv", "strings", "time", "unicode"}

var hostPaths = []string{ChartPath, DisplayPath, FramePath}

// Rebinding the predeclared results with := would not compile (or would
// shadow them inside a block), so it is rewritten to plain assignment.
var reRebind = regexp.MustCompile(`(?m)^(\s*)(fig|output_data)\s*:=`)

// program is generated text split into its imports and the function body.
// The body keeps one line per line of the normalised text.
type program struct {
	imports []string
	body    string
}

// normalize cleans raw completion text: surrounding blanks, markdown fences
// and a package clause are dropped and import declarations are hoisted.
// Removed lines are left blank so body line numbers stay put.
func normalize(raw string) program {
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n")), "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
		lines = lines[:n-1]
	}

	var p program
	inBlock := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case inBlock:
			if strings.HasPrefix(trimmed, ")") {
				inBlock = false
			} else if trimmed != "" {
				p.imports = append(p.imports, trimmed)
			}
			lines[i] = ""
		case strings.HasPrefix(trimmed, "```"):
			lines[i] = ""
		case strings.HasPrefix(trimmed, "package "):
			lines[i] = ""
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
			lines[i] = ""
		case strings.HasPrefix(trimmed, "import "):
			p.imports = append(p.imports, strings.TrimSpace(strings.TrimPrefix(trimmed, "import ")))
			lines[i] = ""
		}
	}
	p.body = reRebind.ReplaceAllString(strings.Join(lines, "\n"), "$1$2 =")
	return p
}

// wrap places the body inside Run and returns the source together with the
// number of lines preceding the body.
func wrap(p program) (string, int) {
	var b strings.Builder
	b.WriteString("package main\n\nimport (\n")
	seen := make(map[string]bool)
	for _, h := range hostPaths {
		fmt.Fprintf(&b, "\t%q\n", h)
		seen[h] = true
	}
	imports := append([]string(nil), p.imports...)
	sort.Strings(imports)
	for _, spec := range imports {
		path := importPath(spec)
		if seen[path] {
			continue
		}
		seen[path] = true
		fmt.Fprintf(&b, "\t%s\n", spec)
	}
	b.WriteString(")\n\n")
	b.WriteString("func Run(df *frame.Frame, st display.Surface) (fig *chart.Figure, output_data interface{}) {\n")
	header := strings.Count(b.String(), "\n")

	b.WriteString(p.body)
	b.WriteString("\n\treturn\n}\n")
	return b.String(), header
}

// importPath extracts the unquoted path of an import spec such as
// `m "math"`. Unparseable specs are returned as is and fail the preflight.
func importPath(spec string) string {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return spec
	}
	path, err := strconv.Unquote(fields[len(fields)-1])
	if err != nil {
		return spec
	}
	return path
}

// SyntaxError is a preflight parse failure with line numbers relative to
// the generated program.
type SyntaxError struct {
	Line, Column int
	Msg          string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Msg)
}

// preflight parses the wrapped source. Errors are rebased onto the body and
// at most three are reported.
func preflight(src string, header, bodyLines int) (*ast.File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "program.go", src, parser.AllErrors)
	if err == nil {
		return file, nil
	}

	list, ok := err.(scanner.ErrorList)
	if !ok || len(list) == 0 {
		return nil, err
	}
	msgs := make([]string, 0, 3)
	for i, e := range list {
		if i == 3 {
			msgs = append(msgs, fmt.Sprintf("(and %d more)", len(list)-3))
			break
		}
		line := e.Pos.Line - header
		if line < 1 {
			line = 1
		}
		if line > bodyLines {
			line = bodyLines
		}
		msgs = append(msgs, SyntaxError{Line: line, Column: e.Pos.Column, Msg: e.Msg}.Error())
	}
	return nil, fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// checkImports rejects any import outside the host packages and
// AllowedStdlib.
func checkImports(file *ast.File) error {
	allowed := make(map[string]bool, len(AllowedStdlib)+len(hostPaths))
	for _, p := range AllowedStdlib {
		allowed[p] = true
	}
	for _, p := range hostPaths {
		allowed[p] = true
	}

	var forbidden []string
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || !allowed[path] {
			forbidden = append(forbidden, imp.Path.Value)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("import of %s is not allowed (allowed: %s)",
			strings.Join(forbidden, ", "), strings.Join(append(append([]string{}, hostPaths...), AllowedStdlib...), ", "))
	}
	return nil
}
