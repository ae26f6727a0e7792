package generator

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/tehKaiN/gdunsharp/internal/graph"
	"github.com/tehKaiN/gdunsharp/internal/report"
)

// manifestName is the per-namespace umbrella header. "namespace" is a C#
// keyword, so no type stem can ever collide with it.
const manifestName = "namespace.h"

// Emitter renders a resolved graph into a header tree under the output
// root. All decisions are read-only over the graph, and the rendering is
// byte-for-byte repeatable for the same graph.
type Emitter struct {
	graph *graph.Graph
	out   string
	rep   *report.Reporter
}

// NewEmitter creates an emitter writing below the given output root. A nil
// reporter falls back to a throwaway one.
func NewEmitter(g *graph.Graph, out string, rep *report.Reporter) *Emitter {
	if rep == nil {
		rep = report.New(nil)
	}
	return &Emitter{graph: g, out: out, rep: rep}
}

// Emit clears the output root and writes the manifest and definition tree,
// walking namespaces depth-first with children in creation order. It returns
// the number of files written.
func (e *Emitter) Emit() (int, error) {
	if err := os.RemoveAll(e.out); err != nil {
		return 0, errors.Wrapf(err, "failed to clear output dir %s", e.out)
	}
	return e.emitNamespace(e.graph.Root())
}

func (e *Emitter) emitNamespace(id graph.NamespaceID) (int, error) {
	dir := filepath.Join(append([]string{e.out}, e.dirParts(id)...)...)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Wrapf(err, "failed to create output dir %s", dir)
	}

	types := e.emittable(id)
	stems := e.fileStems(id, types)

	written := 0
	if err := e.writeFile(filepath.Join(dir, manifestName), e.renderManifest(id, types, stems)); err != nil {
		return written, err
	}
	written++

	for _, t := range types {
		body := ""
		if t.Kind == graph.KindEnum {
			body = e.renderEnum(t)
		} else {
			body = e.renderClass(t)
		}
		if err := e.writeFile(filepath.Join(dir, stems[t.ID]+".h"), body); err != nil {
			return written, err
		}
		written++
	}

	for _, child := range e.graph.Namespace(id).Children() {
		n, err := e.emitNamespace(child)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (e *Emitter) writeFile(name, content string) error {
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}
	return nil
}

// emittable returns the namespace's own definition-producing types in
// registration order: class-likes and enums, never dummies, wrappers,
// specializations or generic parameters.
func (e *Emitter) emittable(id graph.NamespaceID) []*graph.Type {
	var out []*graph.Type
	for _, tid := range e.graph.Namespace(id).Types.Types() {
		if t := e.graph.Type(tid); t.Emittable() {
			out = append(out, t)
		}
	}
	return out
}

// fileStems assigns each emittable type its definition-file stem. The naming
// transform can map distinct names onto one stem (Pair and Pair`2 both give
// "pair"); a repeat would overwrite the earlier header and double its
// manifest include, so later types get a numeric suffix and a diagnostic.
func (e *Emitter) fileStems(id graph.NamespaceID, types []*graph.Type) map[graph.TypeID]string {
	stems := make(map[graph.TypeID]string, len(types))
	holder := make(map[string]string, len(types))
	for _, t := range types {
		stem := Snake(t.Name)
		if first, taken := holder[stem]; taken {
			base := stem
			for n := 2; ; n++ {
				stem = fmt.Sprintf("%s_%d", base, n)
				if _, taken := holder[stem]; !taken {
					break
				}
			}
			e.rep.Warnf(e.manifestInclude(id), "%s collides with %s on header stem %s.h, writing %s.h",
				t.Key, first, base, stem)
		}
		holder[stem] = t.Key
		stems[t.ID] = stem
	}
	return stems
}

// renderManifest builds a namespace's umbrella header: forward declarations
// first, then the definition includes. Consumers are allowed to include only
// the manifest, so the forward-declaration block has to precede every
// include. A namespace without emittable types still gets a manifest so
// ancestor include lists stay uniform.
func (e *Emitter) renderManifest(id graph.NamespaceID, types []*graph.Type, stems map[graph.TypeID]string) string {
	var b strings.Builder
	b.WriteString("#pragma once\n")

	if len(types) == 0 {
		return b.String()
	}
	b.WriteString("\n")

	wrapper := e.wrapperName(id)
	if wrapper != "" {
		fmt.Fprintf(&b, "namespace %s {\n", wrapper)
	}
	for _, t := range types {
		b.WriteString(e.forwardDecl(t))
	}
	if wrapper != "" {
		fmt.Fprintf(&b, "} // namespace %s\n", wrapper)
	}

	b.WriteString("\n")
	for _, t := range types {
		fmt.Fprintf(&b, "#include \"%s\"\n", e.typeInclude(t, stems[t.ID]))
	}
	return b.String()
}

// renderClass builds one class-like definition header.
func (e *Emitter) renderClass(t *graph.Type) string {
	var b strings.Builder
	b.WriteString("#pragma once\n\n")

	for _, inc := range e.classIncludes(t) {
		fmt.Fprintf(&b, "#include \"%s\"\n", inc)
	}
	b.WriteString("\n")

	wrapper := e.wrapperName(t.Namespace)
	if wrapper != "" {
		fmt.Fprintf(&b, "namespace %s {\n", wrapper)
	}
	if t.Generic() {
		b.WriteString(e.templateHeader(t.TypeParams))
	}
	b.WriteString(e.classHeader(t))
	e.renderMembers(&b, t)
	b.WriteString("};\n")
	if wrapper != "" {
		fmt.Fprintf(&b, "} // namespace %s\n", wrapper)
	}
	return b.String()
}

// classHeader renders "class Name : public Base1, public Base2 {". C#
// interfaces have no C++ counterpart and render as classes.
func (e *Emitter) classHeader(t *graph.Type) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", classKeyword(t.Kind), t.Name)
	if len(t.Bases) > 0 {
		parts := make([]string, len(t.Bases))
		for i, base := range t.Bases {
			parts[i] = "public " + e.graph.DisplayName(base)
		}
		fmt.Fprintf(&b, " : %s", strings.Join(parts, ", "))
	}
	b.WriteString(" {\n")
	return b.String()
}

// renderMembers writes fields, then properties, then method prototypes,
// blank-line separated. Bodies rendered with the class keyword open with
// public:, struct bodies do not; an empty body renders nothing at all.
func (e *Emitter) renderMembers(b *strings.Builder, t *graph.Type) {
	hasBody := t.Fields.Len() > 0 || t.Props.Len() > 0 || len(t.Methods) > 0
	if !hasBody {
		return
	}
	if t.Kind != graph.KindStruct {
		b.WriteString("public:\n")
	}

	wroteBlock := false
	if t.Fields.Len() > 0 {
		for _, f := range t.Fields.Entries() {
			fmt.Fprintf(b, "\t%s %s;\n", e.graph.DisplayName(f.Type), f.Name)
		}
		wroteBlock = true
	}
	if t.Props.Len() > 0 {
		if wroteBlock {
			b.WriteString("\n")
		}
		for _, p := range t.Props.Entries() {
			fmt.Fprintf(b, "\t%s %s;\n", e.graph.DisplayName(p.Type), p.Name)
		}
		wroteBlock = true
	}
	if len(t.Methods) > 0 {
		if wroteBlock {
			b.WriteString("\n")
		}
		for _, m := range t.Methods {
			if len(m.TypeParams) > 0 {
				b.WriteString("\t" + e.templateHeader(m.TypeParams))
			}
			fmt.Fprintf(b, "\t%s %s(%s);\n", e.graph.DisplayName(m.Return), m.Name, e.paramList(m))
		}
	}
}

func (e *Emitter) paramList(m *graph.Method) string {
	parts := make([]string, len(m.Params))
	for i, p := range m.Params {
		s := e.graph.DisplayName(p.Type) + " " + p.Name
		if p.Default != "" {
			s += " = " + p.Default
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

// renderEnum builds one enum definition header. Entry values are literal
// text and pull in no other types, so enum headers carry no includes.
func (e *Emitter) renderEnum(t *graph.Type) string {
	var b strings.Builder
	b.WriteString("#pragma once\n\n")

	wrapper := e.wrapperName(t.Namespace)
	if wrapper != "" {
		fmt.Fprintf(&b, "namespace %s {\n", wrapper)
	}
	if u := e.underlyingDisplay(t); u != "" {
		fmt.Fprintf(&b, "enum class %s : %s {\n", t.Name, u)
	} else {
		fmt.Fprintf(&b, "enum class %s {\n", t.Name)
	}
	for _, entry := range t.Entries {
		if entry.Value != "" {
			fmt.Fprintf(&b, "\t%s = %s,\n", entry.Name, entry.Value)
		} else {
			fmt.Fprintf(&b, "\t%s,\n", entry.Name)
		}
	}
	b.WriteString("};\n")
	if wrapper != "" {
		fmt.Fprintf(&b, "} // namespace %s\n", wrapper)
	}
	return b.String()
}

func (e *Emitter) forwardDecl(t *graph.Type) string {
	if t.Kind == graph.KindEnum {
		if u := e.underlyingDisplay(t); u != "" {
			return fmt.Sprintf("enum class %s : %s;\n", t.Name, u)
		}
		return fmt.Sprintf("enum class %s;\n", t.Name)
	}
	var b strings.Builder
	if t.Generic() {
		b.WriteString(e.templateHeader(t.TypeParams))
	}
	fmt.Fprintf(&b, "%s %s;\n", classKeyword(t.Kind), t.Name)
	return b.String()
}

func (e *Emitter) templateHeader(params []graph.TypeID) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = "typename " + e.graph.Type(p).Name
	}
	return fmt.Sprintf("template <%s>\n", strings.Join(names, ", "))
}

func classKeyword(kind graph.TypeKind) string {
	if kind == graph.KindStruct {
		return "struct"
	}
	return "class"
}

// underlyingDisplay maps a captured enum base through the built-in display
// table, keeping the raw text for unknown names.
func (e *Emitter) underlyingDisplay(t *graph.Type) string {
	if t.Underlying == "" {
		return ""
	}
	if display, ok := e.graph.BuiltinDisplay(t.Underlying); ok {
		return display
	}
	return t.Underlying
}

// classIncludes lists the manifests a definition file pulls in: the type's
// own namespace chain root-most first, then each consolidated import,
// skipping paths already present.
func (e *Emitter) classIncludes(t *graph.Type) []string {
	var includes []string
	seen := make(map[string]bool)
	add := func(ns graph.NamespaceID) {
		p := e.manifestInclude(ns)
		if !seen[p] {
			seen[p] = true
			includes = append(includes, p)
		}
	}

	var chain []graph.NamespaceID
	for ns := t.Namespace; ns != graph.NoNamespace; ns = e.graph.Namespace(ns).Parent {
		chain = append([]graph.NamespaceID{ns}, chain...)
	}
	for _, ns := range chain {
		add(ns)
	}
	for _, ns := range t.Imports {
		add(ns)
	}
	return includes
}

// manifestInclude returns a namespace manifest's include path, forward-slash
// relative to the output root.
func (e *Emitter) manifestInclude(ns graph.NamespaceID) string {
	return path.Join(append(e.dirParts(ns), manifestName)...)
}

func (e *Emitter) typeInclude(t *graph.Type, stem string) string {
	return path.Join(append(e.dirParts(t.Namespace), stem+".h")...)
}

// wrapperName returns the C++17 nested namespace spelling, empty for the
// root. Wrapper names keep the source casing; only file and directory names
// go through the Snake transform.
func (e *Emitter) wrapperName(id graph.NamespaceID) string {
	return strings.Join(e.graph.Path(id), "::")
}

func (e *Emitter) dirParts(id graph.NamespaceID) []string {
	parts := e.graph.Path(id)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = Snake(p)
	}
	return out
}
