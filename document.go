package hazel

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Reserved top-level document keys. Everything else is either a
// function definition (its value contains =>) or plain data exposed as
// a global.
var reservedKeys = map[string]bool{
	"includes":  true,
	"imports":   true,
	"classes":   true,
	"objects":   true,
	"functions": true,
	"call":      true,
}

// ObjectDecl is a declared top-level object: construct Name as an
// instance of ClassName with literal Args.
type ObjectDecl struct {
	Name      string
	ClassName string
	Args      []Value
}

// ImportDecl is a top-level import, optionally aliased.
type ImportDecl struct {
	Module string
	Alias  string
}

// Program is a loaded document, ready to hand to an Evaluator. Bodies
// are parsed; object construction and imports are deferred to Run so
// they execute in evaluator context.
type Program struct {
	File string
	Dir  string

	Classes    map[string]*Class
	Functions  map[string]*Function
	Objects    []ObjectDecl
	Imports    []ImportDecl
	CallTarget string
	CallArgs   []Value
	Data       map[string]Value

	source string
}

// LoadFile loads and parses a document from disk.
func LoadFile(path string) (*Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Failure{Kind: IOFailure, Message: fmt.Sprintf("Cannot read '%s': %s", path, err), File: path}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return LoadString(string(raw), abs)
}

// LoadString parses document source. filename is used for failure
// reporting and include resolution; it may be empty for in-memory
// sources.
func LoadString(source, filename string) (*Program, error) {
	prog := &Program{
		File:      filename,
		Dir:       filepath.Dir(filename),
		Classes:   make(map[string]*Class),
		Functions: make(map[string]*Function),
		Data:      make(map[string]Value),
		source:    source,
	}
	if filename == "" {
		prog.Dir = "."
	}
	doc, fail := decodeDocument(source, filename)
	if fail != nil {
		return nil, fail
	}
	doc, fail = prog.applyIncludes(doc)
	if fail != nil {
		return nil, fail
	}
	if fail := prog.parseDocument(doc); fail != nil {
		return nil, fail
	}
	return prog, nil
}

// decodeDocument preprocesses function definitions into YAML literal
// blocks and decodes the result, preserving key order and duplicate
// top-level keys.
func decodeDocument(source, filename string) (yaml.MapSlice, *Failure) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal([]byte(preprocessFunctions(source)), &doc); err != nil {
		return nil, &Failure{Kind: SyntaxFailure, Message: fmt.Sprintf("YAML syntax error: %s", err), File: filename}
	}
	return mergeDuplicateKeys(doc), nil
}

// funcDefPattern matches the start of a function definition hosted in a
// document value: name: (params) => {. List items never match because
// a word key cannot start with a dash.
var funcDefPattern = regexp.MustCompile(`^(\s*)(\w+):\s*\(.*\)\s*=>.*\{`)

// preprocessFunctions rewrites every function definition into a YAML
// literal block so the YAML decoder leaves the body text untouched.
// Bodies are collected by brace counting from the definition line.
func preprocessFunctions(source string) string {
	lines := strings.Split(source, "\n")
	var out []string
	for i := 0; i < len(lines); {
		m := funcDefPattern.FindStringSubmatch(lines[i])
		if m == nil {
			out = append(out, lines[i])
			i++
			continue
		}
		indent, key := m[1], m[2]
		braces := strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
		j := i + 1
		funcLines := []string{lines[i]}
		for braces > 0 && j < len(lines) {
			funcLines = append(funcLines, lines[j])
			braces += strings.Count(lines[j], "{") - strings.Count(lines[j], "}")
			j++
		}
		full := strings.Join(funcLines, "\n")
		colon := strings.Index(full[len(indent)+len(key):], ":") + len(indent) + len(key)
		out = append(out, strings.TrimRight(full[:colon], " \t")+": |")
		for _, bodyLine := range strings.Split(strings.TrimSpace(full[colon+1:]), "\n") {
			out = append(out, indent+"  "+stripInlineComment(bodyLine))
		}
		i = j
	}
	return strings.Join(out, "\n")
}

// stripInlineComment removes a trailing # comment, honoring quotes and
// backslash escapes so string contents survive.
func stripInlineComment(line string) string {
	inString := false
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '"' || c == '\'' {
			if !inString {
				inString, quote = true, c
			} else if c == quote && !escapedAt(line, i) {
				inString = false
			}
		}
		if !inString && c == '#' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return strings.TrimRight(line, " \t")
}

func escapedAt(line string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// mergeDuplicateKeys folds repeated top-level mapping keys (several
// classes or objects sections, say) into one entry each, preserving
// first-appearance order.
func mergeDuplicateKeys(doc yaml.MapSlice) yaml.MapSlice {
	var out yaml.MapSlice
	index := make(map[string]int)
	for _, item := range doc {
		key, ok := item.Key.(string)
		if !ok {
			out = append(out, item)
			continue
		}
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, item)
			continue
		}
		prev, pok := out[at].Value.(yaml.MapSlice)
		next, nok := item.Value.(yaml.MapSlice)
		if pok && nok {
			out[at].Value = append(prev, next...)
		} else {
			out[at].Value = item.Value
		}
	}
	return out
}

// applyIncludes merges each included file into the document. Main
// document entries win everywhere except classes and objects, where an
// include may redefine an entry. Includes are one level deep.
func (p *Program) applyIncludes(doc yaml.MapSlice) (yaml.MapSlice, *Failure) {
	includes, ok := docValue(doc, "includes")
	if !ok {
		return doc, nil
	}
	list, ok := includes.([]interface{})
	if !ok {
		return nil, &Failure{Kind: SyntaxFailure, Message: "includes must be a list", File: p.File}
	}
	for _, entry := range list {
		name, ok := entry.(string)
		if !ok {
			return nil, &Failure{Kind: SyntaxFailure, Message: "includes entries must be strings", File: p.File}
		}
		path := resolveIncludePath(name, p.File)
		if path == "" {
			return nil, &Failure{Kind: ImportFailure, Message: fmt.Sprintf("Include file '%s' not found in any search path", name), File: p.File}
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, &Failure{Kind: ImportFailure, Message: fmt.Sprintf("Failed to include '%s': %s", name, err), File: path}
		}
		included, fail := decodeDocument(string(raw), path)
		if fail != nil {
			return nil, fail
		}
		doc = mergeInclude(doc, included)
	}
	return doc, nil
}

// resolveIncludePath resolves an include name: absolute paths stand
// alone, then the document directory, the working directory and the
// HAZEL_MODULE_PATHS entries are searched in order.
func resolveIncludePath(name, baseFile string) string {
	if filepath.IsAbs(name) {
		if fileExists(name) {
			return name
		}
		return ""
	}
	var dirs []string
	if baseFile != "" {
		dirs = append(dirs, filepath.Dir(baseFile))
	}
	dirs = append(dirs, ".")
	dirs = append(dirs, moduleSearchPaths()...)
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// moduleSearchPaths reads the HAZEL_MODULE_PATHS list from the
// environment.
func moduleSearchPaths() []string {
	raw := os.Getenv("HAZEL_MODULE_PATHS")
	if raw == "" {
		return nil
	}
	var paths []string
	for _, p := range strings.Split(raw, string(os.PathListSeparator)) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// mergeInclude merges one included document into the main one.
// Includes only fill gaps: classes, objects, functions and data already
// defined in the main document stay as written; imports append.
func mergeInclude(main, include yaml.MapSlice) yaml.MapSlice {
	for _, item := range include {
		key, ok := item.Key.(string)
		if !ok {
			continue
		}
		switch key {
		case "includes", "call":
			// Not propagated from includes.
		case "classes", "objects":
			slot, exists := docValue(main, key)
			if !exists {
				main = append(main, yaml.MapItem{Key: key, Value: item.Value})
				continue
			}
			prev, pok := slot.(yaml.MapSlice)
			next, nok := item.Value.(yaml.MapSlice)
			if pok && nok {
				main = setDocValue(main, key, fillMapSlice(prev, next))
			}
		case "imports":
			slot, exists := docValue(main, key)
			if !exists {
				main = append(main, yaml.MapItem{Key: key, Value: item.Value})
				continue
			}
			prev, pok := slot.([]interface{})
			next, nok := item.Value.([]interface{})
			if pok && nok {
				main = setDocValue(main, key, append(prev, next...))
			}
		default:
			slot, exists := docValue(main, key)
			if !exists {
				main = append(main, yaml.MapItem{Key: key, Value: item.Value})
				continue
			}
			prev, pok := slot.(yaml.MapSlice)
			next, nok := item.Value.(yaml.MapSlice)
			if pok && nok {
				main = setDocValue(main, key, deepMergeMapSlice(prev, next))
			}
		}
	}
	return main
}

// fillMapSlice appends entries from next whose keys prev lacks. Keys
// already present keep prev's value.
func fillMapSlice(prev, next yaml.MapSlice) yaml.MapSlice {
	for _, item := range next {
		if _, exists := docValue(prev, fmt.Sprint(item.Key)); !exists {
			prev = append(prev, item)
		}
	}
	return prev
}

// deepMergeMapSlice merges next into prev without overriding: keys
// already in prev keep their values, with nested mappings merged
// recursively.
func deepMergeMapSlice(prev, next yaml.MapSlice) yaml.MapSlice {
	for _, item := range next {
		slot, exists := docValue(prev, fmt.Sprint(item.Key))
		if !exists {
			prev = append(prev, item)
			continue
		}
		pm, pok := slot.(yaml.MapSlice)
		nm, nok := item.Value.(yaml.MapSlice)
		if pok && nok {
			prev = setDocValue(prev, fmt.Sprint(item.Key), deepMergeMapSlice(pm, nm))
		}
	}
	return prev
}

func docValue(doc yaml.MapSlice, key string) (interface{}, bool) {
	for _, item := range doc {
		if k, ok := item.Key.(string); ok && k == key {
			return item.Value, true
		}
	}
	return nil, false
}

func setDocValue(doc yaml.MapSlice, key string, v interface{}) yaml.MapSlice {
	for i, item := range doc {
		if k, ok := item.Key.(string); ok && k == key {
			doc[i].Value = v
			return doc
		}
	}
	return append(doc, yaml.MapItem{Key: key, Value: v})
}

// parseDocument walks the merged document: imports, data, classes,
// objects, functions and the call target.
func (p *Program) parseDocument(doc yaml.MapSlice) *Failure {
	if v, ok := docValue(doc, "imports"); ok {
		if fail := p.parseImports(v); fail != nil {
			return fail
		}
	}
	for _, item := range doc {
		key, ok := item.Key.(string)
		if !ok || reservedKeys[key] {
			continue
		}
		if s, isStr := item.Value.(string); isStr && strings.Contains(s, "=>") {
			continue
		}
		p.Data[key] = yamlToValue(item.Value)
	}
	if v, ok := docValue(doc, "classes"); ok {
		if fail := p.parseClasses(v); fail != nil {
			return fail
		}
	}
	if v, ok := docValue(doc, "objects"); ok {
		if fail := p.parseObjects(v); fail != nil {
			return fail
		}
	}
	if fail := p.parseFunctions(doc); fail != nil {
		return fail
	}
	if v, ok := docValue(doc, "call"); ok {
		s, isStr := v.(string)
		if !isStr {
			return &Failure{Kind: SyntaxFailure, Message: "call must be a string", File: p.File}
		}
		p.CallTarget, p.CallArgs = parseCallExpression(s)
	}
	return nil
}

func (p *Program) parseImports(v interface{}) *Failure {
	list, ok := v.([]interface{})
	if !ok {
		return &Failure{Kind: SyntaxFailure, Message: "imports must be a list", File: p.File}
	}
	for _, entry := range list {
		switch entry := entry.(type) {
		case string:
			p.Imports = append(p.Imports, ImportDecl{Module: entry})
		case yaml.MapSlice:
			for _, item := range entry {
				module, mok := item.Key.(string)
				alias, aok := item.Value.(string)
				if !mok || !aok {
					return &Failure{Kind: SyntaxFailure, Message: "import aliases must map module names to strings", File: p.File}
				}
				p.Imports = append(p.Imports, ImportDecl{Module: module, Alias: alias})
			}
		default:
			return &Failure{Kind: SyntaxFailure, Message: "imports entries must be strings or alias mappings", File: p.File}
		}
	}
	return nil
}

func (p *Program) parseClasses(v interface{}) *Failure {
	classes, ok := v.(yaml.MapSlice)
	if !ok {
		return &Failure{Kind: SyntaxFailure, Message: "classes must be a mapping", File: p.File}
	}
	for _, item := range classes {
		className, ok := item.Key.(string)
		if !ok {
			continue
		}
		body, ok := item.Value.(yaml.MapSlice)
		if !ok {
			return &Failure{Kind: SyntaxFailure, Message: fmt.Sprintf("class '%s' must be a mapping of methods", className), File: p.File}
		}
		cls := &Class{Name: className, Methods: make(map[string]*Function)}
		for _, member := range body {
			name, ok := member.Key.(string)
			if !ok {
				continue
			}
			if name == "parent" || name == "extends" {
				if parent, ok := member.Value.(string); ok {
					cls.ParentName = parent
				}
				continue
			}
			def, ok := member.Value.(string)
			if !ok {
				return &Failure{Kind: SyntaxFailure, Message: fmt.Sprintf("method '%s.%s' must be a function definition", className, name), File: p.File}
			}
			line, col := findMethodLine(p.source, className, name)
			fn, fail := p.parseFunctionString(name, def, line, col)
			if fail != nil {
				return fail
			}
			cls.Methods[name] = fn
		}
		p.Classes[className] = cls
	}
	return nil
}

func (p *Program) parseObjects(v interface{}) *Failure {
	objects, ok := v.(yaml.MapSlice)
	if !ok {
		return &Failure{Kind: SyntaxFailure, Message: "objects must be a mapping", File: p.File}
	}
	for _, item := range objects {
		name, ok := item.Key.(string)
		if !ok {
			continue
		}
		def, ok := item.Value.(string)
		if !ok {
			return &Failure{Kind: SyntaxFailure, Message: fmt.Sprintf("object '%s' must name a class constructor", name), File: p.File}
		}
		className, args := parseCallExpression(def)
		className = strings.TrimRight(className, "()")
		p.Objects = append(p.Objects, ObjectDecl{Name: name, ClassName: className, Args: args})
	}
	return nil
}

// parseFunctions picks up the functions block plus any bare top-level
// key whose string value contains an arrow.
func (p *Program) parseFunctions(doc yaml.MapSlice) *Failure {
	if v, ok := docValue(doc, "functions"); ok {
		block, ok := v.(yaml.MapSlice)
		if !ok {
			return &Failure{Kind: SyntaxFailure, Message: "functions must be a mapping", File: p.File}
		}
		if fail := p.parseFunctionEntries(block); fail != nil {
			return fail
		}
	}
	var bare yaml.MapSlice
	for _, item := range doc {
		key, ok := item.Key.(string)
		if !ok || reservedKeys[key] {
			continue
		}
		if s, isStr := item.Value.(string); isStr && strings.Contains(s, "=>") {
			bare = append(bare, item)
		}
	}
	return p.parseFunctionEntries(bare)
}

func (p *Program) parseFunctionEntries(entries yaml.MapSlice) *Failure {
	for _, item := range entries {
		name, ok := item.Key.(string)
		if !ok {
			continue
		}
		def, ok := item.Value.(string)
		if !ok || !strings.Contains(def, "=>") {
			continue
		}
		line, col := findFunctionLine(p.source, name)
		fn, fail := p.parseFunctionString(name, def, line, col)
		if fail != nil {
			return fail
		}
		p.Functions[name] = fn
	}
	return nil
}

// parseFunctionString parses one (params) => { body } definition. The
// body is tokenized with its position in the original file so failures
// report real line numbers.
func (p *Program) parseFunctionString(name, def string, startLine, startCol int) (*Function, *Failure) {
	def = strings.TrimSpace(def)
	open := strings.Index(def, "(")
	close := strings.Index(def, ")")
	if open == -1 || close == -1 || close < open {
		return nil, &Failure{Kind: SyntaxFailure, Message: fmt.Sprintf("Arrow function syntax error in '%s': parameter list not found", name), Line: startLine, File: p.File}
	}
	var params []string
	if s := strings.TrimSpace(def[open+1 : close]); s != "" {
		for _, param := range strings.Split(s, ",") {
			params = append(params, strings.TrimSpace(param))
		}
	}
	arrow := strings.Index(def[close:], "=>")
	if arrow == -1 {
		return nil, &Failure{Kind: SyntaxFailure, Message: fmt.Sprintf("Arrow function syntax error in '%s': => not found", name), Line: startLine, File: p.File}
	}
	arrow += close
	bodyStart := strings.Index(def[arrow:], "{")
	bodyEnd := strings.LastIndex(def, "}")
	if bodyStart == -1 || bodyEnd == -1 {
		return nil, &Failure{Kind: SyntaxFailure, Message: fmt.Sprintf("Arrow function syntax error in '%s': braces not found", name), Line: startLine, File: p.File}
	}
	bodyStart += arrow
	body := strings.TrimSpace(def[bodyStart+1 : bodyEnd])

	// Body positions are relative to the opening brace in the source
	// file.
	bodyLine := startLine + strings.Count(def[:bodyStart], "\n") + 1
	bodyCol := startCol + bodyStart + 1
	if nl := strings.LastIndex(def[:bodyStart], "\n"); nl != -1 {
		bodyCol = bodyStart - nl
	}

	tokens, fail := tokenize(body, bodyLine, bodyCol)
	if fail != nil {
		fail.File = p.File
		return nil, fail
	}
	block, fail := parseBlockTokens(tokens)
	if fail != nil {
		fail.File = p.File
		return nil, fail
	}
	return &Function{Name: name, Params: params, Body: block}, nil
}

// findFunctionLine locates a top-level function definition line in the
// raw source for position reporting.
func findFunctionLine(source, name string) (int, int) {
	for i, line := range strings.Split(source, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, name+":") && strings.Contains(stripped, "=>") {
			return i + 1, strings.Index(line, name+":") + 1
		}
	}
	return 1, 1
}

// findMethodLine locates a method definition within its class section.
func findMethodLine(source, className, methodName string) (int, int) {
	inClass := false
	classIndent := 0
	for i, line := range strings.Split(source, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, className+":") {
			inClass = true
			classIndent = len(line) - len(strings.TrimLeft(line, " \t"))
			continue
		}
		if !inClass {
			continue
		}
		if stripped != "" && !strings.HasPrefix(stripped, "#") {
			indent := len(line) - len(strings.TrimLeft(line, " \t"))
			if indent <= classIndent && !strings.HasPrefix(stripped, methodName+":") {
				inClass = false
				continue
			}
		}
		if strings.HasPrefix(stripped, methodName+":") && strings.Contains(stripped, "=>") {
			return i + 1, strings.Index(line, methodName+":") + 1
		}
	}
	return 1, 1
}

// parseCallExpression splits "add(5, 3)" into a target name and literal
// arguments. A bare name has no arguments.
func parseCallExpression(s string) (string, []Value) {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "(")
	if open == -1 {
		return s, nil
	}
	name := strings.TrimSpace(s[:open])
	inner := s[open+1:]
	if close := strings.LastIndex(inner, ")"); close != -1 {
		inner = inner[:close]
	}
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return name, nil
	}
	var args []Value
	for _, raw := range strings.Split(inner, ",") {
		args = append(args, literalValue(strings.TrimSpace(raw)))
	}
	return name, args
}

// literalValue interprets one literal argument: integer, float, quoted
// string, boolean, null, or a bare string.
func literalValue(s string) Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return Str(s[1 : len(s)-1])
		}
	}
	switch s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null":
		return Nil
	}
	return Str(s)
}

// yamlToValue converts decoded YAML data into runtime values, keeping
// mapping order.
func yamlToValue(v interface{}) Value {
	switch v := v.(type) {
	case nil:
		return Nil
	case bool:
		return Bool(v)
	case int:
		return Int(v)
	case int64:
		return Int(v)
	case float64:
		return Float(v)
	case string:
		return Str(v)
	case []interface{}:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = yamlToValue(e)
		}
		return &Array{Elems: elems}
	case yaml.MapSlice:
		d := NewDict()
		for _, item := range v {
			d.Set(fmt.Sprint(item.Key), yamlToValue(item.Value))
		}
		return d
	case map[interface{}]interface{}:
		d := NewDict()
		for k, e := range v {
			d.Set(fmt.Sprint(k), yamlToValue(e))
		}
		return d
	}
	return Str(fmt.Sprint(v))
}
