/*
Package hazel implements an interpreter for the hazel scripting language.

Hazel programs are YAML documents. Top-level keys declare functions,
classes, object instances, imports and plain data; function and method
bodies are written in a small dynamically typed language with significant
indentation, classes with single inheritance, closures and structured
error handling. The package provides the tokenizer, parser, evaluator,
document loader and module resolver; the modules subdirectory holds the
standard library and cmd/hazel the command line runner.

Basic use:

	prog, err := hazel.LoadFile("app.hzl")
	if err != nil { ... }
	ev := hazel.NewEvaluator(prog)
	modules.Install(ev.Resolver())
	result, err := ev.Run()
*/
package hazel

// Version is the interpreter version, reported by os.get_version().
const Version = "0.3.0"
