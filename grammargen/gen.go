// Package grammargen renders a built sabnfvm.Grammar as compilable Go
// source, so applications can embed pre-compiled grammar objects instead
// of constructing them at startup.
package grammargen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/chronos-tachyon/go-sabnf/sabnfvm"
)

const vmPath = "github.com/chronos-tachyon/go-sabnf/sabnfvm"

// Options configures grammar source generation.
type Options struct {
	// Grammar is the grammar object to render.
	Grammar *sabnfvm.Grammar

	// Name is the name of the generated constructor function.
	Name string

	// Package is the Go package name for the generated code.
	Package string

	// OutputFile is the path where generated code will be written.
	OutputFile string

	// Verbose enables generation logging to stderr.
	Verbose bool
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.Grammar == nil {
		return fmt.Errorf("grammar cannot be nil")
	}
	if o.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	if o.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	return nil
}

// Generate writes a Go source file declaring a function that returns the
// grammar object.
func Generate(opts Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.Grammar.Validate(); err != nil {
		return fmt.Errorf("invalid grammar: %w", err)
	}

	logger := NewLogger(opts.Verbose)
	logger.Log("generating %s.%s: %d rules, %d udts",
		opts.Package, opts.Name, len(opts.Grammar.Rules), len(opts.Grammar.UDTs))

	f := jen.NewFile(opts.Package)
	f.HeaderComment("Code generated by grammargen. DO NOT EDIT.")

	fields := jen.Dict{
		jen.Id("Rules"): rulesLiteral(opts.Grammar, logger),
	}
	if len(opts.Grammar.UDTs) != 0 {
		fields[jen.Id("UDTs")] = udtsLiteral(opts.Grammar)
	}

	f.Commentf("%s returns the embedded grammar object. The returned value is", opts.Name)
	f.Comment("read-only and may be shared by concurrent parses.")
	f.Func().Id(opts.Name).Params().Op("*").Qual(vmPath, "Grammar").Block(
		jen.Return(jen.Op("&").Qual(vmPath, "Grammar").Values(fields)),
	)

	if err := f.Save(opts.OutputFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.OutputFile, err)
	}
	logger.Log("wrote %s", opts.OutputFile)
	return nil
}

func rulesLiteral(g *sabnfvm.Grammar, logger *Logger) jen.Code {
	values := make([]jen.Code, len(g.Rules))
	for i := range g.Rules {
		rule := &g.Rules[i]
		logger.Log("rule %q: %d opcodes", rule.Name, len(rule.Ops))
		fields := jen.Dict{
			jen.Id("Name"):  jen.Lit(rule.Name),
			jen.Id("Lower"): jen.Lit(rule.Lower),
			jen.Id("Index"): jen.Lit(rule.Index),
			jen.Id("Ops"):   opsLiteral(rule.Ops),
		}
		if rule.IsBackRef {
			fields[jen.Id("IsBackRef")] = jen.True()
		}
		values[i] = jen.Values(fields)
	}
	return jen.Index().Qual(vmPath, "Rule").Values(values...)
}

func udtsLiteral(g *sabnfvm.Grammar) jen.Code {
	values := make([]jen.Code, len(g.UDTs))
	for i := range g.UDTs {
		udt := &g.UDTs[i]
		fields := jen.Dict{
			jen.Id("Name"):  jen.Lit(udt.Name),
			jen.Id("Lower"): jen.Lit(udt.Lower),
			jen.Id("Index"): jen.Lit(udt.Index),
		}
		if udt.Empty {
			fields[jen.Id("Empty")] = jen.True()
		}
		if udt.IsBackRef {
			fields[jen.Id("IsBackRef")] = jen.True()
		}
		values[i] = jen.Values(fields)
	}
	return jen.Index().Qual(vmPath, "UDT").Values(values...)
}

func opsLiteral(ops []sabnfvm.Op) jen.Code {
	values := make([]jen.Code, len(ops))
	for i := range ops {
		values[i] = opLiteral(&ops[i])
	}
	return jen.Index().Qual(vmPath, "Op").Values(values...)
}

func opLiteral(op *sabnfvm.Op) jen.Code {
	fields := jen.Dict{
		jen.Id("Code"): jen.Qual(vmPath, "Op"+op.Code.String()),
	}
	switch op.Code {
	case sabnfvm.OpALT, sabnfvm.OpCAT:
		children := make([]jen.Code, len(op.Children))
		for i, c := range op.Children {
			children[i] = jen.Lit(c)
		}
		fields[jen.Id("Children")] = jen.Index().Int().Values(children...)

	case sabnfvm.OpREP:
		fields[jen.Id("Min")] = jen.Lit(op.Min)
		if op.Max == sabnfvm.RepInfinite {
			fields[jen.Id("Max")] = jen.Qual(vmPath, "RepInfinite")
		} else {
			fields[jen.Id("Max")] = jen.Lit(op.Max)
		}

	case sabnfvm.OpRNM, sabnfvm.OpUDT:
		fields[jen.Id("Index")] = jen.Lit(op.Index)
		if op.Empty {
			fields[jen.Id("Empty")] = jen.True()
		}

	case sabnfvm.OpTRG:
		fields[jen.Id("Lo")] = jen.LitRune(op.Lo)
		fields[jen.Id("Hi")] = jen.LitRune(op.Hi)

	case sabnfvm.OpTBS, sabnfvm.OpTLS:
		fields[jen.Id("Chars")] = jen.Index().Rune().Parens(jen.Lit(string(op.Chars)))

	case sabnfvm.OpBKR:
		fields[jen.Id("Index")] = jen.Lit(op.Index)
		if op.Case == sabnfvm.CaseInsensitive {
			fields[jen.Id("Case")] = jen.Qual(vmPath, "CaseInsensitive")
		}
		if op.Mode == sabnfvm.ModeParent {
			fields[jen.Id("Mode")] = jen.Qual(vmPath, "ModeParent")
		}
	}
	return jen.Values(fields)
}
