package usecase

import (
	"fmt"

	"contacts-api/internal/contacts/domain/model"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/types"
)

const contactVar = "contact"

// FilterCompiler turns CEL expressions over a single `contact` variable into
// predicates for the list endpoint.
type FilterCompiler struct {
	env *cel.Env
}

// Filter is a compiled list predicate
type Filter struct {
	expression string
	program    cel.Program
}

// NewFilterCompiler creates the CEL environment used for list filters
func NewFilterCompiler() (*FilterCompiler, error) {
	env, err := cel.NewEnv(
		cel.Variable(contactVar, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, err
	}
	return &FilterCompiler{env: env}, nil
}

// Compile parses and type-checks expression. Expressions that cannot yield a
// boolean or that reference a field contacts do not have are rejected here
// rather than at evaluation time.
func (fc *FilterCompiler) Compile(expression string) (*Filter, error) {
	ast, issues := fc.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %v", issues.Err())
	}

	if out := ast.OutputType(); out != nil && out.Kind() != types.BoolKind && out.Kind() != types.DynKind {
		return nil, fmt.Errorf("invalid filter: expression must evaluate to a boolean, got %s", out)
	}

	if field, ok := unknownContactField(ast.NativeRep().Expr()); ok {
		return nil, fmt.Errorf("invalid filter: unknown contact field %q", field)
	}

	program, err := fc.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %v", err)
	}
	return &Filter{expression: expression, program: program}, nil
}

// Match evaluates the filter against contact
func (f *Filter) Match(contact *model.Contact) (bool, error) {
	out, _, err := f.program.Eval(map[string]interface{}{
		contactVar: contact.AsMap(),
	})
	if err != nil {
		return false, fmt.Errorf("invalid filter: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("invalid filter: expression must evaluate to a boolean")
	}
	return result, nil
}

func (f *Filter) String() string {
	return f.expression
}

// unknownContactField finds the first contact.<field> or contact["<field>"]
// access naming a field outside the contact document.
func unknownContactField(root celast.Expr) (string, bool) {
	var unknown string
	celast.PreOrderVisit(root, celast.NewExprVisitor(func(e celast.Expr) {
		if unknown != "" {
			return
		}
		if field, ok := contactFieldRef(e); ok && !model.IsField(field) {
			unknown = field
		}
	}))
	return unknown, unknown != ""
}

func contactFieldRef(e celast.Expr) (string, bool) {
	switch e.Kind() {
	case celast.SelectKind:
		sel := e.AsSelect()
		if isContactIdent(sel.Operand()) {
			return sel.FieldName(), true
		}
	case celast.CallKind:
		call := e.AsCall()
		args := call.Args()
		if call.FunctionName() != operators.Index || len(args) != 2 || !isContactIdent(args[0]) {
			return "", false
		}
		if args[1].Kind() == celast.LiteralKind {
			if name, ok := args[1].AsLiteral().Value().(string); ok {
				return name, true
			}
		}
	}
	return "", false
}

func isContactIdent(e celast.Expr) bool {
	return e.Kind() == celast.IdentKind && e.AsIdent() == contactVar
}
