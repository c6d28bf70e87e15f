/*
 *
 * ElementaryJS - a safety-restricted dialect for teaching introductory programming
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package compiler

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
)

// rewriter walks a parsed program and emits an equivalent JavaScript source
// text with a dynamic check spliced around every potentially-unsafe
// operation: member access becomes dot()/checkMember()/checkArray(),
// arithmetic becomes applyNumOp()/applyNumOrStringOp(), boolean contexts
// are wrapped in checkIfBoolean(), every function gets an arityCheck()
// prologue, and so on, per the rewriting rules the package doc describes.
//
// It emits text rather than building a second AST: every splice is just a
// function call wrapped around the text the node itself would have printed
// as, so the output reads like lightly-annotated JavaScript rather than a
// generated artifact.
type rewriter struct {
	errs        *ErrorAccumulator
	file        *file.File
	scope       *DefiniteAssignmentTracker
	tempCounter int
	inCtor      []bool // stack mirroring function nesting: true inside a constructor
	constNames  []map[string]bool
}

func newRewriter(errs *ErrorAccumulator, f *file.File) *rewriter {
	return &rewriter{
		errs:       errs,
		file:       f,
		scope:      NewDefiniteAssignmentTracker(),
		constNames: []map[string]bool{{}},
	}
}

func (r *rewriter) tempName() string {
	r.tempCounter++
	return fmt.Sprintf("__ejs_tmp%d", r.tempCounter)
}

func (r *rewriter) inConstructor() bool {
	return len(r.inCtor) > 0 && r.inCtor[len(r.inCtor)-1]
}

// lineOf resolves a raw source offset to the 1-based source line the parser
// recorded for it, per the file's own line table.
func (r *rewriter) lineOf(idx file.Idx) int {
	return r.file.Position(idx).Line
}

// Rewrite parses src and produces the rewritten source text plus any
// diagnostics the static checks (C1/C2) raised. If errs is non-empty and
// not in silent mode, the returned string is best-effort and should not be
// executed.
func Rewrite(src, filename string, errs *ErrorAccumulator) (string, error) {
	prog, parseErr := parser.ParseFile(nil, filename, src, 0)
	if parseErr != nil {
		return "", parseErr
	}

	r := newRewriter(errs, prog.File)
	var body strings.Builder
	for _, stmt := range prog.Body {
		body.WriteString(r.statement(stmt))
		body.WriteString("\n")
	}

	var out strings.Builder
	out.WriteString(`"use strict";`)
	out.WriteString("\n")
	out.WriteString(body.String())
	return out.String(), nil
}

// --- statements ---------------------------------------------------------

func (r *rewriter) statement(s ast.Statement) string {
	switch n := s.(type) {
	case nil:
		return ""
	case *ast.BlockStatement:
		return r.block(n)
	case *ast.ExpressionStatement:
		return r.expression(n.Expression) + ";"
	case *ast.VariableStatement:
		r.errs.Error(r.lineOf(n.Idx0()), "Use 'let' or 'const' to declare a variable.")
		return "/* rejected var declaration */;"
	case *ast.LexicalDeclaration:
		return r.lexicalDeclaration(n)
	case *ast.FunctionDeclaration:
		return r.functionLiteral(n.Function, false)
	case *ast.ClassDeclaration:
		return r.classLiteral(n.Class)
	case *ast.ReturnStatement:
		if n.Argument == nil {
			return "return;"
		}
		return "return " + r.expression(n.Argument) + ";"
	case *ast.IfStatement:
		return r.ifStatement(n)
	case *ast.ForStatement:
		return r.forStatement(n)
	case *ast.WhileStatement:
		return r.whileStatement(n)
	case *ast.DoWhileStatement:
		return r.doWhileStatement(n)
	case *ast.SwitchStatement:
		return r.switchStatement(n)
	case *ast.BranchStatement:
		return r.branchStatement(n)
	case *ast.EmptyStatement:
		return ";"
	case *ast.ThrowStatement:
		r.errs.Error(r.lineOf(n.Idx0()), "The 'throw' statement is not allowed.")
		return "/* rejected throw */;"
	case *ast.TryStatement:
		r.errs.Error(r.lineOf(n.Idx0()), "The 'try'/'catch' statement is not allowed.")
		return "/* rejected try */;"
	case *ast.WithStatement:
		r.errs.Error(r.lineOf(n.Idx0()), "The 'with' statement is not allowed.")
		return "/* rejected with */;"
	case *ast.ForInStatement:
		r.errs.Error(r.lineOf(n.Idx0()), "The 'for-in' statement is not allowed.")
		return "/* rejected for-in */;"
	case *ast.ForOfStatement:
		r.errs.Error(r.lineOf(n.Idx0()), "The 'for-of' statement is not allowed.")
		return "/* rejected for-of */;"
	default:
		return fmt.Sprintf("/* unsupported statement %T */;", n)
	}
}

func (r *rewriter) block(b *ast.BlockStatement) string {
	if b == nil {
		return "{}"
	}
	r.scope.PushScope(scopeBlock)
	defer r.scope.PopScope()
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.List {
		sb.WriteString(r.statement(s))
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (r *rewriter) requireBraced(s ast.Statement, line int, context string) string {
	if _, ok := s.(*ast.BlockStatement); !ok {
		if _, isIf := s.(*ast.IfStatement); isIf && context == "else" {
			return r.statement(s)
		}
		r.errs.Error(line, fmt.Sprintf("The body of %s must be enclosed in braces.", context))
	}
	return r.statement(s)
}

func (r *rewriter) lexicalDeclaration(n *ast.LexicalDeclaration) string {
	kw := "let"
	isConst := n.Token == token.CONST
	if isConst {
		kw = "const"
	}
	var parts []string
	for _, b := range n.List {
		ident, ok := b.Target.(*ast.Identifier)
		if !ok {
			r.errs.Error(r.lineOf(n.Idx0()), "Destructuring patterns are not allowed in a variable declaration.")
			continue
		}
		name := string(ident.Name)
		if isConst {
			r.constNames[len(r.constNames)-1][name] = true
		}
		if b.Initializer != nil {
			r.scope.AddInitialized(name)
			parts = append(parts, name+" = "+r.expression(b.Initializer))
		} else {
			r.scope.AddUninitialized(name)
			parts = append(parts, name)
		}
	}
	return kw + " " + strings.Join(parts, ", ") + ";"
}

func (r *rewriter) ifStatement(n *ast.IfStatement) string {
	line := r.lineOf(n.Idx0())
	test := fmt.Sprintf("rts.checkIfBoolean(%s, null, %d)", r.expression(n.Test), line)

	baseline := r.scope.Snapshot()
	r.scope.PushScope(scopeBranch)
	for k, v := range baseline {
		r.scope.top().state[k] = v
	}
	cons := r.requireBraced(n.Consequent, line, "an 'if'")
	consSnap := r.scope.Snapshot()
	r.scope.PopScope()

	out := fmt.Sprintf("if (%s) %s", test, cons)
	if n.Alternate == nil {
		return out
	}

	r.scope.PushScope(scopeBranch)
	for k, v := range baseline {
		r.scope.top().state[k] = v
	}
	alt := r.requireBraced(n.Alternate, line, "else")
	altSnap := r.scope.Snapshot()
	r.scope.PopScope()

	r.scope.MergeBranches(baseline, []map[string]bindingState{consSnap, altSnap})
	return out + " else " + alt
}

func (r *rewriter) forStatement(n *ast.ForStatement) string {
	line := r.lineOf(n.Idx0())
	if n.Initializer == nil || n.Test == nil || n.Update == nil {
		r.errs.Error(line, "A 'for' statement must have an initializer, a test, and an update expression.")
	}
	r.scope.PushScope(scopeLoop)
	defer r.scope.PopScope()

	init := ""
	switch i := n.Initializer.(type) {
	case nil:
	case *ast.ForLoopInitializerExpression:
		init = r.expression(i.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		r.errs.Error(line, "Use 'let' or 'const' to declare a variable.")
	case *ast.ForLoopInitializerLexicalDecl:
		init = strings.TrimSuffix(r.lexicalDeclaration(&i.LexicalDeclaration), ";")
	}

	test := "true"
	if n.Test != nil {
		test = fmt.Sprintf("rts.checkIfBoolean(%s, null, %d)", r.expression(n.Test), line)
	}
	update := ""
	if n.Update != nil {
		update = r.expression(n.Update)
	}
	body := r.requireBraced(n.Body, line, "a 'for' loop")
	return fmt.Sprintf("for (%s; %s; %s) %s", init, test, update, body)
}

func (r *rewriter) whileStatement(n *ast.WhileStatement) string {
	line := r.lineOf(n.Idx0())
	test := fmt.Sprintf("rts.checkIfBoolean(%s, null, %d)", r.expression(n.Test), line)
	r.scope.PushScope(scopeLoop)
	body := r.requireBraced(n.Body, line, "a 'while' loop")
	r.scope.PopScope()
	return fmt.Sprintf("while (%s) %s", test, body)
}

func (r *rewriter) doWhileStatement(n *ast.DoWhileStatement) string {
	line := r.lineOf(n.Idx0())
	r.scope.PushScope(scopeDoWhileBody)
	body := r.requireBraced(n.Body, line, "a 'do-while' loop")
	r.scope.PopScope()
	test := fmt.Sprintf("rts.checkIfBoolean(%s, null, %d)", r.expression(n.Test), line)
	return fmt.Sprintf("do %s while (%s);", body, test)
}

func (r *rewriter) switchStatement(n *ast.SwitchStatement) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("switch (%s) {\n", r.expression(n.Discriminant)))

	baseline := r.scope.Snapshot()
	var branchSnaps []map[string]bindingState
	hasDefault := false
	for i, c := range n.Body {
		if len(c.Consequent) == 0 {
			continue
		}
		if c.Test == nil {
			hasDefault = true
			sb.WriteString("default:\n")
		} else {
			sb.WriteString(fmt.Sprintf("case %s:\n", r.expression(c.Test)))
		}
		r.scope.PushScope(scopeBranch)
		for k, v := range baseline {
			r.scope.top().state[k] = v
		}
		for _, s := range c.Consequent {
			if _, ok := s.(*ast.BlockStatement); !ok {
				r.errs.Error(r.lineOf(c.Idx0()), "Each non-empty switch case must be enclosed in braces.")
			}
			sb.WriteString(r.statement(s))
			sb.WriteString("\n")
		}
		branchSnaps = append(branchSnaps, r.scope.Snapshot())
		r.scope.PopScope()
		_ = i
	}
	sb.WriteString("}")
	if hasDefault {
		r.scope.MergeBranches(baseline, branchSnaps)
	}
	return sb.String()
}

func (r *rewriter) branchStatement(n *ast.BranchStatement) string {
	kw := "break"
	if n.Token == token.CONTINUE {
		kw = "continue"
	}
	if n.Label != nil {
		return kw + " " + string(n.Label.Name) + ";"
	}
	return kw + ";"
}

// --- functions -----------------------------------------------------------

// functionBody walks a function literal's parameter list and body, pushing
// a fresh function scope and the isCtor flag functions descending into the
// body (assignExpression's this.m relaxation) consult. Shared by plain
// function literals and class method/constructor definitions so both splice
// the same arityCheck prologue and definite-assignment handling.
func (r *rewriter) functionBody(fn *ast.FunctionLiteral, name string, isCtor bool) (params []string, body string) {
	line := r.lineOf(fn.Idx0())
	if fn.ParameterList != nil {
		if fn.ParameterList.Rest != nil {
			r.errs.Error(line, "Rest parameters are not allowed.")
		}
		for _, p := range fn.ParameterList.List {
			if ident, ok := p.Target.(*ast.Identifier); ok {
				params = append(params, string(ident.Name))
			} else {
				r.errs.Error(line, "Destructuring patterns are not allowed in a parameter list.")
			}
		}
	}

	r.scope.PushScope(scopeFunction)
	for _, p := range params {
		r.scope.AddInitialized(p)
	}
	r.inCtor = append(r.inCtor, isCtor)
	r.constNames = append(r.constNames, map[string]bool{})

	var bodySb strings.Builder
	bodySb.WriteString("{\n")
	bodySb.WriteString(fmt.Sprintf("rts.arityCheck(%q, %d, arguments.length, %d);\n", name, len(params), line))
	if fn.Body != nil {
		for _, s := range fn.Body.List {
			bodySb.WriteString(r.statement(s))
			bodySb.WriteString("\n")
		}
	}
	bodySb.WriteString("}")

	r.constNames = r.constNames[:len(r.constNames)-1]
	r.inCtor = r.inCtor[:len(r.inCtor)-1]
	r.scope.PopScope()

	return params, bodySb.String()
}

func (r *rewriter) functionLiteral(fn *ast.FunctionLiteral, isCtor bool) string {
	name := "anonymous"
	if fn.Name != nil {
		name = string(fn.Name.Name)
	}
	params, body := r.functionBody(fn, name, isCtor)

	prefix := "function"
	if fn.Name != nil {
		prefix = "function " + name
	}
	return fmt.Sprintf("%s(%s) %s", prefix, strings.Join(params, ", "), body)
}

// --- classes ---------------------------------------------------------------

func (r *rewriter) classLiteral(n *ast.ClassLiteral) string {
	var sb strings.Builder
	sb.WriteString("class")
	if n.Name != nil {
		sb.WriteString(" " + string(n.Name.Name))
	}
	if n.SuperClass != nil {
		sb.WriteString(" extends " + r.expression(n.SuperClass))
	}
	sb.WriteString(" {\n")
	for _, el := range n.Body {
		sb.WriteString(r.classElement(el))
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (r *rewriter) classElement(el ast.ClassElement) string {
	switch m := el.(type) {
	case *ast.MethodDefinition:
		return r.methodDefinition(m)
	case *ast.FieldDefinition:
		return r.fieldDefinition(m)
	case *ast.ClassStaticBlock:
		r.errs.Error(r.lineOf(m.Idx0()), "Static initialization blocks are not allowed.")
		return ""
	default:
		return fmt.Sprintf("/* unsupported class element %T */", m)
	}
}

// methodDefinition rewrites one class method, getter, or setter. The
// constructor (an unstatic, uncomputed method literally named "constructor")
// is the only place isCtor is ever true - it's what makes assignExpression's
// this.m relaxation reachable at all.
func (r *rewriter) methodDefinition(m *ast.MethodDefinition) string {
	key, ok := propertyKeyName(m.Key)
	if !ok || m.Computed {
		r.errs.Error(r.lineOf(m.Idx0()), "Class method names must be identifiers.")
		key = "method"
	}
	isCtor := !m.Static && m.Kind == ast.PropertyKindMethod && key == "constructor"
	params, body := r.functionBody(m.Body, key, isCtor)

	prefix := ""
	if m.Static {
		prefix = "static "
	}
	switch m.Kind {
	case ast.PropertyKindGet:
		return fmt.Sprintf("%sget %s() %s", prefix, key, body)
	case ast.PropertyKindSet:
		return fmt.Sprintf("%sset %s(%s) %s", prefix, key, strings.Join(params, ", "), body)
	default:
		return fmt.Sprintf("%s%s(%s) %s", prefix, key, strings.Join(params, ", "), body)
	}
}

func (r *rewriter) fieldDefinition(f *ast.FieldDefinition) string {
	key, ok := propertyKeyName(f.Key)
	if !ok || f.Computed {
		r.errs.Error(r.lineOf(f.Idx0()), "Class field names must be identifiers.")
		key = "field"
	}
	prefix := ""
	if f.Static {
		prefix = "static "
	}
	if f.Initializer == nil {
		return fmt.Sprintf("%s%s;", prefix, key)
	}
	return fmt.Sprintf("%s%s = %s;", prefix, key, r.expression(f.Initializer))
}

// --- expressions ---------------------------------------------------------

func (r *rewriter) expression(e ast.Expression) string {
	switch n := e.(type) {
	case nil:
		return "undefined"
	case *ast.Identifier:
		name := string(n.Name)
		if name == "Array" {
			return "rts.Array"
		}
		if r.scope.IsUninitialized(name) {
			r.errs.Error(r.lineOf(n.Idx0()), fmt.Sprintf("You must initialize the variable '%s' before use.", name))
		}
		return name
	case *ast.NumberLiteral:
		return fmt.Sprintf("%v", n.Value)
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", string(n.Value))
	case *ast.BooleanLiteral:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.NullLiteral:
		return "null"
	case *ast.ArrayLiteral:
		var elems []string
		for _, v := range n.Value {
			elems = append(elems, r.expression(v))
		}
		return fmt.Sprintf("rts.seq([%s])", strings.Join(elems, ", "))
	case *ast.ObjectLiteral:
		return r.objectLiteral(n)
	case *ast.FunctionLiteral:
		return r.functionLiteral(n, false)
	case *ast.ClassLiteral:
		return r.classLiteral(n)
	case *ast.ArrowFunctionLiteral:
		return r.arrowFunction(n)
	case *ast.DotExpression:
		return r.dotExpression(n)
	case *ast.BracketExpression:
		line := r.lineOf(n.Idx0())
		return fmt.Sprintf("rts.arrayBoundsCheck(%s, %s, %d)", r.expression(n.Left), r.expression(n.Member), line)
	case *ast.CallExpression:
		return r.callExpression(n)
	case *ast.NewExpression:
		var args []string
		for _, a := range n.ArgumentList {
			args = append(args, r.expression(a))
		}
		return fmt.Sprintf("new %s(%s)", r.expression(n.Callee), strings.Join(args, ", "))
	case *ast.AssignExpression:
		return r.assignExpression(n)
	case *ast.UpdateExpression:
		return r.updateExpression(n)
	case *ast.BinaryExpression:
		return r.binaryExpression(n)
	case *ast.UnaryExpression:
		return r.unaryExpression(n)
	case *ast.ConditionalExpression:
		return fmt.Sprintf("(%s ? %s : %s)", r.expression(n.Test), r.expression(n.Consequent), r.expression(n.Alternate))
	case *ast.SequenceExpression:
		var parts []string
		for _, v := range n.Sequence {
			parts = append(parts, r.expression(v))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ast.ThisExpression:
		return "this"
	default:
		return fmt.Sprintf("/* unsupported expression %T */ undefined", n)
	}
}

func (r *rewriter) arrowFunction(fn *ast.ArrowFunctionLiteral) string {
	line := r.lineOf(fn.Idx0())
	var params []string
	if fn.ParameterList != nil {
		for _, p := range fn.ParameterList.List {
			if ident, ok := p.Target.(*ast.Identifier); ok {
				params = append(params, string(ident.Name))
			}
		}
	}
	r.scope.PushScope(scopeFunction)
	for _, p := range params {
		r.scope.AddInitialized(p)
	}
	r.inCtor = append(r.inCtor, r.inConstructor())
	defer func() {
		r.inCtor = r.inCtor[:len(r.inCtor)-1]
		r.scope.PopScope()
	}()

	var body string
	switch b := fn.Body.(type) {
	case *ast.BlockStatement:
		var sb strings.Builder
		sb.WriteString("{\n")
		sb.WriteString(fmt.Sprintf("rts.arityCheck(\"anonymous\", %d, arguments.length, %d);\n", len(params), line))
		for _, s := range b.List {
			sb.WriteString(r.statement(s))
			sb.WriteString("\n")
		}
		sb.WriteString("}")
		body = sb.String()
	default:
		if expr, ok := fn.Body.(ast.Expression); ok {
			body = r.expression(expr)
		}
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), body)
}

func (r *rewriter) objectLiteral(n *ast.ObjectLiteral) string {
	seen := map[string]bool{}
	var props []string
	for _, p := range n.Value {
		switch pr := p.(type) {
		case *ast.PropertyKeyed:
			key, ok := propertyKeyName(pr.Key)
			if !ok {
				r.errs.Error(r.lineOf(n.Idx0()), "Object literal keys must be identifiers.")
				continue
			}
			if seen[key] {
				r.errs.Error(r.lineOf(n.Idx0()), fmt.Sprintf("Duplicate key '%s' in object literal.", key))
			}
			seen[key] = true
			props = append(props, fmt.Sprintf("%q: %s", key, r.expression(pr.Value)))
		case *ast.PropertyShort:
			key := string(pr.Name.Name)
			if seen[key] {
				r.errs.Error(r.lineOf(n.Idx0()), fmt.Sprintf("Duplicate key '%s' in object literal.", key))
			}
			seen[key] = true
			props = append(props, fmt.Sprintf("%q: %s", key, key))
		default:
			r.errs.Error(r.lineOf(n.Idx0()), "Unsupported object literal property.")
		}
	}
	return "{" + strings.Join(props, ", ") + "}"
}

func propertyKeyName(key ast.Expression) (string, bool) {
	switch k := key.(type) {
	case *ast.Identifier:
		return string(k.Name), true
	case *ast.StringLiteral:
		return string(k.Value), true
	default:
		return "", false
	}
}

func (r *rewriter) dotExpression(n *ast.DotExpression) string {
	line := r.lineOf(n.Idx0())
	return fmt.Sprintf("rts.dot(%s, %q, %d)", r.expression(n.Left), string(n.Identifier.Name), line)
}

var sequenceProducingMembers = map[string]bool{
	"keys": true, "values": true, "entries": true, "getOwnPropertyNames": true,
}

func (r *rewriter) callExpression(n *ast.CallExpression) string {
	var args []string
	for _, a := range n.ArgumentList {
		args = append(args, r.expression(a))
	}

	if dot, ok := n.Callee.(*ast.DotExpression); ok {
		name := string(dot.Identifier.Name)
		if name == "split" || sequenceProducingMembers[name] {
			return fmt.Sprintf("rts.checkCall(%s, %q, %s)", r.expression(dot.Left), name, strings.Join(args, ", "))
		}
		return fmt.Sprintf("%s.%s(%s)", r.expression(dot.Left), name, strings.Join(args, ", "))
	}

	return fmt.Sprintf("%s(%s)", r.expression(n.Callee), strings.Join(args, ", "))
}

var allowedAssignOps = map[token.Token]string{
	token.ASSIGN:          "=",
	token.PLUS_ASSIGN:     "+=",
	token.MINUS_ASSIGN:    "-=",
	token.MULTIPLY_ASSIGN: "*=",
	token.SLASH_ASSIGN:    "/=",
	token.REMAINDER_ASSIGN: "%=",
}

func (r *rewriter) assignExpression(n *ast.AssignExpression) string {
	line := r.lineOf(n.Idx0())
	opText, ok := allowedAssignOps[n.Operator]
	if !ok {
		r.errs.Error(line, "This assignment operator is not allowed.")
		opText = "="
	}
	binOp := strings.TrimSuffix(opText, "=")

	switch lhs := n.Left.(type) {
	case *ast.Identifier:
		name := string(lhs.Name)
		if r.isConstName(name) {
			r.errs.Error(line, fmt.Sprintf("'%s' is a constant and cannot be reassigned.", name))
		}
		r.scope.Initialize(name)
		if opText == "=" {
			return fmt.Sprintf("(%s = %s)", name, r.expression(n.Right))
		}
		return fmt.Sprintf("(%s = rts.applyNumOp(%q, %s, %s, %d))", name, binOp, name, r.expression(n.Right), line)

	case *ast.DotExpression:
		obj := r.expression(lhs.Left)
		member := string(lhs.Identifier.Name)
		rhs := r.expression(n.Right)
		if r.inConstructor() {
			if _, isThis := lhs.Left.(*ast.ThisExpression); isThis {
				if opText == "=" {
					return fmt.Sprintf("(this.%s = %s)", member, rhs)
				}
				return fmt.Sprintf("(this.%s = rts.applyNumOp(%q, this.%s, %s, %d))", member, binOp, member, rhs, line)
			}
		}
		if opText == "=" {
			return fmt.Sprintf("rts.checkMember(%s, %q, %s, %d)", obj, member, rhs, line)
		}
		t := r.tempName()
		return fmt.Sprintf("(%s = %s, rts.checkMember(%s, %q, rts.applyNumOp(%q, rts.dot(%s, %q, %d), %s, %d), %d))",
			t, obj, t, member, binOp, t, member, line, rhs, line, line)

	case *ast.BracketExpression:
		obj := r.expression(lhs.Left)
		rhs := r.expression(n.Right)
		if opText == "=" {
			return fmt.Sprintf("rts.checkArray(%s, %s, %s, %d)", obj, r.expression(lhs.Member), rhs, line)
		}
		t := r.tempName()
		idx := r.expression(lhs.Member)
		return fmt.Sprintf("(%s = %s, rts.checkArray(%s, %s, rts.applyNumOp(%q, rts.arrayBoundsCheck(%s, %s, %d), %s, %d), %d))",
			t, obj, t, idx, binOp, t, idx, line, rhs, line, line)

	default:
		r.errs.Error(line, "Unsupported assignment target.")
		return "undefined"
	}
}

func (r *rewriter) isConstName(name string) bool {
	for i := len(r.constNames) - 1; i >= 0; i-- {
		if r.constNames[i][name] {
			return true
		}
	}
	return false
}

func (r *rewriter) updateExpression(n *ast.UpdateExpression) string {
	line := r.lineOf(n.Idx0())
	op := "++"
	if n.Operator == token.DECREMENT {
		op = "--"
	}
	if n.Postfix {
		r.errs.Error(line, "Only prefix increment/decrement ('++x', '--x') is allowed.")
	}

	switch operand := n.Operand.(type) {
	case *ast.Identifier:
		name := string(operand.Name)
		return fmt.Sprintf("(rts.updateOnlyNumbers(%q, %s, %d), %s%s)", op, name, line, op, name)
	case *ast.DotExpression:
		obj := r.expression(operand.Left)
		member := string(operand.Identifier.Name)
		return fmt.Sprintf("rts.checkUpdateOperand(%q, %s, %q, %d)", op, obj, member, line)
	case *ast.BracketExpression:
		obj := r.expression(operand.Left)
		idx := r.expression(operand.Member)
		return fmt.Sprintf("rts.checkUpdateOperand(%q, %s, %s, %d)", op, obj, idx, line)
	default:
		r.errs.Error(line, "Unsupported update expression target.")
		return "undefined"
	}
}

var binOpText = map[token.Token]string{
	token.MINUS: "-", token.MULTIPLY: "*", token.SLASH: "/", token.REMAINDER: "%",
	token.LESS: "<", token.LESS_OR_EQUAL: "<=", token.GREATER: ">", token.GREATER_OR_EQUAL: ">=",
	token.STRICT_EQUAL: "===", token.STRICT_NOT_EQUAL: "!==",
	token.SHIFT_LEFT: "<<", token.SHIFT_RIGHT: ">>", token.UNSIGNED_SHIFT_RIGHT: ">>>",
	token.AND: "&", token.OR: "|", token.EXCLUSIVE_OR: "^",
}

func (r *rewriter) binaryExpression(n *ast.BinaryExpression) string {
	line := r.lineOf(n.Idx0())

	if n.Operator == token.LOGICAL_AND || n.Operator == token.LOGICAL_OR {
		op := "&&"
		if n.Operator == token.LOGICAL_OR {
			op = "||"
		}
		left := fmt.Sprintf("rts.checkIfBoolean(%s, %q, %d)", r.expression(n.Left), op, line)
		right := fmt.Sprintf("rts.checkIfBoolean(%s, %q, %d)", r.expression(n.Right), op, line)
		return fmt.Sprintf("(%s %s %s)", left, op, right)
	}

	if n.Operator == token.EQUAL {
		r.errs.Error(line, "Use '===' instead of '==' to compare values.")
	}
	if n.Operator == token.NOT_EQUAL {
		r.errs.Error(line, "Use '!==' instead of '!=' to compare values.")
	}
	if n.Operator == token.INSTANCEOF {
		r.errs.Error(line, "The 'instanceof' operator is not allowed.")
	}
	if n.Operator == token.IN {
		r.errs.Error(line, "The 'in' operator is not allowed.")
	}

	if n.Operator == token.PLUS {
		return fmt.Sprintf("rts.applyNumOrStringOp(\"+\", %s, %s, %d)", r.expression(n.Left), r.expression(n.Right), line)
	}

	opText, ok := binOpText[n.Operator]
	if !ok {
		// EQUAL/NOT_EQUAL/INSTANCEOF/IN already reported above; fall
		// through with strict equality so the emitted text still parses.
		opText = "==="
	}
	return fmt.Sprintf("rts.applyNumOp(%q, %s, %s, %d)", opText, r.expression(n.Left), r.expression(n.Right), line)
}

func (r *rewriter) unaryExpression(n *ast.UnaryExpression) string {
	line := r.lineOf(n.Idx0())
	switch n.Operator {
	case token.DELETE:
		r.errs.Error(line, "The 'delete' operator is not allowed.")
		return "undefined"
	case token.TYPEOF:
		r.errs.Error(line, "The 'typeof' operator is not allowed.")
		return "undefined"
	case token.PLUS:
		return "(+" + r.expression(n.Operand) + ")"
	case token.MINUS:
		return "(-" + r.expression(n.Operand) + ")"
	case token.NOT:
		return "(!" + r.expression(n.Operand) + ")"
	default:
		return "(" + n.Operator.String() + r.expression(n.Operand) + ")"
	}
}
