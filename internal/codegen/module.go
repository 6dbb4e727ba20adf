package codegen

import (
	"lotusjs/ast"
	"lotusjs/internal/diagnostics"
	"lotusjs/internal/scope"
	"lotusjs/value"
)

// genImport loads decl's source module once via GetModule into a fresh
// local, then binds each specifier off that namespace object: a default
// import reads its "default" property, a namespace import keeps the
// object itself, and a named import reads the remote export by name
// (spec.md §4.3's export-variable table is how the other side of this —
// GetModule's target module — publishes those names).
func (g *Generator) genImport(decl *ast.ImportDeclaration) {
	specIdx := g.constIndex(value.Str(decl.Source))
	g.fn.Code.EmitGetModule(specIdx)
	// A bare FuncDef.AllocLocal (not scopes.AllocateVar) reserves this
	// slot directly: it's an internal temp, never looked up by name, and
	// a second import statement in the same module scope must not
	// collide with the first one's "#module" binding the way two user
	// declarations of the same name would.
	modSlot := g.fn.AllocLocal("#module")
	g.fn.Code.EmitVarStore(modSlot)

	for _, spec := range decl.Specifiers {
		localInfo, err := g.scopes.AllocateVar(spec.Local, scope.VarNone)
		if err != nil {
			g.errorAt(decl, diagnostics.CategorySemantic, err.Error())
			continue
		}
		switch spec.Kind {
		case ast.ImportNamespace:
			g.fn.Code.EmitVarLoad(modSlot)
		case ast.ImportDefault:
			g.fn.Code.EmitVarLoad(modSlot)
			idx := g.constIndex(value.Str("default"))
			g.fn.Code.EmitPropertyLoad(idx)
		case ast.ImportNamed:
			g.fn.Code.EmitVarLoad(modSlot)
			idx := g.constIndex(value.Str(spec.Remote))
			g.fn.Code.EmitPropertyLoad(idx)
		}
		g.fn.Code.EmitVarStore(localInfo.Index)
	}
}

// genExport handles all four shapes ExportDeclaration covers (spec.md
// §4.3): a wrapped function/class declaration compiles normally (its own
// Export/Default-bookkeeping already records the slot, see
// genFunctionDeclaration/genClassDeclaration); a wrapped bare expression
// (`export default <expr>`) has no declaration of its own to hang the
// bookkeeping off, so this lowers it directly — evaluate the expression
// into a synthetic local and register that under "default"; a bare
// `export {a, b}` registers each already-declared local under its export
// name; a re-export `export {a as b} from "mod"` pulls each named export
// off the source module into a fresh local before registering it under
// this module's export table.
func (g *Generator) genExport(decl *ast.ExportDeclaration) {
	if decl.Decl != nil {
		if exprStmt, ok := decl.Decl.(*ast.ExpressionStatement); ok {
			if g.mod == nil || g.fn != &g.mod.FunctionDef {
				g.errorAt(decl, diagnostics.CategorySemantic, "export only allowed at module top level")
				return
			}
			g.genExpression(exprStmt.Expr)
			slot := g.fn.AllocLocal("#export_default")
			g.fn.Code.EmitVarStore(slot)
			g.mod.ExportVars.AddExportVar("default", slot)
			return
		}
		g.genStatement(decl.Decl)
		return
	}
	if g.mod == nil || g.fn != &g.mod.FunctionDef {
		g.errorAt(decl, diagnostics.CategorySemantic, "export only allowed at module top level")
		return
	}

	if decl.Source == "" {
		for _, spec := range decl.Specifiers {
			info, ok := g.scopes.FindVar(g.fn, spec.Local)
			if !ok {
				g.errorAt(decl, diagnostics.CategorySemantic, "export of undeclared name "+spec.Local)
				continue
			}
			g.mod.ExportVars.AddExportVar(spec.Remote, info.Index)
		}
		return
	}

	specIdx := g.constIndex(value.Str(decl.Source))
	g.fn.Code.EmitGetModule(specIdx)
	modSlot := g.fn.AllocLocal("#reexport")

	g.fn.Code.EmitVarStore(modSlot)

	for _, spec := range decl.Specifiers {
		g.fn.Code.EmitVarLoad(modSlot)
		idx := g.constIndex(value.Str(spec.Local))
		g.fn.Code.EmitPropertyLoad(idx)
		localSlot := g.fn.AllocLocal("#reexport_" + spec.Remote)
		g.fn.Code.EmitVarStore(localSlot)
		g.mod.ExportVars.AddExportVar(spec.Remote, localSlot)
	}
}
