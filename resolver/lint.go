package resolver

import (
	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
)

// lintCheckModule runs the per-module style checks: duplicate imports
// of the same package in one file and imports placed after other
// statements.
func (r *Resolver) lintCheckModule(module *ast.Module) {
	imported := make(map[string]bool)
	seenNonImport := false
	for _, stmt := range module.Body {
		importStmt, ok := stmt.(*ast.ImportStmt)
		if !ok {
			seenNonImport = true
			continue
		}
		if seenNonImport {
			r.handler.AddWarning(failed.ImportPositionWarning, failed.Message{
				Positioner: importStmt,
				Text:       "The import stmt should be placed at the top of the module",
			})
		}
		if imported[importStmt.Path] {
			r.handler.AddWarning(failed.ReimportWarning, failed.Message{
				Positioner: importStmt,
				Text:       "Module '" + importStmt.PkgName() + "' is reimported multiple times",
			})
		}
		imported[importStmt.Path] = true
	}
}

// lintCheckScopeMap reports the imported modules that were never
// referenced.
func (r *Resolver) lintCheckScopeMap() {
	for _, scope := range r.scopeMap {
		for _, obj := range scope.Elems.All() {
			if obj.Kind == KindModule && !obj.Used {
				r.handler.AddWarning(failed.UnusedImportWarning, failed.Message{
					Positioner: ast.Range{PosStart: obj.Start, PosEnd: obj.End},
					Text:       "Module '" + obj.Name + "' imported but unused",
				})
			}
		}
	}
}
