package resolver

import (
	"path/filepath"
	"strings"

	"github.com/kcl-lang/kcl-sub002/ast"
	"github.com/kcl-lang/kcl-sub002/failed"
	"github.com/kcl-lang/kcl-sub002/types"
)

// resolveImport reports the import statements whose target package is
// not part of the program. System and plugin modules are always
// importable.
func (r *Resolver) resolveImport() {
	for _, modules := range r.program.Pkgs {
		for _, module := range modules {
			for _, stmt := range module.Body {
				importStmt, ok := stmt.(*ast.ImportStmt)
				if !ok {
					continue
				}
				pkgpath := importStmt.Path
				if isSystemModule(pkgpath) || strings.HasPrefix(pkgpath, pluginModulePrefix) {
					continue
				}
				if _, ok := r.program.Pkgs[pkgpath]; !ok {
					realPath := filepath.Join(r.program.Root, strings.ReplaceAll(pkgpath, ".", string(filepath.Separator)))
					r.handler.AddError(failed.CannotFindModule, failed.Message{
						Positioner: importStmt,
						Text:       "Cannot find the module " + importStmt.Rawpath + " from " + realPath,
					})
				}
			}
		}
	}
}

// checkImport enters the package and binds its imports, recursing into
// imported user packages that are not resolved yet.
func (r *Resolver) checkImport(pkgpath string) {
	r.ctx.pkgpath = pkgpath
	filename := r.ctx.filename
	r.changePackageContext(pkgpath, filename)
	r.initImportList()
}

func (r *Resolver) initImportList() {
	modules, ok := r.program.Pkgs[r.ctx.pkgpath]
	if !ok {
		return
	}
	for _, module := range modules {
		r.ctx.filename = module.Filename
		r.ctx.pkgpath = module.Pkg
		for _, stmt := range module.Body {
			importStmt, ok := stmt.(*ast.ImportStmt)
			if !ok {
				continue
			}
			mapping, ok := r.ctx.importNames[r.ctx.filename]
			if !ok {
				mapping = make(map[string]string)
				r.ctx.importNames[r.ctx.filename] = mapping
			}
			mapping[importStmt.PkgName()] = importStmt.Path

			isUserModule := r.bindModuleObject(importStmt)
			if !isUserModule {
				continue
			}

			currentPkgpath := r.ctx.pkgpath
			currentFilename := r.ctx.filename
			r.tyCtx.AddDependency(r.ctx.pkgpath, importStmt.Path)
			if r.tyCtx.IsCyclic() {
				r.handler.AddCompileError(importStmt,
					"There is a circular import reference between module %v and %v",
					r.ctx.pkgpath, importStmt.Path)
			}
			if _, resolved := r.scopeMap[importStmt.Path]; !resolved {
				r.check(importStmt.Path)
			}
			r.changePackageContext(currentPkgpath, currentFilename)
		}
	}
}

// bindModuleObject inserts or updates the module object the import
// binds in the package scope, reporting whether it is a user module.
func (r *Resolver) bindModuleObject(importStmt *ast.ImportStmt) bool {
	if obj, ok := r.scope.Elems.Get(importStmt.Path); ok {
		moduleTy, ok := obj.Ty.(*types.Module)
		if !ok {
			failed.Bug("invalid module type in the import check function %v", obj.Ty.TypeString())
		}
		obj.Ty = &types.Module{
			Pkgpath:  moduleTy.Pkgpath,
			Imported: append(append([]string{}, moduleTy.Imported...), r.ctx.filename),
			Kind:     moduleTy.Kind,
		}
		return moduleTy.Kind == types.ModuleKindUser
	}
	kind := types.ModuleKindUser
	switch {
	case strings.HasPrefix(importStmt.Path, pluginModulePrefix):
		kind = types.ModuleKindPlugin
	case isSystemModule(importStmt.Path):
		kind = types.ModuleKindSystem
	}
	r.scope.Elems.Set(importStmt.Path, &ScopeObject{
		Name:  importStmt.Path,
		Start: importStmt.Pos(),
		End:   importStmt.End(),
		Ty: &types.Module{
			Pkgpath:  importStmt.Path,
			Imported: []string{r.ctx.filename},
			Kind:     kind,
		},
		Kind: KindModule,
	})
	return kind == types.ModuleKindUser
}

// changePackageContext switches the current scope to the package
// scope, creating it under the builtin scope on first entry.
func (r *Resolver) changePackageContext(pkgpath, filename string) {
	if pkgpath == "" {
		return
	}
	if _, ok := r.scopeMap[pkgpath]; !ok {
		scope := newScope(r.builtin, ast.Pos{}, ast.Pos{}, ScopePackage)
		r.scopeMap[pkgpath] = scope
	}
	r.ctx.pkgpath = pkgpath
	r.ctx.filename = filename
	r.scope = r.scopeMap[pkgpath]
}
