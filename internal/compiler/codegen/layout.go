// Copyright 2016 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

package codegen

import (
	"github.com/golang/glog"
	"github.com/google/minijava/internal/compiler/ast"
	"github.com/google/minijava/internal/compiler/types"
	"github.com/google/minijava/internal/vm/code"
)

// layout assigns a runtime entity to every class, field, method and
// parameter.  Static fields are placed from SB in declaration order, and the
// class descriptors follow them.  Locals are placed as their declarations are
// emitted.
func (c *codegen) layout(pkg *ast.Package) {
	c.staticSize = 0
	for _, cd := range pkg.Classes {
		for _, fd := range cd.Fields {
			if fd.IsStatic {
				size := types.Size(fd.Type)
				fd.Entity = ast.NewEntity(size, code.StackBase+c.staticSize, code.SB)
				c.staticSize += size
			}
		}
	}

	desc := c.staticSize
	for _, cd := range pkg.Classes {
		classIndex := c.addEntity(nil)
		instanceSize := 0
		for _, fd := range cd.Fields {
			if fd.IsStatic {
				continue
			}
			size := types.Size(fd.Type)
			fd.Entity = ast.NewEntity(size, instanceSize, code.OB)
			fd.Entity.Parent = classIndex
			c.addEntity(fd.Entity)
			instanceSize += size
		}
		cd.Entity = ast.NewEntity(instanceSize, code.StackBase+desc, code.SB)
		c.entities[classIndex] = cd.Entity
		desc += code.DescMethods + len(cd.InstanceMethods())

		for _, md := range cd.Methods {
			md.Entity = ast.NewEntity(types.Size(md.Type), -1, code.CB)
			md.Entity.Parent = classIndex
			c.addEntity(md.Entity)
			for i, pd := range md.Params {
				pd.Entity = ast.NewEntity(types.Size(pd.Type), -(i + 1), code.LB)
			}
		}
		glog.V(2).Infof("class %s: descriptor %s", cd.Name, cd.Entity)
	}
}

// addEntity appends an entity to the entity table and returns its index.
func (c *codegen) addEntity(e *ast.RuntimeEntity) int {
	c.entities = append(c.entities, e)
	return len(c.entities) - 1
}

// paramSize returns the number of words of arguments a method pops on
// return.
func paramSize(md *ast.MethodDecl) int {
	n := 0
	for _, pd := range md.Params {
		n += types.Size(pd.Type)
	}
	return n
}
