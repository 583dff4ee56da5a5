package interp

import (
	"github.com/kristofer/smog/pkg/class"
	"github.com/kristofer/smog/pkg/value"
)

// KernelClasses is the bootstrap class registry every primitive Kind
// dispatches against (spec's per-Kind simplification documented on
// Globals.ClassOf). pkg/scheduler adds Process/Semaphore/Monitor/
// SharedQueue to the same Globals after NewGlobals returns, keeping this
// package free of a dependency on the scheduler.
type KernelClasses struct {
	Object          *value.Class
	UndefinedObject *value.Class
	Boolean         *value.Class
	True            *value.Class
	False           *value.Class
	Magnitude       *value.Class
	Number          *value.Class
	Integer         *value.Class
	Float           *value.Class
	String          *value.Class
	Symbol          *value.Class
	Collection      *value.Class
	Array           *value.Class
	Table           *value.Class
	BlockClosure    *value.Class
	Class           *value.Class
	Exception       *value.Class
}

func bootstrapKernel(g *Globals) *KernelClasses {
	k := &KernelClasses{}
	k.Object = value.NewClass("Object")
	_ = class.Rebuild(k.Object)

	derive := func(name string, parent *value.Class) *value.Class {
		c, err := class.Derive(parent, name, nil)
		if err != nil {
			panic(err) // kernel bootstrap is static and must never fail
		}
		return c
	}

	k.UndefinedObject = derive("UndefinedObject", k.Object)
	k.Boolean = derive("Boolean", k.Object)
	k.True = derive("True", k.Boolean)
	k.False = derive("False", k.Boolean)
	k.Magnitude = derive("Magnitude", k.Object)
	k.Number = derive("Number", k.Magnitude)
	k.Integer = derive("Integer", k.Number)
	k.Float = derive("Float", k.Number)
	k.String = derive("String", k.Magnitude)
	k.Symbol = derive("Symbol", k.String)
	k.Collection = derive("Collection", k.Object)
	k.Array = derive("Array", k.Collection)
	k.Table = derive("Table", k.Collection)
	k.BlockClosure = derive("BlockClosure", k.Object)
	k.Class = derive("Class", k.Object)
	k.Exception = derive("Exception", k.Object)

	g.Set("Object", value.ClassValue(k.Object))
	g.Set("UndefinedObject", value.ClassValue(k.UndefinedObject))
	g.Set("Boolean", value.ClassValue(k.Boolean))
	g.Set("True", value.ClassValue(k.True))
	g.Set("False", value.ClassValue(k.False))
	g.Set("Magnitude", value.ClassValue(k.Magnitude))
	g.Set("Number", value.ClassValue(k.Number))
	g.Set("Integer", value.ClassValue(k.Integer))
	g.Set("Float", value.ClassValue(k.Float))
	g.Set("String", value.ClassValue(k.String))
	g.Set("Symbol", value.ClassValue(k.Symbol))
	g.Set("Collection", value.ClassValue(k.Collection))
	g.Set("Array", value.ClassValue(k.Array))
	g.Set("Table", value.ClassValue(k.Table))
	g.Set("BlockClosure", value.ClassValue(k.BlockClosure))
	g.Set("Class", value.ClassValue(k.Class))
	g.Set("Exception", value.ClassValue(k.Exception))

	installObjectPrimitives(k)
	installNumberPrimitives(k)
	installStringPrimitives(k)
	installCollectionPrimitives(k)
	installBlockPrimitives(k)
	installClassSidePrimitives(k)
	installExceptionPrimitives(k)

	return k
}
