package value

// Instance is the general Object shape from spec §3: a class pointer and
// a slot array sized to the class's merged AllSlotNames. Proxy instances
// (opaque native handles for FFI) are out of this module's scope per
// spec §1, but the Native field is reserved so a future bridge layer can
// populate it without another struct shape.
type Instance struct {
	Class *Class
	Slots []Value
	Native interface{}
}

// NewInstance allocates an instance of class c with every slot set to Nil,
// per spec §4.2 "new — allocate an Instance with slots ... each
// initialized to Nil".
func NewInstance(c *Class) *Instance {
	slots := make([]Value, len(c.AllSlotNames))
	for i := range slots {
		slots[i] = Nil()
	}
	return &Instance{Class: c, Slots: slots}
}
