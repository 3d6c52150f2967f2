package interp

import (
	"fmt"

	"github.com/pkg/errors"

	"gsymbex/internal/constraint"
	"gsymbex/internal/core"
)

// DefaultMaxLength bounds arrays allocated by a SimpleHeap.
const DefaultMaxLength = 1 << 16

// Heap allocates arrays. Resize changes the length of an existing array
// in place, keeping its identity.
type Heap interface {
	NewArray(elem constraint.Type, length int) (*Array, error)
	Resize(a *Array, length int) error
}

// Array is a primitive array. Elements are constraint terms.
type Array struct {
	id     int
	elem   constraint.Type
	values []Value
}

func (a *Array) ID() int {
	return a.id
}

func (a *Array) ElementType() constraint.Type {
	return a.elem
}

func (a *Array) Length() int {
	return len(a.values)
}

func (a *Array) Load(index int) (Value, error) {
	if index < 0 || index >= len(a.values) {
		return nil, errors.Errorf("array index %d out of bounds for length %d", index, len(a.values))
	}
	return a.values[index], nil
}

func (a *Array) Store(index int, v Value) error {
	if index < 0 || index >= len(a.values) {
		return errors.Errorf("array index %d out of bounds for length %d", index, len(a.values))
	}
	a.values[index] = v
	return nil
}

// Values returns a copy of the contents.
func (a *Array) Values() []Value {
	result := make([]Value, len(a.values))
	copy(result, a.values)
	return result
}

// resize reuses the backing storage when it is large enough.
func (a *Array) resize(length int) {
	if length <= cap(a.values) {
		tail := a.values[length:cap(a.values)]
		for i := range tail {
			tail[i] = nil
		}
		a.values = a.values[:length]
		return
	}
	values := make([]Value, length)
	copy(values, a.values)
	a.values = values
}

// Replace sets length and contents at once.
func (a *Array) Replace(values []Value) {
	a.values = append(a.values[:0], values...)
}

func (a *Array) String() string {
	return fmt.Sprintf("%s[%d]#%d", a.elem, len(a.values), a.id)
}

// Object is an instance with named fields.
type Object struct {
	class  string
	fields map[string]Value
}

func NewObject(class string) *Object {
	return &Object{class: class, fields: make(map[string]Value)}
}

func (o *Object) Class() string {
	return o.class
}

func (o *Object) Field(name string) (Value, bool) {
	v, ok := o.fields[name]
	return v, ok
}

func (o *Object) SetField(name string, v Value) {
	o.fields[name] = v
}

func (o *Object) ClearField(name string) {
	delete(o.fields, name)
}

// SimpleHeap hands out arrays with increasing ids.
type SimpleHeap struct {
	allocated int
	// MaxLength bounds a single allocation, DefaultMaxLength when zero
	MaxLength int
}

func NewSimpleHeap() *SimpleHeap {
	return &SimpleHeap{}
}

func (h *SimpleHeap) NewArray(elem constraint.Type, length int) (*Array, error) {
	if err := h.check(elem, length); err != nil {
		return nil, err
	}
	h.allocated++
	return &Array{id: h.allocated, elem: elem, values: make([]Value, length)}, nil
}

func (h *SimpleHeap) Resize(a *Array, length int) error {
	if err := h.check(a.elem, length); err != nil {
		return err
	}
	a.resize(length)
	return nil
}

func (h *SimpleHeap) Allocated() int {
	return h.allocated
}

func (h *SimpleHeap) check(elem constraint.Type, length int) error {
	max := h.MaxLength
	if max == 0 {
		max = DefaultMaxLength
	}
	if length < 0 {
		return errors.Errorf("negative array length %d", length)
	}
	if length > max {
		return errors.Wrapf(core.ErrCannotModel, "%s array of length %d exceeds heap limit %d", elem, length, max)
	}
	return nil
}
