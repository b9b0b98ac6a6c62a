package alloc

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/modern-go/reflect2"
)

// Bind points *ptr at the first byte of payload so a struct can be placed
// inside an allocation. ptr must be a non-nil **T. T must not contain Go
// pointers, since the collector does not scan allocator regions.
//
//	ref, payload, err := la.Allocate(int(unsafe.Sizeof(header{})), 0)
//	var h *header
//	alloc.Bind(payload, &h)
//	h.count = 1
//
// Bind panics when payload is too small or misaligned for T.
func Bind(payload []byte, ptr any) {
	typ := reflect2.TypeOf(ptr)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Type1().Elem().Kind() != reflect.Ptr {
		panic(fmt.Sprintf("alloc: Bind needs a **T, got %v", typ))
	}
	if reflect2.IsNil(ptr) {
		panic("alloc: Bind on nil pointer")
	}
	elem := typ.Type1().Elem().Elem()
	if !pointerFree(elem) {
		panic(fmt.Sprintf("alloc: Bind target %v contains Go pointers", elem))
	}
	if uintptr(len(payload)) < elem.Size() {
		panic(fmt.Sprintf("alloc: payload of %d bytes is smaller than %v (%d bytes)", len(payload), elem, elem.Size()))
	}

	addr := unsafe.Pointer(unsafe.SliceData(payload))
	if uintptr(addr)%uintptr(elem.Align()) != 0 {
		panic(fmt.Sprintf("alloc: payload at %#x is not %d-aligned for %v", uintptr(addr), elem.Align(), elem))
	}
	*(*unsafe.Pointer)(reflect2.PtrOf(ptr)) = addr
}

// Place is the typed form of Bind.
func Place[T any](payload []byte) *T {
	var p *T
	Bind(payload, &p)
	return p
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
