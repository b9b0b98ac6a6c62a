package alloc_test

import (
	"errors"
	"fmt"

	"github.com/joshuapare/memkit/alloc"
)

func ExampleLinearAllocator() {
	la, err := alloc.NewLinear(256, nil)
	if err != nil {
		panic(err)
	}
	defer la.Close()

	a, _, _ := la.Allocate(100, 8)
	b, _, _ := la.Allocate(100, 16)
	_, _, err = la.Allocate(100, 16)

	fmt.Println(a, b, la.Used())
	fmt.Println(errors.Is(err, alloc.ErrOutOfMemory))
	// Output:
	// 0 112 212
	// true
}

func ExamplePoolAllocator() {
	p, err := alloc.NewPool(64, 10, nil)
	if err != nil {
		panic(err)
	}
	defer p.Close()

	first, _, _ := p.Allocate()
	second, _, _ := p.Allocate()
	p.Deallocate(first)
	reused, _, _ := p.Allocate()

	fmt.Println(first, second, reused, p.UsedBlocks())
	// Output: 0 64 0 2
}

func ExampleFreeListAllocator() {
	fl, err := alloc.NewFreeList(1024, nil)
	if err != nil {
		panic(err)
	}
	defer fl.Close()

	a, _, _ := fl.Allocate(128, 16)
	b, _, _ := fl.Allocate(256, 16)
	fl.Deallocate(a)
	fl.Deallocate(b)
	c, _, _ := fl.Allocate(384, 16)

	fmt.Println(a, b, c, len(fl.FreeBlocks()))
	// Output: 16 160 16 1
}
