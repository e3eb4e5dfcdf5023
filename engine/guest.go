package engine

import "slices"

// GuestCapacity is the number of handles the embedded guest can issue per
// family. Handle 0 is reserved.
const GuestCapacity = 16383

// guestModule is a hand-assembled core module. Memory holds one i32 slot per
// handle at offset h*4 (1 = live). Global 0 is the next handle, global 1 the
// live count.
var guestModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version

	// Type section: 0 () -> i32, 1 (i32) -> (), 2 (i32) -> i32
	0x01, 0x0e, 0x03,
	0x60, 0x00, 0x01, 0x7f,
	0x60, 0x01, 0x7f, 0x00,
	0x60, 0x01, 0x7f, 0x01, 0x7f,

	// Function section: open t0, release t1, live t0, alive t2
	0x03, 0x05, 0x04, 0x00, 0x01, 0x00, 0x02,

	// Memory section: one page, no maximum
	0x05, 0x03, 0x01, 0x00, 0x01,

	// Global section: next = 1, live = 0 (both mutable i32)
	0x06, 0x0b, 0x02,
	0x7f, 0x01, 0x41, 0x01, 0x0b,
	0x7f, 0x01, 0x41, 0x00, 0x0b,

	// Export section
	0x07, 0x21, 0x04,
	0x04, 'o', 'p', 'e', 'n', 0x00, 0x00,
	0x07, 'r', 'e', 'l', 'e', 'a', 's', 'e', 0x00, 0x01,
	0x04, 'l', 'i', 'v', 'e', 0x00, 0x02,
	0x05, 'a', 'l', 'i', 'v', 'e', 0x00, 0x03,

	// Code section
	0x0a, 0x71, 0x04,

	// open: if next >= 16384 return 0; mem[next*4] = 1; live++; return next++
	0x29, 0x00,
	0x23, 0x00,             // global.get next
	0x41, 0x80, 0x80, 0x01, // i32.const 16384
	0x4f,                   // i32.ge_u
	0x04, 0x40,             // if
	0x41, 0x00,             // i32.const 0
	0x0f,                   // return
	0x0b,                   // end
	0x23, 0x00,             // global.get next
	0x41, 0x02,             // i32.const 2
	0x74,                   // i32.shl
	0x41, 0x01,             // i32.const 1
	0x36, 0x02, 0x00,       // i32.store
	0x23, 0x01,             // global.get live
	0x41, 0x01,             // i32.const 1
	0x6a,                   // i32.add
	0x24, 0x01,             // global.set live
	0x23, 0x00,             // global.get next (result)
	0x23, 0x00,             // global.get next
	0x41, 0x01,             // i32.const 1
	0x6a,                   // i32.add
	0x24, 0x00,             // global.set next
	0x0b,

	// release(h): if h < 16384 && mem[h*4] != 0 { mem[h*4] = 0; live-- }
	0x28, 0x00,
	0x20, 0x00,             // local.get h
	0x41, 0x80, 0x80, 0x01, // i32.const 16384
	0x49,                   // i32.lt_u
	0x04, 0x40,             // if
	0x20, 0x00,             // local.get h
	0x41, 0x02,             // i32.const 2
	0x74,                   // i32.shl
	0x28, 0x02, 0x00,       // i32.load
	0x04, 0x40,             // if
	0x20, 0x00,             // local.get h
	0x41, 0x02,             // i32.const 2
	0x74,                   // i32.shl
	0x41, 0x00,             // i32.const 0
	0x36, 0x02, 0x00,       // i32.store
	0x23, 0x01,             // global.get live
	0x41, 0x01,             // i32.const 1
	0x6b,                   // i32.sub
	0x24, 0x01,             // global.set live
	0x0b,                   // end
	0x0b,                   // end
	0x0b,

	// live() -> live
	0x04, 0x00, 0x23, 0x01, 0x0b,

	// alive(h): h < 16384 ? mem[h*4] : 0
	0x17, 0x00,
	0x20, 0x00,             // local.get h
	0x41, 0x80, 0x80, 0x01, // i32.const 16384
	0x49,                   // i32.lt_u
	0x04, 0x7f,             // if (result i32)
	0x20, 0x00,             // local.get h
	0x41, 0x02,             // i32.const 2
	0x74,                   // i32.shl
	0x28, 0x02, 0x00,       // i32.load
	0x05,                   // else
	0x41, 0x00,             // i32.const 0
	0x0b,                   // end
	0x0b,
}

// GuestModule returns a copy of the embedded guest binary.
func GuestModule() []byte {
	return slices.Clone(guestModule)
}
