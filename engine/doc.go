// Package engine hosts a foreign component inside wazero.
//
// The foreign component is a core WebAssembly module that owns resources
// and hands out i32 handles. It must export two functions and may export
// two more:
//
//	open() -> i32           issue a handle, 0 when out of handles
//	release(i32)            free a handle; unknown or released handles are ignored
//	live() -> i32           number of live handles (optional)
//	alive(i32) -> i32       1 if the handle is live, else 0 (optional)
//
// Export names are configurable through ABI. When no guest is supplied the
// engine uses an embedded module implementing exactly this contract, with
// room for GuestCapacity handles per family. Handles are never reused.
//
// # Families
//
// Each resource family gets its own module instance, so families have
// independent handle spaces:
//
//	eng, err := engine.New(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer eng.Close(ctx)
//
//	wallets, err := eng.Family(ctx, "wallet")
//	h, err := wallets.Open(ctx)
//
// *Family implements handleguard.Releaser, so it can be passed straight to
// Guard.Install.
//
// # Thread Safety
//
// wazero module instances are not safe for concurrent calls. Family
// serializes every call with a mutex because explicit releases and
// automatic releases from the runtime cleanup goroutine may overlap.
//
// # Failures
//
// ReleaseHandle never reports errors. A trap or a call on a closed family is
// logged through Logger and otherwise ignored.
package engine
