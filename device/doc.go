// Package device gives Go programs typed access to the shared-memory
// devices a Modbus simulation server publishes: the four addressable
// memory regions (coils, discrete inputs, input registers, holding
// registers), the device control block and the scripting-client
// heartbeat.
//
// A device is attached by its segment name prefix:
//
//	dev, err := device.Open("proj1.plc", device.WithDir("/dev/shm"))
//	if err != nil {
//		...
//	}
//	defer dev.Close()
//
//	pressure := dev.HoldingRegisters().Float32(10)
//	dev.Coils().SetBit(3, true)
//
// Multi-register values honor the device's configured byte order and
// register order. Out-of-range access follows the server's clamp policy:
// reads return zero values and writes are dropped, except for the strict
// At/SetAt accessors, which report out-of-range indexes. Devices are safe
// for concurrent use; every raw memory access happens under the owning
// segment's lock, which is shared with the server process.
package device
