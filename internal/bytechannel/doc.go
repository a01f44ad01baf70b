// Package bytechannel provides Channel, a buffered duplex byte stream over one
// OS descriptor.
//
// Channels back named files opened in one of four logical modes and adopted
// descriptors such as the standard streams. Reads fill through a read-ahead
// buffer, writes collect in a write buffer until Flush, and positioning calls
// keep both buffers coherent with the descriptor offset.
package bytechannel
