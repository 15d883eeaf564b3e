// Package device models the addressable state of an AD9834 DDS chip:
// two frequency registers, two 12-bit phase registers, the active
// selection of each pair and the waveform mode.
//
// The model performs no I/O. Pushing values to hardware is done by
// implementations of driver.Driver, persistence by store.Store.
package device
