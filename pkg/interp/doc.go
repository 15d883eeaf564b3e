// Package interp implements the line protocol of the signal generator.
//
// A line is interpreted by position: byte 0 is the action, byte 1 the
// sub-target and the remaining bytes the parameter.
//
//	F0<uint>   set frequency register 0 (Hz)
//	F1<uint>   set frequency register 1 (Hz)
//	P0<uint>   set phase register 0 (0-4095)
//	P1<uint>   set phase register 1 (0-4095)
//	SF0, SF1   select the active frequency register
//	SP0, SP1   select the active phase register
//	WS, WT     sine or triangle output
//	?, H       help
//
// Letters are case-insensitive. Lines end with '\n' or '\r' and keep
// at most 31 characters; the rest of an over-long line is dropped.
//
// Numeric parameters are parsed leniently: "F0abc" sets 0 Hz rather than
// failing. This is the established behavior of the protocol and clients
// rely on it.
package interp
