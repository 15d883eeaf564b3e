package interp

// Response lines.
const (
	MsgSaved              = "Settings saved"
	MsgLoaded             = "Settings loaded"
	MsgUnknownCommand     = "Unknown command. Type ? for help."
	MsgInvalidFreqReg     = "Invalid frequency register. Use F0 or F1."
	MsgInvalidPhaseReg    = "Invalid phase register. Use P0 or P1."
	MsgPhaseRange         = "Phase value must be 0-4095"
	MsgInvalidSelectFreq  = "Invalid register. Use SF0 or SF1."
	MsgInvalidSelectPhase = "Invalid register. Use SP0 or SP1."
	MsgInvalidSelection   = "Invalid selection command. Use SF or SP."
	MsgInvalidWaveform    = "Invalid waveform. Use WS (sine) or WT (triangle)."
)

var helpLines = []string{
	"",
	"--- AD9834 Signal Generator Commands ---",
	"F0xxxxx  - Set Frequency 0 (in Hz)",
	"F1xxxxx  - Set Frequency 1 (in Hz)",
	"P0xxxx   - Set Phase 0 (0-4095)",
	"P1xxxx   - Set Phase 1 (0-4095)",
	"SF0      - Select Frequency Register 0",
	"SF1      - Select Frequency Register 1",
	"SP0      - Select Phase Register 0",
	"SP1      - Select Phase Register 1",
	"WS       - Set Waveform to Sine",
	"WT       - Set Waveform to Triangle",
	"?/H      - Show this help",
	"----------------------------------------",
}

// HelpLines returns the help text.
func HelpLines() []string {
	return append([]string(nil), helpLines...)
}

// BannerLines returns the greeting printed when a session starts,
// including the help text.
func BannerLines() []string {
	return append([]string{
		"",
		"AD9834 Signal Generator",
		"Based on 75MHz reference clock",
	}, helpLines...)
}
