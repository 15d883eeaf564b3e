package device

// State is the JSON form of Settings published to clients.
type State struct {
	Freq0       uint32 `json:"freq0"`
	Freq1       uint32 `json:"freq1"`
	Phase0      uint16 `json:"phase0"`
	Phase1      uint16 `json:"phase1"`
	ActiveFreq  uint8  `json:"activeFreq"`
	ActivePhase uint8  `json:"activePhase"`
	Waveform    string `json:"waveform"`
}

// NewState converts Settings to State.
func NewState(s Settings) State {
	return State{
		Freq0:       s.Freq[0],
		Freq1:       s.Freq[1],
		Phase0:      s.Phase[0],
		Phase1:      s.Phase[1],
		ActiveFreq:  uint8(s.ActiveFreq),
		ActivePhase: uint8(s.ActivePhase),
		Waveform:    s.Mode.String(),
	}
}
