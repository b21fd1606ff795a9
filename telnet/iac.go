package telnet

// Telnet command bytes used by the negotiator.
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
)

// IsCommand reports whether chunk opens with a command sequence. A doubled
// IAC is escaped data, not a command.
func IsCommand(chunk []byte) bool {
	if len(chunk) == 0 || chunk[0] != IAC {
		return false
	}
	return len(chunk) == 1 || chunk[1] != IAC
}

// Negotiate splits the leading run of IAC triplets off chunk and builds the
// reply for it. Every DO is refused with WONT and every WILL is answered with
// DO; option bytes are echoed unchanged. ok is false when chunk does not open
// with a command, in which case payload is chunk itself.
//
// Negotiate keeps no state between calls.
func Negotiate(chunk []byte) (reply, payload []byte, ok bool) {
	if !IsCommand(chunk) {
		return nil, chunk, false
	}
	n := 0
	for n < len(chunk) && chunk[n] == IAC {
		n += 3
	}
	if n > len(chunk) {
		n = len(chunk)
	}
	reply = make([]byte, n)
	copy(reply, chunk[:n])
	for i := 1; i < n; i += 3 {
		switch reply[i] {
		case DO:
			reply[i] = WONT
		case WILL:
			reply[i] = DO
		}
	}
	return reply, chunk[n:], true
}
