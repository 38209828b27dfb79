package engine

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

const (
	triggerPing       = 0x27 // '
	triggerPong       = 'Q'
	triggerBinaryMode = 0x5C // \
	TriggerPulse      = 5 * time.Millisecond
)

var errNoPong = errors.New("trigger box did not answer ping")

// unsetKeys maps an output line to the command that clears it.
var unsetKeys = map[byte]byte{
	'1': 'Q', '2': 'W', '3': 'E', '4': 'R',
	'5': 'T', '6': 'Y', '7': 'U', '8': 'I',
}

// TriggerBox drives the output lines of a DLP-IO8-G USB data acquisition
// module, used to mark stimulus onsets for EEG or photodiode recordings.
type TriggerBox struct {
	port io.ReadWriteCloser
}

// OpenTriggerBox opens the serial device and switches the module to
// binary mode.
func OpenTriggerBox(device string, baudrate int) (*TriggerBox, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open trigger box %s: %w", device, err)
	}
	return NewTriggerBox(port)
}

// NewTriggerBox initialises a module connected through port. The port is
// closed if the module does not respond.
func NewTriggerBox(port io.ReadWriteCloser) (*TriggerBox, error) {
	t := &TriggerBox{port: port}

	if !t.Ping() {
		port.Close()
		return nil, errNoPong
	}
	if _, err := port.Write([]byte{triggerBinaryMode}); err != nil {
		port.Close()
		return nil, err
	}
	return t, nil
}

func (t *TriggerBox) Ping() bool {
	if _, err := t.port.Write([]byte{triggerPing}); err != nil {
		return false
	}

	buf := make([]byte, 1)
	n, err := t.port.Read(buf)
	return err == nil && n == 1 && buf[0] == triggerPong
}

// Set raises the given lines, e.g. "13" for lines 1 and 3.
func (t *TriggerBox) Set(lines string) error {
	if _, err := t.port.Write([]byte(lines)); err != nil {
		return fmt.Errorf("trigger set %s: %w", lines, err)
	}
	return nil
}

// Unset lowers the given lines.
func (t *TriggerBox) Unset(lines string) error {
	cmd := []byte(lines)
	for i := range cmd {
		if k, ok := unsetKeys[cmd[i]]; ok {
			cmd[i] = k
		}
	}
	if _, err := t.port.Write(cmd); err != nil {
		return fmt.Errorf("trigger unset %s: %w", lines, err)
	}
	return nil
}

// Pulse raises lines for d, then lowers them.
func (t *TriggerBox) Pulse(lines string, d time.Duration) error {
	if err := t.Set(lines); err != nil {
		return err
	}
	time.Sleep(d)
	return t.Unset(lines)
}

func (t *TriggerBox) Close() error {
	if t.port == nil {
		return nil
	}
	return t.port.Close()
}
