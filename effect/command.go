// SPDX-License-Identifier: EPL-2.0

package effect

import (
	"fmt"

	"github.com/ik5/ddpfx/settings"
)

// Command is a control command code.
type Command uint32

const (
	CmdInit         Command = 0
	CmdSetConfig    Command = 1
	CmdReset        Command = 2
	CmdEnable       Command = 3
	CmdDisable      Command = 4
	CmdSetParam     Command = 5
	CmdGetParam     Command = 8
	CmdSetDevice    Command = 9
	CmdSetVolume    Command = 10
	CmdSetAudioMode Command = 11
	CmdGetConfig    Command = 14

	// vendor commands
	CmdSetPregain Command = 0x10000
	CmdSetBypass  Command = 0x10001
)

func (c Command) String() string {
	switch c {
	case CmdInit:
		return "init"
	case CmdSetConfig:
		return "set_config"
	case CmdReset:
		return "reset"
	case CmdEnable:
		return "enable"
	case CmdDisable:
		return "disable"
	case CmdSetParam:
		return "set_param"
	case CmdGetParam:
		return "get_param"
	case CmdSetDevice:
		return "set_device"
	case CmdSetVolume:
		return "set_volume"
	case CmdSetAudioMode:
		return "set_audio_mode"
	case CmdGetConfig:
		return "get_config"
	case CmdSetPregain:
		return "set_pregain"
	case CmdSetBypass:
		return "set_bypass"
	}
	return fmt.Sprintf("command(%#x)", uint32(c))
}

// statusSize is the size of an int32 status reply.
const statusSize = 4

func status(err error) []byte {
	return le.AppendUint32(nil, uint32(Status(err)))
}

func badCommand(c Command, format string, args ...any) error {
	return fmt.Errorf("%w: %v: %s", ErrInvalidArgument, c, fmt.Sprintf(format, args...))
}

// Command runs one control command. replySize is the size of the reply
// buffer the caller offers; commands with a fixed reply reject any other
// size. A non-nil error means the command was refused outright. Commands
// that reply with a status report their own failures in the reply.
func (e *Effect) Command(c Command, payload []byte, replySize int) ([]byte, error) {
	e.log.Debug("command", "cmd", c, "size", len(payload), "reply_size", replySize)

	switch c {
	case CmdInit:
		if replySize != statusSize {
			return nil, badCommand(c, "reply size %d", replySize)
		}
		return status(nil), nil

	case CmdSetConfig:
		if len(payload) != ConfigSize || replySize != statusSize {
			return nil, badCommand(c, "size %d, reply size %d", len(payload), replySize)
		}
		var cfg Config
		if err := cfg.UnmarshalBinary(payload); err != nil {
			return nil, invalid(err)
		}
		return status(e.SetConfig(cfg)), nil

	case CmdGetConfig:
		if replySize != ConfigSize {
			return nil, badCommand(c, "reply size %d", replySize)
		}
		return e.cfg.MarshalBinary()

	case CmdReset:
		if err := e.Reset(); err != nil {
			e.log.Warn("reset failed", "error", err)
		}
		return nil, nil

	case CmdEnable, CmdDisable:
		if replySize != statusSize {
			return nil, badCommand(c, "reply size %d", replySize)
		}
		if c == CmdEnable {
			e.Enable()
		} else {
			e.Disable()
		}
		return status(nil), nil

	case CmdSetParam:
		if replySize != statusSize {
			return nil, badCommand(c, "reply size %d", replySize)
		}
		h, err := decodeParamHeader(payload)
		if err != nil {
			return nil, invalid(err)
		}
		if h.psize != 4 {
			return nil, badCommand(c, "key size %d", h.psize)
		}
		if len(payload) < h.valueOffset+h.vsize {
			return nil, badCommand(c, "value of %d bytes truncated", h.vsize)
		}

		id := ParamID(int32(le.Uint32(payload[paramHeaderSize:])))
		m, err := decodeParam(id, payload[h.valueOffset:h.valueOffset+h.vsize], e.store.Cache().Width())
		if err != nil {
			e.log.Warn("bad parameter", "param", id, "error", err)
			return status(invalid(err)), nil
		}
		err = e.SetParam(m)
		if err != nil {
			e.log.Warn("set parameter failed", "param", id, "error", err)
		}
		return status(err), nil

	case CmdGetParam:
		if replySize < paramHeaderSize+4 {
			return nil, badCommand(c, "reply size %d", replySize)
		}
		h, err := decodeParamHeader(payload)
		if err != nil {
			return nil, invalid(err)
		}
		if len(payload) < paramHeaderSize+h.psize {
			return nil, badCommand(c, "key of %d bytes truncated", h.psize)
		}

		id := ParamID(int32(le.Uint32(payload[paramHeaderSize:])))
		value, err := e.GetParam(id, h.vsize)
		if err != nil {
			e.log.Warn("get parameter failed", "param", id, "error", err)
			value = nil
		}

		reply := make([]byte, 0, h.valueOffset+len(value))
		reply = le.AppendUint32(reply, uint32(Status(err)))
		reply = le.AppendUint32(reply, uint32(h.psize))
		reply = le.AppendUint32(reply, uint32(len(value)))
		reply = append(reply, payload[paramHeaderSize:paramHeaderSize+h.psize]...)
		reply = append(reply, make([]byte, h.valueOffset-len(reply))...)
		return append(reply, value...), nil

	case CmdSetDevice:
		if len(payload) < 4 {
			return nil, badCommand(c, "size %d", len(payload))
		}
		d := settings.Device(int32(le.Uint32(payload)))
		if err := e.SetDevice(d); err != nil {
			e.log.Warn("device change failed", "device", d, "error", err)
		}
		return nil, nil

	case CmdSetVolume, CmdSetPregain:
		if len(payload) < 8 {
			return nil, badCommand(c, "size %d", len(payload))
		}
		l, r := le.Uint32(payload), le.Uint32(payload[4:])

		var err error
		if c == CmdSetVolume {
			err = e.SetVolume(l, r)
		} else {
			err = e.SetPregain(l, r)
		}
		if err != nil {
			e.log.Warn("gain not applied", "cmd", c, "error", err)
		}

		// the reply echoes the volumes
		if replySize < 8 {
			return nil, nil
		}
		return append([]byte(nil), payload[:8]...), nil

	case CmdSetAudioMode:
		if len(payload) < 4 {
			return nil, badCommand(c, "size %d", len(payload))
		}
		e.SetAudioMode(int32(le.Uint32(payload)))
		return nil, nil

	case CmdSetBypass:
		if len(payload) < 8 {
			return nil, badCommand(c, "size %d", len(payload))
		}
		e.SetBypass(le.Uint32(payload) != 0, le.Uint32(payload[4:]) != 0)
		return nil, nil
	}

	return nil, badCommand(c, "unknown command")
}
