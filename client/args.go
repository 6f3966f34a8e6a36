package client

import (
	"strconv"

	"github.com/relaypipe/redisasync/rediserr"
)

// formatArgv turns a command name plus typed arguments into the byte-array
// argv a command node carries. Conversion happens once, up front, rather
// than while writing to the wire, so a queued command never retains
// anything the caller could mutate afterwards.
func formatArgv(cmd string, args ...interface{}) ([][]byte, error) {
	argv := make([][]byte, 0, len(args)+1)
	argv = append(argv, []byte(cmd))
	for _, a := range args {
		b, err := toBytes(a)
		if err != nil {
			return nil, err
		}
		argv = append(argv, b)
	}
	return argv, nil
}

func toBytes(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return []byte{}, nil
	case []byte:
		return append([]byte{}, t...), nil
	case string:
		return []byte(t), nil
	case bool:
		if t {
			return []byte("1"), nil
		}
		return []byte("0"), nil
	case int:
		return strconv.AppendInt(nil, int64(t), 10), nil
	case int8:
		return strconv.AppendInt(nil, int64(t), 10), nil
	case int16:
		return strconv.AppendInt(nil, int64(t), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(t), 10), nil
	case int64:
		return strconv.AppendInt(nil, t, 10), nil
	case uint:
		return strconv.AppendUint(nil, uint64(t), 10), nil
	case uint8:
		return strconv.AppendUint(nil, uint64(t), 10), nil
	case uint16:
		return strconv.AppendUint(nil, uint64(t), 10), nil
	case uint32:
		return strconv.AppendUint(nil, uint64(t), 10), nil
	case uint64:
		return strconv.AppendUint(nil, t, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(t), 'f', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, t, 'f', -1, 64), nil
	default:
		return nil, rediserr.InvalidRequest.New("unsupported argument type %T", v)
	}
}
