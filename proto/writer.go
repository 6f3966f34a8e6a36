package proto

import "strconv"

// appendRequest formats one command as a RESP array of bulk strings. argv
// elements are already []byte: argument bytes are copied at enqueue time,
// so there is no interface{} type switch here. Package client converts
// typed arguments before a node is ever built.
func appendRequest(buf []byte, argv [][]byte) []byte {
	buf = appendHead(buf, '*', int64(len(argv)))
	for _, arg := range argv {
		buf = appendHead(buf, '$', int64(len(arg)))
		buf = append(buf, arg...)
		buf = append(buf, '\r', '\n')
	}
	return buf
}

func appendHead(b []byte, t byte, i int64) []byte {
	b = append(b, t)
	b = strconv.AppendInt(b, i, 10)
	return append(b, '\r', '\n')
}
