// Package callbacks encodes and decodes inline button callback data.
//
// Callback data travels as "key|payload". The key selects the handler,
// the payload carries an optional argument such as a record id. Both
// parts together must stay within Telegram's 64-byte limit.
package callbacks

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	sep = "|"
	// maxDataLen is Telegram's callback_data size limit.
	maxDataLen = 64
)

// Encode joins a handler key and payload into wire form.
func Encode(key, payload string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("callbacks: empty key")
	}
	if strings.Contains(key, sep) {
		return "", fmt.Errorf("callbacks: key %q contains separator", key)
	}
	data := key
	if payload != "" {
		data = key + sep + payload
	}
	if len(data) > maxDataLen {
		return "", fmt.Errorf("callbacks: data %q exceeds %d bytes", data, maxDataLen)
	}
	return data, nil
}

// EncodeID is Encode with a numeric payload.
func EncodeID(key string, id int64) (string, error) {
	return Encode(key, strconv.FormatInt(id, 10))
}

// MustEncode panics on encoding errors. Use for static button wiring
// where the key and payload are compile-time constants.
func MustEncode(key, payload string) string {
	data, err := Encode(key, payload)
	if err != nil {
		panic(err)
	}
	return data
}

// Decode splits wire form back into key and payload.
func Decode(data string) (key, payload string) {
	data = strings.TrimPrefix(data, "\f")
	idx := strings.Index(data, sep)
	if idx < 0 {
		return data, ""
	}
	return data[:idx], data[idx+1:]
}

// DecodeID decodes the payload as an int64 id.
func DecodeID(data string) (key string, id int64, err error) {
	key, payload := Decode(data)
	if payload == "" {
		return key, 0, fmt.Errorf("callbacks: %q has no id payload", key)
	}
	id, err = strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return key, 0, fmt.Errorf("callbacks: %q has non-numeric payload %q", key, payload)
	}
	return key, id, nil
}
