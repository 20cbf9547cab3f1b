// Package encoding provides text encoding utilities for RX3 name strings.
//
// Names in RX3 files are plain bytes. Most are ASCII, but
// older containers carry Windows-1252 accents in player and stadium names.
package encoding

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ToUTF8 returns data as a UTF-8 string. Valid UTF-8 is kept as is;
// anything else is decoded as Windows-1252.
func ToUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	result, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// ToLegacy encodes s as Windows-1252. Strings that cannot be represented are
// returned as their UTF-8 bytes.
func ToLegacy(s string) []byte {
	result, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}
