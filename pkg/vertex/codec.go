package vertex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// ErrShortAttribute is returned when fewer bytes remain than the type needs.
var ErrShortAttribute = errors.New("vertex: attribute data too short")

// Lanes is a decoded attribute. Components absent from the encoding default
// to 0, and to 1 for the fourth lane.
type Lanes [4]float32

type decodeFunc func(b []byte, o binary.ByteOrder) Lanes

var decoders = [numTypes]decodeFunc{
	Type1F32: func(b []byte, o binary.ByteOrder) Lanes { return Lanes{f32(b, o, 0), 0, 0, 1} },
	Type1S32: func(b []byte, o binary.ByteOrder) Lanes { return Lanes{s32(b, o, 0), 0, 0, 1} },
	Type1S16: func(b []byte, o binary.ByteOrder) Lanes { return Lanes{s16(b, o, 0), 0, 0, 1} },
	Type1S8:  func(b []byte, o binary.ByteOrder) Lanes { return Lanes{s8(b, 0), 0, 0, 1} },

	Type2F32: func(b []byte, o binary.ByteOrder) Lanes { return Lanes{f32(b, o, 0), f32(b, o, 1), 0, 1} },
	Type2S32: func(b []byte, o binary.ByteOrder) Lanes { return Lanes{s32(b, o, 0), s32(b, o, 1), 0, 1} },
	Type2S16: func(b []byte, o binary.ByteOrder) Lanes { return Lanes{s16(b, o, 0), s16(b, o, 1), 0, 1} },
	Type2S8:  func(b []byte, o binary.ByteOrder) Lanes { return Lanes{s8(b, 0), s8(b, 1), 0, 1} },

	Type3F32: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{f32(b, o, 0), f32(b, o, 1), f32(b, o, 2), 1}
	},
	Type3S32: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{s32(b, o, 0), s32(b, o, 1), s32(b, o, 2), 1}
	},
	Type3S16: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{s16(b, o, 0), s16(b, o, 1), s16(b, o, 2), 1}
	},
	Type3S8: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{s8(b, 0), s8(b, 1), s8(b, 2), 1}
	},

	Type4F32: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{f32(b, o, 0), f32(b, o, 1), f32(b, o, 2), f32(b, o, 3)}
	},
	Type4S32: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{s32(b, o, 0), s32(b, o, 1), s32(b, o, 2), s32(b, o, 3)}
	},
	Type4S16: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{s16(b, o, 0), s16(b, o, 1), s16(b, o, 2), s16(b, o, 3)}
	},
	Type4S8: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{s8(b, 0), s8(b, 1), s8(b, 2), s8(b, 3)}
	},

	Type4U8:  func(b []byte, _ binary.ByteOrder) Lanes { return bytes4(b, 1) },
	Type4U8N: func(b []byte, _ binary.ByteOrder) Lanes { return bytes4(b, 255) },
	Type4U8EndianSwap: func(b []byte, _ binary.ByteOrder) Lanes {
		return Lanes{float32(b[3]), float32(b[2]), float32(b[1]), float32(b[0])}
	},
	Type4U8NEndianSwap: func(b []byte, _ binary.ByteOrder) Lanes {
		return Lanes{float32(b[3]) / 255, float32(b[2]) / 255, float32(b[1]) / 255, float32(b[0]) / 255}
	},

	Type3U10: func(b []byte, o binary.ByteOrder) Lanes {
		p := o.Uint32(b)
		return Lanes{
			float32(p&0x3FF) / 1023,
			float32(p>>10&0x3FF) / 1023,
			float32(p>>20&0x3FF) / 1023,
			1,
		}
	},
	Type3S10N: func(b []byte, o binary.ByteOrder) Lanes {
		p := o.Uint32(b)
		return Lanes{
			unpack10(signExtend(p, 0, 10)),
			unpack10(signExtend(p, 10, 10)),
			unpack10(signExtend(p, 20, 10)),
			1,
		}
	},
	Type3S11N: func(b []byte, o binary.ByteOrder) Lanes {
		p := o.Uint32(b)
		return Lanes{
			unpack11(signExtend(p, 0, 11)),
			unpack11(signExtend(p, 11, 11)),
			unpack10(signExtend(p, 22, 10)),
			1,
		}
	},

	Type2F16: func(b []byte, o binary.ByteOrder) Lanes { return Lanes{f16(b, o, 0), f16(b, o, 1), 0, 1} },
	Type4F16: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{f16(b, o, 0), f16(b, o, 1), f16(b, o, 2), f16(b, o, 3)}
	},

	Type2S16S: func(b []byte, o binary.ByteOrder) Lanes { return Lanes{s16(b, o, 0), s16(b, o, 1), 0, 1} },
	Type3S16S: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{s16(b, o, 0), s16(b, o, 1), s16(b, o, 2), 1}
	},

	Type1U16RGB565: func(b []byte, o binary.ByteOrder) Lanes {
		p := o.Uint16(b)
		return Lanes{float32(p>>11&0x1F) / 31, float32(p>>5&0x3F) / 63, float32(p&0x1F) / 31, 1}
	},
	Type1U16RGBA4: func(b []byte, o binary.ByteOrder) Lanes {
		p := o.Uint16(b)
		return Lanes{
			float32(p>>12&0xF) / 15,
			float32(p>>8&0xF) / 15,
			float32(p>>4&0xF) / 15,
			float32(p&0xF) / 15,
		}
	},
	Type3U8RGB8: func(b []byte, _ binary.ByteOrder) Lanes {
		return Lanes{float32(b[0]), float32(b[1]), float32(b[2]), 1}
	},
	Type4U8RGBX8: func(b []byte, _ binary.ByteOrder) Lanes {
		return Lanes{float32(b[0]), float32(b[1]), float32(b[2]), 1}
	},
	Type3U8RGBA6: func(b []byte, _ binary.ByteOrder) Lanes {
		return Lanes{float32(b[0]) / 63, float32(b[1]) / 63, float32(b[2]) / 63, 1}
	},
	Type4U8RGBA8: func(b []byte, _ binary.ByteOrder) Lanes { return bytes4(b, 255) },

	Type2U16: func(b []byte, o binary.ByteOrder) Lanes { return Lanes{u16(b, o, 0), u16(b, o, 1), 0, 1} },
	Type4U16: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{u16(b, o, 0), u16(b, o, 1), u16(b, o, 2), u16(b, o, 3)}
	},
	Type2U16N: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{u16(b, o, 0) / 65535, u16(b, o, 1) / 65535, 0, 1}
	},
	Type4U16N: func(b []byte, o binary.ByteOrder) Lanes {
		return Lanes{u16(b, o, 0) / 65535, u16(b, o, 1) / 65535, u16(b, o, 2) / 65535, u16(b, o, 3) / 65535}
	},
}

// Supported reports whether t has a decoder. Unsupported types decode to
// zero lanes.
func Supported(t DataType) bool {
	return t < numTypes && decoders[t] != nil
}

// Decode unpacks one attribute of type t from the start of data.
func Decode(t DataType, data []byte, order binary.ByteOrder) (Lanes, error) {
	if !Supported(t) {
		return Lanes{}, nil
	}
	if len(data) < t.Size() {
		return Lanes{}, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrShortAttribute, t, t.Size(), len(data))
	}
	return decoders[t](data, order), nil
}

// Vec2 returns the first two lanes.
func (l Lanes) Vec2() [2]float32 { return [2]float32{l[0], l[1]} }

// Vec3 returns the first three lanes.
func (l Lanes) Vec3() [3]float32 { return [3]float32{l[0], l[1], l[2]} }

// Color converts normalized lanes to 8-bit RGBA, clamping to [0, 255].
// With legacyAlpha the alpha channel repeats the blue lane, as older
// exports did.
func (l Lanes) Color(legacyAlpha bool) [4]uint8 {
	alpha := l[3]
	if legacyAlpha {
		alpha = l[2]
	}
	return [4]uint8{toByte(l[0]), toByte(l[1]), toByte(l[2]), toByte(alpha)}
}

// Indices truncates the lanes to bone indices clamped to [0, 65535].
// NaN maps to 0.
func (l Lanes) Indices() [4]uint16 {
	var out [4]uint16
	for i, v := range l {
		switch {
		case v >= math.MaxUint16:
			out[i] = math.MaxUint16
		case v > 0:
			out[i] = uint16(v)
		}
	}
	return out
}

func toByte(v float32) uint8 {
	v *= 255
	switch {
	case v != v, v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

func f32(b []byte, o binary.ByteOrder, i int) float32 {
	return math.Float32frombits(o.Uint32(b[i*4:]))
}

func s32(b []byte, o binary.ByteOrder, i int) float32 {
	return float32(int32(o.Uint32(b[i*4:])))
}

func s16(b []byte, o binary.ByteOrder, i int) float32 {
	return float32(int16(o.Uint16(b[i*2:])))
}

func u16(b []byte, o binary.ByteOrder, i int) float32 {
	return float32(o.Uint16(b[i*2:]))
}

func s8(b []byte, i int) float32 {
	return float32(int8(b[i]))
}

func f16(b []byte, o binary.ByteOrder, i int) float32 {
	return float16.Frombits(o.Uint16(b[i*2:])).Float32()
}

func bytes4(b []byte, div float32) Lanes {
	return Lanes{float32(b[0]) / div, float32(b[1]) / div, float32(b[2]) / div, float32(b[3]) / div}
}

// signExtend extracts a bits-wide two's complement field starting at shift.
func signExtend(p uint32, shift, bits uint) int32 {
	mask := uint32(1)<<bits - 1
	v := int32(p >> shift & mask)
	if v&(1<<(bits-1)) != 0 {
		v -= 1 << bits
	}
	return v
}

func unpack10(v int32) float32 {
	if v < 0 {
		return float32(v) / 512
	}
	return float32(v) / 511
}

func unpack11(v int32) float32 {
	if v < 0 {
		return float32(v) / 1024
	}
	return float32(v) / 1023
}
