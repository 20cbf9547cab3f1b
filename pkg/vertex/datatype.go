// Package vertex decodes RX3 vertex declarations and packed vertex attributes.
package vertex

// DataType identifies the packed encoding of one vertex attribute.
type DataType uint8

// Attribute encodings, in declaration-name table order.
const (
	TypeUnknown DataType = iota
	TypeVoid
	Type1F32
	Type1S32
	Type1S16
	Type1S8
	Type2F32
	Type2S32
	Type2S16
	Type2S8
	Type3F32
	Type3S32
	Type3S16
	Type3S8
	Type4F32
	Type4S32
	Type4S16
	Type4S8
	Type4U8
	Type4U8N
	Type4U8EndianSwap
	Type4U8NEndianSwap
	Type2S16N
	Type4S16N
	Type3U10
	Type3S10N
	Type3S11N
	Type2F16
	Type4F16
	Type2S16S
	Type3S16S
	Type1U16RGB565
	Type3U8RGB8
	Type4U8RGBX8
	Type1U16RGBA4
	Type3U8RGBA6
	Type4U8RGBA8
	Type2U16
	Type4U16
	Type2U16N
	Type4U16N
	TypeCustom

	numTypes
)

// The swap type name keeps its historical double "p".
var typeNames = [numTypes]string{
	"unknown", "void", "1f32", "1s32", "1s16", "1s8", "2f32", "2s32", "2s16", "2s8",
	"3f32", "3s32", "3s16", "3s8", "4f32", "4s32", "4s16", "4s8", "4u8", "4u8n",
	"4u8endianswapp", "4u8nendianswap", "2s16n", "4s16n", "3u10", "3s10n", "3s11n",
	"2f16", "4f16", "2s16s", "3s16s", "1u16rgb565", "3u8rgb8", "4u8rgbx8",
	"1u16rgba4", "3u8rgba6", "4u8rgba8", "2u16", "4u16", "2u16n", "4u16n", "custom",
}

var typeSizes = [numTypes]int{
	Type1F32: 4, Type1S32: 4, Type1S16: 2, Type1S8: 1,
	Type2F32: 8, Type2S32: 8, Type2S16: 4, Type2S8: 2,
	Type3F32: 12, Type3S32: 12, Type3S16: 6, Type3S8: 3,
	Type4F32: 16, Type4S32: 16, Type4S16: 8, Type4S8: 4,
	Type4U8: 4, Type4U8N: 4, Type4U8EndianSwap: 4, Type4U8NEndianSwap: 4,
	Type2S16N: 4, Type4S16N: 8,
	Type3U10: 4, Type3S10N: 4, Type3S11N: 4,
	Type2F16: 4, Type4F16: 8,
	Type2S16S: 4, Type3S16S: 6,
	Type1U16RGB565: 2, Type3U8RGB8: 3, Type4U8RGBX8: 4,
	Type1U16RGBA4: 2, Type3U8RGBA6: 3, Type4U8RGBA8: 4,
	Type2U16: 4, Type4U16: 8, Type2U16N: 4, Type4U16N: 8,
}

// ParseDataType maps a declaration type name to its DataType. Unrecognized
// names map to TypeUnknown.
func ParseDataType(name string) DataType {
	for i, n := range typeNames {
		if n == name {
			return DataType(i)
		}
	}
	return TypeUnknown
}

// String returns the declaration name of the type.
func (t DataType) String() string {
	if t < numTypes {
		return typeNames[t]
	}
	return typeNames[TypeUnknown]
}

// Size returns the number of bytes one attribute of this type occupies.
// Types without a fixed layout report 0.
func (t DataType) Size() int {
	if t < numTypes {
		return typeSizes[t]
	}
	return 0
}

// Types returns every known data type.
func Types() []DataType {
	types := make([]DataType, numTypes)
	for i := range types {
		types[i] = DataType(i)
	}
	return types
}
