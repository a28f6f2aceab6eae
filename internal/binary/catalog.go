package binary

import (
	"encoding/binary"
	"strconv"

	"github.com/dyuri/fffconv/internal/model"
)

// Field layout of FFF containers. Descriptions follow ExifTool's FLIR.pm.

// Magic is the file format signature at the start of every container.
const Magic = "FFF\x00"

// Header offsets
const (
	HeaderFormat       = 0x00 // File format = Magic
	HeaderCreator      = 0x04 // File creator: seen "\0", "MTX IR\0", "CAMCTRL\0"
	HeaderVersion      = 0x14 // File format version = 100
	HeaderRecordOffset = 0x18 // Offset to record directory
	HeaderRecordCount  = 0x1C // Number of entries in record directory
	HeaderIndexID      = 0x20 // Next free index ID = 2
	HeaderSwapPattern  = 0x24 // Swap pattern = 0 (?)
	HeaderSpares       = 0x28
	HeaderReserved     = 0x34
	HeaderChecksum     = 0x3C // Not validated
	HeaderLength       = 0x40

	CreatorLength = 16
)

// Directory entry offsets
const (
	EntryLength = 0x20

	EntryKind         = 0x00 // Record type
	EntrySubKind      = 0x02 // Record subtype
	EntryVersion      = 0x04
	EntryIndex        = 0x08
	EntryOffset       = 0x0C // Record offset from start of FFF data
	EntryContentLen   = 0x10 // Record length
	EntryParent       = 0x14 // Parent = 0 (?)
	EntryObjectNumber = 0x18 // Object number = 0 (?)
	EntryChecksum     = 0x1C // 0 for no checksum, never validated
)

// Raw record offsets
const (
	RawWidth  = 0x02
	RawHeight = 0x04
	RawData   = 0x20 // Pixel data; length is record length - RawData
)

// Palette record offsets
const (
	PaletteColorCount = 0x00
	PaletteData       = 0x70 // 3 bytes per color
)

// Header and directory integers are big-endian; property content is
// little-endian whatever the record subkind says.
var (
	headerOrder   binary.ByteOrder = binary.BigEndian
	propertyOrder binary.ByteOrder = binary.LittleEndian
)

// Kind is a record type from the directory.
type Kind uint16

const (
	KindEmpty   Kind = 0x00
	KindRaw     Kind = 0x01
	KindCamera  Kind = 0x20
	KindPalette Kind = 0x22
	KindPiP     Kind = 0x2A
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindRaw:
		return "Raw"
	case KindCamera:
		return "Camera"
	case KindPalette:
		return "Palette"
	case KindPiP:
		return "PiP"
	default:
		return "Kind(0x" + strconv.FormatUint(uint64(k), 16) + ")"
	}
}

// SubKind is a record subtype. Only Raw records interpret it.
type SubKind uint16

const (
	SubKindEmpty        SubKind = 0x00
	SubKindBigEndian    SubKind = 0x01
	SubKindLittleEndian SubKind = 0x02
	SubKindImage        SubKind = 0x03 // Embedded 16-bit grayscale raster (PNG)
)

func (s SubKind) String() string {
	switch s {
	case SubKindEmpty:
		return "empty"
	case SubKindBigEndian:
		return "BE"
	case SubKindLittleEndian:
		return "LE"
	case SubKindImage:
		return "image"
	default:
		return "SubKind(" + strconv.Itoa(int(s)) + ")"
	}
}

// PropertyDescriptor places one named property inside record content.
type PropertyDescriptor struct {
	Name   string
	Offset int
	Type   model.TypeTag
}

// CameraProperties holds the values needed, together with the raw data,
// to calculate object temperatures.
var CameraProperties = []PropertyDescriptor{
	{"Emissivity", 0x020, model.Float32},
	{"ObjectDistance", 0x024, model.Float32},
	{"ReflectedApparentTemperature", 0x028, model.Float32},
	{"AtmosphericTemperature", 0x02C, model.Float32},
	{"IRWindowTemperature", 0x030, model.Float32},
	{"IRWindowTransmission", 0x034, model.Float32},
	{"RelativeHumidity", 0x03C, model.Float32},
	{"PlanckR1", 0x058, model.Float32},
	{"PlanckB", 0x05C, model.Float32},
	{"PlanckF", 0x060, model.Float32},
	{"PlanckO", 0x308, model.Int32},
	{"PlanckR2", 0x30C, model.Float32},
	{"AtmosphericTransAlpha1", 0x070, model.Float32},
	{"AtmosphericTransAlpha2", 0x074, model.Float32},
	{"AtmosphericTransBeta1", 0x078, model.Float32},
	{"AtmosphericTransBeta2", 0x07C, model.Float32},
	{"AtmosphericTransX", 0x080, model.Float32},
	{"CameraTemperatureRangeMax", 0x090, model.Float32},
	{"CameraTemperatureRangeMin", 0x094, model.Float32},
	{"CameraTemperatureMaxClip", 0x098, model.Float32},
	{"CameraTemperatureMinClip", 0x09C, model.Float32},
	{"CameraTemperatureMaxWarn", 0x0A0, model.Float32},
	{"CameraTemperatureMinWarn", 0x0A4, model.Float32},
	{"CameraTemperatureMaxSaturated", 0x0A8, model.Float32},
	{"CameraTemperatureMinSaturated", 0x0AC, model.Float32},
	{"CameraModel", 0x0D4, model.Text32},
	{"CameraPartNumber", 0x0F4, model.Text16},
	{"CameraSerialNumber", 0x104, model.Text16},
	{"CameraSoftware", 0x114, model.Text16},
	{"LensModel", 0x170, model.Text32},
	{"LensPartNumber", 0x190, model.Text16},
	{"LensSerialNumber", 0x1A0, model.Text16},
	{"FilterModel", 0x1EC, model.Text16},
	{"FilterPartNumber", 0x1FC, model.Text32},
	{"FilterSerialNumber", 0x21C, model.Text32},
	{"RawValueRangeMin", 0x310, model.Int16U},
	{"RawValueRangeMax", 0x312, model.Int16U},
	{"RawValueMedian", 0x338, model.Int32},
	{"RawValueRange", 0x33C, model.Int32},
	{"DateTimeOriginal", 0x384, model.Int32},
	{"FocusStepCount", 0x390, model.Int32},
	{"FocusDistance", 0x45C, model.Float32},
	{"FieldOfView", 0x1B4, model.Float32},
	{"FrameRate", 0x464, model.Int16U},
}

// PaletteProperties describes the embedded palette. Colors are YCbCr.
var PaletteProperties = []PropertyDescriptor{
	{"PaletteColors", 0x000, model.Int32},
	{"PaletteFileName", 0x030, model.Text32},
	{"PaletteName", 0x050, model.Text32},
	{"PaletteMethod", 0x01A, model.Byte1},
	{"PaletteStretch", 0x01B, model.Byte1},
	{"AboveColor", 0x006, model.Color},
	{"BelowColor", 0x009, model.Color},
	{"OverflowColor", 0x00C, model.Color},
	{"UnderflowColor", 0x00F, model.Color},
	{"Isotherm1Color", 0x012, model.Color},
	{"Isotherm2Color", 0x015, model.Color},
}

// PiPProperties describes the picture-in-picture placement of the IR image
// over the visual one.
var PiPProperties = []PropertyDescriptor{
	{"Real2IR", 0x000, model.Float32},
	{"OffsetX", 0x004, model.Int16S},
	{"OffsetY", 0x006, model.Int16S},
	{"X1", 0x008, model.Int16S},
	{"X2", 0x00A, model.Int16S},
	{"Y1", 0x00C, model.Int16S},
	{"Y2", 0x00E, model.Int16S},
}

// PropertiesOf returns the property table of a record kind, or nil for
// kinds that carry no properties.
func PropertiesOf(k Kind) []PropertyDescriptor {
	switch k {
	case KindCamera:
		return CameraProperties
	case KindPalette:
		return PaletteProperties
	case KindPiP:
		return PiPProperties
	default:
		return nil
	}
}

// PropertyKinds lists the kinds that carry a property table, in the order
// the writer emits them.
var PropertyKinds = []Kind{KindCamera, KindPalette, KindPiP}

// LookupProperty finds the descriptor and owning kind of a property name.
func LookupProperty(name string) (PropertyDescriptor, Kind, bool) {
	for _, k := range PropertyKinds {
		for _, d := range PropertiesOf(k) {
			if d.Name == name {
				return d, k, true
			}
		}
	}
	return PropertyDescriptor{}, KindEmpty, false
}

// contentLength returns the minimum content length that holds every
// descriptor of a table.
func contentLength(table []PropertyDescriptor) int {
	n := 0
	for _, d := range table {
		if end := d.Offset + d.Type.Width(); end > n {
			n = end
		}
	}
	return n
}
