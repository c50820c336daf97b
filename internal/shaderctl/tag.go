package shaderctl

import "strings"

// Tag identifies one of the standardized animation controls shared by every shader pattern.
// TagNone marks a custom, per-shader parameter.
type Tag int

const (
	TagNone Tag = iota
	TagSpeed
	TagXPos
	TagYPos
	TagSize
	TagQuantity
	TagSpin
	TagAngle
	TagBrightness
	TagWow1
	TagWow2
	TagWowTrigger
	TagLevelReactivity
	TagFrequencyReactivity

	tagCount
)

// NumTags bounds Tag values, TagNone included.
const NumTags = int(tagCount)

var tagNames = [tagCount]string{
	TagNone:                "",
	TagSpeed:               "Speed",
	TagXPos:                "XPos",
	TagYPos:                "YPos",
	TagSize:                "Size",
	TagQuantity:            "Quantity",
	TagSpin:                "Spin",
	TagAngle:               "Angle",
	TagBrightness:          "Brightness",
	TagWow1:                "Wow1",
	TagWow2:                "Wow2",
	TagWowTrigger:          "WowTrigger",
	TagLevelReactivity:     "LevelReactivity",
	TagFrequencyReactivity: "FrequencyReactivity",
}

// String is the canonical control label.
func (t Tag) String() string {
	if t < 0 || t >= tagCount {
		return ""
	}
	return tagNames[t]
}

// Standard reports whether t is one of the shared controls.
func (t Tag) Standard() bool { return t > TagNone && t < tagCount }

// Tags lists every standardized tag in canonical order.
func Tags() []Tag {
	out := make([]Tag, 0, tagCount-1)
	for t := TagSpeed; t < tagCount; t++ {
		out = append(out, t)
	}
	return out
}

// aliases maps upper-cased surface spellings (pragma keys and uniform names) to tags.
var aliases = map[string]Tag{
	"SPEED":               TagSpeed,
	"ISPEED":              TagSpeed,
	"XPOS":                TagXPos,
	"IXPOS":               TagXPos,
	"YPOS":                TagYPos,
	"IYPOS":               TagYPos,
	"SIZE":                TagSize,
	"ISIZE":               TagSize,
	"ISCALE":              TagSize,
	"QUANTITY":            TagQuantity,
	"IQUANTITY":           TagQuantity,
	"SPIN":                TagSpin,
	"ISPIN":               TagSpin,
	"ANGLE":               TagAngle,
	"IANGLE":              TagAngle,
	"IROTATIONANGLE":      TagAngle,
	"BRIGHTNESS":          TagBrightness,
	"IBRIGHTNESS":         TagBrightness,
	"WOW1":                TagWow1,
	"IWOW1":               TagWow1,
	"WOW2":                TagWow2,
	"IWOW2":               TagWow2,
	"WOWTRIGGER":          TagWowTrigger,
	"IWOWTRIGGER":         TagWowTrigger,
	"LEVELREACTIVITY":     TagLevelReactivity,
	"LEVELREACT":          TagLevelReactivity,
	"ILEVELREACTIVITY":    TagLevelReactivity,
	"FREQREACTIVITY":      TagFrequencyReactivity,
	"FREQUENCYREACTIVITY": TagFrequencyReactivity,
	"FREQUENCYREACT":      TagFrequencyReactivity,
	"IFREQREACTIVITY":     TagFrequencyReactivity,
}

// LookupTag resolves a declared name to its standardized tag, or TagNone.
func LookupTag(name string) Tag {
	return aliases[strings.ToUpper(strings.TrimSpace(name))]
}
