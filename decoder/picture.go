package decoder

import (
	"strconv"
	"strings"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avdecodestats/types"
)

func SliceTypeFromPictureType(t astiav.PictureType) types.SliceType {
	switch t {
	case astiav.PictureTypeI:
		return types.SliceTypeI
	case astiav.PictureTypeP:
		return types.SliceTypeP
	case astiav.PictureTypeB:
		return types.SliceTypeB
	}
	return types.SliceTypeUnknown
}

// BitDepthFromPixelFormatName derives the bit depth from libav's pixel
// format naming: "yuv420p" is 8 bits, "yuv420p10le" is 10 bits, "gray12be"
// is 12 bits. Returns 0 if the name is empty or "none".
func BitDepthFromPixelFormatName(name string) uint64 {
	name = strings.ToLower(name)
	if name == "" || name == "none" {
		return 0
	}
	name = strings.TrimSuffix(strings.TrimSuffix(name, "le"), "be")
	end := len(name)
	start := end
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	if start == end || start == 0 {
		return 8
	}
	switch name[start-1] {
	case 'p', 'y':
		depth, err := strconv.ParseUint(name[start:end], 10, 64)
		if err != nil || depth < 8 || depth > 16 {
			return 8
		}
		return depth
	}
	return 8
}
