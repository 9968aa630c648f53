package types

import (
	"fmt"
)

// Counter is a per-frame volume counter.
type Counter int

const (
	CounterSliceSize = Counter(iota)
	CounterCABACSize
	CounterPixelCount
	CounterCUCount
	CounterIntraCUCount
	CounterInterCUCount
	CounterSkipCUCount
	CounterPCMCUCount
	CounterTUCount
	CounterIntraPUCount
	CounterInterPUCount
	CounterMergePUCount
	CounterDeblockLumaEdgeCount
	CounterDeblockChromaEdgeCount
	CounterSAOBandCount
	CounterSAOEdgeCount
	CounterBitDepth
	CounterCTBSize
	EndOfCounter
)

// CounterCount is the size of arrays indexed by Counter.
const CounterCount = int(EndOfCounter)

func (c Counter) String() string {
	switch c {
	case CounterSliceSize:
		return "slice_size"
	case CounterCABACSize:
		return "cabac_size"
	case CounterPixelCount:
		return "pixel_count"
	case CounterCUCount:
		return "cu_count"
	case CounterIntraCUCount:
		return "intra_cu_count"
	case CounterInterCUCount:
		return "inter_cu_count"
	case CounterSkipCUCount:
		return "skip_cu_count"
	case CounterPCMCUCount:
		return "pcm_cu_count"
	case CounterTUCount:
		return "tu_count"
	case CounterIntraPUCount:
		return "intra_pu_count"
	case CounterInterPUCount:
		return "inter_pu_count"
	case CounterMergePUCount:
		return "merge_pu_count"
	case CounterDeblockLumaEdgeCount:
		return "deblock_luma_edge_count"
	case CounterDeblockChromaEdgeCount:
		return "deblock_chroma_edge_count"
	case CounterSAOBandCount:
		return "sao_band_count"
	case CounterSAOEdgeCount:
		return "sao_edge_count"
	case CounterBitDepth:
		return "bit_depth"
	case CounterCTBSize:
		return "ctb_size"
	}
	return fmt.Sprintf("Counter(%d)", int(c))
}
