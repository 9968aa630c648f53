//go:build amd64

package timer

const tscSupported = true

// rdtsc is implemented in tsc_amd64.s
func rdtsc() uint64
