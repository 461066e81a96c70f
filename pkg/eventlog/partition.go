package eventlog

import "github.com/cespare/xxhash/v2"

// PartitionFor maps a key onto [0, partitions). Empty keys land on partition 0.
func PartitionFor(key string, partitions int) int {
	if partitions <= 1 || key == "" {
		return 0
	}
	return int(xxhash.Sum64String(key) % uint64(partitions))
}
