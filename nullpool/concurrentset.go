package nullpool

import (
	"sync"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/unsafe"
)

// numShards controls lock contention in concurrentSet. Mirrors
// grailbio/bio/encoding/bamprovider/concurrentmap.go's sharded-map idiom,
// swapping its sam.Record payload for a plain presence set.
const numShards = 1024

type setShard struct {
	mu      sync.Mutex
	members map[string]struct{}
}

// concurrentSet is a sharded, thread-safe string set. RandomDraw uses it to
// deduplicate the SNP names drawn for the --snps randomN pseudo-argument;
// BuildTable does not use it.
type concurrentSet struct {
	shards [numShards]setShard
}

func newConcurrentSet() *concurrentSet {
	s := &concurrentSet{}
	for i := range s.shards {
		s.shards[i].members = make(map[string]struct{})
	}
	return s
}

// addIfAbsent returns true if name was not already present, adding it.
func (s *concurrentSet) addIfAbsent(name string) bool {
	h := seahash.Sum64(unsafe.StringToBytes(name))
	shard := &s.shards[h%numShards]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, ok := shard.members[name]; ok {
		return false
	}
	shard.members[name] = struct{}{}
	return true
}
