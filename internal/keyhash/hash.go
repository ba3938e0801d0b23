// Package keyhash provides FNV-1a based hash functions for cache keys.
// The hash decides which shard of a sharded cache owns a key.
package keyhash

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"io"
	"math"
	"sync"

	"github.com/goccy/go-reflect"
)

const (
	// intSize is the size of an int in bits.
	intSize = 32 << (^uint(0) >> 63)
)

var (
	// defaultKeyHashMapMutex is a mutex for the defaultKeyHashMap.
	defaultKeyHashMapMutex = sync.RWMutex{}

	// defaultKeyHashMap caches hash functions by type name.
	defaultKeyHashMap = map[string]func(any) int{}
)

// GetOrCreateKeyHash returns a hash function for the given key type.
// Builtin numeric, bool and string types are supported, and so are named types whose underlying type is one of them.
// It panics for any other key type; use a custom hash function for those.
func GetOrCreateKeyHash[K comparable]() func(any) int {
	var zero K
	return getOrCreateKeyHashAny(zero)
}

// Shard maps a hash value onto [0, n).
func Shard(h int, n int) int {
	i := h % n
	if i < 0 {
		i = -i
	}
	return i
}

func getOrCreateKeyHashAny(t any) func(any) int {
	name := reflect.TypeOf(t).String()

	defaultKeyHashMapMutex.RLock()
	if f, ok := defaultKeyHashMap[name]; ok {
		defaultKeyHashMapMutex.RUnlock()
		return f
	}

	defaultKeyHashMapMutex.RUnlock()
	defaultKeyHashMapMutex.Lock()
	defer defaultKeyHashMapMutex.Unlock()
	if f, ok := defaultKeyHashMap[name]; ok {
		return f
	}

	f := createKeyHashAny(t)
	defaultKeyHashMap[name] = f
	return f
}

// createKeyHashAny creates a hash function for the given type.
// Fixed-size values are hashed over their big-endian encoding.
func createKeyHashAny(t any) func(any) int {
	h := hash64
	if intSize == 32 {
		h = hash32
	}

	switch t.(type) {
	case string:
		return func(v any) int {
			return hashString(v.(string))
		}
	case int:
		return func(v any) int {
			return hashFixed(uint64(v.(int)), intSize/8, h)
		}
	case int8:
		return func(v any) int {
			return hashFixed(uint64(v.(int8)), 1, h)
		}
	case int16:
		return func(v any) int {
			return hashFixed(uint64(v.(int16)), 2, h)
		}
	case int32:
		return func(v any) int {
			return hashFixed(uint64(v.(int32)), 4, h)
		}
	case int64:
		return func(v any) int {
			return hashFixed(uint64(v.(int64)), 8, h)
		}
	case uint:
		return func(v any) int {
			return hashFixed(uint64(v.(uint)), intSize/8, h)
		}
	case uint8:
		return func(v any) int {
			return hashFixed(uint64(v.(uint8)), 1, h)
		}
	case uint16:
		return func(v any) int {
			return hashFixed(uint64(v.(uint16)), 2, h)
		}
	case uint32:
		return func(v any) int {
			return hashFixed(uint64(v.(uint32)), 4, h)
		}
	case uint64:
		return func(v any) int {
			return hashFixed(v.(uint64), 8, h)
		}
	case float32:
		return func(v any) int {
			return hashFixed(uint64(math.Float32bits(v.(float32))), 4, h)
		}
	case float64:
		return func(v any) int {
			return hashFixed(math.Float64bits(v.(float64)), 8, h)
		}
	case bool:
		return func(v any) int {
			return hashFixed(boolBits(v.(bool)), 1, h)
		}
	}
	return createKeyHashByKind(reflect.TypeOf(t), h)
}

// createKeyHashByKind handles named types through their underlying kind.
func createKeyHashByKind(typ reflect.Type, h func([]byte) int) func(any) int {
	size := int(typ.Size())
	switch typ.Kind() {
	case reflect.String:
		return func(v any) int {
			return hashString(reflect.ValueOf(v).String())
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v any) int {
			return hashFixed(uint64(reflect.ValueOf(v).Int()), size, h)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(v any) int {
			return hashFixed(reflect.ValueOf(v).Uint(), size, h)
		}
	case reflect.Float32:
		return func(v any) int {
			return hashFixed(uint64(math.Float32bits(float32(reflect.ValueOf(v).Float()))), 4, h)
		}
	case reflect.Float64:
		return func(v any) int {
			return hashFixed(math.Float64bits(reflect.ValueOf(v).Float()), 8, h)
		}
	case reflect.Bool:
		return func(v any) int {
			return hashFixed(boolBits(reflect.ValueOf(v).Bool()), 1, h)
		}
	default:
		panic(fmt.Sprintf("unsupported key type: %s", typ))
	}
}

func boolBits(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// hashFixed hashes the low size bytes of bits in big-endian order.
func hashFixed(bits uint64, size int, h func([]byte) int) int {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], bits)
	return h(b[8-size:])
}

func hashString(s string) int {
	if intSize == 32 {
		f := hash32BufferPool.Get()
		defer hash32BufferPool.Put(f)
		_, _ = io.WriteString(f, s)
		return int(f.Sum32())
	}
	f := hash64BufferPool.Get()
	defer hash64BufferPool.Put(f)
	_, _ = io.WriteString(f, s)
	return int(f.Sum64())
}

// hash32BufferPool is a pool for 32-bit FNV-1a hash objects.
var hash32BufferPool = &resettablePool[hash.Hash32]{
	pool: sync.Pool{
		New: func() any {
			return fnv.New32a()
		},
	},
}

// hash64BufferPool is a pool for 64-bit FNV-1a hash objects.
var hash64BufferPool = &resettablePool[hash.Hash64]{
	pool: sync.Pool{
		New: func() any {
			return fnv.New64a()
		},
	},
}

type resetter interface {
	Reset()
}

// resettablePool is a sync.Pool that resets objects before reuse.
type resettablePool[H resetter] struct {
	pool sync.Pool
}

func (p *resettablePool[H]) Put(h H) {
	h.Reset()
	p.pool.Put(h)
}

func (p *resettablePool[H]) Get() H {
	return p.pool.Get().(H)
}

func hash32(b []byte) int {
	h := hash32BufferPool.Get()
	defer hash32BufferPool.Put(h)
	_, _ = h.Write(b)
	return int(h.Sum32())
}

func hash64(b []byte) int {
	h := hash64BufferPool.Get()
	defer hash64BufferPool.Put(h)
	_, _ = h.Write(b)
	return int(h.Sum64())
}
