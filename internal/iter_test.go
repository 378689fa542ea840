package internal

import (
	"iter"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect[K any, V any](seq iter.Seq2[K, V]) (keys []K, values []V) {
	for key, value := range seq {
		keys = append(keys, key)
		values = append(values, value)
	}
	return
}

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	var a iter.Seq2[string, int] = func(yield func(string, int) bool) {
		_ = yield("a", 1) && yield("b", 2)
	}
	var b iter.Seq2[string, int] = func(yield func(string, int) bool) {
		_ = yield("c", 3)
	}

	keys, values := collect(IterSeq2Concat(a, b))
	assert.Equal([]string{"a", "b", "c"}, keys)
	assert.Equal([]int{1, 2, 3}, values)

	keys = nil
	for key := range IterSeq2Concat(a, b) {
		keys = append(keys, key)
		if key == "b" {
			break
		}
	}
	assert.Equal([]string{"a", "b"}, keys)

	keys, _ = collect(IterSeq2Concat[string, int]())
	assert.Empty(keys)
}

func TestIterSeq2Sorted(t *testing.T) {
	assert := assert.New(t)

	first := map[string]string{"SCREEN_WIDTH": "64", "KEYS": "16"}
	second := map[string]string{"FRAME_RATE": "60", "KEYS": "32"}

	keys, values := collect(IterSeq2Sorted(IterSeq2Concat(maps.All(first), maps.All(second))))
	assert.Equal([]string{"FRAME_RATE", "KEYS", "SCREEN_WIDTH"}, keys)
	assert.Equal([]string{"60", "16", "64"}, values)

	keys = nil
	for key := range IterSeq2Sorted(maps.All(first)) {
		keys = append(keys, key)
		break
	}
	assert.Equal([]string{"KEYS"}, keys)
}
