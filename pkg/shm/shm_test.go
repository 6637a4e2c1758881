//go:build linux

package shm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nieksand/triton-inference-server/pkg/codec"
)

func TestSharedMemoryRoundTrip(t *testing.T) {
	h, err := CreateSharedMemoryRegion("input_data", "/triton_go_test_rt", 64)
	assert.NoError(t, err)
	defer h.Destroy()

	raw, err := codec.Encode([]int32{1, 2, 3, 4}, codec.TypeInt32)
	assert.NoError(t, err)
	assert.NoError(t, h.SetData(0, raw))

	got, err := h.Data(0, int64(len(raw)))
	assert.NoError(t, err)
	decoded, err := codec.Decode(got, codec.TypeInt32, []int64{4})
	assert.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3, 4}, decoded)
}

func TestSharedMemoryOffsetWrite(t *testing.T) {
	h, err := CreateSharedMemoryRegion("input_data", "/triton_go_test_off", 32)
	assert.NoError(t, err)
	defer h.Destroy()

	assert.NoError(t, h.SetData(16, []byte{0xde, 0xad}))
	got, err := h.Data(16, 2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, got)
}

func TestSharedMemoryBoundsChecks(t *testing.T) {
	h, err := CreateSharedMemoryRegion("input_data", "/triton_go_test_bounds", 8)
	assert.NoError(t, err)
	defer h.Destroy()

	assert.Error(t, h.SetData(4, make([]byte, 8)))
	assert.Error(t, h.SetData(-1, []byte{1}))
	_, err = h.Data(0, 9)
	assert.Error(t, err)
}

func TestSharedMemoryKeyValidation(t *testing.T) {
	_, err := CreateSharedMemoryRegion("bad", "no_slash", 8)
	assert.Error(t, err)
	_, err = CreateSharedMemoryRegion("bad", "/zero_size", 0)
	assert.Error(t, err)
}
