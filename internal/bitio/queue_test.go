package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueuePushMidStream(t *testing.T) {
	q := NewQueue()
	q.Push([]byte{0xB1, 0xED})
	r := NewQueueReader(q, BigEndian)

	v, err := r.Read(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0xB1), v)

	q.Push([]byte{0x3B})
	data, err := r.ReadBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xED, 0x3B}, data)
}

func TestQueueResetDiscardsBufferedBytes(t *testing.T) {
	q := NewQueue()
	q.Push([]byte{1, 2, 3})
	r := NewQueueReader(q, BigEndian)

	q.Reset()
	size, err := r.Size()
	require.NoError(t, err)
	require.Equal(t, uint64(0), size)
	_, err = r.Read(8)
	require.ErrorIs(t, err, ErrEndOfStream)
}

func TestQueuePinPreservesDataAcrossReset(t *testing.T) {
	q := NewQueue()
	q.Push([]byte{0xAA, 0xBB, 0xCC})
	r := NewQueueReader(q, BigEndian)

	_, err := r.ReadBytes(1)
	require.NoError(t, err)
	pos, err := r.GetPos()
	require.NoError(t, err)

	q.Reset()
	require.NoError(t, r.SetPos(pos))
	data, err := r.ReadBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xBB, 0xCC}, data)
	pos.Release()
}

func TestQueuePinReleaseAllowsDiscard(t *testing.T) {
	q := NewQueue()
	q.Push([]byte{1, 2, 3, 4})
	r := NewQueueReader(q, BigEndian)

	pos, err := r.GetPos()
	require.NoError(t, err)
	pos.Release()
	pos.Release() // release is idempotent

	q.Reset()
	size, err := r.Size()
	require.NoError(t, err)
	require.Equal(t, uint64(0), size)
}

func TestQueueGrowthKeepsContent(t *testing.T) {
	q := NewQueue()
	payload := make([]byte, 10000)
	for i := range payload {
		payload[i] = byte(i)
	}
	for i := 0; i < len(payload); i += 100 {
		q.Push(payload[i : i+100])
	}
	r := NewQueueReader(q, BigEndian)
	data, err := r.ReadBytes(len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, data)
}
