package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinIsIdempotent(t *testing.T) {
	h := NewHub()
	c := &Client{}

	h.Join("conv-1", c)
	h.Join("conv-1", c)

	assert.Equal(t, 1, h.RoomSize("conv-1"))
}

func TestRemoveDropsClientFromAllRooms(t *testing.T) {
	h := NewHub()
	a := &Client{}
	b := &Client{}

	h.Join("conv-1", a)
	h.Join("conv-1", b)
	h.Join("conv-2", a)

	h.Remove(a)

	assert.Equal(t, 1, h.RoomSize("conv-1"))
	assert.Equal(t, 0, h.RoomSize("conv-2"))
}

func TestRoomSizeUnknownRoom(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.RoomSize("nope"))
}
