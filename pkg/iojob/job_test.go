package iojob

import "testing"

func TestNewAllocatesFixedBuffer(t *testing.T) {
	j := New(4096)
	if len(j.Buffer) != 4096 {
		t.Fatalf("expected buffer of 4096 bytes, got %d", len(j.Buffer))
	}
	if j.UsedBufferSize != 0 || j.Offset != 0 {
		t.Fatalf("new job should start zeroed, got used=%d offset=%d", j.UsedBufferSize, j.Offset)
	}
}

func TestResetClearsAccountingButKeepsBuffer(t *testing.T) {
	j := New(8)
	buf := j.Buffer
	j.UsedBufferSize = 8
	j.Offset = 1024

	j.Reset()

	if j.UsedBufferSize != 0 {
		t.Errorf("expected UsedBufferSize reset to 0, got %d", j.UsedBufferSize)
	}
	if j.Offset != 0 {
		t.Errorf("expected Offset reset to 0, got %d", j.Offset)
	}
	if &j.Buffer[0] != &buf[0] {
		t.Errorf("Reset must not reallocate the backing buffer")
	}
}
