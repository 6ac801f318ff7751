package engine

import (
	"testing"
)

func TestBufferPool_DefaultSize(t *testing.T) {
	bp := NewBufferPool(0)

	buf := bp.Get()
	if buf == nil {
		t.Fatalf("expected a valid buffer pointer, got nil")
	}

	if len(*buf) != DefaultLineBufferSize {
		t.Errorf("expected buffer size %d, got %d", DefaultLineBufferSize, len(*buf))
	}
	if bp.Size() != DefaultLineBufferSize {
		t.Errorf("expected pool size %d, got %d", DefaultLineBufferSize, bp.Size())
	}

	bp.Put(buf)
}

func TestBufferPool_CustomSize(t *testing.T) {
	customSize := 512
	bp := NewBufferPool(customSize)

	buf1 := bp.Get()
	if len(*buf1) != customSize {
		t.Errorf("expected buffer size %d, got %d", customSize, len(*buf1))
	}

	(*buf1)[0] = 42

	bp.Put(buf1)
	buf2 := bp.Get()

	if len(*buf2) != customSize {
		t.Errorf("expected reused buffer size %d, got %d", customSize, len(*buf2))
	}

	bp.Put(buf2)
	bp.Put(nil)
}

func TestScanLines_SplitsOnCarriageReturn(t *testing.T) {
	data := []byte("one\rtwo\nthree")
	var got []string
	for len(data) > 0 {
		adv, tok, err := scanLines(data, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, string(tok))
		data = data[adv:]
	}
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestScanLines_WaitsForMoreData(t *testing.T) {
	adv, tok, err := scanLines([]byte("partial"), false)
	if adv != 0 || tok != nil || err != nil {
		t.Errorf("expected request for more data, got adv=%d tok=%q err=%v", adv, tok, err)
	}
}
