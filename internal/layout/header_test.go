package layout

import "testing"

func seedHeader(counter, off, count uint32) RegionHeader {
	b := make([]byte, RegionHeaderSize)
	PutU32(b, OffChangeCounter, counter)
	PutU32(b, OffChangeByteOffset, off)
	PutU32(b, OffChangeByteCount, count)
	return NewRegionHeader(b)
}

func checkHeader(t *testing.T, h RegionHeader, counter, off, count uint32) {
	t.Helper()
	if h.ChangeCounter() != counter || h.ChangeByteOffset() != off || h.ChangeByteCount() != count {
		t.Fatalf("header = counter %d range [%d,+%d), want counter %d range [%d,+%d)",
			h.ChangeCounter(), h.ChangeByteOffset(), h.ChangeByteCount(), counter, off, count)
	}
}

func TestRecordWriteFromFresh(t *testing.T) {
	h := seedHeader(0, 0, 0)

	// a fresh header tracks from offset 0 to the write's right edge
	h.RecordWrite(5, 2)
	checkHeader(t, h, 1, 0, 7)

	// extending to the right grows the count
	h.RecordWrite(10, 4)
	checkHeader(t, h, 2, 0, 14)

	// a contained write only advances the counter
	h.RecordWrite(3, 2)
	checkHeader(t, h, 3, 0, 14)
}

func TestRecordWriteExtendsLeft(t *testing.T) {
	h := seedHeader(7, 8, 4) // pending range [8,12)
	h.RecordWrite(2, 2)
	checkHeader(t, h, 8, 2, 10) // [2,12)
}

func TestRecordWriteAdoptsExactRangeWhenEmpty(t *testing.T) {
	h := seedHeader(0, 8, 0) // empty window parked at 8
	h.RecordWrite(2, 3)
	checkHeader(t, h, 1, 2, 3)
}

func TestRecordWriteIgnoresBadRanges(t *testing.T) {
	h := seedHeader(4, 2, 6)
	h.RecordWrite(-1, 5)
	h.RecordWrite(3, 0)
	h.RecordWrite(3, -2)
	checkHeader(t, h, 4, 2, 6)

	short := NewRegionHeader(make([]byte, RegionHeaderSize-1))
	short.RecordWrite(0, 1) // must not panic
	if short.ChangeCounter() != 0 {
		t.Fatal("short header should read zero")
	}
}

func TestHeaderReset(t *testing.T) {
	h := seedHeader(9, 3, 5)
	h.Reset()
	checkHeader(t, h, 9, 0, 0)

	// after a reset the next write tracks from zero again
	h.RecordWrite(4, 2)
	checkHeader(t, h, 10, 0, 6)
}
