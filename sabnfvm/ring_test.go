package sabnfvm

import (
	"testing"
)

func TestRing_Wrap(t *testing.T) {
	var r ring
	r.init(3, true)

	type pushRow struct {
		Line int
		Slot int
	}
	data := []pushRow{
		pushRow{0, 0},
		pushRow{1, 1},
		pushRow{2, 2},
		pushRow{3, 0},
		pushRow{4, 1},
	}
	for i, row := range data {
		line, slot := r.push()
		if line != row.Line || slot != row.Slot {
			t.Errorf("%s/%03d: expected (%d,%d), got (%d,%d)", t.Name(), i, row.Line, row.Slot, line, slot)
		}
	}

	if r.count() != 3 || r.first() != 2 {
		t.Errorf("%s: count=%d first=%d", t.Name(), r.count(), r.first())
	}

	type slotRow struct {
		Line int
		Slot int
	}
	slots := []slotRow{
		slotRow{0, -1},
		slotRow{1, -1},
		slotRow{2, 2},
		slotRow{3, 0},
		slotRow{4, 1},
		slotRow{5, -1},
	}
	for i, row := range slots {
		if got := r.slot(row.Line); got != row.Slot {
			t.Errorf("%s/%03d: slot(%d): expected %d, got %d", t.Name(), i, row.Line, row.Slot, got)
		}
	}

	var lines []int
	r.forEach(func(slot, line int) { lines = append(lines, line) })
	if len(lines) != 3 || lines[0] != 2 || lines[2] != 4 {
		t.Errorf("%s: forEach lines %v", t.Name(), lines)
	}
}

func TestRing_NoWrap(t *testing.T) {
	var r ring
	r.init(2, false)

	for i := 0; i < 5; i++ {
		line, slot := r.push()
		if line != i {
			t.Errorf("%s: push %d returned line %d", t.Name(), i, line)
		}
		if i < 2 && slot != i {
			t.Errorf("%s: push %d returned slot %d", t.Name(), i, slot)
		}
		if i >= 2 && slot != -1 {
			t.Errorf("%s: push %d retained slot %d", t.Name(), i, slot)
		}
	}

	if r.count() != 2 || r.first() != 0 {
		t.Errorf("%s: count=%d first=%d", t.Name(), r.count(), r.first())
	}
	if r.slot(1) != 1 || r.slot(3) != -1 {
		t.Errorf("%s: slot lookup broken", t.Name())
	}
}
