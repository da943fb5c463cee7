package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[1], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[0], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[1], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[0], v2)
	}
}

func TestAppendOverwrites(t *testing.T) {
	h := new(History[int])
	d := New(2025, 1, 5)
	h.Append(d, 1).Append(d, 2).Append(d.Add(1), 3)

	if h.Len() != 2 {
		t.Fatalf("Len() = %v want 2", h.Len())
	}
	var days []Date
	var values []int
	for day, v := range h.Values() {
		days, values = append(days, day), append(values, v)
	}
	if days[0] != d || values[0] != 2 {
		t.Errorf("Values()[0] = %v, %v want %v, 2", days[0], values[0], d)
	}
	if days[1] != d.Add(1) || values[1] != 3 {
		t.Errorf("Values()[1] = %v, %v want %v, 3", days[1], values[1], d.Add(1))
	}
}
