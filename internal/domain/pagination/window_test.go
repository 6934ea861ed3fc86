package pagination

import (
	"reflect"
	"testing"
)

func TestCompute_NoPagination(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if _, ok := Compute(1, n); ok {
			t.Errorf("Compute(1, %d) ok = true, want false", n)
		}
	}
}

func TestCompute_SmallPageCountShowsAll(t *testing.T) {
	for n := 2; n <= MaxPageDisplay; n++ {
		want := pageRange(1, n)
		for active := 1; active <= n; active++ {
			w, ok := Compute(active, n)
			if !ok {
				t.Fatalf("Compute(%d, %d) ok = false", active, n)
			}
			if !reflect.DeepEqual(w.Pages, want) {
				t.Errorf("Compute(%d, %d).Pages = %v, want %v", active, n, w.Pages, want)
			}
			if !w.FrontJumpDisabled || !w.BackJumpDisabled {
				t.Errorf("Compute(%d, %d): jumps must be disabled for small page counts", active, n)
			}
		}
	}
}

func TestCompute_Windows(t *testing.T) {
	tests := []struct {
		active, pages int
		want          []int
		frontArrow    bool
		frontJump     bool
		backArrow     bool
		backJump      bool
	}{
		{1, 10, []int{1, 2, 3, 4}, true, true, false, false},
		{2, 10, []int{1, 2, 3, 4}, false, true, false, false},
		{3, 10, []int{1, 2, 3, 4}, false, true, false, false},
		{4, 10, []int{3, 4, 5}, false, false, false, false},
		{5, 10, []int{4, 5, 6}, false, false, false, false},
		{7, 10, []int{6, 7, 8}, false, false, false, false},
		{8, 10, []int{7, 8, 9, 10}, false, false, false, true},
		{10, 10, []int{7, 8, 9, 10}, false, false, true, true},
		{2, 5, []int{1, 2, 3, 4}, false, true, false, false},
		{5, 5, []int{2, 3, 4, 5}, false, false, true, true},
	}
	for _, tc := range tests {
		w, ok := Compute(tc.active, tc.pages)
		if !ok {
			t.Fatalf("Compute(%d, %d) ok = false", tc.active, tc.pages)
		}
		if !reflect.DeepEqual(w.Pages, tc.want) {
			t.Errorf("Compute(%d, %d).Pages = %v, want %v", tc.active, tc.pages, w.Pages, tc.want)
		}
		if w.FrontArrowDisabled != tc.frontArrow || w.FrontJumpDisabled != tc.frontJump ||
			w.BackArrowDisabled != tc.backArrow || w.BackJumpDisabled != tc.backJump {
			t.Errorf("Compute(%d, %d) flags = %+v", tc.active, tc.pages, w)
		}
	}
}

func TestCompute_MiddleWindowKeepsDisplayedCountStable(t *testing.T) {
	// With both shortcuts shown, the centered run plus the two shortcut slots
	// fills MaxPageDisplay+1 positions for every interior page.
	for active := ShiftThreshold + 1; active <= 20-ShiftThreshold; active++ {
		w, _ := Compute(active, 20)
		if w.FrontJumpDisabled || w.BackJumpDisabled {
			t.Fatalf("Compute(%d, 20): expected both jumps enabled", active)
		}
		if got := len(w.Pages) + 2; got != MaxPageDisplay+1 {
			t.Errorf("Compute(%d, 20): displayed = %d, want %d", active, got, MaxPageDisplay+1)
		}
		if w.Pages[len(w.Pages)/2] != active {
			t.Errorf("Compute(%d, 20): window %v not centered", active, w.Pages)
		}
	}
}

func TestCompute_LastPageAlwaysEndsWindow(t *testing.T) {
	for n := MaxPageDisplay + 1; n <= 30; n++ {
		w, _ := Compute(n, n)
		if w.Pages[len(w.Pages)-1] != n {
			t.Errorf("Compute(%d, %d): last page = %d", n, n, w.Pages[len(w.Pages)-1])
		}
		if !w.BackArrowDisabled {
			t.Errorf("Compute(%d, %d): back arrow enabled on last page", n, n)
		}
	}
}

func TestCompute_Pure(t *testing.T) {
	a, _ := Compute(6, 12)
	b, _ := Compute(6, 12)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Compute not deterministic: %+v vs %+v", a, b)
	}
}

func TestWindow_ShowJumps(t *testing.T) {
	w, _ := Compute(5, 10)
	if !w.ShowFrontJump() || !w.ShowBackJump() {
		t.Errorf("interior page should show both jumps: %+v", w)
	}
	w, _ = Compute(1, 10)
	if w.ShowFrontJump() {
		t.Error("first page hides the front jump")
	}
	w, _ = Compute(10, 10)
	if w.ShowBackJump() {
		t.Error("last page hides the back jump")
	}
}

func TestNumPagesFor(t *testing.T) {
	tests := []struct{ total, size, want int }{
		{0, 25, 0},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{250, 25, 10},
		{10, 0, 0},
	}
	for _, tc := range tests {
		if got := NumPagesFor(tc.total, tc.size); got != tc.want {
			t.Errorf("NumPagesFor(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}
