package cells

import (
	"reflect"
	"testing"
)

func TestNewArray(t *testing.T) {
	tests := []struct {
		name  string
		cells [][]int64
		want  []int64
		n     int
	}{
		{"empty", nil, []int64{}, 0},
		{"single triangle", [][]int64{{0, 1, 2}}, []int64{3, 0, 1, 2}, 1},
		{"mixed sizes", [][]int64{{10, 11, 12}, {20, 21, 22, 23}},
			[]int64{3, 10, 11, 12, 4, 20, 21, 22, 23}, 2},
		{"line segments", [][]int64{{0, 1}, {1, 2, 3, 4}},
			[]int64{2, 0, 1, 4, 1, 2, 3, 4}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArray(tt.cells)
			if a.NCells() != tt.n {
				t.Errorf("NCells() = %d, want %d", a.NCells(), tt.n)
			}
			if !reflect.DeepEqual(a.Data(), tt.want) {
				t.Errorf("Data() = %v, want %v", a.Data(), tt.want)
			}
		})
	}
}

func TestParseArray(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		a, err := ParseArray([]int64{3, 0, 1, 2, 4, 0, 1, 2, 3})
		if err != nil {
			t.Fatalf("ParseArray failed: %v", err)
		}
		if a.NCells() != 2 {
			t.Errorf("NCells() = %d, want 2", a.NCells())
		}
	})

	t.Run("truncated", func(t *testing.T) {
		if _, err := ParseArray([]int64{3, 0, 1, 2, 4, 0, 1}); err == nil {
			t.Error("expected error for truncated array")
		}
	})

	t.Run("zero count", func(t *testing.T) {
		if _, err := ParseArray([]int64{0, 3, 0, 1, 2}); err == nil {
			t.Error("expected error for zero point count")
		}
	})
}

func TestArrayRoundTrip(t *testing.T) {
	cells := [][]int64{{0, 1, 2}, {2, 3, 0}, {0, 1, 2, 3, 4}}
	a := NewArray(cells)
	if got := a.Cells(); !reflect.DeepEqual(got, cells) {
		t.Errorf("Cells() = %v, want %v", got, cells)
	}
}

func TestArrayMaxPointID(t *testing.T) {
	tests := []struct {
		name  string
		cells [][]int64
		want  int64
	}{
		{"empty", nil, -1},
		{"single", [][]int64{{0, 7, 2}}, 7},
		{"multiple", [][]int64{{0, 1, 2}, {9, 3, 4}}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewArray(tt.cells).MaxPointID(); got != tt.want {
				t.Errorf("MaxPointID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArrayUniformSize(t *testing.T) {
	t.Run("uniform", func(t *testing.T) {
		a := NewArray([][]int64{{0, 1, 2}, {2, 3, 0}})
		size, ok := a.UniformSize()
		if !ok || size != 3 {
			t.Errorf("UniformSize() = (%d, %v), want (3, true)", size, ok)
		}
	})
	t.Run("mixed", func(t *testing.T) {
		a := NewArray([][]int64{{0, 1, 2}, {0, 1, 2, 3}})
		if _, ok := a.UniformSize(); ok {
			t.Error("UniformSize() ok = true for mixed sizes, want false")
		}
	})
}

func TestVertexCells(t *testing.T) {
	a := VertexCells(3)
	want := []int64{1, 0, 1, 1, 1, 2}
	if !reflect.DeepEqual(a.Data(), want) {
		t.Errorf("VertexCells(3) = %v, want %v", a.Data(), want)
	}
	if a.NCells() != 3 {
		t.Errorf("NCells() = %d, want 3", a.NCells())
	}
}

func TestModernRoundTrip(t *testing.T) {
	a := NewArray([][]int64{{8, 0, 1, 2}, {4, 5}, {9}})
	conn, offsets := a.ToModern()

	wantConn := []int64{8, 0, 1, 2, 4, 5, 9}
	wantOffsets := []int64{0, 4, 6, 7}
	if !reflect.DeepEqual(conn, wantConn) {
		t.Errorf("connectivity = %v, want %v", conn, wantConn)
	}
	if !reflect.DeepEqual(offsets, wantOffsets) {
		t.Errorf("offsets = %v, want %v", offsets, wantOffsets)
	}

	back, err := FromModern(conn, offsets)
	if err != nil {
		t.Fatalf("FromModern failed: %v", err)
	}
	if !reflect.DeepEqual(back.Data(), a.Data()) {
		t.Errorf("round trip = %v, want %v", back.Data(), a.Data())
	}
}

func TestFromModernValidation(t *testing.T) {
	tests := []struct {
		name    string
		conn    []int64
		offsets []int64
	}{
		{"empty offsets", []int64{0, 1}, nil},
		{"bad start", []int64{0, 1}, []int64{1, 2}},
		{"bad end", []int64{0, 1, 2}, []int64{0, 2}},
		{"decreasing", []int64{0, 1, 2}, []int64{0, 2, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromModern(tt.conn, tt.offsets); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
