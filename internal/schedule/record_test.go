package schedule

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    DayStatus
		wantErr bool
	}{
		{"work", StatusWork, false},
		{"rest", StatusRest, false},
		{"off", StatusRest, false},
		{"partial", StatusPartial, false},
		{"unset", StatusUnset, false},
		{" Work ", StatusWork, false},
		{"vacation", StatusUnset, true},
		{"", StatusUnset, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewShiftSet_Normalizes(t *testing.T) {
	tests := []struct {
		name  string
		input []int
		want  ShiftSet
	}{
		{"Sorted", []int{3, 1, 2}, ShiftSet{1, 2, 3}},
		{"Deduplicated", []int{2, 2, 4, 2}, ShiftSet{2, 4}},
		{"Empty", nil, ShiftSet{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewShiftSet(tt.input...); !got.Equal(tt.want) {
				t.Errorf("NewShiftSet(%v) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseShiftSet(t *testing.T) {
	tests := []struct {
		input   string
		want    ShiftSet
		wantErr bool
	}{
		{"2,3", ShiftSet{2, 3}, false},
		{" 4 , 2 ", ShiftSet{2, 4}, false},
		{"3,3,3", ShiftSet{3}, false},
		{"", ShiftSet{}, false},
		{"-", ShiftSet{}, false},
		{"2,x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseShiftSet(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseShiftSet(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("ParseShiftSet(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestShiftSet_String(t *testing.T) {
	if got := (ShiftSet{2, 3, 4}).String(); got != "2,3,4" {
		t.Errorf("String() = %q, want %q", got, "2,3,4")
	}
	if got := (ShiftSet{}).String(); got != "-" {
		t.Errorf("empty String() = %q, want %q", got, "-")
	}
}

func TestValidShifts(t *testing.T) {
	tests := []struct {
		slots int
		want  ShiftSet
	}{
		{2, ShiftSet{2, 4}},
		{3, ShiftSet{2, 3, 4}},
		{4, ShiftSet{1, 2, 3, 4}},
		{0, ShiftSet{2, 3, 4}},
		{7, ShiftSet{2, 3, 4}},
	}

	for _, tt := range tests {
		if got := ValidShifts(tt.slots); !got.Equal(tt.want) {
			t.Errorf("ValidShifts(%d) = %s, want %s", tt.slots, got, tt.want)
		}
	}
}

func TestDayRecord_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rec  DayRecord
		want bool
	}{
		{"Fresh record", DayRecord{}, true},
		{"Note only", DayRecord{Note: "牙医"}, false},
		{"Status only", DayRecord{Status: StatusRest}, false},
		{"Unset after clearing", DayRecord{Status: StatusUnset, Note: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
