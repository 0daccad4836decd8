package availability

import (
	"testing"
	"time"

	"naumstay/pkg/model"
)

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func rng(checkIn, checkOut string) Range {
	return NewRange(date(checkIn), date(checkOut))
}

func TestRange_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a    Range
		b    Range
		want bool
	}{
		{
			name: "disjoint ranges",
			a:    rng("2024-06-01", "2024-06-05"),
			b:    rng("2024-06-10", "2024-06-12"),
			want: false,
		},
		{
			name: "strict overlap",
			a:    rng("2024-06-01", "2024-06-05"),
			b:    rng("2024-06-04", "2024-06-06"),
			want: true,
		},
		{
			name: "touching endpoints are not a conflict",
			a:    rng("2024-06-01", "2024-06-10"),
			b:    rng("2024-06-10", "2024-06-12"),
			want: false,
		},
		{
			name: "touching endpoints reversed",
			a:    rng("2024-06-10", "2024-06-12"),
			b:    rng("2024-06-01", "2024-06-10"),
			want: false,
		},
		{
			name: "one range contains the other",
			a:    rng("2024-06-01", "2024-06-30"),
			b:    rng("2024-06-10", "2024-06-12"),
			want: true,
		},
		{
			name: "identical ranges",
			a:    rng("2024-06-01", "2024-06-05"),
			b:    rng("2024-06-01", "2024-06-05"),
			want: true,
		},
		{
			name: "single shared night",
			a:    rng("2024-06-01", "2024-06-03"),
			b:    rng("2024-06-02", "2024-06-04"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRange_Nights(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want int
	}{
		{"three nights", rng("2024-07-01", "2024-07-04"), 3},
		{"one night", rng("2024-07-01", "2024-07-02"), 1},
		{"across month boundary", rng("2024-06-29", "2024-07-02"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Nights(); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewRange_NormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2024, 7, 1, 14, 30, 0, 0, loc)
	out := time.Date(2024, 7, 4, 9, 0, 0, 0, loc)

	r := NewRange(in, out)

	if !r.CheckIn.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("CheckIn not normalized: %v", r.CheckIn)
	}
	if !r.CheckOut.Equal(time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("CheckOut not normalized: %v", r.CheckOut)
	}
	if r.Nights() != 3 {
		t.Errorf("Nights() = %d, want 3", r.Nights())
	}
}

func TestRange_Valid(t *testing.T) {
	if !rng("2024-06-01", "2024-06-02").Valid() {
		t.Error("one-night range must be valid")
	}
	if rng("2024-06-01", "2024-06-01").Valid() {
		t.Error("zero-night range must be invalid")
	}
	if rng("2024-06-05", "2024-06-01").Valid() {
		t.Error("negative range must be invalid")
	}
}

func TestLinearChecker_RangeFree(t *testing.T) {
	checker := LinearChecker{}
	existing := []Range{
		rng("2024-06-01", "2024-06-05"),
		rng("2024-06-10", "2024-06-15"),
	}

	tests := []struct {
		name      string
		candidate Range
		want      bool
	}{
		{"gap between bookings", rng("2024-06-05", "2024-06-10"), true},
		{"overlaps first booking", rng("2024-06-04", "2024-06-06"), false},
		{"overlaps second booking", rng("2024-06-14", "2024-06-20"), false},
		{"after all bookings", rng("2024-06-15", "2024-06-18"), true},
		{"no existing bookings", rng("2024-06-01", "2024-06-05"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := existing
			if tt.name == "no existing bookings" {
				ex = nil
			}
			if got := checker.RangeFree(ex, tt.candidate); got != tt.want {
				t.Errorf("RangeFree = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterRooms(t *testing.T) {
	two := &model.Room{ID: "room-double", Name: "Deluxe Double", MaxOccupancy: &model.Occupancy{Adults: 2, Children: 0}}
	family := &model.Room{ID: "room-family", Name: "Family Suite", MaxOccupancy: &model.Occupancy{Adults: 2, Children: 2}}
	unknown := &model.Room{ID: "room-loft", Name: "Loft"}
	rooms := []*model.Room{two, family, unknown}

	booked := map[string][]Range{
		"room-family": {rng("2024-06-01", "2024-06-05")},
	}

	tests := []struct {
		name      string
		candidate Range
		adults    int
		children  int
		wantIDs   []string
	}{
		{
			name:      "family room booked out",
			candidate: rng("2024-06-03", "2024-06-06"),
			adults:    2,
			children:  0,
			wantIDs:   []string{"room-double", "room-loft"},
		},
		{
			name:      "children requested filters non-family rooms with published zero limit is open",
			candidate: rng("2024-06-10", "2024-06-12"),
			adults:    2,
			children:  1,
			// room-double publishes children:0 which means "no stated limit";
			// room with no occupancy data accepts anything.
			wantIDs: []string{"room-double", "room-family", "room-loft"},
		},
		{
			name:      "too many adults",
			candidate: rng("2024-06-10", "2024-06-12"),
			adults:    3,
			children:  0,
			wantIDs:   []string{"room-loft"},
		},
		{
			name:      "children above published limit",
			candidate: rng("2024-06-10", "2024-06-12"),
			adults:    2,
			children:  3,
			wantIDs:   []string{"room-double", "room-loft"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRooms(LinearChecker{}, rooms, booked, tt.candidate, tt.adults, tt.children)

			var gotIDs []string
			for _, room := range got {
				gotIDs = append(gotIDs, room.ID)
			}
			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("got rooms %v, want %v", gotIDs, tt.wantIDs)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Errorf("room[%d] = %s, want %s", i, gotIDs[i], tt.wantIDs[i])
				}
			}
		})
	}
}

func TestRangeFree_Deterministic(t *testing.T) {
	checker := LinearChecker{}
	existing := []Range{rng("2024-06-01", "2024-06-05")}
	candidate := rng("2024-06-04", "2024-06-06")

	for i := 0; i < 100; i++ {
		if checker.RangeFree(existing, candidate) {
			t.Fatal("RangeFree flipped its answer on identical input")
		}
	}
}
