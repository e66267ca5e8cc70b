package api

import "testing"

func TestJoinURL(t *testing.T) {
	cases := []struct {
		name  string
		touch bool
		want  string
	}{
		{
			name:  "desktop gets the native scheme",
			touch: false,
			want:  "roblox://experiences/start?placeId=142823291&gameInstanceId=job-1",
		},
		{
			name:  "touch gets the web launcher",
			touch: true,
			want:  "https://www.roblox.com/games/start?placeId=142823291&launchData=job-1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := JoinURL("142823291", "job-1", tc.touch)
			if got != tc.want {
				t.Fatalf("JoinURL: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatLastSeen(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{42, "42s ago"},
		{60, "1m ago"},
		{3599, "59m ago"},
		{7200, "2h ago"},
		{172800, "2d ago"},
	}
	for _, tc := range cases {
		if got := FormatLastSeen(tc.seconds); got != tc.want {
			t.Fatalf("FormatLastSeen(%d): got %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{74.9, "1:14"},
		{243, "4:03"},
		{-5, "0:00"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.seconds); got != tc.want {
			t.Fatalf("FormatTime(%v): got %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
