package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		target  error
		wantMsg string
	}{
		{
			name:    "no match keeps caller facing message",
			err:     NoMatchError{Names: []string{"Nonexistent Track XYZ"}},
			target:  ErrNoMatch,
			wantMsg: "no valid songs found",
		},
		{
			name:    "invalid input with reason",
			err:     InvalidInputError{Reason: "no songs provided"},
			target:  ErrInvalidInput,
			wantMsg: "invalid input: no songs provided",
		},
		{
			name:    "dataset load error with source",
			err:     DatasetLoadError{Source: "tracks.csv", Reason: "no usable rows"},
			target:  ErrDatasetLoad,
			wantMsg: "dataset load failed: tracks.csv: no usable rows",
		},
		{
			name:    "wrapped errors still match",
			err:     fmt.Errorf("service: recommend: %w", NoMatchError{}),
			target:  ErrNoMatch,
			wantMsg: "service: recommend: no valid songs found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.target) {
				t.Fatalf("expected %v to match %v", tc.err, tc.target)
			}
			if got := tc.err.Error(); got != tc.wantMsg {
				t.Fatalf("message: got %q, want %q", got, tc.wantMsg)
			}
		})
	}
}

func TestDatasetLoadError_Unwrap(t *testing.T) {
	cause := errors.New("open tracks.csv: no such file or directory")
	err := DatasetLoadError{Source: "tracks.csv", Reason: "cannot open", Err: cause}

	if !errors.Is(err, cause) {
		t.Fatalf("expected underlying cause to be reachable")
	}
	if errors.Is(err, ErrNoMatch) {
		t.Fatalf("dataset error must not match ErrNoMatch")
	}
}

func TestNoMatchError_Detail(t *testing.T) {
	err := NoMatchError{Names: []string{"A", "B"}}
	want := `no valid songs found: "A", "B"`
	if got := err.Detail(); got != want {
		t.Fatalf("detail: got %q, want %q", got, want)
	}
}

func TestNewTrack_JoinsArtists(t *testing.T) {
	tr := NewTrack("t1", "Song", []string{"Artist A", "Artist B"}, "Album")
	if tr.Artist != "Artist A, Artist B" {
		t.Fatalf("artist: got %q", tr.Artist)
	}
}
