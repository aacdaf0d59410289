package main

import (
	"testing"

	"hexworld/internal/hex"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		in      string
		want    hex.ChunkCoord
		wantErr bool
	}{
		{"1,0", hex.ChunkCoord{X: 1}, false},
		{"-2, 3", hex.ChunkCoord{X: -2, Y: 3}, false},
		{"0,0", hex.ChunkCoord{}, false},
		{"1", hex.ChunkCoord{}, true},
		{"a,1", hex.ChunkCoord{}, true},
		{"1,b", hex.ChunkCoord{}, true},
	}
	for _, tt := range tests {
		got, err := parseMove(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMove(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMove(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
