package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextFolio(t *testing.T) {
	cases := []struct {
		name string
		last string
		want string
	}{
		{"first folio", "", "00000001"},
		{"plain numeric", "00000041", "00000042"},
		{"dash-separated tail", "TICKET-2025-00000009", "00000010"},
		{"unparseable restarts", "LEGACY-FOLIO", "00000001"},
		{"rollover past padding", "99999999", "100000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextFolio(tc.last))
		})
	}
}
