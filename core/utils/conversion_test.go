package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"Nil", nil, ""},
		{"String", "+20%", "+20%"},
		{"Bytes", []byte("abc"), "abc"},
		{"WholeFloat", float64(20), "20"},
		{"Float", 1.45, "1.45"},
		{"Bool", true, "true"},
		{"Int", 7, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToString(tt.in))
		})
	}
}
