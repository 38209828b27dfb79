package csvfile

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flag bool

type score float64

type label string

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "None"},
		{"val", "val"},
		{true, "True"},
		{false, "False"},
		{1.0, "1.0"},
		{0.25, "0.25"},
		{-3.0, "-3.0"},
		{float32(0.5), "0.5"},
		{1e16, "1e+16"},
		{0.00001, "1e-05"},
		{math.NaN(), "nan"},
		{math.Inf(-1), "-inf"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint64(9), "9"},
		{uint8(3), "3"},
		{errors.New("boom"), "boom"},
		{1500 * time.Millisecond, "1.5s"},
		{flag(true), "True"},
		{flag(false), "False"},
		{score(2), "2.0"},
		{label("val"), "val"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "FormatValue(%#v)", tt.in)
	}
}
