package paygate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFloat(t *testing.T) {
	valid := map[string]struct {
		in   interface{}
		want float64
	}{
		"float":          {1000.0, 1000},
		"json number":    {json.Number("1500.50"), 1500.5},
		"numeric string": {" 250 ", 250},
	}
	for name, tt := range valid {
		t.Run(name, func(t *testing.T) {
			got, err := toFloat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []interface{}{"NaN", "inf", "+Infinity", "1e400", "abc", true, nil, []interface{}{1.0}} {
		_, err := toFloat(in)
		assert.Error(t, err, "%v", in)
	}
}
