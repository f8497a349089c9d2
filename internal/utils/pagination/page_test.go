package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromQuery_Defaults(t *testing.T) {
	p := FromQuery(url.Values{})
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestFromQuery_ParsesValues(t *testing.T) {
	p := FromQuery(url.Values{"limit": {"10"}, "offset": {"20"}})
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset)
}

func TestFromQuery_ClampsAndIgnoresGarbage(t *testing.T) {
	p := FromQuery(url.Values{"limit": {"9999"}, "offset": {"-3"}})
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = FromQuery(url.Values{"limit": {"abc"}, "offset": {"xyz"}})
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestClamp(t *testing.T) {
	p := Clamp(0, -1)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = Clamp(500, 7)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 7, p.Offset)
}
