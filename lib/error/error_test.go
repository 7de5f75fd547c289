package error

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) (*bytes.Buffer, *int) {
	buf := &bytes.Buffer{}
	code := -1

	oldLogger, oldExit := Logger, exit
	Logger = zerolog.New(buf)
	exit = func(c int) { code = c }
	t.Cleanup(func() { Logger, exit = oldLogger, oldExit })

	return buf, &code
}

func TestExternal(t *testing.T) {
	buf, code := capture(t)
	External("config file '%s' is missing", "bunch.cfg")

	assert.Equal(t, 1, *code)
	assert.Contains(t, buf.String(), "config file 'bunch.cfg' is missing")
	assert.NotContains(t, buf.String(), "\"stack\"")
}

func TestInternal(t *testing.T) {
	buf, code := capture(t)
	Internal("capacity %d overflows", 42)

	assert.Equal(t, 1, *code)
	assert.Contains(t, buf.String(), "capacity 42 overflows")
	assert.Contains(t, buf.String(), "\"stack\"")
}
