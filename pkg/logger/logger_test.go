package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	l := NewWithOutput("debug", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l = NewWithOutput("nonsense", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("info", "json", &buf)

	WithComponent(l, "scraper").Info("hello")

	assert.Contains(t, buf.String(), `"component":"scraper"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
