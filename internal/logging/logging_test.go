package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("pair", "EUR/SGD").Info("routing updated")
	assert.Contains(t, buf.String(), `"pair":"EUR/SGD"`)
	assert.Contains(t, buf.String(), `"msg":"routing updated"`)
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "", "")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestNewBadLevel(t *testing.T) {
	t.Parallel()

	_, err := NewWithWriter(&bytes.Buffer{}, "loud", "text")
	assert.Error(t, err)
}
