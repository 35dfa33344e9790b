package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("verbose"))
}

func TestGetLoggerInitialises(t *testing.T) {
	Logger = nil
	t.Setenv("LOG_LEVEL", "debug")

	logger := GetLogger()
	require.NotNil(t, logger)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Same(t, logger, GetLogger())
}

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SuccessResponse(c, http.StatusCreated, "created", map[string]string{"id": "1"})

	var ok APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, ok.Success)
	assert.Equal(t, "created", ok.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	AbortWithError(c, http.StatusBadGateway, "upstream failed", errors.New("boom"))

	var failed APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, failed.Success)
	assert.Equal(t, "boom", failed.Error)
	assert.True(t, c.IsAborted())
}
