package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikbrunner/quill/internal/logging"
	"gotest.tools/v3/assert"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.log")

	logger, err := logging.New("info", path)
	assert.NilError(t, err)

	logger.Debug("hidden")
	logger.Info("visible")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(data), "visible"))
	assert.Assert(t, !strings.Contains(string(data), "hidden"))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logging.New("loud", "")
	assert.ErrorContains(t, err, "log level")
}
