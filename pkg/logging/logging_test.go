/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logging_test.go
Description: Tests for logger setup, formatters and log retention.
*/

package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerConfigValidate(t *testing.T) {
	require.NoError(t, DefaultLoggerConfig().Validate())

	c := DefaultLoggerConfig()
	c.Format = "xml"
	assert.Error(t, c.Validate())

	c = DefaultLoggerConfig()
	c.Level = "loud"
	assert.Error(t, c.Validate())

	c = DefaultLoggerConfig()
	c.OutputDir = t.TempDir()
	c.MaxFiles = 0
	assert.Error(t, c.Validate())
}

func TestInferenceFormatter(t *testing.T) {
	f := &InferenceFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "Fold applied",
		Data: logrus.Fields{
			"values":      []string{`"b"`, `"d"`},
			"run_id":      "0123456789abcdef",
			"nonterminal": "n1",
			"error":       errors.New("boom"),
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, `INFO [FOLD] Fold applied error=boom nonterminal=n1 run_id=01234567 values={"b" | "d"}`+"\n", string(out))
}

func TestCustomFormatterHasNoPrefix(t *testing.T) {
	f := &CustomFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.WarnLevel,
		Message: "Oracle query failed",
		Data:    logrus.Fields{"duration": 2 * time.Second},
	}
	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "WARNING Oracle query failed duration=2s\n", string(out))
}

func TestLoggerWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	config := DefaultLoggerConfig()
	config.OutputDir = dir
	config.Colors = false
	config.Timestamp = false

	l, err := NewLoggerWithOutput(config, &console)
	require.NoError(t, err)
	l.LogGrammar(2, 3, nil)
	path := l.FilePath()
	require.NoError(t, l.Close())

	assert.Contains(t, console.String(), "[GRAMMAR] Grammar inferred alternatives=3 nonterminals=2")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Grammar inferred")
}

func TestLogManagerRetentionAndAnalysis(t *testing.T) {
	dir := t.TempDir()
	names := []string{"2026-01-01_00-00-00", "2026-01-02_00-00-00", "2026-01-03_00-00-00"}
	for i, name := range names {
		path := filepath.Join(dir, "cfginfer_"+name+".log")
		content := "INFO Inference started\nINFO Fold applied\nWARNING Oracle query failed\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		stamp := time.Now().Add(time.Duration(i-len(names)) * time.Hour)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}

	m := NewLogManager(dir, 2, false)
	require.NoError(t, m.CleanupOldLogs())
	_, err := os.Stat(filepath.Join(dir, "cfginfer_"+names[0]+".log"))
	assert.True(t, os.IsNotExist(err))

	analysis, err := m.AnalyzeLogs()
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.LogFiles)
	assert.Equal(t, int64(2), analysis.RunCount)
	assert.Equal(t, int64(2), analysis.FoldCount)
	assert.Equal(t, int64(2), analysis.FailureCount)
	assert.Equal(t, int64(2), analysis.WarningCount)
	assert.True(t, strings.HasPrefix(analysis.Summary(), "Log Analysis Summary:"))

	path := filepath.Join(dir, "cfginfer_"+names[2]+".log")
	require.NoError(t, m.CompressFile(path))
	_, err = os.Stat(path + ".gz")
	assert.NoError(t, err)
}
