/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log file management for cfginfer: compression, retention and a small
analyzer that counts inference events in past log files.
*/

package logging

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LogManager applies retention to a log directory
type LogManager struct {
	logDir   string
	maxFiles int
	compress bool
}

// NewLogManager creates a new log manager
func NewLogManager(logDir string, maxFiles int, compress bool) *LogManager {
	return &LogManager{logDir: logDir, maxFiles: maxFiles, compress: compress}
}

func (lm *LogManager) files(suffix string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(lm.logDir, fmt.Sprintf(filePattern, "*")+suffix))
	if err != nil {
		return nil, fmt.Errorf("failed to glob log files: %w", err)
	}
	return files, nil
}

// CompressFile gzips path and removes the original.
func (lm *LogManager) CompressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	compressed, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	gzipWriter := gzip.NewWriter(compressed)
	if _, err := io.Copy(gzipWriter, source); err != nil {
		compressed.Close()
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		compressed.Close()
		return err
	}
	if err := compressed.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// CleanupOldLogs removes the oldest log files beyond maxFiles.
func (lm *LogManager) CleanupOldLogs() error {
	files, err := lm.files("*")
	if err != nil {
		return err
	}
	if len(files) <= lm.maxFiles {
		return nil
	}

	// Oldest first
	sort.Slice(files, func(i, j int) bool {
		statI, errI := os.Stat(files[i])
		statJ, errJ := os.Stat(files[j])
		if errI != nil || errJ != nil {
			return files[i] < files[j]
		}
		return statI.ModTime().Before(statJ.ModTime())
	})

	for _, file := range files[:len(files)-lm.maxFiles] {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", file, err)
		}
	}
	return nil
}

// LogAnalysis counts events found in log files
type LogAnalysis struct {
	LogFiles     int   `json:"log_files"`
	TotalLines   int64 `json:"total_lines"`
	WarningCount int64 `json:"warning_count"`
	ErrorCount   int64 `json:"error_count"`
	RunCount     int64 `json:"run_count"`
	FoldCount    int64 `json:"fold_count"`
	RejectCount  int64 `json:"reject_count"`
	FailureCount int64 `json:"failure_count"`
}

// AnalyzeLogs scans the uncompressed log files of the manager's directory.
func (lm *LogManager) AnalyzeLogs() (*LogAnalysis, error) {
	files, err := lm.files("")
	if err != nil {
		return nil, err
	}

	analysis := &LogAnalysis{LogFiles: len(files)}
	for _, file := range files {
		if err := analyzeFile(file, analysis); err != nil {
			return nil, fmt.Errorf("failed to analyze file %s: %w", file, err)
		}
	}
	return analysis, nil
}

func analyzeFile(path string, analysis *LogAnalysis) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		analyzeLine(scanner.Text(), analysis)
	}
	return scanner.Err()
}

func analyzeLine(line string, analysis *LogAnalysis) {
	analysis.TotalLines++

	switch {
	case strings.Contains(line, "WARN"):
		analysis.WarningCount++
	case strings.Contains(line, "ERROR"):
		analysis.ErrorCount++
	}

	switch {
	case strings.Contains(line, "Inference started"):
		analysis.RunCount++
	case strings.Contains(line, "Fold applied"):
		analysis.FoldCount++
	case strings.Contains(line, "Clique rejected by oracle"):
		analysis.RejectCount++
	case strings.Contains(line, "Oracle query failed"):
		analysis.FailureCount++
	}
}

// Summary renders the analysis for humans.
func (a *LogAnalysis) Summary() string {
	return fmt.Sprintf(
		"Log Analysis Summary:\n"+
			"  Files: %d\n"+
			"  Total Lines: %d\n"+
			"  Warnings: %d\n"+
			"  Errors: %d\n"+
			"  Runs: %d\n"+
			"  Folds: %d\n"+
			"  Rejected cliques: %d\n"+
			"  Failed oracle queries: %d",
		a.LogFiles, a.TotalLines, a.WarningCount, a.ErrorCount,
		a.RunCount, a.FoldCount, a.RejectCount, a.FailureCount,
	)
}
