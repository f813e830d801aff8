package contract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/annofabcli/schema"
)

// FileArgPrefix marks an argument whose value is read from a file.
const FileArgPrefix = "file://"

// Color variables for console output.
var (
	DoneColor     = color.New(color.FgGreen)
	ActiveColor   = color.New(color.FgCyan, color.Bold)
	StalledColor  = color.New(color.FgYellow)
	FailedColor   = color.New(color.FgRed, color.Bold)
	IdleColor     = color.New(color.FgWhite)
	CriticalColor = color.New(color.FgMagenta, color.Bold)
)

// GetStatusLabel returns a colored task status for console output (table).
func GetStatusLabel(status schema.TaskStatus) string {
	text := string(status)
	switch status {
	case schema.CompleteStatus:
		return DoneColor.Sprint(text)
	case schema.WorkingStatus:
		return ActiveColor.Sprint(text)
	case schema.BreakStatus, schema.OnHoldStatus:
		return StalledColor.Sprint(text)
	case schema.RejectedStatus:
		return FailedColor.Sprint(text)
	case schema.CancelledStatus:
		return CriticalColor.Sprint(text)
	default:
		return IdleColor.Sprint(text)
	}
}

// GetJobStatusLabel returns a colored job status for console output (table).
func GetJobStatusLabel(status schema.JobStatus) string {
	text := string(status)
	switch status {
	case schema.JobSucceeded:
		return DoneColor.Sprint(text)
	case schema.JobFailed:
		return FailedColor.Sprint(text)
	default:
		return ActiveColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs an informational message to stderr so stdout stays machine readable.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "Info "+format+"\n", args...)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for response cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".annofabcli_cache.db"
	}
	return filepath.Join(homeDir, ".annofabcli_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for statistics history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".annofabcli_history.db"
	}
	return filepath.Join(homeDir, ".annofabcli_history.db")
}

// ReadArgValue returns s, or the content of the file it names when s starts with file://.
func ReadArgValue(s string) (string, error) {
	s = strings.TrimSpace(s)
	path, ok := strings.CutPrefix(s, FileArgPrefix)
	if !ok {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// ParseListArg splits a comma separated argument into trimmed, non-empty items.
// A file:// argument is read as one item per line; lines starting with # are ignored.
func ParseListArg(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, FileArgPrefix) {
		text, err := ReadArgValue(s)
		if err != nil {
			return nil, err
		}
		var items []string
		for line := range strings.Lines(text) {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			items = append(items, line)
		}
		return items, nil
	}
	var items []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items, nil
}

// Confirm asks a yes/no question on w and reads the answer from r.
// Anything but y or yes is a no.
func Confirm(r io.Reader, w io.Writer, question string) bool {
	_, _ = fmt.Fprintf(w, "%s [y/N]: ", question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// TruncateText truncates s to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the "..." and at least one character.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
