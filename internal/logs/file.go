package logs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the log file inkwelld mirrors its output to inside paths.log_dir.
const FileName = "inkwell.log"

// LastLines returns up to limit trailing lines of the log file in logDir. A
// missing file yields no lines.
func LastLines(logDir string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	path := filepath.Join(logDir, FileName)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	ring := make([]string, limit)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	lines := make([]string, count)
	if count < limit {
		copy(lines, ring[:count])
		return lines, nil
	}
	for i := range count {
		lines[i] = ring[(idx+i)%limit]
	}
	return lines, nil
}
