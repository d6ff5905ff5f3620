package osutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
)

func EnsureDir(dir string) error {
	stat, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, os.ModePerm)
		}
		return err
	}

	if !stat.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}

	return nil
}

func EnsureFilePathDir(filename string) error {
	dir := filepath.Dir(filename)
	return EnsureDir(dir)
}

var ErrPidFileNotFound = errors.New("pid file not found, is the server running?")

// WritePidFile writes the current process id to path. The returned func
// removes the file again.
func WritePidFile(path string) (func(), error) {
	err := EnsureFilePathDir(path)
	if err != nil {
		return nil, fmt.Errorf("ensure pid file dir: %w", err)
	}
	pid := strconv.Itoa(os.Getpid())
	err = os.WriteFile(path, []byte(pid), 0644)
	if err != nil {
		return nil, fmt.Errorf("write pid file: %w", err)
	}
	return func() { _ = os.Remove(path) }, nil
}

func ReadPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrPidFileNotFound
		}
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pid file %q has invalid content: %w", path, err)
	}
	return pid, nil
}

func ShowTable(titles []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(titles)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ") // pad with tabs
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows) // Add Bulk Data
	table.Render()
}

// ProcessAlive reports whether a process with pid exists.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
