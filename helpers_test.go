package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/require"
)

func alive(t *testing.T, pid int) bool {
	t.Helper()
	exists, err := process.PidExists(int32(pid))
	require.Nil(t, err)
	if !exists {
		return false
	}
	if runtime.GOOS == "linux" {
		// an orphan reparented to a non-reaping init lingers as a zombie, it is not running anymore
		stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
		if err != nil {
			return false
		}
		fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
		return len(fields) == 0 || fields[0] != "Z"
	}
	return true
}
