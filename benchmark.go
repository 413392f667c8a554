package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

func clearCaches() error {
	switch runtime.GOOS {
	case "linux":
		if err := exec.Command("sync").Run(); err != nil {
			return err
		}
		if err := exec.Command("sh", "-c", "echo 3 | sudo tee /proc/sys/vm/drop_caches").Run(); err != nil {
			return err
		}
		return nil
	case "darwin":
		if err := exec.Command("sync").Run(); err != nil {
			return err
		}
		if err := exec.Command("purge").Run(); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unable to clear caches for platform '%v'", runtime.GOOS)
}

// prepareHost runs once before the batch. Failures only degrade measurement quality.
func prepareHost(cfg Config) {
	if !cfg.ClearCaches {
		return
	}
	Logger.Info("clear caches")
	if err := clearCaches(); err != nil {
		Logger.Warnf("failed to clear fs caches: %v", err)
	}
}
