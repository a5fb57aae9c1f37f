package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the directories the application reads from and writes to
type Paths struct {
	ExecutableDir string
	WorkingDir    string
	DataDir       string
	LogsDir       string
}

// GetPaths resolves the executable and working directories
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}
	exeDir := filepath.Dir(exe)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %v", err)
	}

	return &Paths{
		ExecutableDir: exeDir,
		WorkingDir:    wd,
		DataDir:       filepath.Join(exeDir, "data"),
		LogsDir:       filepath.Join(exeDir, "logs"),
	}, nil
}

// ResolveWorkbook returns the workbook location. Absolute paths are used as
// given; relative paths are tried against the working directory, then the
// executable directory, then its data directory. When nothing exists the
// working-directory candidate is returned so the loader reports it.
func (p *Paths) ResolveWorkbook(name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	candidates := []string{
		filepath.Join(p.WorkingDir, name),
		filepath.Join(p.ExecutableDir, name),
		filepath.Join(p.DataDir, name),
	}
	for _, c := range candidates {
		if FileExists(c) {
			return c
		}
	}
	return candidates[0]
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution",
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("working_dir", p.WorkingDir),
		slog.String("data_dir", p.DataDir),
		slog.String("logs_dir", p.LogsDir))
}
