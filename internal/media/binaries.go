package media

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"dupe-checker/internal/logging"
)

// Binaries holds the resolved ffmpeg and ffprobe commands.
type Binaries struct {
	FFmpeg  string
	FFprobe string
}

// LocateBinaries resolves ffmpeg and ffprobe. Explicit overrides are used as
// given; otherwise a binary sitting next to the executable is preferred over
// a $PATH lookup.
func LocateBinaries(ffmpegOverride, ffprobeOverride string) Binaries {
	dir := ""
	if exe, err := os.Executable(); err == nil {
		dir = filepath.Dir(exe)
	}
	return Binaries{
		FFmpeg:  findBinary("ffmpeg", ffmpegOverride, dir),
		FFprobe: findBinary("ffprobe", ffprobeOverride, dir),
	}
}

func findBinary(name, override, exeDir string) string {
	if override != "" {
		return override
	}
	file := name
	if runtime.GOOS == "windows" {
		file += ".exe"
	}
	if exeDir != "" {
		local := filepath.Join(exeDir, file)
		if info, err := os.Stat(local); err == nil && !info.IsDir() {
			logging.Debug("Using bundled %s: %s", name, local)
			return local
		}
	}
	return name
}

// Available reports whether a binary can be executed.
func Available(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}
