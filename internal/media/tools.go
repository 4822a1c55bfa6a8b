package media

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tool is an external binary located at startup.
type Tool struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Available bool   `json:"available"`
}

// DisplayPath returns the path or "Not found".
func (t Tool) DisplayPath() string {
	if !t.Available {
		return "Not found"
	}
	return t.Path
}

// Toolset is the result of one probe.
type Toolset struct {
	FFmpeg    Tool `json:"ffmpeg"`
	Tesseract Tool `json:"tesseract"`
}

var ffmpegCandidates = []string{
	`C:\FFMPEG\ffmpeg\bin\ffmpeg.exe`,
	`C:\ffmpeg\bin\ffmpeg.exe`,
	`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
	"/usr/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
	"/opt/homebrew/bin/ffmpeg",
}

var tesseractCandidates = []string{
	`C:\Program Files\Tesseract-OCR\tesseract.exe`,
	`C:\Program Files (x86)\Tesseract-OCR\tesseract.exe`,
	"/usr/bin/tesseract",
	"/usr/local/bin/tesseract",
	"/opt/homebrew/bin/tesseract",
}

// ProbeTools locates ffmpeg and tesseract. Overrides win when they point at a
// file; otherwise PATH is searched, then the known install locations.
func ProbeTools(ffmpegOverride, tesseractOverride string) Toolset {
	return Toolset{
		FFmpeg:    locate("ffmpeg", ffmpegOverride, ffmpegCandidates),
		Tesseract: locate("tesseract", tesseractOverride, tesseractCandidates),
	}
}

func locate(name, override string, candidates []string) Tool {
	tool := Tool{Name: name}

	if override = strings.TrimSpace(override); override != "" {
		if isFile(override) {
			tool.Path = override
			tool.Available = true
			return tool
		}
		if resolved, err := exec.LookPath(override); err == nil {
			tool.Path = resolved
			tool.Available = true
			return tool
		}
	}

	if resolved, err := exec.LookPath(name); err == nil {
		tool.Path = resolved
		tool.Available = true
		return tool
	}

	for _, candidate := range candidates {
		if isFile(candidate) {
			tool.Path = filepath.Clean(candidate)
			tool.Available = true
			return tool
		}
	}
	return tool
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
