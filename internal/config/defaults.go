package config

const (
	defaultUploadDir       = "~/.local/share/clipline/uploads"
	defaultProcessedDir    = "~/.local/share/clipline/processed"
	defaultWorkDir         = "~/.local/share/clipline/work"
	defaultLogDir          = "~/.local/share/clipline/logs"
	defaultDataDir         = "~/.local/share/clipline/data"
	defaultAPIBind         = "127.0.0.1:8590"
	defaultFFmpegCommand   = "ffmpeg"
	defaultFFprobeCommand  = "ffprobe"
	defaultFaceDetector    = "facedetect"
	defaultMaxUploadBytes  = 500 * 1024 * 1024
	defaultMinFreeBytes    = 1024 * 1024 * 1024
	defaultProcessedPrefix = "processed_"
	defaultLLMBaseURL      = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel        = "google/gemini-3-flash-preview"
	defaultLLMReferer      = "https://github.com/clipline/clipline"
	defaultLLMTitle        = "Clipline Edit Translator"
	defaultLLMTimeout      = 60
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir:    defaultUploadDir,
			ProcessedDir: defaultProcessedDir,
			WorkDir:      defaultWorkDir,
			LogDir:       defaultLogDir,
			DataDir:      defaultDataDir,
			APIBind:      defaultAPIBind,
		},
		Media: Media{
			FFmpegCommand:       defaultFFmpegCommand,
			FFprobeCommand:      defaultFFprobeCommand,
			FaceDetectorCommand: defaultFaceDetector,
			AllowedExtensions:   []string{"mp4", "avi", "mov", "mkv"},
			MaxUploadBytes:      defaultMaxUploadBytes,
			MinFreeBytes:        defaultMinFreeBytes,
			ProcessedPrefix:     defaultProcessedPrefix,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
