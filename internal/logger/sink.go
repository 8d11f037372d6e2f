package logger

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	SinkConsole = "console"
	SinkStderr  = "stderr"
	SinkFile    = "file"
	SinkRemote  = "remote"
)

// Rotation defaults for the file sink.
const (
	fileMaxSizeMB  = 100
	fileMaxBackups = 3
	fileMaxAgeDays = 28
)

func openSink(name string, cfg Config) (io.Writer, io.Closer, error) {
	switch name {
	case SinkConsole, "stdout":
		return os.Stdout, nil, nil
	case SinkStderr:
		return os.Stderr, nil, nil
	case SinkFile:
		if cfg.FilePath == "" {
			return nil, nil, errors.New("file sink requires a file path")
		}
		w := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
		}
		return w, w, nil
	}
	return nil, nil, fmt.Errorf("unknown log sink %q", name)
}
