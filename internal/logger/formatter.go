package logger

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"
)

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// buildLogEntry wraps one event in the Loki push format.
func buildLogEntry(job, level, message string, at time.Time, attrs []slog.Attr) lokiPush {
	return lokiPush{
		Streams: []lokiStream{{
			Stream: map[string]string{
				"level": level,
				"job":   job,
			},
			Values: [][2]string{{
				strconv.FormatInt(at.UnixNano(), 10),
				buildLogLine(level, message, at, attrs),
			}},
		}},
	}
}

// buildLogLine renders the same shape as the local JSON sink.
func buildLogLine(level, message string, at time.Time, attrs []slog.Attr) string {
	logData := map[string]any{
		"level":     level,
		"message":   message,
		"timestamp": at.Format(time.RFC3339Nano),
	}
	for _, attr := range attrs {
		logData[attr.Key] = attr.Value.Resolve().Any()
	}

	jsonBytes, err := json.Marshal(logData)
	if err != nil {
		return message
	}
	return string(jsonBytes)
}
