package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// remoteSink pushes every event to a Loki-compatible endpoint in the
// background.
type remoteSink struct {
	uri     string
	job     string
	client  *http.Client
	errOut  io.Writer
	pending sync.WaitGroup
}

func newRemoteSink(uri, job string) *remoteSink {
	if job == "" {
		job = "simple-shop"
	}
	return &remoteSink{
		uri:    uri,
		job:    job,
		client: &http.Client{Timeout: 5 * time.Second},
		errOut: os.Stderr,
	}
}

// send delivers the entry in background
func (s *remoteSink) send(level, message string, attrs []slog.Attr) {
	entry := buildLogEntry(s.job, level, message, time.Now(), attrs)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		jsonData, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(s.errOut, "Failed to marshal for remote log entry: %v\n", err)
			return
		}

		req, err := http.NewRequest(http.MethodPost, s.uri, bytes.NewBuffer(jsonData))
		if err != nil {
			fmt.Fprintf(s.errOut, "Failed to create request for remote log: %v\n", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			fmt.Fprintf(s.errOut, "Failed to send to remote log: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			fmt.Fprintf(s.errOut, "Remote log returned error status: %d\n", resp.StatusCode)
		}
	}()
}

func (s *remoteSink) wait() {
	s.pending.Wait()
}
