// Package publish delivers the finished JSON report to its configured
// destinations.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/alitto/pond"
)

// A Sink is one destination for the JSON report document.
type Sink interface {
	Name() string
	Publish(ctx context.Context, doc []byte) error
}

// PublishAll fans the document out to every sink over a small worker pool
// and collects the failures. One slow or broken sink never blocks the rest.
func PublishAll(ctx context.Context, sinks []Sink, doc []byte) error {
	pool := pond.New(4, len(sinks))

	var mu sync.Mutex
	var errs []error
	for _, s := range sinks {
		s := s
		pool.Submit(func() {
			if err := s.Publish(ctx, doc); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
				mu.Unlock()
			}
		})
	}
	pool.StopAndWait()
	return errors.Join(errs...)
}

// ScreenSink writes the document to a writer (normally stdout).
type ScreenSink struct {
	W io.Writer
}

func (s *ScreenSink) Name() string { return "screen" }

func (s *ScreenSink) Publish(_ context.Context, doc []byte) error {
	_, err := s.W.Write(append(doc, '\n'))
	return err
}

// FileSink writes the document to a local path.
type FileSink struct {
	Path string
}

func (s *FileSink) Name() string { return "file " + s.Path }

func (s *FileSink) Publish(_ context.Context, doc []byte) error {
	return os.WriteFile(s.Path, doc, 0o644)
}

// HTTPSink POSTs the document to a URL.
type HTTPSink struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSink) Name() string { return "url " + s.URL }

func (s *HTTPSink) Publish(ctx context.Context, doc []byte) error {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(doc))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
