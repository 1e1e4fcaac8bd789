// Package capture runs one listening session at a time and reports its progress.
package capture

import (
	"context"
	"errors"
)

var (
	// ErrCaptureActive is returned by Start while another session is running.
	ErrCaptureActive = errors.New("capture already active")
	// ErrUnsupported is returned by sources that cannot recognise speech on this device.
	ErrUnsupported = errors.New("speech recognition not supported")
)

// Source produces one transcript per call.
type Source interface {
	Capture(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (string, error)

// Capture calls f(ctx).
func (f SourceFunc) Capture(ctx context.Context) (string, error) {
	return f(ctx)
}

// Transcript returns a source that yields text.
func Transcript(text string) Source {
	return SourceFunc(func(context.Context) (string, error) {
		return text, nil
	})
}

// Failed returns a source that fails with err.
func Failed(err error) Source {
	if err == nil {
		err = errors.New("capture failed")
	}
	return SourceFunc(func(context.Context) (string, error) {
		return "", err
	})
}
