package aiimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dutchcoders/go-clamd"
)

// ErrInfected is returned by a Scanner when the upload is rejected.
var ErrInfected = errors.New("malicious file detected")

// Scanner checks uploads before they leave the service.
type Scanner interface {
	Scan(ctx context.Context, data []byte) error
}

// ClamdScanner streams uploads to a clamd daemon.
type ClamdScanner struct {
	client *clamd.Clamd
}

// NewClamdScanner 使用 tcp://host:port 或 unix socket 地址创建扫描器。
func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{client: clamd.NewClamd(addr)}
}

// Scan fails closed: any status other than OK rejects the file.
func (s *ClamdScanner) Scan(ctx context.Context, data []byte) error {
	abort := make(chan bool)
	defer close(abort)

	results, err := s.client.ScanStream(bytes.NewReader(data), abort)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result, ok := <-results:
			if !ok {
				return nil
			}
			if result.Status != clamd.RES_OK {
				return fmt.Errorf("%w: %s", ErrInfected, result.Description)
			}
		}
	}
}
