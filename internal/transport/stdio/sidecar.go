package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/internal/service/audit"
	"github.com/sandevgo/tuskheart/internal/service/emotion"
	"github.com/sandevgo/tuskheart/pkg/log"
	"github.com/sandevgo/tuskheart/pkg/srv"
)

const maxLineBytes = 64 * 1024

type Composer interface {
	Compose(ctx context.Context, req emotion.Request) (string, bool)
}

// Request is one line of input from the host chat process.
type Request struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
	Crisis   bool   `json:"crisis"`
	Trigger  string `json:"trigger,omitempty"`
}

// Response is one line of output. Context is empty whenever OK is false.
type Response struct {
	Context string `json:"context"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Sidecar answers line-delimited JSON compose requests. Malformed or
// oversized lines get an error response; the loop itself only ends on EOF or
// cancellation.
type Sidecar struct {
	composer Composer
	in       io.Reader
	out      io.Writer
}

func NewSidecar(composer Composer, in io.Reader, out io.Writer) *Sidecar {
	return &Sidecar{composer: composer, in: in, out: out}
}

// inputLine is one line read from the host. Oversized lines arrive with
// tooLong set and no text.
type inputLine struct {
	text    string
	tooLong bool
}

func (s *Sidecar) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("stdio sidecar started")

	lines := make(chan inputLine)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		r := bufio.NewReaderSize(s.in, 4096)
		for {
			line, err := readLine(r, maxLineBytes)
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
					return ctx.Err()
				}
				logger.Info().Msg("stdio sidecar input closed")
				return srv.ErrStopped
			}

			var resp Response
			switch {
			case line.tooLong:
				logger.Warn().Int("limit", maxLineBytes).Msg("sidecar request exceeds line limit")
				resp = Response{Error: "malformed request"}
			case line.text == "":
				continue
			default:
				resp = s.handle(ctx, line.text)
			}
			if err := s.write(resp); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
	}
}

// readLine reads up to the next newline. A line longer than limit is
// consumed to its end and reported as too long, so the stream stays in sync.
func readLine(r *bufio.Reader, limit int) (inputLine, error) {
	var buf []byte
	var line inputLine
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			// a final line without a newline has already been returned by ReadLine
			if errors.Is(err, io.EOF) && (len(buf) > 0 || line.tooLong) {
				break
			}
			return inputLine{}, err
		}
		if !line.tooLong {
			if len(buf)+len(chunk) > limit {
				line.tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	line.text = string(buf)
	return line, nil
}

func (s *Sidecar) Shutdown(ctx context.Context) error {
	return nil
}

func (s *Sidecar) handle(ctx context.Context, line string) Response {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("malformed sidecar request")
		return Response{Error: "malformed request"}
	}

	trigger := audit.Trigger(req.Trigger)
	if trigger == "" {
		trigger = audit.TriggerChatTurn
	}

	text, ok := s.composer.Compose(ctx, emotion.Request{
		Subject:      core.Subject{UserID: req.UserID, DeviceID: req.DeviceID},
		IsCrisisMode: req.Crisis,
		Trigger:      trigger,
	})
	return Response{Context: text, OK: ok}
}

func (s *Sidecar) write(resp Response) error {
	return json.NewEncoder(s.out).Encode(resp)
}
