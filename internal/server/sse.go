package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/pdfua-remediator/internal/pipeline"
)

// Run stream event names
const (
	eventStep     = "step"
	eventComplete = "complete"
	eventError    = "error"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// runStream writes the progress of one run as server-sent events
type runStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// runFailure is the payload of the final "error" event
type runFailure struct {
	RunID string `json:"run_id"`
	State string `json:"state"`
	Error string `json:"error"`
}

// openRunStream commits the response to an event stream. Nothing is written when
// the writer cannot flush, so the caller can still answer with JSON.
func openRunStream(w http.ResponseWriter) (*runStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &runStream{w: w, flusher: flusher}, nil
}

func (rs *runStream) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(rs.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	rs.flusher.Flush()
	return nil
}

// progress forwards one pipeline event
func (rs *runStream) progress(event pipeline.ProgressEvent) error {
	return rs.send(eventStep, event)
}

// fail ends the stream with the state the run had reached
func (rs *runStream) fail(result *pipeline.Result, err error) error {
	return rs.send(eventError, runFailure{
		RunID: result.RunID.String(),
		State: result.State.String(),
		Error: err.Error(),
	})
}

// complete ends the stream with the run outcome
func (rs *runStream) complete(payload runComplete) error {
	return rs.send(eventComplete, payload)
}
