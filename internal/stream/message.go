package stream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/RishiKendai/fpsim/internal/models"
)

// ErrInvalidMessage marks messages that can never be processed
var ErrInvalidMessage = errors.New("invalid stream message")

// StreamMessage is a raw entry read from the snapshot stream
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseSnapshotMessage decodes a stream entry into a snapshot. Missing
// optional fields take their zero value; capturedAt defaults to now.
func ParseSnapshotMessage(msg *StreamMessage) (*models.StoredSnapshot, error) {
	visitorID := strings.TrimSpace(msg.Fields["visitorId"])
	if visitorID == "" {
		return nil, fmt.Errorf("%w: missing visitorId", ErrInvalidMessage)
	}

	raw, ok := msg.Fields["fingerprint"]
	if !ok || raw == "" {
		return nil, fmt.Errorf("%w: missing fingerprint", ErrInvalidMessage)
	}

	snapshot := &models.StoredSnapshot{
		VisitorID: visitorID,
		SessionID: msg.Fields["sessionId"],
		UserAgent: msg.Fields["userAgent"],
		Platform:  msg.Fields["platform"],
	}
	if err := json.Unmarshal([]byte(raw), &snapshot.Fingerprint); err != nil {
		return nil, fmt.Errorf("%w: fingerprint: %v", ErrInvalidMessage, err)
	}

	if raw := msg.Fields["behavioral"]; raw != "" {
		var behavioral models.BehavioralSnapshot
		if err := json.Unmarshal([]byte(raw), &behavioral); err != nil {
			return nil, fmt.Errorf("%w: behavioral: %v", ErrInvalidMessage, err)
		}
		snapshot.Behavioral = &behavioral
	}

	if raw := msg.Fields["sessionCount"]; raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("%w: sessionCount %q", ErrInvalidMessage, raw)
		}
		snapshot.SessionCount = count
	}

	snapshot.CapturedAt = time.Now().UTC()
	if raw := msg.Fields["capturedAt"]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: capturedAt %q", ErrInvalidMessage, raw)
		}
		snapshot.CapturedAt = time.UnixMilli(ms).UTC()
	}

	if raw := msg.Fields["environmentChange"]; raw != "" {
		changed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: environmentChange %q", ErrInvalidMessage, raw)
		}
		snapshot.EnvironmentChange = changed
	}

	return snapshot, nil
}
