package dataset

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veyra/abyss/parameter"
)

// Status is the backend's health snapshot
type Status struct {
	Up            bool   `json:"up"`
	ActiveRenders int    `json:"active_renders"`
	Progress      string `json:"progress,omitempty"`
}

// StatusPoller polls the backend /status endpoint on a fixed period and
// posts snapshots to the frame loop. A failed poll posts Up=false so the
// UI can show the backend as unreachable instead of going stale
type StatusPoller struct {
	base string
	hc   *http.Client
	log  *logrus.Logger
}

// NewStatusPoller creates a poller against a backend base URL
func NewStatusPoller(log *logrus.Logger, base string) *StatusPoller {
	return &StatusPoller{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 5 * time.Second},
		log:  log,
	}
}

// Run polls until ctx is cancelled. Snapshots that cannot be delivered
// immediately are dropped; only the freshest one matters
func (p *StatusPoller) Run(ctx context.Context, out chan<- Status) {
	ticker := time.NewTicker(parameter.StatusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := p.poll(ctx)
			select {
			case out <- st:
			default:
			}
		}
	}
}

func (p *StatusPoller) poll(ctx context.Context) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/status", nil)
	if err != nil {
		return Status{}
	}
	resp, err := p.hc.Do(req)
	if err != nil {
		return Status{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{}
	}
	var st Status
	if err := json.Unmarshal(b, &st); err != nil {
		p.log.WithError(err).Debug("status decode failed")
		return Status{}
	}
	return st
}
