package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/poise/internal/analyzer"
	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/poise/internal/report"
)

// Line is one frame of replay output.
type Line struct {
	Frame    int             `json:"frame"`
	Envelope domain.Envelope `json:"envelope"`
}

// Result holds everything a replay produced.
type Result struct {
	Envelopes []domain.Envelope
	Report    domain.SessionReport
}

// Run analyzes every frame of the fixture and writes one JSON line per
// envelope to w. A nil w discards the lines.
func Run(ctx context.Context, f *Fixture, w io.Writer, logger *slog.Logger) (*Result, error) {
	detector := mock.New(f.Steps()...)
	a := analyzer.New(detector, detector, analyzer.WithLogger(logger))
	reports := report.NewService(nil, report.WithLogger(logger))
	reports.Open(f.SessionID)

	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}

	// The mock ignores pixels; any non-empty frame will do.
	frame := domain.NewFrame(1, 1, 3)
	res := &Result{Envelopes: make([]domain.Envelope, 0, f.TotalFrames())}

	for i := 0; i < f.TotalFrames(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		env := a.ProcessFrame(ctx, f.SessionID, frame)
		reports.Observe(f.SessionID, env)
		res.Envelopes = append(res.Envelopes, env)

		if enc != nil {
			if err := enc.Encode(Line{Frame: i + 1, Envelope: env}); err != nil {
				return nil, fmt.Errorf("write frame %d: %w", i+1, err)
			}
		}
	}

	r, err := reports.Analyze(f.SessionID)
	if err != nil {
		return nil, err
	}
	res.Report = r
	return res, nil
}
