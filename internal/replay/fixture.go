// Package replay feeds scripted landmark sequences through the analyzer,
// for demos and for reproducing scoring behavior without a camera.
package replay

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider/mock"
)

// Fixture is a scripted session.
//
//	session_id: demo
//	frames:
//	  - repeat: 20
//	  - repeat: 3
//	    face: {ear: 0.15}
//	  - repeat: 15
//	    faces: 2
type Fixture struct {
	SessionID string      `yaml:"session_id"`
	Frames    []FrameSpec `yaml:"frames"`
}

// FrameSpec describes Repeat identical frames. Omitted fields keep the
// defaults of an attentive, centered candidate.
type FrameSpec struct {
	Repeat int      `yaml:"repeat"`
	Faces  *int     `yaml:"faces"`
	Face   FaceSpec `yaml:"face"`
	Pose   string   `yaml:"pose"`
	Error  string   `yaml:"error"`
}

type FaceSpec struct {
	EAR      *float64  `yaml:"ear"`
	Width    *float64  `yaml:"width"`
	Iris     []float64 `yaml:"iris"`
	LookAway bool      `yaml:"look_away"`
	Nose     []float64 `yaml:"nose"`
	Features float64   `yaml:"features"`
}

const (
	PoseGood     = "good"
	PoseSlouched = "slouched"
	PoseNone     = "none"
)

// Load decodes and validates a fixture. Unknown keys are rejected.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty fixture")
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	if f.SessionID == "" {
		f.SessionID = "replay"
	}
	if len(f.Frames) == 0 {
		return errors.New("fixture has no frames")
	}
	for i, fr := range f.Frames {
		if fr.Repeat < 0 {
			return fmt.Errorf("frames[%d]: repeat must not be negative", i)
		}
		if fr.Faces != nil && *fr.Faces < 0 {
			return fmt.Errorf("frames[%d]: faces must not be negative", i)
		}
		switch fr.Pose {
		case "", PoseGood, PoseSlouched, PoseNone:
		default:
			return fmt.Errorf("frames[%d]: unknown pose %q", i, fr.Pose)
		}
		if n := len(fr.Face.Iris); n != 0 && n != 2 {
			return fmt.Errorf("frames[%d]: iris needs [dx, dy]", i)
		}
		if n := len(fr.Face.Nose); n != 0 && n != 3 {
			return fmt.Errorf("frames[%d]: nose needs [x, y, z]", i)
		}
	}
	return nil
}

// TotalFrames counts frames after expanding repeats.
func (f *Fixture) TotalFrames() int {
	n := 0
	for _, fr := range f.Frames {
		n += fr.count()
	}
	return n
}

// Steps expands the fixture into one detector step per frame.
func (f *Fixture) Steps() []mock.Step {
	steps := make([]mock.Step, 0, f.TotalFrames())
	for _, fr := range f.Frames {
		step := fr.step()
		for i := 0; i < fr.count(); i++ {
			steps = append(steps, step)
		}
	}
	return steps
}

func (fr FrameSpec) count() int {
	if fr.Repeat == 0 {
		return 1
	}
	return fr.Repeat
}

func (fr FrameSpec) step() mock.Step {
	if fr.Error != "" {
		return mock.Step{FaceErr: errors.New(fr.Error)}
	}

	n := 1
	if fr.Faces != nil {
		n = *fr.Faces
	}
	step := mock.Crowd(n, fr.Face.build())

	switch fr.Pose {
	case PoseSlouched:
		step.Pose = mock.SlouchedPose()
	case PoseNone:
		step.Pose = nil
	}
	return step
}

func (fs FaceSpec) build() domain.FaceLandmarks {
	b := mock.Face()
	if fs.EAR != nil {
		b.EAR(*fs.EAR)
	}
	if fs.Width != nil {
		b.Width(*fs.Width)
	}
	if len(fs.Iris) == 2 {
		b.Iris(fs.Iris[0], fs.Iris[1])
	}
	if fs.LookAway {
		b.LookAway()
	}
	if len(fs.Nose) == 3 {
		b.Nose(fs.Nose[0], fs.Nose[1], fs.Nose[2])
	}
	if fs.Features != 0 {
		b.Features(fs.Features)
	}
	return b.Build()
}
