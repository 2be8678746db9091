// Package pipeline runs the ordered per-frame analysis stages. Stages share
// a *Context and the first non-Continue result ends the frame.
package pipeline

import (
	"fmt"
	"time"

	"github.com/saturnino-fabrica-de-software/poise/internal/integrity"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider"
)

type Stage struct {
	Name string
	Run  func(*Context) Result
}

// Observer is notified after every stage.
type Observer func(stage string, elapsed time.Duration, r Result)

type Pipeline struct {
	stages   []Stage
	observer Observer
}

type Option func(*Pipeline)

func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// New assembles the standard stage sequence. pose may be nil, in which case
// posture is never scored.
func New(faces provider.FaceMeshDetector, pose provider.PoseDetector, enforcer *integrity.Enforcer, opts ...Option) *Pipeline {
	if enforcer == nil {
		enforcer = integrity.NewEnforcer()
	}
	p := &Pipeline{
		stages: []Stage{
			{Name: StageValidateFrame, Run: validateFrame},
			{Name: StageConvertColor, Run: convertColor},
			{Name: StageDetectFaces, Run: detectFaces(faces, enforcer)},
			{Name: StageEnforceSingleFace, Run: enforceSingleFace(enforcer)},
			{Name: StageExtractLandmarks, Run: extractLandmarks},
			{Name: StageNormalizeFaceSize, Run: normalizeFaceSize},
			{Name: StageEyeContact, Run: analyzeEyeContact},
			{Name: StageFacialExpression, Run: analyzeFacialExpression},
			{Name: StagePosture, Run: analyzePosture(pose)},
			{Name: StageStability, Run: analyzeStability},
			{Name: StageCommit, Run: commitTemporalState},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StageNames lists the stages in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Run executes the stages in order. It returns Continue when every stage
// succeeded, otherwise the terminating result and the stage that produced it.
func (p *Pipeline) Run(pc *Context) (Result, string) {
	for _, stage := range p.stages {
		start := time.Now()
		r := runStage(stage, pc)
		if p.observer != nil {
			p.observer(stage.Name, time.Since(start), r)
		}
		if _, ok := r.(Continue); !ok {
			return r, stage.Name
		}
	}
	return Continue{}, ""
}

// runStage converts a panic into Fail so one bad frame cannot take down the
// connection.
func runStage(stage Stage, pc *Context) (r Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r = Fail{Message: fmt.Sprintf("%s failed: %v", stage.Name, rec)}
		}
	}()
	r = stage.Run(pc)
	if r == nil {
		r = Fail{Message: fmt.Sprintf("%s returned no result", stage.Name)}
	}
	return r
}
