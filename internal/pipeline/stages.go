package pipeline

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/eyecontact"
	"github.com/saturnino-fabrica-de-software/poise/internal/geometry"
	"github.com/saturnino-fabrica-de-software/poise/internal/integrity"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider"
	"github.com/saturnino-fabrica-de-software/poise/internal/rules"
)

// Stage names, in execution order.
const (
	StageValidateFrame     = "validate_frame"
	StageConvertColor      = "convert_color"
	StageDetectFaces       = "detect_faces"
	StageEnforceSingleFace = "enforce_single_face"
	StageExtractLandmarks  = "extract_landmarks"
	StageNormalizeFaceSize = "normalize_face_size"
	StageEyeContact        = "eye_contact"
	StageFacialExpression  = "facial_expression"
	StagePosture           = "posture"
	StageStability         = "stability"
	StageCommit            = "commit_temporal_state"
)

func validateFrame(pc *Context) Result {
	f := pc.Frame
	if f == nil {
		return Fail{Message: "Frame is None"}
	}
	if f.Size() == 0 || len(f.Data) == 0 {
		return Fail{Message: "Frame is empty"}
	}
	if f.Channels != 3 {
		return Fail{Message: fmt.Sprintf("Frame must be 3D array (H, W, C) with 3 channels, got shape (%d, %d, %d)", f.Rows, f.Cols, f.Channels)}
	}
	if len(f.Data) != f.Size() {
		return Fail{Message: fmt.Sprintf("Frame data length %d does not match shape (%d, %d, %d)", len(f.Data), f.Rows, f.Cols, f.Channels)}
	}
	return Continue{Data: map[string]any{"frame_shape": [3]int{f.Rows, f.Cols, f.Channels}}}
}

func convertColor(pc *Context) Result {
	pc.RGB = pc.Frame.SwapRB()
	return Continue{}
}

func detectFaces(detector provider.FaceMeshDetector, enforcer *integrity.Enforcer) func(*Context) Result {
	return func(pc *Context) Result {
		faces, err := detector.DetectFaces(pc.Ctx, pc.RGB)
		if err != nil {
			return Fail{Message: fmt.Sprintf("Face detection failed: %v", err)}
		}
		pc.Faces = faces
		pc.FaceCount = len(faces)
		if pc.FaceCount == 0 {
			// A faceless frame still breaks a multi-face streak.
			enforcer.Check(0, pc.Session)
			return Fail{Message: "No face detected"}
		}
		return Continue{Data: map[string]any{"face_count": pc.FaceCount}}
	}
}

func enforceSingleFace(enforcer *integrity.Enforcer) func(*Context) Result {
	return func(pc *Context) Result {
		if reason, cancel := enforcer.Check(pc.FaceCount, pc.Session); cancel {
			return Cancel{Reason: reason}
		}
		return Continue{Data: map[string]any{"face_count": pc.FaceCount}}
	}
}

func extractLandmarks(pc *Context) Result {
	if len(pc.Faces) == 0 {
		return Fail{Message: "No face landmarks available"}
	}
	lm := pc.Faces[0]
	if len(lm) < domain.RefinedMeshPoints {
		return Fail{Message: fmt.Sprintf("Face mesh has %d landmarks, need %d", len(lm), domain.RefinedMeshPoints)}
	}
	for i := range lm {
		if !rules.IsValidLandmark(&lm[i]) {
			return Fail{Message: fmt.Sprintf("Invalid landmark at index %d", i)}
		}
	}
	pc.Landmarks = lm
	return Continue{Data: map[string]any{"landmark_count": len(lm)}}
}

func normalizeFaceSize(pc *Context) Result {
	fw, err := geometry.FaceWidth(pc.Landmarks)
	if err != nil {
		return Fail{Message: fmt.Sprintf("Failed to compute face width: %v", err)}
	}
	if !rules.IsValidFaceWidth(fw) {
		return Fail{Message: fmt.Sprintf("Invalid face width: %v", fw)}
	}
	pc.FaceWidth = fw
	pc.Session.FaceWidthHistory = append(pc.Session.FaceWidthHistory, fw)
	return Continue{Data: map[string]any{"face_width": fw}}
}

func analyzeEyeContact(pc *Context) Result {
	m, err := eyecontact.Evaluate(pc.Landmarks, pc.FaceWidth)
	if err != nil {
		return Fail{Message: fmt.Sprintf("Failed to analyze eye contact: %v", err)}
	}
	if m.Blink {
		return Skip{Reason: domain.ReasonBlinkDetected}
	}
	eyecontact.Record(pc.Session, m.TowardCamera)
	pc.Eye = &m
	return Continue{Data: map[string]any{"gaze_detected": m.TowardCamera, "ear": m.EAR}}
}

func analyzeFacialExpression(pc *Context) Result {
	if !pc.Session.HasPreviousFrame() {
		return Continue{Data: map[string]any{"engagement": nil, "reason": "first_frame"}}
	}
	v, err := geometry.LandmarkSetVariance(pc.Landmarks, pc.Session.PreviousLandmarks, pc.FaceWidth)
	if err != nil {
		return Fail{Message: fmt.Sprintf("Failed to analyze facial expression: %v", err)}
	}
	pc.Session.FacialEngagementScores = append(pc.Session.FacialEngagementScores, v)
	pc.Engagement = &v
	return Continue{Data: map[string]any{"engagement": v}}
}

func analyzePosture(detector provider.PoseDetector) func(*Context) Result {
	return func(pc *Context) Result {
		if detector == nil {
			return Continue{Data: map[string]any{"posture_score": nil, "reason": "no_pose_detector"}}
		}
		pose, err := detector.DetectPose(pc.Ctx, pc.RGB)
		if err != nil {
			return Fail{Message: fmt.Sprintf("Failed to analyze posture: %v", err)}
		}
		if len(pose) <= geometry.PoseRightShoulder {
			return Continue{Data: map[string]any{"posture_score": nil, "reason": "no_pose_detected"}}
		}
		pc.Pose = pose

		nose := pose[geometry.PoseNose]
		ls := pose[geometry.PoseLeftShoulder]
		rs := pose[geometry.PoseRightShoulder]

		alignment, err := geometry.Normalize(abs(nose.X-(ls.X+rs.X)/2), pc.FaceWidth, "posture_alignment")
		if err != nil {
			return Fail{Message: fmt.Sprintf("Failed to analyze posture: %v", err)}
		}
		tilt, err := geometry.Normalize(abs(ls.Y-rs.Y), pc.FaceWidth, "posture_alignment")
		if err != nil {
			return Fail{Message: fmt.Sprintf("Failed to analyze posture: %v", err)}
		}

		good := alignment < rules.PostureAlignmentMax && tilt < rules.PostureTiltMax
		score := rules.PostureBadScore
		if good {
			score = rules.PostureGoodScore
		}
		pc.Session.PostureScores = append(pc.Session.PostureScores, score)
		pc.Posture = &score
		return Continue{Data: map[string]any{
			"posture_score":        score,
			"is_good_posture":      good,
			"normalized_alignment": alignment,
			"normalized_tilt":      tilt,
		}}
	}
}

func analyzeStability(pc *Context) Result {
	if pc.Session.PreviousNosePos == nil {
		return Continue{Data: map[string]any{"stability_score": nil, "reason": "first_frame"}}
	}
	d, err := geometry.NoseDisplacement(pc.Landmarks[geometry.NoseTip], pc.Session.PreviousNosePos, pc.FaceWidth)
	if err != nil {
		return Fail{Message: fmt.Sprintf("Failed to analyze stability: %v", err)}
	}
	score := rules.ClampScore((1 - min(1, d*rules.StabilityScale)) * 100)
	pc.Session.StabilityScores = append(pc.Session.StabilityScores, score)
	pc.Stability = &score
	return Continue{Data: map[string]any{"stability_score": score}}
}

func commitTemporalState(pc *Context) Result {
	nose := pc.Landmarks[geometry.NoseTip]
	pc.Session.PreviousLandmarks = pc.Landmarks
	pc.Session.PreviousNosePos = []float64{nose.X, nose.Y, nose.Z}
	return Continue{Data: map[string]any{"state_updated": true}}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
