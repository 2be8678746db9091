package geometry

// Face mesh indices.
const (
	LeftFaceEdge  = 234
	RightFaceEdge = 454
	NoseTip       = 1

	LeftIris  = 468
	RightIris = 473

	LeftEyeInner  = 362
	LeftEyeOuter  = 263
	RightEyeInner = 133
	RightEyeOuter = 33

	LeftEyeUpperLid  = 386
	LeftEyeLowerLid  = 374
	RightEyeUpperLid = 159
	RightEyeLowerLid = 145
)

// Pose indices.
const (
	PoseNose          = 0
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
)

// Eye contours in EAR order: p0 and p3 are the horizontal corners,
// (p1,p5) and (p2,p4) the vertical pairs.
var (
	LeftEyeContour  = [6]int{362, 385, 387, 263, 373, 380}
	RightEyeContour = [6]int{33, 160, 158, 133, 153, 144}
)

// EngagementIndices are the mouth (4), eyebrow (4) and jaw (1) points whose
// frame-to-frame motion measures facial engagement.
var EngagementIndices = [9]int{61, 291, 13, 14, 70, 300, 63, 293, 152}
