package mock

import (
	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/geometry"
)

// Synthetic geometry: every point rests at (0.5, 0.5, 0) except the ones
// the analyzers read. Eyes span 0.06 horizontally, so a lid offset a gives
// EAR = a / 0.03.
const (
	eyeHalfSpan    = 0.03
	leftEyeX       = 0.55
	rightEyeX      = 0.45
	eyeY           = 0.45
	faceLeftX      = 0.4
	DefaultWidth   = 0.25
	DefaultOpenEAR = 0.3
)

// FaceBuilder produces deterministic refined face meshes.
type FaceBuilder struct {
	ear       float64
	width     float64
	irisDX    float64
	irisDY    float64
	nose      domain.Point
	featureDY float64
}

// Face starts from an open-eyed, centered face of width 0.25 looking at the camera.
func Face() *FaceBuilder {
	return &FaceBuilder{
		ear:   DefaultOpenEAR,
		width: DefaultWidth,
		nose:  domain.Point{X: 0.5, Y: 0.5},
	}
}

// EAR sets the eye aspect ratio of both eyes.
func (b *FaceBuilder) EAR(ear float64) *FaceBuilder {
	b.ear = ear
	return b
}

// Width sets the lateral face width.
func (b *FaceBuilder) Width(w float64) *FaceBuilder {
	b.width = w
	return b
}

// LookAway shifts both irises sideways far enough to leave the gaze window.
func (b *FaceBuilder) LookAway() *FaceBuilder {
	b.irisDX = 0.02
	return b
}

// Iris offsets both irises from the eye centers.
func (b *FaceBuilder) Iris(dx, dy float64) *FaceBuilder {
	b.irisDX, b.irisDY = dx, dy
	return b
}

// Nose places the nose tip.
func (b *FaceBuilder) Nose(x, y, z float64) *FaceBuilder {
	b.nose = domain.Point{X: x, Y: y, Z: z}
	return b
}

// Features moves the mouth, eyebrow and jaw points vertically by dy.
func (b *FaceBuilder) Features(dy float64) *FaceBuilder {
	b.featureDY = dy
	return b
}

func (b *FaceBuilder) Build() domain.FaceLandmarks {
	lm := make(domain.FaceLandmarks, domain.RefinedMeshPoints)
	for i := range lm {
		lm[i] = domain.Point{X: 0.5, Y: 0.5}
	}

	lm[geometry.LeftFaceEdge] = domain.Point{X: faceLeftX, Y: 0.5}
	lm[geometry.RightFaceEdge] = domain.Point{X: faceLeftX + b.width, Y: 0.5}
	lm[geometry.NoseTip] = b.nose

	for _, idx := range geometry.EngagementIndices {
		lm[idx] = domain.Point{X: 0.5, Y: 0.5 + b.featureDY}
	}

	lid := b.ear * eyeHalfSpan
	step := lid * 1e-15
	for i := 0; i < 32; i++ {
		placeEye(lm, geometry.LeftEyeContour, leftEyeX-eyeHalfSpan, lid)
		placeEye(lm, geometry.RightEyeContour, rightEyeX-eyeHalfSpan, lid)
		// Rounding can leave the measured EAR a few ulps under the request,
		// which flips threshold cases; widen the lids until it is not.
		if b.ear <= 0 || meanEAR(lm) >= b.ear {
			break
		}
		lid += step
		step *= 2
	}

	lm[geometry.LeftEyeUpperLid] = domain.Point{X: leftEyeX, Y: eyeY - lid}
	lm[geometry.LeftEyeLowerLid] = domain.Point{X: leftEyeX, Y: eyeY + lid}
	lm[geometry.RightEyeUpperLid] = domain.Point{X: rightEyeX, Y: eyeY - lid}
	lm[geometry.RightEyeLowerLid] = domain.Point{X: rightEyeX, Y: eyeY + lid}

	lm[geometry.LeftIris] = domain.Point{X: leftEyeX + b.irisDX, Y: eyeY + b.irisDY}
	lm[geometry.RightIris] = domain.Point{X: rightEyeX + b.irisDX, Y: eyeY + b.irisDY}

	return lm
}

func meanEAR(lm domain.FaceLandmarks) float64 {
	var sum float64
	for _, contour := range [][6]int{geometry.LeftEyeContour, geometry.RightEyeContour} {
		pts, err := geometry.EyePoints(lm, contour)
		if err != nil {
			return 0
		}
		ear, err := geometry.EyeAspectRatio(pts)
		if err != nil {
			return 0
		}
		sum += ear
	}
	return sum / 2
}

// placeEye lays a contour left to right: p0 and p3 are the corners, p1/p2
// sit above and p5/p4 below at the given lid offset.
func placeEye(lm domain.FaceLandmarks, contour [6]int, left, lid float64) {
	span := 2 * eyeHalfSpan
	x0, x1, x2, x3 := left, left+span/3, left+2*span/3, left+span
	lm[contour[0]] = domain.Point{X: x0, Y: eyeY}
	lm[contour[1]] = domain.Point{X: x1, Y: eyeY - lid}
	lm[contour[2]] = domain.Point{X: x2, Y: eyeY - lid}
	lm[contour[3]] = domain.Point{X: x3, Y: eyeY}
	lm[contour[4]] = domain.Point{X: x2, Y: eyeY + lid}
	lm[contour[5]] = domain.Point{X: x1, Y: eyeY + lid}
}

// GoodPose is an upright pose with level shoulders centered under the nose.
func GoodPose() domain.PoseLandmarks {
	return pose(domain.Point{X: 0.5, Y: 0.4}, domain.Point{X: 0.4, Y: 0.8}, domain.Point{X: 0.6, Y: 0.8})
}

// SlouchedPose leans the head well off the shoulder center.
func SlouchedPose() domain.PoseLandmarks {
	return pose(domain.Point{X: 0.6, Y: 0.4}, domain.Point{X: 0.4, Y: 0.8}, domain.Point{X: 0.6, Y: 0.85})
}

func pose(nose, left, right domain.Point) domain.PoseLandmarks {
	p := make(domain.PoseLandmarks, domain.PosePoints)
	for i := range p {
		p[i] = domain.Point{X: 0.5, Y: 0.5}
	}
	p[geometry.PoseNose] = nose
	p[geometry.PoseLeftShoulder] = left
	p[geometry.PoseRightShoulder] = right
	return p
}
