package domain

// Point is a normalized landmark coordinate. X and Y are in [0,1] relative
// to the image; Z is relative depth with the same scale as X.
type Point struct {
	X float64 `json:"x" yaml:"x" msgpack:"x"`
	Y float64 `json:"y" yaml:"y" msgpack:"y"`
	Z float64 `json:"z" yaml:"z" msgpack:"z"`
}

// FaceLandmarks is one detected face mesh. A refined mesh has 478 points:
// 468 face points followed by 10 iris points.
type FaceLandmarks []Point

// PoseLandmarks is a body pose. Only nose (0) and shoulders (11, 12) are read.
type PoseLandmarks []Point

// Landmark counts of the refined face mesh.
const (
	FaceMeshPoints    = 468
	RefinedMeshPoints = 478
	PosePoints        = 33
)
