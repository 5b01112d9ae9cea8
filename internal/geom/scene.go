package geom

// Scene is the top-level container of objects the propagation engine
// traces rays through. Sources and the listener live one layer up (in
// package world); Scene itself only knows about static-per-frame
// geometry plus the global speed of sound used to convert distance into
// travel time.
type Scene struct {
	Objects      []*Object
	SpeedOfSound float64

	topLevel *bvhNode
}

// DefaultSpeedOfSound is dry air at roughly room temperature, in meters
// per second.
const DefaultSpeedOfSound = 343.0

// NewScene builds an empty scene with the default speed of sound.
func NewScene() *Scene {
	return &Scene{SpeedOfSound: DefaultSpeedOfSound}
}

// AddObject appends an object and invalidates the top-level BVH; callers
// must call Rebuild before the next trace.
func (s *Scene) AddObject(o *Object) {
	s.Objects = append(s.Objects, o)
	s.topLevel = nil
}

// Rebuild reconstructs the top-level BVH over object instance bounds.
// Called once per frame after objects move.
func (s *Scene) Rebuild() {
	bounds := make([]AABB, len(s.Objects))
	for i, o := range s.Objects {
		bounds[i] = o.WorldAABB()
	}
	s.topLevel = BuildBVH(len(s.Objects), func(i int) AABB { return bounds[i] })
}

// VisitObjects walks the top-level BVH, invoking visit once per object
// whose bounds the ray may intersect within [tMin, tMax]. Callers refine
// with per-triangle tests via Object.Mesh.VisitTriangles. Rebuild must
// have been called at least once since the last AddObject.
func (s *Scene) VisitObjects(origin, dir Vec3, tMin, tMax float64, visit func(obj *Object)) {
	if s.topLevel == nil {
		s.Rebuild()
	}
	invDir := Vec3{X: safeInv(dir.X), Y: safeInv(dir.Y), Z: safeInv(dir.Z)}
	s.topLevel.Visit(origin, invDir, tMin, tMax, func(i int) {
		visit(s.Objects[i])
	})
}

// TravelTime converts a distance in meters to a travel time in seconds
// at the scene's current speed of sound.
func (s *Scene) TravelTime(distance float64) float64 {
	if s.SpeedOfSound <= 0 {
		return 0
	}
	return distance / s.SpeedOfSound
}
