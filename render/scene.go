package render

// Scene is the ordered set of meshes a renderer draws. Earlier meshes are
// drawn first.
type Scene struct {
	meshes []*Mesh
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) Add(m *Mesh) {
	if s == nil || m == nil {
		return
	}
	s.meshes = append(s.meshes, m)
}

func (s *Scene) Remove(m *Mesh) bool {
	if s == nil {
		return false
	}
	for i, existing := range s.meshes {
		if existing == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Scene) Meshes() []*Mesh {
	if s == nil {
		return nil
	}
	return s.meshes
}

func (s *Scene) Clear() {
	if s == nil {
		return
	}
	s.meshes = nil
}
