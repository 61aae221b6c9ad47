package pipeline

// Info describes one registered pass for telemetry/labeling purposes --
// this engine has no UI, only a telemetry trace that wants
// human-readable pass names.
type Info struct {
	ID          string
	Name        string
	Description string
}

// Registry centralizes pass metadata so telemetry output and the
// pipeline's own pass list stay in sync.
type Registry struct {
	infos []Info
	byID  map[string]Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Info)}
}

// Register adds (or replaces) one pass's metadata.
func (r *Registry) Register(info Info) {
	if _, exists := r.byID[info.ID]; !exists {
		r.infos = append(r.infos, info)
	} else {
		for i := range r.infos {
			if r.infos[i].ID == info.ID {
				r.infos[i] = info
			}
		}
	}
	r.byID[info.ID] = info
}

// Get returns a pass's metadata by id.
func (r *Registry) Get(id string) (Info, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// All returns every registered pass's metadata, in registration order.
func (r *Registry) All() []Info {
	return append([]Info(nil), r.infos...)
}
