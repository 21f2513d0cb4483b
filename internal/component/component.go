package component

// Spec describes one physical component checked during an inspection.
type Spec struct {
	Name     string
	Display  string
	Critical bool
}

// registry is the fixed set of monitored components. Order matters: critical
// components first, then optional, and every report is rendered in this order.
var registry = []Spec{
	{Name: "etiqueta_visivel", Display: "Etiqueta visível", Critical: true},
	{Name: "tampa_encaixada", Display: "Tampa encaixada", Critical: true},
	{Name: "parafusos_presentes", Display: "Parafusos presentes", Critical: true},
	{Name: "conectores_instalados", Display: "Conectores instalados", Critical: true},
	{Name: "cameras", Display: "Câmeras", Critical: true},
	{Name: "cabeamento", Display: "Cabeamento", Critical: false},
	{Name: "suportes", Display: "Suportes", Critical: false},
}

var byName = func() map[string]Spec {
	m := make(map[string]Spec, len(registry))
	for _, s := range registry {
		m[s.Name] = s
	}
	return m
}()

// Specs returns every component spec in registry order.
func Specs() []Spec {
	out := make([]Spec, len(registry))
	copy(out, registry)
	return out
}

// Names returns every component name in registry order.
func Names() []string {
	out := make([]string, len(registry))
	for i, s := range registry {
		out[i] = s.Name
	}
	return out
}

// CriticalNames returns the names of the critical components in registry order.
func CriticalNames() []string {
	var out []string
	for _, s := range registry {
		if s.Critical {
			out = append(out, s.Name)
		}
	}
	return out
}

// Lookup returns the spec for a component name.
func Lookup(name string) (Spec, bool) {
	s, ok := byName[name]
	return s, ok
}

// Count returns the number of known components.
func Count() int {
	return len(registry)
}
