package internal

// Param is a single captured path parameter.
type Param struct {
	Key   string
	Value string
}

// Params holds captured path parameters in placeholder declaration order.
type Params []Param

// Get returns the value for key, or an empty string.
func (ps Params) Get(key string) string {
	v, _ := ps.Lookup(key)
	return v
}

// Lookup returns the value for key and whether it was captured.
func (ps Params) Lookup(key string) (string, bool) {
	for _, p := range ps {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns captured values in declaration order.
func (ps Params) Values() []string {
	values := make([]string, len(ps))
	for i, p := range ps {
		values[i] = p.Value
	}
	return values
}

// Map returns the parameters as a map. Order is lost.
func (ps Params) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for _, p := range ps {
		m[p.Key] = p.Value
	}
	return m
}
