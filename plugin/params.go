package plugin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMissingParameter = errors.New("plugin: missing required parameter")

// Parameter describes one plugin parameter.
type Parameter struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Default     string   `json:"default,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

// Schema lists the parameters of a plugin.
type Schema []Parameter

// Lookup returns the named parameter.
func (s Schema) Lookup(name string) (Parameter, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Resolve validates vals against the schema and returns a copy with
// defaults filled in. Unknown parameters are rejected.
func (s Schema) Resolve(vals Values) (Values, error) {
	out := make(Values, len(s))
	for k, v := range vals {
		if _, ok := s.Lookup(k); !ok {
			return nil, fmt.Errorf("plugin: unknown parameter %q", k)
		}
		out[k] = v
	}
	for _, p := range s {
		v, ok := out[p.Name]
		if !ok || v == "" {
			v = p.Default
		}
		if v == "" && p.Required {
			return nil, fmt.Errorf("%w: %q", ErrMissingParameter, p.Name)
		}
		if v != "" && len(p.Choices) != 0 && !contains(p.Choices, v) {
			return nil, fmt.Errorf("plugin: parameter %q: %q is not one of %s", p.Name, v, strings.Join(p.Choices, ", "))
		}
		out[p.Name] = v
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Values holds parameter values by name.
type Values map[string]string

// Get returns the value of a parameter, or "".
func (v Values) Get(name string) string { return v[name] }

// Int returns the value of a parameter as an integer.
func (v Values) Int(name string) (int, error) {
	s := strings.TrimSpace(v[name])
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("plugin: parameter %q: %q is not an integer", name, s)
	}
	return n, nil
}

// Bool returns the value of a parameter as a boolean. An empty value is false.
func (v Values) Bool(name string) (bool, error) {
	s := strings.TrimSpace(v[name])
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("plugin: parameter %q: %q is not a boolean", name, s)
	}
	return b, nil
}

// List splits a comma separated parameter, dropping empty items.
func (v Values) List(name string) []string {
	var out []string
	for _, s := range strings.Split(v[name], ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
