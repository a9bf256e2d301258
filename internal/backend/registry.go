package backend

import (
	"sort"
	"strconv"
	"strings"
)

// ParamType declares the value type of a connection parameter.
type ParamType int

const (
	TypeString ParamType = iota
	TypeInt
	TypeBool
)

// Driver is one registry entry: the declared connection parameters of a
// backend and its constructor.
type Driver struct {
	// Params maps the accepted parameter names to their types.
	Params map[string]ParamType

	// Open connects with already-validated, typed parameters.
	Open func(params map[string]any) (Backend, error)
}

// backends maps identifiers to backend drivers. Populated once here;
// treated as immutable afterwards. Extend by adding an entry.
var backends = map[string]Driver{
	"mysql":    mysqlDriver,
	"sqlite":   sqliteDriver,
	"postgres": postgresDriver,
	"mssql":    mssqlDriver,
	"oracle":   oracleDriver,
}

// Ensure interface implementation
var _ Backend = (*mysqlBackend)(nil)
var _ Backend = (*sqliteBackend)(nil)
var _ Backend = (*postgresBackend)(nil)
var _ Backend = (*mssqlBackend)(nil)
var _ Backend = (*oracleBackend)(nil)

// Lookup resolves a backend identifier. An unknown identifier is a usage
// error.
func Lookup(name string) (Driver, error) {
	d, ok := backends[name]
	if !ok {
		return Driver{}, usagef("unrecognized backend %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names lists the registered backend identifiers, sorted.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseSpec parses a connection parameter string of the form
//
//	backend:key=value:key=value:…
//
// where the accepted keys and value types come from the named backend's
// declared parameter table. It returns the backend identifier and the
// typed parameters. All failures are usage errors raised before any
// connection attempt.
//
// The "create" parameter is rejected by policy even where a backend
// declares it: bulk-load destinations must already exist.
func ParseSpec(spec string) (string, map[string]any, error) {
	items := strings.Split(spec, ":")
	name := items[0]
	if name == "" {
		return "", nil, usagef("connection spec %q is missing a backend identifier", spec)
	}
	driver, err := Lookup(name)
	if err != nil {
		return "", nil, err
	}

	params := make(map[string]any)
	var unrecognized []string
	for _, item := range items[1:] {
		keyword, value, ok := strings.Cut(item, "=")
		if !ok {
			return "", nil, usagef("malformed connection parameter %q (want key=value)", item)
		}
		ptype, declared := driver.Params[keyword]
		if !declared || keyword == "create" {
			unrecognized = append(unrecognized, keyword)
			continue
		}
		typed, err := convertParam(ptype, value)
		if err != nil {
			return "", nil, usagef("%s parameter %s: %v", name, keyword, err)
		}
		params[keyword] = typed
	}
	if len(unrecognized) != 0 {
		sort.Strings(unrecognized)
		return "", nil, usagef("unrecognized %s connection params %q", name, strings.Join(unrecognized, ","))
	}
	return name, params, nil
}

func convertParam(t ParamType, value string) (any, error) {
	switch t {
	case TypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, usagef("invalid int value %q", value)
		}
		return n, nil
	case TypeBool:
		b, err := parseBool(value)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return value, nil
	}
}

// parseBool interprets common user spellings of a boolean by their first
// character: y/t/1 and n/f/0.
func parseBool(s string) (bool, error) {
	if s != "" {
		switch strings.ToLower(s)[0] {
		case 'y', 't', '1':
			return true, nil
		case 'n', 'f', '0':
			return false, nil
		}
	}
	return false, usagef("invalid bool value %q", s)
}

// parameter accessors used by backend constructors

func strParam(params map[string]any, key, dflt string) string {
	if v, ok := params[key]; ok {
		return v.(string)
	}
	return dflt
}

func intParam(params map[string]any, key string, dflt int) int {
	if v, ok := params[key]; ok {
		return v.(int)
	}
	return dflt
}

func boolParam(params map[string]any, key string, dflt bool) bool {
	if v, ok := params[key]; ok {
		return v.(bool)
	}
	return dflt
}
