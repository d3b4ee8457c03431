package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	stderrors "github.com/standardbeagle/shardidx/internal/errors"
)

// LoadKDL reads a .shardidx.kdl file from path, returning Defaults() if the
// file does not exist. A parse error is reported as a ConfigError rather
// than silently falling back, since a present-but-broken file is almost
// always a typo the operator wants surfaced.
func LoadKDL(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, stderrors.NewFileError("read", path, err)
	}

	cfg := Defaults()
	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, stderrors.NewConfigError(path, "", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "mapper":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "num_reducers":
					if v, ok := firstIntArg(cn); ok {
						cfg.NumReducers = uint32(v)
					}
				case "mem_limit_kb":
					if v, ok := firstIntArg(cn); ok {
						cfg.MemLimitKB = uint64(v)
					}
				case "buffer_size_bytes":
					if v, ok := firstIntArg(cn); ok {
						cfg.BufferSizeBytes = v
					}
				}
			}
		case "corpus":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "include":
					cfg.Include = append(cfg.Include, collectStringArgs(cn)...)
				case "exclude":
					cfg.Exclude = append(cfg.Exclude, collectStringArgs(cn)...)
				}
			}
		}
	}

	if err := (Validator{}).ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// FieldOverride sets one field, named by its KDL key (num_reducers,
// mem_limit_kb or buffer_size_bytes), from a decimal string, layered on top
// of whatever LoadKDL already resolved. cmd/mapper uses it to apply its
// num-reducers and kb-mem-limit positional arguments.
func (cfg *Config) FieldOverride(key, value string) error {
	switch key {
	case "num_reducers":
		n, err := parseUint(value)
		if err != nil {
			return stderrors.NewConfigError(key, value, err)
		}
		cfg.NumReducers = uint32(n)
	case "mem_limit_kb":
		n, err := parseUint(value)
		if err != nil {
			return stderrors.NewConfigError(key, value, err)
		}
		cfg.MemLimitKB = n
	case "buffer_size_bytes":
		n, err := parseUint(value)
		if err != nil {
			return stderrors.NewConfigError(key, value, err)
		}
		cfg.BufferSizeBytes = int(n)
	default:
		return stderrors.NewConfigError(key, value, fmt.Errorf("unknown override key"))
	}
	return nil
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
