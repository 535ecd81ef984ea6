package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Declarations is the content of a declaration file.
type Declarations struct {
	Schema    string                `mapstructure:"schema"`
	Positions []PositionDeclaration `mapstructure:"positions"`
}

// PositionDeclaration declares one polymorphic position.
type PositionDeclaration struct {
	// Name is the field the position is selected on.
	Name string `mapstructure:"name"`
	// Type is the abstract schema type of the field.
	Type       string               `mapstructure:"type"`
	Exhaustive bool                 `mapstructure:"exhaustive"`
	Fallback   string               `mapstructure:"fallback"`
	Variants   []VariantDeclaration `mapstructure:"variants"`
}

type VariantDeclaration struct {
	Type   string   `mapstructure:"type"`
	Fields []string `mapstructure:"fields"`
}

// loadDeclarations reads the declaration file set on v. A relative schema
// path is resolved against the directory of the file.
func loadDeclarations(v *viper.Viper, path string) (*Declarations, error) {
	v.SetConfigFile(path)
	err := v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to read declarations: %w", err)
	}

	var decl Declarations
	err = v.Unmarshal(&decl)
	if err != nil {
		return nil, fmt.Errorf("failed to decode declarations %s: %w", path, err)
	}
	if decl.Schema != "" && !filepath.IsAbs(decl.Schema) {
		decl.Schema = filepath.Join(filepath.Dir(path), decl.Schema)
	}

	seen := make(map[string]struct{}, len(decl.Positions))
	for i, p := range decl.Positions {
		if p.Name == "" {
			return nil, fmt.Errorf("position %d has no name", i)
		}
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("position %s is declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return &decl, nil
}

func (d *Declarations) position(name string) (PositionDeclaration, bool) {
	for _, p := range d.Positions {
		if p.Name == name {
			return p, true
		}
	}
	return PositionDeclaration{}, false
}
