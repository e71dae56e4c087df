package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Seed datos maestros mínimos para arrancar sin base de datos (STORE_DRIVER=memory).
type Seed struct {
	Parts     []SeedPart     `mapstructure:"parts"`
	Vendors   []string       `mapstructure:"vendors"`
	Employees []SeedEmployee `mapstructure:"employees"`
}

type SeedPart struct {
	Code  string `mapstructure:"code"`
	Name  string `mapstructure:"name"`
	Model string `mapstructure:"model"`
}

type SeedEmployee struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// LoadSeed lee el archivo de datos maestros; el formato sale de la extensión (.json, .yaml, .toml).
func LoadSeed(path string) (*Seed, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}
	var seed Seed
	if err := v.Unmarshal(&seed); err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", path, err)
	}
	for i, p := range seed.Parts {
		if strings.TrimSpace(p.Code) == "" {
			return nil, fmt.Errorf("%s: parte %d sin código", path, i)
		}
	}
	for i, e := range seed.Employees {
		if e.ID == "" || strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%s: empleado %d incompleto", path, i)
		}
	}
	return &seed, nil
}
