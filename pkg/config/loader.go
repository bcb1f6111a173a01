package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raywall/upstream-simulators/pkg/config/injector"
	"gopkg.in/yaml.v3"
)

// Load lê, interpola (${env.X}, ${ssm.X}, ${secret.X}), completa defaults e valida
// a configuração. Arquivos .json usam encoding/json; os demais são tratados como YAML.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(strings.TrimPrefix(path, "file://"))
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo: %w", err)
	}
	return Parse(ctx, data, filepath.Ext(path))
}

// Parse interpreta o conteúdo bruto de acordo com a extensão informada.
func Parse(ctx context.Context, data []byte, ext string) (*Config, error) {
	var cfg Config
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("erro ao parsear json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("YAML malformado: %w", err)
		}
	}

	if err := injector.New().Inject(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
	}

	cfg.ApplyDefaults()

	if err := NewValidator().Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validação da configuração falhou: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults preenche campos opcionais omitidos no arquivo.
func (c *Config) ApplyDefaults() {
	if c.Runtime == "" {
		c.Runtime = "local"
	}
	if c.Logging == (LoggingConf{}) {
		c.Logging = LoggingConf{Enabled: true, Level: "info", Format: "json"}
	}
	for i := range c.Servers {
		for j := range c.Servers[i].Endpoints {
			ep := &c.Servers[i].Endpoints[j]
			if ep.Method == "" {
				ep.Method = "GET"
			}
		}
	}
}
