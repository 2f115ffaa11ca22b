package command

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/tickers.yaml
var defaultTickersYAML []byte

// Tickers is the suggestion pool of the 8ball command.
type Tickers struct {
	Amounts []string `yaml:"amounts"`
	Tickers []string `yaml:"tickers"`
}

// DefaultTickers returns the embedded suggestion pool.
func DefaultTickers() *Tickers {
	t, err := parseTickers(defaultTickersYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded tickers: %v", err))
	}
	return t
}

// LoadTickers reads a suggestion pool from path, or the embedded pool when
// path is empty.
func LoadTickers(path string) (*Tickers, error) {
	if path == "" {
		return DefaultTickers(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tickers: %w", err)
	}
	return parseTickers(data)
}

func parseTickers(data []byte) (*Tickers, error) {
	t := &Tickers{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse tickers: %w", err)
	}
	if len(t.Amounts) == 0 || len(t.Tickers) == 0 {
		return nil, fmt.Errorf("tickers file needs at least one amount and one ticker")
	}
	return t, nil
}
