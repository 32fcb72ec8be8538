package profile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/divcal/internal/calculator"
	"github.com/wonny/divcal/pkg/config"
)

// Load reads a YAML profile and returns it with its raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Profile, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	p, err := Parse(data)
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}
	return p, data, nil
}

// Parse decodes and validates a YAML profile
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}

	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Hash generates SHA256 hash from Profile (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(p *Profile) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// NewSnapshot captures the loaded profile for logging
func NewSnapshot(p *Profile, yamlData []byte) (*Snapshot, error) {
	hash, err := Hash(p)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ProfileID: p.Meta.ProfileID,
		Version:   p.Meta.Version,
		Hash:      hash,
		YAML:      string(yamlData),
		LoadedAt:  time.Now(),
	}, nil
}

// Apply overlays the non-zero calendar settings onto cfg
func (p *Profile) Apply(cfg *config.Config) {
	c := p.Calendar
	if c.Timezone != "" {
		cfg.Calendar.Timezone = c.Timezone
	}
	if c.HighYieldThreshold != nil {
		cfg.Calendar.HighYieldThreshold = *c.HighYieldThreshold
	}
	if c.SuggestLimit > 0 {
		cfg.Calendar.SuggestLimit = c.SuggestLimit
	}
	if presets := p.Presets(); presets != nil {
		cfg.Calendar.Presets = presets
	}
}

// Presets converts preset lots to share counts, or nil when unset
func (p *Profile) Presets() []float64 {
	if len(p.Calculator.PresetLots) == 0 {
		return nil
	}
	out := make([]float64, len(p.Calculator.PresetLots))
	for i, lots := range p.Calculator.PresetLots {
		out[i] = float64(lots) * calculator.LotSize
	}
	return out
}
