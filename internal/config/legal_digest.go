package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// legalUpdateNamespace derives stable IDs for digest items that do not carry one
var legalUpdateNamespace = uuid.MustParse("6f1c2f2e-8d0b-4f5a-9a57-3c1d1b0e4a21")

type legalDigestFile struct {
	Updates []legalUpdateFile `yaml:"updates"`
}

type legalUpdateFile struct {
	ID         string `yaml:"id"`
	Date       string `yaml:"date"`
	Title      string `yaml:"title"`
	Topic      string `yaml:"topic"`
	Importance string `yaml:"importance"`
	Summary    string `yaml:"summary"`
	Source     string `yaml:"source"`
	URL        string `yaml:"url"`
}

// LoadLegalDigest reads the curated legislation digest from a YAML file
func LoadLegalDigest(filename string) ([]*domain.LegalUpdate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read legal digest %s: %w", filename, err)
	}
	return ParseLegalDigest(data)
}

// ParseLegalDigest decodes a YAML digest. Items without an id get one derived from their url,
// so importing the same file twice updates rather than duplicates.
func ParseLegalDigest(data []byte) ([]*domain.LegalUpdate, error) {
	var raw legalDigestFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse legal digest YAML: %w", err)
	}

	updates := make([]*domain.LegalUpdate, 0, len(raw.Updates))
	for i, item := range raw.Updates {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(item.Date))
		if err != nil {
			return nil, fmt.Errorf("legal digest: item %d: invalid date %q", i+1, item.Date)
		}
		importance := domain.Importance(strings.ToLower(strings.TrimSpace(item.Importance)))
		if !importance.IsValid() {
			return nil, fmt.Errorf("legal digest: item %d: %w %q", i+1, domain.ErrInvalidImportance, item.Importance)
		}
		url := strings.TrimSpace(item.URL)
		title := strings.TrimSpace(item.Title)
		if title == "" || url == "" {
			return nil, fmt.Errorf("legal digest: item %d: %w", i+1, domain.ErrLegalUpdateInvalid)
		}

		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = uuid.NewSHA1(legalUpdateNamespace, []byte(url)).String()
		}
		var topic *string
		if t := strings.TrimSpace(item.Topic); t != "" {
			topic = &t
		}

		updates = append(updates, &domain.LegalUpdate{
			ID:         id,
			Date:       date,
			Title:      title,
			Topic:      topic,
			Importance: importance,
			Summary:    strings.TrimSpace(item.Summary),
			Source:     strings.TrimSpace(item.Source),
			URL:        url,
		})
	}
	return updates, nil
}
