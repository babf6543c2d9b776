package prompt

import (
	"strings"
	"testing"

	"github.com/kjstillabower/weather-narrator/internal/models"
)

func seattleSummary() models.Summary {
	return models.Summary{
		Location:      "Seattle, US",
		Temp:          59,
		TempC:         15,
		Humidity:      81,
		Wind:          6,
		Clouds:        90,
		Pressure:      1012,
		Precipitation: models.PrecipitationNone,
		Daylight:      true,
	}
}

// TestBuild_EmbedsAllSummaryFields verifies every Summary field appears as labeled text
// in the user message and that roles are ordered system then user.
func TestBuild_EmbedsAllSummaryFields(t *testing.T) {
	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	msgs, err := b.Build(seattleSummary())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Build() returned %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Errorf("roles = %q, %q; want system, user", msgs[0].Role, msgs[1].Role)
	}

	for _, want := range []string{
		"Location: Seattle, US",
		"Temperature: 59°F (15°C)",
		"Humidity: 81%",
		"Cloud cover: 90%",
		"Wind speed: 6 mph",
		"Pressure: 1012 hPa",
		"Precipitation: none",
		"Local sky: daylight",
	} {
		if !strings.Contains(msgs[1].Content, want) {
			t.Errorf("user message missing %q:\n%s", want, msgs[1].Content)
		}
	}
}

func TestBuild_DarkAddsInstruction(t *testing.T) {
	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	day, _ := b.Build(seattleSummary())
	if strings.Contains(day[0].Content, "dark locally") {
		t.Error("daylight system prompt should not carry the dark instruction")
	}

	s := seattleSummary()
	s.Daylight = false
	night, err := b.Build(s)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(night[0].Content, "Do not mention sunlight") {
		t.Errorf("dark system prompt = %q, want sunlight instruction", night[0].Content)
	}
	if !strings.Contains(night[1].Content, "Local sky: dark") {
		t.Errorf("dark user prompt = %q, want Local sky: dark", night[1].Content)
	}
}
