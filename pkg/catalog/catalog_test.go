package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/devdiag/pkg/model"
)

func testEntries() []model.CatalogEntry {
	return []model.CatalogEntry{
		{
			Device: "  Phone ",
			Components: []model.ComponentEntry{
				{Name: "Screen", Issues: []model.IssueEntry{
					{Keyword: "Cracked", Description: "D1", Solution: "S1"},
					{Keyword: "flickering", Description: "D-flicker", Solution: "S-flicker"},
				}},
				{Name: "battery", Issues: []model.IssueEntry{
					{Keyword: "draining", Description: "D-drain", Solution: "S-drain"},
					{Keyword: "swollen", Description: "", Solution: "S-swollen"},
				}},
			},
		},
		{
			Device: "wifi",
			Issues: []model.IssueEntry{
				{Keyword: "disconnecting", Description: "D2", Solution: "S2"},
				{Keyword: "slow", Description: "D-slow"},
			},
		},
	}
}

func TestCompile(t *testing.T) {
	c := Compile(testEntries())

	assert.Equal(t, []string{"phone", "wifi"}, c.Devices())
	assert.Equal(t, []string{"screen", "battery"}, c.Components("phone"))
	assert.Equal(t, []string{"screen", "battery"}, c.Components("PHONE"))
	assert.Empty(t, c.Components("wifi"))
	assert.Equal(t, 2, c.Skipped())
	require.Equal(t, 4, c.Len())

	got := c.Patterns()
	assert.Equal(t, Pattern{Device: "phone", Component: "screen", Issue: "cracked", Description: "D1", Solution: "S1"}, stripRe(got[0]))
	assert.Equal(t, "flickering", got[1].Issue)
	assert.Equal(t, "draining", got[2].Issue)
	assert.Equal(t, "battery", got[2].Component)

	wifi := got[3]
	assert.Equal(t, "wifi", wifi.Device)
	assert.False(t, wifi.HasComponent())
	assert.Equal(t, "disconnecting", wifi.Issue)
}

func TestCompileKeepsDuplicates(t *testing.T) {
	entries := []model.CatalogEntry{
		{Device: "wifi", Issues: []model.IssueEntry{{Keyword: "slow", Description: "a", Solution: "b"}}},
		{Device: "WiFi", Issues: []model.IssueEntry{{Keyword: "slow", Description: "c", Solution: "d"}}},
	}
	c := Compile(entries)

	assert.Equal(t, []string{"wifi"}, c.Devices())
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "a", c.Patterns()[0].Description)
	assert.Equal(t, "c", c.Patterns()[1].Description)
}

func TestCompileSkipsBlankNames(t *testing.T) {
	entries := []model.CatalogEntry{
		{Device: " ", Issues: []model.IssueEntry{{Keyword: "x", Description: "d", Solution: "s"}}},
		{Device: "tv", Components: []model.ComponentEntry{
			{Name: "", Issues: []model.IssueEntry{{Keyword: "y", Description: "d", Solution: "s"}}},
			{Name: "remote", Issues: []model.IssueEntry{{Keyword: " ", Description: "d", Solution: "s"}}},
		}},
	}
	c := Compile(entries)

	assert.Equal(t, []string{"tv"}, c.Devices())
	assert.Equal(t, []string{"remote"}, c.Components("tv"))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 3, c.Skipped())
}

func TestDeviceRegisteredWithoutIssues(t *testing.T) {
	c := Compile([]model.CatalogEntry{{Device: "printer"}})

	assert.True(t, c.HasDevice("printer"))
	dev, ok := c.DetectDevice("my printer is jammed")
	assert.True(t, ok)
	assert.Equal(t, "printer", dev)
}

func TestDetectDevice(t *testing.T) {
	c := Compile(testEntries())

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "whole word", text: "my phone screen is cracked", want: "phone", wantOK: true},
		{name: "case insensitive", text: "My PHONE died", want: "phone", wantOK: true},
		{name: "inside another word", text: "my smartphone is broken", wantOK: false},
		{name: "declaration order wins", text: "wifi on my phone drops", want: "phone", wantOK: true},
		{name: "punctuation boundary", text: "wifi, again.", want: "wifi", wantOK: true},
		{name: "nothing", text: "it does not work", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.DetectDevice(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectComponent(t *testing.T) {
	c := Compile(testEntries())

	comp, ok := c.DetectComponent("phone", "phone battery and screen both bad")
	assert.True(t, ok)
	assert.Equal(t, "screen", comp, "first declared component wins")

	_, ok = c.DetectComponent("phone", "phone batteries")
	assert.False(t, ok)

	_, ok = c.DetectComponent("wifi", "wifi screen")
	assert.False(t, ok)
}

func TestPatternOccurs(t *testing.T) {
	c := Compile([]model.CatalogEntry{{
		Device: "laptop",
		Issues: []model.IssueEntry{
			{Keyword: "c++ crash", Description: "d", Solution: "s"},
			{Keyword: "slow", Description: "d", Solution: "s"},
		},
	}})
	require.Equal(t, 2, c.Len())

	assert.True(t, c.Patterns()[0].Occurs("got a C++ crash again"), "regex metacharacters are literal")
	assert.False(t, c.Patterns()[0].Occurs("got a cxx crash again"))
	assert.True(t, c.Patterns()[1].Occurs("so SLOW today"))
	assert.False(t, c.Patterns()[1].Occurs("slowly"))
	assert.False(t, Pattern{Issue: "slow"}.Occurs("slow"), "uncompiled pattern never matches")
}

type fakeSource struct {
	raw []byte
	err error
}

func (f fakeSource) Fetch(context.Context) ([]byte, error) { return f.raw, f.err }
func (f fakeSource) Location() string                      { return "fake://catalog" }

func TestLoad(t *testing.T) {
	raw := `[{"device": "phone", "components": {"screen": {"cracked": {"description": "D1", "solution": "S1"}}}}]`
	c, err := Load(context.Background(), fakeSource{raw: []byte(raw)})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestLoadErrors(t *testing.T) {
	fetchErr := errors.New("connection refused")

	_, err := Load(context.Background(), fakeSource{err: fetchErr})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "fake://catalog", loadErr.Source)
	assert.ErrorIs(t, err, fetchErr)

	_, err = Load(context.Background(), fakeSource{raw: []byte(`{"not": "a list"}`)})
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "fake://catalog")
}

func stripRe(p Pattern) Pattern {
	p.re = nil
	return p
}

func TestSummary(t *testing.T) {
	got := Compile(testEntries()).Summary()

	assert.Equal(t, []DeviceSummary{
		{Device: "phone", Components: []string{"screen", "battery"}, Issues: []string{"cracked", "flickering", "draining"}},
		{Device: "wifi", Components: []string{}, Issues: []string{"disconnecting"}},
	}, got)
	assert.Empty(t, Compile(nil).Summary())
}
