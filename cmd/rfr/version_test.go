package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRenderVersionPrettyDefaultsToTaglineOnly(t *testing.T) {
	var out bytes.Buffer
	info := versionInfo{Version: "1.2.3"}
	renderVersionPretty(&out, info, versionOptions{})

	got := out.String()
	if !strings.Contains(got, "rfr 1.2.3 - "+versionTagline) {
		t.Fatalf("expected tagline banner, got %q", got)
	}
	if !strings.Contains(got, "--hash") {
		t.Fatalf("expected a hint about --hash/--message/--date/--full, got %q", got)
	}
}

func TestRenderVersionPrettyWithFullShowsEveryField(t *testing.T) {
	var out bytes.Buffer
	info := versionInfo{Version: "1.2.3", GitCommit: "abc123", GitMessage: "fix flush race", BuildDate: "2026-07-01"}
	renderVersionPretty(&out, info, versionOptions{showHash: true, showMessage: true, showDate: true})

	for _, want := range []string{"commit: abc123", "message: fix flush race", "built:  2026-07-01"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected output to contain %q, got %q", want, out.String())
		}
	}
}

func TestRenderVersionPrettyMissingFieldsReportUnknown(t *testing.T) {
	var out bytes.Buffer
	info := versionInfo{Version: "1.2.3"}
	renderVersionPretty(&out, info, versionOptions{showHash: true})

	if !strings.Contains(out.String(), "commit: unknown") {
		t.Fatalf("expected an empty git commit to render as unknown, got %q", out.String())
	}
}

func TestRenderVersionJSONOmitsUnrequestedFields(t *testing.T) {
	var out bytes.Buffer
	info := versionInfo{Version: "1.2.3", GitCommit: "abc123", BuildDate: "2026-07-01"}
	if err := renderVersionJSON(&out, info, versionOptions{showHash: true}); err != nil {
		t.Fatalf("renderVersionJSON: %v", err)
	}

	var payload versionPayload
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if payload.Tool != "rfr" || payload.Version != "1.2.3" || payload.GitCommit != "abc123" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.BuildDate != "" {
		t.Fatalf("expected BuildDate to be omitted when --date was not requested, got %q", payload.BuildDate)
	}
}

func TestValueOrUnknown(t *testing.T) {
	cases := map[string]string{
		"":       "unknown",
		"abc123": "abc123",
		"  ":     "  ",
	}
	for in, want := range cases {
		if got := valueOrUnknown(in); got != want {
			t.Errorf("valueOrUnknown(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCollectVersionInfoDefaultsVersionToDev(t *testing.T) {
	info := collectVersionInfo()
	if info.Version == "" {
		t.Fatalf("expected collectVersionInfo to always produce a non-empty Version")
	}
}
