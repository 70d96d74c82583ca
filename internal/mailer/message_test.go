package mailer

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
)

func TestBuildMessage_PlainHTML(t *testing.T) {
	raw := BuildMessage("reports@institute.edu", Message{
		To:      "hod-cse@institute.edu",
		Subject: "Daily Attendance Report - CSE",
		HTML:    "<h2>CSE Department</h2>",
	})

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("not a parseable message: %v", err)
	}
	if got := parsed.Header.Get("Subject"); got != "Daily Attendance Report - CSE" {
		t.Errorf("Subject = %q", got)
	}
	if got := parsed.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
	body, _ := io.ReadAll(parsed.Body)
	if !strings.Contains(string(body), "<h2>CSE Department</h2>") {
		t.Error("body lost the HTML content")
	}
}

func TestBuildMessage_WithAttachment(t *testing.T) {
	chartBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}
	raw := BuildMessage("reports@institute.edu", Message{
		To:      "principal@institute.edu",
		Subject: "Daily Attendance Summary",
		HTML:    "<table><tr><td>CSE</td></tr></table>",
		Attachments: []Attachment{
			{Filename: "attendance-chart.png", ContentType: "image/png", Content: chartBytes},
		},
	})

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("not a parseable message: %v", err)
	}
	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("Content-Type = %q (%v), want multipart/mixed", mediaType, err)
	}

	reader := multipart.NewReader(parsed.Body, params["boundary"])

	first, err := reader.NextPart()
	if err != nil {
		t.Fatalf("missing body part: %v", err)
	}
	if ct := first.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("first part Content-Type = %q", ct)
	}

	second, err := reader.NextPart()
	if err != nil {
		t.Fatalf("missing attachment part: %v", err)
	}
	if cd := second.Header.Get("Content-Disposition"); !strings.Contains(cd, "attendance-chart.png") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	encoded, _ := io.ReadAll(second)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	if err != nil {
		t.Fatalf("attachment is not valid base64: %v", err)
	}
	if !bytes.Equal(decoded, chartBytes) {
		t.Error("attachment bytes corrupted in transit")
	}
}

func TestParseAddress(t *testing.T) {
	cases := map[string]string{
		"Reports <reports@institute.edu>": "reports@institute.edu",
		"reports@institute.edu":           "reports@institute.edu",
		"  reports@institute.edu  ":       "reports@institute.edu",
	}
	for in, want := range cases {
		if got := parseAddress(in); got != want {
			t.Errorf("parseAddress(%q) = %q, want %q", in, got, want)
		}
	}
}
