package export

import (
	"bytes"
	"testing"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"Name", "Status"},
		Rows: []map[string]string{
			{"Name": "Jane Doe", "Status": "enrolled"},
			{"Name": "Sam Lee"},
		},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(payload, utf8BOM) {
		t.Fatal("expected UTF-8 BOM prefix")
	}
	want := "Name,Status\nJane Doe,enrolled\nSam Lee,\n"
	if got := string(bytes.TrimPrefix(payload, utf8BOM)); got != want {
		t.Fatalf("unexpected csv body: %q", got)
	}
}

func TestCSVExporterRejectsBlankHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	if _, err := exporter.Render(Dataset{Headers: []string{"Name", ""}}); err == nil {
		t.Fatal("expected blank header error")
	}
	if _, err := exporter.Render(Dataset{}); err == nil {
		t.Fatal("expected missing header error")
	}
}
