package main

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func buildTestDocx(t *testing.T, document string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"word/document.xml": document,
		"word/styles.xml":   "<styles/>",
	} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func readEntry(t *testing.T, docx []byte, name string) string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(content)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

func TestFillTemplate(t *testing.T) {
	docx := buildTestDocx(t, "<w:t>Receipt for {user}, {addres}: {amount} {currency} in {year} ({date})</w:t>")

	filled, err := FillTemplate(docx, map[string]string{
		"user":     "Acme",
		"addres":   "Street 1",
		"amount":   "500",
		"currency": "CHF",
		"year":     "2024",
		"date":     "01.03.2024",
	})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	doc := readEntry(t, filled, "word/document.xml")
	want := "<w:t>Receipt for Acme, Street 1: 500 CHF in 2024 (01.03.2024)</w:t>"
	if doc != want {
		t.Errorf("document = %q, want %q", doc, want)
	}

	// untouched parts are copied through
	if styles := readEntry(t, filled, "word/styles.xml"); styles != "<styles/>" {
		t.Errorf("styles = %q", styles)
	}
}

func TestFillTemplateEscapesXML(t *testing.T) {
	docx := buildTestDocx(t, "<w:t>{user}</w:t>")

	filled, err := FillTemplate(docx, map[string]string{"user": "Müller & Söhne <AG>"})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	doc := readEntry(t, filled, "word/document.xml")
	if !strings.Contains(doc, "Müller &amp; Söhne &lt;AG&gt;") {
		t.Errorf("special characters not escaped: %q", doc)
	}
}

func TestFillTemplateRejectsGarbage(t *testing.T) {
	if _, err := FillTemplate([]byte("not a zip"), nil); err == nil {
		t.Error("garbage input should fail")
	}
}
