package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeResume(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTextExtractor_Extract(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantName  string
		wantEmail string
		wantPhone string
	}{
		{
			name: "complete header",
			content: `John Doe
Senior Full-Stack Developer
john.doe@email.com | +1-555-0123

Experience
...`,
			wantName:  "John Doe",
			wantEmail: "john.doe@email.com",
			wantPhone: "+1-555-0123",
		},
		{
			name: "phone only",
			content: `Jane Smith
+1-555-0456
`,
			wantName:  "Jane Smith",
			wantPhone: "+1-555-0456",
		},
		{
			name:      "email only, no name line",
			content:   "Contact: alex.johnson@email.com\n",
			wantEmail: "alex.johnson@email.com",
		},
		{
			name:    "empty file",
			content: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeResume(t, tt.content)

			fields, err := NewTextExtractor().Extract(context.Background(), path)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if fields.Name != tt.wantName {
				t.Errorf("Name = %q; want %q", fields.Name, tt.wantName)
			}
			if fields.Email != tt.wantEmail {
				t.Errorf("Email = %q; want %q", fields.Email, tt.wantEmail)
			}
			if fields.Phone != tt.wantPhone {
				t.Errorf("Phone = %q; want %q", fields.Phone, tt.wantPhone)
			}
			if fields.ResumePath != path {
				t.Errorf("ResumePath = %q; want %q", fields.ResumePath, path)
			}
		})
	}
}

func TestTextExtractor_Extract_MissingFile(t *testing.T) {
	_, err := NewTextExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Error("Extract() should fail for a missing file")
	}
}

func TestLooksLikeName(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: "John Doe", want: true},
		{line: "Sarah Wilson-O'Brien", want: true},
		{line: "john.doe@email.com", want: false},
		{line: "+1-555-0123", want: false},
		{line: "Senior Full-Stack Developer with 12 years of experience shipping production systems", want: false},
		{line: "https://example.com", want: false},
	}
	for _, tt := range tests {
		if got := looksLikeName(tt.line); got != tt.want {
			t.Errorf("looksLikeName(%q) = %v; want %v", tt.line, got, tt.want)
		}
	}
}
