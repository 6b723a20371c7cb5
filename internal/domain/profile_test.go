package domain

import (
	"errors"
	"testing"
)

func TestCandidateProfile_Merge(t *testing.T) {
	p := CandidateProfile{
		ID:    "c1",
		Name:  "John Doe",
		Email: "",
		Phone: "+1-555-0123",
	}

	p.Merge(ProfileFields{Email: "john.doe@email.com", Phone: ""})

	if p.Name != "John Doe" {
		t.Errorf("Name = %q; want unchanged", p.Name)
	}
	if p.Email != "john.doe@email.com" {
		t.Errorf("Email = %q; want merged value", p.Email)
	}
	if p.Phone != "+1-555-0123" {
		t.Error("Phone should not be cleared by an empty field")
	}
}

func TestCandidateProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile CandidateProfile
		wantErr bool
	}{
		{"valid", CandidateProfile{ID: "c1", Email: "a@b.com"}, false},
		{"empty email allowed", CandidateProfile{ID: "c1"}, false},
		{"missing id", CandidateProfile{Name: "Jane"}, true},
		{"malformed email", CandidateProfile{ID: "c1", Email: "not-an-email"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Validate() error = %v; want ErrInvalidProfile", err)
			}
		})
	}
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		profile CandidateProfile
		want    []string
	}{
		{"all present", CandidateProfile{ID: "c1", Name: "Jane", Email: "j@e.com", Phone: "555"}, nil},
		{"all missing", CandidateProfile{ID: "c1"}, []string{"name", "email", "phone"}},
		{"email only missing", CandidateProfile{ID: "c1", Name: "Jane", Phone: "555"}, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingFields(tt.profile)
			if len(got) != len(tt.want) {
				t.Fatalf("MissingFields() = %v; want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("MissingFields()[%d] = %q; want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
