// ABOUTME: Tests for person payload validation
// ABOUTME: Checks format rules and the readable error messages
package people

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harperreed/leadbook/models"
)

func TestValidatePatch(t *testing.T) {
	bad := models.ContactStatus("Ghosted")
	badSites := []string{"https://ok.dev", "not a url"}

	tests := []struct {
		name    string
		patch   models.PersonPatch
		wantErr string
	}{
		{name: "empty", patch: models.PersonPatch{}},
		{name: "valid", patch: models.PersonPatch{
			Email:        models.String("ada@example.com"),
			URL:          models.String("https://linkedin.com/in/ada"),
			ProfileImage: models.String("https://img.example.com/a.jpg"),
			Engagement:   models.Int(0),
		}},
		{name: "clearing fields", patch: models.PersonPatch{
			Email:        models.String(""),
			URL:          models.String(""),
			ProfileImage: models.String(""),
			Name:         models.String(""),
		}},
		{name: "email", patch: models.PersonPatch{Email: models.String("nope")}, wantErr: "email must be a valid email"},
		{name: "url", patch: models.PersonPatch{URL: models.String("linkedin")}, wantErr: "url must be a valid URL"},
		{name: "websites", patch: models.PersonPatch{Websites: &badSites}, wantErr: "must be a valid URL"},
		{name: "status", patch: models.PersonPatch{Status: &bad}, wantErr: "status must be a known pipeline status"},
		{name: "engagement", patch: models.PersonPatch{Engagement: models.Int(-2)}, wantErr: "engagement must be at least 0"},
		{name: "degree", patch: models.PersonPatch{ConnectionDegree: models.DegreeOf(-1)}, wantErr: "connectionDegree must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatch(tt.patch)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidPatch)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
