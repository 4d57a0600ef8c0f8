package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already camel", "reportingui", "reportingui"},
		{"spaces", "Admin Role", "adminRole"},
		{"underscores", "user_profile", "userProfile"},
		{"dashes", "user-profile", "userProfile"},
		{"diacritics", "Café Menu", "cafeMenu"},
		{"surrounding space", "  everyone  ", "everyone"},
		{"nothing left", "***", "***"},
		{"empty", "", ""},
	}

	h := Sanitizer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.AlterMachineName(tt.input))
		})
	}
}

func TestSanitizerIsStateless(t *testing.T) {
	h := Sanitizer{}
	assert.Equal(t, h.AlterMachineName("User Profile"), h.AlterMachineName("user_profile"))
	assert.Equal(t, h.AlterMachineName("Admin Role"), h.AlterMachineName("Admin Role"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "Creme Brulee", Fold(" Crème Brûlée "))
	assert.Equal(t, "fi", Fold("ﬁ"))
}
