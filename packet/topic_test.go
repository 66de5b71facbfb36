package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTopicName(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		wantErr bool
	}{
		{"simple", "sensor/temperature", false},
		{"multi level", "home/room1/sensor/temperature", false},
		{"trailing slash", "home/room/", false},
		{"leading slash", "/home/room", false},
		{"single level", "temperature", false},
		{"empty is allowed at this layer", "", false},
		{"plus wildcard forbidden", "home/+/temp", true},
		{"hash wildcard forbidden", "home/#", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopicName(tt.topic)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTopicFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		wantErr bool
	}{
		{"simple", "home/room", false},
		{"single level wildcard", "home/+/temp", false},
		{"multi level wildcard", "home/#", false},
		{"bare multi level wildcard", "#", false},
		{"empty filter", "", true},
		{"hash not alone in level", "home/room#", true},
		{"hash not last level", "home/#/temp", true},
		{"plus not alone in level", "home/room+", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopicFilter(tt.filter)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
