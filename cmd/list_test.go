package cmd

import (
	"testing"
)

func TestListCmd_Flags(t *testing.T) {
	tests := []struct {
		name         string
		flagName     string
		defaultValue interface{}
		flagType     string
	}{
		{
			name:         "pending flag defaults to false",
			flagName:     "pending",
			defaultValue: false,
			flagType:     "bool",
		},
		{
			name:         "archived flag defaults to false",
			flagName:     "archived",
			defaultValue: false,
			flagType:     "bool",
		},
		{
			name:         "tag flag defaults to empty",
			flagName:     "tag",
			defaultValue: "",
			flagType:     "string",
		},
		{
			name:         "limit flag defaults to zero",
			flagName:     "limit",
			defaultValue: 0,
			flagType:     "int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			switch tt.flagType {
			case "bool":
				value, err := listCmd.Flags().GetBool(tt.flagName)
				if err != nil {
					t.Fatalf("failed to get flag %s: %v", tt.flagName, err)
				}
				if value != tt.defaultValue.(bool) {
					t.Errorf("expected %s default %v, got %v", tt.flagName, tt.defaultValue, value)
				}
			case "string":
				value, err := listCmd.Flags().GetString(tt.flagName)
				if err != nil {
					t.Fatalf("failed to get flag %s: %v", tt.flagName, err)
				}
				if value != tt.defaultValue.(string) {
					t.Errorf("expected %s default %q, got %q", tt.flagName, tt.defaultValue, value)
				}
			case "int":
				value, err := listCmd.Flags().GetInt(tt.flagName)
				if err != nil {
					t.Fatalf("failed to get flag %s: %v", tt.flagName, err)
				}
				if value != tt.defaultValue.(int) {
					t.Errorf("expected %s default %d, got %d", tt.flagName, tt.defaultValue, value)
				}
			}
		})
	}
}

func TestListCmd_CommandMetadata(t *testing.T) {
	if listCmd.Use != "list" {
		t.Errorf("expected Use to be 'list', got %q", listCmd.Use)
	}
	if listCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
}
