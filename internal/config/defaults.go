package config

import "strings"

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	if strings.EqualFold(dbType, "postgres") {
		return "public"
	}
	return "main"
}

// ApplySourceDefaults applies default values to a SourceConfig based on its type.
func ApplySourceDefaults(s *SourceConfig) {
	if s == nil {
		return
	}

	if s.Schema == "" {
		s.Schema = DefaultSchemaForType(s.Type)
	}

	if strings.EqualFold(s.Type, "postgres") && s.Port == 0 && s.Host != "" {
		s.Port = 5432
	}
}
