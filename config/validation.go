package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines what must be present for each environment
type ConfigRequirements struct {
	RequireRealSecret bool
	RequireDBPassword bool
}

var requirements = map[Environment]ConfigRequirements{
	Development: {},
	Test:        {},
	CI:          {RequireDBPassword: true},
	Production:  {RequireRealSecret: true, RequireDBPassword: true},
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	reqs := requirements[GetEnvironment()]

	var errs []ValidationError

	switch cfg.DBDriver {
	case "postgres":
		if reqs.RequireDBPassword && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required"})
		}
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	} else if reqs.RequireRealSecret && cfg.JWTSecret == defaultJWTSecret {
		errs = append(errs, ValidationError{"JWT_SECRET", "must not use the development default"})
	}

	switch cfg.ImageStorage {
	case "local":
		if cfg.MediaDir == "" {
			errs = append(errs, ValidationError{"MEDIA_DIR", "is required for local image storage"})
		}
	case "s3":
		if cfg.S3BucketName == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for s3 image storage"})
		}
	default:
		errs = append(errs, ValidationError{"IMAGE_STORAGE", fmt.Sprintf("unsupported storage %q", cfg.ImageStorage)})
	}

	if cfg.RecipeCreateLimit < 0 {
		errs = append(errs, ValidationError{"RECIPE_CREATE_LIMIT", "must not be negative"})
	}

	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}

	return nil
}
