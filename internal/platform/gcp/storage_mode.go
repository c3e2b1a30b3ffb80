package gcp

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// StorageMode selects the backing object store: real GCS or a local
// fake-gcs-server instance.
type StorageMode string

const (
	StorageModeGCS      StorageMode = "gcs"
	StorageModeEmulator StorageMode = "gcs_emulator"
)

var (
	ErrStorageMode  = errors.New("invalid OBJECT_STORAGE_MODE")
	ErrEmulatorHost = errors.New("invalid STORAGE_EMULATOR_HOST")
)

// StorageConfig is resolved once at startup from OBJECT_STORAGE_MODE and
// STORAGE_EMULATOR_HOST.
type StorageConfig struct {
	Mode         StorageMode
	EmulatorHost string
	// ModeInferred marks configs where the mode came from the presence of
	// STORAGE_EMULATOR_HOST rather than an explicit OBJECT_STORAGE_MODE.
	ModeInferred bool
}

func (c StorageConfig) Emulator() bool {
	return c.Mode == StorageModeEmulator
}

func (c StorageConfig) Source() string {
	if c.ModeInferred {
		return "emulator_host_inferred"
	}
	return "explicit_or_default"
}

// StorageConfigFromEnv resolves the storage mode. An unset mode defaults to
// GCS unless STORAGE_EMULATOR_HOST is present, which older compose files set
// without the mode variable.
func StorageConfigFromEnv() (StorageConfig, error) {
	cfg := StorageConfig{
		EmulatorHost: strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")),
	}

	raw := strings.ToLower(strings.TrimSpace(os.Getenv("OBJECT_STORAGE_MODE")))
	switch StorageMode(raw) {
	case StorageModeGCS:
		cfg.Mode = StorageModeGCS
	case StorageModeEmulator:
		cfg.Mode = StorageModeEmulator
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = StorageModeEmulator
			cfg.ModeInferred = true
		} else {
			cfg.Mode = StorageModeGCS
		}
	default:
		return cfg, fmt.Errorf("%w: %q (want %q or %q)", ErrStorageMode, raw, StorageModeGCS, StorageModeEmulator)
	}

	return cfg, cfg.Validate()
}

func (c StorageConfig) Validate() error {
	switch c.Mode {
	case StorageModeGCS:
		return nil
	case StorageModeEmulator:
		if c.EmulatorHost == "" {
			return fmt.Errorf("%w: mode %q requires a host", ErrEmulatorHost, c.Mode)
		}
		u, err := url.Parse(c.EmulatorHost)
		if err != nil || strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
			return fmt.Errorf("%w: %q is not an absolute URL like http://fake-gcs:4443", ErrEmulatorHost, c.EmulatorHost)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrStorageMode, c.Mode)
	}
}
