package gcp

import (
	"errors"
	"testing"
)

func TestStorageConfigFromEnv(t *testing.T) {
	cases := []struct {
		name         string
		mode         string
		emulatorHost string
		want         StorageMode
		wantInferred bool
		wantErr      error
	}{
		{
			name: "default is gcs",
			want: StorageModeGCS,
		},
		{
			name: "explicit gcs",
			mode: "gcs",
			want: StorageModeGCS,
		},
		{
			name:         "explicit gcs ignores emulator host",
			mode:         "gcs",
			emulatorHost: "http://fake-gcs:4443",
			want:         StorageModeGCS,
		},
		{
			name:         "explicit emulator",
			mode:         "gcs_emulator",
			emulatorHost: "http://fake-gcs:4443",
			want:         StorageModeEmulator,
		},
		{
			name:         "mode casing is normalized",
			mode:         "GCS_Emulator",
			emulatorHost: "http://fake-gcs:4443",
			want:         StorageModeEmulator,
		},
		{
			name:         "emulator host alone infers emulator mode",
			emulatorHost: "http://fake-gcs:4443",
			want:         StorageModeEmulator,
			wantInferred: true,
		},
		{
			name:    "unknown mode",
			mode:    "s3",
			wantErr: ErrStorageMode,
		},
		{
			name:    "emulator mode without host",
			mode:    "gcs_emulator",
			wantErr: ErrEmulatorHost,
		},
		{
			name:         "emulator host must be absolute",
			mode:         "gcs_emulator",
			emulatorHost: "fake-gcs:4443",
			wantErr:      ErrEmulatorHost,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OBJECT_STORAGE_MODE", tc.mode)
			t.Setenv("STORAGE_EMULATOR_HOST", tc.emulatorHost)

			cfg, err := StorageConfigFromEnv()
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("StorageConfigFromEnv err: want %v got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("StorageConfigFromEnv: %v", err)
			}
			if cfg.Mode != tc.want {
				t.Fatalf("mode: want=%q got=%q", tc.want, cfg.Mode)
			}
			if cfg.ModeInferred != tc.wantInferred {
				t.Fatalf("inferred: want=%v got=%v", tc.wantInferred, cfg.ModeInferred)
			}
		})
	}
}

func TestStorageConfigAccessors(t *testing.T) {
	gcs := StorageConfig{Mode: StorageModeGCS}
	if gcs.Emulator() {
		t.Fatalf("gcs config should not report emulator mode")
	}
	if got := gcs.Source(); got != "explicit_or_default" {
		t.Fatalf("Source: want=%q got=%q", "explicit_or_default", got)
	}

	em := StorageConfig{Mode: StorageModeEmulator, EmulatorHost: "http://fake-gcs:4443", ModeInferred: true}
	if !em.Emulator() {
		t.Fatalf("emulator config should report emulator mode")
	}
	if got := em.Source(); got != "emulator_host_inferred" {
		t.Fatalf("Source: want=%q got=%q", "emulator_host_inferred", got)
	}
}

func TestStorageConfigValidateRejectsUnknownMode(t *testing.T) {
	err := StorageConfig{Mode: StorageMode("s3")}.Validate()
	if !errors.Is(err, ErrStorageMode) {
		t.Fatalf("Validate: want ErrStorageMode got %v", err)
	}
}
