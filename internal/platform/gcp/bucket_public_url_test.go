package gcp

import (
	"strings"
	"testing"
)

func TestResolvePublicBaseURL(t *testing.T) {
	cases := []struct {
		name       string
		envBase    string
		cfg        StorageConfig
		wantBase   string
		wantSource string
		wantErr    bool
	}{
		{
			name:       "gcs default leaves base empty",
			cfg:        StorageConfig{Mode: StorageModeGCS},
			wantSource: "gcs_default",
		},
		{
			name:       "emulator host is the fallback base",
			cfg:        StorageConfig{Mode: StorageModeEmulator, EmulatorHost: "http://fake-gcs:4443"},
			wantBase:   "http://fake-gcs:4443",
			wantSource: "storage_emulator_host",
		},
		{
			name:       "env override wins and is trimmed",
			envBase:    "http://localhost:4443/",
			cfg:        StorageConfig{Mode: StorageModeEmulator, EmulatorHost: "http://fake-gcs:4443"},
			wantBase:   "http://localhost:4443",
			wantSource: "object_storage_public_base_url",
		},
		{
			name:    "env override must be absolute",
			envBase: "localhost:4443",
			cfg:     StorageConfig{Mode: StorageModeEmulator, EmulatorHost: "http://fake-gcs:4443"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", tc.envBase)

			base, source, err := resolvePublicBaseURL(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("resolvePublicBaseURL: expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolvePublicBaseURL: %v", err)
			}
			if base != tc.wantBase {
				t.Fatalf("base: want=%q got=%q", tc.wantBase, base)
			}
			if source != tc.wantSource {
				t.Fatalf("source: want=%q got=%q", tc.wantSource, source)
			}
		})
	}
}

func TestGetPublicURLGCSDefault(t *testing.T) {
	bs := &bucketService{
		buckets: map[BucketCategory]bucketConfig{
			BucketCategoryAvatar: {name: "avatar-bucket"},
		},
	}

	got := bs.GetPublicURL(BucketCategoryAvatar, "avatars/user.png")
	want := "https://storage.googleapis.com/avatar-bucket/avatars/user.png"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesCDNDomain(t *testing.T) {
	bs := &bucketService{
		buckets: map[BucketCategory]bucketConfig{
			BucketCategorySpecies: {
				name:      "species-bucket",
				cdnDomain: "cdn.example.com",
			},
		},
	}

	got := bs.GetPublicURL(BucketCategorySpecies, "species/tetra.jpg")
	want := "https://cdn.example.com/species/tetra.jpg"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesPublicBaseURL(t *testing.T) {
	bs := &bucketService{
		publicBaseURL: "http://localhost:4443",
		buckets: map[BucketCategory]bucketConfig{
			BucketCategoryCapture: {name: "capture-bucket"},
		},
	}

	got := bs.GetPublicURL(BucketCategoryCapture, "/captures/abc.jpg")
	want := "http://localhost:4443/capture-bucket/captures/abc.jpg"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesEmulatorMediaEndpoint(t *testing.T) {
	bs := &bucketService{
		storageMode:   StorageModeEmulator,
		publicBaseURL: "http://localhost:4443",
		buckets: map[BucketCategory]bucketConfig{
			BucketCategoryAvatar: {name: "avatar-bucket"},
		},
	}

	got := bs.GetPublicURL(BucketCategoryAvatar, "user_avatar/abc/123.png")
	want := "http://localhost:4443/storage/v1/b/avatar-bucket/o/user_avatar%2Fabc%2F123.png?alt=media"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesEmulatorHostWhenPublicBaseMissing(t *testing.T) {
	bs := &bucketService{
		storageMode:  StorageModeEmulator,
		emulatorHost: "http://fake-gcs:4443",
		buckets: map[BucketCategory]bucketConfig{
			BucketCategoryAvatar: {name: "avatar-bucket"},
		},
	}

	got := bs.GetPublicURL(BucketCategoryAvatar, "/user_avatar/abc/123.png")
	want := "http://fake-gcs:4443/storage/v1/b/avatar-bucket/o/user_avatar%2Fabc%2F123.png?alt=media"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUnknownCategory(t *testing.T) {
	bs := &bucketService{buckets: map[BucketCategory]bucketConfig{}}

	got := bs.GetPublicURL(BucketCategory("nope"), "key.png")
	if got != "key.png" {
		t.Fatalf("GetPublicURL: unknown category should echo the key, got=%q", got)
	}
}

func TestEmulatorPublicURLSmokeRenderableAssets(t *testing.T) {
	bs := &bucketService{
		storageMode:   StorageModeEmulator,
		publicBaseURL: "http://localhost:4443",
		buckets: map[BucketCategory]bucketConfig{
			BucketCategoryAvatar:  {name: "avatar-bucket"},
			BucketCategorySpecies: {name: "species-bucket"},
			BucketCategoryCapture: {name: "capture-bucket"},
		},
	}

	cases := []struct {
		name       string
		category   BucketCategory
		key        string
		wantBucket string
		wantCT     string
	}{
		{
			name:       "avatar png",
			category:   BucketCategoryAvatar,
			key:        "user_avatar/u/1.png",
			wantBucket: "avatar-bucket",
			wantCT:     "image/png",
		},
		{
			name:       "species card png",
			category:   BucketCategorySpecies,
			key:        "species_card/sp/card.png",
			wantBucket: "species-bucket",
			wantCT:     "image/png",
		},
		{
			name:       "capture photo jpg",
			category:   BucketCategoryCapture,
			key:        "captures/u/shot.jpg",
			wantBucket: "capture-bucket",
			wantCT:     "image/jpeg",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			publicURL := bs.GetPublicURL(tc.category, tc.key)
			if !strings.HasPrefix(publicURL, "http://localhost:4443/storage/v1/b/"+tc.wantBucket+"/o/") {
				t.Fatalf("publicURL prefix mismatch for %s: %s", tc.name, publicURL)
			}
			if !strings.Contains(publicURL, "alt=media") {
				t.Fatalf("publicURL should include alt=media for renderable object endpoint: %s", publicURL)
			}
			if !strings.Contains(publicURL, strings.ReplaceAll(tc.key, "/", "%2F")) {
				t.Fatalf("publicURL should escape object key path: %s", publicURL)
			}
			if got := contentTypeForKey(tc.key); got != tc.wantCT {
				t.Fatalf("contentTypeForKey(%q): want=%q got=%q", tc.key, tc.wantCT, got)
			}
		})
	}
}
