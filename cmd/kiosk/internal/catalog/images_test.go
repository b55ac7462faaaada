// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiBase(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("http://backend.local:8085/v1")
	require.NoError(t, err)
	return u
}

func TestNormalizeImageURL(t *testing.T) {
	base := apiBase(t)

	cases := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "relative path resolves against api base",
			ref:  "/uploads/cola.png",
			want: "http://backend.local:8085/v1/uploads/cola.png",
		},
		{
			name: "gcs url goes through the proxy",
			ref:  "https://storage.googleapis.com/bucket/cola.png",
			want: "http://backend.local:8085/v1/image-proxy?url=https%3A%2F%2Fstorage.googleapis.com%2Fbucket%2Fcola.png",
		},
		{
			name: "s3 url goes through the proxy",
			ref:  "https://media.s3.amazonaws.com/cola.png",
			want: "http://backend.local:8085/v1/image-proxy?url=https%3A%2F%2Fmedia.s3.amazonaws.com%2Fcola.png",
		},
		{
			name: "azure blob url goes through the proxy",
			ref:  "https://acct.blob.core.windows.net/media/cola.png",
			want: "http://backend.local:8085/v1/image-proxy?url=https%3A%2F%2Facct.blob.core.windows.net%2Fmedia%2Fcola.png",
		},
		{
			name: "other absolute url passes through",
			ref:  "https://cdn.example.com/cola.png",
			want: "https://cdn.example.com/cola.png",
		},
		{
			name: "empty reference",
			ref:  "",
			want: "",
		},
		{
			name: "whitespace only",
			ref:  "   ",
			want: "",
		},
		{
			name: "bare word is not loadable",
			ref:  "cola.png",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeImageURL(tc.ref, base))
		})
	}
}

// A bucket name merely containing a cloud host name must not trigger
// the proxy; only host equality or the documented suffixes do.
func TestNormalizeImageURL_HostMatchingIsExact(t *testing.T) {
	base := apiBase(t)

	ref := "https://storage.googleapis.com.evil.example/cola.png"
	assert.Equal(t, ref, NormalizeImageURL(ref, base))
}
