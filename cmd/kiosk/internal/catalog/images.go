// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"net/url"
	"strings"
)

// cloudStorageHosts are object-storage origins whose direct URLs are
// subject to cross-origin restrictions on some deployments. They are
// routed through the backend's image proxy instead.
var cloudStorageHosts = []string{
	"storage.googleapis.com",
	".s3.amazonaws.com",
	".blob.core.windows.net",
}

// NormalizeImageURL resolves an image reference from the backend into a
// URL the kiosk can use directly.
//
// # Description
//
// Three cases, checked in order:
//
//   - Paths beginning with "/" resolve against the API base.
//   - Absolute URLs on a known cloud-storage host are rewritten to the
//     backend's /image-proxy endpoint.
//   - Every other absolute URL passes through unchanged.
//
// Empty and unparseable references return "" — a missing image renders
// as a placeholder, never an error.
func NormalizeImageURL(ref string, apiBase *url.URL) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if strings.HasPrefix(ref, "/") {
		u := *apiBase
		u.Path = strings.TrimSuffix(u.Path, "/") + ref
		u.RawQuery = ""
		return u.String()
	}

	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return ""
	}

	if isCloudStorageHost(u.Host) {
		proxy := *apiBase
		proxy.Path = strings.TrimSuffix(proxy.Path, "/") + "/image-proxy"
		proxy.RawQuery = url.Values{"url": {ref}}.Encode()
		return proxy.String()
	}

	return ref
}

func isCloudStorageHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range cloudStorageHosts {
		if strings.HasPrefix(h, ".") {
			if strings.HasSuffix(host, h) {
				return true
			}
		} else if host == h {
			return true
		}
	}
	return false
}
