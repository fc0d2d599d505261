// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"strconv"
	"strings"
	"time"
)

// Project is one gallery entry: a finished customer work with a main image
// and optional extra shots. Category is expected to name an entry of the
// category list by editorial convention; no referential check is enforced.
type Project struct {
	ID               string   `json:"id"`
	MainImage        string   `json:"mainImage"`
	AdditionalImages []string `json:"additionalImages"`
	Alt              string   `json:"alt"`
	Category         string   `json:"category"`
	CustomerName     string   `json:"customerName"`
	ServiceDate      string   `json:"serviceDate"`
	Satisfaction     string   `json:"satisfaction"`
}

// NewProjectID derives a fresh project ID from the current time, matching the
// millisecond-timestamp IDs the editor has always produced.
func NewProjectID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// NormalizeProjects prepares a collection for bulk save: additionalImages
// entries that are empty or whitespace are dropped, and a nil slice becomes an
// empty one so the persisted JSON always carries an array.
func NormalizeProjects(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		images := make([]string, 0, len(p.AdditionalImages))
		for _, url := range p.AdditionalImages {
			if strings.TrimSpace(url) != "" {
				images = append(images, url)
			}
		}
		p.AdditionalImages = images
		out[i] = p
	}
	return out
}
