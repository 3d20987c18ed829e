// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/SoftbearStudios/endless/terrain/mesh"
	"sort"
)

// LODInfo is one row of the detail table: meshes at LOD are used up to Threshold
// world units from the viewer.
type LODInfo struct {
	LOD       int     `yaml:"lod" json:"lod"`
	Threshold float32 `yaml:"threshold" json:"threshold"`
}

func (info LODInfo) SqrThreshold() float32 {
	return info.Threshold * info.Threshold
}

// ValidateDetailLevels returns a copy of levels sorted by threshold with LODs clamped to those supported.
func ValidateDetailLevels(levels []LODInfo) []LODInfo {
	validated := make([]LODInfo, len(levels))
	copy(validated, levels)

	for i := range validated {
		info := &validated[i]
		if info.LOD < 0 {
			info.LOD = 0
		} else if info.LOD >= mesh.NumSupportedLODs {
			info.LOD = mesh.NumSupportedLODs - 1
		}
		if info.Threshold < 0 {
			info.Threshold = 0
		}
	}

	sort.SliceStable(validated, func(i, j int) bool {
		return validated[i].Threshold < validated[j].Threshold
	})
	return validated
}

// selectLOD returns the index of the first level whose threshold is at least distance,
// or the last index if there is none.
func selectLOD(levels []LODInfo, distance float32) int {
	index := 0
	// The last level is never compared, since beyond it the chunk is invisible.
	for i := 0; i < len(levels)-1; i++ {
		if distance > levels[i].Threshold {
			index = i + 1
		} else {
			break
		}
	}
	return index
}
