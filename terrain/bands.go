// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

// Elevation bands as fractions of a height map's range.
const (
	WaterLevel = 0.3
	SandLevel  = WaterLevel + 0.05
	GrassLevel = SandLevel + 0.25
	RockLevel  = GrassLevel + 0.2
	SnowLevel  = 1
)
